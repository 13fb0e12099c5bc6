package balance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneyd/moneyd/internal/ledger/schedule"
)

// Point is one day of an account's ideal balance series. Amount is the sum
// of that day's postings (zero on synthesized gap days) and Balance the
// cumulative sum from the window start.
type Point struct {
	AccountID int64
	Date      time.Time
	Amount    decimal.Decimal
	Balance   decimal.Decimal
}

// BuildIdealSeries turns a posting stream into a complete daily balance
// series: one row per requested account per calendar day in [start, end],
// gap days filled with a zero amount, balances accumulated per account and
// seeded at the window start. The window carries no implicit prior balance.
// Output is ordered ascending by (account, date). Accounts without any
// posting still get a flat zero series.
func BuildIdealSeries(postings []Posting, accountIDs []int64, start, end time.Time) []Point {
	start, end = schedule.Day(start), schedule.Day(end)
	if len(accountIDs) == 0 || end.Before(start) {
		return []Point{}
	}

	sums := make(map[int64]map[int64]decimal.Decimal, len(accountIDs))
	for _, p := range postings {
		byDay := sums[p.AccountID]
		if byDay == nil {
			byDay = make(map[int64]decimal.Decimal)
			sums[p.AccountID] = byDay
		}
		byDay[epochDay(p.Date)] = byDay[epochDay(p.Date)].Add(p.Amount)
	}

	ids := uniqueSorted(accountIDs)
	days := int(end.Sub(start).Hours()/24) + 1
	out := make([]Point, 0, len(ids)*days)
	for _, id := range ids {
		running := decimal.Zero
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			amount := decimal.Zero
			if byDay := sums[id]; byDay != nil {
				if v, ok := byDay[epochDay(d)]; ok {
					amount = v
				}
			}
			running = running.Add(amount)
			out = append(out, Point{AccountID: id, Date: d, Amount: amount, Balance: running})
		}
	}
	return out
}

func uniqueSorted(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
