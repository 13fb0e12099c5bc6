// Package expense aggregates posting streams into expense breakdowns per
// category and per tag, totalled over the whole window or bucketed by
// calendar month. Only negative postings count as expenses.
package expense

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneyd/moneyd/internal/ledger/balance"
	"github.com/moneyd/moneyd/internal/ledger/taxonomy"
)

// Uncategorized is the neutral bucket for postings without taxonomy data.
const Uncategorized = "uncategorized"

// Total is one expense bucket: an account, a group label (category or tag
// rollup), an optional month, and the summed negative amount.
type Total struct {
	AccountID int64
	Group     string
	// Month is the first day of the bucket month; zero for whole-window
	// totals.
	Month  time.Time
	Amount decimal.Decimal
}

// ByCategory sums expenses per (account, category) over the whole window.
func ByCategory(postings []balance.Posting) []Total {
	return sumGroups(postings, false, categoryOf)
}

// ByCategoryMonthly sums expenses per (account, category, calendar month).
func ByCategoryMonthly(postings []balance.Posting) []Total {
	return sumGroups(postings, true, categoryOf)
}

// ByTag sums expenses per (account, tag rollup group) over the whole
// window. A posting carrying several tags contributes to each group once.
func ByTag(postings []balance.Posting, rollup *taxonomy.Rollup) ([]Total, error) {
	return sumTagGroups(postings, false, rollup)
}

// ByTagMonthly sums expenses per (account, tag rollup group, month).
func ByTagMonthly(postings []balance.Posting, rollup *taxonomy.Rollup) ([]Total, error) {
	return sumTagGroups(postings, true, rollup)
}

func categoryOf(p balance.Posting) string {
	if p.Category == "" {
		return Uncategorized
	}
	return p.Category
}

type bucketKey struct {
	account int64
	group   string
	month   int64
}

func sumGroups(postings []balance.Posting, monthly bool, groupOf func(balance.Posting) string) []Total {
	sums := map[bucketKey]decimal.Decimal{}
	for _, p := range postings {
		if !p.Amount.IsNegative() {
			continue
		}
		key := bucketKey{account: p.AccountID, group: groupOf(p)}
		if monthly {
			key.month = monthStart(p.Date).Unix()
		}
		sums[key] = sums[key].Add(p.Amount)
	}
	return sortTotals(sums)
}

func sumTagGroups(postings []balance.Posting, monthly bool, rollup *taxonomy.Rollup) ([]Total, error) {
	sums := map[bucketKey]decimal.Decimal{}
	for _, p := range postings {
		if !p.Amount.IsNegative() {
			continue
		}
		groups := map[string]bool{}
		for _, tag := range p.Tags {
			name, err := rollup.GroupingName(tag)
			if err != nil {
				return nil, err
			}
			groups[name] = true
		}
		if len(groups) == 0 {
			groups[Uncategorized] = true
		}
		for group := range groups {
			key := bucketKey{account: p.AccountID, group: group}
			if monthly {
				key.month = monthStart(p.Date).Unix()
			}
			sums[key] = sums[key].Add(p.Amount)
		}
	}
	return sortTotals(sums), nil
}

func sortTotals(sums map[bucketKey]decimal.Decimal) []Total {
	out := make([]Total, 0, len(sums))
	for key, amount := range sums {
		t := Total{AccountID: key.account, Group: key.group, Amount: amount}
		if key.month != 0 {
			t.Month = time.Unix(key.month, 0).UTC()
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AccountID != b.AccountID {
			return a.AccountID < b.AccountID
		}
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Month.Before(b.Month)
	})
	return out
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
