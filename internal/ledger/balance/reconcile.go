package balance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneyd/moneyd/internal/ledger/accounts"
)

// ReconciledPoint extends an ideal balance point with the reconciled real
// balance and, where one exists, the manual snapshot asserted for that day.
type ReconciledPoint struct {
	AccountID   int64
	Date        time.Time
	Amount      decimal.Decimal
	Balance     decimal.Decimal
	RealBalance decimal.Decimal
	Snapshot    *decimal.Decimal
}

// Reconcile merges manual snapshots into the ideal series and computes the
// real balance per account. Each account is scanned independently with a
// running offset: zero until the account's first snapshot, then re-anchored
// at every snapshot date to (forward-filled ideal balance − snapshot
// amount), so the real balance equals the snapshot exactly on its date and
// tracks the ideal balance's deltas until the next snapshot.
//
// Snapshot dates outside the ideal series' range still produce rows (outer
// join), with a zero posting amount and the ideal balance forward-filled,
// or zero before the account's first known row. Two snapshots for one
// account on the same date are resolved last-inserted wins (higher id).
// An empty ideal series reconciles to an empty result.
func Reconcile(ideal []Point, snaps []accounts.ManualSnapshot) []ReconciledPoint {
	if len(ideal) == 0 {
		return []ReconciledPoint{}
	}

	snapsByAccount := make(map[int64]map[int64]accounts.ManualSnapshot)
	for _, s := range snaps {
		byDay := snapsByAccount[s.AccountID]
		if byDay == nil {
			byDay = make(map[int64]accounts.ManualSnapshot)
			snapsByAccount[s.AccountID] = byDay
		}
		day := epochDay(s.Date)
		if prev, ok := byDay[day]; !ok || s.ID > prev.ID {
			byDay[day] = s
		}
	}

	out := make([]ReconciledPoint, 0, len(ideal))
	for from := 0; from < len(ideal); {
		to := from
		for to < len(ideal) && ideal[to].AccountID == ideal[from].AccountID {
			to++
		}
		out = append(out, reconcileAccount(ideal[from:to], snapsByAccount[ideal[from].AccountID])...)
		from = to
	}
	return out
}

// row is one merged date of a single account's series.
type row struct {
	date     time.Time
	amount   decimal.Decimal
	balance  decimal.Decimal
	hasIdeal bool
}

func reconcileAccount(ideal []Point, snaps map[int64]accounts.ManualSnapshot) []ReconciledPoint {
	accountID := ideal[0].AccountID
	rows := make([]row, 0, len(ideal)+len(snaps))
	first, last := ideal[0].Date, ideal[len(ideal)-1].Date

	var before, after []time.Time
	for _, s := range snaps {
		d := s.Date
		switch {
		case d.Before(first):
			before = append(before, d)
		case d.After(last):
			after = append(after, d)
		}
	}
	sort.Slice(before, func(i, j int) bool { return before[i].Before(before[j]) })
	sort.Slice(after, func(i, j int) bool { return after[i].Before(after[j]) })

	for _, d := range before {
		rows = append(rows, row{date: d})
	}
	for _, p := range ideal {
		rows = append(rows, row{date: p.Date, amount: p.Amount, balance: p.Balance, hasIdeal: true})
	}
	for _, d := range after {
		rows = append(rows, row{date: d})
	}

	out := make([]ReconciledPoint, 0, len(rows))
	lastIdeal := decimal.Zero
	offset := decimal.Zero
	for _, r := range rows {
		idealBal := lastIdeal
		if r.hasIdeal {
			idealBal = r.balance
		}
		lastIdeal = idealBal

		point := ReconciledPoint{
			AccountID: accountID,
			Date:      r.date,
			Amount:    r.amount,
			Balance:   idealBal,
		}
		if s, ok := snaps[epochDay(r.date)]; ok {
			offset = idealBal.Sub(s.Amount)
			amount := s.Amount
			point.Snapshot = &amount
		}
		point.RealBalance = idealBal.Sub(offset)
		out = append(out, point)
	}
	return out
}
