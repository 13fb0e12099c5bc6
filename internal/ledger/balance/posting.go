// Package balance implements the balance reconciliation engine: posting
// stream expansion, gap-free ideal balance series, and the reconciliation
// of ideal balances against manual snapshots.
//
// The engine is a pure computation over in-memory records. All amounts are
// exact decimals; nothing here touches floating point.
package balance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneyd/moneyd/internal/ledger/schedule"
	"github.com/moneyd/moneyd/internal/ledger/transactions"
)

// Posting is one signed amount applied to one account on one date, derived
// from a transaction occurrence. Category and tag metadata ride along for
// expense breakdowns; the balance engine itself only needs account, date
// and amount.
type Posting struct {
	AccountID     int64
	Date          time.Time
	Amount        decimal.Decimal
	TransactionID int64
	Name          string
	Category      string
	Tags          []string
}

// BuildPostings expands every transaction into its postings within
// [start, end], both inclusive. A posting is emitted for the target account
// when the target is requested, and the exact negation is emitted for the
// counterparty when the counterparty is requested, so a transfer between
// two tracked accounts nets to zero. Expansion of open-ended schedules
// stops at the first occurrence past end.
//
// An unknown recurrence period aborts the whole build with
// shared.ErrInvalidPeriod rather than silently skipping the transaction.
func BuildPostings(txns []transactions.Transaction, accountIDs []int64, start, end time.Time) ([]Posting, error) {
	requested := make(map[int64]bool, len(accountIDs))
	for _, id := range accountIDs {
		requested[id] = true
	}
	start, end = schedule.Day(start), schedule.Day(end)

	out := []Posting{}
	for _, txn := range txns {
		sched, err := txn.Schedule()
		if err != nil {
			return nil, err
		}
		for _, d := range sched.Occurrences(start, end) {
			if requested[txn.TargetAccountID] {
				out = append(out, Posting{
					AccountID:     txn.TargetAccountID,
					Date:          d,
					Amount:        txn.Amount,
					TransactionID: txn.ID,
					Name:          txn.Name,
					Category:      txn.Category,
					Tags:          txn.Tags,
				})
			}
			if txn.CounterpartyAccountID != nil && requested[*txn.CounterpartyAccountID] {
				out = append(out, Posting{
					AccountID:     *txn.CounterpartyAccountID,
					Date:          d,
					Amount:        txn.Amount.Neg(),
					TransactionID: txn.ID,
					Name:          txn.Name,
					Category:      txn.Category,
					Tags:          txn.Tags,
				})
			}
		}
	}
	return out, nil
}

// epochDay keys a normalized UTC-midnight date for map lookups.
func epochDay(t time.Time) int64 {
	return t.Unix() / 86400
}
