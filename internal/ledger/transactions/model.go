package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneyd/moneyd/internal/ledger/schedule"
)

// Kind discriminates the two transaction variants.
type Kind string

const (
	// KindExtra is a one-off transaction posting on a single date.
	KindExtra Kind = "EXTRA"
	// KindRegular is a recurring transaction posting per its period.
	KindRegular Kind = "REGULAR"
)

// Transaction is a one-off or recurring money movement against a target
// account, optionally mirrored onto a counterparty account. The amount is
// signed relative to the target account and exact to the cent.
type Transaction struct {
	ID          int64
	Ref         uuid.UUID
	Kind        Kind
	Name        string
	Description string
	Amount      decimal.Decimal

	TargetAccountID       int64
	CounterpartyAccountID *int64

	CategoryID *int64
	Category   string
	Tags       []string

	// Date is set for KindExtra only.
	Date time.Time

	// Period, BillingStart and BillingEnd are set for KindRegular only.
	Period       schedule.Period
	BillingStart time.Time
	BillingEnd   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Schedule builds the occurrence schedule for the transaction. One-off
// transactions degenerate to a single-date schedule; recurring ones
// validate their period eagerly, surfacing shared.ErrInvalidPeriod for
// codes the generator does not know.
func (t Transaction) Schedule() (*schedule.Schedule, error) {
	if t.Kind == KindExtra {
		return schedule.Once(t.Date), nil
	}
	return schedule.New(t.Period, t.BillingStart, t.BillingEnd)
}

// NextBilling returns the first posting date at or after ref.
func (t Transaction) NextBilling(ref time.Time) (time.Time, bool) {
	s, err := t.Schedule()
	if err != nil {
		return time.Time{}, false
	}
	return s.NextOccurrence(ref)
}

// PreviousBilling returns the last posting date strictly before ref.
func (t Transaction) PreviousBilling(ref time.Time) (time.Time, bool) {
	s, err := t.Schedule()
	if err != nil {
		return time.Time{}, false
	}
	return s.PreviousOccurrence(ref)
}

// IsBillingDate reports whether the transaction posts on day.
func (t Transaction) IsBillingDate(day time.Time) bool {
	s, err := t.Schedule()
	if err != nil {
		return false
	}
	return s.IsOccurrence(day)
}
