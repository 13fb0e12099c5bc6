package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account models a tracked money account. Currency is display-only
// metadata; the engine never converts amounts.
type Account struct {
	ID             int64
	Name           string
	Currency       string
	IncludeInStats bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ManualSnapshot asserts the true balance of an account on a date. Once
// recorded a snapshot is an immutable fact; the engine only reads them.
type ManualSnapshot struct {
	ID         int64
	AccountID  int64
	Date       time.Time
	Amount     decimal.Decimal
	RecordedAt time.Time
}
