package reports

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/moneyd/moneyd/internal/ledger/accounts"
	"github.com/moneyd/moneyd/internal/ledger/balance"
)

// printer formats display amounts with digit grouping. Display formatting
// happens strictly after the engine's decimal arithmetic.
var printer = message.NewPrinter(language.English)

// FormatAmount renders an amount for display in the account currency.
func FormatAmount(currency string, v decimal.Decimal) string {
	f, _ := v.Float64()
	if currency == "" {
		return printer.Sprintf("%.2f", f)
	}
	return printer.Sprintf("%s %.2f", currency, f)
}

// BalancePointView is the serialized form of one reconciled balance row.
type BalancePointView struct {
	AccountID    int64   `json:"account_id"`
	Date         string  `json:"date"`
	Amount       string  `json:"amount"`
	IdealBalance string  `json:"ideal_balance"`
	RealBalance  string  `json:"real_balance,omitempty"`
	Snapshot     *string `json:"snapshot,omitempty"`
	Display      string  `json:"display"`
}

// IdealSeriesView renders an ideal balance series for JSON consumers.
func IdealSeriesView(points []balance.Point, accts []accounts.Account) []BalancePointView {
	currencies := currencyIndex(accts)
	out := make([]BalancePointView, 0, len(points))
	for _, p := range points {
		out = append(out, BalancePointView{
			AccountID:    p.AccountID,
			Date:         p.Date.Format(time.DateOnly),
			Amount:       p.Amount.String(),
			IdealBalance: p.Balance.String(),
			Display:      FormatAmount(currencies[p.AccountID], p.Balance),
		})
	}
	return out
}

// RealSeriesView renders a reconciled balance series for JSON consumers.
func RealSeriesView(points []balance.ReconciledPoint, accts []accounts.Account) []BalancePointView {
	currencies := currencyIndex(accts)
	out := make([]BalancePointView, 0, len(points))
	for _, p := range points {
		view := BalancePointView{
			AccountID:    p.AccountID,
			Date:         p.Date.Format(time.DateOnly),
			Amount:       p.Amount.String(),
			IdealBalance: p.Balance.String(),
			RealBalance:  p.RealBalance.String(),
			Display:      FormatAmount(currencies[p.AccountID], p.RealBalance),
		}
		if p.Snapshot != nil {
			s := p.Snapshot.String()
			view.Snapshot = &s
		}
		out = append(out, view)
	}
	return out
}

func currencyIndex(accts []accounts.Account) map[int64]string {
	out := make(map[int64]string, len(accts))
	for _, a := range accts {
		out[a.ID] = a.Currency
	}
	return out
}
