// Package reports orchestrates storage, the schedule expander and the
// balance engine into the account reports served over HTTP and warmed by
// the background worker.
package reports

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneyd/moneyd/internal/ledger/accounts"
	"github.com/moneyd/moneyd/internal/ledger/balance"
	"github.com/moneyd/moneyd/internal/ledger/expense"
	"github.com/moneyd/moneyd/internal/ledger/schedule"
	"github.com/moneyd/moneyd/internal/ledger/shared"
	"github.com/moneyd/moneyd/internal/ledger/taxonomy"
	"github.com/moneyd/moneyd/internal/ledger/transactions"
)

// AccountSource lists tracked accounts.
type AccountSource interface {
	List(ctx context.Context, filter accounts.ListFilter) ([]accounts.Account, error)
	ListByIDs(ctx context.Context, ids []int64) ([]accounts.Account, error)
}

// TransactionSource lists transactions touching an account set.
type TransactionSource interface {
	ListForAccounts(ctx context.Context, ids []int64, start, end time.Time) ([]transactions.Transaction, error)
}

// SnapshotSource lists manual balance snapshots.
type SnapshotSource interface {
	ListForAccounts(ctx context.Context, ids []int64, maxDate time.Time) ([]accounts.ManualSnapshot, error)
}

// TaxonomySource lists the tag hierarchy for expense rollups.
type TaxonomySource interface {
	ListTags(ctx context.Context) ([]taxonomy.Tag, error)
}

// ExpenseGroup selects the grouping dimension of an expense breakdown.
type ExpenseGroup string

const (
	GroupByCategory ExpenseGroup = "category"
	GroupByTag      ExpenseGroup = "tag"
)

// Service computes account reports. Every computation reads a point-in-time
// snapshot of storage and runs the pure engine over it; invocations share
// no state and are safe to run in parallel.
type Service struct {
	accounts AccountSource
	txns     TransactionSource
	snaps    SnapshotSource
	taxonomy TaxonomySource
	cache    *Cache
	logger   *slog.Logger
}

// NewService wires the report pipeline.
func NewService(accountSrc AccountSource, txnSrc TransactionSource, snapSrc SnapshotSource, taxSrc TaxonomySource, cache *Cache, logger *slog.Logger) *Service {
	return &Service{accounts: accountSrc, txns: txnSrc, snaps: snapSrc, taxonomy: taxSrc, cache: cache, logger: logger}
}

// Accounts returns the account rows for the requested ids.
func (s *Service) Accounts(ctx context.Context, ids []int64) ([]accounts.Account, error) {
	return s.accounts.ListByIDs(ctx, ids)
}

// ListAccounts returns every tracked account.
func (s *Service) ListAccounts(ctx context.Context, filter accounts.ListFilter) ([]accounts.Account, error) {
	return s.accounts.List(ctx, filter)
}

// IdealBalance computes the gap-free daily balance series derived purely
// from transaction accumulation.
func (s *Service) IdealBalance(ctx context.Context, ids []int64, start, end time.Time) ([]balance.Point, error) {
	start, end = schedule.Day(start), schedule.Day(end)
	if err := checkWindow(ids, start, end); err != nil {
		return []balance.Point{}, err
	}
	postings, err := s.postings(ctx, ids, start, end)
	if err != nil {
		return nil, err
	}
	return balance.BuildIdealSeries(postings, ids, start, end), nil
}

// RealBalance computes the reconciled balance series: the ideal series
// corrected against manual snapshots. Results are served from the report
// cache when one is configured.
func (s *Service) RealBalance(ctx context.Context, ids []int64, start, end time.Time) ([]balance.ReconciledPoint, error) {
	start, end = schedule.Day(start), schedule.Day(end)
	if err := checkWindow(ids, start, end); err != nil {
		return []balance.ReconciledPoint{}, err
	}
	key, err := s.cache.BuildKey(ctx, "reports", "real", formatIDs(ids), dayKey(start), dayKey(end))
	if err != nil {
		return nil, err
	}
	out := []balance.ReconciledPoint{}
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.realBalance(ctx, ids, start, end)
	})
	return out, err
}

func (s *Service) realBalance(ctx context.Context, ids []int64, start, end time.Time) ([]balance.ReconciledPoint, error) {
	ideal, err := s.IdealBalance(ctx, ids, start, end)
	if err != nil {
		return nil, err
	}
	snaps, err := s.snaps.ListForAccounts(ctx, ids, end)
	if err != nil {
		return nil, err
	}
	return balance.Reconcile(ideal, snaps), nil
}

// ExpenseBreakdown aggregates expenses per category or tag, optionally
// bucketed by calendar month.
func (s *Service) ExpenseBreakdown(ctx context.Context, ids []int64, start, end time.Time, group ExpenseGroup, monthly bool) ([]expense.Total, error) {
	start, end = schedule.Day(start), schedule.Day(end)
	if err := checkWindow(ids, start, end); err != nil {
		return []expense.Total{}, err
	}
	postings, err := s.postings(ctx, ids, start, end)
	if err != nil {
		return nil, err
	}
	switch group {
	case GroupByTag:
		tags, err := s.taxonomy.ListTags(ctx)
		if err != nil {
			return nil, err
		}
		rollup := taxonomy.NewRollup(tags)
		if monthly {
			return expense.ByTagMonthly(postings, rollup)
		}
		return expense.ByTag(postings, rollup)
	default:
		if monthly {
			return expense.ByCategoryMonthly(postings), nil
		}
		return expense.ByCategory(postings), nil
	}
}

// MonthStats summarises one account's current and upcoming expenses.
type MonthStats struct {
	AccountID         int64           `json:"account_id"`
	MonthExpenses     decimal.Decimal `json:"month_expenses"`
	RemainingExpenses decimal.Decimal `json:"remaining_expenses"`
	NextMonthExpenses decimal.Decimal `json:"next_month_expenses"`
}

// MonthSummary computes, per account, the expense totals of the month
// containing today, the portion still ahead of today, and the following
// month's expected expenses.
func (s *Service) MonthSummary(ctx context.Context, ids []int64, today time.Time) ([]MonthStats, error) {
	today = schedule.Day(today)
	monthFrom, monthTo := monthBounds(today)
	nextFrom, nextTo := monthBounds(monthTo.AddDate(0, 0, 1))

	thisMonth, err := s.postings(ctx, ids, monthFrom, monthTo)
	if err != nil {
		return nil, err
	}
	nextMonth, err := s.postings(ctx, ids, nextFrom, nextTo)
	if err != nil {
		return nil, err
	}

	stats := make(map[int64]*MonthStats, len(ids))
	for _, id := range ids {
		stats[id] = &MonthStats{
			AccountID:         id,
			MonthExpenses:     decimal.Zero,
			RemainingExpenses: decimal.Zero,
			NextMonthExpenses: decimal.Zero,
		}
	}
	for _, p := range thisMonth {
		if !p.Amount.IsNegative() {
			continue
		}
		st := stats[p.AccountID]
		st.MonthExpenses = st.MonthExpenses.Add(p.Amount)
		if p.Date.After(today) {
			st.RemainingExpenses = st.RemainingExpenses.Add(p.Amount)
		}
	}
	for _, p := range nextMonth {
		if !p.Amount.IsNegative() {
			continue
		}
		stats[p.AccountID].NextMonthExpenses = stats[p.AccountID].NextMonthExpenses.Add(p.Amount)
	}

	out := make([]MonthStats, 0, len(ids))
	for _, id := range ids {
		out = append(out, *stats[id])
	}
	return out, nil
}

// InvalidateCache bumps the report cache after the collaborator changes
// transactions or snapshots.
func (s *Service) InvalidateCache(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) postings(ctx context.Context, ids []int64, start, end time.Time) ([]balance.Posting, error) {
	txns, err := s.txns.ListForAccounts(ctx, ids, start, end)
	if err != nil {
		return nil, err
	}
	return balance.BuildPostings(txns, ids, start, end)
}

func checkWindow(ids []int64, start, end time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if end.Before(start) {
		return shared.ErrInvalidWindow
	}
	return nil
}

func formatIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func monthBounds(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.UTC().Date()
	from := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, -1)
}
