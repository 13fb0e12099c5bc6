package reports

import (
	"context"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyd/moneyd/internal/ledger/accounts"
	"github.com/moneyd/moneyd/internal/ledger/schedule"
	"github.com/moneyd/moneyd/internal/ledger/taxonomy"
	"github.com/moneyd/moneyd/internal/ledger/transactions"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type mockSources struct {
	accounts  []accounts.Account
	txns      []transactions.Transaction
	snaps     []accounts.ManualSnapshot
	tags      []taxonomy.Tag
	txnCalls  int
	snapCalls int
}

func (m *mockSources) List(ctx context.Context, filter accounts.ListFilter) ([]accounts.Account, error) {
	if !filter.StatsOnly {
		return m.accounts, nil
	}
	out := []accounts.Account{}
	for _, a := range m.accounts {
		if a.IncludeInStats {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockSources) ListByIDs(ctx context.Context, ids []int64) ([]accounts.Account, error) {
	out := []accounts.Account{}
	for _, a := range m.accounts {
		for _, id := range ids {
			if a.ID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (m *mockSources) ListForAccounts(ctx context.Context, ids []int64, start, end time.Time) ([]transactions.Transaction, error) {
	m.txnCalls++
	return m.txns, nil
}

func (m *mockSources) ListTags(ctx context.Context) ([]taxonomy.Tag, error) {
	return m.tags, nil
}

type mockSnapshots struct {
	parent *mockSources
}

func (m mockSnapshots) ListForAccounts(ctx context.Context, ids []int64, maxDate time.Time) ([]accounts.ManualSnapshot, error) {
	m.parent.snapCalls++
	return m.parent.snaps, nil
}

func newTestService(t *testing.T, src *mockSources) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(src, src, mockSnapshots{parent: src}, src, cache, slog.Default())
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func fixtureSources() *mockSources {
	return &mockSources{
		accounts: []accounts.Account{
			{ID: 1, Name: "Checking", Currency: "EUR", IncludeInStats: true},
		},
		txns: []transactions.Transaction{{
			ID:              10,
			Kind:            transactions.KindExtra,
			Name:            "groceries",
			Amount:          dec("-50.00"),
			TargetAccountID: 1,
			Category:        "food",
			Date:            day(2024, time.January, 10),
		}},
		snaps: []accounts.ManualSnapshot{{
			ID: 1, AccountID: 1, Date: day(2024, time.January, 15), Amount: dec("1000.00"),
		}},
	}
}

func TestRealBalanceReconcilesAndCaches(t *testing.T) {
	src := fixtureSources()
	svc, cleanup := newTestService(t, src)
	defer cleanup()

	ctx := context.Background()
	points, err := svc.RealBalance(ctx, []int64{1}, day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, points, 31)

	var jan20 int
	for i, p := range points {
		if p.Date.Equal(day(2024, time.January, 20)) {
			jan20 = i
		}
	}
	assert.True(t, points[jan20].RealBalance.Equal(dec("1000.00")), "real balance %s", points[jan20].RealBalance)
	assert.True(t, points[jan20].Balance.Equal(dec("-50.00")), "ideal balance %s", points[jan20].Balance)

	// Second identical query must be served from the cache.
	_, err = svc.RealBalance(ctx, []int64{1}, day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	assert.Equal(t, 1, src.txnCalls)
	assert.Equal(t, 1, src.snapCalls)
}

func TestRealBalanceCacheBumpForcesRecompute(t *testing.T) {
	src := fixtureSources()
	svc, cleanup := newTestService(t, src)
	defer cleanup()

	ctx := context.Background()
	_, err := svc.RealBalance(ctx, []int64{1}, day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	require.NoError(t, svc.InvalidateCache(ctx))
	_, err = svc.RealBalance(ctx, []int64{1}, day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	assert.Equal(t, 2, src.txnCalls)
}

func TestRealBalanceCacheRoundTripsDecimals(t *testing.T) {
	src := fixtureSources()
	svc, cleanup := newTestService(t, src)
	defer cleanup()

	ctx := context.Background()
	first, err := svc.RealBalance(ctx, []int64{1}, day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	second, err := svc.RealBalance(ctx, []int64{1}, day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].RealBalance.Equal(second[i].RealBalance))
		assert.True(t, first[i].Date.Equal(second[i].Date))
	}
}

func TestIdealBalanceEmptyAccountSet(t *testing.T) {
	svc, cleanup := newTestService(t, fixtureSources())
	defer cleanup()

	points, err := svc.IdealBalance(context.Background(), nil, day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestExpenseBreakdownByTagUsesRollup(t *testing.T) {
	src := fixtureSources()
	src.tags = []taxonomy.Tag{
		{ID: 1, Name: "essentials", UsedForGrouping: true},
		{ID: 2, Name: "food", ParentID: func() *int64 { v := int64(1); return &v }()},
	}
	src.txns[0].Tags = []string{"food"}
	svc, cleanup := newTestService(t, src)
	defer cleanup()

	totals, err := svc.ExpenseBreakdown(context.Background(), []int64{1}, day(2024, time.January, 1), day(2024, time.January, 31), GroupByTag, false)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "essentials", totals[0].Group)
	assert.True(t, totals[0].Amount.Equal(dec("-50.00")))
}

func TestMonthSummary(t *testing.T) {
	src := fixtureSources()
	src.txns = []transactions.Transaction{{
		ID:              11,
		Kind:            transactions.KindRegular,
		Name:            "rent",
		Amount:          dec("-800.00"),
		TargetAccountID: 1,
		Period:          schedule.PeriodMonthly,
		BillingStart:    day(2023, time.June, 25),
	}}
	svc, cleanup := newTestService(t, src)
	defer cleanup()

	stats, err := svc.MonthSummary(context.Background(), []int64{1}, day(2024, time.January, 10))
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.True(t, stats[0].MonthExpenses.Equal(dec("-800.00")), "month %s", stats[0].MonthExpenses)
	assert.True(t, stats[0].RemainingExpenses.Equal(dec("-800.00")), "remaining %s", stats[0].RemainingExpenses)
	assert.True(t, stats[0].NextMonthExpenses.Equal(dec("-800.00")), "next %s", stats[0].NextMonthExpenses)
}
