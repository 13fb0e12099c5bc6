package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/moneyd/moneyd/internal/ledger/accounts"
	"github.com/moneyd/moneyd/internal/ledger/balance"
	jobmetrics "github.com/moneyd/moneyd/internal/jobs"
)

type stubWarmupService struct {
	accounts []accounts.Account
	listErr  error
	balErr   error
	calls    [][]int64
	windows  [][2]time.Time
}

func (s *stubWarmupService) ListAccounts(ctx context.Context, filter accounts.ListFilter) ([]accounts.Account, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if !filter.StatsOnly {
		return nil, errors.New("expected stats-only filter")
	}
	return s.accounts, nil
}

func (s *stubWarmupService) RealBalance(ctx context.Context, ids []int64, start, end time.Time) ([]balance.ReconciledPoint, error) {
	if s.balErr != nil {
		return nil, s.balErr
	}
	s.calls = append(s.calls, ids)
	s.windows = append(s.windows, [2]time.Time{start, end})
	return []balance.ReconciledPoint{}, nil
}

func warmupTask(t *testing.T, payload BalanceWarmupPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return asynq.NewTask(TaskTypeBalanceWarmup, data)
}

func TestBalanceWarmupWarmsEachStatsAccount(t *testing.T) {
	svc := &stubWarmupService{accounts: []accounts.Account{{ID: 1}, {ID: 2}}}
	job := NewBalanceWarmupJob(svc, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), warmupTask(t, BalanceWarmupPayload{JobID: uuid.New(), Year: 2024}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(svc.calls) != 2 {
		t.Fatalf("warmed %d accounts, want 2", len(svc.calls))
	}
	if svc.calls[0][0] != 1 || svc.calls[1][0] != 2 {
		t.Fatalf("warmed accounts %v %v, want [1] [2]", svc.calls[0], svc.calls[1])
	}
	wantStart := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	if !svc.windows[0][0].Equal(wantStart) || !svc.windows[0][1].Equal(wantEnd) {
		t.Fatalf("window %v..%v, want %v..%v", svc.windows[0][0], svc.windows[0][1], wantStart, wantEnd)
	}
}

func TestBalanceWarmupDefaultsToCurrentYear(t *testing.T) {
	svc := &stubWarmupService{accounts: []accounts.Account{{ID: 7}}}
	job := NewBalanceWarmupJob(svc, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = func() time.Time {
		return time.Date(2023, time.June, 15, 12, 0, 0, 0, time.UTC)
	}

	if err := job.Handle(context.Background(), warmupTask(t, BalanceWarmupPayload{JobID: uuid.New()})); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := svc.windows[0][0].Year(); got != 2023 {
		t.Fatalf("warmed year %d, want 2023", got)
	}
}

func TestBalanceWarmupPropagatesServiceError(t *testing.T) {
	svc := &stubWarmupService{
		accounts: []accounts.Account{{ID: 1}},
		balErr:   errors.New("redis down"),
	}
	job := NewBalanceWarmupJob(svc, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	if err := job.Handle(context.Background(), warmupTask(t, BalanceWarmupPayload{JobID: uuid.New(), Year: 2024})); err == nil {
		t.Fatal("expected error from failing balance computation")
	}
}

func TestBalanceWarmupSkipsRetryOnBadPayload(t *testing.T) {
	svc := &stubWarmupService{}
	job := NewBalanceWarmupJob(svc, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), asynq.NewTask(TaskTypeBalanceWarmup, []byte("{not json")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("got %v, want SkipRetry", err)
	}
}
