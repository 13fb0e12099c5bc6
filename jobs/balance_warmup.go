package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/moneyd/moneyd/internal/ledger/accounts"
	"github.com/moneyd/moneyd/internal/ledger/balance"
	jobmetrics "github.com/moneyd/moneyd/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// BalanceWarmupJob pre-populates the reconciled balance cache for every
// account included in statistics, so dashboard loads hit warm entries.
type BalanceWarmupJob struct {
	Reports WarmupService
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// WarmupService is the slice of the report service the warmup run needs.
type WarmupService interface {
	ListAccounts(ctx context.Context, filter accounts.ListFilter) ([]accounts.Account, error)
	RealBalance(ctx context.Context, ids []int64, start, end time.Time) ([]balance.ReconciledPoint, error)
}

// NewBalanceWarmupJob wires dependencies for the warmup handler.
func NewBalanceWarmupJob(reports WarmupService, logger *slog.Logger, metrics *jobmetrics.Metrics) *BalanceWarmupJob {
	return &BalanceWarmupJob{
		Reports: reports,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes balance warmup tasks.
func (j *BalanceWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("balance warmup: handler not configured")
	}
	var payload BalanceWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	now := j.now()
	if payload.Year == 0 {
		payload.Year = now.Year()
	}

	tracker := j.metrics().Track(TaskTypeBalanceWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("job_id", payload.JobID.String()), slog.Int("year", payload.Year))
	logger.Info("starting balance warmup")

	accts, err := j.Reports.ListAccounts(ctx, accounts.ListFilter{StatsOnly: true})
	if err != nil {
		resultErr = err
		logger.Error("list warmup accounts", slog.Any("error", err))
		return resultErr
	}
	if len(accts) == 0 {
		logger.Info("no accounts included in statistics")
		return resultErr
	}

	start, end := yearBounds(payload.Year)
	warmed := 0
	for _, acct := range accts {
		if err := j.warmAccount(ctx, acct.ID, start, end); err != nil {
			resultErr = err
			logger.Error("warm account", slog.Int64("account_id", acct.ID), slog.Any("error", err))
			return resultErr
		}
		warmed++
	}
	j.metrics().AddWarmedAccounts(TaskTypeBalanceWarmup, warmed)

	logger.Info("completed balance warmup", slog.Int("accounts", warmed), slog.Duration("duration", time.Since(now)))
	return resultErr
}

func (j *BalanceWarmupJob) warmAccount(ctx context.Context, id int64, start, end time.Time) error {
	// Bound each account so a slow one cannot stall the whole run.
	acctCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	_, err := j.Reports.RealBalance(acctCtx, []int64{id}, start, end)
	return err
}

func (j *BalanceWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeBalanceWarmup))
	}
	return slog.Default().With(slog.String("job", TaskTypeBalanceWarmup))
}

func (j *BalanceWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *BalanceWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
