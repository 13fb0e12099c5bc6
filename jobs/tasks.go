package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeBalanceWarmup pre-populates the reconciled balance cache.
	TaskTypeBalanceWarmup = "reports:balance_warmup"
)

// BalanceWarmupPayload scopes a warmup run. A zero Year means the year
// containing the run date.
type BalanceWarmupPayload struct {
	JobID uuid.UUID `json:"job_id"`
	Year  int       `json:"year"`
}

// NewBalanceWarmupTask constructs an Asynq task for a warmup run. A fresh
// job id is assigned when the payload carries none.
func NewBalanceWarmupTask(payload BalanceWarmupPayload) (*asynq.Task, error) {
	if payload.JobID == uuid.Nil {
		payload.JobID = uuid.New()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeBalanceWarmup, data), nil
}

func yearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}
