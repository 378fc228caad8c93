package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/milletflow/milletflow/internal/summary"
)

// SummaryWarmupJob recomputes the admin overview and primes the cache so the
// first dashboard hit after invalidation stays fast.
type SummaryWarmupJob struct {
	Summary *summary.Service
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewSummaryWarmupJob wires dependencies for the warmup handler.
func NewSummaryWarmupJob(summarySvc *summary.Service, logger *slog.Logger) *SummaryWarmupJob {
	return &SummaryWarmupJob{
		Summary: summarySvc,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes overview warmup tasks.
func (j *SummaryWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("summary warmup: handler not configured")
	}
	var payload SummaryWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("run_id", payload.RunID))
	logger.Info("starting summary warmup")
	started := j.now()

	overview, err := j.Summary.Refresh(ctx)
	if err != nil {
		logger.Error("refresh overview", slog.Any("error", err))
		return err
	}

	logger.Info("completed summary warmup",
		slog.Int64("orders", overview.Orders),
		slog.Int64("sales", overview.Sales),
		slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *SummaryWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSummaryWarmup))
	}
	return slog.Default().With(slog.String("job", TaskSummaryWarmup))
}

func (j *SummaryWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
