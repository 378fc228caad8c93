package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/milletflow/milletflow/internal/activity"
	"github.com/milletflow/milletflow/internal/ledger"
)

// LowStockScanJob walks warehouse inventory and records a reorder alert in
// the activity log for every entry at or below the threshold.
type LowStockScanJob struct {
	Ledger           *ledger.Service
	Activity         *activity.Service
	Logger           *slog.Logger
	DefaultThreshold int64
	clock            func() time.Time
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(ledgerSvc *ledger.Service, activitySvc *activity.Service, logger *slog.Logger, defaultThreshold int64) *LowStockScanJob {
	return &LowStockScanJob{
		Ledger:           ledgerSvc,
		Activity:         activitySvc,
		Logger:           logger,
		DefaultThreshold: defaultThreshold,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes low stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	threshold := payload.Threshold
	if threshold <= 0 {
		threshold = j.DefaultThreshold
	}

	logger := j.logger().With(slog.String("run_id", payload.RunID), slog.Int64("threshold", threshold))
	logger.Info("starting low stock scan")
	started := j.now()

	rows, err := j.Ledger.LowWarehouseStock(ctx, threshold)
	if err != nil {
		logger.Error("load low stock rows", slog.Any("error", err))
		return err
	}

	for _, row := range rows {
		err := j.Activity.Record(ctx, activity.Source(row.WarehouseName, "System"),
			fmt.Sprintf("Reorder alert: %s down to %d units", row.ProductName, row.Qty))
		if err != nil {
			logger.Error("record reorder alert", slog.Int64("warehouse_id", row.WarehouseID), slog.Any("error", err))
			return err
		}
	}

	logger.Info("completed low stock scan", slog.Int("alerts", len(rows)), slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}

func (j *LowStockScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
