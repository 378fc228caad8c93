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
	// TaskLowStockScan scans warehouse inventory for reorder alerts.
	TaskLowStockScan = "inventory:low_stock_scan"
	// TaskSummaryWarmup recomputes and primes the admin overview cache.
	TaskSummaryWarmup = "summary:warmup"
)

// LowStockScanPayload carries the scan threshold and a run correlation ID.
type LowStockScanPayload struct {
	RunID     string `json:"run_id"`
	Threshold int64  `json:"threshold"`
}

// SummaryWarmupPayload carries scheduling metadata.
type SummaryWarmupPayload struct {
	RunID        string    `json:"run_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLowStockScanTask constructs an Asynq task for the low stock scan.
func NewLowStockScanTask(threshold int64) (*asynq.Task, error) {
	payload := LowStockScanPayload{RunID: uuid.NewString(), Threshold: threshold}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// NewSummaryWarmupTask constructs an Asynq task for the overview warmup.
func NewSummaryWarmupTask(at time.Time) (*asynq.Task, error) {
	payload := SummaryWarmupPayload{RunID: uuid.NewString(), ScheduledFor: at}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSummaryWarmup, body, asynq.Queue(QueueDefault)), nil
}
