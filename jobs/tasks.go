package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAnalyticsWarmup pre-populates the room analytics cache.
	TaskAnalyticsWarmup = "analytics:warmup"
	// TaskAnalyticsBump invalidates every cached analytics result.
	TaskAnalyticsBump = "analytics:bump"
)

// WarmupPayload selects how far back the warmup reaches.
type WarmupPayload struct {
	// Days is the rolling window warmed besides all-time. Zero means 30.
	Days int `json:"days,omitempty"`
	// Months adds one window per calendar month with bookings in this many past months.
	Months int `json:"months,omitempty"`
}

// BumpPayload records who asked for the invalidation.
type BumpPayload struct {
	Reason      string    `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewWarmupTask constructs an analytics warmup task.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data), nil
}

// NewBumpTask constructs a cache invalidation task.
func NewBumpTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(BumpPayload{Reason: reason, RequestedAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsBump, data), nil
}
