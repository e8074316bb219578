package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/roomstats/internal/jobs"
)

// Bumper invalidates cached analytics results.
type Bumper interface {
	Bump(ctx context.Context) error
}

// BumpJob advances the analytics cache version so every instance reloads.
type BumpJob struct {
	Cache   Bumper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewBumpJob wires the invalidation handler.
func NewBumpJob(cache Bumper, logger *slog.Logger, metrics *jobmetrics.Metrics) *BumpJob {
	return &BumpJob{Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes analytics bump tasks.
func (j *BumpJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Cache == nil {
		return errors.New("analytics bump: handler not configured")
	}
	var payload BumpPayload
	if len(t.Payload()) > 0 {
		// A malformed payload only loses the reason; the bump still applies.
		_ = json.Unmarshal(t.Payload(), &payload)
	}

	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskAnalyticsBump)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("job", TaskAnalyticsBump))

	if err := j.Cache.Bump(ctx); err != nil {
		logger.Error("bump analytics cache", slog.Any("error", err))
		return err
	}
	logger.Info("analytics cache invalidated", slog.String("reason", payload.Reason))
	return nil
}
