package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/odyssey-erp/roomstats/internal/analytics"
	jobmetrics "github.com/odyssey-erp/roomstats/internal/jobs"
)

const (
	defaultWarmupDays = 30
	windowTimeout     = 20 * time.Second
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Warmer loads the dashboard datasets; every call populates the cache as a side effect.
type Warmer interface {
	GetTopRooms(ctx context.Context, filter analytics.Filter) ([]analytics.RoomBookingCount, error)
	GetAverageOccupancy(ctx context.Context, filter analytics.Filter) ([]analytics.RoomOccupancy, error)
	GetBookingHeatmap(ctx context.Context, filter analytics.Filter) ([]analytics.HeatmapCell, error)
	GetAutoCancelStats(ctx context.Context, filter analytics.Filter) (analytics.AutoCancelStats, error)
}

// WindowSource lists the calendar months that have bookings.
type WindowSource interface {
	ActiveWindows(ctx context.Context, since pgtype.Timestamptz) ([]pgtype.Timestamptz, error)
}

// WarmupJob pre-populates the analytics cache for the windows the dashboard opens with.
type WarmupJob struct {
	Analytics Warmer
	Windows   WindowSource
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	Limit     int
	clock     func() time.Time
}

// NewWarmupJob wires dependencies for the warmup handler. windows may be nil, in
// which case only the all-time and rolling windows are warmed.
func NewWarmupJob(warmer Warmer, windows WindowSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	return &WarmupJob{
		Analytics: warmer,
		Windows:   windows,
		Logger:    logger,
		Metrics:   metrics,
		Limit:     analytics.DefaultTopRoomsLimit,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock overrides the job clock for testing.
func (j *WarmupJob) WithClock(fn func() time.Time) *WarmupJob {
	if fn != nil {
		j.clock = fn
	}
	return j
}

type warmupWindow struct {
	kind   string
	filter analytics.Filter
}

// Handle processes analytics warmup tasks.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload WarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("analytics warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	tracker := j.metrics().Track(TaskAnalyticsWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := j.now()
	logger.Info("starting analytics warmup", slog.Int("days", payload.days()), slog.Int("months", payload.Months))

	windows, err := j.windows(ctx, payload, start)
	if err != nil {
		logger.Error("load warmup windows", slog.Any("error", err))
		return err
	}

	warmed := make(map[string]int)
	for _, w := range windows {
		if err := j.warm(ctx, w.filter); err != nil {
			logger.Error("warm window",
				slog.String("kind", w.kind),
				slog.Time("from", w.filter.From),
				slog.Time("to", w.filter.To),
				slog.Any("error", err))
			return err
		}
		warmed[w.kind]++
	}
	for kind, count := range warmed {
		j.metrics().AddWarmed(kind, count)
	}

	logger.Info("completed analytics warmup", slog.Int("windows", len(windows)), slog.Duration("duration", j.now().Sub(start)))
	return nil
}

// windows returns all-time first, then the rolling window ending today, then one
// window per active month. Boundaries sit on UTC midnights so keys match the
// filters the dashboard builds from YYYY-MM-DD input.
func (j *WarmupJob) windows(ctx context.Context, payload WarmupPayload, now time.Time) ([]warmupWindow, error) {
	limit := j.Limit
	if limit <= 0 {
		limit = analytics.DefaultTopRoomsLimit
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	out := []warmupWindow{
		{kind: "all_time", filter: analytics.Filter{Limit: limit}},
		{kind: "rolling", filter: analytics.Filter{
			From:  today.AddDate(0, 0, -payload.days()),
			To:    today.AddDate(0, 0, 1),
			Limit: limit,
		}},
	}
	if payload.Months <= 0 || j.Windows == nil {
		return out, nil
	}

	firstMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -payload.Months, 0)
	months, err := j.Windows.ActiveWindows(ctx, pgtype.Timestamptz{Time: firstMonth, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("active windows: %w", err)
	}
	for _, m := range months {
		if !m.Valid {
			continue
		}
		start := m.Time.UTC()
		start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		out = append(out, warmupWindow{kind: "month", filter: analytics.Filter{
			From:  start,
			To:    start.AddDate(0, 1, 0),
			Limit: limit,
		}})
	}
	return out, nil
}

func (j *WarmupJob) warm(ctx context.Context, filter analytics.Filter) error {
	windowCtx, cancel := context.WithTimeout(ctx, windowTimeout)
	defer cancel()

	if _, err := j.Analytics.GetTopRooms(windowCtx, filter); err != nil {
		return fmt.Errorf("top rooms: %w", err)
	}
	if _, err := j.Analytics.GetAverageOccupancy(windowCtx, filter); err != nil {
		return fmt.Errorf("occupancy: %w", err)
	}
	if _, err := j.Analytics.GetBookingHeatmap(windowCtx, filter); err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}
	if _, err := j.Analytics.GetAutoCancelStats(windowCtx, filter); err != nil {
		return fmt.Errorf("auto cancel: %w", err)
	}
	return nil
}

func (p WarmupPayload) days() int {
	if p.Days <= 0 {
		return defaultWarmupDays
	}
	return p.Days
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAnalyticsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskAnalyticsWarmup))
}

func (j *WarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *WarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
