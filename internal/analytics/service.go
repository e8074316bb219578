package analytics

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/odyssey-erp/roomstats/internal/analytics/db"
)

// Repository exposes the aggregated booking queries we rely on.
type Repository interface {
	TopRoomsByBookings(ctx context.Context, arg analyticsdb.TopRoomsByBookingsParams) ([]analyticsdb.TopRoomsByBookingsRow, error)
	AverageOccupancy(ctx context.Context, arg analyticsdb.AverageOccupancyParams) ([]analyticsdb.AverageOccupancyRow, error)
	BookingHeatmap(ctx context.Context, arg analyticsdb.BookingHeatmapParams) ([]analyticsdb.BookingHeatmapRow, error)
	AutoCancelStats(ctx context.Context, arg analyticsdb.AutoCancelStatsParams) (analyticsdb.AutoCancelStatsRow, error)
}

// Service coordinates analytics query execution with the cache layer.
type Service struct {
	repo     Repository
	cache    *Cache
	location *time.Location
}

// NewService wires a Repository with a Cache helper. Heatmap slots are bucketed in UTC
// until WithLocation is called.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, location: time.UTC}
}

// WithLocation sets the time zone used to bucket bookings into heatmap slots.
func (s *Service) WithLocation(loc *time.Location) *Service {
	if loc != nil {
		s.location = loc
	}
	return s
}

// Cache exposes the cache helper for invalidation hooks.
func (s *Service) Cache() *Cache {
	return s.cache
}

// cached resolves a value through the cache, or calls the loader directly when no cache
// is configured.
func cached[T any](ctx context.Context, c *Cache, keyBase string, loader func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return loader(ctx)
	}
	var zero T
	key, err := c.BuildKey(ctx, keyBase)
	if err != nil {
		return zero, err
	}
	var value T
	err = c.FetchJSON(ctx, key, &value, func(ctx context.Context) (interface{}, error) {
		return loader(ctx)
	})
	if err != nil {
		return zero, err
	}
	return value, nil
}

func timestampParam(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalUser(userID *int64) pgtype.Int8 {
	if userID == nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: *userID, Valid: true}
}

func userToken(userID *int64) string {
	if userID == nil {
		return "-"
	}
	return formatInt(*userID)
}

func timeToken(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("20060102T150405Z")
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
