package analytics

import (
	"context"

	"github.com/odyssey-erp/roomstats/internal/analytics/db"
)

// GetBookingHeatmap counts active bookings per hour-of-day and day-of-week slot
// in the service location. Slots without bookings are omitted.
func (s *Service) GetBookingHeatmap(ctx context.Context, filter Filter) ([]HeatmapCell, error) {
	loader := func(ctx context.Context) ([]HeatmapCell, error) {
		rows, err := s.repo.BookingHeatmap(ctx, analyticsdb.BookingHeatmapParams{
			From:     timestampParam(filter.From),
			To:       timestampParam(filter.To),
			TimeZone: s.location.String(),
		})
		if err != nil {
			return nil, err
		}
		cells := make([]HeatmapCell, 0, len(rows))
		for _, row := range rows {
			cells = append(cells, HeatmapCell{
				Hour:    int(row.Hour),
				Weekday: int(row.Weekday),
				Count:   int(row.Count),
			})
		}
		return cells, nil
	}
	return cached(ctx, s.cache, keyHeatmap(filter, s.location), loader)
}

// GetAutoCancelStats reports how many bookings were released without a check-in.
func (s *Service) GetAutoCancelStats(ctx context.Context, filter Filter) (AutoCancelStats, error) {
	loader := func(ctx context.Context) (AutoCancelStats, error) {
		row, err := s.repo.AutoCancelStats(ctx, analyticsdb.AutoCancelStatsParams{
			From: timestampParam(filter.From),
			To:   timestampParam(filter.To),
		})
		if err != nil {
			return AutoCancelStats{}, err
		}
		return AutoCancelStats{Total: row.Total, AutoCancelled: row.AutoCancelled}, nil
	}
	return cached(ctx, s.cache, keyAutoCancel(filter), loader)
}
