package analytics

import (
	"context"

	"github.com/odyssey-erp/roomstats/internal/analytics/db"
)

// GetTopRooms returns rooms ranked by booking count, busiest first. When the
// filter carries a user only that user's bookings count and idle rooms drop out.
func (s *Service) GetTopRooms(ctx context.Context, filter Filter) ([]RoomBookingCount, error) {
	loader := func(ctx context.Context) ([]RoomBookingCount, error) {
		rows, err := s.repo.TopRoomsByBookings(ctx, analyticsdb.TopRoomsByBookingsParams{
			From:   timestampParam(filter.From),
			To:     timestampParam(filter.To),
			UserID: optionalUser(filter.UserID),
			Limit:  int32(filter.limit()),
		})
		if err != nil {
			return nil, err
		}
		rooms := make([]RoomBookingCount, 0, len(rows))
		for _, row := range rows {
			rooms = append(rooms, RoomBookingCount{Name: row.Name, BookingsCount: int(row.BookingsCount)})
		}
		return rooms, nil
	}
	return cached(ctx, s.cache, keyTopRooms(filter), loader)
}

// GetAverageOccupancy returns the mean attendees/capacity ratio per room.
func (s *Service) GetAverageOccupancy(ctx context.Context, filter Filter) ([]RoomOccupancy, error) {
	loader := func(ctx context.Context) ([]RoomOccupancy, error) {
		rows, err := s.repo.AverageOccupancy(ctx, analyticsdb.AverageOccupancyParams{
			From: timestampParam(filter.From),
			To:   timestampParam(filter.To),
		})
		if err != nil {
			return nil, err
		}
		rooms := make([]RoomOccupancy, 0, len(rows))
		for _, row := range rows {
			rooms = append(rooms, RoomOccupancy{Name: row.Name, AverageOccupancy: row.AverageOccupancy})
		}
		return rooms, nil
	}
	return cached(ctx, s.cache, keyOccupancy(filter), loader)
}
