package analytics

import (
	"math"
	"time"
)

// DefaultTopRoomsLimit mirrors the number of rooms ranked on the dashboard.
const DefaultTopRoomsLimit = 5

// MaxTopRoomsLimit caps the ranking size accepted from callers.
const MaxTopRoomsLimit = 50

// Filter scopes every analytics query. Zero times leave the window open.
type Filter struct {
	From   time.Time
	To     time.Time
	Limit  int
	UserID *int64
}

// RoomBookingCount is one row of the booking count ranking.
type RoomBookingCount struct {
	Name          string `json:"name"`
	BookingsCount int    `json:"bookings_count"`
}

// RoomOccupancy reports the average share of a room's capacity used per booking.
// AverageOccupancy is a fraction in [0,1], not a percentage.
type RoomOccupancy struct {
	Name             string  `json:"name"`
	AverageOccupancy float64 `json:"average_occupancy"`
}

// HeatmapCell counts active bookings starting in an hour-of-day/day-of-week slot.
// Weekday follows time.Weekday numbering (0 = Sunday). Empty slots are not reported.
type HeatmapCell struct {
	Hour    int `json:"hour"`
	Weekday int `json:"weekday"`
	Count   int `json:"count"`
}

// AutoCancelStats counts bookings released because nobody checked in.
type AutoCancelStats struct {
	Total         int64 `json:"total"`
	AutoCancelled int64 `json:"auto_cancelled"`
}

// Percent returns the auto-cancelled share as a percentage rounded to two decimals.
func (s AutoCancelStats) Percent() float64 {
	if s.Total <= 0 {
		return 0
	}
	pct := float64(s.AutoCancelled) / float64(s.Total) * 100
	return math.Round(pct*100) / 100
}

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultTopRoomsLimit
	case f.Limit > MaxTopRoomsLimit:
		return MaxTopRoomsLimit
	default:
		return f.Limit
	}
}
