// Package chartdata maps analytics result sets into the series shapes chart
// renderers consume. Every function is pure and safe for concurrent use.
package chartdata

import (
	"math"

	"github.com/odyssey-erp/roomstats/internal/analytics"
)

// CategorySeries is a labelled set of values drawn as one bar per label.
// Labels[i] belongs to Values[i].
type CategorySeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Len reports the number of categories.
func (s CategorySeries) Len() int {
	return len(s.Labels)
}

// BubblePoint is a scatter point with its marker size carried in R.
type BubblePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// ToTopRoomsSeries converts the booking ranking into a category series,
// keeping the input order.
func ToTopRoomsSeries(rooms []analytics.RoomBookingCount) CategorySeries {
	series := newCategorySeries(len(rooms))
	for _, room := range rooms {
		series.Labels = append(series.Labels, room.Name)
		series.Values = append(series.Values, float64(room.BookingsCount))
	}
	return series
}

// ToOccupancySeries converts occupancy fractions into percentages rounded to
// two decimals. Values outside [0,1] go through the same formula unchecked.
func ToOccupancySeries(rooms []analytics.RoomOccupancy) CategorySeries {
	series := newCategorySeries(len(rooms))
	for _, room := range rooms {
		series.Labels = append(series.Labels, room.Name)
		series.Values = append(series.Values, RoundPercent(room.AverageOccupancy))
	}
	return series
}

// ToHeatmapPoints maps each cell to a bubble at (hour, weekday) sized by its count.
// Absent slots stay absent.
func ToHeatmapPoints(cells []analytics.HeatmapCell) []BubblePoint {
	points := make([]BubblePoint, 0, len(cells))
	for _, cell := range cells {
		points = append(points, BubblePoint{
			X: float64(cell.Hour),
			Y: float64(cell.Weekday),
			R: float64(cell.Count),
		})
	}
	return points
}

// RoundPercent converts a fraction to a percentage with two decimal places.
func RoundPercent(fraction float64) float64 {
	pct := fraction * 100
	return math.Round(pct*100) / 100
}

func newCategorySeries(n int) CategorySeries {
	return CategorySeries{
		Labels: make([]string, 0, n),
		Values: make([]float64, 0, n),
	}
}
