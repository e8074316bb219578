package ui

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/roomstats/internal/analytics"
)

func TestDashboardFiltersPeriod(t *testing.T) {
	cases := []struct {
		filters DashboardFilters
		want    string
	}{
		{DashboardFilters{}, "All time"},
		{DashboardFilters{From: "2025-01-01"}, "Since 2025-01-01"},
		{DashboardFilters{To: "2025-01-31"}, "Until 2025-01-31"},
		{DashboardFilters{From: "2025-01-01", To: "2025-01-31"}, "2025-01-01 to 2025-01-31"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.filters.Period())
	}
}

func TestToSeries(t *testing.T) {
	series := ToSeries(
		[]analytics.RoomBookingCount{{Name: "Atlas", BookingsCount: 3}},
		[]analytics.RoomOccupancy{{Name: "Atlas", AverageOccupancy: 0.5}},
		[]analytics.HeatmapCell{{Hour: 13, Weekday: 5, Count: 2}},
		analytics.AutoCancelStats{Total: 4, AutoCancelled: 1},
	)

	assert.Equal(t, []string{"Atlas"}, series.TopRooms.Labels)
	assert.Equal(t, []float64{3}, series.TopRooms.Values)
	assert.Equal(t, []float64{50}, series.Occupancy.Values)
	require.Len(t, series.Heatmap, 1)
	assert.Equal(t, 13.0, series.Heatmap[0].X)
	assert.Equal(t, 5.0, series.Heatmap[0].Y)
	assert.Equal(t, 25.0, series.AutoCancelledPct)
}

func TestSeriesJSONNeverNull(t *testing.T) {
	raw, err := json.Marshal(ToSeries(nil, nil, nil, analytics.AutoCancelStats{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"top_rooms": {"labels": [], "values": []},
		"occupancy": {"labels": [], "values": []},
		"heatmap": [],
		"auto_cancelled_pct": 0
	}`, string(raw))
}
