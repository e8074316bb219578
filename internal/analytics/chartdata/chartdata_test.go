package chartdata

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/roomstats/internal/analytics"
)

func TestToTopRoomsSeriesPreservesOrder(t *testing.T) {
	rooms := []analytics.RoomBookingCount{
		{Name: "Room A", BookingsCount: 5},
		{Name: "Room B", BookingsCount: 2},
	}
	series := ToTopRoomsSeries(rooms)
	assert.Equal(t, []string{"Room A", "Room B"}, series.Labels)
	assert.Equal(t, []float64{5, 2}, series.Values)
}

func TestToTopRoomsSeriesDoesNotSort(t *testing.T) {
	rooms := []analytics.RoomBookingCount{
		{Name: "Quiet Pod", BookingsCount: 1},
		{Name: "Boardroom", BookingsCount: 12},
		{Name: "Atrium", BookingsCount: 0},
	}
	series := ToTopRoomsSeries(rooms)
	require.Equal(t, len(rooms), series.Len())
	require.Len(t, series.Values, len(rooms))
	for i, room := range rooms {
		assert.Equal(t, room.Name, series.Labels[i])
		assert.Equal(t, float64(room.BookingsCount), series.Values[i])
	}
}

func TestToOccupancySeriesRounding(t *testing.T) {
	cases := []struct {
		name     string
		fraction float64
		want     float64
	}{
		{name: "zero", fraction: 0.0, want: 0.00},
		{name: "full", fraction: 1.0, want: 100.00},
		{name: "third", fraction: 0.3333, want: 33.33},
		{name: "half", fraction: 0.5, want: 50},
		{name: "round up", fraction: 0.123456, want: 12.35},
		{name: "over capacity passes through", fraction: 1.25, want: 125},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			series := ToOccupancySeries([]analytics.RoomOccupancy{{Name: "Room", AverageOccupancy: tc.fraction}})
			require.Len(t, series.Values, 1)
			assert.Equal(t, tc.want, series.Values[0])
			assert.Equal(t, "Room", series.Labels[0])
		})
	}
}

func TestToHeatmapPoints(t *testing.T) {
	points := ToHeatmapPoints([]analytics.HeatmapCell{{Hour: 9, Weekday: 1, Count: 4}})
	assert.Equal(t, []BubblePoint{{X: 9, Y: 1, R: 4}}, points)

	cells := []analytics.HeatmapCell{
		{Hour: 17, Weekday: 5, Count: 2},
		{Hour: 8, Weekday: 0, Count: 7},
		{Hour: 23, Weekday: 6, Count: 1},
	}
	points = ToHeatmapPoints(cells)
	require.Len(t, points, len(cells))
	for i, cell := range cells {
		assert.Equal(t, float64(cell.Hour), points[i].X)
		assert.Equal(t, float64(cell.Weekday), points[i].Y)
		assert.Equal(t, float64(cell.Count), points[i].R)
	}
}

func TestEmptyInputsYieldEmptyOutputs(t *testing.T) {
	top := ToTopRoomsSeries(nil)
	assert.NotNil(t, top.Labels)
	assert.NotNil(t, top.Values)
	assert.Zero(t, top.Len())

	occ := ToOccupancySeries([]analytics.RoomOccupancy{})
	assert.NotNil(t, occ.Labels)
	assert.Empty(t, occ.Values)

	points := ToHeatmapPoints(nil)
	assert.NotNil(t, points)
	assert.Empty(t, points)

	raw, err := json.Marshal(struct {
		Top    CategorySeries `json:"top"`
		Points []BubblePoint  `json:"points"`
	}{Top: top, Points: points})
	require.NoError(t, err)
	assert.JSONEq(t, `{"top":{"labels":[],"values":[]},"points":[]}`, string(raw))
}

func TestAdaptersAreSafeForConcurrentUse(t *testing.T) {
	rooms := []analytics.RoomOccupancy{{Name: "A", AverageOccupancy: 0.42}, {Name: "B", AverageOccupancy: 0.7}}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			series := ToOccupancySeries(rooms)
			assert.Equal(t, []float64{42, 70}, series.Values)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0.42, rooms[0].AverageOccupancy)
}
