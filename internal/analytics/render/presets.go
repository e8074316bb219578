package render

import "github.com/odyssey-erp/roomstats/internal/analytics/chartdata"

// Dashboard chart identifiers used in URLs and element ids.
const (
	ChartTopRooms  = "top-rooms"
	ChartOccupancy = "occupancy"
	ChartHeatmap   = "heatmap"
)

// TopRoomsOptions is the display preset for the booking ranking.
func TopRoomsOptions() Options {
	return Options{
		Title:       "Top Rooms",
		Description: "Rooms ranked by number of bookings",
		SeriesLabel: "Bookings",
		Color:       "#0ea5e9",
		YAxisTitle:  "Bookings",
	}
}

// OccupancyOptions is the display preset for the occupancy ranking.
func OccupancyOptions() Options {
	return Options{
		Title:       "Average Occupancy",
		Description: "Average share of room capacity used per booking",
		SeriesLabel: "Average Occupancy (%)",
		Color:       "#f97316",
		YAxisTitle:  "Occupancy (%)",
	}
}

// HeatmapOptions is the display preset for the hour/weekday density view.
// Axis ranges cover the whole week regardless of which slots have bookings.
func HeatmapOptions() Options {
	return Options{
		Title:       "Booking Heatmap",
		Description: "Bookings by hour of day and day of week",
		SeriesLabel: "Booking Heatmap",
		Color:       "rgba(15, 23, 42, 0.5)",
		XAxisTitle:  "Hour of Day",
		YAxisTitle:  "Day of Week",
		FixedX:      true,
		XMin:        0,
		XMax:        23,
		XTickStep:   1,
		FixedY:      true,
		YMin:        0,
		YMax:        6,
		YTickStep:   1,
	}
}

// TopRoomsChart builds the category-bar chart for the booking ranking.
func TopRoomsChart(series chartdata.CategorySeries) Chart {
	return Chart{Kind: KindCategoryBar, Options: TopRoomsOptions(), Series: &series}
}

// OccupancyChart builds the category-bar chart for occupancy percentages.
func OccupancyChart(series chartdata.CategorySeries) Chart {
	return Chart{Kind: KindCategoryBar, Options: OccupancyOptions(), Series: &series}
}

// HeatmapChart builds the bubble-scatter chart for the booking heatmap.
func HeatmapChart(points []chartdata.BubblePoint) Chart {
	if points == nil {
		points = []chartdata.BubblePoint{}
	}
	return Chart{Kind: KindBubbleScatter, Options: HeatmapOptions(), Points: points}
}
