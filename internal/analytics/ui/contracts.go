package ui

import (
	"html/template"

	"github.com/odyssey-erp/roomstats/internal/analytics"
	"github.com/odyssey-erp/roomstats/internal/analytics/chartdata"
)

// DashboardFilters represents sanitized query filters used by the dashboard.
// From and To keep the submitted YYYY-MM-DD text so forms can echo them back.
type DashboardFilters struct {
	From  string
	To    string
	Limit int
}

// Period describes the window for headings and export file names.
func (f DashboardFilters) Period() string {
	switch {
	case f.From == "" && f.To == "":
		return "All time"
	case f.To == "":
		return "Since " + f.From
	case f.From == "":
		return "Until " + f.To
	default:
		return f.From + " to " + f.To
	}
}

// Series is the JSON contract served to client-side charts.
type Series struct {
	TopRooms         chartdata.CategorySeries `json:"top_rooms"`
	Occupancy        chartdata.CategorySeries `json:"occupancy"`
	Heatmap          []chartdata.BubblePoint  `json:"heatmap"`
	AutoCancelledPct float64                  `json:"auto_cancelled_pct"`
}

// ChartLink points at the interactive rendering of one chart.
type ChartLink struct {
	ID    string
	Title string
	URL   string
}

// DashboardViewModel combines all dashboard data for rendering.
type DashboardViewModel struct {
	Filters          DashboardFilters
	Series           Series
	TopRooms         []analytics.RoomBookingCount
	AutoCancel       analytics.AutoCancelStats
	AutoCancelledPct float64
	TopRoomsSVG      template.HTML
	OccupancySVG     template.HTML
	HeatmapSVG       template.HTML
	ChartLinks       []ChartLink
	CanExport        bool
}

// ToSeries adapts the raw result sets into the chart contract.
func ToSeries(top []analytics.RoomBookingCount, occupancy []analytics.RoomOccupancy, heatmap []analytics.HeatmapCell, cancel analytics.AutoCancelStats) Series {
	return Series{
		TopRooms:         chartdata.ToTopRoomsSeries(top),
		Occupancy:        chartdata.ToOccupancySeries(occupancy),
		Heatmap:          chartdata.ToHeatmapPoints(heatmap),
		AutoCancelledPct: cancel.Percent(),
	}
}
