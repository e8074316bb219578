package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/roomstats/internal/analytics/chartdata"
)

// Workbook sheet names.
const (
	SheetTopRooms  = "Top Rooms"
	SheetOccupancy = "Occupancy"
	SheetHeatmap   = "Heatmap"
	SheetSummary   = "Summary"
)

// WriteWorkbook renders the dashboard datasets into an XLSX workbook. The heatmap
// sheet is a full 7x24 grid with weekdays as rows and hours as columns.
func WriteWorkbook(w io.Writer, payload DashboardPayload) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetTopRooms); err != nil {
		return err
	}
	for _, name := range []string{SheetOccupancy, SheetHeatmap, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][]interface{}{{"Room Name", "Booking Count"}}
	for _, room := range payload.TopRooms {
		rows = append(rows, []interface{}{room.Name, room.BookingsCount})
	}
	if err := writeRows(f, SheetTopRooms, rows, header); err != nil {
		return err
	}

	rows = [][]interface{}{{"Room Name", "Average Occupancy (%)"}}
	for _, room := range payload.Occupancy {
		rows = append(rows, []interface{}{room.Name, chartdata.RoundPercent(room.AverageOccupancy)})
	}
	if err := writeRows(f, SheetOccupancy, rows, header); err != nil {
		return err
	}

	if err := writeRows(f, SheetHeatmap, heatmapGrid(payload), header); err != nil {
		return err
	}

	rows = [][]interface{}{
		{"Metric", "Value"},
		{"Period", payload.Period},
		{"Total Bookings", payload.AutoCancel.Total},
		{"Auto-cancelled Bookings", payload.AutoCancel.AutoCancelled},
		{"Auto-cancelled (%)", payload.AutoCancel.Percent()},
	}
	if err := writeRows(f, SheetSummary, rows, header); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func heatmapGrid(payload DashboardPayload) [][]interface{} {
	counts := make(map[[2]int]int, len(payload.Heatmap))
	for _, cell := range payload.Heatmap {
		counts[[2]int{cell.Weekday, cell.Hour}] += cell.Count
	}
	headerRow := make([]interface{}, 0, 25)
	headerRow = append(headerRow, "Day of Week")
	for hour := 0; hour < 24; hour++ {
		headerRow = append(headerRow, hour)
	}
	grid := [][]interface{}{headerRow}
	for weekday := 0; weekday < 7; weekday++ {
		row := make([]interface{}, 0, 25)
		row = append(row, WeekdayName(weekday))
		for hour := 0; hour < 24; hour++ {
			row = append(row, counts[[2]int{weekday, hour}])
		}
		grid = append(grid, row)
	}
	return grid
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}
