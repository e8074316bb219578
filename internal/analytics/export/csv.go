package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/odyssey-erp/roomstats/internal/analytics"
	"github.com/odyssey-erp/roomstats/internal/analytics/chartdata"
)

// WriteTopRoomsCSV serialises the booking ranking using the dashboard export header.
func WriteTopRoomsCSV(w io.Writer, rooms []analytics.RoomBookingCount) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Room Name", "Booking Count"}); err != nil {
		return err
	}
	for _, room := range rooms {
		if err := writer.Write([]string{room.Name, strconv.Itoa(room.BookingsCount)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteOccupancyCSV emits average occupancy as percentages.
func WriteOccupancyCSV(w io.Writer, rooms []analytics.RoomOccupancy) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Room Name", "Average Occupancy (%)"}); err != nil {
		return err
	}
	for _, room := range rooms {
		if err := writer.Write([]string{room.Name, formatFloat(chartdata.RoundPercent(room.AverageOccupancy))}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteHeatmapCSV prints one row per populated hour/weekday slot.
func WriteHeatmapCSV(w io.Writer, cells []analytics.HeatmapCell) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Day of Week", "Hour of Day", "Bookings"}); err != nil {
		return err
	}
	for _, cell := range cells {
		if err := writer.Write([]string{
			WeekdayName(cell.Weekday),
			strconv.Itoa(cell.Hour),
			strconv.Itoa(cell.Count),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
