package export

import (
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatFloat renders a machine readable value with two decimals.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatNumber renders a grouped, human readable value.
func formatNumber(v float64) string {
	return printer.Sprintf("%.2f", v)
}

func formatCount(v int) string {
	return printer.Sprintf("%d", v)
}

// WeekdayName maps 0..6 (Sunday first) to an English day name.
func WeekdayName(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return strconv.Itoa(weekday)
	}
	return time.Weekday(weekday).String()
}
