package export

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/odyssey-erp/roomstats/internal/analytics"
	"github.com/odyssey-erp/roomstats/internal/analytics/chartdata"
	"github.com/odyssey-erp/roomstats/internal/analytics/render"
)

// DashboardPayload aggregates analytics data destined for PDF and XLSX exports.
type DashboardPayload struct {
	Period      string
	GeneratedAt time.Time
	TopRooms    []analytics.RoomBookingCount
	Occupancy   []analytics.RoomOccupancy
	Heatmap     []analytics.HeatmapCell
	AutoCancel  analytics.AutoCancelStats
	// Charts holds pre-rendered inline SVG keyed by chart id.
	Charts map[string]template.HTML
}

// HTMLConverter turns an HTML document into PDF bytes.
type HTMLConverter interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// PDFExporter renders the dashboard through an HTML to PDF converter.
type PDFExporter struct {
	converter HTMLConverter
}

// NewPDFExporter wires the exporter to a converter such as the Gotenberg client.
func NewPDFExporter(converter HTMLConverter) *PDFExporter {
	return &PDFExporter{converter: converter}
}

// RenderDashboard builds the printable document and converts it.
func (p *PDFExporter) RenderDashboard(ctx context.Context, payload DashboardPayload) ([]byte, error) {
	if p == nil || p.converter == nil {
		return nil, errors.New("pdf exporter not initialised")
	}
	data, err := p.converter.RenderHTML(ctx, BuildHTML(payload))
	if err != nil {
		return nil, fmt.Errorf("convert dashboard: %w", err)
	}
	return data, nil
}

// BuildHTML renders the printable dashboard document.
func BuildHTML(payload DashboardPayload) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("body{font-family:sans-serif;margin:24px;}h1{font-size:20px;}table{width:100%;border-collapse:collapse;margin-bottom:16px;}th,td{border:1px solid #ddd;padding:6px;text-align:right;}th{text-align:left;background:#f5f5f5;}section{margin-bottom:24px;} .metric-label{text-align:left;} svg{width:100%;height:auto;}")
	b.WriteString("</style></head><body>")
	b.WriteString(fmt.Sprintf("<h1>Room Analytics: %s</h1>", templateEscape(payload.Period)))
	if !payload.GeneratedAt.IsZero() {
		b.WriteString(fmt.Sprintf("<p>Generated %s</p>", templateEscape(payload.GeneratedAt.UTC().Format(time.RFC1123))))
	}

	b.WriteString("<section><h2>Summary</h2><table><tbody>")
	writeMetricRow(&b, "Total Bookings", formatCount(int(payload.AutoCancel.Total)))
	writeMetricRow(&b, "Auto-cancelled Bookings", formatCount(int(payload.AutoCancel.AutoCancelled)))
	writeMetricRow(&b, "Auto-cancelled (%)", formatNumber(payload.AutoCancel.Percent()))
	b.WriteString("</tbody></table></section>")

	b.WriteString("<section><h2>Top Rooms</h2>")
	writeChart(&b, payload.Charts, render.ChartTopRooms)
	b.WriteString("<table><thead><tr><th>Room Name</th><th>Booking Count</th></tr></thead><tbody>")
	for _, room := range payload.TopRooms {
		writeMetricRow(&b, room.Name, formatCount(room.BookingsCount))
	}
	b.WriteString("</tbody></table></section>")

	b.WriteString("<section><h2>Average Occupancy</h2>")
	writeChart(&b, payload.Charts, render.ChartOccupancy)
	b.WriteString("<table><thead><tr><th>Room Name</th><th>Average Occupancy (%)</th></tr></thead><tbody>")
	for _, room := range payload.Occupancy {
		writeMetricRow(&b, room.Name, formatNumber(chartdata.RoundPercent(room.AverageOccupancy)))
	}
	b.WriteString("</tbody></table></section>")

	if len(payload.Heatmap) > 0 || payload.Charts[render.ChartHeatmap] != "" {
		b.WriteString("<section><h2>Booking Heatmap</h2>")
		writeChart(&b, payload.Charts, render.ChartHeatmap)
		b.WriteString("<table><thead><tr><th>Day of Week</th><th>Hour of Day</th><th>Bookings</th></tr></thead><tbody>")
		for _, cell := range payload.Heatmap {
			b.WriteString("<tr><td class=\"metric-label\">")
			b.WriteString(templateEscape(WeekdayName(cell.Weekday)))
			b.WriteString(fmt.Sprintf("</td><td>%02d:00</td><td>", cell.Hour))
			b.WriteString(formatCount(cell.Count))
			b.WriteString("</td></tr>")
		}
		b.WriteString("</tbody></table></section>")
	}

	b.WriteString("</body></html>")
	return b.String()
}

func writeChart(b *strings.Builder, charts map[string]template.HTML, id string) {
	if svg, ok := charts[id]; ok && svg != "" {
		b.WriteString("<figure>")
		b.WriteString(string(svg))
		b.WriteString("</figure>")
	}
}

func writeMetricRow(b *strings.Builder, label, value string) {
	b.WriteString("<tr><td class=\"metric-label\">")
	b.WriteString(templateEscape(label))
	b.WriteString("</td><td>")
	b.WriteString(value)
	b.WriteString("</td></tr>")
}

func templateEscape(v string) string {
	return template.HTMLEscapeString(v)
}
