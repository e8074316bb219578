package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/odyssey-erp/roomstats/internal/analytics/render"
)

// Bubbles renders a scatter chart whose markers are scaled by R. Axis ranges come
// from opts, so sparse data still shows the full grid. Points outside the ranges
// and points with R <= 0 are not drawn.
func Bubbles(width, height int, points []Point, opts BubbleOpts) (template.HTML, error) {
	if opts.XMax <= opts.XMin || opts.YMax <= opts.YMin {
		return "", fmt.Errorf("svg: axis range required")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	xStep := opts.XStep
	if xStep <= 0 {
		xStep = 1
	}
	yStep := opts.YStep
	if yStep <= 0 {
		yStep = 1
	}

	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#cbd5f5")
	color := fallback(opts.Color, "rgba(15, 23, 42, 0.5)")
	seriesLabel := fallback(opts.SeriesLabel, "Series")

	chartWidth := float64(width) - 2*padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	columns := math.Floor((opts.XMax-opts.XMin)/xStep) + 1
	rows := math.Floor((opts.YMax-opts.YMin)/yStep) + 1
	maxRadius := math.Min(chartWidth/columns, chartHeight/rows) / 2
	innerWidth := chartWidth - 2*maxRadius
	innerHeight := chartHeight - 2*maxRadius
	chartBottom := padding + chartHeight

	xPos := func(v float64) float64 {
		return padding + maxRadius + (v-opts.XMin)/(opts.XMax-opts.XMin)*innerWidth
	}
	yPos := func(v float64) float64 {
		return chartBottom - maxRadius - (v-opts.YMin)/(opts.YMax-opts.YMin)*innerHeight
	}

	titleID := makeID(opts.Title, "bubble-title")
	descID := makeID(opts.Title, "bubble-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Bubble chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Scatter of sized points"))))

	for v := opts.XMin; v <= opts.XMax+1e-9; v += xStep {
		x := xPos(v)
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", x, padding, x, chartBottom, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x, chartBottom+14, axisColor, template.HTMLEscapeString(formatTick(v))))
	}
	for v := opts.YMin; v <= opts.YMax+1e-9; v += yStep {
		y := yPos(v)
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", padding, y, padding+chartWidth, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", padding-6, y+4, axisColor, template.HTMLEscapeString(formatTick(v))))
	}

	// Axes
	b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-label=\"Axes\">", axisColor))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, padding, padding, chartBottom))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, chartBottom, padding+chartWidth, chartBottom))
	b.WriteString("</g>")
	if opts.XAxisTitle != "" {
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"middle\">%s</text>", padding+chartWidth/2, chartBottom+30, axisColor, template.HTMLEscapeString(opts.XAxisTitle)))
	}
	if opts.YAxisTitle != "" {
		b.WriteString(axisTitleY(padding, chartHeight, axisColor, opts.YAxisTitle))
	}

	maxR := 0.0
	for _, p := range points {
		if p.R > maxR {
			maxR = p.R
		}
	}
	for _, p := range points {
		if p.R <= 0 || p.X < opts.XMin || p.X > opts.XMax || p.Y < opts.YMin || p.Y > opts.YMax {
			continue
		}
		radius := render.BubbleRadius(p.R, maxR, maxRadius)
		b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\"><title>%s</title></circle>", xPos(p.X), yPos(p.Y), radius, color, template.HTMLEscapeString(fmt.Sprintf("%s: %s @ (%s, %s)", seriesLabel, formatTick(p.R), formatTick(p.X), formatTick(p.Y)))))
	}

	legendY := padding - 12
	if legendY < 12 {
		legendY = 12
	}
	b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"5\" fill=\"%s\"></circle>", padding+5, legendY-3, color))
	b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", padding+14, legendY, axisColor, template.HTMLEscapeString(seriesLabel)))

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
