package svg

import (
	"fmt"
	"html/template"
	"io"

	"github.com/odyssey-erp/roomstats/internal/analytics/chartdata"
	"github.com/odyssey-erp/roomstats/internal/analytics/render"
)

// Renderer draws charts as inline SVG markup.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer returns a renderer using the default viewport.
func NewRenderer() Renderer {
	return Renderer{Width: DefaultWidth, Height: DefaultHeight}
}

// Draw implements render.Renderer.
func (r Renderer) Draw(w io.Writer, chart render.Chart) error {
	if err := chart.Validate(); err != nil {
		return err
	}
	width, height := r.Width, r.Height
	if chart.Options.Width > 0 {
		width = chart.Options.Width
	}
	if chart.Options.Height > 0 {
		height = chart.Options.Height
	}

	var (
		html template.HTML
		err  error
	)
	switch chart.Kind {
	case render.KindCategoryBar:
		html, err = Bars(width, height, chart.Series.Values, chart.Series.Labels, BarOpts{
			Title:       chart.Options.Title,
			Description: chart.Options.Description,
			SeriesLabel: chart.Options.SeriesLabel,
			Color:       chart.Options.Color,
			YAxisTitle:  chart.Options.YAxisTitle,
		})
	case render.KindBubbleScatter:
		html, err = Bubbles(width, height, toPoints(chart), bubbleOpts(chart))
	default:
		return fmt.Errorf("%w: %q", render.ErrUnknownKind, chart.Kind)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, string(html))
	return err
}

func toPoints(chart render.Chart) []Point {
	points := make([]Point, 0, len(chart.Points))
	for _, p := range chart.Points {
		points = append(points, Point{X: p.X, Y: p.Y, R: p.R})
	}
	return points
}

// bubbleOpts derives axis ranges from the data for unfixed axes.
func bubbleOpts(chart render.Chart) BubbleOpts {
	o := chart.Options
	opts := BubbleOpts{
		Title:       o.Title,
		Description: o.Description,
		SeriesLabel: o.SeriesLabel,
		Color:       o.Color,
		XAxisTitle:  o.XAxisTitle,
		YAxisTitle:  o.YAxisTitle,
		XMin:        o.XMin,
		XMax:        o.XMax,
		XStep:       o.XTickStep,
		YMin:        o.YMin,
		YMax:        o.YMax,
		YStep:       o.YTickStep,
	}
	if !o.FixedX {
		opts.XMin, opts.XMax = dataRange(chart.Points, func(p chartdata.BubblePoint) float64 { return p.X })
	}
	if !o.FixedY {
		opts.YMin, opts.YMax = dataRange(chart.Points, func(p chartdata.BubblePoint) float64 { return p.Y })
	}
	return opts
}

func dataRange(points []chartdata.BubblePoint, pick func(chartdata.BubblePoint) float64) (float64, float64) {
	if len(points) == 0 {
		return 0, 1
	}
	minVal := pick(points[0])
	maxVal := minVal
	for _, p := range points[1:] {
		v := pick(p)
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if almostEqual(minVal, maxVal) {
		maxVal = minVal + 1
	}
	return minVal, maxVal
}
