// Package echarts draws analytics charts as standalone interactive HTML pages.
package echarts

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/odyssey-erp/roomstats/internal/analytics/render"
)

const (
	defaultWidth  = 900
	defaultHeight = 420
	// maxSymbolSize is the pixel diameter of the largest heatmap bubble.
	maxSymbolSize = 36
	textColor     = "#334155"
)

// Renderer implements render.Renderer on top of go-echarts.
type Renderer struct{}

// NewRenderer returns an echarts renderer.
func NewRenderer() Renderer {
	return Renderer{}
}

// Draw implements render.Renderer.
func (Renderer) Draw(w io.Writer, chart render.Chart) error {
	if err := chart.Validate(); err != nil {
		return err
	}
	switch chart.Kind {
	case render.KindCategoryBar:
		return buildBar(chart).Render(w)
	case render.KindBubbleScatter:
		return buildScatter(chart).Render(w)
	default:
		return fmt.Errorf("%w: %q", render.ErrUnknownKind, chart.Kind)
	}
}

func initOpts(o render.Options) opts.Initialization {
	width, height := defaultWidth, defaultHeight
	if o.Width > 0 {
		width = o.Width
	}
	if o.Height > 0 {
		height = o.Height
	}
	return opts.Initialization{
		PageTitle: o.Title,
		Width:     fmt.Sprintf("%dpx", width),
		Height:    fmt.Sprintf("%dpx", height),
	}
}

func buildBar(chart render.Chart) *charts.Bar {
	o := chart.Options
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(o)),
		charts.WithTitleOpts(opts.Title{
			Title:      o.Title,
			Subtitle:   o.Description,
			TitleStyle: &opts.TextStyle{Color: textColor},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:         o.XAxisTitle,
			NameLocation: "center",
			NameGap:      30,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         o.YAxisTitle,
			NameLocation: "center",
			NameGap:      50,
		}),
	)

	data := make([]opts.BarData, len(chart.Series.Values))
	for i, v := range chart.Series.Values {
		data[i] = opts.BarData{Name: chart.Series.Labels[i], Value: v}
	}
	bar.SetXAxis(chart.Series.Labels).
		AddSeries(o.SeriesLabel, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: o.Color}))
	return bar
}

func buildScatter(chart render.Chart) *charts.Scatter {
	o := chart.Options
	xAxis := opts.XAxis{
		Name:         o.XAxisTitle,
		Type:         "value",
		NameLocation: "center",
		NameGap:      30,
	}
	yAxis := opts.YAxis{
		Name:         o.YAxisTitle,
		Type:         "value",
		NameLocation: "center",
		NameGap:      40,
	}
	if o.FixedX {
		xAxis.Min = o.XMin
		xAxis.Max = o.XMax
		xAxis.SplitNumber = splitNumber(o.XMin, o.XMax, o.XTickStep)
	}
	if o.FixedY {
		yAxis.Min = o.YMin
		yAxis.Max = o.YMax
		yAxis.SplitNumber = splitNumber(o.YMin, o.YMax, o.YTickStep)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(o)),
		charts.WithTitleOpts(opts.Title{
			Title:      o.Title,
			Subtitle:   o.Description,
			TitleStyle: &opts.TextStyle{Color: textColor},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(yAxis),
	)

	maxR := render.MaxR(chart.Points)
	data := make([]opts.ScatterData, 0, len(chart.Points))
	for _, p := range chart.Points {
		size := render.BubbleRadius(p.R, maxR, maxSymbolSize)
		if size <= 0 {
			continue
		}
		data = append(data, opts.ScatterData{
			Value:      []interface{}{p.X, p.Y, p.R},
			SymbolSize: int(math.Max(1, math.Round(size))),
		})
	}
	scatter.AddSeries(o.SeriesLabel, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: o.Color}))
	return scatter
}

func splitNumber(minVal, maxVal, step float64) int {
	if step <= 0 || maxVal <= minVal {
		return 0
	}
	return int(math.Round((maxVal - minVal) / step))
}
