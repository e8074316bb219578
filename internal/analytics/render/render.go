// Package render describes charts independently of the backend that draws them.
// A Renderer always receives its target surface explicitly.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/odyssey-erp/roomstats/internal/analytics/chartdata"
)

// Kind tags the chart type a renderer must draw.
type Kind string

const (
	// KindCategoryBar draws one bar per label.
	KindCategoryBar Kind = "category-bar"
	// KindBubbleScatter draws points sized by their R value.
	KindBubbleScatter Kind = "bubble-scatter"
)

var (
	// ErrUnknownKind is returned for kinds no backend understands.
	ErrUnknownKind = errors.New("render: unknown chart kind")
	// ErrKindMismatch is returned when the payload does not fit the kind.
	ErrKindMismatch = errors.New("render: payload does not match chart kind")
	// ErrSeriesLength is returned when labels and values differ in length.
	ErrSeriesLength = errors.New("render: labels and values length differ")
)

// Options carries display settings. Axis bounds are fixed ranges, not derived
// from the data, when the corresponding Fixed flag is set.
type Options struct {
	Title       string
	Description string
	SeriesLabel string
	Color       string
	XAxisTitle  string
	YAxisTitle  string
	FixedX      bool
	XMin        float64
	XMax        float64
	XTickStep   float64
	FixedY      bool
	YMin        float64
	YMax        float64
	YTickStep   float64
	Width       int
	Height      int
}

// Chart pairs a kind with its payload. Category bars use Series, bubble
// scatters use Points.
type Chart struct {
	Kind    Kind
	Options Options
	Series  *chartdata.CategorySeries
	Points  []chartdata.BubblePoint
}

// Renderer draws a chart onto the supplied surface.
type Renderer interface {
	Draw(w io.Writer, chart Chart) error
}

// Validate checks that the payload is consistent with the kind.
func (c Chart) Validate() error {
	switch c.Kind {
	case KindCategoryBar:
		if c.Series == nil || c.Points != nil {
			return fmt.Errorf("%w: %s", ErrKindMismatch, c.Kind)
		}
		if len(c.Series.Labels) != len(c.Series.Values) {
			return ErrSeriesLength
		}
	case KindBubbleScatter:
		if c.Series != nil {
			return fmt.Errorf("%w: %s", ErrKindMismatch, c.Kind)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}
	return nil
}

// HTML draws the chart into a buffer and returns it as trusted markup.
func HTML(r Renderer, chart Chart) (template.HTML, error) {
	if r == nil {
		return "", errors.New("render: renderer missing")
	}
	var buf bytes.Buffer
	if err := r.Draw(&buf, chart); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// BubbleRadius maps a point's R onto a pixel radius so that the largest value
// in the set gets maxPixels. Area grows linearly with R.
func BubbleRadius(r, maxR, maxPixels float64) float64 {
	if r <= 0 || maxR <= 0 || maxPixels <= 0 {
		return 0
	}
	if r > maxR {
		r = maxR
	}
	return maxPixels * math.Sqrt(r/maxR)
}

// MaxR returns the largest R in the set, or zero for an empty set.
func MaxR(points []chartdata.BubblePoint) float64 {
	maxR := 0.0
	for _, p := range points {
		if p.R > maxR {
			maxR = p.R
		}
	}
	return maxR
}
