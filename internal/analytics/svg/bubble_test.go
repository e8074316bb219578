package svg

import (
	"strings"
	"testing"
)

func heatmapOpts() BubbleOpts {
	return BubbleOpts{
		Title:       "Booking Heatmap",
		SeriesLabel: "Booking Heatmap",
		XAxisTitle:  "Hour of Day",
		YAxisTitle:  "Day of Week",
		XMin:        0,
		XMax:        23,
		XStep:       1,
		YMin:        0,
		YMax:        6,
		YStep:       1,
	}
}

func TestBubblesDrawsFullGrid(t *testing.T) {
	html, err := Bubbles(720, 260, nil, heatmapOpts())
	if err != nil {
		t.Fatalf("bubbles renderer error: %v", err)
	}
	output := string(html)
	if !strings.Contains(output, "Hour of Day") || !strings.Contains(output, "Day of Week") {
		t.Fatalf("expected axis titles")
	}
	if !strings.Contains(output, ">23</text>") {
		t.Fatalf("expected last hour tick")
	}
	if got := strings.Count(output, "<circle"); got != 1 {
		t.Fatalf("expected only the legend marker for empty data")
	}
}

func TestBubblesSkipsOutOfRangeAndEmptyPoints(t *testing.T) {
	points := []Point{
		{X: 9, Y: 1, R: 4},
		{X: 14, Y: 3, R: 1},
		{X: 30, Y: 1, R: 2},
		{X: 10, Y: 2, R: 0},
	}
	html, err := Bubbles(720, 260, points, heatmapOpts())
	if err != nil {
		t.Fatalf("bubbles renderer error: %v", err)
	}
	// two data bubbles plus the legend marker
	if got := strings.Count(string(html), "<circle"); got != 3 {
		t.Fatalf("expected 3 circles, got %d", got)
	}
}

func TestBubblesRequiresRange(t *testing.T) {
	if _, err := Bubbles(720, 260, nil, BubbleOpts{}); err == nil {
		t.Fatalf("expected range error")
	}
}
