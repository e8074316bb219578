package svg

// BarOpts customises the category bar renderer.
type BarOpts struct {
	Title       string
	Description string
	SeriesLabel string
	Color       string
	AxisColor   string
	GridColor   string
	YAxisTitle  string
	Padding     float64
	TickCount   int
}

// BubbleOpts customises the bubble scatter renderer. Axis ranges are inclusive
// and drawn even when no point falls inside them.
type BubbleOpts struct {
	Title       string
	Description string
	SeriesLabel string
	Color       string
	AxisColor   string
	GridColor   string
	XAxisTitle  string
	YAxisTitle  string
	XMin        float64
	XMax        float64
	XStep       float64
	YMin        float64
	YMax        float64
	YStep       float64
	Padding     float64
}

// Point is a bubble positioned in data coordinates with size value R.
type Point struct {
	X float64
	Y float64
	R float64
}

// Defaults for the analytics charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 260
	DefaultPadding = 36.0
	DefaultTicks   = 5
)
