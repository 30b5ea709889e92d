package domain

// ChartKind selects how a frame is drawn
type ChartKind string

const (
	ChartLine        ChartKind = "line"
	ChartStackedArea ChartKind = "stacked_area"
	ChartStackedBar  ChartKind = "stacked_bar"
	ChartPie         ChartKind = "pie"
)

// Series is one named sequence of values aligned with a frame index
type Series struct {
	Name   string    `json:"name"`
	Color  string    `json:"color,omitempty"`
	Values []float64 `json:"values"`
}

// Frame is chart-ready pivoted data: one row per index label and one column
// per series.
type Frame struct {
	Name   string    `json:"name"`
	Title  string    `json:"title"`
	Unit   string    `json:"unit,omitempty"`
	Kind   ChartKind `json:"kind"`
	Index  []string  `json:"index"`
	Series []Series  `json:"series"`

	// PointColors colors individual index entries, used by pie charts
	PointColors []string `json:"point_colors,omitempty"`
}

// SeriesByName returns the named series
func (f *Frame) SeriesByName(name string) (*Series, bool) {
	for i := range f.Series {
		if f.Series[i].Name == name {
			return &f.Series[i], true
		}
	}
	return nil, false
}

// SeriesNames returns the series names in order
func (f *Frame) SeriesNames() []string {
	names := make([]string, len(f.Series))
	for i, s := range f.Series {
		names[i] = s.Name
	}
	return names
}
