package figure

import (
	"encoding/json"
	"fmt"
)

// TraceKind identifies the visual encoding of a trace.
type TraceKind string

const (
	// KindScatter is a point cloud.
	KindScatter TraceKind = "scatter"
	// KindLine is a connected line series.
	KindLine TraceKind = "line"
	// KindBar is a categorical bar series.
	KindBar TraceKind = "bar"
	// KindHeatmap is a dense matrix rendering. Interactive/JSON only;
	// the static rasterizer rejects it.
	KindHeatmap TraceKind = "heatmap"
)

// Trace is one data series of a figure.
type Trace struct {
	Kind   TraceKind
	Name   string
	X      []float64
	Y      []float64
	Z      [][]float64 // heatmap values
	Labels []string    // categorical axis labels (bar traces)
}

// Layout carries figure-level presentation settings.
type Layout struct {
	Title  string
	XTitle string
	YTitle string
	Width  int
	Height int
}

// Figure is an ordered collection of traces plus layout. The zero value is a
// valid empty figure.
type Figure struct {
	Traces []Trace
	Layout Layout
}

// New returns an empty figure with the given title.
func New(title string) *Figure {
	return &Figure{Layout: Layout{Title: title, Width: 900, Height: 600}}
}

// SetTitle overwrites the layout title.
func (f *Figure) SetTitle(title string) { f.Layout.Title = title }

// AddScatter appends a scatter trace.
func (f *Figure) AddScatter(name string, x, y []float64) *Figure {
	f.Traces = append(f.Traces, Trace{Kind: KindScatter, Name: name, X: x, Y: y})
	return f
}

// AddLine appends a line trace.
func (f *Figure) AddLine(name string, x, y []float64) *Figure {
	f.Traces = append(f.Traces, Trace{Kind: KindLine, Name: name, X: x, Y: y})
	return f
}

// AddBar appends a categorical bar trace.
func (f *Figure) AddBar(name string, labels []string, values []float64) *Figure {
	f.Traces = append(f.Traces, Trace{Kind: KindBar, Name: name, Labels: labels, Y: values})
	return f
}

// AddHeatmap appends a heatmap trace over the given matrix.
func (f *Figure) AddHeatmap(name string, z [][]float64) *Figure {
	f.Traces = append(f.Traces, Trace{Kind: KindHeatmap, Name: name, Z: z})
	return f
}

// Validate reports whether every trace is internally consistent.
func (f *Figure) Validate() error {
	for i, t := range f.Traces {
		switch t.Kind {
		case KindScatter, KindLine:
			if len(t.X) != len(t.Y) {
				return fmt.Errorf("trace %d (%s): x/y length mismatch %d != %d", i, t.Kind, len(t.X), len(t.Y))
			}
		case KindBar:
			if len(t.Labels) != len(t.Y) {
				return fmt.Errorf("trace %d (bar): label/value length mismatch %d != %d", i, len(t.Labels), len(t.Y))
			}
		case KindHeatmap:
			if len(t.Z) == 0 {
				return fmt.Errorf("trace %d (heatmap): empty matrix", i)
			}
		default:
			return fmt.Errorf("trace %d: unknown kind %q", i, t.Kind)
		}
	}
	return nil
}

// wire structs mirror the plotly JSON spec.
type wireTrace struct {
	Type   string      `json:"type"`
	Mode   string      `json:"mode,omitempty"`
	Name   string      `json:"name,omitempty"`
	X      interface{} `json:"x,omitempty"`
	Y      []float64   `json:"y,omitempty"`
	Z      [][]float64 `json:"z,omitempty"`
}

type wireTitle struct {
	Text string `json:"text"`
}

type wireAxis struct {
	Title wireTitle `json:"title"`
}

type wireLayout struct {
	Title  wireTitle `json:"title"`
	XAxis  *wireAxis `json:"xaxis,omitempty"`
	YAxis  *wireAxis `json:"yaxis,omitempty"`
	Width  int       `json:"width,omitempty"`
	Height int       `json:"height,omitempty"`
}

type wireFigure struct {
	Data   []wireTrace `json:"data"`
	Layout wireLayout  `json:"layout"`
}

// MarshalJSON emits a plotly-compatible figure spec.
func (f *Figure) MarshalJSON() ([]byte, error) {
	w := wireFigure{
		Data:   make([]wireTrace, 0, len(f.Traces)),
		Layout: wireLayout{Title: wireTitle{Text: f.Layout.Title}, Width: f.Layout.Width, Height: f.Layout.Height},
	}
	if f.Layout.XTitle != "" {
		w.Layout.XAxis = &wireAxis{Title: wireTitle{Text: f.Layout.XTitle}}
	}
	if f.Layout.YTitle != "" {
		w.Layout.YAxis = &wireAxis{Title: wireTitle{Text: f.Layout.YTitle}}
	}
	for _, t := range f.Traces {
		wt := wireTrace{Name: t.Name, Y: t.Y}
		switch t.Kind {
		case KindScatter:
			wt.Type = "scatter"
			wt.Mode = "markers"
			wt.X = t.X
		case KindLine:
			wt.Type = "scatter"
			wt.Mode = "lines"
			wt.X = t.X
		case KindBar:
			wt.Type = "bar"
			wt.X = t.Labels
		case KindHeatmap:
			wt.Type = "heatmap"
			wt.Z = t.Z
			wt.Y = nil
		}
		w.Data = append(w.Data, wt)
	}
	return json.Marshal(w)
}
