package figure

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var htmlPage = template.Must(template.New("figure").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>{{.Title}}</title>
<script src="https://cdn.plot.ly/plotly-2.32.0.min.js"></script>
</head>
<body>
<div id="figure"></div>
<script>
var spec = {{.Spec}};
Plotly.newPlot("figure", spec.data, spec.layout);
</script>
</body>
</html>
`))

// WriteHTML emits a self-contained interactive page rendering the figure
// through plotly.js.
func (f *Figure) WriteHTML(w io.Writer) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid figure: %w", err)
	}
	spec, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal figure spec: %w", err)
	}
	return htmlPage.Execute(w, struct {
		Title string
		Spec  template.JS
	}{Title: f.Layout.Title, Spec: template.JS(spec)})
}

// WritePNG rasterizes the figure to a static image at path. Heatmap traces
// have no static rasterization and cause an error; callers performing bulk
// export are expected to skip the figure and continue.
func (f *Figure) WritePNG(path string) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid figure: %w", err)
	}

	p := plot.New()
	p.Title.Text = f.Layout.Title
	p.X.Label.Text = f.Layout.XTitle
	p.Y.Label.Text = f.Layout.YTitle

	for i, t := range f.Traces {
		switch t.Kind {
		case KindScatter:
			s, err := plotter.NewScatter(xys(t))
			if err != nil {
				return fmt.Errorf("trace %d: %w", i, err)
			}
			p.Add(s)
			if t.Name != "" {
				p.Legend.Add(t.Name, s)
			}
		case KindLine:
			l, err := plotter.NewLine(xys(t))
			if err != nil {
				return fmt.Errorf("trace %d: %w", i, err)
			}
			p.Add(l)
			if t.Name != "" {
				p.Legend.Add(t.Name, l)
			}
		case KindBar:
			b, err := plotter.NewBarChart(plotter.Values(t.Y), vg.Points(18))
			if err != nil {
				return fmt.Errorf("trace %d: %w", i, err)
			}
			p.Add(b)
			p.NominalX(t.Labels...)
			if t.Name != "" {
				p.Legend.Add(t.Name, b)
			}
		case KindHeatmap:
			return fmt.Errorf("trace %d: no static rasterization for heatmap traces", i)
		}
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func xys(t Trace) plotter.XYs {
	pts := make(plotter.XYs, len(t.X))
	for i := range t.X {
		pts[i].X = t.X[i]
		pts[i].Y = t.Y[i]
	}
	return pts
}
