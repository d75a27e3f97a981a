package data

import (
	"fmt"
	"strings"
	"time"

	"github.com/biomesh-ai/biomesh/figure"
)

// PlotRecord is one stored plot artifact: a monotonically increasing id, its
// presentation metadata and the rendered figure.
type PlotRecord struct {
	ID        string
	Title     string
	Source    string
	Timestamp time.Time
	Figure    *figure.Figure
}

// PlotSummary is a PlotRecord minus the heavy figure payload.
type PlotSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary strips the figure from the record.
func (p PlotRecord) Summary() PlotSummary {
	return PlotSummary{ID: p.ID, Title: p.Title, Source: p.Source, Timestamp: p.Timestamp}
}

// FileBase returns the filesystem-safe base name used for this plot's
// exported files: the id joined with a slug of the title.
func (p PlotRecord) FileBase() string {
	slug := slugify(p.Title)
	if slug == "" {
		return p.ID
	}
	return p.ID + "_" + slug
}

// slugify keeps alphanumerics, spaces, underscores and dashes, then replaces
// spaces with underscores.
func slugify(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimRight(b.String(), " "), " ", "_")
}

// plotRing is a fixed-capacity ordered collection with FIFO eviction.
type plotRing struct {
	entries []PlotRecord
	head    int
	count   int
}

func newPlotRing(capacity int) *plotRing {
	return &plotRing{entries: make([]PlotRecord, capacity)}
}

// push appends a record, evicting the oldest when full.
func (r *plotRing) push(p PlotRecord) {
	if r.count < len(r.entries) {
		r.entries[(r.head+r.count)%len(r.entries)] = p
		r.count++
		return
	}
	r.entries[r.head] = p
	r.head = (r.head + 1) % len(r.entries)
}

// snapshot returns the retained records in insertion order.
func (r *plotRing) snapshot() []PlotRecord {
	out := make([]PlotRecord, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.entries[(r.head+i)%len(r.entries)])
	}
	return out
}

func (r *plotRing) clear() {
	r.head = 0
	r.count = 0
}

func (r *plotRing) len() int { return r.count }

// AddPlot stores a figure with a fresh monotonic id and returns the id. A
// nil figure is rejected with an empty id; AddPlot never returns an error so
// plotting tools can call it unconditionally.
func (m *Manager) AddPlot(fig *figure.Figure, title, source string) string {
	if fig == nil {
		m.logger.Error("AddPlot called without a figure")
		return ""
	}
	if title != "" {
		fig.SetTitle(title)
	}
	if title == "" {
		title = "Untitled"
	}

	m.plotCounter++
	id := fmt.Sprintf("plot_%d", m.plotCounter)
	m.plots.push(PlotRecord{
		ID:        id,
		Title:     title,
		Source:    source,
		Timestamp: time.Now(),
		Figure:    fig,
	})

	m.logger.Info("plot added", "title", title, "plot_id", id)
	return id
}

// GetPlotByID returns the figure stored under id or ErrPlotNotFound.
func (m *Manager) GetPlotByID(id string) (*figure.Figure, error) {
	for _, p := range m.plots.snapshot() {
		if p.ID == id {
			return p.Figure, nil
		}
	}
	return nil, ErrPlotNotFound
}

// GetLatestPlots returns the n most recent records in insertion order, or
// all of them when n <= 0.
func (m *Manager) GetLatestPlots(n int) []PlotRecord {
	all := m.plots.snapshot()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// GetPlotHistory returns every retained record minus the figure payload.
func (m *Manager) GetPlotHistory() []PlotSummary {
	all := m.plots.snapshot()
	out := make([]PlotSummary, 0, len(all))
	for _, p := range all {
		out = append(out, p.Summary())
	}
	return out
}

// ClearPlots empties the collection. The id counter is not reset; ids stay
// unique for the life of the Manager.
func (m *Manager) ClearPlots() {
	m.plots.clear()
	m.logger.Info("All plots cleared")
}

// PlotCount returns the number of retained plots.
func (m *Manager) PlotCount() int { return m.plots.len() }
