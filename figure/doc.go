// Package figure provides the renderable figure value stored by the data
// manager and exported by the packager. A Figure is an ordered set of traces
// plus layout, serializable to a plotly-compatible JSON spec. Two renderers
// are provided: WriteHTML emits a self-contained interactive page and
// WritePNG rasterizes the figure via gonum/plot. Not every trace kind has a
// static rasterization; WritePNG returns an error for those and callers are
// expected to tolerate it.
package figure
