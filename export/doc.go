// Package export builds self-contained, reproducible bundles from the
// artifact store: a technical summary, the raw dataset, the derived matrix,
// per-plot renderings and machine/human-readable plot indexes, compressed
// into a single timestamped archive. Partial failure tolerance is the
// defining property; only a missing dataset aborts the whole operation.
package export
