package export

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/biomesh-ai/biomesh/data"
	"github.com/biomesh-ai/biomesh/logging"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// Logger receives per-item failure records.
	Logger logging.Logger
}

// Packager assembles export bundles from a Manager's state.
type Packager struct {
	data   *data.Manager
	logger logging.Logger
}

// New constructs a Packager over the given artifact store.
func New(manager *data.Manager, optFns ...func(o *Options)) *Packager {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Packager{data: manager, logger: opts.Logger}
}

// PlotIndexEntry is one row of the machine-readable plot index.
type PlotIndexEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Filename  string `json:"filename"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// CreateDataPackage builds a zip archive with the technical summary, data
// exports, plot renderings and indexes, and returns the archive path.
//
// Single-item failures (an unserializable matrix, a plot that cannot be
// rasterized) are logged and skipped; the rest of the package still
// completes. The only failure that aborts the operation is a missing
// dataset.
func (p *Packager) CreateDataPackage(outputDir string) (string, error) {
	if !p.data.HasData() {
		return "", fmt.Errorf("create data package: %w", data.ErrNoData)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	staging, err := os.MkdirTemp("", "biomesh_export_*")
	if err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := os.WriteFile(filepath.Join(staging, "technical_summary.md"), []byte(p.data.GetTechnicalSummary()), 0o644); err != nil {
		return "", fmt.Errorf("write technical summary: %w", err)
	}

	if err := p.writeRawData(staging); err != nil {
		return "", fmt.Errorf("write raw data: %w", err)
	}

	p.writeMatrix(staging)
	p.writePlots(staging)

	zipPath := filepath.Join(outputDir, fmt.Sprintf("data_export_%s.zip", time.Now().Format("20060102_150405")))
	if err := zipDir(staging, zipPath); err != nil {
		return "", fmt.Errorf("compress package: %w", err)
	}

	p.logger.Info("data package created", "path", zipPath)
	return zipPath, nil
}

func (p *Packager) writeRawData(staging string) error {
	ds, ok := p.data.GetCurrentData()
	if !ok {
		return data.ErrNoData
	}
	f, err := os.Create(filepath.Join(staging, "raw_data.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	return ds.WriteCSV(f)
}

// writeMatrix attempts the native serialized form, falling back to a plain
// tabular export. Neither failure aborts the package.
func (p *Packager) writeMatrix(staging string) {
	m := p.data.DerivedMatrix()
	if m == nil {
		return
	}
	if err := writeTo(filepath.Join(staging, "processed_data.gob"), m.EncodeGob); err != nil {
		p.logger.Error("failed to save matrix natively", "error", err.Error())
		if err := writeTo(filepath.Join(staging, "processed_data.csv"), m.WriteCSV); err != nil {
			p.logger.Error("failed to save matrix fallback", "error", err.Error())
		}
	}
}

// writePlots exports every retained plot, collecting an index of the ones
// that succeeded. A plot whose rendering fails is logged, skipped, and
// absent from both indexes.
func (p *Packager) writePlots(staging string) {
	plots := p.data.GetLatestPlots(0)
	if len(plots) == 0 {
		return
	}

	plotsDir := filepath.Join(staging, "plots")
	if err := os.MkdirAll(plotsDir, 0o755); err != nil {
		p.logger.Error("failed to create plots dir", "error", err.Error())
		return
	}

	index := make([]PlotIndexEntry, 0, len(plots))
	for _, rec := range plots {
		entry, err := p.exportPlot(plotsDir, rec)
		if err != nil {
			p.logger.Error("failed to save plot", "plot_id", rec.ID, "error", err.Error())
			continue
		}
		index = append(index, entry)
	}

	if err := writeJSON(filepath.Join(plotsDir, "index.json"), index); err != nil {
		p.logger.Error("failed to write plot index", "error", err.Error())
	}
	if err := os.WriteFile(filepath.Join(plotsDir, "README.md"), []byte(plotReadme(index)), 0o644); err != nil {
		p.logger.Error("failed to write plot readme", "error", err.Error())
	}
}

func (p *Packager) exportPlot(plotsDir string, rec data.PlotRecord) (PlotIndexEntry, error) {
	base := rec.FileBase()

	htmlPath := filepath.Join(plotsDir, base+".html")
	if err := writeTo(htmlPath, rec.Figure.WriteHTML); err != nil {
		return PlotIndexEntry{}, fmt.Errorf("interactive rendering: %w", err)
	}
	pngPath := filepath.Join(plotsDir, base+".png")
	if err := rec.Figure.WritePNG(pngPath); err != nil {
		// A skipped plot must not leave partial files in the package.
		os.Remove(htmlPath)
		os.Remove(pngPath)
		return PlotIndexEntry{}, fmt.Errorf("static rendering: %w", err)
	}

	info := fmt.Sprintf("ID: %s\nTitle: %s\nCreated: %s\nSource: %s\n",
		rec.ID, rec.Title, rec.Timestamp.Format(time.RFC3339), rec.Source)
	if err := os.WriteFile(filepath.Join(plotsDir, base+"_info.txt"), []byte(info), 0o644); err != nil {
		os.Remove(htmlPath)
		os.Remove(pngPath)
		return PlotIndexEntry{}, fmt.Errorf("metadata file: %w", err)
	}

	return PlotIndexEntry{
		ID:        rec.ID,
		Title:     rec.Title,
		Filename:  base,
		Timestamp: rec.Timestamp.Format(time.RFC3339),
		Source:    rec.Source,
	}, nil
}

func plotReadme(index []PlotIndexEntry) string {
	var b strings.Builder
	b.WriteString("# Generated Plots\n\n")
	for i, entry := range index {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, entry.Title)
		fmt.Fprintf(&b, "- ID: %s\n", entry.ID)
		fmt.Fprintf(&b, "- Created: %s\n", entry.Timestamp)
		fmt.Fprintf(&b, "- Source: %s\n", entry.Source)
		fmt.Fprintf(&b, "- Files: [%s.html](%s.html), [%s.png](%s.png)\n\n",
			entry.Filename, entry.Filename, entry.Filename, entry.Filename)
	}
	return b.String()
}

func writeTo(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

func writeJSON(path string, v any) error {
	return writeTo(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// zipDir compresses the staging directory into a single archive, preserving
// relative paths.
func zipDir(root, zipPath string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
