package export

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomesh-ai/biomesh/data"
	"github.com/biomesh-ai/biomesh/figure"
)

func newTestStore(t *testing.T) *data.Manager {
	t.Helper()
	m, err := data.New(func(o *data.Options) {
		o.WorkspacePath = t.TempDir()
	})
	require.NoError(t, err)
	return m
}

func loadSampleData(t *testing.T, m *data.Manager) {
	t.Helper()
	df := dataframe.New(
		series.New([]float64{1, 2, 3}, series.Float, "gene_a"),
		series.New([]float64{4, 5, 6}, series.Float, "gene_b"),
	)
	require.NoError(t, df.Err)
	_, err := m.SetData(data.NewDataset(df, []string{"c1", "c2", "c3"}), map[string]any{"tissue": "liver"})
	require.NoError(t, err)
}

func archiveNames(t *testing.T, path string) map[string]bool {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	return names
}

func readArchiveFile(t *testing.T, path, name string) []byte {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		return raw
	}
	t.Fatalf("archive %s has no entry %s", path, name)
	return nil
}

func TestCreateDataPackage_NoData(t *testing.T) {
	m := newTestStore(t)
	p := New(m)

	_, err := p.CreateDataPackage(t.TempDir())
	assert.ErrorIs(t, err, data.ErrNoData)
}

func TestCreateDataPackage_Contents(t *testing.T) {
	m := newTestStore(t)
	loadSampleData(t, m)
	m.LogToolUsage("load_data", map[string]any{"path": "counts.csv"}, "Loaded counts")
	m.AddPlot(figure.New("UMAP").AddScatter("cells", []float64{1, 2}, []float64{3, 4}), "UMAP", "test")

	p := New(m)
	path, err := p.CreateDataPackage(t.TempDir())
	require.NoError(t, err)
	assert.Regexp(t, `data_export_\d{8}_\d{6}\.zip$`, path)

	names := archiveNames(t, path)
	assert.True(t, names["technical_summary.md"])
	assert.True(t, names["raw_data.csv"])
	assert.True(t, names["processed_data.gob"])
	assert.True(t, names["plots/plot_1_UMAP.html"])
	assert.True(t, names["plots/plot_1_UMAP.png"])
	assert.True(t, names["plots/plot_1_UMAP_info.txt"])
	assert.True(t, names["plots/index.json"])
	assert.True(t, names["plots/README.md"])

	summary := string(readArchiveFile(t, path, "technical_summary.md"))
	assert.Contains(t, summary, "# Technical Summary")
	assert.Contains(t, summary, "### 1. load_data")

	raw := string(readArchiveFile(t, path, "raw_data.csv"))
	assert.Contains(t, raw, ",gene_a,gene_b")
	assert.Contains(t, raw, "c1,")
}

func TestCreateDataPackage_BrokenPlotSkipped(t *testing.T) {
	m := newTestStore(t)
	loadSampleData(t, m)

	m.AddPlot(figure.New("Scatter").AddScatter("cells", []float64{1, 2}, []float64{3, 4}), "Scatter", "test")
	// Heatmaps cannot be rasterized; this plot must be skipped without
	// failing the package.
	m.AddPlot(figure.New("Heatmap").AddHeatmap("corr", [][]float64{{1, 0}, {0, 1}}), "Heatmap", "test")
	m.AddPlot(figure.New("Bars").AddBar("counts", []string{"a", "b"}, []float64{1, 2}), "Bars", "test")

	p := New(m)
	path, err := p.CreateDataPackage(t.TempDir())
	require.NoError(t, err)

	names := archiveNames(t, path)
	assert.True(t, names["plots/plot_1_Scatter.html"])
	assert.True(t, names["plots/plot_3_Bars.html"])
	assert.False(t, names["plots/plot_2_Heatmap.png"])
	assert.False(t, names["plots/plot_2_Heatmap.html"], "skipped plots leave no partial files in the index dirs")

	var index []PlotIndexEntry
	require.NoError(t, json.Unmarshal(readArchiveFile(t, path, "plots/index.json"), &index))
	require.Len(t, index, 2)
	assert.Equal(t, "plot_1", index[0].ID)
	assert.Equal(t, "plot_3", index[1].ID)

	readme := string(readArchiveFile(t, path, "plots/README.md"))
	assert.Contains(t, readme, "Scatter")
	assert.Contains(t, readme, "Bars")
	assert.NotContains(t, readme, "Heatmap")
}

func TestCreateDataPackage_NoPlots(t *testing.T) {
	m := newTestStore(t)
	loadSampleData(t, m)

	p := New(m)
	path, err := p.CreateDataPackage(t.TempDir())
	require.NoError(t, err)

	names := archiveNames(t, path)
	assert.True(t, names["technical_summary.md"])
	assert.False(t, names["plots/index.json"], "no plots dir when nothing was plotted")
}
