package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomesh-ai/biomesh/figure"
)

func TestSaveDataToWorkspace(t *testing.T) {
	m := newTestManager(t)
	_, err := m.SetData(sampleDataset(t), map[string]any{"source": "upload"})
	require.NoError(t, err)

	path, err := m.SaveDataToWorkspace("expression.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(m.DataDir(), "expression.csv"), path)
	assert.FileExists(t, path)
	assert.FileExists(t, filepath.Join(m.DataDir(), "expression_metadata.json"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "gene_a")
	assert.Contains(t, string(raw), "cell_1")
}

func TestSaveDataToWorkspace_NoData(t *testing.T) {
	m := newTestManager(t)
	_, err := m.SaveDataToWorkspace("x.csv")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSaveDataToWorkspace_GeneratedFilename(t *testing.T) {
	m := newTestManager(t)
	_, err := m.SetData(sampleDataset(t), nil)
	require.NoError(t, err)

	path, err := m.SaveDataToWorkspace("")
	require.NoError(t, err)
	assert.Regexp(t, `data_\d{8}_\d{6}\.csv$`, path)
}

func TestSavePlotsToWorkspace(t *testing.T) {
	m := newTestManager(t)
	m.AddPlot(scatterFigure("UMAP"), "UMAP", "test")

	saved := m.SavePlotsToWorkspace()
	require.NotEmpty(t, saved)
	assert.FileExists(t, filepath.Join(m.PlotsDir(), "plot_1_UMAP.html"))
	assert.FileExists(t, filepath.Join(m.PlotsDir(), "plot_1_UMAP.png"))
}

func TestSavePlotsToWorkspace_PNGBestEffort(t *testing.T) {
	m := newTestManager(t)
	fig := figure.New("Correlation").AddHeatmap("corr", [][]float64{{1, 0.5}, {0.5, 1}})
	m.AddPlot(fig, "Correlation", "test")

	saved := m.SavePlotsToWorkspace()
	require.Len(t, saved, 1, "heatmap has no static rendering, HTML only")
	assert.FileExists(t, filepath.Join(m.PlotsDir(), "plot_1_Correlation.html"))
	assert.NoFileExists(t, filepath.Join(m.PlotsDir(), "plot_1_Correlation.png"))
}

func TestAutoSaveState(t *testing.T) {
	m := newTestManager(t)
	_, err := m.SetData(sampleDataset(t), nil)
	require.NoError(t, err)
	m.AddPlot(scatterFigure("QC"), "QC", "test")
	m.LogToolUsage("load_data", map[string]any{"path": "x.csv"}, "")

	saved := m.AutoSaveState()
	assert.Len(t, saved, 3, "data, plots and processing log are saved")
	assert.FileExists(t, filepath.Join(m.ExportsDir(), "processing_log.json"))
}

func TestGetWorkspaceStatus(t *testing.T) {
	m := newTestManager(t)
	status := m.GetWorkspaceStatus()
	assert.False(t, status.DataLoaded)
	assert.Nil(t, status.CurrentData)
	assert.Equal(t, 0, status.PlotCount)

	_, err := m.SetData(sampleDataset(t), nil)
	require.NoError(t, err)
	m.AddPlot(scatterFigure("p"), "p", "test")
	_, err = m.SaveDataToWorkspace("d.csv")
	require.NoError(t, err)

	status = m.GetWorkspaceStatus()
	assert.True(t, status.DataLoaded)
	require.NotNil(t, status.CurrentData)
	assert.Equal(t, [2]int{3, 2}, status.CurrentData.Shape)
	assert.Equal(t, 1, status.PlotCount)
	assert.Equal(t, 1, status.FileCounts["data_files"])
}

func TestListWorkspaceFiles_Categories(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.WriteFile(filepath.Join(m.DataDir(), "a.csv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(m.ExportsDir(), "b.zip"), []byte("y"), 0o644))

	files := m.ListWorkspaceFiles()
	require.Len(t, files["data"], 1)
	assert.Equal(t, "a.csv", files["data"][0].Name)
	require.Len(t, files["exports"], 1)
	assert.Empty(t, files["plots"])
}
