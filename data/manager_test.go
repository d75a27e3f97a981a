package data

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, optFns ...func(o *Options)) *Manager {
	t.Helper()
	fns := append([]func(o *Options){func(o *Options) {
		o.WorkspacePath = t.TempDir()
	}}, optFns...)
	m, err := New(fns...)
	require.NoError(t, err)
	return m
}

func sampleDataset(t *testing.T) Dataset {
	t.Helper()
	df := dataframe.New(
		series.New([]float64{1.5, 2.5, 3.5}, series.Float, "gene_a"),
		series.New([]float64{10, 20, 30}, series.Float, "gene_b"),
	)
	require.NoError(t, df.Err)
	return NewDataset(df, []string{"cell_1", "cell_2", "cell_3"})
}

func wideDataset(t *testing.T, rows, cols int) Dataset {
	t.Helper()
	ss := make([]series.Series, cols)
	vals := make([]float64, rows)
	for i := range vals {
		vals[i] = float64(i)
	}
	for c := 0; c < cols; c++ {
		ss[c] = series.New(vals, series.Float, fmt.Sprintf("gene_%d", c))
	}
	df := dataframe.New(ss...)
	require.NoError(t, df.Err)
	return NewDataset(df, nil)
}

func TestNew_CreatesWorkspaceLayout(t *testing.T) {
	m := newTestManager(t)

	assert.DirExists(t, m.WorkspacePath())
	assert.DirExists(t, m.DataDir())
	assert.DirExists(t, m.PlotsDir())
	assert.DirExists(t, m.ExportsDir())
}

func TestSetData_StoresDataset(t *testing.T) {
	m := newTestManager(t)

	stored, err := m.SetData(sampleDataset(t), map[string]any{"source": "test.csv"})
	require.NoError(t, err)

	assert.True(t, m.HasData())
	assert.Equal(t, 3, stored.Frame.Nrow())
	assert.Equal(t, 2, stored.Frame.Ncol())
	assert.Equal(t, "test.csv", m.Metadata()["source"])

	current, ok := m.GetCurrentData()
	require.True(t, ok)
	assert.Equal(t, []string{"cell_1", "cell_2", "cell_3"}, current.Labels)
}

func TestSetData_CoercesNonNumericColumns(t *testing.T) {
	m := newTestManager(t)

	df := dataframe.New(
		series.New([]string{"1.5", "oops", "3.0"}, series.String, "mixed"),
		series.New([]float64{1, 2, 3}, series.Float, "clean"),
	)
	require.NoError(t, df.Err)

	stored, err := m.SetData(NewDataset(df, nil), nil)
	require.NoError(t, err)

	col := stored.Frame.Col("mixed").Float()
	assert.Equal(t, []float64{1.5, 0, 3.0}, col, "unparsable cells are filled with zero")
	for _, typ := range stored.Frame.Types() {
		assert.Equal(t, series.Float, typ)
	}
}

func TestSetData_EmptyFrameRejected(t *testing.T) {
	m := newTestManager(t)

	_, err := m.SetData(Dataset{Frame: dataframe.DataFrame{}}, nil)
	require.Error(t, err)

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.False(t, m.HasData())
}

func TestSetData_FailureClearsPreviousData(t *testing.T) {
	m := newTestManager(t)

	_, err := m.SetData(sampleDataset(t), map[string]any{"source": "first"})
	require.NoError(t, err)
	require.True(t, m.HasData())

	_, err = m.SetData(Dataset{Frame: dataframe.DataFrame{}}, nil)
	require.Error(t, err)

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.False(t, m.HasData(), "a failed replacement must not leave stale data loaded")
	assert.Empty(t, m.Metadata())
	assert.Nil(t, m.DerivedMatrix())

	_, ok := m.GetCurrentData()
	assert.False(t, ok)
}

func TestSetData_RebuildsDerivedMatrix(t *testing.T) {
	m := newTestManager(t)

	_, err := m.SetData(sampleDataset(t), map[string]any{"tissue": "liver"})
	require.NoError(t, err)

	matrix := m.DerivedMatrix()
	require.NotNil(t, matrix)
	rows, cols := matrix.X.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []string{"cell_1", "cell_2", "cell_3"}, matrix.Obs)
	assert.Equal(t, []string{"gene_a", "gene_b"}, matrix.Var)
	assert.InDelta(t, 2.5, matrix.X.At(1, 0), 1e-9)
}

func TestSetData_MatrixRebuildFailureFallsBackToPlaceholder(t *testing.T) {
	m := newTestManager(t)

	orig := buildMatrixFn
	buildMatrixFn = func(Dataset, map[string]any) (*Matrix, error) {
		return nil, errors.New("projection failed")
	}
	t.Cleanup(func() { buildMatrixFn = orig })

	stored, err := m.SetData(sampleDataset(t), nil)
	require.NoError(t, err, "a rebuild failure must not fail the load")

	assert.True(t, m.HasData(), "data validity is independent of matrix state")
	assert.Equal(t, 3, stored.Frame.Nrow())

	matrix := m.DerivedMatrix()
	require.NotNil(t, matrix)
	rows, cols := matrix.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
}

func TestSetData_ReplacesPreviousDataset(t *testing.T) {
	m := newTestManager(t)

	_, err := m.SetData(sampleDataset(t), map[string]any{"source": "first"})
	require.NoError(t, err)

	df := dataframe.New(series.New([]float64{9}, series.Float, "only"))
	require.NoError(t, df.Err)
	stored, err := m.SetData(NewDataset(df, nil), map[string]any{"source": "second"})
	require.NoError(t, err)

	assert.Equal(t, 1, stored.Frame.Nrow())
	assert.Equal(t, "second", m.Metadata()["source"])
	assert.Len(t, m.ProcessingLog(), 2, "each load is recorded")
}

func TestProcessingLog_AppendAndCopy(t *testing.T) {
	m := newTestManager(t)
	m.AppendProcessingLog("Normalized counts")
	m.AppendProcessingLog("Filtered low-quality cells")

	log := m.ProcessingLog()
	require.Equal(t, []string{"Normalized counts", "Filtered low-quality cells"}, log)

	log[0] = "mutated"
	assert.Equal(t, "Normalized counts", m.ProcessingLog()[0], "returned slice is a copy")
}

func TestGetDataSummary_NoData(t *testing.T) {
	m := newTestManager(t)
	summary := m.GetDataSummary()
	assert.Equal(t, "No data loaded", summary.Status)
	assert.Empty(t, summary.Columns)
}

func TestGetDataSummary_WithData(t *testing.T) {
	m := newTestManager(t)
	_, err := m.SetData(sampleDataset(t), map[string]any{"tissue": "liver", "assay": "rna"})
	require.NoError(t, err)

	summary := m.GetDataSummary()
	assert.Equal(t, "Data loaded", summary.Status)
	assert.Equal(t, [2]int{3, 2}, summary.Shape)
	assert.Equal(t, []string{"gene_a", "gene_b"}, summary.Columns)
	assert.Equal(t, []string{"cell_1", "cell_2", "cell_3"}, summary.SampleNames)
	assert.Equal(t, []string{"assay", "tissue"}, summary.MetadataKeys)
	assert.True(t, strings.HasSuffix(summary.MemoryUsage, "MB"))
}
