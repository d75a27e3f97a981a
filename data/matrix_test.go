package data

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMatrixGobRoundTrip(t *testing.T) {
	src := &Matrix{
		X:   mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		Obs: []string{"cell_1", "cell_2"},
		Var: []string{"a", "b", "c"},
		Uns: map[string]any{"tissue": "liver", "n_hvg": 2000},
	}

	var buf bytes.Buffer
	require.NoError(t, src.EncodeGob(&buf))

	got, err := DecodeGobMatrix(&buf)
	require.NoError(t, err)

	rows, cols := got.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.InDelta(t, 5, got.X.At(1, 1), 1e-12)
	assert.Equal(t, src.Obs, got.Obs)
	assert.Equal(t, src.Var, got.Var)
	assert.Equal(t, "liver", got.Uns["tissue"])
	assert.Equal(t, "2000", got.Uns["n_hvg"], "uns values travel as strings")
}

func TestDecodeGobMatrix_Garbage(t *testing.T) {
	_, err := DecodeGobMatrix(bytes.NewBufferString("not a gob stream"))
	assert.Error(t, err)
}

func TestMatrixWriteCSV(t *testing.T) {
	m := &Matrix{
		X:   mat.NewDense(2, 2, []float64{1.5, 2, 3, 4}),
		Obs: []string{"cell_1", "cell_2"},
		Var: []string{"gene_a", "gene_b"},
	}

	var buf bytes.Buffer
	require.NoError(t, m.WriteCSV(&buf))

	out := buf.String()
	assert.Contains(t, out, ",gene_a,gene_b\n")
	assert.Contains(t, out, "cell_1,1.5,2\n")
	assert.Contains(t, out, "cell_2,3,4\n")
}

func TestPlaceholderMatrix(t *testing.T) {
	m := placeholderMatrix()
	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Zero(t, m.X.At(0, 0))
	assert.Zero(t, m.X.At(1, 1))
}
