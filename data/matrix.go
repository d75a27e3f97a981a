package data

import (
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Matrix is the annotated observations × features projection of the current
// dataset consumed by downstream numeric routines. Obs and Var carry the row
// and column labels; Uns holds scalar dataset metadata.
type Matrix struct {
	X   *mat.Dense
	Obs []string
	Var []string
	Uns map[string]any
}

// buildMatrixFn is a seam for injecting rebuild failures in tests.
var buildMatrixFn = buildMatrix

// buildMatrix projects the dataset into a dense float matrix. Every column
// must already be numeric (SetData's coercion guarantees this).
func buildMatrix(ds Dataset, metadata map[string]any) (*Matrix, error) {
	if !ds.Valid() {
		return nil, ErrNoData
	}
	rows, cols := ds.Frame.Nrow(), ds.Frame.Ncol()
	dense := mat.NewDense(rows, cols, nil)
	for j, name := range ds.Frame.Names() {
		col := ds.Frame.Col(name).Float()
		if len(col) != rows {
			return nil, fmt.Errorf("column %s: %d values for %d rows", name, len(col), rows)
		}
		for i, v := range col {
			dense.Set(i, j, v)
		}
	}

	m := &Matrix{X: dense, Obs: ds.Labels, Var: ds.Frame.Names(), Uns: map[string]any{}}
	for k, v := range metadata {
		switch v.(type) {
		case string, int, int64, float64, bool:
			m.Uns[k] = v
		}
	}
	return m, nil
}

// placeholderMatrix is the minimal fallback used when a rebuild fails. It
// keeps downstream consumers operational without implying data validity;
// HasData is governed by the dataset alone.
func placeholderMatrix() *Matrix {
	return &Matrix{
		X:   mat.NewDense(2, 2, nil),
		Obs: []string{"0", "1"},
		Var: []string{"0", "1"},
		Uns: map[string]any{},
	}
}

// Dims returns the observation and feature counts.
func (m *Matrix) Dims() (int, int) { return m.X.Dims() }

// matrixWire is the gob transfer shape of a Matrix. mat.Dense has no
// exported fields, so the raw values travel as a flat float slice.
type matrixWire struct {
	Rows, Cols int
	Data       []float64
	Obs, Var   []string
	Uns        map[string]string
}

// EncodeGob writes the matrix in its native serialized form.
func (m *Matrix) EncodeGob(w io.Writer) error {
	rows, cols := m.X.Dims()
	wire := matrixWire{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, 0, rows*cols),
		Obs:  m.Obs,
		Var:  m.Var,
		Uns:  map[string]string{},
	}
	for i := 0; i < rows; i++ {
		wire.Data = append(wire.Data, m.X.RawRowView(i)...)
	}
	for k, v := range m.Uns {
		wire.Uns[k] = fmt.Sprintf("%v", v)
	}
	return gob.NewEncoder(w).Encode(wire)
}

// DecodeGobMatrix reads a matrix previously written by EncodeGob.
func DecodeGobMatrix(r io.Reader) (*Matrix, error) {
	var wire matrixWire
	if err := gob.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode matrix: %w", err)
	}
	m := &Matrix{
		X:   mat.NewDense(wire.Rows, wire.Cols, wire.Data),
		Obs: wire.Obs,
		Var: wire.Var,
		Uns: map[string]any{},
	}
	for k, v := range wire.Uns {
		m.Uns[k] = v
	}
	return m, nil
}

// WriteCSV writes the matrix as a plain tabular export, the fallback used
// when the native form cannot be produced.
func (m *Matrix) WriteCSV(w io.Writer) error {
	rows, cols := m.X.Dims()
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, m.Var...)); err != nil {
		return err
	}
	row := make([]string, cols+1)
	for i := 0; i < rows; i++ {
		if i < len(m.Obs) {
			row[0] = m.Obs[i]
		} else {
			row[0] = strconv.Itoa(i)
		}
		for j := 0; j < cols; j++ {
			row[j+1] = strconv.FormatFloat(m.X.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
