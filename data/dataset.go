package data

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Dataset is a two-dimensional table of observations (rows) by features
// (columns) plus per-row labels. The frame is expected to be numeric after
// SetData's coercion pass; Labels defaults are generated when absent.
type Dataset struct {
	Frame  dataframe.DataFrame
	Labels []string
}

// NewDataset wraps a frame with optional row labels. When labels is nil or
// of mismatched length, generated observation labels are substituted.
func NewDataset(frame dataframe.DataFrame, labels []string) Dataset {
	ds := Dataset{Frame: frame, Labels: labels}
	if frame.Err == nil && len(labels) != frame.Nrow() {
		ds.Labels = generatedLabels(frame.Nrow())
	}
	return ds
}

// LoadCSV reads a dataset from CSV. When the first column is string typed it
// is treated as the observation label column and removed from the frame,
// mirroring the "index in the first column" convention of expression
// matrices.
func LoadCSV(r io.Reader) (Dataset, error) {
	df := dataframe.ReadCSV(r)
	if df.Err != nil {
		return Dataset{}, fmt.Errorf("read csv: %w", df.Err)
	}

	names := df.Names()
	if df.Ncol() > 1 && df.Types()[0] == series.String {
		labels := df.Col(names[0]).Records()
		rest := df.Select(names[1:])
		if rest.Err != nil {
			return Dataset{}, fmt.Errorf("drop label column: %w", rest.Err)
		}
		return NewDataset(rest, labels), nil
	}
	return NewDataset(df, nil), nil
}

// Valid reports whether the dataset is tabular with both dimensions > 0.
func (d Dataset) Valid() bool {
	return d.Frame.Err == nil && d.Frame.Nrow() > 0 && d.Frame.Ncol() > 0
}

// WriteCSV writes the dataset with its label column first, the way the raw
// data export and workspace saves expect it.
func (d Dataset) WriteCSV(w io.Writer) error {
	if !d.Valid() {
		return ErrNoData
	}
	records := d.Frame.Records()
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, records[0]...)); err != nil {
		return err
	}
	for i, row := range records[1:] {
		label := ""
		if i < len(d.Labels) {
			label = d.Labels[i]
		}
		if err := cw.Write(append([]string{label}, row...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func generatedLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("obs_%d", i+1)
	}
	return labels
}
