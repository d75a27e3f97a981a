package data

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/biomesh-ai/biomesh/logging"
)

// DefaultMaxPlotHistory bounds the plot collection when no override is given.
const DefaultMaxPlotHistory = 50

// Options holds configuration overrides passed to New().
type Options struct {
	// WorkspacePath is the session workspace root. Defaults to
	// ".biomesh_workspace" under the current directory.
	WorkspacePath string
	// MaxPlotHistory bounds the retained plot collection (FIFO eviction).
	MaxPlotHistory int
	// Logger receives processing and failure records.
	Logger logging.Logger
}

// Manager owns the artifact state of one session: the current dataset, its
// derived matrix, the bounded plot collection and the provenance log. It
// assumes a single logical caller; see the package documentation.
type Manager struct {
	current  Dataset
	hasData  bool
	metadata map[string]any
	matrix   *Matrix

	plots       *plotRing
	plotCounter int

	processingLog []string
	provenance    []ToolUsage

	workspacePath string
	dataDir       string
	plotsDir      string
	exportsDir    string

	logger logging.Logger
}

// New constructs a Manager, creating the three-directory workspace layout
// (data/, plots/, exports/) under the workspace root.
func New(optFns ...func(o *Options)) (*Manager, error) {
	opts := Options{
		MaxPlotHistory: DefaultMaxPlotHistory,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.WorkspacePath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		opts.WorkspacePath = filepath.Join(wd, ".biomesh_workspace")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MaxPlotHistory <= 0 {
		opts.MaxPlotHistory = DefaultMaxPlotHistory
	}

	m := &Manager{
		metadata:      map[string]any{},
		plots:         newPlotRing(opts.MaxPlotHistory),
		workspacePath: opts.WorkspacePath,
		dataDir:       filepath.Join(opts.WorkspacePath, "data"),
		plotsDir:      filepath.Join(opts.WorkspacePath, "plots"),
		exportsDir:    filepath.Join(opts.WorkspacePath, "exports"),
		logger:        opts.Logger,
	}
	for _, dir := range []string{m.workspacePath, m.dataDir, m.plotsDir, m.exportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create workspace dir %s: %w", dir, err)
		}
	}
	return m, nil
}

// WorkspacePath returns the session workspace root.
func (m *Manager) WorkspacePath() string { return m.workspacePath }

// DataDir returns the data/ subdirectory.
func (m *Manager) DataDir() string { return m.dataDir }

// PlotsDir returns the plots/ subdirectory.
func (m *Manager) PlotsDir() string { return m.plotsDir }

// ExportsDir returns the exports/ subdirectory.
func (m *Manager) ExportsDir() string { return m.exportsDir }

// SetData replaces the current dataset after validation and coercion.
//
// Non-numeric columns are coerced to numeric best effort (unparsable cells
// become missing), missing values are filled with zero, and the derived
// matrix is rebuilt. A matrix rebuild failure falls back to a placeholder
// and is logged, never returned. The stored dataset is returned. A
// validation failure clears any previously loaded data, so HasData is false
// after a failed call.
func (m *Manager) SetData(ds Dataset, metadata map[string]any) (Dataset, error) {
	if ds.Frame.Err != nil {
		m.clearData()
		return Dataset{}, validationErr("data must be a valid data frame: %v", ds.Frame.Err)
	}
	if ds.Frame.Nrow() == 0 || ds.Frame.Ncol() == 0 {
		m.clearData()
		return Dataset{}, validationErr("data frame is empty")
	}

	coerced, err := m.coerceNumeric(ds.Frame)
	if err != nil {
		m.clearData()
		return Dataset{}, validationErr("coerce columns: %v", err)
	}

	stored := NewDataset(coerced, ds.Labels)
	m.current = stored
	m.hasData = true
	if metadata == nil {
		metadata = map[string]any{}
	}
	m.metadata = metadata

	m.logger.Info("data stored", "rows", stored.Frame.Nrow(), "cols", stored.Frame.Ncol())

	matrix, err := buildMatrixFn(stored, m.metadata)
	if err != nil {
		m.logger.Error("matrix build failed", "error", err.Error())
		m.matrix = placeholderMatrix()
	} else {
		m.matrix = matrix
	}

	m.processingLog = append(m.processingLog,
		fmt.Sprintf("Data loaded: %d samples × %d features", stored.Frame.Nrow(), stored.Frame.Ncol()))

	return stored, nil
}

// coerceNumeric rebuilds every column as a float series with missing values
// filled with zero (the usual convention for expression data).
func (m *Manager) coerceNumeric(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	names := df.Names()
	types := df.Types()
	cols := make([]series.Series, 0, len(names))
	for i, name := range names {
		col := df.Col(name)
		vals := col.Float()
		if types[i] == series.String {
			m.logger.Info("converting non-numeric column", "column", name)
		}
		missing := 0
		for j, v := range vals {
			if math.IsNaN(v) {
				vals[j] = 0
				missing++
			}
		}
		if missing > 0 && types[i] == series.String {
			m.logger.Warn("unconvertible values filled with zero", "column", name, "count", missing)
		}
		cols = append(cols, series.New(vals, series.Float, name))
	}
	out := dataframe.New(cols...)
	if out.Err != nil {
		return dataframe.DataFrame{}, out.Err
	}
	return out, nil
}

func (m *Manager) clearData() {
	m.current = Dataset{}
	m.hasData = false
	m.metadata = map[string]any{}
	m.matrix = nil
}

// HasData reports whether a valid dataset is currently loaded. It is
// governed solely by dataset validity, never by matrix state.
func (m *Manager) HasData() bool {
	return m.hasData && m.current.Valid()
}

// GetCurrentData returns the current dataset and whether one is loaded.
func (m *Manager) GetCurrentData() (Dataset, bool) {
	if !m.HasData() {
		return Dataset{}, false
	}
	return m.current, true
}

// Metadata returns the metadata map of the current dataset.
func (m *Manager) Metadata() map[string]any { return m.metadata }

// DerivedMatrix returns the current derived matrix, or nil when no dataset
// has ever been set.
func (m *Manager) DerivedMatrix() *Matrix { return m.matrix }

// ProcessingLog returns the ordered human-readable processing record.
func (m *Manager) ProcessingLog() []string {
	out := make([]string, len(m.processingLog))
	copy(out, m.processingLog)
	return out
}

// AppendProcessingLog records an additional processing step.
func (m *Manager) AppendProcessingLog(entry string) {
	m.processingLog = append(m.processingLog, entry)
}
