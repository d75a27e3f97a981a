package data

import "fmt"

var (
	// ErrNoData is returned by operations that require a loaded dataset.
	ErrNoData = fmt.Errorf("no data loaded")

	// ErrPlotNotFound is returned when a plot id does not exist in the
	// current collection. It signals absence, not failure.
	ErrPlotNotFound = fmt.Errorf("plot not found")
)

// ValidationError reports a malformed or empty dataset. It fails fast:
// SetData returns it before any state is replaced.
type ValidationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string { return "invalid data: " + e.Reason }

func validationErr(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
