package data

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// DataSummary describes the current dataset for status reporting.
type DataSummary struct {
	Status        string         `json:"status"`
	Shape         [2]int         `json:"shape,omitempty"`
	Columns       []string       `json:"columns,omitempty"`
	SampleNames   []string       `json:"sample_names,omitempty"`
	DataTypes     map[string]int `json:"data_types,omitempty"`
	MemoryUsage   string         `json:"memory_usage,omitempty"`
	MetadataKeys  []string       `json:"metadata_keys,omitempty"`
	ProcessingLog []string       `json:"processing_log,omitempty"`
}

// GetDataSummary returns shape, leading column/label names, a dtype
// histogram, approximate memory footprint and recent processing steps.
// Without data it reports {"status": "No data loaded"} instead of failing.
func (m *Manager) GetDataSummary() DataSummary {
	if !m.HasData() {
		return DataSummary{Status: "No data loaded"}
	}

	rows, cols := m.current.Frame.Nrow(), m.current.Frame.Ncol()

	names := m.current.Frame.Names()
	if len(names) > 10 {
		names = names[:10]
	}
	labels := m.current.Labels
	if len(labels) > 5 {
		labels = labels[:5]
	}

	types := map[string]int{}
	for _, t := range m.current.Frame.Types() {
		types[string(t)]++
	}

	logTail := m.processingLog
	if len(logTail) > 5 {
		logTail = logTail[len(logTail)-5:]
	}

	return DataSummary{
		Status:        "Data loaded",
		Shape:         [2]int{rows, cols},
		Columns:       append([]string(nil), names...),
		SampleNames:   append([]string(nil), labels...),
		DataTypes:     types,
		MemoryUsage:   fmt.Sprintf("%.1f MB", m.approxMemoryMB()),
		MetadataKeys:  m.metadataKeys(),
		ProcessingLog: append([]string(nil), logTail...),
	}
}

func (m *Manager) approxMemoryMB() float64 {
	rows, cols := m.current.Frame.Nrow(), m.current.Frame.Ncol()
	return float64(rows) * float64(cols) * 8 / (1024 * 1024)
}

func (m *Manager) metadataKeys() []string {
	keys := make([]string, 0, len(m.metadata))
	for k := range m.metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetTechnicalSummary renders the reproducibility report: data information,
// the processing log and the full tool-usage history as Markdown.
func (m *Manager) GetTechnicalSummary() string {
	var b strings.Builder
	b.WriteString("# Technical Summary\n\n")

	if m.HasData() {
		rows, cols := m.current.Frame.Nrow(), m.current.Frame.Ncol()
		b.WriteString("## Data Information\n\n")
		fmt.Fprintf(&b, "- Shape: %d rows × %d columns\n", rows, cols)
		fmt.Fprintf(&b, "- Memory usage: %.2f MB\n", m.approxMemoryMB())
		if len(m.metadata) > 0 {
			keys := m.metadataKeys()
			if len(keys) > 5 {
				keys = keys[:5]
			}
			fmt.Fprintf(&b, "- Metadata keys: %s\n", strings.Join(keys, ", "))
		}
		b.WriteString("\n")
	}

	if len(m.processingLog) > 0 {
		b.WriteString("## Processing Log\n\n")
		for _, entry := range m.processingLog {
			fmt.Fprintf(&b, "- %s\n", entry)
		}
		b.WriteString("\n")
	}

	if len(m.provenance) > 0 {
		b.WriteString("## Tool Usage History\n\n")
		for i, rec := range m.provenance {
			fmt.Fprintf(&b, "### %d. %s (%s)\n\n", i+1, rec.Tool, rec.Timestamp)
			if rec.Description != "" {
				fmt.Fprintf(&b, "%s\n\n", rec.Description)
			}
			b.WriteString("**Parameters:**\n\n")
			for _, name := range sortedKeys(rec.Parameters) {
				fmt.Fprintf(&b, "- %s: %s\n", name, formatParam(rec.Parameters[name]))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatParam renders a parameter value; long sequences are elided to their
// first five elements plus an explicit total-length suffix.
func formatParam(v any) string {
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Len() > 5 {
		parts := make([]string, 5)
		for i := 0; i < 5; i++ {
			parts[i] = fmt.Sprintf("%v", rv.Index(i).Interface())
		}
		return fmt.Sprintf("[%s...] (length: %d)", strings.Join(parts, ", "), rv.Len())
	}
	return fmt.Sprintf("%v", v)
}
