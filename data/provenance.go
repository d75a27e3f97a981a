package data

import (
	"reflect"
	"time"
)

// ToolUsage is one immutable provenance record: which tool ran, with what
// parameters, and when. Records are ordered by insertion and never reordered
// or deleted.
type ToolUsage struct {
	Tool        string         `json:"tool"`
	Parameters  map[string]any `json:"parameters"`
	Description string         `json:"description,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

// provenanceTimeFormat mirrors the reproducibility report convention.
const provenanceTimeFormat = "2006-01-02 15:04:05"

// LogToolUsage appends a provenance record. Parameters are deep-copied so
// later mutation of the caller's map cannot alter the stored record.
func (m *Manager) LogToolUsage(tool string, parameters map[string]any, description string) {
	m.provenance = append(m.provenance, ToolUsage{
		Tool:        tool,
		Parameters:  copyParams(parameters),
		Description: description,
		Timestamp:   time.Now().Format(provenanceTimeFormat),
	})
	m.logger.Info("tool usage logged", "tool", tool)
}

// GetToolUsageHistory returns the full provenance log in insertion order.
// Parameter maps are copied; mutating the result does not affect the log.
func (m *Manager) GetToolUsageHistory() []ToolUsage {
	out := make([]ToolUsage, len(m.provenance))
	for i, rec := range m.provenance {
		out[i] = rec
		out[i].Parameters = copyParams(rec.Parameters)
	}
	return out
}

// copyParams copies a parameter map one level deep, cloning slice values so
// stored records stay isolated from their source.
func copyParams(params map[string]any) map[string]any {
	if params == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		cp := reflect.MakeSlice(reflect.SliceOf(rv.Type().Elem()), rv.Len(), rv.Len())
		reflect.Copy(cp, rv)
		return cp.Interface()
	case reflect.Map:
		cp := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			cp.SetMapIndex(iter.Key(), iter.Value())
		}
		return cp.Interface()
	default:
		return v
	}
}
