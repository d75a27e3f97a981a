package data

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogToolUsage_InsertionOrder(t *testing.T) {
	m := newTestManager(t)

	m.LogToolUsage("load_data", map[string]any{"path": "counts.csv"}, "Loaded expression matrix")
	m.LogToolUsage("normalize", map[string]any{"method": "cpm"}, "Normalized counts")
	m.LogToolUsage("cluster", map[string]any{"resolution": 0.8}, "Leiden clustering")

	history := m.GetToolUsageHistory()
	require.Len(t, history, 3)
	assert.Equal(t, "load_data", history[0].Tool)
	assert.Equal(t, "normalize", history[1].Tool)
	assert.Equal(t, "cluster", history[2].Tool)
	assert.NotEmpty(t, history[0].Timestamp)
}

func TestLogToolUsage_ParametersAreDeepCopied(t *testing.T) {
	m := newTestManager(t)

	params := map[string]any{
		"genes": []string{"CD4", "CD8A"},
		"n":     10,
	}
	m.LogToolUsage("plot_genes", params, "")

	// Mutating the caller's map and slice after logging must not leak into
	// the stored record.
	params["n"] = 99
	params["genes"].([]string)[0] = "mutated"

	history := m.GetToolUsageHistory()
	require.Len(t, history, 1)
	assert.Equal(t, 10, history[0].Parameters["n"])
	assert.Equal(t, []string{"CD4", "CD8A"}, history[0].Parameters["genes"])
}

func TestGetToolUsageHistory_ReturnsCopies(t *testing.T) {
	m := newTestManager(t)
	m.LogToolUsage("filter", map[string]any{"min_genes": 200}, "")

	first := m.GetToolUsageHistory()
	first[0].Parameters["min_genes"] = -1

	second := m.GetToolUsageHistory()
	assert.Equal(t, 200, second[0].Parameters["min_genes"])
}

func TestLogToolUsage_NilParameters(t *testing.T) {
	m := newTestManager(t)
	m.LogToolUsage("reset", nil, "")

	history := m.GetToolUsageHistory()
	require.Len(t, history, 1)
	assert.NotNil(t, history[0].Parameters)
	assert.Empty(t, history[0].Parameters)
}

func TestGetTechnicalSummary_Sections(t *testing.T) {
	m := newTestManager(t)
	_, err := m.SetData(sampleDataset(t), map[string]any{"tissue": "liver"})
	require.NoError(t, err)

	m.LogToolUsage("cluster", map[string]any{
		"resolution": 0.8,
		"genes":      []string{"A", "B", "C", "D", "E", "F", "G"},
	}, "Leiden clustering")

	summary := m.GetTechnicalSummary()

	assert.Contains(t, summary, "# Technical Summary")
	assert.Contains(t, summary, "## Data Information")
	assert.Contains(t, summary, "- Shape: 3 rows × 2 columns")
	assert.Contains(t, summary, "- Metadata keys: tissue")
	assert.Contains(t, summary, "## Processing Log")
	assert.Contains(t, summary, "Data loaded: 3 samples × 2 features")
	assert.Contains(t, summary, "## Tool Usage History")
	assert.Contains(t, summary, "### 1. cluster")
	assert.Contains(t, summary, "Leiden clustering")
	assert.Contains(t, summary, "**Parameters:**")
	assert.Contains(t, summary, "- resolution: 0.8")
	assert.Contains(t, summary, "[A, B, C, D, E...] (length: 7)", "long sequences are elided")
}

func TestGetTechnicalSummary_LargeShape(t *testing.T) {
	m := newTestManager(t)
	_, err := m.SetData(wideDataset(t, 500, 1000), nil)
	require.NoError(t, err)

	summary := m.GetTechnicalSummary()
	assert.Contains(t, summary, "- Shape: 500 rows × 1000 columns")

	// 500 * 1000 float64 cells ≈ 3.81 MB
	require.True(t, strings.Contains(summary, "- Memory usage: 3.81 MB"), "got summary:\n%s", summary)
}
