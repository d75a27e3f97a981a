package client

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomesh-ai/biomesh/internal/testutil"
)

func TestExportSession_FullPackage(t *testing.T) {
	c := newTestClient(t, &testutil.FakeEngine{})
	_, err := c.DataManager().SetData(sampleFrame(t), nil)
	require.NoError(t, err)

	path, err := c.ExportSession()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".zip"))
	assert.FileExists(t, path)
	assert.Equal(t, c.DataManager().ExportsDir(), filepath.Dir(path))
}

func TestExportSession_SnapshotFallbackWithoutData(t *testing.T) {
	engine := &testutil.FakeEngine{
		Events: testutil.NewTraceBuilder().TaskResultText(1, "expert", "hi", "hello").Build(),
	}
	c := newTestClient(t, engine)
	c.Query(context.Background(), "hi")
	c.DataManager().LogToolUsage("greet", map[string]any{"lang": "en"}, "")

	// No dataset is loaded, so the zip package cannot be built; the export
	// must still yield a file.
	path, err := c.ExportSession()
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "session_snapshot_")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var snapshot map[string]any
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Equal(t, "session_test", snapshot["session_id"])
	assert.NotNil(t, snapshot["status"])
	assert.Len(t, snapshot["conversation"], 2)
	assert.Len(t, snapshot["tool_usage"], 1)
}

func TestListWorkspaceFiles_Glob(t *testing.T) {
	c := newTestClient(t, &testutil.FakeEngine{})
	_, err := c.WriteFile("notes.md", "# notes")
	require.NoError(t, err)
	_, err = c.WriteFile("data/counts.csv", "a,b\n1,2\n")
	require.NoError(t, err)

	csvs, err := c.ListWorkspaceFiles("*.csv")
	require.NoError(t, err)
	require.Len(t, csvs, 1)
	assert.Equal(t, filepath.Join("data", "counts.csv"), csvs[0])

	all, err := c.ListWorkspaceFiles("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReadFile_SearchOrder(t *testing.T) {
	c := newTestClient(t, &testutil.FakeEngine{})

	rootPath := filepath.Join(c.DataManager().WorkspacePath(), "shared.txt")
	require.NoError(t, os.WriteFile(rootPath, []byte("from root"), 0o644))
	dataPath := filepath.Join(c.DataManager().DataDir(), "shared.txt")
	require.NoError(t, os.WriteFile(dataPath, []byte("from data"), 0o644))

	content, err := c.ReadFile("shared.txt")
	require.NoError(t, err)
	assert.Equal(t, "from root", content, "workspace root wins over data/")
}

func TestReadFile_CaseInsensitiveFallback(t *testing.T) {
	c := newTestClient(t, &testutil.FakeEngine{})
	path := filepath.Join(c.DataManager().PlotsDir(), "UMAP.html")
	require.NoError(t, os.WriteFile(path, []byte("<html/>"), 0o644))

	content, err := c.ReadFile("umap.html")
	require.NoError(t, err)
	assert.Equal(t, "<html/>", content)
}

func TestReadFile_NotFound(t *testing.T) {
	c := newTestClient(t, &testutil.FakeEngine{})
	_, err := c.ReadFile("missing.csv")
	assert.Error(t, err)
}

func TestWriteFile_RejectsEscape(t *testing.T) {
	c := newTestClient(t, &testutil.FakeEngine{})
	_, err := c.WriteFile("../outside.txt", "nope")
	assert.Error(t, err)
}
