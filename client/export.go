package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ExportSession produces an export file for the session and returns its path.
//
// Three tiers are attempted in order: the full zip data package, a JSON
// session snapshot (metadata, data summary, conversation, tool usage), and
// finally a minimal JSON stub. Only when even the stub cannot be written does
// the call return an error, so under normal conditions an export always
// yields a file.
func (c *Client) ExportSession() (string, error) {
	stamp := time.Now().Format("20060102_150405")

	if path, err := c.packager.CreateDataPackage(c.dm.ExportsDir()); err == nil {
		c.logger.Info("session exported", "session_id", c.sessionID, "path", path)
		return path, nil
	} else {
		c.logger.Warn("data package export failed, falling back to snapshot", "session_id", c.sessionID, "error", err.Error())
	}

	snapshot := map[string]any{
		"session_id":   c.sessionID,
		"exported_at":  time.Now().Format(time.RFC3339),
		"metadata":     c.meta,
		"status":       c.GetStatus(),
		"conversation": c.historySnapshot(),
		"tool_usage":   c.dm.GetToolUsageHistory(),
		"plots":        c.dm.GetPlotHistory(),
	}
	path := filepath.Join(c.dm.ExportsDir(), fmt.Sprintf("session_snapshot_%s.json", stamp))
	snapErr := writeJSONFile(path, snapshot)
	if snapErr == nil {
		c.logger.Info("session snapshot exported", "session_id", c.sessionID, "path", path)
		return path, nil
	}
	c.logger.Warn("snapshot export failed, falling back to minimal export", "session_id", c.sessionID, "error", snapErr.Error())

	minimal := map[string]any{
		"session_id":   c.sessionID,
		"exported_at":  time.Now().Format(time.RFC3339),
		"error":        snapErr.Error(),
		"conversation": c.historySnapshot(),
	}
	path = filepath.Join(c.dm.ExportsDir(), fmt.Sprintf("session_minimal_%s.json", stamp))
	if err := writeJSONFile(path, minimal); err != nil {
		return "", fmt.Errorf("export session: %w", err)
	}
	return path, nil
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
