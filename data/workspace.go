package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileInfo describes one workspace file for listings.
type FileInfo struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// WorkspaceStatus aggregates the on-disk and in-memory state of a session
// workspace.
type WorkspaceStatus struct {
	WorkspacePath     string            `json:"workspace_path"`
	DataLoaded        bool              `json:"data_loaded"`
	PlotCount         int               `json:"plot_count"`
	FileCounts        map[string]int    `json:"files"`
	ProcessingHistory int               `json:"processing_history"`
	Directories       map[string]string `json:"directories"`
	CurrentData       *DataSummary      `json:"current_data,omitempty"`
}

const workspaceTimestamp = "20060102_150405"

// SaveDataToWorkspace writes the current dataset (and its metadata, when
// present) into the data/ subdirectory. With an empty filename a timestamped
// one is generated.
func (m *Manager) SaveDataToWorkspace(filename string) (string, error) {
	if !m.HasData() {
		m.logger.Warn("No data to save")
		return "", ErrNoData
	}
	if filename == "" {
		filename = fmt.Sprintf("data_%s.csv", time.Now().Format(workspaceTimestamp))
	}
	path := filepath.Join(m.dataDir, filename)

	f, err := os.Create(path)
	if err != nil {
		m.logger.Error("failed to save data", "error", err.Error())
		return "", err
	}
	defer f.Close()
	if err := m.current.WriteCSV(f); err != nil {
		m.logger.Error("failed to save data", "error", err.Error())
		return "", err
	}

	if len(m.metadata) > 0 {
		stem := strings.TrimSuffix(filename, filepath.Ext(filename))
		metaPath := filepath.Join(m.dataDir, stem+"_metadata.json")
		if err := writeJSON(metaPath, m.metadata); err != nil {
			m.logger.Warn("failed to save metadata", "error", err.Error())
		}
	}

	m.logger.Info("data saved to workspace", "path", path)
	return path, nil
}

// SavePlotsToWorkspace renders every retained plot into the plots/
// subdirectory as interactive HTML plus, best effort, a static PNG. Per-plot
// failures are logged and skipped; saved file paths are returned.
func (m *Manager) SavePlotsToWorkspace() []string {
	plots := m.plots.snapshot()
	if len(plots) == 0 {
		m.logger.Info("No plots to save")
		return nil
	}

	var saved []string
	for _, p := range plots {
		base := p.FileBase()

		htmlPath := filepath.Join(m.plotsDir, base+".html")
		if err := writeFigureHTML(p, htmlPath); err != nil {
			m.logger.Error("failed to save plot", "plot_id", p.ID, "error", err.Error())
			continue
		}
		saved = append(saved, htmlPath)

		pngPath := filepath.Join(m.plotsDir, base+".png")
		if err := p.Figure.WritePNG(pngPath); err != nil {
			m.logger.Warn("could not save static rendering", "plot_id", p.ID, "error", err.Error())
		} else {
			saved = append(saved, pngPath)
		}

		m.logger.Info("plot saved to workspace", "plot_id", p.ID)
	}
	return saved
}

func writeFigureHTML(p PlotRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.Figure.WriteHTML(f)
}

// AutoSaveState persists the current data, plots and processing history.
// Every step is best effort; a description of what was saved is returned.
func (m *Manager) AutoSaveState() []string {
	var saved []string

	if m.HasData() {
		if path, err := m.SaveDataToWorkspace(""); err == nil {
			saved = append(saved, "Data: "+filepath.Base(path))
		}
	}

	if m.plots.len() > 0 {
		if files := m.SavePlotsToWorkspace(); len(files) > 0 {
			saved = append(saved, fmt.Sprintf("Plots: %d files", len(files)))
		}
	}

	if len(m.processingLog) > 0 || len(m.provenance) > 0 {
		logPath := filepath.Join(m.exportsDir, "processing_log.json")
		payload := map[string]any{
			"processing_log":     m.processingLog,
			"tool_usage_history": m.provenance,
			"timestamp":          time.Now().Format(time.RFC3339),
		}
		if err := writeJSON(logPath, payload); err != nil {
			m.logger.Error("failed to save processing log", "error", err.Error())
		} else {
			saved = append(saved, "Processing log")
		}
	}

	if len(saved) > 0 {
		m.logger.Info("auto-saved session state", "items", strings.Join(saved, ", "))
	}
	return saved
}

// ListWorkspaceFiles lists workspace files grouped by category (data,
// plots, exports).
func (m *Manager) ListWorkspaceFiles() map[string][]FileInfo {
	out := map[string][]FileInfo{
		"data":    listDir(m.dataDir),
		"plots":   listDir(m.plotsDir),
		"exports": listDir(m.exportsDir),
	}
	return out
}

func listDir(dir string) []FileInfo {
	files := []FileInfo{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return files
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:     entry.Name(),
			Path:     filepath.Join(dir, entry.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	return files
}

// GetWorkspaceStatus returns a comprehensive snapshot of the workspace.
func (m *Manager) GetWorkspaceStatus() WorkspaceStatus {
	files := m.ListWorkspaceFiles()
	status := WorkspaceStatus{
		WorkspacePath: m.workspacePath,
		DataLoaded:    m.HasData(),
		PlotCount:     m.plots.len(),
		FileCounts: map[string]int{
			"data_files":   len(files["data"]),
			"plot_files":   len(files["plots"]),
			"export_files": len(files["exports"]),
		},
		ProcessingHistory: len(m.provenance),
		Directories: map[string]string{
			"data":    m.dataDir,
			"plots":   m.plotsDir,
			"exports": m.exportsDir,
		},
	}
	if m.HasData() {
		summary := m.GetDataSummary()
		status.CurrentData = &summary
	}
	return status
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
