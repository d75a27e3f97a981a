package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ListWorkspaceFiles returns workspace-relative paths matching the glob
// pattern, searched across the workspace root and its data/, plots/ and
// exports/ subdirectories. An empty pattern lists everything.
func (c *Client) ListWorkspaceFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	root := c.dm.WorkspacePath()

	var matches []string
	for _, dir := range c.searchDirs() {
		found, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("list workspace files: %w", err)
		}
		for _, path := range found {
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				continue
			}
			matches = append(matches, rel)
		}
	}
	return matches, nil
}

// ReadFile reads a workspace file by name. The name is resolved against the
// workspace root, then data/, plots/ and exports/, in that order; when no
// exact match exists a case-insensitive match in the same order wins.
func (c *Client) ReadFile(name string) (string, error) {
	path, err := c.resolveFile(name)
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(raw), nil
}

// WriteFile writes content to a file under the workspace root and returns
// its path. Parent directories inside the workspace are created as needed;
// names escaping the workspace are rejected.
func (c *Client) WriteFile(name, content string) (string, error) {
	root := c.dm.WorkspacePath()
	path := filepath.Join(root, name)
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("write %s: path escapes workspace", name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

func (c *Client) searchDirs() []string {
	return []string{c.dm.WorkspacePath(), c.dm.DataDir(), c.dm.PlotsDir(), c.dm.ExportsDir()}
}

func (c *Client) resolveFile(name string) (string, error) {
	for _, dir := range c.searchDirs() {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	// Case-insensitive fallback, same directory order.
	lower := strings.ToLower(name)
	for _, dir := range c.searchDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.ToLower(entry.Name()) == lower {
				return filepath.Join(dir, entry.Name()), nil
			}
		}
	}
	return "", fmt.Errorf("file %s not found in workspace", name)
}
