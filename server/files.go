package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps uploaded dataset files at 500 MB.
const maxUploadBytes = 500 << 20

// allowedUploadExts limits uploads to data and document formats a session
// can actually work with.
var allowedUploadExts = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".txt":  true,
	".json": true,
	".xlsx": true,
	".h5":   true,
	".h5ad": true,
	".mtx":  true,
	".gz":   true,
	".zip":  true,
	".md":   true,
}

func (s *Server) handleUploadFile(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds %d MB limit", maxUploadBytes>>20),
		})
		return
	}
	name := filepath.Base(file.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedUploadExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file type %s not allowed", ext)})
		return
	}

	sess.mu.Lock()
	dest := filepath.Join(sess.client.DataManager().DataDir(), name)
	err = c.SaveUploadedFile(file, dest)
	sess.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"filename": name, "size": file.Size, "path": dest})
}

func (s *Server) handleListFiles(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	sess.mu.Lock()
	files := sess.client.DataManager().ListWorkspaceFiles()
	sess.mu.Unlock()

	if dir := c.Query("dir"); dir != "" {
		filtered, ok := files[dir]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown directory %q", dir)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": gin.H{dir: filtered}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) handleDownloadFile(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	path, ok := s.resolveWorkspacePath(c, sess, c.Query("name"))
	if !ok {
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (s *Server) handleFileInfo(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	path, ok := s.resolveWorkspacePath(c, sess, c.Query("name"))
	if !ok {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":     info.Name(),
		"size":     info.Size(),
		"modified": info.ModTime(),
	})
}

func (s *Server) handleDeleteFile(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	path, ok := s.resolveWorkspacePath(c, sess, c.Query("name"))
	if !ok {
		return
	}
	sess.mu.Lock()
	err := os.Remove(path)
	sess.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// resolveWorkspacePath validates a client-supplied file name against the
// session workspace. Names resolving outside the workspace are rejected with
// 403 before any filesystem access happens.
func (s *Server) resolveWorkspacePath(c *gin.Context, sess *session, name string) (string, bool) {
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name parameter"})
		return "", false
	}
	root := sess.client.DataManager().WorkspacePath()
	path := filepath.Join(root, name)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "path escapes workspace"})
		return "", false
	}
	return path, true
}
