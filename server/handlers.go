package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type queryRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.RLock()
	count := len(s.sessions)
	s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"uptime":   time.Since(s.startTime).String(),
		"sessions": count,
	})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	id, sess, err := s.createSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session_id": id,
		"workspace":  sess.client.DataManager().WorkspacePath(),
		"created_at": sess.createdAt.Format(time.RFC3339),
	})
}

func (s *Server) handleListSessions(c *gin.Context) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{"sessions": ids})
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	sess.mu.Lock()
	status := sess.client.GetStatus()
	sess.mu.Unlock()
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if !s.remove(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) handleQuery(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess.mu.Lock()
	result := sess.client.Query(c.Request.Context(), req.Query)
	sess.mu.Unlock()
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHistory(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	sess.mu.Lock()
	history := sess.client.GetConversationHistory()
	sess.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"messages": history})
}

func (s *Server) handleReset(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	sess.mu.Lock()
	sess.client.Reset()
	sess.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"reset": true})
}

func (s *Server) handleExport(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	sess.mu.Lock()
	path, err := sess.client.ExportSession()
	sess.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}
