package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type askRequest struct {
	Question string `json:"question"`
}

// handleAsk answers one free-text question about the loaded data.
// POST /api/v1/ask
//
// There is deliberately no per-question timeout: a slow agent call
// blocks its caller, and the mutex serializes questions.
func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	s.mu.Lock()
	answer, err := s.agent.Answer(c.Request.Context(), question)
	s.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("An error occurred while processing your query: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"question": question,
		"answer":   answer,
	})
}

// handleSchema shows the table description the agent reasons over.
// GET /api/v1/schema
func (s *Server) handleSchema(c *gin.Context) {
	if s.schema == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "schema description unavailable"})
		return
	}

	info, err := s.schema.SchemaInfo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"schema": info})
}
