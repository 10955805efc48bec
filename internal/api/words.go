package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexiqai/echolisten/internal/vocab"
)

// ToggleWordRequest is the body of POST /api/words/toggle
type ToggleWordRequest struct {
	Word       string                `json:"word" binding:"required"`
	SessionID  string                `json:"sessionId"`
	Definition *vocab.WordDefinition `json:"definition,omitempty"`
}

// ReviewRequest is the body of POST /api/words/:word/review
type ReviewRequest struct {
	Outcome string `json:"outcome" binding:"required"`
}

func (s *Server) handleListWords(c *gin.Context) {
	words, err := s.svc.Words(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, words, fmt.Sprintf("%d words", len(words)))
}

func (s *Server) handleToggleWord(c *gin.Context) {
	var req ToggleWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "word is required")
		return
	}

	result, err := s.svc.ToggleWord(c.Request.Context(), req.Word, req.SessionID, req.Definition)
	if err != nil {
		s.fail(c, err)
		return
	}
	message := "word removed"
	if result.Added {
		message = "word saved"
	}
	ok(c, result, message)
}

func (s *Server) handleDueWords(c *gin.Context) {
	words, err := s.svc.DueWords(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, words, fmt.Sprintf("%d words due", len(words)))
}

func (s *Server) handleFolders(c *gin.Context) {
	folders, err := s.svc.Folders(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, folders, "")
}

func (s *Server) handleUpdateWord(c *gin.Context) {
	var req vocab.WordUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Stage != nil && (*req.Stage < 0 || *req.Stage > s.svc.Scheduler().MaxStage()) {
		badRequest(c, fmt.Sprintf("stage must be between 0 and %d", s.svc.Scheduler().MaxStage()))
		return
	}

	word, err := s.svc.UpdateWord(c.Request.Context(), c.Param("word"), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, word, "word updated")
}

func (s *Server) handleReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "outcome is required")
		return
	}
	outcome, err := vocab.ParseOutcome(req.Outcome)
	if err != nil {
		s.fail(c, err)
		return
	}

	word, err := s.svc.Review(c.Request.Context(), c.Param("word"), outcome)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, word, "")
}

func (s *Server) handleLookup(c *gin.Context) {
	def, err := s.svc.Lookup(c.Request.Context(), c.Query("word"), c.Query("sentence"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, def, "")
}

func (s *Server) handlePronounce(c *gin.Context) {
	clip, err := s.svc.Pronounce(c.Request.Context(), c.Param("word"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "audio/wav", clip)
}
