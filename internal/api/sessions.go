package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lexiqai/echolisten/internal/media"
	"github.com/lexiqai/echolisten/internal/playback"
	"github.com/lexiqai/echolisten/internal/session"
	"github.com/lexiqai/echolisten/internal/study"
	"github.com/lexiqai/echolisten/internal/transcript"
)

// EditSegmentRequest is the body of PUT /api/sessions/:id/segments/:segmentId
type EditSegmentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) handleListSessions(c *gin.Context) {
	sessions, err := s.svc.SearchSessions(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, sessions, fmt.Sprintf("%d sessions", len(sessions)))
}

// handleImport saves an uploaded recording and transcribes it. The request
// blocks until the session is ready; the saved file is removed on failure.
func (s *Server) handleImport(c *gin.Context) {
	if !s.svc.HasTranscriber() {
		s.fail(c, study.ErrNoTranscriber)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if !media.IsAudio(file.Filename) {
		badRequest(c, "invalid file type. Supported: mp3, wav, m4a, aac, ogg, opus, flac, webm")
		return
	}

	method := s.method
	if raw := c.PostForm("method"); raw != "" {
		method, err = transcript.ParseMethod(raw)
		if err != nil {
			s.fail(c, err)
			return
		}
	}
	ruleValue := s.ruleValue
	if raw := c.PostForm("ruleValue"); raw != "" {
		ruleValue, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(c, "ruleValue must be a number")
			return
		}
	}
	title := c.PostForm("title")
	if title == "" {
		title = session.TitleFromFilename(file.Filename)
	}

	id := uuid.New().String()
	destPath := filepath.Join(s.audioDir, id+strings.ToLower(filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, destPath); err != nil {
		s.fail(c, fmt.Errorf("failed to save file: %w", err))
		return
	}

	sess, err := s.svc.Import(c.Request.Context(), study.ImportRequest{
		ID:        id,
		AudioPath: destPath,
		Title:     title,
		Method:    method,
		RuleValue: ruleValue,
	})
	if err != nil {
		os.Remove(destPath)
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Code: 201, Data: sess, Message: "session imported"})
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, err := s.svc.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, sess, "")
}

func (s *Server) handleUpdateSession(c *gin.Context) {
	var req session.Update
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Status != nil {
		switch *req.Status {
		case session.StatusProcessing, session.StatusReady, session.StatusError:
		default:
			badRequest(c, fmt.Sprintf("invalid status %q", *req.Status))
			return
		}
	}

	sess, err := s.svc.UpdateSession(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, sess, "session updated")
}

// handleDeleteSession removes the session and its audio file. Saved words
// are kept.
func (s *Server) handleDeleteSession(c *gin.Context) {
	id := c.Param("id")
	if err := s.svc.DeleteSession(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	if path, found := s.audioPath(id); found {
		if err := os.Remove(path); err != nil {
			logger := s.requestLogger(c)
			logger.Warn().Err(err).Str("path", path).Msg("Failed to remove audio file")
		}
	}
	ok(c, gin.H{"id": id}, "session deleted")
}

func (s *Server) handleBlocks(c *gin.Context) {
	blocks, err := s.svc.Blocks(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, blocks, "")
}

func (s *Server) handleEditSegment(c *gin.Context) {
	var req EditSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "text is required")
		return
	}

	seg, err := s.svc.EditSegment(c.Request.Context(), c.Param("id"), c.Param("segmentId"), req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, seg, "segment updated")
}

func (s *Server) handleAudio(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.svc.Session(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	path, found := s.audioPath(id)
	if !found {
		c.JSON(http.StatusNotFound, Response{Code: 404, Message: "audio file not found"})
		return
	}
	c.File(path)
}

func (s *Server) handleMarkPlayed(c *gin.Context) {
	if err := s.svc.MarkPlayed(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"id": c.Param("id")}, "")
}

func (s *Server) handleFollow(c *gin.Context) {
	sess, err := s.svc.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	playback.Serve(c.Writer, c.Request, sess)
}

// audioPath finds the stored upload for a session.
func (s *Server) audioPath(id string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(s.audioDir, id+".*"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}
