package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexiqai/echolisten/internal/observability"
	"github.com/lexiqai/echolisten/internal/resilience"
	"github.com/lexiqai/echolisten/internal/session"
	"github.com/lexiqai/echolisten/internal/stt"
	"github.com/lexiqai/echolisten/internal/study"
	"github.com/lexiqai/echolisten/internal/transcript"
	"github.com/lexiqai/echolisten/internal/vocab"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		invalid     *transcript.InvalidInputError
		unsupported *transcript.UnsupportedMethodError
		noSession   *session.NotFoundError
		noSavedWord *vocab.NotFoundError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &unsupported),
		errors.Is(err, vocab.ErrEmptyWord), errors.Is(err, vocab.ErrUnknownOutcome):
		return http.StatusBadRequest
	case errors.As(err, &noSession), errors.As(err, &noSavedWord):
		return http.StatusNotFound
	case errors.Is(err, study.ErrNoSpeech), errors.Is(err, stt.ErrNoWords):
		return http.StatusUnprocessableEntity
	case errors.Is(err, study.ErrNoTranscriber), errors.Is(err, study.ErrNoDefiner),
		errors.Is(err, study.ErrNoPronouncer), errors.Is(err, resilience.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		observability.RecordError("request", "api")
		logger := s.requestLogger(c)
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(code, Response{Code: code, Message: err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: 400, Message: message})
}

func ok(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{Code: 200, Data: data, Message: message})
}
