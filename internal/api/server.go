package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lexiqai/echolisten/internal/observability"
	"github.com/lexiqai/echolisten/internal/study"
	"github.com/lexiqai/echolisten/internal/transcript"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// Options configures the HTTP server.
type Options struct {
	Service  *study.Service
	AudioDir string

	// Defaults for uploads that do not choose a slicing method.
	Method    transcript.Method
	RuleValue float64

	ReadyChecks    map[string]observability.HealthCheckFunc
	MetricsEnabled bool
}

// Server is the HTTP front end of the study service.
type Server struct {
	svc       *study.Service
	audioDir  string
	method    transcript.Method
	ruleValue float64

	engine *gin.Engine
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates the server and registers its routes.
func NewServer(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("service is required")
	}
	if opts.AudioDir == "" {
		return nil, fmt.Errorf("audio directory is required")
	}
	if err := os.MkdirAll(opts.AudioDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	if opts.Method == "" {
		opts.Method = transcript.MethodTurns
	}
	if opts.RuleValue < 1 {
		opts.RuleValue = 10
	}

	s := &Server{
		svc:       opts.Service,
		audioDir:  opts.AudioDir,
		method:    opts.Method,
		ruleValue: opts.RuleValue,
		logger:    observability.Component("api"),
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.correlationMiddleware())
	s.engine.Use(s.loggingMiddleware())

	s.engine.GET("/health", gin.WrapF(observability.HealthCheckHandler()))
	s.engine.GET("/ready", gin.WrapF(observability.ReadinessHandler(opts.ReadyChecks)))
	if opts.MetricsEnabled {
		s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := s.engine.Group("/api")
	api.GET("/sessions", s.handleListSessions)
	api.POST("/sessions", s.handleImport)
	api.GET("/sessions/:id", s.handleGetSession)
	api.PATCH("/sessions/:id", s.handleUpdateSession)
	api.DELETE("/sessions/:id", s.handleDeleteSession)
	api.GET("/sessions/:id/blocks", s.handleBlocks)
	api.PUT("/sessions/:id/segments/:segmentId", s.handleEditSegment)
	api.GET("/sessions/:id/audio", s.handleAudio)
	api.POST("/sessions/:id/played", s.handleMarkPlayed)
	api.GET("/sessions/:id/follow", s.handleFollow)

	api.GET("/words", s.handleListWords)
	api.POST("/words/toggle", s.handleToggleWord)
	api.GET("/words/due", s.handleDueWords)
	api.GET("/words/folders", s.handleFolders)
	api.PATCH("/words/:word", s.handleUpdateWord)
	api.POST("/words/:word/review", s.handleReview)
	api.GET("/words/:word/pronunciation", s.handlePronounce)
	api.GET("/lookup", s.handleLookup)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{Code: 404, Message: "not found"})
	})

	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.server.Addr = addr
	s.logger.Info().Str("addr", addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) correlationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(observability.CorrelationHeader)
		if id == "" {
			id = observability.NewCorrelationID()
		}
		c.Set("correlation_id", id)
		c.Header(observability.CorrelationHeader, id)
		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger := s.requestLogger(c)
		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request handled")
	}
}

func (s *Server) requestLogger(c *gin.Context) zerolog.Logger {
	return s.logger.With().Str("correlation_id", c.GetString("correlation_id")).Logger()
}
