package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexiqai/echolisten/internal/api"
	"github.com/lexiqai/echolisten/internal/config"
	"github.com/lexiqai/echolisten/internal/lookup"
	"github.com/lexiqai/echolisten/internal/media"
	"github.com/lexiqai/echolisten/internal/observability"
	"github.com/lexiqai/echolisten/internal/resilience"
	"github.com/lexiqai/echolisten/internal/store"
	"github.com/lexiqai/echolisten/internal/stt"
	"github.com/lexiqai/echolisten/internal/study"
	"github.com/lexiqai/echolisten/internal/tts"
	"github.com/lexiqai/echolisten/internal/vocab"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("db_path", cfg.DBPath).
		Str("asr_provider", cfg.ASRProvider).
		Str("lookup_provider", cfg.LookupProvider).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("EchoListen service starting")

	repo, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer repo.Close()

	sched, err := vocab.NewScheduler(cfg.ReviewIntervals, time.Now)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid review intervals")
	}

	checks := map[string]observability.HealthCheckFunc{
		"database": func(ctx context.Context) (bool, error) {
			if err := repo.Ping(ctx); err != nil {
				return false, err
			}
			return true, nil
		},
	}

	opts := study.Options{
		Repository: repo,
		Scheduler:  sched,
		Probe:      media.Duration,
	}

	// Providers are optional: the library and review work without them.
	if tr, err := stt.New(cfg); err != nil {
		logger.Warn().Err(err).Msg("Transcription disabled")
	} else {
		opts.Transcriber = tr
		checks["asr"] = tr.Healthy
	}

	definer, err := lookup.New(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Word lookup disabled")
	} else if definer != nil {
		if cfg.RedisURL != "" {
			definer = withRedisCache(cfg, definer, checks)
		}
		opts.Definer = definer
	}

	pronouncer, err := tts.New(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Pronunciation disabled")
	} else if pronouncer != nil {
		opts.Pronouncer = pronouncer
		checks["tts"] = pronouncer.Healthy
	}

	svc, err := study.NewService(opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create study service")
	}

	server, err := api.NewServer(api.Options{
		Service:        svc,
		AudioDir:       cfg.AudioDir,
		Method:         cfg.Method(),
		RuleValue:      cfg.SliceRuleValue,
		ReadyChecks:    checks,
		MetricsEnabled: cfg.MetricsEnabled,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create HTTP server")
	}

	var grpcHealth *observability.GRPCHealthServer
	if cfg.GRPCHealthPort != "" {
		grpcHealth = observability.NewGRPCHealthServer(checks, 10*time.Second)
		if err := grpcHealth.Start(":" + cfg.GRPCHealthPort); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start gRPC health server")
		}
	}

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("endpoint", fmt.Sprintf("http://localhost:%s/api/sessions", cfg.Port)).
			Msg("Server listening")
		if err := server.Start(":" + cfg.Port); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if grpcHealth != nil {
		grpcHealth.Stop()
	}
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}

// withRedisCache puts the Redis definition cache in front of definer. Redis
// may start after this process, so the first ping is retried. The uncached
// definer is returned when it never answers.
func withRedisCache(cfg *config.Config, definer lookup.Definer, checks map[string]observability.HealthCheckFunc) lookup.Definer {
	logger := observability.Component("main")

	cache, err := lookup.NewRedisCache(cfg.RedisURL, cfg.CacheTTL())
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid REDIS_URL, definition cache disabled")
		return definer
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	rc := resilience.DefaultReconnectConfig()
	rc.MaxAttempts = cfg.ReconnectMaxAttempts
	rc.Backoff = time.Duration(cfg.ReconnectBackoff) * time.Millisecond
	if err := resilience.Reconnect(ctx, "redis", cache.Ping, rc); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, definition cache disabled")
		cache.Close()
		return definer
	}

	checks["redis"] = func(ctx context.Context) (bool, error) {
		if err := cache.Ping(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	return lookup.WithCache(definer, cache)
}
