package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lexiqai/echolisten/internal/config"
	"github.com/lexiqai/echolisten/internal/lookup"
	"github.com/lexiqai/echolisten/internal/media"
	"github.com/lexiqai/echolisten/internal/observability"
	"github.com/lexiqai/echolisten/internal/store"
	"github.com/lexiqai/echolisten/internal/stt"
	"github.com/lexiqai/echolisten/internal/study"
	"github.com/lexiqai/echolisten/internal/vocab"
)

var (
	dbPath   string
	logLevel string
	cfg      *config.Config
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

var rootCmd = &cobra.Command{
	Use:          "echoctl",
	Short:        "Study transcribed recordings from the terminal",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if dbPath != "" {
			c.DBPath = dbPath
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
		// stdout is reserved for command output
		observability.InitLoggerTo(os.Stderr, c.LogLevel, true)
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default $DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// service is what a command needs: the study service and a cleanup func.
type service struct {
	*study.Service
	close func()
}

// option adds an optional collaborator to the service.
type option func(*study.Options) error

// withTranscriber adds the configured ASR provider.
func withTranscriber(o *study.Options) error {
	tr, err := stt.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}
	o.Transcriber = tr
	return nil
}

// withDefiner adds the configured lookup provider, cached in Redis when
// REDIS_URL is set and reachable.
func withDefiner(o *study.Options) error {
	definer, err := lookup.New(cfg)
	if err != nil {
		return err
	}
	if definer == nil {
		return nil
	}
	if cfg.RedisURL != "" {
		cache, err := lookup.NewRedisCache(cfg.RedisURL, cfg.CacheTTL())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.Ping(ctx); err != nil {
			logger := observability.Component("cli")
			logger.Warn().Err(err).Msg("Definition cache unavailable")
		} else {
			definer = lookup.WithCache(definer, cache)
		}
	}
	o.Definer = definer
	return nil
}

// openService opens the database and builds a study service. Providers are
// only created for commands that need them so the others work offline.
func openService(opts ...option) (*service, error) {
	repo, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	sched, err := vocab.NewScheduler(cfg.ReviewIntervals, time.Now)
	if err != nil {
		repo.Close()
		return nil, err
	}

	o := study.Options{
		Repository: repo,
		Scheduler:  sched,
		Probe:      media.Duration,
	}
	for _, apply := range opts {
		if err := apply(&o); err != nil {
			repo.Close()
			return nil, err
		}
	}

	svc, err := study.NewService(o)
	if err != nil {
		repo.Close()
		return nil, err
	}
	return &service{Service: svc, close: func() { repo.Close() }}, nil
}

// clock formats seconds as m:ss.
func clock(seconds float64) string {
	s := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
