package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jjenkins/billt/internal/config"
	"github.com/jjenkins/billt/internal/legiscan"
)

var (
	cfg      *config.Config
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "billt",
	Short: "Search and track legislation through the LegiScan API",
	Long: `billt searches the LegiScan API for bills across US jurisdictions,
ranks every page of results by relevance, and exports them to CSV,
Google Sheets, a local store you can browse, or a PostgreSQL archive.

Configuration is read from BILLT_* environment variables; BILLT_API_KEY
is required for any command that talks to LegiScan.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if logLevel == "" {
			logLevel = cfg.LogLevel
		}
		return setupLogging(logLevel)
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides BILLT_LOG_LEVEL")
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().
		Timestamp().
		Logger()
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			log.Warn().Msg("received interrupt signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

func newClient() (*legiscan.Client, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return legiscan.NewClient(legiscan.Options{
		BaseURL:     cfg.API.URL,
		APIKey:      cfg.API.Key,
		Timeout:     cfg.Timeout,
		MaxRetries:  cfg.MaxRetries,
		RateLimit:   cfg.RateLimit,
		Concurrency: cfg.Concurrency,
	}), nil
}
