package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tejusbharadwaj/clockfeed/internal/clock"
	"github.com/tejusbharadwaj/clockfeed/internal/config"
	"github.com/tejusbharadwaj/clockfeed/internal/dashboard"
	"github.com/tejusbharadwaj/clockfeed/internal/journal"
	"github.com/tejusbharadwaj/clockfeed/internal/loader"
	"github.com/tejusbharadwaj/clockfeed/internal/metrics"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "clockfeed",
	Short:         "World clocks and remote collections on one dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (built-in defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Render once after all collections resolved and exit")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(greetCmd)
	rootCmd.AddCommand(historyCmd)
}

// Command clockfeed shows world clocks next to collections fetched from
// remote JSON endpoints.
//
// It supports:
//   - Timezone and locale formatted clocks refreshed every second
//   - One-shot loading of remote collections with explicit failure states
//   - A gRPC dashboard service with health checks and Prometheus metrics
//   - An optional load journal on Postgres or SQLite
//
// Usage:
//
//	clockfeed [command] [flags]
//
// The commands are:
//
//	serve     run the gRPC dashboard service
//	watch     render the dashboard in the terminal
//	greet     print a greeting for every user of a collection
//	history   print recent collection loads from the journal
//
// The global flags are:
//
//	--config string
//	      path to config file (built-in defaults when empty)
//	--log-level string
//	      overrides logging.level from the config file
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default()
	}
	return config.Load(configPath)
}

// newLogger builds the structured logger described by the logging section
func newLogger(cfg config.LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	switch strings.ToLower(cfg.Format) {
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format: %q", cfg.Format)
	}

	level := cfg.Level
	if logLevel != "" {
		level = logLevel
	}
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(lvl)

	return logger, nil
}

// openJournal returns nil when no journal driver is configured
func openJournal(cfg config.JournalConfig) (journal.Repository, error) {
	if cfg.Driver == "" {
		return nil, nil
	}
	repo, err := journal.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return repo, nil
}

type dashboardDeps struct {
	logger       *logrus.Logger
	metrics      *metrics.Metrics
	journal      journal.Repository
	onClock      clock.Observer
	onCollection loader.Observer
}

// startDashboard starts every configured clock and the single load of every
// configured collection. Cancelling ctx discards responses still in flight.
func startDashboard(ctx context.Context, cfg *config.Config, deps dashboardDeps) (*dashboard.Board, error) {
	board := dashboard.New(deps.logger)

	for _, cc := range cfg.Clocks {
		c, err := clock.Start(cc.Clock(),
			clock.WithLogger(deps.logger),
			clock.WithMetrics(deps.metrics),
			clock.WithObserver(deps.onClock),
		)
		if err != nil {
			board.Close()
			return nil, fmt.Errorf("clock %s: %w", cc.Country, err)
		}
		board.AddClock(c)
	}

	opts := []loader.Option{
		loader.WithLogger(deps.logger),
		loader.WithMetrics(deps.metrics),
		loader.WithTimeout(cfg.Loader.Timeout),
		loader.WithObserver(deps.onCollection),
	}
	if deps.journal != nil {
		opts = append(opts, loader.WithJournal(deps.journal))
	}
	l := loader.New(opts...)

	for _, col := range cfg.Collections {
		board.AddCollection(l.Load(ctx, col.Source()), col.DisplayField)
	}

	return board, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
