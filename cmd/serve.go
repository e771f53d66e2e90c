package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/tejusbharadwaj/clockfeed/internal/dashboard"
	server "github.com/tejusbharadwaj/clockfeed/internal/grpc"
	"github.com/tejusbharadwaj/clockfeed/internal/journal"
	"github.com/tejusbharadwaj/clockfeed/internal/metrics"
	"github.com/tejusbharadwaj/clockfeed/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC dashboard service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	appConfig, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(appConfig.Logging)
	if err != nil {
		return err
	}

	m := metrics.New()
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	repo, err := openJournal(appConfig.Journal)
	if err != nil {
		return err
	}

	// Create a context that will be canceled on shutdown
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	board, err := startDashboard(ctx, appConfig, dashboardDeps{
		logger:  logger,
		metrics: m,
		journal: repo,
	})
	if err != nil {
		closeJournal(repo, logger)
		return err
	}

	var recorder scheduler.SampleRecorder
	if repo != nil {
		recorder = repo
	}
	sched := scheduler.NewScheduler(ctx, board, recorder, logger, appConfig.Report.Schedule)
	if err := sched.Start(); err != nil {
		board.Close()
		closeJournal(repo, logger)
		return fmt.Errorf("scheduler error: %w", err)
	}

	srv, health, err := server.SetupServer(board, server.ServerConfig{
		CacheSize:      appConfig.Cache.Size,
		RateLimit:      appConfig.RateLimit.RPS,
		RateLimitBurst: appConfig.RateLimit.Burst,
		Logger:         logger,
		Metrics:        m,
	})
	if err != nil {
		sched.Stop()
		board.Close()
		closeJournal(repo, logger)
		return fmt.Errorf("failed to setup server: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", appConfig.Server.Host, appConfig.Server.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		sched.Stop()
		board.Close()
		closeJournal(repo, logger)
		return fmt.Errorf("failed to listen: %w", err)
	}

	errChan := make(chan error, 2)

	var metricsSrv *http.Server
	if appConfig.Server.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", appConfig.Server.Host, appConfig.Server.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	logger.WithFields(logrus.Fields{
		"addr":         addr,
		"metrics_port": appConfig.Server.MetricsPort,
		"clocks":       len(appConfig.Clocks),
		"collections":  len(appConfig.Collections),
	}).Info("Starting gRPC server")

	go func() {
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Handle shutdown gracefully
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		handleShutdown(ctx, shutdownTargets{
			grpc:      srv,
			health:    health,
			metrics:   metricsSrv,
			scheduler: sched,
			board:     board,
			journal:   repo,
		}, logger)
	}()

	select {
	case err := <-errChan:
		cancel()
		<-stopped
		return err
	case <-stopped:
		return nil
	}
}

type shutdownTargets struct {
	grpc      *grpc.Server
	health    *server.HealthChecker
	metrics   *http.Server
	scheduler *scheduler.Scheduler
	board     *dashboard.Board
	journal   journal.Repository
}

// Handle graceful shutdown
func handleShutdown(ctx context.Context, t shutdownTargets, logger *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		logger.Info("Context canceled, initiating shutdown")
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("Received signal, initiating shutdown")
	}

	t.health.Shutdown()

	logger.Info("Gracefully stopping server...")
	t.grpc.GracefulStop()
	logger.Info("Server stopped")

	if t.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := t.metrics.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Failed to stop metrics server")
		}
	}

	t.scheduler.Stop()
	t.board.Close()
	closeJournal(t.journal, logger)
}

func closeJournal(repo journal.Repository, logger *logrus.Logger) {
	if repo == nil {
		return
	}
	if err := repo.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close journal")
	}
}
