package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tejusbharadwaj/clockfeed/internal/clock"
	"github.com/tejusbharadwaj/clockfeed/internal/dashboard"
	"github.com/tejusbharadwaj/clockfeed/internal/loader"
	"github.com/tejusbharadwaj/clockfeed/internal/render"
)

const clearScreen = "\033[H\033[2J"

// waitTimeout bounds how long --once waits for collections
const waitTimeout = 30 * time.Second

var watchOnce bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Render clocks and collections in the terminal",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	appConfig, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(appConfig.Logging)
	if err != nil {
		return err
	}
	// log lines would tear the rendered screen apart
	logger.SetOutput(cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redraw := make(chan struct{}, 1)
	notify := func() {
		select {
		case redraw <- struct{}{}:
		default:
		}
	}

	board, err := startDashboard(ctx, appConfig, dashboardDeps{
		logger:       logger,
		onClock:      func(clock.Snapshot) { notify() },
		onCollection: func(*loader.Collection) { notify() },
	})
	if err != nil {
		return err
	}
	defer board.Close()

	r := render.New()
	out := cmd.OutOrStdout()

	if watchOnce {
		waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
		defer cancel()
		if err := board.Wait(waitCtx); err != nil {
			return fmt.Errorf("collections did not resolve: %w", err)
		}
		draw(out, r, board, "")
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-redraw:
			draw(out, r, board, clearScreen)
		}
	}
}

func draw(out io.Writer, r *render.Renderer, board *dashboard.Board, prefix string) {
	clocks := board.Clocks()
	snaps := make([]clock.Snapshot, 0, len(clocks))
	for _, c := range clocks {
		snap, _ := c.Snapshot()
		snaps = append(snaps, snap)
	}
	fmt.Fprint(out, prefix+r.Dashboard(snaps, board.Collections(), board.DisplayField)+"\n")
}
