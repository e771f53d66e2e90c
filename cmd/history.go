package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [collection]",
	Short: "Print recent collection loads from the journal",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	collection := ""
	if len(args) > 0 {
		collection = args[0]
	}

	appConfig, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	repo, err := openJournal(appConfig.Journal)
	if err != nil {
		return err
	}
	if repo == nil {
		return errors.New("no journal configured: set journal.driver and journal.dsn")
	}
	defer repo.Close()

	entries, err := repo.RecentLoads(commandContext(cmd), collection, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No loads recorded")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("COLLECTION", "STATUS", "ITEMS", "DURATION", "WHEN", "ERROR")
	for _, e := range entries {
		t.Row(
			e.Collection,
			e.Status.String(),
			humanize.Comma(int64(e.Items)),
			e.Duration.Round(time.Millisecond).String(),
			humanize.Time(e.At),
			e.Error,
		)
	}
	fmt.Fprintln(out, t.Render())
	return nil
}
