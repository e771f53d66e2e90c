package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tejusbharadwaj/clockfeed/internal/config"
	"github.com/tejusbharadwaj/clockfeed/internal/greeting"
	"github.com/tejusbharadwaj/clockfeed/internal/loader"
	"github.com/tejusbharadwaj/clockfeed/internal/models"
)

const defaultGreetCollection = "users"

var greetCmd = &cobra.Command{
	Use:   "greet [collection]",
	Short: "Print a greeting for every user of a collection",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGreet,
}

func runGreet(cmd *cobra.Command, args []string) error {
	appConfig, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	name := greetCollection(appConfig)
	if len(args) > 0 {
		name = args[0]
	}
	logger, err := newLogger(appConfig.Logging)
	if err != nil {
		return err
	}
	logger.SetOutput(cmd.ErrOrStderr())

	colConfig, ok := appConfig.Collection(name)
	if !ok {
		return fmt.Errorf("unknown collection: %s", name)
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), waitTimeout)
	defer cancel()

	l := loader.New(loader.WithLogger(logger), loader.WithTimeout(appConfig.Loader.Timeout))
	col := l.Load(ctx, colConfig.Source())
	if err := col.Wait(ctx); err != nil {
		return err
	}

	switch col.Status() {
	case models.StatusFailed:
		return col.Err()
	case models.StatusLoading:
		return fmt.Errorf("collection %s did not load: %w", name, context.Cause(ctx))
	}

	for _, line := range greeting.Lines(col.Items()) {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

// greetCollection is the first collection flagged with greeting: true
func greetCollection(cfg *config.Config) string {
	for _, c := range cfg.Collections {
		if c.Greeting {
			return c.Name
		}
	}
	return defaultGreetCollection
}
