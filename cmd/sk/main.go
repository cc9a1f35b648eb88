// Command sk is the CLI for the skein task tracker.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/configfile"
	"github.com/steveyegge/skein/internal/debug"
	"github.com/steveyegge/skein/internal/engine"
	"github.com/steveyegge/skein/internal/lockfile"
	"github.com/steveyegge/skein/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfg        *configfile.Config
	eng        *engine.Engine
	jsonOutput bool
	yamlOutput bool
	verbose    bool
	quiet      bool
	workDir    string

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:           "sk",
	Short:         "Line-log task tracker for agent workflows",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		debug.SetVerbose(verbose)
		debug.SetQuiet(quiet)

		// init creates the project; everything else requires one.
		if cmd.Name() == "init" || cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = configfile.Load(workDir)
		if err != nil {
			return err
		}
		eng = engine.New(cfg.Paths())
		return nil
	},
}

func main() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer rootCancel()

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	rootCmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "output YAML")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&workDir, "dir", ".", "project directory")

	rootCmd.AddGroup(
		&cobra.Group{ID: "tasks", Title: "Task Commands:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "setup", Title: "Setup:"},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error taxonomy onto distinct exit codes so scripts can
// tell "nothing matched" from "you raced another writer".
func exitCode(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return 2
	case errors.Is(err, types.ErrAmbiguous):
		return 3
	case errors.Is(err, lockfile.ErrConcurrencyConflict):
		return 4
	default:
		return 1
	}
}
