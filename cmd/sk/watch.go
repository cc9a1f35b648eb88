package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/debug"
	"github.com/steveyegge/skein/internal/types"
	"github.com/steveyegge/skein/internal/ui"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "views",
	Short:   "Re-render the task list whenever the logs change",
	Long: `Watch the log files and reprint the incomplete-task list after each
change. Events are debounced so a multi-file operation renders once.
Interrupt to stop.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()

		// The logs are replaced by rename on rewrite, so watch the directory
		// rather than the files themselves.
		paths := eng.Paths()
		if err := watcher.Add(filepath.Dir(paths.Active)); err != nil {
			return err
		}
		watched := map[string]bool{
			filepath.Base(paths.Active):  true,
			filepath.Base(paths.Archive): true,
		}

		render := func() {
			sel, malformed, err := eng.Select(rootCtx, types.TaskFilter{Limit: cfg.Limit})
			if err != nil {
				fmt.Fprintf(os.Stderr, "sk: %v\n", err)
				return
			}
			reportMalformed(malformed)
			fmt.Print(ui.RenderSelection(sel))
		}
		render()

		var timer *time.Timer
		pending := make(chan struct{}, 1)
		for {
			select {
			case <-rootCtx.Done():
				return nil
			case <-pending:
				render()
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !watched[filepath.Base(event.Name)] {
					continue
				}
				debug.Logf("sk: watch event %s\n", event)
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchInterval, func() {
					select {
					case pending <- struct{}{}:
					default:
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(os.Stderr, "sk: watch: %v\n", err)
			}
		}
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "debounce", 250*time.Millisecond, "settle time before re-rendering")
	rootCmd.AddCommand(watchCmd)
}
