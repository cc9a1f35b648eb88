package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/engine"
	"github.com/steveyegge/skein/internal/ui"
)

var reopenTitle string

var reopenCmd = &cobra.Command{
	Use:     "reopen [id]",
	GroupID: "tasks",
	Short:   "Resurrect a completed task",
	Long: `Reopen a completed task. An archived record moves back to the end of the
active log with status open; everything else on it is preserved, so
close followed by reopen round-trips the task.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		opts := engine.ReopenOpts{TitlePattern: reopenTitle}
		if len(args) == 1 {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			opts.ID = id
		}

		result, err := eng.Reopen(rootCtx, opts)
		if err != nil {
			return err
		}
		return output(result, ui.RenderTaskLine(result.Task, nil)+"\n")
	},
}

func init() {
	reopenCmd.Flags().StringVar(&reopenTitle, "title", "", "locate by title pattern instead of id")
	rootCmd.AddCommand(reopenCmd)
}
