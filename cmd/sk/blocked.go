package main

import (
	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/types"
	"github.com/steveyegge/skein/internal/ui"
)

var blockedLimit int

var blockedCmd = &cobra.Command{
	Use:     "blocked",
	GroupID: "views",
	Short:   "List blocked tasks with what blocks them",
	Long: `Show incomplete tasks that cannot start yet, each annotated with its
incomplete blockers (or its cycle, when the block is circular).`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		blocked := true
		filter := types.TaskFilter{
			Blocked: &blocked,
			Limit:   blockedLimit,
		}
		if filter.Limit == 0 {
			filter.Limit = cfg.Limit
		}

		sel, malformed, err := eng.Select(rootCtx, filter)
		if err != nil {
			return err
		}
		reportMalformed(malformed)
		return output(sel, ui.RenderSelection(sel))
	},
}

func init() {
	blockedCmd.Flags().IntVarP(&blockedLimit, "limit", "n", 0, "max results (default from config)")
	rootCmd.AddCommand(blockedCmd)
}
