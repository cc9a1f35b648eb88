package main

import (
	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/types"
	"github.com/steveyegge/skein/internal/ui"
)

var (
	readyCategory string
	readyLimit    int
)

var readyCmd = &cobra.Command{
	Use:     "ready",
	GroupID: "views",
	Short:   "List unblocked incomplete tasks",
	Long: `Show work that can start now: incomplete tasks with no incomplete
blockers and no cycle membership, in priority order. The first result is
the next task to pick up.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		blocked := false
		filter := types.TaskFilter{
			Category: readyCategory,
			Blocked:  &blocked,
			Limit:    readyLimit,
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
	readyCmd.Flags().StringVarP(&readyCategory, "category", "c", "", "exact category match")
	readyCmd.Flags().IntVarP(&readyLimit, "limit", "n", 0, "max results (default from config)")
	rootCmd.AddCommand(readyCmd)
}
