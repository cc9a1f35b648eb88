package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "views",
	Short:   "Show task counts across both logs",
	Args:    cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		stats, err := eng.Stats(rootCtx)
		if err != nil {
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "total:       %d\n", stats.Total)
		fmt.Fprintf(&b, "open:        %d\n", stats.Open)
		fmt.Fprintf(&b, "in progress: %d\n", stats.InProgress)
		fmt.Fprintf(&b, "blocked:     %d\n", stats.Blocked)
		fmt.Fprintf(&b, "closed:      %d\n", stats.Closed)
		fmt.Fprintf(&b, "deleted:     %d\n", stats.Deleted)
		fmt.Fprintf(&b, "%s\n", ui.PassStyle.Render(fmt.Sprintf("ready:       %d", stats.Ready)))
		return output(stats, b.String())
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
