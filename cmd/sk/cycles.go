package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/ui"
)

var cyclesCmd = &cobra.Command{
	Use:     "cycles",
	GroupID: "views",
	Short:   "Report blocked-by cycles among incomplete tasks",
	Long: `Detect dependency cycles. Tasks in a cycle can never become ready, so
each one is reported with its member ids in dependency order. An empty
report means the graph is clean.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cycles, err := eng.Cycles(rootCtx)
		if err != nil {
			return err
		}

		var b strings.Builder
		if len(cycles) == 0 {
			b.WriteString("no cycles\n")
		}
		for _, cycle := range cycles {
			parts := make([]string, len(cycle))
			for i, id := range cycle {
				parts[i] = fmt.Sprintf("%d", id)
			}
			b.WriteString(ui.FailStyle.Render("cycle: "+strings.Join(parts, " → ")) + "\n")
		}
		payload := map[string]interface{}{"cycles": cycles}
		return output(payload, b.String())
	},
}

func init() {
	rootCmd.AddCommand(cyclesCmd)
}
