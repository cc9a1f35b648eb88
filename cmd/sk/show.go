package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/ui"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	GroupID: "views",
	Short:   "Show one task in full",
	Args:    cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		task, ann, err := eng.Get(rootCtx, id)
		if err != nil {
			return err
		}
		payload := map[string]interface{}{"task": task, "annotation": ann}
		return output(payload, ui.RenderTask(task, ann))
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
