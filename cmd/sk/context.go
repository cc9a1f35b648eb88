package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/engine"
	"github.com/steveyegge/skein/internal/ui"
)

var contextActing int

var contextCmd = &cobra.Command{
	Use:     "context",
	GroupID: "tasks",
	Short:   "Read and append a task's shared context",
	Long: `Shared context is a newest-first list of short notes left on a task by
whoever worked near it. Entries are attributed to the acting task and
the oldest entries are dropped once the serialized list exceeds the
size cap.`,
}

var contextShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a task's shared context, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		task, _, err := eng.Get(rootCtx, id)
		if err != nil {
			return err
		}

		var b strings.Builder
		for _, entry := range task.SharedContext {
			b.WriteString(entry)
			b.WriteByte('\n')
		}
		payload := map[string]interface{}{"id": task.ID, "shared_context": task.SharedContext}
		return output(payload, b.String())
	},
}

var contextAddCmd = &cobra.Command{
	Use:   "add <id> <entry>...",
	Short: "Prepend entries to a task's shared context",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}

		result, err := eng.Update(rootCtx, id, engine.UpdateOpts{
			SharedContext: args[1:],
			ActingTaskID:  contextActing,
		})
		if err != nil {
			return err
		}
		return output(result, ui.RenderTaskLine(result.Task, nil)+"\n")
	},
}

func init() {
	contextAddCmd.Flags().IntVar(&contextActing, "as", 0, "id of the task doing the writing")
	contextAddCmd.MarkFlagRequired("as")
	contextCmd.AddCommand(contextShowCmd)
	contextCmd.AddCommand(contextAddCmd)
	rootCmd.AddCommand(contextCmd)
}
