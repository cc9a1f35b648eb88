package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/engine"
	"github.com/steveyegge/skein/internal/ui"
)

var (
	closeCategory string
	closeTitle    string
	closeComment  string
)

var closeCmd = &cobra.Command{
	Use:     "close [id]",
	GroupID: "tasks",
	Short:   "Complete a task and move it to the archive",
	Long: `Close a task. The record moves from the active log to the archive log
with status closed.

The title is always required as confirmation: when closing by id it must
match the stored title exactly (ignoring case and whitespace), and when
closing by category it is matched as a prefix against that category's
tasks. A prefix matching more than one task fails rather than guessing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		opts := engine.CompleteOpts{
			Category: closeCategory,
			Title:    closeTitle,
			Comment:  closeComment,
		}
		if len(args) == 1 {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			opts.ID = id
		}

		result, err := eng.Complete(rootCtx, opts)
		if err != nil {
			return err
		}
		human := ui.RenderTaskLine(result.Task, nil) + "\n"
		human += ui.RenderUnblocked(result.Unblocked)
		return output(result, human)
	},
}

func init() {
	closeCmd.Flags().StringVarP(&closeCategory, "category", "c", "", "locate by category instead of id")
	closeCmd.Flags().StringVar(&closeTitle, "title", "", "task title, required for confirmation")
	closeCmd.Flags().StringVarP(&closeComment, "comment", "m", "", "completion note appended to the description")
	closeCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(closeCmd)
}
