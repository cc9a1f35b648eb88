package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/engine"
	"github.com/steveyegge/skein/internal/ui"
)

var (
	deleteTitle string
	deleteForce bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete [id]",
	GroupID: "tasks",
	Short:   "Soft-delete a task",
	Long: `Delete a task. The record is never erased: it moves to the archive log
with status deleted, and its id stays burned. Deleting a task that other
incomplete tasks are blocked on is refused unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		opts := engine.DeleteOpts{
			TitlePattern: deleteTitle,
			Force:        deleteForce || cfg.ForceDelete,
		}
		if len(args) == 1 {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			opts.ID = id
		}

		result, err := eng.Delete(rootCtx, opts)
		if err != nil {
			return err
		}
		human := ui.RenderTaskLine(result.Task, nil) + "\n"
		human += ui.RenderUnblocked(result.Unblocked)
		return output(result, human)
	},
}

func init() {
	deleteCmd.Flags().StringVar(&deleteTitle, "title", "", "locate by title pattern instead of id")
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "delete even with incomplete dependents")
	rootCmd.AddCommand(deleteCmd)
}
