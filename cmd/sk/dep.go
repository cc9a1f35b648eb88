package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/engine"
	"github.com/steveyegge/skein/internal/types"
	"github.com/steveyegge/skein/internal/ui"
)

var depType string

var depCmd = &cobra.Command{
	Use:     "dep",
	GroupID: "tasks",
	Short:   "Manage relations between tasks",
}

var depAddCmd = &cobra.Command{
	Use:   "add <id> <target-id>",
	Short: "Add a relation from one task to another",
	Long: `Add a relation. The default type is blocked-by: the first task will not
be ready until the target completes. The target does not have to exist
yet; forward references start blocking once the target is created.`,
	Args: cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		target, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		rel := types.Relation{RelatesTo: target, AsType: types.RelationType(depType)}
		if !rel.AsType.IsValid() {
			return fmt.Errorf("%w: unknown relation type %q", types.ErrValidation, depType)
		}

		result, err := eng.Update(rootCtx, id, engine.UpdateOpts{AddRelations: []types.Relation{rel}})
		if err != nil {
			return err
		}
		return output(result, ui.RenderTaskLine(result.Task, nil)+"\n")
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <id> <relation-id>",
	Short: "Remove a relation by its per-task id",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		rid, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}

		result, err := eng.Update(rootCtx, id, engine.UpdateOpts{RemoveRelationIDs: []int{rid}})
		if err != nil {
			return err
		}
		return output(result, ui.RenderTaskLine(result.Task, nil)+"\n")
	},
}

func init() {
	depAddCmd.Flags().StringVarP(&depType, "type", "t", string(types.RelBlockedBy), "blocked-by|related|discovered-during")
	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	rootCmd.AddCommand(depCmd)
}
