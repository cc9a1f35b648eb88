package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/engine"
	"github.com/steveyegge/skein/internal/types"
	"github.com/steveyegge/skein/internal/ui"
)

var (
	updateMeta map[string]string
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	GroupID: "tasks",
	Short:   "Update fields of an active task",
	Long: `Update a task in place. Only the flags you pass change; everything else
is untouched. The id itself is immutable, and archived tasks must be
reopened before they can change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}

		var opts engine.UpdateOpts
		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			opts.Title = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			opts.Description = &v
		}
		if cmd.Flags().Changed("design") {
			v, _ := cmd.Flags().GetString("design")
			opts.Design = &v
		}
		if cmd.Flags().Changed("category") {
			v, _ := cmd.Flags().GetString("category")
			opts.Category = &v
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			status := types.Status(v)
			opts.Status = &status
		}
		if cmd.Flags().Changed("type") {
			v, _ := cmd.Flags().GetString("type")
			taskType := types.TaskType(v)
			opts.Type = &taskType
		}
		if cmd.Flags().Changed("parent") {
			v, _ := cmd.Flags().GetInt("parent")
			if v == 0 {
				opts.ClearParent = true
			} else {
				opts.ParentID = &v
			}
		}
		opts.Meta = updateMeta

		result, err := eng.Update(rootCtx, id, opts)
		if err != nil {
			return err
		}
		return output(result, ui.RenderTaskLine(result.Task, nil)+"\n")
	},
}

func init() {
	updateCmd.Flags().String("title", "", "new title")
	updateCmd.Flags().StringP("description", "d", "", "new description")
	updateCmd.Flags().String("design", "", "new design notes")
	updateCmd.Flags().StringP("category", "c", "", "new category")
	updateCmd.Flags().StringP("status", "s", "", "open|in_progress|blocked")
	updateCmd.Flags().StringP("type", "t", "", "new type")
	updateCmd.Flags().IntP("parent", "p", 0, "new parent id (0 clears)")
	updateCmd.Flags().StringToStringVar(&updateMeta, "meta", nil, "key=value metadata (empty value removes the key)")
	rootCmd.AddCommand(updateCmd)
}
