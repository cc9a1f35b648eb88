package main

import (
	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/engine"
	"github.com/steveyegge/skein/internal/types"
	"github.com/steveyegge/skein/internal/ui"
)

var (
	createDescription string
	createDesign      string
	createCategory    string
	createType        string
	createParent      int
	createBlockedBy   []int
	createMeta        map[string]string
	createFront       bool
)

var createCmd = &cobra.Command{
	Use:     "create <title>",
	GroupID: "tasks",
	Short:   "Create a new task",
	Long: `Create a new task at the end of the active log (or the front with --front).

The id is assigned automatically and never reused. Blocking relations can
reference tasks that do not exist yet; they start blocking once the target
is created.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		task := types.Task{
			Title:       args[0],
			Description: createDescription,
			Design:      createDesign,
			Category:    createCategory,
			Type:        types.TaskType(createType),
			Meta:        map[string]string{},
		}
		if createParent > 0 {
			task.ParentID = &createParent
		}
		for _, blocker := range createBlockedBy {
			task.Relations = append(task.Relations, types.Relation{
				RelatesTo: blocker,
				AsType:    types.RelBlockedBy,
			})
		}
		for k, v := range createMeta {
			task.Meta[k] = v
		}
		if cfg.Actor != "" {
			task.Meta["created-by"] = cfg.Actor
		}

		result, err := eng.Add(rootCtx, task, engine.AddOpts{Front: createFront})
		if err != nil {
			return err
		}
		return output(result, ui.RenderTaskLine(result.Task, nil)+"\n")
	},
}

func init() {
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "what needs doing and why")
	createCmd.Flags().StringVar(&createDesign, "design", "", "how to approach it")
	createCmd.Flags().StringVarP(&createCategory, "category", "c", "simple", "execution workflow name")
	createCmd.Flags().StringVarP(&createType, "type", "t", "task", "task|bug|feature|story|chore")
	createCmd.Flags().IntVarP(&createParent, "parent", "p", 0, "parent story id")
	createCmd.Flags().IntSliceVar(&createBlockedBy, "blocked-by", nil, "ids of tasks that must finish first")
	createCmd.Flags().StringToStringVar(&createMeta, "meta", nil, "key=value metadata")
	createCmd.Flags().BoolVar(&createFront, "front", false, "insert at the front of the queue")
	rootCmd.AddCommand(createCmd)
}
