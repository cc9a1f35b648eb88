package main

import (
	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/types"
	"github.com/steveyegge/skein/internal/ui"
)

var (
	listStatus  string
	listCat     string
	listType    string
	listParent  int
	listTitle   string
	listBlocked bool
	listReady   bool
	listLimit   int
	listUnique  bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "views",
	Short:   "List tasks in priority order",
	Long: `List tasks from the active log, in file order (priority order).

Without filters, only incomplete tasks (open, in_progress, blocked) are
shown. Pass --status any to include completed tasks, or a specific status
to match exactly. All filters AND together.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter := types.TaskFilter{
			Status:       listStatus,
			Category:     listCat,
			Type:         listType,
			TitlePattern: listTitle,
			Limit:        listLimit,
			Unique:       listUnique,
		}
		if filter.Limit == 0 {
			filter.Limit = cfg.Limit
		}
		if listParent > 0 {
			filter.ParentID = &listParent
		}
		if cmd.Flags().Changed("blocked") {
			filter.Blocked = &listBlocked
		}
		if listReady {
			ready := false
			filter.Blocked = &ready
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
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "open|in_progress|blocked|closed|deleted|any")
	listCmd.Flags().StringVarP(&listCat, "category", "c", "", "exact category match")
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "exact type match")
	listCmd.Flags().IntVarP(&listParent, "parent", "p", 0, "children of this task")
	listCmd.Flags().StringVar(&listTitle, "title", "", "regexp or substring title match")
	listCmd.Flags().BoolVar(&listBlocked, "blocked", false, "filter by blocked state")
	listCmd.Flags().BoolVar(&listReady, "ready", false, "only unblocked tasks (shorthand for --blocked=false)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "max results (default from config)")
	listCmd.Flags().BoolVar(&listUnique, "unique", false, "fail unless exactly one task matches")
	rootCmd.AddCommand(listCmd)
}
