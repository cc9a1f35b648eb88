package ui

import (
	"fmt"
	"strings"

	"github.com/steveyegge/skein/internal/graph"
	"github.com/steveyegge/skein/internal/query"
	"github.com/steveyegge/skein/internal/types"
)

// RenderTaskLine formats one task as a single list row.
func RenderTaskLine(t *types.Task, ann *graph.Annotation) string {
	id := StyleStatus(t.Status, fmt.Sprintf("%-5d", t.ID))
	line := fmt.Sprintf("%s %s [%s/%s] (%s)", id, TitleStyle.Render(t.Title), t.Category, t.Type, t.Status)
	if ann != nil && ann.Blocked {
		if ann.InCycle {
			line += " " + FailStyle.Render(fmt.Sprintf("[CYCLE %s]", joinInts(ann.BlockedBy, " → ")))
		} else {
			line += " " + WarnStyle.Render(fmt.Sprintf("[blocked by %s]", joinInts(ann.BlockedBy, ", ")))
		}
	}
	if t.ParentID != nil {
		line += " " + MutedStyle.Render(fmt.Sprintf("(child of %d)", *t.ParentID))
	}
	return line
}

// RenderSelection formats a full query result including truncation and
// parent-progress metadata.
func RenderSelection(sel *query.Selection) string {
	var b strings.Builder
	for _, t := range sel.Tasks {
		b.WriteString(RenderTaskLine(t, sel.Annotations[t.ID]))
		b.WriteByte('\n')
	}
	if sel.Truncated {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("… %d of %d shown", len(sel.Tasks), sel.Total)))
		b.WriteByte('\n')
	}
	if sel.Children != nil {
		done := sel.Children.Closed
		total := sel.Children.Open + sel.Children.Closed
		b.WriteString(MutedStyle.Render(fmt.Sprintf("children: %d of %d completed", done, total)))
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderTask formats the full detail view of one task.
func RenderTask(t *types.Task, ann *graph.Annotation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", StyleStatus(t.Status, fmt.Sprintf("#%d", t.ID)), TitleStyle.Render(t.Title))
	fmt.Fprintf(&b, "  status:   %s\n", t.Status)
	fmt.Fprintf(&b, "  category: %s\n", t.Category)
	fmt.Fprintf(&b, "  type:     %s\n", t.Type)
	if t.ParentID != nil {
		fmt.Fprintf(&b, "  parent:   %d\n", *t.ParentID)
	}
	if t.Description != "" {
		fmt.Fprintf(&b, "  description: %s\n", indent(t.Description))
	}
	if t.Design != "" {
		fmt.Fprintf(&b, "  design: %s\n", indent(t.Design))
	}
	for k, v := range t.Meta {
		fmt.Fprintf(&b, "  meta.%s: %s\n", k, v)
	}
	for _, r := range t.Relations {
		fmt.Fprintf(&b, "  relation %d: %s %d\n", r.ID, r.AsType, r.RelatesTo)
	}
	for _, entry := range t.SharedContext {
		fmt.Fprintf(&b, "  context: %s\n", MutedStyle.Render(entry))
	}
	if ann != nil && ann.Blocked {
		fmt.Fprintf(&b, "  %s\n", WarnStyle.Render(fmt.Sprintf("blocked by %s", joinInts(ann.BlockedBy, ", "))))
	}
	return b.String()
}

// RenderUnblocked reports tasks freed up by a completion or deletion.
// Empty input renders nothing.
func RenderUnblocked(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	return PassStyle.Render(fmt.Sprintf("unblocked: %s", joinInts(ids, ", "))) + "\n"
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n    ")
}

func joinInts(ids []int, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, sep)
}
