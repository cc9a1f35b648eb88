// Package mcpserver exposes the lifecycle operations and the query engine
// as MCP tools over stdio, so agent harnesses can drive the task store
// without shelling out to the CLI.
//
// This is the protocol binding at the engine's boundary: it translates
// engine errors into tool-result errors and passes through the touched
// file paths reported by each mutating call, leaving any
// commit-to-version-control step to the caller.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/steveyegge/skein/internal/engine"
	"github.com/steveyegge/skein/internal/types"
)

// New creates the MCP server with every task tool registered.
func New(eng *engine.Engine, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"skein",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Task tracker for agent workflows. Use task_list to find work, "+
			"task_create to record discovered work, and task_complete when done."),
	)

	registerCreate(s, eng)
	registerList(s, eng)
	registerShow(s, eng)
	registerUpdate(s, eng)
	registerComplete(s, eng)
	registerDelete(s, eng)
	registerReopen(s, eng)
	registerCycles(s, eng)

	return s
}

// ServeStdio runs the server over stdin/stdout until the client hangs up.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func registerCreate(s *server.MCPServer, eng *engine.Engine) {
	tool := mcp.NewTool("task_create",
		mcp.WithDescription("Create a new task. Returns the task with its assigned id."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Short task title")),
		mcp.WithString("description", mcp.Description("What needs doing and why")),
		mcp.WithString("design", mcp.Description("How to approach it")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Execution workflow name")),
		mcp.WithString("type", mcp.Description("task|bug|feature|story|chore (default task)")),
		mcp.WithNumber("parent_id", mcp.Description("Parent story id")),
		mcp.WithNumber("blocked_by", mcp.Description("Id of a task that must finish first")),
		mcp.WithBoolean("front", mcp.Description("Insert at the front of the queue")),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		category, err := req.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		task := types.Task{
			Title:       title,
			Description: req.GetString("description", ""),
			Design:      req.GetString("design", ""),
			Category:    category,
			Type:        types.TaskType(req.GetString("type", string(types.TypeTask))),
		}
		if pid := req.GetInt("parent_id", 0); pid > 0 {
			task.ParentID = &pid
		}
		if blocker := req.GetInt("blocked_by", 0); blocker > 0 {
			task.Relations = append(task.Relations, types.Relation{RelatesTo: blocker, AsType: types.RelBlockedBy})
		}

		result, err := eng.Add(ctx, task, engine.AddOpts{Front: req.GetBool("front", false)})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

func registerList(s *server.MCPServer, eng *engine.Engine) {
	tool := mcp.NewTool("task_list",
		mcp.WithDescription("List tasks in priority order with blocking annotations. "+
			"Without filters, returns incomplete tasks only."),
		mcp.WithString("status", mcp.Description("open|in_progress|blocked|closed|deleted|any")),
		mcp.WithString("category", mcp.Description("Exact category match")),
		mcp.WithString("type", mcp.Description("Exact type match")),
		mcp.WithNumber("parent_id", mcp.Description("Children of this task")),
		mcp.WithString("title", mcp.Description("Regexp or substring title match")),
		mcp.WithBoolean("blocked", mcp.Description("Only blocked (true) or only unblocked (false) tasks")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 10)")),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := types.TaskFilter{
			Status:       req.GetString("status", ""),
			Category:     req.GetString("category", ""),
			Type:         req.GetString("type", ""),
			TitlePattern: req.GetString("title", ""),
			Limit:        req.GetInt("limit", 0),
		}
		if pid := req.GetInt("parent_id", 0); pid > 0 {
			filter.ParentID = &pid
		}
		if args := req.GetArguments(); args != nil {
			if raw, ok := args["blocked"].(bool); ok {
				filter.Blocked = &raw
			}
		}

		sel, malformed, err := eng.Select(ctx, filter)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		payload := map[string]interface{}{
			"tasks":       sel.Tasks,
			"annotations": sel.Annotations,
			"total":       sel.Total,
			"truncated":   sel.Truncated,
		}
		if sel.Children != nil {
			payload["children"] = sel.Children
		}
		if len(malformed) > 0 {
			lines := make([]string, len(malformed))
			for i, m := range malformed {
				lines[i] = m.Error()
			}
			payload["malformed"] = lines
		}
		return jsonResult(payload)
	})
}

func registerShow(s *server.MCPServer, eng *engine.Engine) {
	tool := mcp.NewTool("task_show",
		mcp.WithDescription("Show one task by id, from either log."),
		mcp.WithNumber("id", mcp.Required()),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		task, ann, err := eng.Get(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{"task": task, "annotation": ann})
	})
}

func registerUpdate(s *server.MCPServer, eng *engine.Engine) {
	tool := mcp.NewTool("task_update",
		mcp.WithDescription("Update fields of an active task. Omitted fields are untouched."),
		mcp.WithNumber("id", mcp.Required()),
		mcp.WithString("title"),
		mcp.WithString("description"),
		mcp.WithString("design"),
		mcp.WithString("category"),
		mcp.WithString("status", mcp.Description("open|in_progress|blocked")),
		mcp.WithString("type"),
		mcp.WithString("context", mcp.Description("Shared-context note to prepend to the parent story")),
		mcp.WithNumber("acting_task_id", mcp.Description("Id of the task doing the work, used to prefix context notes")),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		opts := engine.UpdateOpts{ActingTaskID: req.GetInt("acting_task_id", 0)}
		args := req.GetArguments()
		if v, ok := args["title"].(string); ok {
			opts.Title = &v
		}
		if v, ok := args["description"].(string); ok {
			opts.Description = &v
		}
		if v, ok := args["design"].(string); ok {
			opts.Design = &v
		}
		if v, ok := args["category"].(string); ok {
			opts.Category = &v
		}
		if v, ok := args["status"].(string); ok {
			status := types.Status(v)
			opts.Status = &status
		}
		if v, ok := args["type"].(string); ok {
			taskType := types.TaskType(v)
			opts.Type = &taskType
		}
		if v, ok := args["context"].(string); ok && v != "" {
			opts.SharedContext = []string{v}
		}

		result, err := eng.Update(ctx, id, opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

func registerComplete(s *server.MCPServer, eng *engine.Engine) {
	tool := mcp.NewTool("task_complete",
		mcp.WithDescription("Close a task and move it to the archive. The title must match "+
			"the stored title (case and whitespace insensitive) as a safety check."),
		mcp.WithNumber("id", mcp.Description("Task id; omit to locate by category+title prefix")),
		mcp.WithString("category", mcp.Description("Category for prefix lookup when id is omitted")),
		mcp.WithString("title", mcp.Required()),
		mcp.WithString("comment", mcp.Description("Optional completion note appended to the description")),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := eng.Complete(ctx, engine.CompleteOpts{
			ID:       req.GetInt("id", 0),
			Category: req.GetString("category", ""),
			Title:    title,
			Comment:  req.GetString("comment", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

func registerDelete(s *server.MCPServer, eng *engine.Engine) {
	tool := mcp.NewTool("task_delete",
		mcp.WithDescription("Soft-delete a task. Refused when other incomplete tasks are "+
			"blocked by it, unless force is set."),
		mcp.WithNumber("id"),
		mcp.WithString("title", mcp.Description("Title pattern lookup when id is omitted")),
		mcp.WithBoolean("force"),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := eng.Delete(ctx, engine.DeleteOpts{
			ID:           req.GetInt("id", 0),
			TitlePattern: req.GetString("title", ""),
			Force:        req.GetBool("force", false),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

func registerReopen(s *server.MCPServer, eng *engine.Engine) {
	tool := mcp.NewTool("task_reopen",
		mcp.WithDescription("Move a completed task back to the active log with status open."),
		mcp.WithNumber("id"),
		mcp.WithString("title", mcp.Description("Title pattern lookup when id is omitted")),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := eng.Reopen(ctx, engine.ReopenOpts{
			ID:           req.GetInt("id", 0),
			TitlePattern: req.GetString("title", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

func registerCycles(s *server.MCPServer, eng *engine.Engine) {
	tool := mcp.NewTool("task_cycles",
		mcp.WithDescription("Report blocked-by cycles. Cycle members are mutually blocking "+
			"and need a human to break the loop."),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cycles, err := eng.Cycles(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{"cycles": cycles})
	})
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
