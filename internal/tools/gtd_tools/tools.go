package gtd_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
	"github.com/teemow/ticktick-mcp/internal/tools/common"
)

// RegisterGTDTools registers the classification and query tools with
// the MCP server. All of them are read-only.
func RegisterGTDTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	allTasksTool := mcp.NewTool("ticktick_get_all_tasks",
		mcp.WithDescription("List every task across all open projects"),
	)
	s.AddTool(allTasksTool, handleScan(sc, "all tasks", func(_ time.Time, _ map[string]interface{}) ticktick.Predicate {
		return ticktick.All()
	}))

	byPriorityTool := mcp.NewTool("ticktick_get_tasks_by_priority",
		mcp.WithDescription("Find all tasks with a specific priority level across all open projects"),
		mcp.WithNumber("priority",
			mcp.Required(),
			mcp.Description("Priority level: 0 (None), 1 (Low), 3 (Medium) or 5 (High)"),
		),
	)
	s.AddTool(byPriorityTool, handleScanByPriority(sc))

	dueTodayTool := mcp.NewTool("ticktick_get_due_today",
		mcp.WithDescription("Find all tasks due today across all open projects"),
	)
	s.AddTool(dueTodayTool, handleScan(sc, "due today", func(now time.Time, _ map[string]interface{}) ticktick.Predicate {
		return ticktick.DueTodayAt(now)
	}))

	overdueTool := mcp.NewTool("ticktick_get_overdue",
		mcp.WithDescription("Find all overdue tasks across all open projects"),
	)
	s.AddTool(overdueTool, handleScan(sc, "overdue", func(now time.Time, _ map[string]interface{}) ticktick.Predicate {
		return ticktick.OverdueAt(now)
	}))

	dueTomorrowTool := mcp.NewTool("ticktick_get_tasks_due_tomorrow",
		mcp.WithDescription("Find all tasks due tomorrow across all open projects"),
	)
	s.AddTool(dueTomorrowTool, handleScan(sc, "due tomorrow", func(now time.Time, _ map[string]interface{}) ticktick.Predicate {
		return ticktick.DueInDaysAt(now, 1)
	}))

	dueInDaysTool := mcp.NewTool("ticktick_get_due_in_days",
		mcp.WithDescription("Find all tasks due on the day exactly N days from today"),
		mcp.WithNumber("days",
			mcp.Required(),
			mcp.Description("Number of days from today (0 = today, 1 = tomorrow)"),
		),
	)
	s.AddTool(dueInDaysTool, handleScanWithDays(sc))

	dueThisWeekTool := mcp.NewTool("ticktick_get_due_this_week",
		mcp.WithDescription("Find all tasks due within the next seven days, today included"),
	)
	s.AddTool(dueThisWeekTool, handleScan(sc, "due this week", func(now time.Time, _ map[string]interface{}) ticktick.Predicate {
		return ticktick.DueWithinWeekAt(now)
	}))

	searchTool := mcp.NewTool("ticktick_search_tasks",
		mcp.WithDescription("Search tasks by text across titles, descriptions and checklist items in all open projects"),
		mcp.WithString("term",
			mcp.Required(),
			mcp.Description("Case-insensitive search term"),
		),
	)
	s.AddTool(searchTool, handleSearch(sc))

	engagedTool := mcp.NewTool("ticktick_get_engaged_tasks",
		mcp.WithDescription("Find tasks needing immediate attention: high priority, overdue, or due today"),
	)
	s.AddTool(engagedTool, handleScan(sc, "engaged", func(now time.Time, _ map[string]interface{}) ticktick.Predicate {
		return ticktick.EngagedAt(now)
	}))

	nextTool := mcp.NewTool("ticktick_get_next_tasks",
		mcp.WithDescription("Find tasks to act on next: medium priority or due tomorrow"),
	)
	s.AddTool(nextTool, handleScan(sc, "next", func(now time.Time, _ map[string]interface{}) ticktick.Predicate {
		return ticktick.NextAt(now)
	}))

	return nil
}

// scanResult is the JSON shape returned by the scan-based tools.
type scanResult struct {
	Label          string        `json:"label"`
	TotalMatches   int           `json:"totalMatches"`
	FailedProjects int           `json:"failedProjects,omitempty"`
	Projects       []projectView `json:"projects"`
}

type projectView struct {
	ProjectID   string     `json:"projectId"`
	ProjectName string     `json:"projectName"`
	Skipped     bool       `json:"skipped,omitempty"`
	Error       string     `json:"error,omitempty"`
	Tasks       []taskView `json:"tasks,omitempty"`
}

type taskView struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Priority string `json:"priority"`
	DueDate  string `json:"dueDate,omitempty"`
}

func renderReport(report *ticktick.ScanReport) scanResult {
	out := scanResult{
		Label:          report.Label,
		TotalMatches:   report.Total,
		FailedProjects: report.Failed,
		Projects:       make([]projectView, 0, len(report.Projects)),
	}
	for _, pr := range report.Projects {
		pv := projectView{
			ProjectID:   pr.Project.ID,
			ProjectName: pr.Project.Name,
			Skipped:     pr.Skipped,
		}
		if pr.Err != nil {
			pv.Error = pr.Err.Error()
		}
		for _, m := range pr.Matches {
			pv.Tasks = append(pv.Tasks, taskView{
				Position: m.Position,
				ID:       m.Task.ID,
				Title:    m.Task.Title,
				Priority: ticktick.PriorityName(m.Task.Priority),
				DueDate:  m.Task.DueDate,
			})
		}
		out.Projects = append(out.Projects, pv)
	}
	return out
}

func runScan(ctx context.Context, sc *server.ServerContext, pred ticktick.Predicate, label string) (*mcp.CallToolResult, error) {
	client, err := sc.Client()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	projects, err := client.GetProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list projects: %v", err)), nil
	}

	report := ticktick.Scan(ctx, client, sc.Logger(), projects, pred, label)
	return common.JSONResult(renderReport(report))
}

func handleScan(sc *server.ServerContext, label string, makePred func(time.Time, map[string]interface{}) ticktick.Predicate) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		return runScan(ctx, sc, makePred(time.Now(), args), label)
	}
}

func handleScanWithDays(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		days := common.OptionalInt(args, "days", -1)
		if days < 0 {
			return mcp.NewToolResultError("days is required and must be non-negative"), nil
		}
		label := fmt.Sprintf("due in %d days", days)
		return runScan(ctx, sc, ticktick.DueInDaysAt(time.Now(), days), label)
	}
}

func handleScanByPriority(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		priority := common.OptionalInt(args, "priority", -1)
		if err := ticktick.ValidatePriority(priority); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		label := fmt.Sprintf("priority %s", ticktick.PriorityName(priority))
		return runScan(ctx, sc, ticktick.ByPriority(priority), label)
	}
}

func handleSearch(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		term, err := common.RequiredString(args, "term")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return runScan(ctx, sc, ticktick.Search(term), fmt.Sprintf("search %q", term))
	}
}
