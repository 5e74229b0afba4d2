package task_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
	"github.com/teemow/ticktick-mcp/internal/tools/common"
)

// RegisterTaskTools registers all task management tools with the MCP
// server. Mutating tools are only registered when readOnly is false.
func RegisterTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getTaskTool := mcp.NewTool("ticktick_get_task",
		mcp.WithDescription("Get details of a specific TickTick task"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project containing the task"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to retrieve"),
		),
	)
	s.AddTool(getTaskTool, handleGetTask(sc))

	if readOnly {
		return nil
	}

	createTaskTool := mcp.NewTool("ticktick_create_task",
		mcp.WithDescription("Create a new task in a TickTick project"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project to create the task in"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title (max 500 characters)"),
		),
		mcp.WithString("content",
			mcp.Description("Task description or notes (max 10000 characters)"),
		),
		mcp.WithString("startDate",
			mcp.Description("Start date in ISO format (e.g. '2025-01-15' or '2025-01-15T08:00:00Z')"),
		),
		mcp.WithString("dueDate",
			mcp.Description("Due date in ISO format (e.g. '2025-01-15' or '2025-01-15T08:00:00Z')"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority: 0 (None), 1 (Low), 3 (Medium) or 5 (High). Default: 0"),
		),
		mcp.WithBoolean("isAllDay",
			mcp.Description("Whether the task spans the whole day"),
		),
	)
	s.AddTool(createTaskTool, handleCreateTask(sc))

	createTasksTool := mcp.NewTool("ticktick_create_tasks",
		mcp.WithDescription("Create multiple tasks at once. All tasks are validated before any is created; if any task is invalid the whole batch is rejected. After validation, each task is created independently and individual API failures do not stop the rest."),
		mcp.WithString("tasks",
			mcp.Required(),
			mcp.Description(`JSON array of task objects, each with "title" and "projectId" plus optional "content", "startDate", "dueDate", "priority" and "isAllDay"`),
		),
	)
	s.AddTool(createTasksTool, handleCreateTasks(sc))

	createSubtaskTool := mcp.NewTool("ticktick_create_subtask",
		mcp.WithDescription("Create a subtask under an existing task"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project containing the parent task"),
		),
		mcp.WithString("parentTaskId",
			mcp.Required(),
			mcp.Description("The ID of the parent task"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Subtask title (max 500 characters)"),
		),
		mcp.WithString("content",
			mcp.Description("Subtask description or notes"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority: 0 (None), 1 (Low), 3 (Medium) or 5 (High). Default: 0"),
		),
	)
	s.AddTool(createSubtaskTool, handleCreateSubtask(sc))

	updateTaskTool := mcp.NewTool("ticktick_update_task",
		mcp.WithDescription("Update an existing task. Only the provided fields are changed."),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project containing the task"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithString("title",
			mcp.Description("New title for the task"),
		),
		mcp.WithString("content",
			mcp.Description("New description or notes for the task"),
		),
		mcp.WithString("startDate",
			mcp.Description("New start date in ISO format"),
		),
		mcp.WithString("dueDate",
			mcp.Description("New due date in ISO format"),
		),
		mcp.WithNumber("priority",
			mcp.Description("New priority: 0 (None), 1 (Low), 3 (Medium) or 5 (High)"),
		),
	)
	s.AddTool(updateTaskTool, handleUpdateTask(sc))

	completeTaskTool := mcp.NewTool("ticktick_complete_task",
		mcp.WithDescription("Mark a task as completed"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project containing the task"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to complete"),
		),
	)
	s.AddTool(completeTaskTool, handleCompleteTask(sc))

	deleteTaskTool := mcp.NewTool("ticktick_delete_task",
		mcp.WithDescription("Delete a task"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project containing the task"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to delete"),
		),
	)
	s.AddTool(deleteTaskTool, handleDeleteTask(sc))

	return nil
}

func handleGetTask(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		projectID, err := common.RequiredString(args, "projectId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		taskID, err := common.RequiredString(args, "taskId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		task, err := client.GetTask(ctx, projectID, taskID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get task: %v", err)), nil
		}
		return common.JSONResult(task)
	}
}

func taskInputFromArgs(args map[string]interface{}) (ticktick.TaskInput, error) {
	projectID, err := common.RequiredString(args, "projectId")
	if err != nil {
		return ticktick.TaskInput{}, err
	}
	title, err := common.RequiredString(args, "title")
	if err != nil {
		return ticktick.TaskInput{}, err
	}
	return ticktick.TaskInput{
		Title:     title,
		ProjectID: projectID,
		Content:   common.OptionalString(args, "content", ""),
		StartDate: common.OptionalString(args, "startDate", ""),
		DueDate:   common.OptionalString(args, "dueDate", ""),
		Priority:  common.OptionalInt(args, "priority", ticktick.PriorityNone),
		IsAllDay:  common.OptionalBool(args, "isAllDay", false),
	}, nil
}

func handleCreateTask(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := taskInputFromArgs(common.Args(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		task, err := client.CreateTask(ctx, input)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create task: %v", err)), nil
		}
		return common.JSONResult(task)
	}
}

func handleCreateTasks(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		raw, err := common.RequiredString(args, "tasks")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var inputs []ticktick.TaskInput
		if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("tasks must be a JSON array of task objects: %v", err)), nil
		}
		if len(inputs) == 0 {
			return mcp.NewToolResultError("tasks must contain at least one task"), nil
		}

		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := ticktick.CreateBatch(ctx, client, inputs)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return common.JSONResult(result)
	}
}

func handleCreateSubtask(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		projectID, err := common.RequiredString(args, "projectId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		parentTaskID, err := common.RequiredString(args, "parentTaskId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		title, err := common.RequiredString(args, "title")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		task, err := client.CreateSubtask(ctx, title, parentTaskID, projectID,
			common.OptionalString(args, "content", ""),
			common.OptionalInt(args, "priority", ticktick.PriorityNone))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create subtask: %v", err)), nil
		}
		return common.JSONResult(task)
	}
}

func handleUpdateTask(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		projectID, err := common.RequiredString(args, "projectId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		taskID, err := common.RequiredString(args, "taskId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var update ticktick.TaskUpdate
		if title, ok := args["title"].(string); ok {
			update.Title = &title
		}
		if content, ok := args["content"].(string); ok {
			update.Content = &content
		}
		if startDate, ok := args["startDate"].(string); ok {
			update.StartDate = &startDate
		}
		if dueDate, ok := args["dueDate"].(string); ok {
			update.DueDate = &dueDate
		}
		if priority, ok := args["priority"].(float64); ok {
			p := int(priority)
			update.Priority = &p
		}

		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		task, err := client.UpdateTask(ctx, taskID, projectID, update)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update task: %v", err)), nil
		}
		return common.JSONResult(task)
	}
}

func handleCompleteTask(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		projectID, err := common.RequiredString(args, "projectId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		taskID, err := common.RequiredString(args, "taskId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := client.CompleteTask(ctx, projectID, taskID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to complete task: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task %s completed successfully", taskID)), nil
	}
}

func handleDeleteTask(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		projectID, err := common.RequiredString(args, "projectId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		taskID, err := common.RequiredString(args, "taskId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := client.DeleteTask(ctx, projectID, taskID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete task: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted successfully", taskID)), nil
	}
}
