package project_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
	"github.com/teemow/ticktick-mcp/internal/tools/common"
)

// RegisterProjectTools registers all project management tools with the
// MCP server. Mutating tools are only registered when readOnly is
// false.
func RegisterProjectTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getProjectsTool := mcp.NewTool("ticktick_get_projects",
		mcp.WithDescription("List all TickTick projects for the authenticated user"),
	)
	s.AddTool(getProjectsTool, handleGetProjects(sc))

	getProjectTool := mcp.NewTool("ticktick_get_project",
		mcp.WithDescription("Get details of a specific TickTick project"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project to retrieve"),
		),
	)
	s.AddTool(getProjectTool, handleGetProject(sc))

	getProjectTasksTool := mcp.NewTool("ticktick_get_project_tasks",
		mcp.WithDescription("Get a project together with all its tasks and columns"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project"),
		),
	)
	s.AddTool(getProjectTasksTool, handleGetProjectTasks(sc))

	if !readOnly {
		createProjectTool := mcp.NewTool("ticktick_create_project",
			mcp.WithDescription("Create a new TickTick project"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("The name of the new project (max 200 characters)"),
			),
			mcp.WithString("color",
				mcp.Description("Project color as a hex code (default: '#F18181')"),
			),
			mcp.WithString("viewMode",
				mcp.Description("View mode: 'list', 'kanban' or 'timeline' (default: 'list')"),
			),
		)
		s.AddTool(createProjectTool, handleCreateProject(sc))

		updateProjectTool := mcp.NewTool("ticktick_update_project",
			mcp.WithDescription("Update an existing TickTick project"),
			mcp.WithString("projectId",
				mcp.Required(),
				mcp.Description("The ID of the project to update"),
			),
			mcp.WithString("name",
				mcp.Description("New name for the project"),
			),
			mcp.WithString("color",
				mcp.Description("New project color as a hex code"),
			),
			mcp.WithString("viewMode",
				mcp.Description("New view mode: 'list', 'kanban' or 'timeline'"),
			),
		)
		s.AddTool(updateProjectTool, handleUpdateProject(sc))

		deleteProjectTool := mcp.NewTool("ticktick_delete_project",
			mcp.WithDescription("Delete a TickTick project"),
			mcp.WithString("projectId",
				mcp.Required(),
				mcp.Description("The ID of the project to delete"),
			),
		)
		s.AddTool(deleteProjectTool, handleDeleteProject(sc))
	}

	return nil
}

func handleGetProjects(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		projects, err := client.GetProjects(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list projects: %v", err)), nil
		}
		return common.JSONResult(projects)
	}
}

func handleGetProject(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		projectID, err := common.RequiredString(args, "projectId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		project, err := client.GetProject(ctx, projectID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get project: %v", err)), nil
		}
		return common.JSONResult(project)
	}
}

func handleGetProjectTasks(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		projectID, err := common.RequiredString(args, "projectId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := client.GetProjectData(ctx, projectID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get project data: %v", err)), nil
		}
		return common.JSONResult(data)
	}
}

func handleCreateProject(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		name, err := common.RequiredString(args, "name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		project, err := client.CreateProject(ctx, ticktick.ProjectInput{
			Name:     name,
			Color:    common.OptionalString(args, "color", ""),
			ViewMode: common.OptionalString(args, "viewMode", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create project: %v", err)), nil
		}
		return common.JSONResult(project)
	}
}

func handleUpdateProject(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		projectID, err := common.RequiredString(args, "projectId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		project, err := client.UpdateProject(ctx, projectID, ticktick.ProjectInput{
			Name:     common.OptionalString(args, "name", ""),
			Color:    common.OptionalString(args, "color", ""),
			ViewMode: common.OptionalString(args, "viewMode", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update project: %v", err)), nil
		}
		return common.JSONResult(project)
	}
}

func handleDeleteProject(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := common.Args(request)
		projectID, err := common.RequiredString(args, "projectId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := sc.Client()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := client.DeleteProject(ctx, projectID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete project: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Project %s deleted successfully", projectID)), nil
	}
}
