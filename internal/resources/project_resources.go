package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/server"
)

// RegisterProjectResources registers read-only MCP resources describing
// the configured TickTick account's projects.
func RegisterProjectResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	projectsResource := mcp.NewResource(
		"ticktick://projects",
		"TickTick Projects",
		mcp.WithResourceDescription("All projects for the configured TickTick account"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(projectsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProjectsList(ctx, request, sc)
	})

	return nil
}

// handleProjectsList returns the project list as a JSON resource.
func handleProjectsList(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := sc.Client()
	if err != nil {
		return nil, err
	}

	projects, err := client.GetProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	jsonData, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project list: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
