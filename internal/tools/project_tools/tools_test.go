package project_tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/ticktick-mcp/internal/config"
	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

func testContext(t *testing.T, handler http.Handler) *server.ServerContext {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sc, err := server.NewServerContext(context.Background(), &config.Config{
		AccessToken: "tok",
		BaseURL:     srv.URL,
		TokenURL:    ticktick.DefaultTokenURL,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	client, err := ticktick.NewClient(ticktick.Credentials{AccessToken: "tok"},
		ticktick.WithBaseURL(srv.URL),
		ticktick.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	sc.SetClient(client)
	return sc
}

func request(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleGetProjects(t *testing.T) {
	sc := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/project", r.URL.Path)
		w.Write([]byte(`[{"id":"p1","name":"Inbox"},{"id":"p2","name":"Work","closed":true}]`))
	}))

	result, err := handleGetProjects(sc)(context.Background(), request(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Inbox")
}

func TestHandleGetProjectRequiresID(t *testing.T) {
	sc := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	result, err := handleGetProject(sc)(context.Background(), request(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "projectId is required")
}

func TestHandleGetProjectTasks(t *testing.T) {
	sc := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/project/p1/data", r.URL.Path)
		w.Write([]byte(`{"project":{"id":"p1","name":"Inbox"},"tasks":[{"id":"t1","projectId":"p1","title":"alpha"}]}`))
	}))

	result, err := handleGetProjectTasks(sc)(context.Background(), request(map[string]interface{}{
		"projectId": "p1",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "alpha")
}

func TestHandleCreateProjectValidation(t *testing.T) {
	sc := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid input must not reach the API")
	}))

	result, err := handleCreateProject(sc)(context.Background(), request(map[string]interface{}{
		"name":     "Errands",
		"viewMode": "grid",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "view mode")
}

func TestHandleDeleteProject(t *testing.T) {
	sc := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/project/p1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	result, err := handleDeleteProject(sc)(context.Background(), request(map[string]interface{}{
		"projectId": "p1",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "deleted")
}

func TestRegisterProjectTools(t *testing.T) {
	sc := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterProjectTools(s, sc, false))
	require.NoError(t, RegisterProjectTools(s, sc, true))
}
