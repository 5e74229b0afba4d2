package resources

import (
	"context"
	"encoding/json"
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

func TestHandleProjectsList(t *testing.T) {
	sc := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/project", r.URL.Path)
		json.NewEncoder(w).Encode([]ticktick.Project{
			{ID: "p1", Name: "Work"},
			{ID: "p2", Name: "Archive", Closed: true},
		})
	}))

	request := mcp.ReadResourceRequest{}
	request.Params.URI = "ticktick://projects"

	contents, err := handleProjectsList(context.Background(), request, sc)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "ticktick://projects", text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var projects []ticktick.Project
	require.NoError(t, json.Unmarshal([]byte(text.Text), &projects))
	require.Len(t, projects, 2)
	assert.Equal(t, "Work", projects[0].Name)
	assert.True(t, projects[1].Closed)
}

func TestHandleProjectsListSurfacesAPIErrors(t *testing.T) {
	sc := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	request := mcp.ReadResourceRequest{}
	request.Params.URI = "ticktick://projects"

	_, err := handleProjectsList(context.Background(), request, sc)
	require.Error(t, err)
	assert.Equal(t, ticktick.KindPermission, ticktick.KindOf(err))
}

func TestRegisterProjectResources(t *testing.T) {
	sc := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	s := mcpserver.NewMCPServer("test", "0.0.0",
		mcpserver.WithResourceCapabilities(false, false),
	)
	require.NoError(t, RegisterProjectResources(s, sc))
}
