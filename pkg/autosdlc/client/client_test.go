package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autosdlc/autosdlc/internal/backendtest"
	"github.com/autosdlc/autosdlc/internal/errors"
	"github.com/autosdlc/autosdlc/internal/log"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

func newClient(t *testing.T, origin string, cfg *Config) *Client {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Logger = log.Discard()
	return NewWithConfig(origin, cfg)
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"empty", "", DevBackendOrigin},
		{"localhost dev server", "http://localhost:5173", DevBackendOrigin},
		{"localhost no port", "http://localhost", DevBackendOrigin},
		{"remote origin", "https://sdlc.example.com", "https://sdlc.example.com"},
		{"trailing slash", "https://sdlc.example.com/", "https://sdlc.example.com"},
		{"loopback ip is not localhost", "http://127.0.0.1:9000", "http://127.0.0.1:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBaseURL(tt.origin))
		})
	}
}

func TestCreateProject(t *testing.T) {
	backend := backendtest.New(t)
	c := newClient(t, backend.URL, nil)

	brief := types.ProjectBrief{Name: "Project", Description: "Auto", BriefContent: "Build a todo app"}
	state, err := c.CreateProject(context.Background(), brief)
	require.NoError(t, err)

	assert.Equal(t, "proj-1", state.ID)
	assert.Equal(t, brief, state.Brief)
	assert.Empty(t, state.Requirements())

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/projects", reqs[0].Path)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(reqs[0].Header.Get("User-Agent"), "autosdlc/"))
	_, err = uuid.Parse(reqs[0].Header.Get("X-Request-ID"))
	assert.NoError(t, err)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	assert.Equal(t, map[string]string{
		"name":          "Project",
		"description":   "Auto",
		"brief_content": "Build a todo app",
	}, sent)
}

func TestGetProject(t *testing.T) {
	backend := backendtest.New(t)
	c := newClient(t, backend.URL, nil)
	ctx := context.Background()

	created, err := c.CreateProject(ctx, types.ProjectBrief{BriefContent: "Build a todo app"})
	require.NoError(t, err)

	backend.Advance(created.ID, backendtest.StagePlan)

	state, err := c.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, state.Requirements(), 2)
	assert.Len(t, state.Tasks(), 2)
	assert.False(t, state.HasAssignedRoles())
	assert.Equal(t, 4000.0, state.EstimatedCost())
	assert.Equal(t, 1, backend.Count(http.MethodGet, "/projects/"+created.ID))
}

func TestGetProjectNotFound(t *testing.T) {
	backend := backendtest.New(t)
	c := newClient(t, backend.URL, nil)

	_, err := c.GetProject(context.Background(), "missing")
	require.Error(t, err)

	assert.Equal(t, errors.ErrCodeAPIStatus, errors.Code(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.False(t, IsTransport(err))
}

func TestListProjectsAndHealth(t *testing.T) {
	backend := backendtest.New(t)
	c := newClient(t, backend.URL, nil)
	ctx := context.Background()

	for _, brief := range []string{"one", "two"} {
		_, err := c.CreateProject(ctx, types.ProjectBrief{BriefContent: brief})
		require.NoError(t, err)
	}

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "one", projects[0].Brief.BriefContent)

	status, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", status)
}

func TestGeneratePrototype(t *testing.T) {
	backend := backendtest.New(t)
	c := newClient(t, backend.URL, nil)
	ctx := context.Background()

	created, err := c.CreateProject(ctx, types.ProjectBrief{BriefContent: "Build a todo app"})
	require.NoError(t, err)

	_, err = c.GeneratePrototype(ctx, created.ID)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))

	backend.Advance(created.ID, backendtest.StageArtifacts)
	backend.SetPrototypeHTML("<html>todo</html>")

	html, err := c.GeneratePrototype(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "<html>todo</html>", html)
}

func TestChat(t *testing.T) {
	backend := backendtest.New(t)
	c := newClient(t, backend.URL, nil)
	ctx := context.Background()

	t.Run("without project", func(t *testing.T) {
		reply, err := c.Chat(ctx, "hello", "")
		require.NoError(t, err)
		assert.Equal(t, "echo: hello", reply)

		reqs := backend.Requests()
		assert.JSONEq(t, `{"message":"hello"}`, string(reqs[len(reqs)-1].Body))
	})

	t.Run("with project", func(t *testing.T) {
		backend.SetChatReply(func(req types.ChatRequest) string {
			return "about " + req.ProjectID
		})
		reply, err := c.Chat(ctx, "status?", "proj-9")
		require.NoError(t, err)
		assert.Equal(t, "about proj-9", reply)

		reqs := backend.Requests()
		assert.JSONEq(t, `{"message":"status?","project_id":"proj-9"}`, string(reqs[len(reqs)-1].Body))
	})

	t.Run("server error", func(t *testing.T) {
		backend.Fail(backendtest.RouteChat, http.StatusInternalServerError)
		defer backend.Fail(backendtest.RouteChat, 0)

		_, err := c.Chat(ctx, "hello", "")
		assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	})
}

func TestTransportError(t *testing.T) {
	backend := backendtest.New(t)
	url := backend.URL
	backend.Close()

	c := newClient(t, url, nil)
	_, err := c.CreateProject(context.Background(), types.ProjectBrief{BriefContent: "x"})
	require.Error(t, err)

	assert.True(t, IsTransport(err))
	assert.Equal(t, errors.ErrCodeAPITransport, errors.Code(err))
	assert.Zero(t, StatusCode(err))
}

func TestTimeout(t *testing.T) {
	backend := backendtest.New(t)
	release := backend.Hold(backendtest.RouteHealth)
	t.Cleanup(release)

	c := newClient(t, backend.URL, &Config{Timeout: 50 * time.Millisecond})
	_, err := c.Health(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL, nil)
	_, err := c.GetProject(context.Background(), "p1")
	assert.Equal(t, errors.ErrCodeAPIDecode, errors.Code(err))
}

type validatorFunc func(method, route string, status int, body []byte) error

func (f validatorFunc) ValidateResponse(method, route string, status int, body []byte) error {
	return f(method, route, status, body)
}

func TestValidator(t *testing.T) {
	backend := backendtest.New(t)

	var seenRoute string
	c := newClient(t, backend.URL, &Config{
		Validator: validatorFunc(func(method, route string, status int, body []byte) error {
			seenRoute = method + " " + route
			return stderrors.New("missing field id")
		}),
	})

	_, err := c.GetProject(context.Background(), "p1")
	require.Error(t, err)
	// 404 is rejected before validation runs
	assert.Equal(t, errors.ErrCodeAPIStatus, errors.Code(err))
	assert.Empty(t, seenRoute)

	_, err = c.Health(context.Background())
	assert.Equal(t, errors.ErrCodeAPIContract, errors.Code(err))
	assert.Equal(t, "GET /health", seenRoute)
}
