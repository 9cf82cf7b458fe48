package contract

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /health",
		"GET /projects",
		"GET /projects/{project_id}",
		"POST /chat",
		"POST /projects",
		"POST /prototype/{project_id}",
	}, v.Operations())
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load([]byte("openapi: [not a document"))
	assert.Error(t, err)
}

func TestValidateResponse(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		method  string
		route   string
		status  int
		body    string
		wantErr bool
	}{
		{
			name:   "fresh project",
			method: http.MethodPost, route: "/projects", status: 200,
			body: `{"id":"p1","brief":{"name":"Project","description":"Auto","brief_content":"Build a todo app"},
				"srs":null,"plan":null,"artifacts":null,"status":"created","agent_statuses":{}}`,
		},
		{
			name:   "project with pipeline output",
			method: http.MethodGet, route: "/projects/{project_id}", status: 200,
			body: `{"id":"p1","brief":{"brief_content":"x"},"status":"completed",
				"srs":{"project_id":"p1","requirements":[{"id":"R1","description":"d","priority":"High","acceptance_criteria":[]}]},
				"plan":{"project_id":"p1","tasks":[{"id":"T1","name":"n","estimated_days":1.5,"dependencies":[],"assigned_role":null}],
					"total_estimated_days":1.5,"estimated_cost":1200},
				"artifacts":{"file_structure":["a.py"],"code_snippets":{"a.py":"print()"}},
				"agent_statuses":{"coder":{"agent_name":"coder","status":"completed","current_task":null}}}`,
		},
		{
			name:   "project missing id",
			method: http.MethodGet, route: "/projects/{project_id}", status: 200,
			body:    `{"brief":{"brief_content":"x"},"status":"created"}`,
			wantErr: true,
		},
		{
			name:   "unknown priority",
			method: http.MethodGet, route: "/projects/{project_id}", status: 200,
			body: `{"id":"p1","brief":{"brief_content":"x"},"status":"s",
				"srs":{"requirements":[{"id":"R1","description":"d","priority":"Urgent"}]}}`,
			wantErr: true,
		},
		{
			name:   "project list",
			method: http.MethodGet, route: "/projects", status: 200,
			body: `[{"id":"p1","brief":{"brief_content":"x"},"status":"created"}]`,
		},
		{
			name:   "prototype",
			method: http.MethodPost, route: "/prototype/{project_id}", status: 200,
			body: `{"html":"<html></html>"}`,
		},
		{
			name:   "chat reply wrong type",
			method: http.MethodPost, route: "/chat", status: 200,
			body:    `{"reply":42}`,
			wantErr: true,
		},
		{
			name:   "not json",
			method: http.MethodGet, route: "/health", status: 200,
			body:    `ok`,
			wantErr: true,
		},
		{
			name:   "undescribed route is accepted",
			method: http.MethodGet, route: "/metrics", status: 200,
			body: `anything`,
		},
		{
			name:   "undescribed status is accepted",
			method: http.MethodGet, route: "/health", status: 204,
			body: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateResponse(tt.method, tt.route, tt.status, []byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
