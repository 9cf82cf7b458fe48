// Package backendtest provides an in-memory AutoSDLC backend for tests.
//
// The fake serves the same JSON surface as the real backend and lets tests
// script the pipeline (Advance), inject failures (Fail) and inspect what the
// client sent (Requests).
package backendtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// Route names accepted by Fail.
const (
	RouteCreate    = "POST /projects"
	RouteGet       = "GET /projects/{project_id}"
	RouteList      = "GET /projects"
	RoutePrototype = "POST /prototype/{project_id}"
	RouteChat      = "POST /chat"
	RouteHealth    = "GET /health"
)

// Stage is a point in the scripted pipeline.
type Stage int

// Pipeline stages, in the order the real backend fills them.
const (
	StageCreated Stage = iota
	StageSRS
	StagePlan
	StageRoles
	StageArtifacts
)

// Request is one request the fake received.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Backend is the fake server.
type Backend struct {
	*httptest.Server

	mu        sync.Mutex
	nextID    int
	projects  map[string]*types.ProjectState
	failures  map[string]int
	requests  []Request
	chatReply func(types.ChatRequest) string
	html      string
	hold      map[string]chan struct{}
}

// New starts a fake backend on an IPv4 loopback listener and closes it when
// the test ends.
func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		projects: make(map[string]*types.ProjectState),
		failures: make(map[string]int),
		hold:     make(map[string]chan struct{}),
		html:     "<html><body><h1>Prototype</h1></body></html>",
		chatReply: func(req types.ChatRequest) string {
			return "echo: " + req.Message
		},
	}

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("unable to start test server: %v", err)
	}
	b.Server = &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: b.Router()},
	}
	b.Start()
	t.Cleanup(b.Close)
	return b
}

// Router returns the chi router serving the fake API.
func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.record)

	r.Post("/projects", b.guard(RouteCreate, b.createProject))
	r.Get("/projects", b.guard(RouteList, b.listProjects))
	r.Get("/projects/{project_id}", b.guard(RouteGet, b.getProject))
	r.Post("/prototype/{project_id}", b.guard(RoutePrototype, b.prototype))
	r.Post("/chat", b.guard(RouteChat, b.chat))
	r.Get("/health", b.guard(RouteHealth, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok"})
	}))
	return r
}

// Fail makes every following request to route answer with status.
// A zero status clears the failure.
func (b *Backend) Fail(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, route)
		return
	}
	b.failures[route] = status
}

// Hold blocks requests to route until the returned function is called.
func (b *Backend) Hold(route string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.hold[route] = ch
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.hold, route)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// SetChatReply replaces the chat responder.
func (b *Backend) SetChatReply(fn func(types.ChatRequest) string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chatReply = fn
}

// SetPrototypeHTML sets the page returned by the prototype endpoint.
func (b *Backend) SetPrototypeHTML(html string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.html = html
}

// Put stores a project as is, replacing any previous one with the same id.
func (b *Backend) Put(state types.ProjectState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projects[state.ID] = &state
}

// Project returns a copy of the stored project.
func (b *Backend) Project(id string) (types.ProjectState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[id]
	if !ok {
		return types.ProjectState{}, false
	}
	return clone(p), true
}

// Advance fills the stored project up to stage.
func (b *Backend) Advance(id string, stage Stage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[id]
	if !ok {
		return
	}
	advance(p, stage)
}

// Requests returns every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// Count returns how many requests matched method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (b *Backend) guard(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		status := b.failures[route]
		hold := b.hold[route]
		b.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		h(w, r)
	}
}

func (b *Backend) createProject(w http.ResponseWriter, r *http.Request) {
	var brief types.ProjectBrief
	if err := json.NewDecoder(r.Body).Decode(&brief); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	b.mu.Lock()
	b.nextID++
	id := fmt.Sprintf("proj-%d", b.nextID)
	state := &types.ProjectState{
		ID:     id,
		Brief:  brief,
		Status: "created",
		AgentStatuses: map[string]types.AgentStatus{
			"requirements": {AgentName: "requirements", Status: types.AgentWorking},
		},
	}
	b.projects[id] = state
	out := clone(state)
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "project_id")
	b.mu.Lock()
	p, ok := b.projects[id]
	var out types.ProjectState
	if ok {
		out = clone(p)
	}
	b.mu.Unlock()

	if !ok {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) listProjects(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	ids := make([]string, 0, len(b.projects))
	for id := range b.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]types.ProjectState, 0, len(ids))
	for _, id := range ids {
		out = append(out, clone(b.projects[id]))
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) prototype(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "project_id")
	b.mu.Lock()
	p, ok := b.projects[id]
	ready := ok && p.Artifacts != nil && len(p.Artifacts.CodeSnippets) > 0
	html := b.html
	b.mu.Unlock()

	if !ok {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	if !ready {
		http.Error(w, "no artifacts yet", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, types.PrototypeResponse{HTML: html})
}

func (b *Backend) chat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	b.mu.Lock()
	reply := b.chatReply
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, types.ChatResponse{Reply: reply(req)})
}

// clone deep-copies p so it can be encoded after the lock is released.
func clone(p *types.ProjectState) types.ProjectState {
	data, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	var out types.ProjectState
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
