// Package client talks to the AutoSDLC backend over its JSON/HTTP API.
//
// Every call is a single request/response: there is no retry, no backoff and,
// unless Config.Timeout is set, no timeout. Non-2xx responses are failures
// regardless of their body.
//
// Usage:
//
//	c := client.New("http://localhost:8000")
//	state, err := c.CreateProject(ctx, types.ProjectBrief{BriefContent: "Build a todo app"})
package client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/autosdlc/autosdlc/internal/errors"
	"github.com/autosdlc/autosdlc/internal/log"
	"github.com/autosdlc/autosdlc/internal/metrics"
	"github.com/autosdlc/autosdlc/internal/telemetry"
	"github.com/autosdlc/autosdlc/internal/version"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// DevBackendOrigin is the backend used when the configured origin is a
// local development host.
const DevBackendOrigin = "http://localhost:8000"

// Operation names, used for logs, metrics and spans.
const (
	OpCreateProject     = "create_project"
	OpGetProject        = "get_project"
	OpListProjects      = "list_projects"
	OpGeneratePrototype = "generate_prototype"
	OpChat              = "chat"
	OpHealth            = "health"
)

// ResponseValidator checks a successful response body against a description
// of the API. route is the path template, e.g. "/projects/{project_id}".
type ResponseValidator interface {
	ValidateResponse(method, route string, status int, body []byte) error
}

// Client is a client for the AutoSDLC backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *log.Logger
	metrics    *metrics.Metrics
	validator  ResponseValidator
}

// Config holds optional client settings.
type Config struct {
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// HTTPClient overrides the transport entirely. Timeout is ignored when set.
	HTTPClient *http.Client

	// Logger receives one debug record per request. Defaults to the
	// process-wide logger.
	Logger *log.Logger

	// Metrics records call counts and latency. Nil disables recording.
	Metrics *metrics.Metrics

	// Validator, when set, rejects responses that do not match the contract.
	Validator ResponseValidator
}

// DefaultConfig returns the default client configuration
func DefaultConfig() *Config {
	return &Config{}
}

// New creates a client for origin using the default configuration.
func New(origin string) *Client {
	return NewWithConfig(origin, nil)
}

// NewWithConfig creates a client for origin with cfg; a nil cfg uses defaults.
func NewWithConfig(origin string, cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &Client{
		baseURL:    ResolveBaseURL(origin),
		httpClient: httpClient,
		userAgent:  version.GetInfo().UserAgent(),
		logger:     logger.Component("client"),
		metrics:    cfg.Metrics,
		validator:  cfg.Validator,
	}
}

// BaseURL returns the resolved backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveBaseURL maps the configured origin to the backend base URL.
// A localhost origin (any port) targets DevBackendOrigin; any other origin is
// used as is. An empty origin also resolves to DevBackendOrigin.
func ResolveBaseURL(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return DevBackendOrigin
	}
	u, err := url.Parse(origin)
	if err == nil && u.Hostname() == "localhost" {
		return DevBackendOrigin
	}
	return strings.TrimRight(origin, "/")
}

// CreateProject submits a brief and returns the freshly created project.
func (c *Client) CreateProject(ctx context.Context, brief types.ProjectBrief) (*types.ProjectState, error) {
	var state types.ProjectState
	if err := c.do(ctx, OpCreateProject, http.MethodPost, "/projects", "/projects", brief, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// GetProject fetches the current state of a project.
func (c *Client) GetProject(ctx context.Context, id string) (*types.ProjectState, error) {
	var state types.ProjectState
	path := "/projects/" + url.PathEscape(id)
	if err := c.do(ctx, OpGetProject, http.MethodGet, "/projects/{project_id}", path, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// ListProjects returns every project the backend knows about.
func (c *Client) ListProjects(ctx context.Context) ([]types.ProjectState, error) {
	var states []types.ProjectState
	if err := c.do(ctx, OpListProjects, http.MethodGet, "/projects", "/projects", nil, &states); err != nil {
		return nil, err
	}
	return states, nil
}

// GeneratePrototype asks the backend for a prototype page and returns its HTML.
func (c *Client) GeneratePrototype(ctx context.Context, id string) (string, error) {
	var resp types.PrototypeResponse
	path := "/prototype/" + url.PathEscape(id)
	if err := c.do(ctx, OpGeneratePrototype, http.MethodPost, "/prototype/{project_id}", path, nil, &resp); err != nil {
		return "", err
	}
	return resp.HTML, nil
}

// Chat sends a message, optionally scoped to a project, and returns the reply.
func (c *Client) Chat(ctx context.Context, message, projectID string) (string, error) {
	var resp types.ChatResponse
	req := types.ChatRequest{Message: message, ProjectID: projectID}
	if err := c.do(ctx, OpChat, http.MethodPost, "/chat", "/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// Health checks if the backend is reachable and reports ok.
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp types.HealthResponse
	if err := c.do(ctx, OpHealth, http.MethodGet, "/health", "/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *Client) do(ctx context.Context, op, method, route, path string, body, out any) (err error) {
	start := time.Now()
	requestID := uuid.NewString()
	status := 0

	ctx, span := telemetry.APICall(ctx, op, method, route)
	defer func() {
		kind := errorKind(err)
		c.metrics.RecordAPICall(op, time.Since(start), kind)

		logger := c.logger.With(
			"op", op,
			"method", method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
		)
		telemetry.End(span, err, attribute.Int("http.response.status_code", status))
		if err != nil {
			c.metrics.RecordError(string(errors.Code(err)), "client")
			logger.WithError(err).DebugContext(ctx, "api request failed")
		} else {
			logger.DebugContext(ctx, "api request")
		}
	}()

	var reader io.Reader
	if body != nil {
		data, merr := json.Marshal(body)
		if merr != nil {
			return fmt.Errorf("encode %s request: %w", op, merr)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewTransportError(op, &TransportError{Op: op, Err: err})
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewTransportError(op, &TransportError{Op: op, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := errors.NewStatusError(op, resp.StatusCode)
		serr.Cause = &StatusError{Op: op, StatusCode: resp.StatusCode}
		return serr
	}

	if c.validator != nil {
		if verr := c.validator.ValidateResponse(method, route, resp.StatusCode, data); verr != nil {
			return errors.NewContractError(op, verr)
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewDecodeError(op, err)
	}
	return nil
}

// TransportError reports a request that never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsTransport reports whether err is a transport (network) failure.
func IsTransport(err error) bool {
	var te *TransportError
	return stderrors.As(err, &te)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if stderrors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func errorKind(err error) string {
	switch errors.Code(err) {
	case "":
		if err != nil {
			return "request"
		}
		return ""
	case errors.ErrCodeAPITransport:
		return "transport"
	case errors.ErrCodeAPIStatus:
		return "status"
	case errors.ErrCodeAPIDecode:
		return "decode"
	case errors.ErrCodeAPIContract:
		return "contract"
	default:
		return "other"
	}
}
