package health

import (
	"context"

	"github.com/autosdlc/autosdlc/internal/contract"
)

// Pinger is the part of the API client a BackendChecker needs.
type Pinger interface {
	Health(ctx context.Context) (string, error)
}

// BackendChecker calls GET /health on the AutoSDLC backend.
type BackendChecker struct {
	api    Pinger
	origin string
}

// NewBackendChecker creates a checker for api. origin is only reported.
func NewBackendChecker(api Pinger, origin string) *BackendChecker {
	return &BackendChecker{api: api, origin: origin}
}

// Name returns "backend".
func (c *BackendChecker) Name() string {
	return "backend"
}

// Check is healthy when the backend answers "ok", degraded on any other
// status string and unhealthy when the call fails.
func (c *BackendChecker) Check(ctx context.Context) *Result {
	status, err := c.api.Health(ctx)
	if err != nil {
		return Unhealthy("backend unreachable").
			WithDetail("origin", c.origin).
			WithDetail("error", err.Error()).
			WithDetail("suggestion", "Start the backend or set server.origin")
	}
	if status != "ok" {
		return Degraded("backend reports "+status).
			WithDetail("origin", c.origin)
	}
	return Healthy("backend reachable").WithDetail("origin", c.origin)
}

// ContractChecker loads the embedded API description.
type ContractChecker struct{}

// NewContractChecker creates a contract checker.
func NewContractChecker() *ContractChecker {
	return &ContractChecker{}
}

// Name returns "contract".
func (c *ContractChecker) Name() string {
	return "contract"
}

// Check is unhealthy when the embedded document does not load.
func (c *ContractChecker) Check(_ context.Context) *Result {
	v, err := contract.NewValidator()
	if err != nil {
		return Unhealthy("api description invalid").WithDetail("error", err.Error())
	}
	return Healthy("api description loaded").
		WithDetail("operations", len(v.Operations()))
}
