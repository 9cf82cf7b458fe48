package health

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds each check run by a Manager.
const DefaultTimeout = 5 * time.Second

// Manager runs a fixed set of checkers concurrently.
type Manager struct {
	checkers []Checker
	timeout  time.Duration
}

// NewManager creates a manager for checkers using DefaultTimeout.
func NewManager(checkers ...Checker) *Manager {
	return &Manager{checkers: checkers, timeout: DefaultTimeout}
}

// WithTimeout sets the per-check timeout. Non-positive values are ignored.
func (m *Manager) WithTimeout(d time.Duration) *Manager {
	if d > 0 {
		m.timeout = d
	}
	return m
}

// Names returns the checker names in registration order.
func (m *Manager) Names() []string {
	names := make([]string, len(m.checkers))
	for i, c := range m.checkers {
		names[i] = c.Name()
	}
	return names
}

// NamedResult pairs a result with its checker name.
type NamedResult struct {
	Name    string `json:"name" yaml:"name"`
	*Result `yaml:",inline"`
}

// Report is the outcome of one Manager run, checks sorted by name.
type Report struct {
	Status Status        `json:"status" yaml:"status"`
	Checks []NamedResult `json:"checks" yaml:"checks"`
}

// Find returns the result of the named check, or nil.
func (r Report) Find(name string) *Result {
	for _, c := range r.Checks {
		if c.Name == name {
			return c.Result
		}
	}
	return nil
}

// Report runs every checker, each under the manager timeout.
func (m *Manager) Report(ctx context.Context) Report {
	checks := make([]NamedResult, len(m.checkers))

	var g errgroup.Group
	for i, c := range m.checkers {
		g.Go(func() error {
			checks[i] = NamedResult{Name: c.Name(), Result: m.run(ctx, c)}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })

	statuses := make([]Status, len(checks))
	for i, c := range checks {
		statuses[i] = c.Status
	}
	return Report{Status: Worst(statuses...), Checks: checks}
}

func (m *Manager) run(ctx context.Context, c Checker) *Result {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	r := c.Check(ctx)
	if r == nil {
		r = Unhealthy("check returned no result")
	}
	if ctx.Err() != nil && r.Status == StatusHealthy {
		r = Unhealthy("check timed out").WithDetail("timeout", m.timeout.String())
	}
	if r.Latency == 0 {
		r.Latency = time.Since(start)
	}
	return r
}
