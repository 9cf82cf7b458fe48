// Package poll refreshes the tracked project on a fixed interval.
//
// Refreshes are best effort: a failed fetch is logged at debug level and the
// state simply stays stale until the next tick. Fetches are never aborted;
// a response that arrives after the tracked id changed is dropped.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/autosdlc/autosdlc/internal/log"
	"github.com/autosdlc/autosdlc/internal/metrics"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// DefaultInterval is the time between two refreshes.
const DefaultInterval = 2 * time.Second

// FetchFunc loads the current state of a project.
type FetchFunc func(ctx context.Context, id string) (*types.ProjectState, error)

// UpdateFunc receives a refreshed state for the tracked id.
type UpdateFunc func(id string, state *types.ProjectState)

// Config configures a Poller.
type Config struct {
	Interval time.Duration
	Logger   *log.Logger
	Metrics  *metrics.Metrics
}

// DefaultConfig returns the default poller configuration
func DefaultConfig() Config {
	return Config{Interval: DefaultInterval}
}

// Poller re-fetches one project at a time.
type Poller struct {
	fetch    FetchFunc
	onUpdate UpdateFunc
	interval time.Duration
	logger   *log.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	id     string
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}

	inflight sync.WaitGroup
}

// New creates a poller. Nothing is fetched until Track is called.
func New(fetch FetchFunc, onUpdate UpdateFunc, cfg Config) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &Poller{
		fetch:    fetch,
		onUpdate: onUpdate,
		interval: interval,
		logger:   logger.Component("poll"),
		metrics:  cfg.Metrics,
	}
}

// Track switches polling to id. The previous loop is stopped first; an empty
// id just stops. Tracking the id already tracked is a no-op.
func (p *Poller) Track(id string) {
	p.mu.Lock()
	if id == p.id && (id == "" || p.cancel != nil) {
		p.mu.Unlock()
		return
	}

	prevCancel, prevDone := p.cancel, p.done
	p.gen++
	p.id = id
	p.cancel, p.done = nil, nil

	if id != "" {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.done = make(chan struct{})
		go p.run(ctx, id, p.gen, p.done)
		p.logger.WithProject(id).Debug("tracking project", "interval", p.interval.String())
	}
	p.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}
}

// Tracked returns the id being polled, or "".
func (p *Poller) Tracked() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.id
}

// Stop stops polling. Fetches already in flight still complete but their
// results are dropped.
func (p *Poller) Stop() {
	p.Track("")
}

// Wait blocks until every fetch started so far has returned.
func (p *Poller) Wait() {
	p.inflight.Wait()
}

func (p *Poller) run(ctx context.Context, id string, gen uint64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.inflight.Add(1)
			go p.tick(context.WithoutCancel(ctx), id, gen)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) tick(ctx context.Context, id string, gen uint64) {
	defer p.inflight.Done()

	state, err := p.fetch(ctx, id)
	if err != nil {
		p.metrics.RecordPollTick("failed")
		p.logger.WithProject(id).WithError(err).DebugContext(ctx, "poll failed")
		return
	}

	if !p.current(gen) {
		p.metrics.RecordPollDropped()
		p.logger.WithProject(id).DebugContext(ctx, "dropped stale poll response")
		return
	}

	p.metrics.RecordPollTick("updated")
	p.onUpdate(id, state)
}

func (p *Poller) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen == gen
}
