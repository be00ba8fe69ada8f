// Package stats polls the players-online counter and fans the value out to
// observers.
package stats

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-gameportal/pkg/fetch"
)

// DefaultInterval is used when no polling interval is configured.
const DefaultInterval = 60 * time.Second

// Observer receives the counter after every successful poll.
type Observer func(online int)

// Option configures the Poller.
type Option func(*Poller)

// WithFetcher injects the network client used for polling.
func WithFetcher(client *fetch.Client) Option {
	return func(p *Poller) {
		if client != nil {
			p.fetcher = client
		}
	}
}

// WithInterval overrides the polling interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Poller periodically fetches the players-online counter. Ticks that arrive
// while a previous poll is still in flight are dropped rather than queued, so
// a slow endpoint cannot pile up requests.
type Poller struct {
	url      string
	interval time.Duration
	fetcher  *fetch.Client
	logger   *slog.Logger

	polling atomic.Bool

	mu        sync.RWMutex
	current   int
	fetched   bool
	observers []Observer
}

// New constructs a Poller for the given endpoint.
func New(url string, options ...Option) *Poller {
	p := &Poller{
		url:      url,
		interval: DefaultInterval,
		fetcher:  fetch.New(),
		logger:   slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// Subscribe registers an observer. The current value, when one has been
// fetched, is delivered immediately.
func (p *Poller) Subscribe(fn Observer) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	p.observers = append(p.observers, fn)
	current, fetched := p.current, p.fetched
	p.mu.Unlock()

	if fetched {
		fn(current)
	}
}

// Current returns the last fetched counter. ok is false until the first
// successful poll.
func (p *Poller) Current() (online int, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, p.fetched
}

// Run polls immediately and then on every interval tick until ctx is
// cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.Poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

type onlineResponse struct {
	Online int `json:"online"`
}

// Poll fetches the counter once. A poll that overlaps an in-flight one is a
// no-op. Failures keep the previous value; the fetch client already logged
// the details.
func (p *Poller) Poll(ctx context.Context) {
	if !p.polling.CompareAndSwap(false, true) {
		return
	}
	defer p.polling.Store(false)

	var out onlineResponse
	if err := p.fetcher.GetJSON(ctx, p.url, &out); err != nil {
		p.logger.DebugContext(ctx, "players-online poll failed", "error", err)
		return
	}

	p.mu.Lock()
	p.current = out.Online
	p.fetched = true
	observers := append([]Observer(nil), p.observers...)
	p.mu.Unlock()

	for _, fn := range observers {
		fn(out.Online)
	}
}
