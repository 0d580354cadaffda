// Package resilience stops a batch from repeatedly hitting a host that keeps
// refusing to serve pages.
package resilience

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// State is the breaker state for one host.
type State int

const (
	// Closed lets scrapes through.
	Closed State = iota
	// Open rejects scrapes until the cooldown elapses.
	Open
	// HalfOpen lets a single probe through.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned when a host's breaker rejects a scrape.
var ErrOpen = eris.New("resilience: host breaker open")

// Config controls when a breaker trips.
type Config struct {
	// Threshold is the number of consecutive tripping failures that open the
	// breaker. Default: 3.
	Threshold int
	// Cooldown is how long an open breaker rejects before allowing a probe.
	// Default: 5m.
	Cooldown time.Duration
	// Trips reports whether err counts toward Threshold. Nil counts every error.
	Trips func(err error) bool
}

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = 3
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 5 * time.Minute
	}
	if c.Trips == nil {
		c.Trips = func(err error) bool { return err != nil }
	}
	return c
}

// Breaker tracks consecutive failures for one host.
type Breaker struct {
	name string
	cfg  Config

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool

	now func() time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(name string, cfg Config) *Breaker {
	return &Breaker{name: name, cfg: cfg.withDefaults(), now: time.Now}
}

// Allow reports whether a scrape may start. In half-open state only one probe
// is admitted until its result is recorded.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return eris.Wrapf(ErrOpen, "host %s", b.name)
		}
		b.transition(HalfOpen)
		b.probing = true
		return nil
	case HalfOpen:
		if b.probing {
			return eris.Wrapf(ErrOpen, "host %s probing", b.name)
		}
		b.probing = true
		return nil
	default:
		return nil
	}
}

// Record feeds the outcome of an admitted scrape back into the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if err == nil || !b.cfg.Trips(err) {
		b.failures = 0
		if b.state != Closed {
			b.transition(Closed)
		}
		return
	}

	b.failures++
	switch b.state {
	case HalfOpen:
		b.open()
	case Closed:
		if b.failures >= b.cfg.Threshold {
			b.open()
		}
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) open() {
	b.openedAt = b.now()
	b.transition(Open)
}

func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	zap.L().Info("resilience: breaker state change",
		zap.String("host", b.name),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
		zap.Int("failures", b.failures),
	)
	b.state = to
}

// Do runs fn if the breaker admits it and records the error fn returns.
func Do[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.Allow(); err != nil {
		return zero, err
	}
	v, err := fn(ctx)
	b.Record(err)
	return v, err
}

// HostBreakers hands out one Breaker per URL host.
type HostBreakers struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewHostBreakers creates an empty registry sharing cfg.
func NewHostBreakers(cfg Config) *HostBreakers {
	return &HostBreakers{cfg: cfg, breakers: make(map[string]*Breaker)}
}

// For returns the breaker for rawURL's host, creating it on first use.
// Unparseable URLs share a breaker keyed by the raw string.
func (h *HostBreakers) For(rawURL string) *Breaker {
	key := HostKey(rawURL)

	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.breakers[key]
	if !ok {
		b = NewBreaker(key, h.cfg)
		h.breakers[key] = b
	}
	return b
}

// HostKey lowercases the host of rawURL and drops a leading "www.".
func HostKey(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
