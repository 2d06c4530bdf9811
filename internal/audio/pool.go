package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/clock"
	"github.com/udisondev/ss3go/internal/model"
)

// Config holds the pool sizing policy.
type Config struct {
	MinSize       int           // floor, created eagerly
	MaxSize       int           // ceiling, only decides whether a purge pass is worthwhile
	PurgeInterval time.Duration // delay between purge passes
}

// DefaultConfig returns 30 / 100 / 30 minutes.
func DefaultConfig() Config {
	return Config{
		MinSize:       30,
		MaxSize:       100,
		PurgeInterval: 30 * time.Minute,
	}
}

// ErrInvalidConfig is returned by NewPool for an unusable sizing policy.
var ErrInvalidConfig = errors.New("invalid audio pool config")

func (c Config) validate() error {
	switch {
	case c.MinSize < 0:
		return fmt.Errorf("%w: min size %d < 0", ErrInvalidConfig, c.MinSize)
	case c.MaxSize < c.MinSize:
		return fmt.Errorf("%w: max size %d < min size %d", ErrInvalidConfig, c.MaxSize, c.MinSize)
	case c.PurgeInterval <= 0:
		return fmt.Errorf("%w: purge interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// PurgeResult describes one purge pass.
type PurgeResult struct {
	Before  int
	After   int
	Purged  int
	Skipped bool // size was at or under the ceiling, handles were not inspected
}

// Stats is a point-in-time snapshot of the pool.
type Stats struct {
	Size    int
	Idle    int
	Playing int

	Acquired    uint64
	Grown       uint64
	Finished    uint64
	PurgeCycles uint64
	Purged      uint64
}

// Option configures a Pool.
type Option func(*Pool)

// WithClock sets the clock driving the purge timer.
func WithClock(c clock.Clock) Option {
	return func(p *Pool) {
		p.clock = c
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Pool) {
		p.metrics = m
	}
}

// Pool hands out idle playback handles, growing on demand, and shrinks
// back to MinSize on a recurring purge timer.
//
// Invariants: Size() >= MinSize after construction; a playing handle is
// never destroyed; Acquire never blocks and, until Close, never fails.
type Pool struct {
	cfg     Config
	factory SourceFactory
	clock   clock.Clock
	metrics *Metrics

	mu      sync.Mutex
	handles []*Handle // insertion order
	closed  bool

	acquired    atomic.Uint64
	grown       atomic.Uint64
	finished    atomic.Uint64
	purgeCycles atomic.Uint64
	purged      atomic.Uint64
}

// NewPool creates a pool and eagerly fills it with cfg.MinSize handles.
func NewPool(cfg Config, factory SourceFactory, opts ...Option) (*Pool, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: nil source factory", ErrInvalidConfig)
	}

	p := &Pool{
		cfg:     cfg,
		factory: factory,
		clock:   clock.Real{},
		handles: make([]*Handle, 0, cfg.MaxSize),
	}
	for _, opt := range opts {
		opt(p)
	}

	for range cfg.MinSize {
		p.grow()
	}

	slog.Info("audio pool created",
		"min", cfg.MinSize,
		"max", cfg.MaxSize,
		"purgeInterval", cfg.PurgeInterval)

	return p, nil
}

// Config returns the sizing policy.
func (p *Pool) Config() Config {
	return p.cfg
}

// grow appends one new idle handle. Caller holds mu (or owns p exclusively).
func (p *Pool) grow() *Handle {
	h := newHandle(p.factory, p.onFinished)
	p.handles = append(p.handles, h)
	p.metrics.setSize(len(p.handles))
	p.metrics.idleAdd(1)
	return h
}

func (p *Pool) onFinished() {
	p.finished.Add(1)
	p.metrics.playFinished()
	p.metrics.idleAdd(1)
}

// Acquire returns the first idle handle in insertion order, or a new
// one when every handle is busy. The handle is claimed for the caller
// (state Playing) until its clip finishes or Release is called with the
// returned Claim. A closed pool returns nil.
func (p *Pool) Acquire() (*Handle, Claim) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		slog.Warn("audio acquire on closed pool")
		return nil, 0
	}

	p.acquired.Add(1)

	for _, h := range p.handles {
		if c, ok := h.claim(); ok {
			p.metrics.idleAdd(-1)
			p.metrics.acquired(false)
			return h, c
		}
	}

	h := p.grow()
	c, _ := h.claim()
	p.metrics.idleAdd(-1)
	n := len(p.handles)

	p.grown.Add(1)
	p.metrics.acquired(true)

	if n > p.cfg.MaxSize {
		slog.Info("audio pool above ceiling",
			"size", n,
			"max", p.cfg.MaxSize)
	} else {
		slog.Debug("audio pool grown", "size", n)
	}

	return h, c
}

// Release returns a handle obtained from Acquire that the caller decided
// not to play. It is a no-op once the handle was played or claimed again.
func (p *Pool) Release(h *Handle, c Claim) {
	if h == nil {
		return
	}
	if h.release(c) {
		p.metrics.idleAdd(1)
	}
}

// Play configures h and starts the clip. With a non-nil anchor the
// sound follows the anchor while it plays; with nil it stays at pos.
func (p *Pool) Play(h *Handle, c *clip.Clip, pos model.Location, anchor Anchor, params Params) {
	if h == nil {
		return
	}
	if c == nil {
		slog.Warn("audio play without clip", "handle", h.ID())
		p.Release(h, Claim(h.seq.Load()))
		return
	}
	if anchor != nil && isNil(anchor) {
		slog.Warn("audio play with nil anchor", "handle", h.ID(), "clip", c.Name())
		anchor = nil
	}

	ok, wasIdle := h.play(c, pos, anchor, params)
	if !ok {
		slog.Warn("audio play on destroyed handle",
			"handle", h.ID(),
			"clip", c.Name())
		return
	}
	if wasIdle {
		p.metrics.idleAdd(-1)
	}

	slog.Debug("audio play",
		"handle", h.ID(),
		"clip", c.Name(),
		"attached", anchor != nil)
}

// PlayAt plays c at a fixed position with default params.
func (p *Pool) PlayAt(c *clip.Clip, pos model.Location) *Handle {
	h, _ := p.Acquire()
	p.Play(h, c, pos, nil, DefaultParams())
	return h
}

// PlayAttached plays c on a handle that follows anchor, with default
// params. A nil anchor plays at the origin instead.
func (p *Pool) PlayAttached(c *clip.Clip, anchor Anchor) *Handle {
	if isNil(anchor) {
		slog.Warn("audio play attached to nil anchor, playing at origin")
		return p.PlayAt(c, model.Location{})
	}
	h, _ := p.Acquire()
	p.Play(h, c, anchor.Location(), anchor, DefaultParams())
	return h
}

// isNil reports whether a is nil or wraps a nil pointer.
func isNil(a Anchor) bool {
	if a == nil {
		return true
	}
	v := reflect.ValueOf(a)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Purge runs one maintenance pass. When the pool is above MaxSize it
// destroys idle handles in insertion order until MinSize remain;
// otherwise it does nothing.
func (p *Pool) Purge() PurgeResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.handles)
	res := PurgeResult{Before: n, After: n}
	p.purgeCycles.Add(1)

	if n <= p.cfg.MaxSize {
		res.Skipped = true
		p.metrics.purgeCycle(res)
		slog.Info("audio pool purge not necessary",
			"interval", p.cfg.PurgeInterval,
			"size", n,
			"max", p.cfg.MaxSize)
		return res
	}

	size := n
	kept := p.handles[:0]
	for _, h := range p.handles {
		if size > p.cfg.MinSize && h.reclaimable() && h.destroy() {
			size--
			continue
		}
		kept = append(kept, h)
	}
	clear(p.handles[len(kept):])
	p.handles = kept

	res.After = len(p.handles)
	res.Purged = n - res.After
	p.purged.Add(uint64(res.Purged))
	p.metrics.purgeCycle(res)
	p.metrics.setSize(res.After)
	p.metrics.idleAdd(-res.Purged)

	slog.Info("audio pool purged",
		"interval", p.cfg.PurgeInterval,
		"before", res.Before,
		"after", res.After,
		"max", p.cfg.MaxSize,
		"purged", res.Purged)

	return res
}

// Start runs the purge timer: a one-shot timer for PurgeInterval that
// re-arms after every pass. Blocks until ctx is canceled.
func (p *Pool) Start(ctx context.Context) error {
	slog.Info("audio pool purge timer started", "interval", p.cfg.PurgeInterval)

	for {
		timer := p.clock.NewTimer(p.cfg.PurgeInterval)

		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("audio pool purge timer stopping")
			return ctx.Err()

		case <-timer.C():
			p.Purge()
		}
	}
}

// Size returns the number of handles.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}

// Handles returns a snapshot of the handles in insertion order.
func (p *Pool) Handles() []*Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Handle, len(p.handles))
	copy(out, p.handles)
	return out
}

// Stats returns a snapshot of pool size and counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	st := Stats{Size: len(p.handles)}
	for _, h := range p.handles {
		if h.IsPlaying() {
			st.Playing++
		} else {
			st.Idle++
		}
	}
	p.mu.Unlock()

	st.Acquired = p.acquired.Load()
	st.Grown = p.grown.Load()
	st.Finished = p.finished.Load()
	st.PurgeCycles = p.purgeCycles.Load()
	st.Purged = p.purged.Load()
	return st
}

// Close destroys every handle regardless of state. Afterwards Acquire
// returns nil and the pool never grows again.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	for _, h := range p.handles {
		h.state.Store(int32(StateDestroyed))
		h.src.Close()
	}
	slog.Info("audio pool closed", "handles", len(p.handles))

	p.handles = nil
	p.metrics.setSize(0)
	p.metrics.setIdle(0)
}
