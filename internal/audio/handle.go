package audio

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/model"
)

// State is the lifecycle state of a Handle.
type State int32

const (
	StateIdle State = iota
	StatePlaying
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Handle is one pooled player. The pool owns it; callers borrow it
// through Acquire and give it back implicitly when the clip finishes,
// or explicitly with Release.
type Handle struct {
	id  string
	src Source

	state atomic.Int32
	seq   atomic.Uint64 // bumped on every claim, Play and release; stale claims and finish callbacks compare against it
	done  func()        // pool hook, called after a play completes

	mu       sync.RWMutex
	clip     *clip.Clip
	params   Params
	position model.Location
	anchor   Anchor
}

func newHandle(f SourceFactory, done func()) *Handle {
	return &Handle{
		id:     uuid.NewString(),
		src:    f.NewSource(),
		done:   done,
		params: DefaultParams(),
	}
}

// ID returns the handle's unique id.
func (h *Handle) ID() string {
	return h.id
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	return State(h.state.Load())
}

// IsPlaying reports whether the handle is busy (claimed or playing).
func (h *Handle) IsPlaying() bool {
	return h.State() == StatePlaying
}

// Clip returns the last clip played on this handle, nil if none.
func (h *Handle) Clip() *clip.Clip {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clip
}

// Params returns the settings of the last play.
func (h *Handle) Params() Params {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.params
}

// Anchor returns the object this handle follows, nil if stationary.
func (h *Handle) Anchor() Anchor {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.anchor
}

// Position returns the anchor's current location, or the fixed play
// position when the handle has no anchor.
func (h *Handle) Position() model.Location {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.anchor != nil {
		return h.anchor.Location()
	}
	return h.position
}

// Claim identifies one Acquire of a handle. It goes stale as soon as the
// handle is played, released or claimed again.
type Claim uint64

// claim moves Idle -> Playing. Fails if the handle is busy or destroyed.
func (h *Handle) claim() (Claim, bool) {
	if !h.state.CompareAndSwap(int32(StateIdle), int32(StatePlaying)) {
		return 0, false
	}
	return Claim(h.seq.Add(1)), true
}

// reclaimable reports whether the purge pass may destroy this handle.
func (h *Handle) reclaimable() bool {
	return h.State() == StateIdle && !h.src.IsPlaying()
}

// destroy moves Idle -> Destroyed and closes the source.
func (h *Handle) destroy() bool {
	if !h.state.CompareAndSwap(int32(StateIdle), int32(StateDestroyed)) {
		return false
	}
	h.src.Close()
	return true
}

// play starts c on the handle. wasIdle reports that the handle went
// Idle -> Playing here rather than through a claim.
func (h *Handle) play(c *clip.Clip, pos model.Location, anchor Anchor, p Params) (ok, wasIdle bool) {
	seq := h.seq.Add(1)
	for {
		cur := h.state.Load()
		if State(cur) == StateDestroyed {
			return false, false
		}
		if h.state.CompareAndSwap(cur, int32(StatePlaying)) {
			wasIdle = State(cur) == StateIdle
			break
		}
	}

	h.mu.Lock()
	h.clip = c
	h.params = p
	h.position = pos
	h.anchor = anchor
	h.mu.Unlock()

	h.src.SetPosition(pos)
	h.src.SetClip(c)
	h.src.SetVolume(p.Volume)
	h.src.SetPitch(p.Pitch)
	h.src.SetDistanceRange(p.MinDistance, p.MaxDistance)
	h.src.SetAnchor(anchor)

	h.src.Play(func() {
		if h.seq.Load() != seq {
			return
		}
		if h.state.CompareAndSwap(int32(StatePlaying), int32(StateIdle)) && h.done != nil {
			h.done()
		}
	})
	return true, wasIdle
}

// release gives back a claimed handle that was never played. It fails
// when c is stale.
func (h *Handle) release(c Claim) bool {
	if h.src.IsPlaying() {
		return false
	}
	if !h.seq.CompareAndSwap(uint64(c), uint64(c)+1) {
		return false
	}
	return h.state.CompareAndSwap(int32(StatePlaying), int32(StateIdle))
}
