package item

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/udisondev/ss3go/internal/model"
)

// Kind names of the built-in items.
const (
	KindServiceBell = "ServiceBell"
	KindPepperSpray = "PepperSpray"
)

// ErrUnknownKind is returned by Spawn for an unregistered kind.
var ErrUnknownKind = errors.New("unknown item kind")

// Constructor builds an item of one kind around obj.
type Constructor func(obj *model.WorldObject, env Env) (Entity, error)

// Registry maps item kind names to constructors.
type Registry struct {
	env Env

	mu    sync.RWMutex
	kinds map[string]Constructor
}

// NewRegistry creates an empty registry whose items share env.
func NewRegistry(env Env) *Registry {
	return &Registry{
		env:   env,
		kinds: make(map[string]Constructor),
	}
}

// Register adds or replaces the constructor for kind.
func (r *Registry) Register(kind string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = c
}

// Get returns the constructor for kind, or nil if not registered.
func (r *Registry) Get(kind string) Constructor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.kinds[kind]
}

// Kinds returns registered kind names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Spawn builds an item of the given kind around obj.
func (r *Registry) Spawn(kind string, obj *model.WorldObject) (Entity, error) {
	c := r.Get(kind)
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	e, err := c(obj, r.env)
	if err != nil {
		return nil, fmt.Errorf("spawning %s: %w", kind, err)
	}

	slog.Debug("item spawned",
		"kind", kind,
		"objectID", obj.ObjectID(),
		"location", obj.Location())
	return e, nil
}

// RegisterDefaults registers the built-in item kinds.
func (r *Registry) RegisterDefaults() {
	r.Register(KindServiceBell, func(obj *model.WorldObject, env Env) (Entity, error) {
		b, err := NewServiceBell(obj, env)
		if err != nil {
			return nil, err
		}
		return b, nil
	})
	r.Register(KindPepperSpray, func(obj *model.WorldObject, env Env) (Entity, error) {
		s, err := NewPepperSpray(obj, env)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
