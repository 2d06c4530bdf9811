// Package item implements interactive world items. Every item can be
// picked up; kinds add their own interactions on top (ringing a service
// bell, spraying pepper spray).
package item

import (
	"sync"
	"time"

	"github.com/udisondev/ss3go/internal/audio"
	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/clock"
	"github.com/udisondev/ss3go/internal/game/interaction"
	"github.com/udisondev/ss3go/internal/model"
)

// SoundPlayer plays a clip that follows an object. *audio.Pool implements it.
type SoundPlayer interface {
	PlayAttached(c *clip.Clip, anchor audio.Anchor) *audio.Handle
}

// ClipSource resolves clip names. *clip.Library implements it.
type ClipSource interface {
	Get(name string) (*clip.Clip, error)
}

// Emitter is a particle effect attached to an item.
type Emitter interface {
	Play()
	Stop()
}

// Env carries the services item constructors need.
type Env struct {
	Sounds SoundPlayer
	Clips  ClipSource
	Clock  clock.Clock

	Range         float64 // interaction reach
	BellSound     string
	SpraySound    string
	SprayCooldown time.Duration

	// NewEmitter creates the particle effect for the named item.
	// Nil means effects are only logged.
	NewEmitter func(name string) Emitter
}

func (e Env) emitter(name string) Emitter {
	if e.NewEmitter == nil {
		return logEmitter{name: name}
	}
	return e.NewEmitter(name)
}

func (e Env) clock() clock.Clock {
	if e.Clock == nil {
		return clock.Real{}
	}
	return e.Clock
}

// Entity is a spawned item as seen by the world.
type Entity interface {
	interaction.Target
	interaction.Object
	ObjectID() uint32
	Object() *model.WorldObject
	Holder() interaction.Object
	Drop()
	Update()
}

// Item is the base every kind embeds.
type Item struct {
	*model.WorldObject

	icon  string
	reach float64

	mu     sync.RWMutex
	holder interaction.Object
}

// NewItem wraps obj. reach <= 0 selects interaction.DefaultRange.
func NewItem(obj *model.WorldObject, icon string, reach float64) *Item {
	if reach <= 0 {
		reach = interaction.DefaultRange
	}
	return &Item{
		WorldObject: obj,
		icon:        icon,
		reach:       reach,
	}
}

// Object returns the world object the item is placed as.
func (it *Item) Object() *model.WorldObject {
	return it.WorldObject
}

// Icon returns the item's icon name.
func (it *Item) Icon() string {
	return it.icon
}

// Reach returns the interaction range.
func (it *Item) Reach() float64 {
	return it.reach
}

// Holder returns who carries the item, nil if it lies in the world.
func (it *Item) Holder() interaction.Object {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.holder
}

// Drop puts the item back into the world.
func (it *Item) Drop() {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.holder = nil
}

func (it *Item) pickUp(by interaction.Object) bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.holder != nil {
		return false
	}
	it.holder = by
	return true
}

// Interactions returns the interactions every item offers.
func (it *Item) Interactions(interaction.Event) []interaction.Interaction {
	return []interaction.Interaction{pickupInteraction{it}}
}

// Update runs once per world tick.
func (it *Item) Update() {}

// isTarget reports whether ev is aimed at this item.
func (it *Item) isTarget(ev interaction.Event) bool {
	o, ok := ev.Target.(interface{ ObjectID() uint32 })
	return ok && o.ObjectID() == it.ObjectID()
}

func (it *Item) inReach(ev interaction.Event) bool {
	return it.isTarget(ev) && interaction.RangeCheck(ev, it.reach)
}

type pickupInteraction struct {
	it *Item
}

func (p pickupInteraction) Name(interaction.Event) string { return "Pick up" }

func (p pickupInteraction) Icon(interaction.Event) string { return p.it.icon }

func (p pickupInteraction) CanInteract(ev interaction.Event) bool {
	return p.it.Holder() == nil && p.it.inReach(ev)
}

func (p pickupInteraction) Start(ev interaction.Event) bool {
	p.it.pickUp(ev.Source)
	return false
}
