package item

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/clock"
	"github.com/udisondev/ss3go/internal/game/interaction"
	"github.com/udisondev/ss3go/internal/model"
)

// PepperSpray emits a short burst of particles and a hiss, then cools down.
type PepperSpray struct {
	*Item

	sounds   SoundPlayer
	sound    *clip.Clip
	clock    clock.Clock
	cooldown time.Duration
	emitter  Emitter

	mu          sync.Mutex
	lastSpray   time.Time
	sprayed     bool // at least once
	justSprayed bool // emission stops on the next Update
}

// NewPepperSpray creates a spray can around obj.
func NewPepperSpray(obj *model.WorldObject, env Env) (*PepperSpray, error) {
	c, err := env.Clips.Get(env.SpraySound)
	if err != nil {
		return nil, fmt.Errorf("loading spray sound %q: %w", env.SpraySound, err)
	}
	return &PepperSpray{
		Item:     NewItem(obj, "pepper_spray", env.Range),
		sounds:   env.Sounds,
		sound:    c,
		clock:    env.clock(),
		cooldown: env.SprayCooldown,
		emitter:  env.emitter(obj.Name()),
	}, nil
}

// Cooldown returns the minimum delay between two sprays.
func (s *PepperSpray) Cooldown() time.Duration {
	return s.cooldown
}

// CanSpray reports whether the cooldown since the last spray has passed.
func (s *PepperSpray) CanSpray() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.sprayed || s.clock.Now().Sub(s.lastSpray) >= s.cooldown
}

// Spray starts emission and plays the hiss attached to the can.
func (s *PepperSpray) Spray() {
	s.mu.Lock()
	s.lastSpray = s.clock.Now()
	s.sprayed = true
	s.justSprayed = true
	s.mu.Unlock()

	s.emitter.Play()
	s.sounds.PlayAttached(s.sound, s.WorldObject)

	slog.Debug("pepper spray used", "item", s.ObjectID())
}

// Update stops emission one tick after a spray.
func (s *PepperSpray) Update() {
	s.mu.Lock()
	stop := s.justSprayed
	s.justSprayed = false
	s.mu.Unlock()

	if stop {
		s.emitter.Stop()
	}
}

// Interactions lists the base item interactions, then "Spray".
func (s *PepperSpray) Interactions(ev interaction.Event) []interaction.Interaction {
	return append(s.Item.Interactions(ev), sprayInteraction{s})
}

type sprayInteraction struct {
	spray *PepperSpray
}

func (sprayInteraction) Name(interaction.Event) string { return "Spray" }

func (sprayInteraction) Icon(interaction.Event) string { return "spray" }

func (i sprayInteraction) CanInteract(ev interaction.Event) bool {
	return i.spray.inReach(ev) && i.spray.CanSpray()
}

func (i sprayInteraction) Start(interaction.Event) bool {
	i.spray.Spray()
	return false
}
