package item

import (
	"fmt"

	"github.com/udisondev/ss3go/internal/audio"
	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/game/interaction"
	"github.com/udisondev/ss3go/internal/model"
)

// ServiceBell rings when used.
type ServiceBell struct {
	*Item

	sounds SoundPlayer
	sound  *clip.Clip
}

// NewServiceBell creates a bell around obj.
func NewServiceBell(obj *model.WorldObject, env Env) (*ServiceBell, error) {
	c, err := env.Clips.Get(env.BellSound)
	if err != nil {
		return nil, fmt.Errorf("loading bell sound %q: %w", env.BellSound, err)
	}
	return &ServiceBell{
		Item:   NewItem(obj, "service_bell", env.Range),
		sounds: env.Sounds,
		sound:  c,
	}, nil
}

// Ring plays the bell sound attached to the bell.
func (b *ServiceBell) Ring() *audio.Handle {
	return b.sounds.PlayAttached(b.sound, b.WorldObject)
}

// Interactions lists "Bell" ahead of the base item interactions.
func (b *ServiceBell) Interactions(ev interaction.Event) []interaction.Interaction {
	return append([]interaction.Interaction{bellInteraction{b}}, b.Item.Interactions(ev)...)
}

type bellInteraction struct {
	bell *ServiceBell
}

func (bellInteraction) Name(interaction.Event) string { return "Bell" }

func (i bellInteraction) Icon(interaction.Event) string { return i.bell.icon }

func (i bellInteraction) CanInteract(ev interaction.Event) bool {
	return i.bell.inReach(ev)
}

func (i bellInteraction) Start(interaction.Event) bool {
	i.bell.Ring()
	return false
}
