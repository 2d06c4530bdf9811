// Package audio implements the pooled sound playback service used by
// gameplay code: a growable set of playback handles with a periodic
// purge pass that shrinks the pool back to its floor.
package audio

import (
	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/model"
)

// Anchor is a moving object a sound can stick to.
// *model.WorldObject satisfies it.
type Anchor interface {
	Location() model.Location
}

// Source is a single playback primitive provided by the output backend.
// It plays one clip at a time.
type Source interface {
	SetClip(c *clip.Clip)
	SetVolume(v float64)
	SetPitch(p float64)
	SetDistanceRange(minDistance, maxDistance float64)
	SetPosition(pos model.Location)
	SetAnchor(a Anchor)

	// Play starts the configured clip from the beginning, replacing
	// whatever was playing. onFinished is called once when this play
	// runs to completion, never for a replaced or closed play. It may be
	// called from the audio goroutine and must not block.
	Play(onFinished func())
	IsPlaying() bool

	// Close stops playback and releases backend resources.
	Close()
}

// SourceFactory creates sources for the pool.
type SourceFactory interface {
	NewSource() Source
}

// Params are the per-play settings.
type Params struct {
	Volume      float64
	Pitch       float64
	MinDistance float64
	MaxDistance float64
}

// DefaultParams returns volume 0.7, pitch 1, audible range 1..500.
func DefaultParams() Params {
	return Params{
		Volume:      0.7,
		Pitch:       1,
		MinDistance: 1,
		MaxDistance: 500,
	}
}
