// Package audiotest provides an in-memory Source for pool and gameplay tests.
package audiotest

import (
	"sync"

	"github.com/udisondev/ss3go/internal/audio"
	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/model"
)

// Factory records every Source it creates.
type Factory struct {
	mu      sync.Mutex
	sources []*Source
}

// NewFactory creates an empty Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// NewSource implements audio.SourceFactory.
func (f *Factory) NewSource() audio.Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &Source{}
	f.sources = append(f.sources, s)
	return s
}

// Sources returns every source created so far, in creation order.
func (f *Factory) Sources() []*Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Source, len(f.sources))
	copy(out, f.sources)
	return out
}

// Created returns how many sources were created.
func (f *Factory) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sources)
}

// FinishAll completes playback on every playing source.
func (f *Factory) FinishAll() {
	for _, s := range f.Sources() {
		s.Finish()
	}
}

// Source is a fake playback primitive. Playback lasts until Finish.
type Source struct {
	mu sync.Mutex

	clip        *clip.Clip
	volume      float64
	pitch       float64
	minDistance float64
	maxDistance float64
	position    model.Location
	anchor      audio.Anchor

	playing bool
	plays   int
	closed  bool
	done    func()
}

func (s *Source) SetClip(c *clip.Clip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clip = c
}

func (s *Source) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

func (s *Source) SetPitch(p float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pitch = p
}

func (s *Source) SetDistanceRange(minDistance, maxDistance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minDistance = minDistance
	s.maxDistance = maxDistance
}

func (s *Source) SetPosition(pos model.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = pos
}

func (s *Source) SetAnchor(a audio.Anchor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = a
}

func (s *Source) Play(onFinished func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
	s.plays++
	s.done = onFinished
}

func (s *Source) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.closed = true
	s.done = nil
}

// Finish ends the current play and fires its completion callback.
// No-op if nothing is playing.
func (s *Source) Finish() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	done := s.done
	s.done = nil
	s.mu.Unlock()

	if done != nil {
		done()
	}
}

// Closed reports whether Close was called.
func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Plays returns how many times Play was called.
func (s *Source) Plays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays
}

// Clip returns the configured clip.
func (s *Source) Clip() *clip.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clip
}

// Settings returns volume, pitch and the audible range.
func (s *Source) Settings() (volume, pitch, minDistance, maxDistance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume, s.pitch, s.minDistance, s.maxDistance
}

// Anchor returns the configured anchor.
func (s *Source) Anchor() audio.Anchor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchor
}

// Position returns the configured position.
func (s *Source) Position() model.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}
