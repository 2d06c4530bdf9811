package mixer

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/udisondev/ss3go/internal/audio"
	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/model"
)

const resampleQuality = 4

// Source plays one clip at a time through its Output. All fields are
// guarded by the output lock.
type Source struct {
	out *Output

	clip        *clip.Clip
	volume      float64
	pitch       float64
	minDistance float64
	maxDistance float64
	position    model.Location
	anchor      audio.Anchor

	ctrl    *beep.Ctrl
	gen     uint64
	playing bool
	closed  bool
}

var _ audio.Source = (*Source)(nil)

func (s *Source) SetClip(c *clip.Clip) {
	s.out.lock.Lock()
	defer s.out.lock.Unlock()
	s.clip = c
}

func (s *Source) SetVolume(v float64) {
	s.out.lock.Lock()
	defer s.out.lock.Unlock()
	s.volume = max(v, 0)
}

func (s *Source) SetPitch(p float64) {
	s.out.lock.Lock()
	defer s.out.lock.Unlock()
	s.pitch = p
}

func (s *Source) SetDistanceRange(minDistance, maxDistance float64) {
	s.out.lock.Lock()
	defer s.out.lock.Unlock()
	s.minDistance = minDistance
	s.maxDistance = maxDistance
}

func (s *Source) SetPosition(pos model.Location) {
	s.out.lock.Lock()
	defer s.out.lock.Unlock()
	s.position = pos
}

func (s *Source) SetAnchor(a audio.Anchor) {
	s.out.lock.Lock()
	defer s.out.lock.Unlock()
	s.anchor = a
}

// Play replaces the current play with the configured clip.
// onFinished runs on the mixing goroutine with the output lock held, so
// it must not call back into the Output or its sources.
func (s *Source) Play(onFinished func()) {
	s.out.lock.Lock()
	defer s.out.lock.Unlock()

	if s.closed || s.clip == nil {
		return
	}
	s.stopLocked()

	s.gen++
	gen := s.gen

	var st beep.Streamer = s.clip.Streamer()
	if s.pitch > 0 && s.pitch != 1 {
		st = beep.ResampleRatio(resampleQuality, s.pitch, st)
	}

	pan := &effects.Pan{}
	pan.Streamer = &spatial{src: s, pan: pan, streamer: st}

	s.ctrl = &beep.Ctrl{
		Streamer: beep.Seq(pan, beep.Callback(func() {
			s.finished(gen, onFinished)
		})),
	}
	s.playing = true
	s.out.mixer.Add(s.ctrl)
}

// finished runs inside mixer.Stream, lock held.
func (s *Source) finished(gen uint64, onFinished func()) {
	if s.gen != gen || !s.playing {
		return
	}
	s.playing = false
	s.ctrl = nil
	if onFinished != nil {
		onFinished()
	}
}

func (s *Source) stopLocked() {
	if s.ctrl != nil {
		// a Ctrl with no streamer reports drained and leaves the mixer
		s.ctrl.Streamer = nil
		s.ctrl = nil
	}
	s.playing = false
}

func (s *Source) IsPlaying() bool {
	s.out.lock.Lock()
	defer s.out.lock.Unlock()
	return s.playing
}

// Stop ends the current play without calling its finished callback.
func (s *Source) Stop() {
	s.out.lock.Lock()
	defer s.out.lock.Unlock()
	s.stopLocked()
}

func (s *Source) Close() {
	s.out.lock.Lock()
	defer s.out.lock.Unlock()
	s.stopLocked()
	s.closed = true
	s.anchor = nil
}

// emitterPosition is the anchor's live location, or the fixed position.
func (s *Source) emitterPosition() model.Location {
	if s.anchor != nil {
		return s.anchor.Location()
	}
	return s.position
}

// spatial scales the wrapped streamer by distance to the listener and
// steers the following Pan by the emitter's side.
type spatial struct {
	src      *Source
	pan      *effects.Pan
	streamer beep.Streamer
}

func (sp *spatial) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = sp.streamer.Stream(samples)
	if n == 0 {
		return n, ok
	}

	s := sp.src
	offset := s.emitterPosition().Sub(s.out.listener)
	d := math.Hypot(offset.X, math.Hypot(offset.Y, offset.Z))

	gain := s.volume * Attenuation(d, s.minDistance, s.maxDistance)
	sp.pan.Pan = Pan(offset.X, d, s.minDistance)

	for i := range samples[:n] {
		samples[i][0] *= gain
		samples[i][1] *= gain
	}
	return n, ok
}

func (sp *spatial) Err() error {
	return sp.streamer.Err()
}

// Attenuation is the inverse-distance rolloff: full volume within
// minDistance, minDistance/d up to maxDistance, silent beyond.
func Attenuation(d, minDistance, maxDistance float64) float64 {
	switch {
	case d > maxDistance:
		return 0
	case d <= minDistance || d == 0:
		return 1
	default:
		return minDistance / d
	}
}

// Pan maps the lateral offset dx at distance d to -1 (left) .. 1 (right).
// Sources closer than minDistance are centered.
func Pan(dx, d, minDistance float64) float64 {
	if d <= minDistance || d == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, dx/d))
}
