// Package clip holds decoded sound clips and the library that resolves
// clip names to them.
//
// Every clip is stored as a stereo float buffer at the output sample rate,
// so a Source never resamples for format reasons, only for pitch.
package clip

import (
	"errors"
	"time"

	"github.com/gopxl/beep"
)

// Sentinel errors
var (
	ErrNotFound          = errors.New("clip not found")
	ErrUnsupportedFormat = errors.New("unsupported clip format")
)

// Clip is an immutable decoded sound.
type Clip struct {
	name string
	buf  *beep.Buffer
}

// New wraps an already filled buffer.
func New(name string, buf *beep.Buffer) *Clip {
	return &Clip{name: name, buf: buf}
}

// FromStreamer drains s into a new stereo buffer at sr.
// s must be finite.
func FromStreamer(name string, sr beep.SampleRate, s beep.Streamer) *Clip {
	buf := beep.NewBuffer(beep.Format{SampleRate: sr, NumChannels: 2, Precision: 3})
	buf.Append(s)
	return New(name, buf)
}

// Name returns the clip name. Safe on nil.
func (c *Clip) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Format returns the buffer format.
func (c *Clip) Format() beep.Format {
	return c.buf.Format()
}

// Len returns the clip length in samples.
func (c *Clip) Len() int {
	return c.buf.Len()
}

// Duration returns the clip length at its native pitch.
func (c *Clip) Duration() time.Duration {
	return c.buf.Format().SampleRate.D(c.buf.Len())
}

// Streamer returns a fresh streamer over the whole clip.
// Each call is independent, so one clip can play on many sources at once.
func (c *Clip) Streamer() beep.StreamSeeker {
	return c.buf.Streamer(0, c.buf.Len())
}

// frames streams a decoded sample slice once.
type frames struct {
	data [][2]float64
	pos  int
}

func (f *frames) Stream(samples [][2]float64) (n int, ok bool) {
	if f.pos >= len(f.data) {
		return 0, false
	}
	n = copy(samples, f.data[f.pos:])
	f.pos += n
	return n, true
}

func (f *frames) Err() error { return nil }

// fromFrames builds a clip from decoded frames at rate sr, resampling to target.
func fromFrames(name string, sr, target beep.SampleRate, data [][2]float64) *Clip {
	var s beep.Streamer = &frames{data: data}
	if sr != target {
		s = beep.Resample(4, sr, target, s)
	}
	return FromStreamer(name, target, s)
}
