// Package mixer is the beep-backed playback backend. An Output owns one
// beep.Mixer; every Source it creates adds a controlled streamer to that
// mixer when played.
package mixer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/udisondev/ss3go/internal/audio"
	"github.com/udisondev/ss3go/internal/model"
)

// speakerLock serializes access to streamers owned by the speaker goroutine.
type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// Output mixes every playing source. State of the output and of all its
// sources is guarded by one lock: the speaker lock for a device output,
// a plain mutex for an offline one.
type Output struct {
	sr     beep.SampleRate
	lock   sync.Locker
	mixer  *beep.Mixer
	device bool

	listener model.Location
}

func newOutput(sr beep.SampleRate, lock sync.Locker) *Output {
	return &Output{
		sr:    sr,
		lock:  lock,
		mixer: &beep.Mixer{},
	}
}

// NewDevice opens the default audio device and starts mixing into it.
func NewDevice(sr beep.SampleRate, buffer time.Duration) (*Output, error) {
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}

	o := newOutput(sr, speakerLock{})
	o.device = true
	speaker.Play(o.mixer)

	slog.Info("audio output opened", "sampleRate", int(sr), "buffer", buffer)
	return o, nil
}

// NewOffline creates an output that only advances when rendered,
// either explicitly with Render or in real time with Pump.
func NewOffline(sr beep.SampleRate) *Output {
	return newOutput(sr, &sync.Mutex{})
}

// SampleRate returns the mixing rate.
func (o *Output) SampleRate() beep.SampleRate {
	return o.sr
}

// Device reports whether the output plays through a sound card.
func (o *Output) Device() bool {
	return o.device
}

// SetListener moves the point sources are heard from.
func (o *Output) SetListener(loc model.Location) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.listener = loc
}

// Listener returns the listener position.
func (o *Output) Listener() model.Location {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.listener
}

// Active returns the number of streamers currently in the mixer.
func (o *Output) Active() int {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.mixer.Len()
}

// NewSource implements audio.SourceFactory.
func (o *Output) NewSource() audio.Source {
	return &Source{
		out:         o,
		volume:      1,
		pitch:       1,
		minDistance: 1,
		maxDistance: 500,
	}
}

// Render pulls n samples through the mixer and returns them.
// Finished callbacks of sources that end inside the window run before
// Render returns.
func (o *Output) Render(n int) [][2]float64 {
	buf := make([][2]float64, n)
	o.render(buf)
	return buf
}

func (o *Output) render(buf [][2]float64) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.mixer.Stream(buf)
}

// Pump renders an offline output in real time, one period per tick,
// discarding the samples. Blocks until ctx is canceled.
// A device output is driven by the speaker, so Pump only waits.
func (o *Output) Pump(ctx context.Context, period time.Duration) error {
	if o.device {
		<-ctx.Done()
		return ctx.Err()
	}

	slog.Info("audio output running headless", "period", period)

	buf := make([][2]float64, o.sr.N(period))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			o.render(buf)
		}
	}
}

// Close drops every playing streamer. Sources created by o must not be
// played afterwards.
func (o *Output) Close() {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.mixer.Clear()
}
