package mixer

import (
	"context"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ss3go/internal/audio"
	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/model"
	"github.com/udisondev/ss3go/internal/testutil"
)

const testRate = beep.SampleRate(1000)

// ones is a clip of n full-scale samples.
func ones(n int) *clip.Clip {
	return clip.FromStreamer("ones", testRate, beep.Take(n, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{1, 1}
		}
		return len(samples), true
	})))
}

func newSource(t *testing.T, out *Output, c *clip.Clip, pos model.Location) *Source {
	t.Helper()
	src := out.NewSource().(*Source)
	src.SetClip(c)
	src.SetVolume(1)
	src.SetPitch(1)
	src.SetDistanceRange(1, 500)
	src.SetPosition(pos)
	return src
}

func TestSource_FinishedFiresOnceAtClipEnd(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)
	src := newSource(t, out, ones(100), model.Location{})

	calls := 0
	src.Play(func() { calls++ })
	require.True(t, src.IsPlaying())
	assert.Equal(t, 1, out.Active())

	out.Render(50)
	assert.Zero(t, calls)
	assert.True(t, src.IsPlaying())

	out.Render(100)
	assert.Equal(t, 1, calls)
	assert.False(t, src.IsPlaying())

	out.Render(100)
	assert.Equal(t, 1, calls)
	assert.Zero(t, out.Active())
}

func TestSource_ReplacedPlayNeverFinishes(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)
	src := newSource(t, out, ones(100), model.Location{})

	first, second := 0, 0
	src.Play(func() { first++ })
	out.Render(60)
	src.Play(func() { second++ })

	out.Render(60)
	assert.Zero(t, first)
	assert.Zero(t, second, "restarted from the beginning")

	out.Render(60)
	assert.Zero(t, first)
	assert.Equal(t, 1, second)
	assert.Zero(t, out.Active())
}

func TestSource_CloseStopsWithoutCallback(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)
	src := newSource(t, out, ones(100), model.Location{})

	called := false
	src.Play(func() { called = true })
	src.Close()
	out.Render(200)

	assert.False(t, called)
	assert.False(t, src.IsPlaying())
	assert.Zero(t, out.Active())

	src.Play(func() { called = true })
	assert.False(t, src.IsPlaying(), "closed source ignores Play")
}

func TestSource_StopWithoutCallback(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)
	src := newSource(t, out, ones(100), model.Location{})

	called := false
	src.Play(func() { called = true })
	src.Stop()
	out.Render(200)

	assert.False(t, called)
	assert.False(t, src.IsPlaying())
}

func TestSource_NoClipDoesNotPlay(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)
	src := out.NewSource()

	src.Play(nil)
	assert.False(t, src.IsPlaying())
	assert.Zero(t, out.Active())
}

func TestSource_PitchShortensPlayback(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)

	normal := newSource(t, out, ones(100), model.NewLocation(0, 0, 1))
	fast := newSource(t, out, ones(100), model.NewLocation(0, 0, 1))
	fast.SetPitch(2)

	normal.Play(nil)
	fast.Play(nil)
	out.Render(80)

	assert.True(t, normal.IsPlaying())
	assert.False(t, fast.IsPlaying())
}

func TestSource_GainFollowsDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pos  model.Location
		want float64
	}{
		{"at listener", model.Location{}, 1},
		{"inside min distance", model.NewLocation(0, 0, 0.5), 1},
		{"twice min distance", model.NewLocation(0, 0, 2), 0.5},
		{"above", model.NewLocation(0, 4, 0), 0.25},
		{"beyond max distance", model.NewLocation(0, 0, 600), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewOffline(testRate)
			src := newSource(t, out, ones(100), tt.pos)
			src.Play(nil)

			buf := out.Render(10)
			assert.InDelta(t, tt.want, buf[5][0], 1e-3)
			assert.InDelta(t, tt.want, buf[5][1], 1e-3)
		})
	}
}

func TestSource_VolumeScalesGain(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)
	src := newSource(t, out, ones(100), model.NewLocation(0, 0, 2))
	src.SetVolume(0.5)
	src.Play(nil)

	buf := out.Render(10)
	assert.InDelta(t, 0.25, buf[0][0], 1e-3)
}

func TestSource_AnchorMovesSound(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)
	bell := model.NewWorldObject(1, "ServiceBell", model.NewLocation(0, 0, 1))

	src := newSource(t, out, ones(1000), model.Location{})
	src.SetAnchor(bell)
	src.Play(nil)

	buf := out.Render(10)
	assert.InDelta(t, 1, buf[0][0], 1e-3)

	bell.SetLocation(model.NewLocation(0, 0, 4))
	buf = out.Render(10)
	assert.InDelta(t, 0.25, buf[0][0], 1e-3)
}

func TestSource_ListenerMovesSound(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)
	src := newSource(t, out, ones(1000), model.NewLocation(0, 0, 10))
	src.Play(nil)

	out.SetListener(model.NewLocation(0, 0, 8))
	assert.Equal(t, model.NewLocation(0, 0, 8), out.Listener())

	buf := out.Render(10)
	assert.InDelta(t, 0.5, buf[0][0], 1e-3)
}

func TestSource_PansTowardEmitterSide(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)
	right := newSource(t, out, ones(1000), model.NewLocation(3, 0, 0))
	right.Play(nil)

	// warm-up chunk so the pan value is set before it is applied
	out.Render(10)
	buf := out.Render(10)
	assert.Greater(t, buf[0][1], buf[0][0])
}

func TestSources_MixAdditively(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)
	a := newSource(t, out, ones(100), model.NewLocation(0, 0, 2))
	b := newSource(t, out, ones(100), model.NewLocation(0, 0, 4))
	a.Play(nil)
	b.Play(nil)

	assert.Equal(t, 2, out.Active())
	buf := out.Render(10)
	assert.InDelta(t, 0.75, buf[0][0], 1e-3)
}

func TestAttenuation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d, minD, maxD float64
		want          float64
	}{
		{0, 1, 500, 1},
		{1, 1, 500, 1},
		{10, 1, 500, 0.1},
		{500, 1, 500, 0.002},
		{500.1, 1, 500, 0},
		{4, 2, 10, 0.5},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Attenuation(tt.d, tt.minD, tt.maxD), 1e-9,
			"d=%v min=%v max=%v", tt.d, tt.minD, tt.maxD)
	}
}

func TestPan(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Pan(0.5, 0.5, 1))
	assert.InDelta(t, 1, Pan(5, 5, 1), 1e-9)
	assert.InDelta(t, -1, Pan(-5, 5, 1), 1e-9)
	assert.InDelta(t, 0.6, Pan(3, 5, 1), 1e-9)
}

func TestOutput_DrivesPool(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)

	p, err := audio.NewPool(audio.Config{MinSize: 1, MaxSize: 1, PurgeInterval: time.Minute}, out)
	require.NoError(t, err)
	defer p.Close()

	h := p.PlayAt(ones(100), model.NewLocation(0, 0, 1))
	require.Equal(t, audio.StatePlaying, h.State())

	out.Render(150)
	assert.Equal(t, audio.StateIdle, h.State())
	assert.Equal(t, uint64(1), p.Stats().Finished)

	got, _ := p.Acquire()
	assert.Same(t, h, got)
}

func TestOutput_Pump(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)
	src := newSource(t, out, ones(20), model.Location{})

	done := make(chan struct{})
	src.Play(func() { close(done) })

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- out.Pump(ctx, 5*time.Millisecond)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("clip did not finish while pumping")
	}
	testutil.WaitFor(t, func() bool { return out.Active() == 0 }, time.Second)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestOutput_Close(t *testing.T) {
	t.Parallel()
	out := NewOffline(testRate)
	newSource(t, out, ones(100), model.Location{}).Play(nil)
	newSource(t, out, ones(100), model.Location{}).Play(nil)
	require.Equal(t, 2, out.Active())

	out.Close()
	assert.Zero(t, out.Active())
	assert.False(t, out.Device())
	assert.Equal(t, testRate, out.SampleRate())
}
