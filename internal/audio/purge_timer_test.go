package audio_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ss3go/internal/audio"
	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/model"
	"github.com/udisondev/ss3go/internal/testutil"
)

func TestStart_PurgesEveryInterval(t *testing.T) {
	t.Parallel()

	clk := testutil.NewManualClock(time.Unix(0, 0))
	p, f := newPool(t, 1, 1, audio.WithClock(clk))

	for range 3 {
		p.PlayAt(testClip, model.Location{})
	}
	f.FinishAll()
	require.Equal(t, 3, p.Size())

	ctx, cancel := testutil.ContextWithCancel(t)
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Start(ctx)
	}()

	testutil.WaitFor(t, func() bool { return clk.PendingTimers() == 1 }, time.Second)

	clk.Advance(30 * time.Second)
	assert.Equal(t, 3, p.Size(), "purge must wait for the full interval")

	clk.Advance(30 * time.Second)
	testutil.WaitFor(t, func() bool { return p.Stats().PurgeCycles == 1 }, time.Second)
	assert.Equal(t, 1, p.Size())

	// re-armed for the next pass
	testutil.WaitFor(t, func() bool { return clk.PendingTimers() == 1 }, time.Second)

	p.PlayAt(testClip, model.Location{})
	p.PlayAt(testClip, model.Location{})
	f.FinishAll()
	require.Equal(t, 2, p.Size())

	clk.Advance(time.Minute)
	testutil.WaitFor(t, func() bool { return p.Stats().PurgeCycles == 2 }, time.Second)
	assert.Equal(t, 1, p.Size())

	testutil.WaitFor(t, func() bool { return clk.PendingTimers() == 1 }, time.Second)
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.Zero(t, clk.PendingTimers(), "timer stopped on shutdown")
}

func TestStart_SkippedPassStillReArms(t *testing.T) {
	t.Parallel()

	clk := testutil.NewManualClock(time.Unix(0, 0))
	p, _ := newPool(t, 2, 5, audio.WithClock(clk))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Start(ctx)
	}()

	for i := 1; i <= 3; i++ {
		testutil.WaitFor(t, func() bool { return clk.PendingTimers() == 1 }, time.Second)
		clk.Advance(time.Minute)
		testutil.WaitFor(t, func() bool { return p.Stats().PurgeCycles == uint64(i) }, time.Second)
	}
	assert.Equal(t, 2, p.Size())
	assert.Zero(t, p.Stats().Purged)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

// keepSource retains every finish callback so tests can fire them late.
type keepSource struct {
	callbacks []func()
	playing   bool
}

func (s *keepSource) SetClip(*clip.Clip)                {}
func (s *keepSource) SetVolume(float64)                 {}
func (s *keepSource) SetPitch(float64)                  {}
func (s *keepSource) SetDistanceRange(float64, float64) {}
func (s *keepSource) SetPosition(model.Location)        {}
func (s *keepSource) SetAnchor(audio.Anchor)            {}
func (s *keepSource) IsPlaying() bool                   { return s.playing }
func (s *keepSource) Close()                            {}

func (s *keepSource) Play(onFinished func()) {
	s.playing = true
	s.callbacks = append(s.callbacks, onFinished)
}

type keepFactory struct {
	src *keepSource
}

func (f *keepFactory) NewSource() audio.Source {
	f.src = &keepSource{}
	return f.src
}

func TestPlay_StaleFinishDoesNotIdleReplayedHandle(t *testing.T) {
	t.Parallel()

	f := &keepFactory{}
	p, err := audio.NewPool(audio.Config{MinSize: 1, MaxSize: 1, PurgeInterval: time.Minute}, f)
	require.NoError(t, err)
	defer p.Close()

	h := p.PlayAt(testClip, model.Location{})
	p.Play(h, testClip, model.Location{}, nil, audio.DefaultParams())
	require.Len(t, f.src.callbacks, 2)

	// the first clip's completion arrives after it was replaced
	f.src.callbacks[0]()
	assert.Equal(t, audio.StatePlaying, h.State())
	assert.Zero(t, p.Stats().Finished)

	f.src.playing = false
	f.src.callbacks[1]()
	assert.Equal(t, audio.StateIdle, h.State())
	assert.Equal(t, uint64(1), p.Stats().Finished)

	// a duplicate completion is harmless
	f.src.callbacks[1]()
	assert.Equal(t, audio.StateIdle, h.State())
	assert.Equal(t, uint64(1), p.Stats().Finished)
}
