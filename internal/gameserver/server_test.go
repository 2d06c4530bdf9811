package gameserver

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/audio/mixer"
	"github.com/udisondev/ss3go/internal/config"
	"github.com/udisondev/ss3go/internal/game/interaction"
	"github.com/udisondev/ss3go/internal/game/item"
	"github.com/udisondev/ss3go/internal/model"
	"github.com/udisondev/ss3go/internal/testutil"
)

const testRate = 8000

// beep1ms is eight samples of silence at testRate.
func beep1ms() beep.Streamer {
	return beep.Take(8, beep.Silence(-1))
}

func testConfig(t *testing.T) config.GameServer {
	t.Helper()
	cfg := config.DefaultGameServer()
	cfg.Audio.MinSources = 2
	cfg.Audio.MaxSources = 4
	cfg.Audio.SampleRate = testRate
	cfg.Audio.BufferSize = 10 * time.Millisecond
	cfg.Audio.ClipsDir = t.TempDir()
	cfg.Metrics.BindAddress = "127.0.0.1:0"
	return cfg
}

func newTestServer(t *testing.T, cfg config.GameServer, opts ...Option) *Server {
	t.Helper()
	srv, err := NewServer(cfg, mixer.NewOffline(testRate), opts...)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewServer(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testConfig(t))

	assert.Equal(t, 2, srv.Pool().Size())
	assert.Equal(t, 2, srv.Clips().Len(), "built-in clips registered")
	assert.Zero(t, srv.EntityCount())
	assert.Nil(t, srv.Addr())
}

func TestNewServer_InvalidPool(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Audio.MaxSources = 1

	_, err := NewServer(cfg, mixer.NewOffline(testRate))
	assert.Error(t, err)
}

func TestServer_RingBell(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testConfig(t))

	player, err := srv.NewPlayer("Assistant", model.NewLocation(0, 0, 0))
	require.NoError(t, err)
	bell, err := srv.SpawnItem(item.KindServiceBell, "ServiceBell", model.NewLocation(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, srv.EntityCount())

	names, err := srv.Interactions(player, bell.ObjectID())
	require.NoError(t, err)
	assert.Equal(t, []string{"Bell", "Pick up"}, names)

	require.NoError(t, srv.Interact(player, bell.ObjectID(), "Bell"))
	assert.Equal(t, player.Location(), srv.Output().Listener())

	st := srv.Pool().Stats()
	assert.Equal(t, 1, st.Playing)

	bellClip, err := srv.Clips().Get(clip.BellName)
	require.NoError(t, err)
	srv.Output().Render(bellClip.Len() + 100)

	st = srv.Pool().Stats()
	assert.Zero(t, st.Playing)
	assert.Equal(t, uint64(1), st.Finished)
}

func TestServer_OutOfReach(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testConfig(t))

	player, err := srv.NewPlayer("Assistant", model.NewLocation(0, 0, 0))
	require.NoError(t, err)
	bell, err := srv.SpawnItem(item.KindServiceBell, "ServiceBell", model.NewLocation(10, 0, 0))
	require.NoError(t, err)

	names, err := srv.Interactions(player, bell.ObjectID())
	require.NoError(t, err)
	assert.Empty(t, names)

	err = srv.Interact(player, bell.ObjectID(), "Bell")
	assert.ErrorIs(t, err, interaction.ErrUnavailable)
}

func TestServer_UnknownObject(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testConfig(t))
	player, err := srv.NewPlayer("Assistant", model.Location{})
	require.NoError(t, err)

	_, err = srv.Interactions(player, 0x30000999)
	assert.ErrorIs(t, err, ErrNoSuchObject)
	assert.ErrorIs(t, srv.Interact(player, 0x30000999, "Bell"), ErrNoSuchObject)

	_, err = srv.SpawnItem("Toolbox", "Toolbox", model.Location{})
	assert.ErrorIs(t, err, item.ErrUnknownKind)
}

func TestServer_SprayCooldown(t *testing.T) {
	t.Parallel()
	clk := testutil.NewManualClock(time.Unix(0, 0))
	srv := newTestServer(t, testConfig(t), WithClock(clk))

	player, err := srv.NewPlayer("Security", model.Location{})
	require.NoError(t, err)
	spray, err := srv.SpawnItem(item.KindPepperSpray, "PepperSpray", model.NewLocation(0, 0, 1))
	require.NoError(t, err)

	require.NoError(t, srv.Interact(player, spray.ObjectID(), "Spray"))
	srv.Tick()

	assert.ErrorIs(t, srv.Interact(player, spray.ObjectID(), "Spray"), interaction.ErrUnavailable)

	clk.Advance(srv.cfg.Items.SprayCooldown)
	assert.NoError(t, srv.Interact(player, spray.ObjectID(), "Spray"))
}

func TestServer_RunServesMetrics(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testConfig(t))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	testutil.WaitFor(t, func() bool { return srv.Addr() != nil }, 2*time.Second)
	addr := srv.Addr().String()
	require.NoError(t, testutil.WaitForTCPReady(addr, 2*time.Second))

	resp, err := http.Get("http://" + addr + metricsPath)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "audio_pool_handles 2")

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServer_RunPurgesPool(t *testing.T) {
	t.Parallel()
	clk := testutil.NewManualClock(time.Unix(0, 0))
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	srv := newTestServer(t, cfg, WithClock(clk))

	short := clip.FromStreamer("tick", testRate, beep1ms())
	for range 6 {
		srv.Pool().PlayAt(short, model.Location{})
	}
	srv.Output().Render(100)
	require.Equal(t, 6, srv.Pool().Size())
	require.Zero(t, srv.Pool().Stats().Playing)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	testutil.WaitFor(t, func() bool { return clk.PendingTimers() == 1 }, 2*time.Second)
	clk.Advance(cfg.Audio.PurgeInterval)
	testutil.WaitFor(t, func() bool { return srv.Pool().Size() == 2 }, 2*time.Second)

	cancel()
	assert.NoError(t, <-errCh)
}

func TestServer_Reachable(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testConfig(t))

	player, err := srv.NewPlayer("Assistant", model.Location{})
	require.NoError(t, err)
	bell, err := srv.SpawnItem(item.KindServiceBell, "ServiceBell", model.NewLocation(1, 0, 0))
	require.NoError(t, err)
	spray, err := srv.SpawnItem(item.KindPepperSpray, "PepperSpray", model.NewLocation(-1, 0, -1))
	require.NoError(t, err)
	_, err = srv.SpawnItem(item.KindServiceBell, "FarBell", model.NewLocation(40, 0, 40))
	require.NoError(t, err)

	got := srv.Reachable(player)
	require.Len(t, got, 2)
	assert.Equal(t, bell.ObjectID(), got[0].ObjectID())
	assert.Equal(t, spray.ObjectID(), got[1].ObjectID())

	assert.Equal(t, 4, srv.World().ObjectCount(), "player and three items")

	require.NoError(t, srv.MovePlayer(player, model.NewLocation(40, 0, 39)))
	got = srv.Reachable(player)
	require.Len(t, got, 1)
	assert.Equal(t, "FarBell", got[0].Name())
}

func TestServer_PickUpLeavesWorldUntilDropped(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testConfig(t))

	player, err := srv.NewPlayer("Assistant", model.Location{})
	require.NoError(t, err)
	spray, err := srv.SpawnItem(item.KindPepperSpray, "PepperSpray", model.NewLocation(0.5, 0, 0.5))
	require.NoError(t, err)
	require.Len(t, srv.Reachable(player), 1)

	require.NoError(t, srv.Interact(player, spray.ObjectID(), "Pick up"))
	assert.Same(t, player, spray.Holder())
	assert.Empty(t, srv.Reachable(player), "carried items are not offered")
	_, inWorld := srv.World().GetObject(spray.ObjectID())
	assert.False(t, inWorld)
	assert.Equal(t, 1, srv.EntityCount())

	dest := model.NewLocation(20, 0, 20)
	require.NoError(t, srv.MovePlayer(player, dest))
	require.NoError(t, srv.Drop(player, spray.ObjectID()))

	assert.Nil(t, spray.Holder())
	assert.Equal(t, dest, spray.Location())
	got := srv.Reachable(player)
	require.Len(t, got, 1)
	assert.Equal(t, spray.ObjectID(), got[0].ObjectID())

	assert.ErrorIs(t, srv.Drop(player, spray.ObjectID()), ErrNotCarried)
	assert.ErrorIs(t, srv.Drop(player, 0x30000999), ErrNoSuchObject)
}

func TestServer_MovePlayerUnknown(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testConfig(t))

	stray := model.NewWorldObject(0x10000999, "Stray", model.Location{})
	assert.ErrorIs(t, srv.MovePlayer(stray, model.NewLocation(1, 0, 1)), ErrNoSuchObject)
}
