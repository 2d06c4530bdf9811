// Package gameserver wires the sound pool, the playback backend and the
// interactive items into one running server.
package gameserver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/ss3go/internal/audio"
	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/audio/mixer"
	"github.com/udisondev/ss3go/internal/clock"
	"github.com/udisondev/ss3go/internal/config"
	"github.com/udisondev/ss3go/internal/game/interaction"
	"github.com/udisondev/ss3go/internal/game/item"
	"github.com/udisondev/ss3go/internal/model"
	"github.com/udisondev/ss3go/internal/world"
)

// TickInterval is how often spawned items are updated.
const TickInterval = 100 * time.Millisecond

// ErrNoSuchObject is returned when an interaction names an unknown object.
var ErrNoSuchObject = errors.New("no such object")

// ErrNotCarried is returned by Drop for an item the player does not hold.
var ErrNotCarried = errors.New("item not carried")

// Server owns every long-lived component. Build it with NewServer, drive
// it with Run, and release it with Close.
type Server struct {
	cfg    config.GameServer
	clock  clock.Clock
	output *mixer.Output
	clips  *clip.Library
	pool   *audio.Pool
	items  *item.Registry
	ids    *world.ObjectIDGenerator
	world  *world.World

	registry *prometheus.Registry

	mu       sync.RWMutex
	entities map[uint32]item.Entity
	listener net.Listener // metrics endpoint, nil until ServeMetrics
}

// Option configures a Server.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock replaces the real clock for the purge timer and item cooldowns.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// NewServer builds the server around out. The output's sample rate
// decides the rate clips are decoded to.
func NewServer(cfg config.GameServer, out *mixer.Output, opts ...Option) (*Server, error) {
	o := options{clock: clock.Real{}}
	for _, opt := range opts {
		opt(&o)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := audio.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("registering audio metrics: %w", err)
	}

	clips := clip.NewLibrary(cfg.Audio.ClipsDir, out.SampleRate(), cfg.Audio.ClipCacheTTL)
	clips.RegisterBuiltins()

	pool, err := audio.NewPool(audio.Config{
		MinSize:       cfg.Audio.MinSources,
		MaxSize:       cfg.Audio.MaxSources,
		PurgeInterval: cfg.Audio.PurgeInterval,
	}, out, audio.WithClock(o.clock), audio.WithMetrics(metrics))
	if err != nil {
		return nil, fmt.Errorf("creating audio pool: %w", err)
	}

	items := item.NewRegistry(item.Env{
		Sounds:        pool,
		Clips:         clips,
		Clock:         o.clock,
		Range:         cfg.Items.InteractionRange,
		BellSound:     cfg.Items.BellSound,
		SpraySound:    cfg.Items.SpraySound,
		SprayCooldown: cfg.Items.SprayCooldown,
	})
	items.RegisterDefaults()

	return &Server{
		cfg:      cfg,
		clock:    o.clock,
		output:   out,
		clips:    clips,
		pool:     pool,
		items:    items,
		ids:      world.NewObjectIDGenerator(),
		world:    world.New(),
		registry: reg,
		entities: make(map[uint32]item.Entity),
	}, nil
}

// Pool returns the sound pool.
func (s *Server) Pool() *audio.Pool {
	return s.pool
}

// Output returns the playback backend.
func (s *Server) Output() *mixer.Output {
	return s.output
}

// Clips returns the clip library.
func (s *Server) Clips() *clip.Library {
	return s.clips
}

// Registry returns the Prometheus registry the server exports.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// World returns the spatial index of players and items.
func (s *Server) World() *world.World {
	return s.world
}

// NewPlayer creates a player with a fresh id and places it in the world.
func (s *Server) NewPlayer(name string, loc model.Location) (*model.WorldObject, error) {
	obj := model.NewWorldObject(s.ids.NextPlayerID(), name, loc)
	if err := s.world.AddObject(obj); err != nil {
		return nil, fmt.Errorf("adding player: %w", err)
	}
	return obj, nil
}

// SpawnItem creates an item of kind at loc and places it in the world.
func (s *Server) SpawnItem(kind, name string, loc model.Location) (item.Entity, error) {
	obj := model.NewWorldObject(s.ids.NextItemID(), name, loc)

	e, err := s.items.Spawn(kind, obj)
	if err != nil {
		return nil, err
	}
	if err := s.world.AddObject(obj); err != nil {
		return nil, fmt.Errorf("placing %s: %w", kind, err)
	}

	s.mu.Lock()
	s.entities[e.ObjectID()] = e
	s.mu.Unlock()

	return e, nil
}

// Entity returns the spawned item with objectID.
func (s *Server) Entity(objectID uint32) (item.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[objectID]
	return e, ok
}

// EntityCount returns the number of spawned items.
func (s *Server) EntityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Reachable returns the items within interaction range of player,
// ordered by object id.
func (s *Server) Reachable(player interaction.Object) []item.Entity {
	var out []item.Entity
	s.world.ForEachInRange(player.Location(), s.cfg.Items.InteractionRange, func(obj *model.WorldObject) bool {
		if e, ok := s.Entity(obj.ObjectID()); ok {
			out = append(out, e)
		}
		return true
	})
	slices.SortFunc(out, func(a, b item.Entity) int {
		return cmp.Compare(a.ObjectID(), b.ObjectID())
	})
	return out
}

// Interactions lists the interactions player can perform on objectID now.
func (s *Server) Interactions(player interaction.Object, objectID uint32) ([]string, error) {
	e, ok := s.Entity(objectID)
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrNoSuchObject, objectID)
	}
	ev := interaction.Event{Source: player, Target: e, Point: e.Location()}
	return interaction.Names(interaction.Available(e, ev), ev), nil
}

// Interact performs the named interaction of player on objectID. The
// listener moves to the player first so the resulting sound is heard
// from their position.
func (s *Server) Interact(player interaction.Object, objectID uint32, name string) error {
	e, ok := s.Entity(objectID)
	if !ok {
		return fmt.Errorf("%w: %#x", ErrNoSuchObject, objectID)
	}

	s.output.SetListener(player.Location())

	ev := interaction.Event{Source: player, Target: e, Point: e.Location()}
	if _, err := interaction.Perform(e, ev, name); err != nil {
		return err
	}

	// carried items leave the world index until dropped
	if e.Holder() != nil {
		s.world.RemoveObject(objectID)
	}
	return nil
}

// Drop puts the item objectID carried by player back into the world at
// the player's feet.
func (s *Server) Drop(player interaction.Object, objectID uint32) error {
	e, ok := s.Entity(objectID)
	if !ok {
		return fmt.Errorf("%w: %#x", ErrNoSuchObject, objectID)
	}
	if e.Holder() != player {
		return fmt.Errorf("%w: %#x is not carried by %s", ErrNotCarried, objectID, player.Name())
	}

	e.Drop()
	obj := e.Object()
	obj.SetLocation(player.Location())
	if err := s.world.AddObject(obj); err != nil {
		return fmt.Errorf("dropping %s: %w", obj.Name(), err)
	}

	slog.Debug("item dropped",
		"object", obj.Name(),
		"objectID", objectID,
		"by", player.Name())
	return nil
}

// MovePlayer moves player to loc, re-filing it in the world grid.
func (s *Server) MovePlayer(player *model.WorldObject, loc model.Location) error {
	if !s.world.MoveObject(player.ObjectID(), loc) {
		return fmt.Errorf("%w: %#x", ErrNoSuchObject, player.ObjectID())
	}
	return nil
}

// Tick updates every spawned item once.
func (s *Server) Tick() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entities {
		e.Update()
	}
}

func (s *Server) runTicker(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Run starts the purge timer, the world ticker, the headless mixer pump
// and, when enabled, the metrics endpoint. Blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	var ln net.Listener
	if s.cfg.Metrics.Enabled {
		var err error
		ln, err = net.Listen("tcp", s.cfg.Metrics.BindAddress)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", s.cfg.Metrics.BindAddress, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.pool.Start(gctx)
	})

	g.Go(func() error {
		return s.runTicker(gctx)
	})

	g.Go(func() error {
		return s.output.Pump(gctx, s.cfg.Audio.BufferSize)
	})

	if ln != nil {
		g.Go(func() error {
			return s.ServeMetrics(gctx, ln)
		})
	}

	slog.Info("game server running",
		"sampleRate", int(s.output.SampleRate()),
		"device", s.output.Device(),
		"sources", s.pool.Size(),
		"metrics", s.cfg.Metrics.Enabled)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close tears down the pool and silences the output.
func (s *Server) Close() {
	s.pool.Close()
	s.output.Close()
}
