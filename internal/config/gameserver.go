package config

import (
	"errors"
	"fmt"
	"time"
)

// Audio holds the sound pool and playback backend settings.
type Audio struct {
	MinSources    int           `yaml:"min_sources"`    // created eagerly at startup
	MaxSources    int           `yaml:"max_sources"`    // above this a purge pass is worthwhile
	PurgeInterval time.Duration `yaml:"purge_interval"` // default: 30m

	SampleRate int           `yaml:"sample_rate"` // Hz
	BufferSize time.Duration `yaml:"buffer_size"` // speaker buffer length
	Device     bool          `yaml:"device"`      // false = headless (offline mixer, real-time pump)

	ClipsDir     string        `yaml:"clips_dir"`
	ClipCacheTTL time.Duration `yaml:"clip_cache_ttl"`
}

// Items holds gameplay settings for interactive items.
type Items struct {
	InteractionRange float64       `yaml:"interaction_range"` // world units
	BellSound        string        `yaml:"bell_sound"`
	SpraySound       string        `yaml:"spray_sound"`
	SprayCooldown    time.Duration `yaml:"spray_cooldown"`
}

// Aim holds player aiming settings.
type Aim struct {
	RotationSpeed float64 `yaml:"rotation_speed"`
}

// Metrics holds the Prometheus endpoint settings.
type Metrics struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bind_address"`
}

// GameServer holds all configuration for the game server.
type GameServer struct {
	LogLevel string `yaml:"log_level"` // debug|info|warn|error

	Audio   Audio   `yaml:"audio"`
	Items   Items   `yaml:"items"`
	Aim     Aim     `yaml:"aim"`
	Metrics Metrics `yaml:"metrics"`
}

// DefaultGameServer returns GameServer config with sensible defaults.
func DefaultGameServer() GameServer {
	return GameServer{
		LogLevel: "info",
		Audio: Audio{
			MinSources:    30,
			MaxSources:    100,
			PurgeInterval: 30 * time.Minute,
			SampleRate:    48000,
			BufferSize:    100 * time.Millisecond,
			Device:        false,
			ClipsDir:      "assets/sounds",
			ClipCacheTTL:  10 * time.Minute,
		},
		Items: Items{
			InteractionRange: 1.5,
			BellSound:        "service_bell",
			SpraySound:       "pepper_spray",
			SprayCooldown:    2 * time.Second,
		},
		Aim: Aim{
			RotationSpeed: 25,
		},
		Metrics: Metrics{
			Enabled:     true,
			BindAddress: "127.0.0.1:9102",
		},
	}
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks cross-field constraints.
func (c GameServer) Validate() error {
	a := c.Audio
	switch {
	case a.MinSources < 0:
		return fmt.Errorf("%w: audio.min_sources must be >= 0, got %d", ErrInvalidConfig, a.MinSources)
	case a.MaxSources < a.MinSources:
		return fmt.Errorf("%w: audio.max_sources (%d) < audio.min_sources (%d)", ErrInvalidConfig, a.MaxSources, a.MinSources)
	case a.PurgeInterval <= 0:
		return fmt.Errorf("%w: audio.purge_interval must be positive", ErrInvalidConfig)
	case a.SampleRate <= 0:
		return fmt.Errorf("%w: audio.sample_rate must be positive", ErrInvalidConfig)
	case a.BufferSize <= 0:
		return fmt.Errorf("%w: audio.buffer_size must be positive", ErrInvalidConfig)
	case c.Items.InteractionRange <= 0:
		return fmt.Errorf("%w: items.interaction_range must be positive", ErrInvalidConfig)
	case c.Items.SprayCooldown < 0:
		return fmt.Errorf("%w: items.spray_cooldown must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// LoadGameServer loads game server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadGameServer(path string) (GameServer, error) {
	cfg := DefaultGameServer()

	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}
