package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gopxl/beep"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/udisondev/ss3go/internal/audio/mixer"
	"github.com/udisondev/ss3go/internal/config"
)

const DefaultConfigPath = "config/gameserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "gameserver",
		Short:        "Game server with interactive items and pooled positional audio",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), cfgPath)
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		"config file (default $GAMESERVER_CONFIG or "+DefaultConfigPath+")")

	root.AddCommand(
		runCommand(&cfgPath),
		simulateCommand(&cfgPath),
	)
	return root
}

// loadConfig reads .env, resolves the config path, loads the config and
// installs the default logger at the configured level.
func loadConfig(path string) (config.GameServer, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.GameServer{}, fmt.Errorf("loading .env: %w", err)
	}

	if path == "" {
		path = DefaultConfigPath
		if p := os.Getenv("GAMESERVER_CONFIG"); p != "" {
			path = p
		}
	}

	cfg, err := config.LoadGameServer(path)
	if err != nil {
		return cfg, fmt.Errorf("loading game config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	slog.Info("config loaded",
		"path", path,
		"log_level", cfg.LogLevel,
		"min_sources", cfg.Audio.MinSources,
		"max_sources", cfg.Audio.MaxSources,
		"purge_interval", cfg.Audio.PurgeInterval)

	return cfg, nil
}

// openOutput opens the sound card when asked to, falling back to a
// headless mixer when no device is available.
func openOutput(cfg config.Audio) *mixer.Output {
	sr := beep.SampleRate(cfg.SampleRate)
	if cfg.Device {
		out, err := mixer.NewDevice(sr, cfg.BufferSize)
		if err == nil {
			return out
		}
		slog.Warn("audio device unavailable, running headless", "error", err)
	}
	return mixer.NewOffline(sr)
}
