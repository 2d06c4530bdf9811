package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/udisondev/ss3go/internal/gameserver"
)

func runCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the game server until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), *cfgPath)
		},
	}
}

func runServer(ctx context.Context, cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	srv, err := gameserver.NewServer(cfg, openOutput(cfg.Audio))
	if err != nil {
		return fmt.Errorf("creating game server: %w", err)
	}
	defer srv.Close()

	slog.Info("game server starting")

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("game server: %w", err)
	}

	slog.Info("game server stopped", "sources", srv.Pool().Size())
	return nil
}
