package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gopxl/beep"
	"github.com/spf13/cobra"

	"github.com/udisondev/ss3go/internal/audio/clip"
	"github.com/udisondev/ss3go/internal/audio/mixer"
	"github.com/udisondev/ss3go/internal/game/aim"
	"github.com/udisondev/ss3go/internal/game/item"
	"github.com/udisondev/ss3go/internal/gameserver"
	"github.com/udisondev/ss3go/internal/model"
)

type simulateOptions struct {
	rings int
	burst int
}

func simulateCommand(cfgPath *string) *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a scripted scene offline and report pool statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}

			srv, err := gameserver.NewServer(cfg, mixer.NewOffline(beep.SampleRate(cfg.Audio.SampleRate)))
			if err != nil {
				return fmt.Errorf("creating game server: %w", err)
			}
			defer srv.Close()

			return simulate(cmd.OutOrStdout(), srv, cfg.Aim.RotationSpeed, opts)
		},
	}

	cmd.Flags().IntVar(&opts.rings, "rings", 3, "how many times the bell is rung")
	cmd.Flags().IntVar(&opts.burst, "burst", 0, "extra overlapping bell sounds, to push the pool past its ceiling")
	return cmd
}

// simulate walks a player up to a service bell and a pepper spray, aims
// at the bell, uses both, lets every sound finish and runs a purge pass.
func simulate(w io.Writer, srv *gameserver.Server, rotationSpeed float64, opts simulateOptions) error {
	player, err := srv.NewPlayer("Assistant", model.NewLocation(0, 0, 0))
	if err != nil {
		return err
	}

	bell, err := srv.SpawnItem(item.KindServiceBell, "ServiceBell", model.NewLocation(1, 0, 0.5))
	if err != nil {
		return err
	}
	spray, err := srv.SpawnItem(item.KindPepperSpray, "PepperSpray", model.NewLocation(-0.5, 0, 1))
	if err != nil {
		return err
	}

	// turn toward the bell
	camera := model.NewLocation(0, 10, -10)
	aimer := aim.NewAimer(rotationSpeed, camera, model.NewLocation(50, 0, 10))
	ray := aim.Ray{Origin: camera, Direction: bell.Location().Sub(camera)}
	in := aim.Input{SecondaryPressed: true, ExamineHeld: true}
	for range 30 {
		aimer.Update(in, 1.0/60, player.Location(), ray)
		in = aim.Input{}
	}
	slog.Debug("player aimed", "yaw", aimer.Yaw(), "camera", aimer.Camera())

	for _, e := range srv.Reachable(player) {
		fmt.Fprintf(w, "within reach: %s %#x\n", e.Name(), e.ObjectID())
	}

	names, err := srv.Interactions(player, bell.ObjectID())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "bell %#x offers %v\n", bell.ObjectID(), names)

	bellClip, err := srv.Clips().Get(clip.BellName)
	if err != nil {
		return err
	}
	out := srv.Output()

	// overlapping rings keep several handles busy at once
	step := bellClip.Len() / 4
	for range opts.rings {
		if err := srv.Interact(player, bell.ObjectID(), "Bell"); err != nil {
			return err
		}
		out.Render(step)
	}

	if err := srv.Interact(player, spray.ObjectID(), "Spray"); err != nil {
		return err
	}
	srv.Tick()

	for range opts.burst {
		srv.Pool().PlayAttached(bellClip, bell)
	}

	peak := srv.Pool().Stats()
	fmt.Fprintf(w, "peak: %d handles, %d playing\n", peak.Size, peak.Playing)

	deadline := out.SampleRate().N(10 * time.Second)
	chunk := out.SampleRate().N(100 * time.Millisecond)
	for rendered := 0; srv.Pool().Stats().Playing > 0; rendered += chunk {
		if rendered > deadline {
			return fmt.Errorf("sounds still playing after %v", 10*time.Second)
		}
		out.Render(chunk)
	}

	res := srv.Pool().Purge()
	st := srv.Pool().Stats()
	fmt.Fprintf(w, "purge: %d -> %d handles, %d purged (skipped=%t)\n", res.Before, res.After, res.Purged, res.Skipped)
	fmt.Fprintf(w, "totals: %d acquired, %d grown, %d finished\n", st.Acquired, st.Grown, st.Finished)

	// carry the spray away from the bell
	if err := srv.Interact(player, spray.ObjectID(), "Pick up"); err != nil {
		return err
	}
	fmt.Fprintf(w, "carrying %s, %d within reach\n", spray.Name(), len(srv.Reachable(player)))

	dest := model.NewLocation(3, 0, 3)
	if err := srv.MovePlayer(player, dest); err != nil {
		return err
	}
	if err := srv.Drop(player, spray.ObjectID()); err != nil {
		return err
	}
	for _, e := range srv.Reachable(player) {
		fmt.Fprintf(w, "dropped at %v: %s %#x\n", dest, e.Name(), e.ObjectID())
	}
	return nil
}
