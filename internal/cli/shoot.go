package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/photobooth/pkg/config"
	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/raster"
	"github.com/matzehuels/photobooth/pkg/sequencer"
)

// shootCommand creates the headless capture command.
func (c *CLI) shootCommand() *cobra.Command {
	var (
		flags     compositeFlags
		frames    string
		countdown int
		mirror    bool
	)

	cmd := &cobra.Command{
		Use:   "shoot",
		Short: "Capture a full strip without the interactive booth",
		Long: `Shoot runs one complete capture sequence with countdowns, then composes
and saves the strip.

Frames come from --frames (a directory of images, taken in name order) or,
without it, from an animated test pattern.`,
		Example: `  photobooth shoot --frames ./webcam-dump
  photobooth shoot --layout 6g --countdown 0 --frame rainbow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("countdown") {
				if err := errors.ValidateCountdown(countdown); err != nil {
					return err
				}
				cfg.Countdown = countdown
			}
			if cmd.Flags().Changed("mirror") {
				cfg.Mirror = mirror
			}
			return c.runShoot(cmd.Context(), cfg, frames, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&frames, "frames", "", "directory of images to use as the camera")
	cmd.Flags().IntVar(&countdown, "countdown", sequencer.DefaultCountdown, "countdown seconds before each shot")
	cmd.Flags().BoolVar(&mirror, "mirror", true, "mirror captured frames")

	return cmd
}

func (c *CLI) runShoot(ctx context.Context, cfg config.Config, frames string, noCache bool) error {
	cam, err := openCamera(frames, defaultFPS)
	if err != nil {
		return err
	}

	m, err := sequencer.New(cam,
		sequencer.WithCountdown(cfg.Countdown),
		sequencer.WithMirror(cfg.Mirror),
		sequencer.WithLayout(cfg.Descriptor()),
		sequencer.WithMode(cfg.LayoutMode()),
	)
	if err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	slots, err := capture(ctx, cam, m)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Captured %d photos", slots.Filled()))

	runner, err := c.newRunner(cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	return c.exportComposite(ctx, runner, slots, cfg, noCache)
}

// capture runs one full sequence on m and returns a copy of the filled slots.
func capture(ctx context.Context, cam *camera, m *sequencer.Machine) (*raster.Slots, error) {
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	loop := sequencer.NewLoop(m, nil)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return cam.run(gctx) })
	g.Go(func() error {
		if err := loop.Run(gctx); err != nil && runCtx.Err() == nil {
			return err
		}
		return nil
	})

	updates, unsubscribe := loop.Subscribe()
	defer unsubscribe()
	g.Go(func() error {
		reportProgress(gctx, updates)
		return nil
	})

	slots, err := func() (*raster.Slots, error) {
		if err := loop.Start(runCtx); err != nil {
			return nil, err
		}
		if _, err := loop.Wait(runCtx, func(s sequencer.State) bool {
			return s.Phase == sequencer.Complete
		}); err != nil {
			return nil, err
		}
		var out *raster.Slots
		err := loop.Do(runCtx, func(m *sequencer.Machine) ([]sequencer.Timer, error) {
			out = copySlots(m.Slots())
			return nil, nil
		})
		return out, err
	}()

	stop()
	if werr := g.Wait(); err == nil && werr != nil {
		err = werr
	}
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return slots, err
}

// reportProgress prints one line per countdown step and capture.
func reportProgress(ctx context.Context, updates <-chan sequencer.Update) {
	type mark struct {
		phase     sequencer.Phase
		slot      int
		remaining int
		filled    int
	}
	var last mark
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			s := u.State
			cur := mark{s.Phase, s.ActiveSlot, s.Remaining, s.Filled}
			if cur == last {
				continue
			}
			last = cur
			switch {
			case u.Err != nil:
				printWarning("%s", errors.UserMessage(u.Err))
			case s.Phase == sequencer.CountingDown:
				printInfo("Photo %d of %d in %s", s.ActiveSlot+1, s.Capacity, StyleNumber.Render(fmt.Sprint(s.Remaining)))
			case s.Phase == sequencer.AwaitingNextSlot, s.Phase == sequencer.Complete:
				printDetail("captured %d/%d", s.Filled, s.Capacity)
			}
		}
	}
}

// copySlots returns a slot collection sharing the (immutable) rasters of s,
// safe to hand to another goroutine while the machine keeps running.
func copySlots(s *raster.Slots) *raster.Slots {
	out := raster.NewSlots(s.Len())
	for i, r := range s.Rasters() {
		if r != nil {
			_ = out.Set(i, r)
		}
	}
	return out
}
