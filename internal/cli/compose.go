package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photobooth/pkg/config"
	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/pipeline"
	"github.com/matzehuels/photobooth/pkg/raster"
	"github.com/matzehuels/photobooth/pkg/sequencer"
	"github.com/matzehuels/photobooth/pkg/source"
	"github.com/matzehuels/photobooth/pkg/upload"
)

// composeCommand creates the compose command for building a strip from
// existing photos.
func (c *CLI) composeCommand() *cobra.Command {
	var flags compositeFlags

	cmd := &cobra.Command{
		Use:   "compose [photos...]",
		Short: "Compose existing photos into a strip",
		Long: `Compose decodes the given photos, fills the layout's slots in order and
writes the decorated composite to the output directory.

Photos beyond the layout's capacity are ignored; files that cannot be
decoded are skipped with a warning.`,
		Example: `  photobooth compose a.jpg b.jpg c.jpg d.jpg
  photobooth compose --layout 4g --frame pink --sticker hearts@top-right *.png
  photobooth compose --mode single --filter vintage portrait.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}
			return c.runCompose(cmd.Context(), cfg, args, flags.noCache)
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runCompose(ctx context.Context, cfg config.Config, paths []string, noCache bool) error {
	logger := loggerFromContext(ctx)

	slots, err := uploadSlots(cfg, paths, logger.Warn)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	return c.exportComposite(ctx, runner, slots, cfg, noCache)
}

// uploadSlots decodes paths and places them into the slots of the configured
// layout, the same way an upload fills the booth.
func uploadSlots(cfg config.Config, paths []string, warn func(msg any, keyvals ...any)) (*raster.Slots, error) {
	m, err := sequencer.New(source.NewFeed(),
		sequencer.WithLayout(cfg.Descriptor()),
		sequencer.WithMode(cfg.LayoutMode()),
		sequencer.WithMirror(false),
	)
	if err != nil {
		return nil, err
	}

	d := m.Layout()
	batch, err := upload.Load(paths, d.PhotoCount, source.DefaultWidth, source.DefaultHeight)
	if err != nil {
		return nil, err
	}
	for _, skipped := range batch.Skipped {
		warn("photo skipped", "err", errors.UserMessage(skipped))
	}
	if batch.Truncated > 0 {
		warn("layout is full, ignoring extra photos", "layout", d.ID, "ignored", batch.Truncated)
	}

	n, err := m.Upload(batch.Rasters)
	if err != nil {
		return nil, err
	}
	if !m.Slots().Full() {
		return nil, errors.New(errors.ErrCodeIncompleteSlots,
			"layout %q needs %d photos, got %d", d.ID, d.PhotoCount, n)
	}
	return m.Slots(), nil
}

// exportComposite renders slots and saves the result to cfg.OutputDir.
func (c *CLI) exportComposite(ctx context.Context, runner *pipeline.Runner, slots *raster.Slots, cfg config.Config, refresh bool) error {
	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinner(ctx, fmt.Sprintf("Composing %s...", cfg.Layout))
	spinner.Start()

	res, err := runner.Execute(ctx, slots, pipeline.Options{
		Layout:  cfg.Layout,
		Mode:    cfg.LayoutMode(),
		Decor:   cfg.Decor(),
		Refresh: refresh,
	})
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Compose failed")
		return err
	}

	spinner.Update("Saving...")
	path, err := res.Save(cfg.OutputDir)
	if err != nil {
		spinner.StopWithError("Save failed")
		return err
	}
	spinner.StopWithSuccess("Saved %s", res.Layout.Name)
	prog.done(fmt.Sprintf("Composed %s", res.Layout.ID))
	printFile(path)
	printCompositeStats(res.Width, res.Height, res.Stats.Photos, len(res.Skipped), res.CacheInfo.CompositeHit)
	return nil
}
