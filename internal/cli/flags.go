package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photobooth/pkg/config"
	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/layout"
)

// compositeFlags are the layout and decoration flags shared by shoot and
// compose. Flags left unset keep the value from the config file.
type compositeFlags struct {
	layout   string
	mode     string
	filter   string
	frame    string
	overlay  string
	stickers []string
	output   string
	noCache  bool
}

func (f *compositeFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.layout, "layout", "l", "", "layout: "+strings.Join(layout.Default.IDs(), ", "))
	fl.StringVar(&f.mode, "mode", "", "capture mode: strip or single")
	fl.StringVar(&f.filter, "filter", "", "filter preset or expression, e.g. \"sepia(0.5) blur(1px)\"")
	fl.StringVar(&f.frame, "frame", "", "frame color ID or hex color")
	fl.StringVar(&f.overlay, "overlay", "", "overlay ID or asset path (\"none\" to clear)")
	fl.StringArrayVar(&f.stickers, "sticker", nil, "sticker as ID or ID@anchor (repeatable, max 3)")
	fl.StringVarP(&f.output, "output", "o", "", "output directory")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// apply overrides cfg with every flag the user set.
func (f *compositeFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fl := cmd.Flags()
	if fl.Changed("layout") {
		if _, ok := layout.Default.Lookup(f.layout); !ok {
			return errors.New(errors.ErrCodeInvalidLayout, "unknown layout %q (available: %s)",
				f.layout, strings.Join(layout.Default.IDs(), ", "))
		}
		cfg.Layout = f.layout
	}
	if fl.Changed("mode") {
		if _, ok := layout.ParseMode(f.mode); !ok {
			return errors.New(errors.ErrCodeInvalidInput, "unknown mode %q (use strip or single)", f.mode)
		}
		cfg.Mode = f.mode
	}
	if fl.Changed("filter") {
		cfg.Filter = f.filter
	}
	if fl.Changed("frame") {
		cfg.FrameColor = f.frame
	}
	if fl.Changed("overlay") {
		cfg.Overlay = f.overlay
	}
	if fl.Changed("sticker") {
		ps, err := parsePlacements(f.stickers)
		if err != nil {
			return err
		}
		cfg.Stickers = ps
	}
	if f.output != "" {
		cfg.OutputDir = f.output
	}
	return nil
}

// parsePlacements parses sticker flags of the form "id" or "id@anchor".
// "none" clears the list.
func parsePlacements(values []string) ([]decor.Placement, error) {
	var out []decor.Placement
	for _, v := range values {
		if v == "none" {
			return nil, nil
		}
		id, anchor, _ := strings.Cut(v, "@")
		if id == "" {
			return nil, errors.New(errors.ErrCodeInvalidDecoration, "sticker %q has no id", v)
		}
		p := decor.Placement{Sticker: id, Anchor: decor.Anchor(anchor)}
		if anchor != "" && !p.Anchor.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidDecoration, "unknown anchor %q in %q", anchor, v)
		}
		out = append(out, p)
	}
	return out, nil
}
