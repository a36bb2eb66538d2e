package cli

import (
	"context"
	"image"

	"github.com/matzehuels/photobooth/pkg/source"
)

// defaultFPS is the preview frame rate of the test-pattern camera.
const defaultFPS = 15

// camera pairs a frame source with the producer that keeps it fed.
type camera struct {
	source.FrameSource

	// feed is nil for file-backed cameras.
	feed *source.Feed
	run  func(ctx context.Context) error
	desc string
}

// openCamera returns a directory camera when dir is set, and an animated test
// pattern otherwise. The pattern's first frame is published before
// openCamera returns so a capture can start immediately.
func openCamera(dir string, fps float64) (*camera, error) {
	if dir != "" {
		d, err := source.NewDirectory(dir)
		if err != nil {
			return nil, err
		}
		return &camera{
			FrameSource: d,
			run:         func(ctx context.Context) error { <-ctx.Done(); return nil },
			desc:        dir,
		}, nil
	}

	feed := source.NewFeed()
	pattern := source.NewPattern(source.DefaultWidth, source.DefaultHeight)
	feed.Publish(pattern.Frame(0))
	return &camera{
		FrameSource: feed,
		feed:        feed,
		run: func(ctx context.Context) error {
			if err := pattern.Run(ctx, feed, fps); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
		desc: "test pattern",
	}, nil
}

// Latest returns the live frame for preview, or nil when the camera has no
// live feed.
func (c *camera) Latest() image.Image {
	if c.feed == nil {
		return nil
	}
	return c.feed.Latest()
}
