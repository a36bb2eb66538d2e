package source

import (
	"github.com/matzehuels/photobooth/pkg/raster"
)

// FrameSource supplies snapshots of a live feed.
//
// Snapshot returns a FEED_UNAVAILABLE error when no frame can be produced
// (no device, permission denied, device busy). Such failures terminate the
// request, never the session.
type FrameSource interface {
	// Available reports whether a current frame exists.
	Available() bool

	// Snapshot copies the current frame into a new raster, flipping it
	// horizontally when mirror is true.
	Snapshot(mirror bool) (*raster.Raster, error)
}
