package source

import (
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/raster"
)

// FeedStats is a snapshot of feed counters.
type FeedStats struct {
	Published uint64    // frames received from the producer
	Dropped   uint64    // frames overwritten before any snapshot saw them
	Snapshots uint64    // successful snapshots
	LastFrame time.Time // when the latest frame arrived
	Width     int
	Height    int
}

// Feed is a single-slot mailbox holding the latest live frame.
//
// Publish never blocks and overwrites the previous frame. Snapshot copies the
// latest frame, so producers may keep publishing while a snapshot is taken.
// All methods are safe for concurrent use.
type Feed struct {
	mu     sync.Mutex
	frame  image.Image
	seen   bool
	closed bool
	stats  FeedStats
	now    func() time.Time
}

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{now: time.Now}
}

// Publish replaces the current frame. The producer must not modify img after
// publishing it. Publishing to a closed feed is a no-op.
func (f *Feed) Publish(img image.Image) {
	if img == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	if f.frame != nil && !f.seen {
		f.stats.Dropped++
	}
	f.frame = img
	f.seen = false
	f.stats.Published++
	f.stats.LastFrame = f.now()
	b := img.Bounds()
	f.stats.Width, f.stats.Height = b.Dx(), b.Dy()
}

// Close marks the feed as gone. Later snapshots fail with FEED_UNAVAILABLE.
// Idempotent.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.frame = nil
}

// Available reports whether a frame has been published and the feed is open.
func (f *Feed) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed && f.frame != nil
}

// Latest returns the current frame for live preview, or nil. Unlike
// Snapshot it neither copies nor counts the frame; callers must not modify
// it.
func (f *Feed) Latest() image.Image {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	return f.frame
}

// Snapshot implements FrameSource.
func (f *Feed) Snapshot(mirror bool) (*raster.Raster, error) {
	f.mu.Lock()
	frame, closed := f.frame, f.closed
	if frame != nil {
		f.seen = true
	}
	f.mu.Unlock()

	if closed {
		return nil, errors.New(errors.ErrCodeFeedUnavailable, "camera feed closed")
	}
	if frame == nil {
		return nil, errors.New(errors.ErrCodeFeedUnavailable, "no camera frame available yet")
	}

	at := f.now()
	var snap *raster.Raster
	if mirror {
		snap = raster.Adopt(imaging.FlipH(frame), raster.OriginCapture, true, at)
	} else {
		snap = raster.New(frame, raster.OriginCapture, false, at)
	}

	f.mu.Lock()
	f.stats.Snapshots++
	f.mu.Unlock()
	return snap, nil
}

// Stats returns a snapshot of the feed counters.
func (f *Feed) Stats() FeedStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

var _ FrameSource = (*Feed)(nil)
