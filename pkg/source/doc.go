// Package source defines the FrameSource contract and a few implementations.
//
// A FrameSource is the live video collaborator: it reports whether a frame is
// available and snapshots the current frame into an immutable raster,
// optionally mirrored horizontally. Mirroring happens here and only here;
// the compositor never re-mirrors.
//
// Implementations:
//   - [Feed]: a single-slot mailbox fed by any producer goroutine. Publish
//     overwrites the previous frame; Snapshot copies the latest one.
//   - [Pattern]: a synthetic camera that renders numbered test frames into a
//     Feed, used by the CLI demo and tests.
//   - [Directory]: a file-backed camera that returns the images of a
//     directory in name order, cycling.
//
// Device acquisition and selection are outside this package.
package source
