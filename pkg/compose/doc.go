// Package compose renders captured photos and decorations into one image.
//
// # Geometry
//
// Every photo is cover-cropped into a fixed cell. Cells sit row-major in the
// layout grid (col = i mod cols, row = i div cols) separated by a gap, inside
// a padding, with a branding band below:
//
//	width  = cellW*cols + gap*(cols-1) + 2*padding
//	height = cellH*rows + gap*(rows-1) + 2*padding + brandingReserve
//
// A single-column layout uses the photo count instead of rows.
//
// # Rendering
//
// [Render] is pure pixel work: background fill, photos clipped to rounded
// cells with the filter applied, border strokes, overlay, stickers, and the
// branding line. Identical inputs, including the branding date, produce
// identical pixels.
//
// [Compositor.Compose] wraps Render with the I/O: it validates decorations,
// loads overlay and sticker assets concurrently with a per-asset timeout, and
// encodes PNG. A decoration that fails to load is skipped and reported in
// [Result.Skipped]; it never fails the composite.
//
// [Previewer] coalesces renders for live previews: starting a new render
// cancels the one in flight.
package compose
