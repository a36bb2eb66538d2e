// Package decor describes everything drawn on a composite besides the photos:
// filters, frame fills, overlays, and stickers.
//
// A [Set] is the user-facing declaration (preset IDs, hex colors, asset
// references). [Set.Resolve] validates it once and produces a [Resolved]
// value whose fields are concrete: a parsed [Filter], a [Fill] that can paint
// itself, and sticker references with anchors. The compositor only ever sees
// resolved decorations.
//
// # Filters
//
// Filter expressions use CSS filter function syntax:
//
//	sepia(50%) contrast(90%) brightness(90%)
//
// Supported functions are grayscale, sepia, saturate, hue-rotate, brightness,
// contrast, invert, and blur. Each color function is a per-pixel affine color
// matrix applied in order with clamping between steps.
//
// # Assets
//
// Overlays and stickers are images referenced relative to an asset
// directory. An [AssetLoader] fetches them; [FileLoader] reads files
// (rasterizing SVG through rsvg-convert, cached), and [Builtin] draws vector
// fallbacks for a few stickers.
package decor
