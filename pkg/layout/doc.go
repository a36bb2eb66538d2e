// Package layout defines layout descriptors and the layout catalog.
//
// A [Descriptor] tells the capture sequencer how many shots to take and the
// compositor how to arrange them:
//
//	d := layout.Default.Resolve("4g") // 4 photos, 2 columns x 2 rows
//	d.PhotoCount                      // 4
//	d.Position(2)                     // column 0, row 1
//
// Descriptors are immutable values. Selecting a new layout never migrates
// existing photos; callers reset their slot collection instead.
//
// Unknown identifiers resolve to [DefaultID] rather than failing, so a stale
// config value or a typo degrades to the standard four-photo strip.
package layout
