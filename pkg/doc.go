// Package pkg provides the core libraries of the photo booth.
//
// # Overview
//
// A booth session captures a fixed number of photos behind a countdown and
// composes them into a decorated strip or grid. The pkg directory is organized
// into three areas:
//
//  1. Capture - frame sources, the capture sequencer and uploads
//  2. Composition - layouts, decorations and the compositor
//  3. Infrastructure - caching, configuration, export, errors and hooks
//
// # Architecture
//
// The typical data flow of a session:
//
//	FrameSource (live feed, frame directory) or uploaded files
//	         ↓
//	    [sequencer] (countdown → capture → next slot, retakes)
//	         ↓
//	    [raster.Slots] (ordered, immutable captures)
//	         ↓
//	    [pipeline] (cache lookup, [compose] render, PNG encode)
//	         ↓
//	    [export] (photo-strip-<ms>.png in the output directory)
//
// # Quick Start
//
// Capture a four-photo strip from a feed and save it:
//
//	feed := source.NewFeed()
//	go source.NewPattern(640, 480).Run(ctx, feed, 15)
//
//	m, _ := sequencer.New(feed, sequencer.WithCountdown(3))
//	loop := sequencer.NewLoop(m, nil)
//	go loop.Run(ctx)
//
//	_ = loop.Start(ctx)
//	_, _ = loop.Wait(ctx, func(s sequencer.State) bool { return s.Phase == sequencer.Complete })
//
//	runner := pipeline.NewRunner(nil, nil, nil, logger)
//	res, _ := runner.Execute(ctx, m.Slots(), pipeline.Options{Layout: "4v"})
//	path, _ := res.Save(dir)
//
// # Main Packages
//
// ## Capture
//
// [source] - Frame sources: a single-slot live [source.Feed], a file-backed
// [source.Directory] camera and an animated test [source.Pattern].
//
// [sequencer] - The capture state machine. It is timer-free: operations return
// the timers they need and [sequencer.Machine.Fire] delivers them, so the
// booth UI and the headless [sequencer.Loop] share one implementation.
//
// [upload] - Decodes photo files into slot-sized rasters.
//
// [raster] - Immutable captured images and the ordered slot collection.
//
// ## Composition
//
// [layout] - The layout catalog (2h, 3v, 4v, 4g, 6g, 9g) and the single mode.
//
// [decor] - Filters, frame colors and gradients, overlays, stickers and the
// asset loaders that rasterize them.
//
// [compose] - Canvas geometry, rendering and the bounded-concurrency
// [compose.Compositor].
//
// [fonts] - Embedded fonts for the branding band.
//
// ## Infrastructure
//
// [pipeline] - Composes a slot collection with caching; shared by every
// command.
//
// [cache] - Memory, file and null caches plus key derivation.
//
// [config] - The persisted TOML settings.
//
// [theme] - Terminal color themes.
//
// [export] - Collision-free atomic file export.
//
// [errors] - Coded errors shared by all packages.
//
// [observability] - Hook interfaces for capture, compose and cache events.
//
// [buildinfo] - Version information set at link time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/sequencer/...          # Specific package
//	go test -run Example                 # Examples only
package pkg
