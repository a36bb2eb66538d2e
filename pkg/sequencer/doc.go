// Package sequencer drives a slot collection to full population, one slot at
// a time, against a [source.FrameSource].
//
// # Machine
//
// [Machine] is a synchronous state machine. It never sleeps and never starts
// goroutines: every operation returns the [Timer] values the caller must
// schedule, and the caller feeds them back through [Machine.Fire] when they
// elapse. This keeps the transition logic deterministic and testable with a
// virtual clock.
//
// Phases:
//
//	Idle --Start/Retake--> CountingDown(T) --tick--> ... --> Capturing
//	Capturing --more slots--> AwaitingNextSlot --pause--> CountingDown(T)
//	Capturing --all filled--> Complete
//
// A countdown of zero skips CountingDown and captures on the same event.
// The flash indicator is a decorative flag with its own timer; it never delays
// the next phase.
//
// # Cancellation
//
// Every timer carries the epoch it was issued in. Layout, mode, and countdown
// changes as well as Cancel bump the epoch, so a timer that fires after a
// cancellation is a no-op.
//
// # Loop
//
// [Loop] owns a Machine on a single goroutine and schedules its timers on a
// [Clock]. Commands from other goroutines are serialized through the loop,
// and observers receive [Update] values through [Loop.Subscribe].
package sequencer
