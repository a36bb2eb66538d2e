package sequencer

import "time"

const (
	// TickInterval is one countdown step.
	TickInterval = time.Second

	// FlashDuration is how long the flash indicator stays raised.
	FlashDuration = 300 * time.Millisecond

	// InterShotPause separates a capture from the next slot's countdown.
	InterShotPause = time.Second

	// DefaultCountdown is the countdown in seconds used when none is configured.
	DefaultCountdown = 3
)

// CountdownOptions are the countdown values offered by the booth UI.
var CountdownOptions = []int{0, 3, 5, 10}

// TimerKind identifies what a timer does when it fires.
type TimerKind int

const (
	// TimerTick decrements the running countdown.
	TimerTick TimerKind = iota
	// TimerFlashOff lowers the flash indicator.
	TimerFlashOff
	// TimerNextShot ends the inter-shot pause.
	TimerNextShot
)

func (k TimerKind) String() string {
	switch k {
	case TimerTick:
		return "tick"
	case TimerFlashOff:
		return "flash-off"
	case TimerNextShot:
		return "next-shot"
	}
	return "unknown"
}

// Timer is a one-shot delay requested by the machine.
type Timer struct {
	Kind  TimerKind
	Delay time.Duration
	// Epoch ties the timer to the machine state that issued it. For
	// TimerFlashOff it identifies the flash instead.
	Epoch uint64
}

// Clock schedules callbacks. The returned function cancels the callback and
// reports whether it was still pending.
type Clock interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// RealClock schedules callbacks on the wall clock.
type RealClock struct{}

// AfterFunc implements Clock using time.AfterFunc.
func (RealClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}
