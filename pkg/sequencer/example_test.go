package sequencer_test

import (
	"fmt"
	"image"

	"github.com/matzehuels/photobooth/pkg/layout"
	"github.com/matzehuels/photobooth/pkg/sequencer"
	"github.com/matzehuels/photobooth/pkg/source"
)

func ExampleMachine() {
	feed := source.NewFeed()
	feed.Publish(image.NewNRGBA(image.Rect(0, 0, 64, 48)))

	d, _ := layout.Default.Lookup("2h")
	m, err := sequencer.New(feed, sequencer.WithLayout(d), sequencer.WithCountdown(2))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	// Feed every timer straight back; a real driver waits Timer.Delay first.
	timers, _ := m.Start()
	for len(timers) > 0 {
		t := timers[0]
		timers = timers[1:]
		if t.Kind == sequencer.TimerFlashOff {
			continue
		}
		next, _ := m.Fire(t)
		timers = append(timers, next...)

		s := m.State()
		fmt.Printf("%s slot=%d remaining=%d filled=%d\n", s.Phase, s.ActiveSlot, s.Remaining, s.Filled)
	}
	// Output:
	// counting-down slot=0 remaining=1 filled=0
	// awaiting-next-slot slot=1 remaining=0 filled=1
	// counting-down slot=1 remaining=2 filled=1
	// counting-down slot=1 remaining=1 filled=1
	// complete slot=-1 remaining=0 filled=2
}
