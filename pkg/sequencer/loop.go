package sequencer

import (
	"context"
	"sync"

	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/layout"
)

// Update is published to subscribers after every command and timer event.
type Update struct {
	State State
	// Err is the failure of the event that produced this update, if any.
	Err error
}

type command struct {
	fn   func(*Machine) ([]Timer, error)
	done chan error
}

type firing struct {
	t    Timer
	done chan struct{}
}

// Loop owns a Machine on a single goroutine. All access to the machine goes
// through Run's goroutine, so commands and timer events are totally ordered.
type Loop struct {
	m     *Machine
	clock Clock

	cmds  chan command
	fired chan firing
	quit  chan struct{}
	once  sync.Once

	mu   sync.Mutex
	subs map[chan Update]struct{}
}

// NewLoop wraps m. A nil clock means RealClock.
func NewLoop(m *Machine, clock Clock) *Loop {
	if clock == nil {
		clock = RealClock{}
	}
	return &Loop{
		m:     m,
		clock: clock,
		cmds:  make(chan command),
		fired: make(chan firing),
		quit:  make(chan struct{}),
		subs:  make(map[chan Update]struct{}),
	}
}

// Run processes commands and timers until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.quit) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-l.cmds:
			timers, err := c.fn(l.m)
			l.schedule(timers)
			l.publish(err)
			c.done <- err
		case f := <-l.fired:
			timers, err := l.m.Fire(f.t)
			l.schedule(timers)
			l.publish(err)
			close(f.done)
		}
	}
}

// Do runs fn on the loop goroutine and schedules the timers it returns.
func (l *Loop) Do(ctx context.Context, fn func(*Machine) ([]Timer, error)) error {
	c := command{fn: fn, done: make(chan error, 1)}
	select {
	case l.cmds <- c:
	case <-l.quit:
		return errors.New(errors.ErrCodeInternal, "sequencer loop stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins a full capture sequence.
func (l *Loop) Start(ctx context.Context) error {
	return l.Do(ctx, (*Machine).Start)
}

// Retake re-captures slot k.
func (l *Loop) Retake(ctx context.Context, k int) error {
	return l.Do(ctx, func(m *Machine) ([]Timer, error) { return m.Retake(k) })
}

// SetLayout selects a layout, resetting the collection.
func (l *Loop) SetLayout(ctx context.Context, d layout.Descriptor) error {
	return l.Do(ctx, func(m *Machine) ([]Timer, error) { return nil, m.SetLayout(d) })
}

// Cancel abandons a running countdown.
func (l *Loop) Cancel(ctx context.Context) error {
	return l.Do(ctx, func(m *Machine) ([]Timer, error) {
		m.Cancel()
		return nil, nil
	})
}

// State returns the machine state as seen by the loop goroutine.
func (l *Loop) State(ctx context.Context) (State, error) {
	var s State
	err := l.Do(ctx, func(m *Machine) ([]Timer, error) {
		s = m.State()
		return nil, nil
	})
	return s, err
}

// Subscribe returns a channel receiving the latest Update. A slow subscriber
// only ever sees the most recent update; older ones are overwritten. The
// returned function unsubscribes.
func (l *Loop) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 1)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()
	return ch, func() {
		l.mu.Lock()
		delete(l.subs, ch)
		l.mu.Unlock()
	}
}

// Wait blocks until pred holds for the machine state. It returns early with
// the event error when a capture fails and the machine is left waiting for a
// retry.
func (l *Loop) Wait(ctx context.Context, pred func(State) bool) (State, error) {
	ch, unsubscribe := l.Subscribe()
	defer unsubscribe()

	s, err := l.State(ctx)
	if err != nil {
		return s, err
	}
	if pred(s) {
		return s, nil
	}
	for {
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		case <-l.quit:
			return s, errors.New(errors.ErrCodeInternal, "sequencer loop stopped")
		case u := <-ch:
			s = u.State
			if pred(s) {
				return s, nil
			}
			if u.Err != nil && s.Phase.Accepting() {
				return s, u.Err
			}
		}
	}
}

func (l *Loop) schedule(timers []Timer) {
	for _, t := range timers {
		t := t
		l.clock.AfterFunc(t.Delay, func() {
			f := firing{t: t, done: make(chan struct{})}
			select {
			case l.fired <- f:
			case <-l.quit:
				return
			}
			select {
			case <-f.done:
			case <-l.quit:
			}
		})
	}
}

func (l *Loop) publish(err error) {
	u := Update{State: l.m.State(), Err: err}
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs {
		select {
		case ch <- u:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- u
		}
	}
}
