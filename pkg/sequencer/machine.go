package sequencer

import (
	"time"

	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/layout"
	"github.com/matzehuels/photobooth/pkg/observability"
	"github.com/matzehuels/photobooth/pkg/raster"
	"github.com/matzehuels/photobooth/pkg/source"
)

// Phase is the sequencer's current activity. Exactly one phase is active.
type Phase int

const (
	Idle Phase = iota
	CountingDown
	Capturing
	AwaitingNextSlot
	Complete
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case CountingDown:
		return "counting-down"
	case Capturing:
		return "capturing"
	case AwaitingNextSlot:
		return "awaiting-next-slot"
	case Complete:
		return "complete"
	}
	return "unknown"
}

// Accepting reports whether the phase accepts new start, retake, and upload
// requests.
func (p Phase) Accepting() bool { return p == Idle || p == Complete }

// State is a read-only view of the machine.
type State struct {
	Phase Phase
	// ActiveSlot is the slot being captured, or -1.
	ActiveSlot int
	// Remaining is the countdown value while CountingDown.
	Remaining int
	// Countdown is the configured countdown in seconds.
	Countdown int
	// Flash is true while the flash indicator is raised.
	Flash bool
	// Retaking is true while a single-slot retake is in progress.
	Retaking bool
	Mirror   bool
	Mode     layout.Mode
	Layout   layout.Descriptor
	Filled   int
	Capacity int
}

// Option configures a Machine.
type Option func(*Machine)

// WithCountdown sets the initial countdown in seconds.
func WithCountdown(seconds int) Option {
	return func(m *Machine) { m.countdown = seconds }
}

// WithMirror sets whether snapshots are mirrored. The default is true.
func WithMirror(mirror bool) Option {
	return func(m *Machine) { m.mirror = mirror }
}

// WithLayout sets the strip layout.
func WithLayout(d layout.Descriptor) Option {
	return func(m *Machine) { m.strip = d }
}

// WithMode sets single or strip mode.
func WithMode(mode layout.Mode) Option {
	return func(m *Machine) { m.mode = mode }
}

// WithHooks overrides the globally registered capture hooks.
func WithHooks(h observability.CaptureHooks) Option {
	return func(m *Machine) {
		if h != nil {
			m.hooks = h
		}
	}
}

// Machine is the capture sequencing state machine. It is not safe for
// concurrent use; drive it from one goroutine (see Loop) or one UI event loop.
type Machine struct {
	src   source.FrameSource
	slots *raster.Slots
	hooks observability.CaptureHooks

	mode      layout.Mode
	strip     layout.Descriptor
	countdown int
	mirror    bool

	phase     Phase
	active    int
	remaining int
	retaking  bool

	epoch    uint64
	flash    bool
	flashSeq uint64
}

// New returns an Idle machine with an empty slot collection sized for the
// configured mode and layout.
func New(src source.FrameSource, opts ...Option) (*Machine, error) {
	if src == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "frame source is required")
	}
	m := &Machine{
		src:       src,
		hooks:     observability.Capture(),
		mode:      layout.ModeStrip,
		strip:     layout.Default.DefaultLayout(),
		countdown: DefaultCountdown,
		mirror:    true,
		active:    -1,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := errors.ValidateCountdown(m.countdown); err != nil {
		return nil, err
	}
	if err := m.strip.Validate(); err != nil {
		return nil, err
	}
	m.slots = raster.NewSlots(m.Layout().PhotoCount)
	return m, nil
}

// Layout returns the descriptor in effect for the current mode.
func (m *Machine) Layout() layout.Descriptor { return layout.ForMode(m.mode, m.strip) }

// Slots returns the slot collection. It is owned by the machine; callers must
// only read it.
func (m *Machine) Slots() *raster.Slots { return m.slots }

// State returns a snapshot of the machine state.
func (m *Machine) State() State {
	return State{
		Phase:      m.phase,
		ActiveSlot: m.active,
		Remaining:  m.remaining,
		Countdown:  m.countdown,
		Flash:      m.flash,
		Retaking:   m.retaking,
		Mirror:     m.mirror,
		Mode:       m.mode,
		Layout:     m.Layout(),
		Filled:     m.slots.Filled(),
		Capacity:   m.slots.Len(),
	}
}

// =============================================================================
// User events
// =============================================================================

// Start begins a full sequence at the first empty slot. From Complete the
// collection is cleared first. Start fails with SEQUENCER_BUSY outside
// Idle/Complete and with FEED_UNAVAILABLE when the source has no frame, in
// which case nothing is mutated.
func (m *Machine) Start() ([]Timer, error) {
	if !m.phase.Accepting() {
		return nil, m.busy("start")
	}
	if !m.src.Available() {
		return nil, m.unavailable(m.slots.FirstEmpty(0))
	}
	if m.phase == Complete || m.slots.Full() {
		m.slots.Reset(m.slots.Len())
	}
	m.active = m.slots.FirstEmpty(0)
	m.retaking = false
	return m.arm()
}

// Retake runs one countdown and capture cycle for slot k alone. The old
// raster stays in place until the new one lands; other slots are untouched.
func (m *Machine) Retake(k int) ([]Timer, error) {
	if !m.phase.Accepting() {
		return nil, m.busy("retake")
	}
	if k < 0 || k >= m.slots.Len() {
		return nil, errors.New(errors.ErrCodeSlotOutOfRange, "slot %d outside 0..%d", k, m.slots.Len()-1)
	}
	if !m.src.Available() {
		return nil, m.unavailable(k)
	}
	m.active = k
	m.retaking = true
	return m.arm()
}

// RetakeAll clears every slot and returns to Idle.
func (m *Machine) RetakeAll() {
	m.reset("retake-all")
}

// Cancel abandons a running countdown or pause. Captured slots are kept.
func (m *Machine) Cancel() {
	m.epoch++
	m.active = -1
	m.remaining = 0
	m.retaking = false
	m.setPhase(m.resting())
}

// SetCountdown changes the configured countdown. A running countdown restarts
// at the new full value; zero captures immediately.
func (m *Machine) SetCountdown(seconds int) ([]Timer, error) {
	if err := errors.ValidateCountdown(seconds); err != nil {
		return nil, err
	}
	m.countdown = seconds
	if m.phase != CountingDown {
		return nil, nil
	}
	m.epoch++
	return m.arm()
}

// SetLayout selects a strip layout. It always hard-resets to Idle with an
// empty collection.
func (m *Machine) SetLayout(d layout.Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	m.strip = d
	m.reset("layout")
	return nil
}

// SetMode switches between single and strip mode with a hard reset.
func (m *Machine) SetMode(mode layout.Mode) {
	m.mode = mode
	m.reset("mode")
}

// SetMirror sets whether future snapshots are mirrored.
func (m *Machine) SetMirror(mirror bool) { m.mirror = mirror }

// Upload replaces the collection with rasters in ascending slot order,
// ignoring nil entries and anything beyond capacity. The machine ends
// Complete when every slot is filled and Idle otherwise. It returns the
// number of slots filled.
func (m *Machine) Upload(rs []*raster.Raster) (int, error) {
	if !m.phase.Accepting() {
		return 0, m.busy("upload")
	}
	m.epoch++
	m.slots.Reset(m.slots.Len())
	m.hooks.OnReset("upload", m.slots.Len())
	n := 0
	for _, r := range rs {
		if n == m.slots.Len() {
			break
		}
		if r == nil {
			continue
		}
		_ = m.slots.Set(n, r)
		n++
	}
	m.active = -1
	m.setPhase(m.resting())
	return n, nil
}

// Place puts r into slot k directly, bypassing the countdown.
func (m *Machine) Place(k int, r *raster.Raster) error {
	if !m.phase.Accepting() {
		return m.busy("place")
	}
	if err := m.slots.Set(k, r); err != nil {
		return err
	}
	m.setPhase(m.resting())
	return nil
}

// =============================================================================
// Timer events
// =============================================================================

// Fire delivers an elapsed timer. Timers from an earlier epoch are ignored.
// The error is non-nil only when a capture triggered by the timer failed.
func (m *Machine) Fire(t Timer) ([]Timer, error) {
	if t.Kind == TimerFlashOff {
		if t.Epoch == m.flashSeq {
			m.flash = false
		}
		return nil, nil
	}
	if t.Epoch != m.epoch {
		return nil, nil
	}
	switch t.Kind {
	case TimerTick:
		if m.phase != CountingDown {
			return nil, nil
		}
		m.remaining--
		if m.remaining <= 0 {
			m.remaining = 0
			return m.capture()
		}
		m.hooks.OnCountdown(m.active, m.remaining)
		return []Timer{m.timer(TimerTick, TickInterval)}, nil
	case TimerNextShot:
		if m.phase != AwaitingNextSlot {
			return nil, nil
		}
		return m.arm()
	}
	return nil, nil
}

// =============================================================================
// Transitions
// =============================================================================

// arm enters CountingDown for the active slot, or captures at once when the
// countdown is zero.
func (m *Machine) arm() ([]Timer, error) {
	if m.countdown == 0 {
		return m.capture()
	}
	m.remaining = m.countdown
	m.setPhase(CountingDown)
	m.hooks.OnCountdown(m.active, m.remaining)
	return []Timer{m.timer(TimerTick, TickInterval)}, nil
}

func (m *Machine) capture() ([]Timer, error) {
	m.setPhase(Capturing)
	slot := m.active

	r, err := m.src.Snapshot(m.mirror)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeFeedUnavailable, err, "snapshot slot %d", slot)
		}
		m.hooks.OnCapture(slot, "", err)
		m.active = -1
		m.retaking = false
		m.setPhase(m.resting())
		return nil, err
	}
	_ = m.slots.Set(slot, r)
	m.hooks.OnCapture(slot, r.ID.String(), nil)

	m.flashSeq++
	m.flash = true
	timers := []Timer{{Kind: TimerFlashOff, Delay: FlashDuration, Epoch: m.flashSeq}}

	if m.retaking {
		m.retaking = false
		m.active = -1
		m.setPhase(m.resting())
		return timers, nil
	}
	if next := m.slots.FirstEmpty(slot + 1); next >= 0 {
		m.active = next
		m.setPhase(AwaitingNextSlot)
		return append(timers, m.timer(TimerNextShot, InterShotPause)), nil
	}
	m.active = -1
	m.setPhase(m.resting())
	return timers, nil
}

func (m *Machine) reset(reason string) {
	m.epoch++
	m.active = -1
	m.remaining = 0
	m.retaking = false
	m.flash = false
	m.slots.Reset(m.Layout().PhotoCount)
	m.hooks.OnReset(reason, m.slots.Len())
	m.setPhase(Idle)
}

// resting is the phase to return to when nothing is scheduled.
func (m *Machine) resting() Phase {
	if m.slots.Full() {
		return Complete
	}
	return Idle
}

func (m *Machine) setPhase(p Phase) {
	if p == m.phase {
		return
	}
	from := m.phase
	m.phase = p
	m.hooks.OnPhase(from.String(), p.String())
}

func (m *Machine) timer(kind TimerKind, d time.Duration) Timer {
	return Timer{Kind: kind, Delay: d, Epoch: m.epoch}
}

func (m *Machine) busy(op string) error {
	return errors.New(errors.ErrCodeSequencerBusy, "cannot %s while %s", op, m.phase)
}

func (m *Machine) unavailable(slot int) error {
	err := errors.New(errors.ErrCodeFeedUnavailable, "no frame available from the camera")
	m.hooks.OnCapture(slot, "", err)
	return err
}
