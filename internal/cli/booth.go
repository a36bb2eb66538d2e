package cli

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/photobooth/pkg/compose"
	"github.com/matzehuels/photobooth/pkg/config"
	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/layout"
	"github.com/matzehuels/photobooth/pkg/pipeline"
	"github.com/matzehuels/photobooth/pkg/sequencer"
	"github.com/matzehuels/photobooth/pkg/source"
	"github.com/matzehuels/photobooth/pkg/theme"
	"github.com/matzehuels/photobooth/pkg/upload"
)

const (
	// previewInterval is the live preview refresh period.
	previewInterval = time.Second / defaultFPS

	// thumbCols is the width of a slot thumbnail in cells.
	thumbCols = 10

	defaultBoothWidth = 80
)

// boothCommand creates the interactive booth command.
func (c *CLI) boothCommand() *cobra.Command {
	var (
		frames  string
		uploads []string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "booth",
		Short: "Run the interactive photo booth",
		Long: `Booth opens the full-screen photo booth: a live preview, countdown
captures, per-slot retakes and decoration controls. Settings changed in the
booth are saved to the config file on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runBooth(cmd.Context(), cfg, frames, uploads, noCache)
		},
	}

	cmd.Flags().StringVar(&frames, "frames", "", "directory of images to use as the camera")
	cmd.Flags().StringArrayVar(&uploads, "upload", nil, "photo to preload into the slots (repeatable)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runBooth(ctx context.Context, cfg config.Config, frames string, uploads []string, noCache bool) error {
	cam, err := openCamera(frames, defaultFPS)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	model, err := newBoothModel(ctx, cfg, cam, runner)
	if err != nil {
		return err
	}
	if len(uploads) > 0 {
		if err := model.preload(uploads); err != nil {
			return err
		}
	}

	// Log lines would tear the alternate screen.
	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(os.Stderr)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return cam.run(gctx) })

	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(runCtx)).Run()
	stop()
	_ = g.Wait()
	if err != nil {
		return err
	}

	if fm, ok := final.(boothModel); ok {
		if err := c.saveConfig(fm.cfg); err != nil {
			printWarning("settings not saved: %s", errors.UserMessage(err))
		}
		if fm.lastSaved != "" {
			printSuccess("Last strip saved")
			printFile(fm.lastSaved)
		}
	}
	return nil
}

// =============================================================================
// Messages
// =============================================================================

// timerMsg delivers an elapsed sequencer timer.
type timerMsg struct{ t sequencer.Timer }

// frameMsg refreshes the live preview.
type frameMsg time.Time

// compositeMsg carries a finished composite preview.
type compositeMsg struct {
	img image.Image
	err error
}

// savedMsg reports the outcome of an export.
type savedMsg struct {
	path string
	res  *pipeline.Result
	err  error
}

// =============================================================================
// boothModel
// =============================================================================

// boothModel is the interactive booth. It owns the sequencer machine; every
// machine call happens inside Update, so the bubbletea event loop serializes
// key presses and timer events.
type boothModel struct {
	ctx       context.Context
	cfg       config.Config
	cam       *camera
	machine   *sequencer.Machine
	runner    *pipeline.Runner
	previewer *compose.Previewer

	theme  theme.Theme
	styles theme.Styles

	// after turns a sequencer timer into a command.
	after func(sequencer.Timer) tea.Cmd

	selected  int
	width     int
	height    int
	frame     image.Image
	composite image.Image
	saving    bool
	lastSaved string
	status    string
	statusErr bool
}

func newBoothModel(ctx context.Context, cfg config.Config, cam *camera, runner *pipeline.Runner) (boothModel, error) {
	m, err := sequencer.New(cam,
		sequencer.WithCountdown(cfg.Countdown),
		sequencer.WithMirror(cfg.Mirror),
		sequencer.WithLayout(cfg.Descriptor()),
		sequencer.WithMode(cfg.LayoutMode()),
	)
	if err != nil {
		return boothModel{}, err
	}
	th, _ := theme.Get(cfg.Theme)
	return boothModel{
		ctx:       ctx,
		cfg:       cfg,
		cam:       cam,
		machine:   m,
		runner:    runner,
		previewer: compose.NewPreviewer(runner.Compositor),
		theme:     th,
		styles:    th.Styles(),
		after:     tickAfter,
		width:     defaultBoothWidth,
		status:    "Press space to start",
	}, nil
}

func tickAfter(t sequencer.Timer) tea.Cmd {
	return tea.Tick(t.Delay, func(time.Time) tea.Msg { return timerMsg{t} })
}

func previewTick() tea.Cmd {
	return tea.Tick(previewInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// preload fills the slots from photo files before the booth opens.
func (m *boothModel) preload(paths []string) error {
	d := m.machine.Layout()
	batch, err := upload.Load(paths, d.PhotoCount, source.DefaultWidth, source.DefaultHeight)
	if err != nil {
		return err
	}
	n, err := m.machine.Upload(batch.Rasters)
	if err != nil {
		return err
	}
	m.status = fmt.Sprintf("Loaded %d of %d photos", n, d.PhotoCount)
	if len(batch.Skipped) > 0 {
		m.status += fmt.Sprintf(", %d skipped", len(batch.Skipped))
	}
	return nil
}

func (m boothModel) Init() tea.Cmd {
	return tea.Batch(previewTick(), m.refreshComposite())
}

func (m boothModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case frameMsg:
		m.frame = m.cam.Latest()
		return m, previewTick()

	case timerMsg:
		before := m.machine.State().Phase
		ts, err := m.machine.Fire(msg.t)
		m.noteErr(err)
		cmds := []tea.Cmd{m.schedule(ts)}
		if s := m.machine.State(); s.Phase == sequencer.Complete && before != sequencer.Complete {
			m.setStatus(doneStatus)
			cmds = append(cmds, m.refreshComposite())
		}
		return m, tea.Batch(cmds...)

	case compositeMsg:
		if errors.Is(msg.err, errors.ErrCodeSuperseded) {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.composite = msg.img
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.lastSaved = msg.path
		m.setStatus("Saved " + msg.path)
		if n := len(msg.res.Skipped); n > 0 {
			m.status += fmt.Sprintf(" (%d decorations skipped)", n)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boothModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.previewer.Cancel()
		return m, tea.Quit

	case " ", "space", "enter":
		ts, err := m.machine.Start()
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.composite = nil
		m.setStatus("Get ready!")
		return m, m.afterCommand(ts)

	case "esc":
		m.machine.Cancel()
		m.setStatus("Cancelled")
		return m, nil

	case "left", "h":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "right", "l":
		if m.selected < m.machine.Slots().Len()-1 {
			m.selected++
		}
		return m, nil

	case "r":
		ts, err := m.machine.Retake(m.selected)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.composite = nil
		m.setStatus(fmt.Sprintf("Retaking photo %d", m.selected+1))
		return m, m.afterCommand(ts)

	case "R":
		m.machine.RetakeAll()
		m.composite = nil
		m.setStatus("Cleared all photos")
		return m, nil

	case "c":
		next := cycle(sequencer.CountdownOptions, m.cfg.Countdown)
		ts, err := m.machine.SetCountdown(next)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.cfg.Countdown = next
		m.setStatus(fmt.Sprintf("Countdown %ds", next))
		return m, m.afterCommand(ts)

	case "L":
		d := cycle(layout.Default.All(), m.cfg.Descriptor())
		if err := m.machine.SetLayout(d); err != nil {
			m.setError(err)
			return m, nil
		}
		m.cfg.Layout = d.ID
		m.resetView()
		m.setStatus("Layout " + d.Name + " (" + d.Description + ")")
		return m, nil

	case "m":
		mode := layout.ModeSingle
		if m.cfg.LayoutMode() == layout.ModeSingle {
			mode = layout.ModeStrip
		}
		m.machine.SetMode(mode)
		m.cfg.Mode = string(mode)
		m.resetView()
		m.setStatus("Mode " + string(mode))
		return m, nil

	case "x":
		m.cfg.Mirror = !m.cfg.Mirror
		m.machine.SetMirror(m.cfg.Mirror)
		m.setStatus(fmt.Sprintf("Mirror %s", onOff(m.cfg.Mirror)))
		return m, nil

	case "f":
		ids := make([]string, len(decor.FilterPresets))
		for i, p := range decor.FilterPresets {
			ids[i] = p.ID
		}
		m.cfg.Filter = cycle(ids, m.cfg.Filter)
		return m, m.decorChanged("Filter " + m.cfg.Filter)

	case "b":
		ids := make([]string, len(decor.FrameColors))
		for i, fc := range decor.FrameColors {
			ids[i] = fc.ID
		}
		m.cfg.FrameColor = cycle(ids, m.cfg.FrameColor)
		return m, m.decorChanged("Frame " + m.cfg.FrameColor)

	case "o":
		ids := []string{""}
		for _, o := range decor.Overlays {
			ids = append(ids, o.ID)
		}
		m.cfg.Overlay = cycle(ids, m.cfg.Overlay)
		return m, m.decorChanged("Overlay " + orNone(m.cfg.Overlay))

	case "k":
		ids := []string{""}
		for _, s := range decor.Stickers {
			ids = append(ids, s.ID)
		}
		cur := ""
		if len(m.cfg.Stickers) > 0 {
			cur = m.cfg.Stickers[0].Sticker
		}
		next := cycle(ids, cur)
		m.cfg.Stickers = nil
		if next != "" {
			m.cfg.Stickers = []decor.Placement{{Sticker: next}}
		}
		return m, m.decorChanged("Sticker " + orNone(next))

	case "t":
		m.theme, _ = theme.Get(cycle(theme.IDs(), m.theme.ID))
		m.cfg.Theme = m.theme.ID
		m.styles = m.theme.Styles()
		m.setStatus("Theme " + m.theme.Name)
		return m, nil

	case "s":
		return m.save()
	}
	return m, nil
}

const doneStatus = "Done! Press s to save, r to retake"

// afterCommand schedules ts and refreshes the composite when the command
// completed the set at once (zero countdown on the last empty slot).
func (m *boothModel) afterCommand(ts []sequencer.Timer) tea.Cmd {
	if m.machine.State().Phase == sequencer.Complete {
		m.setStatus(doneStatus)
		return tea.Batch(m.schedule(ts), m.refreshComposite())
	}
	return m.schedule(ts)
}

func (m *boothModel) schedule(ts []sequencer.Timer) tea.Cmd {
	if len(ts) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(ts))
	for i, t := range ts {
		cmds[i] = m.after(t)
	}
	return tea.Batch(cmds...)
}

func (m *boothModel) decorChanged(status string) tea.Cmd {
	if _, err := m.cfg.Decor().Resolve(); err != nil {
		m.setError(err)
		return nil
	}
	m.setStatus(status)
	return m.refreshComposite()
}

// refreshComposite renders the decorated composite in the background when
// every slot is filled. A newer refresh supersedes an older one.
func (m *boothModel) refreshComposite() tea.Cmd {
	if !m.machine.Slots().Full() {
		return nil
	}
	images, err := copySlots(m.machine.Slots()).Images()
	if err != nil {
		return nil
	}
	req := compose.Request{
		Images: images,
		Layout: m.machine.Layout(),
		Decor:  m.cfg.Decor(),
	}
	ctx, previewer := m.ctx, m.previewer
	return func() tea.Msg {
		res, err := previewer.Render(ctx, req)
		if err != nil {
			return compositeMsg{err: err}
		}
		return compositeMsg{img: res.Image}
	}
}

// save exports the current set. The slot snapshot is taken here so later
// retakes cannot change what is being saved.
func (m boothModel) save() (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	s := m.machine.State()
	if s.Phase != sequencer.Complete {
		m.setError(errors.New(errors.ErrCodeIncompleteSlots, "%d of %d photos taken", s.Filled, s.Capacity))
		return m, nil
	}
	m.saving = true
	m.setStatus("Saving...")

	slots := copySlots(m.machine.Slots())
	cfg, runner, ctx := m.cfg, m.runner, m.ctx
	return m, func() tea.Msg {
		res, err := runner.Execute(ctx, slots, pipeline.Options{
			Layout: cfg.Layout,
			Mode:   cfg.LayoutMode(),
			Decor:  cfg.Decor(),
		})
		if err != nil {
			return savedMsg{err: err}
		}
		path, err := res.Save(cfg.OutputDir)
		return savedMsg{path: path, res: res, err: err}
	}
}

func (m *boothModel) resetView() {
	m.selected = 0
	m.composite = nil
	m.previewer.Cancel()
}

func (m *boothModel) noteErr(err error) {
	if err != nil {
		m.setError(err)
	}
}

func (m *boothModel) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *boothModel) setError(err error) {
	m.status, m.statusErr = errors.UserMessage(err), true
}

// =============================================================================
// View
// =============================================================================

func (m boothModel) View() string {
	st := m.machine.State()
	s := m.styles

	cols := min(max(m.width-6, 20), 72)
	var stage string
	switch {
	case st.Flash:
		rows := previewRows(cols, source.DefaultWidth, source.DefaultHeight)
		stage = s.Flash.Render(blankCells(cols, rows))
	case st.Phase == sequencer.Complete && m.composite != nil:
		b := m.composite.Bounds()
		rows := min(previewRows(cols, b.Dx(), b.Dy()), max(m.height-14, 8))
		stage = renderHalfBlocks(m.composite, cols, rows, previewOptions{})
	default:
		rows := previewRows(cols, source.DefaultWidth, source.DefaultHeight)
		filter, _ := decor.ParseFilter(m.cfg.Filter)
		stage = renderHalfBlocks(m.frame, cols, rows, previewOptions{Mirror: st.Mirror, Filter: filter})
	}

	var b strings.Builder
	b.WriteString(m.theme.Gradient("✦ Photo Booth ✦"))
	b.WriteString("  ")
	b.WriteString(s.Dim.Render(m.cam.desc))
	b.WriteString("\n\n")
	b.WriteString(s.Panel.Render(stage))
	b.WriteString("\n")
	b.WriteString(m.countdownLine(st))
	b.WriteString("\n")
	b.WriteString(m.thumbnails(st))
	b.WriteString("\n\n")
	b.WriteString(m.settingsLine(st))
	b.WriteString("\n")
	if m.statusErr {
		b.WriteString(StyleWarning.Render(m.status))
	} else {
		b.WriteString(s.Text.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(s.Dim.Render("space start · ←/→ select · r retake · R clear · esc cancel · s save · q quit"))
	b.WriteString("\n")
	b.WriteString(s.Dim.Render("c countdown · L layout · m mode · x mirror · f filter · b frame · o overlay · k sticker · t theme"))
	return b.String()
}

func (m boothModel) countdownLine(st sequencer.State) string {
	switch st.Phase {
	case sequencer.CountingDown:
		return m.styles.Countdown.Render(fmt.Sprintf("  %d  ", st.Remaining)) +
			m.styles.Muted.Render(fmt.Sprintf("photo %d of %d", st.ActiveSlot+1, st.Capacity))
	case sequencer.AwaitingNextSlot:
		return m.styles.Muted.Render(fmt.Sprintf("  next: photo %d of %d", st.ActiveSlot+1, st.Capacity))
	}
	return ""
}

// thumbnails renders one small cell per slot, highlighting the selection.
func (m boothModel) thumbnails(st sequencer.State) string {
	slots := m.machine.Slots()
	rows := previewRows(thumbCols, source.DefaultWidth, source.DefaultHeight)
	cells := make([]string, slots.Len())
	for i := range cells {
		var body string
		if r := slots.At(i); r != nil {
			body = renderHalfBlocks(r.Image(), thumbCols, rows, previewOptions{})
		} else {
			body = m.styles.Dim.Render(centered(fmt.Sprint(i+1), thumbCols, rows))
		}
		label := fmt.Sprintf(" %d ", i+1)
		if i == st.ActiveSlot {
			label = m.styles.Accent.Render(label)
		}
		if i == m.selected {
			label = m.styles.Selected.Render(label)
		}
		cells[i] = lipgloss.JoinVertical(lipgloss.Center, body, label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, spaced(cells)...)
}

func (m boothModel) settingsLine(st sequencer.State) string {
	kv := func(k, v string) string {
		return m.styles.Muted.Render(k+" ") + m.styles.Primary.Render(v)
	}
	stickers := make([]string, len(m.cfg.Stickers))
	for i, p := range m.cfg.Stickers {
		stickers[i] = p.Sticker
	}
	parts := []string{
		kv("layout", st.Layout.ID),
		kv("mode", string(st.Mode)),
		kv("countdown", fmt.Sprintf("%ds", st.Countdown)),
		kv("mirror", onOff(st.Mirror)),
		kv("filter", orNone(m.cfg.Filter)),
		kv("frame", orNone(m.cfg.FrameColor)),
		kv("overlay", orNone(m.cfg.Overlay)),
		kv("sticker", orNone(strings.Join(stickers, ","))),
		kv("photos", fmt.Sprintf("%d/%d", st.Filled, st.Capacity)),
	}
	return strings.Join(parts, m.styles.Dim.Render(" · "))
}

// =============================================================================
// Helpers
// =============================================================================

// cycle returns the element after cur in opts, wrapping around. An unknown
// cur yields the first element.
func cycle[T comparable](opts []T, cur T) T {
	for i, o := range opts {
		if o == cur {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}

func centered(s string, cols, rows int) string {
	return lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, s)
}

func spaced(cells []string) []string {
	out := make([]string, 0, 2*len(cells))
	for i, c := range cells {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, c)
	}
	return out
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
