// Package theme defines the color themes of the booth's terminal UI.
//
// A theme is a small palette of hex colors. [Theme.Styles] turns it into
// lipgloss styles for the TUI and the CLI status output. Unknown theme IDs
// resolve to [DefaultID], so a stale config value never breaks startup.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultID is the theme used when none, or an unknown one, is selected.
const DefaultID = "purple"

// Palette holds the theme colors as hex strings.
type Palette struct {
	Primary      string
	PrimaryLight string
	Secondary    string
	Accent       string
	Background   string
	Text         string
	// Title is the gradient used for the app title.
	Title []string
}

// Theme is a named palette.
type Theme struct {
	ID     string
	Name   string
	Colors Palette
}

var themes = []Theme{
	{
		ID:   "purple",
		Name: "Purple Night",
		Colors: Palette{
			Primary:      "#8b5cf6",
			PrimaryLight: "#a78bfa",
			Secondary:    "#ec4899",
			Accent:       "#06b6d4",
			Background:   "#0a0a0f",
			Text:         "#ffffff",
			Title:        []string{"#a78bfa", "#f472b6", "#22d3ee"},
		},
	},
	{
		ID:   "pink",
		Name: "Pink Cute",
		Colors: Palette{
			Primary:      "#ff6b9d",
			PrimaryLight: "#ff8fb3",
			Secondary:    "#ff4081",
			Accent:       "#7c4dff",
			Background:   "#fff5f8",
			Text:         "#333333",
			Title:        []string{"#ff6b9d", "#ff8fb3", "#ffb6c1"},
		},
	},
	{
		ID:   "minimal",
		Name: "Minimal White",
		Colors: Palette{
			Primary:      "#1a1a1a",
			PrimaryLight: "#333333",
			Secondary:    "#666666",
			Accent:       "#999999",
			Background:   "#ffffff",
			Text:         "#1a1a1a",
			Title:        []string{"#1a1a1a", "#333333"},
		},
	},
}

// Get returns the theme with the given ID. On a miss it returns the
// default theme and false.
func Get(id string) (Theme, bool) {
	for _, t := range themes {
		if t.ID == id {
			return t, true
		}
	}
	t, _ := Get(DefaultID)
	return t, false
}

// List returns all themes in display order.
func List() []Theme {
	return append([]Theme(nil), themes...)
}

// IDs returns the theme IDs in display order.
func IDs() []string {
	ids := make([]string, len(themes))
	for i, t := range themes {
		ids[i] = t.ID
	}
	return ids
}

// Dark reports whether the theme has a dark background.
func (t Theme) Dark() bool {
	bg, err := colorful.Hex(t.Colors.Background)
	if err != nil {
		return true
	}
	l, _, _ := bg.Lab()
	return l < 0.5
}

// Muted returns the text color faded toward the background by amount
// (0 = text, 1 = background).
func (t Theme) Muted(amount float64) lipgloss.Color {
	text, err1 := colorful.Hex(t.Colors.Text)
	bg, err2 := colorful.Hex(t.Colors.Background)
	if err1 != nil || err2 != nil {
		return lipgloss.Color(t.Colors.Text)
	}
	return lipgloss.Color(text.BlendRgb(bg, amount).Clamped().Hex())
}

// Gradient renders s with its runes colored along the title gradient.
func (t Theme) Gradient(s string) string {
	stops := make([]colorful.Color, 0, len(t.Colors.Title))
	for _, h := range t.Colors.Title {
		if c, err := colorful.Hex(h); err == nil {
			stops = append(stops, c)
		}
	}
	runes := []rune(s)
	if len(stops) == 0 || len(runes) == 0 {
		return s
	}

	var b strings.Builder
	for i, r := range runes {
		c := stops[0]
		if len(stops) > 1 && len(runes) > 1 {
			pos := float64(i) / float64(len(runes)-1) * float64(len(stops)-1)
			seg := min(int(pos), len(stops)-2)
			c = stops[seg].BlendLab(stops[seg+1], pos-float64(seg)).Clamped()
		}
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return b.String()
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Title     lipgloss.Style
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Accent    lipgloss.Style
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Dim       lipgloss.Style
	// Panel frames the preview and thumbnails.
	Panel lipgloss.Style
	// Selected marks the focused option or thumbnail.
	Selected lipgloss.Style
	// Countdown renders the large countdown digit.
	Countdown lipgloss.Style
	// Flash is the full-panel white flash.
	Flash lipgloss.Style
}

// Styles builds the style set for t.
func (t Theme) Styles() Styles {
	c := t.Colors
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.PrimaryLight)),
		Primary:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.Primary)),
		Secondary: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Secondary)),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color(c.Accent)),
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color(c.Text)),
		Muted:     lipgloss.NewStyle().Foreground(t.Muted(0.4)),
		Dim:       lipgloss.NewStyle().Foreground(t.Muted(0.6)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c.Primary)).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(c.Background)).
			Background(lipgloss.Color(c.Primary)),
		Countdown: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Secondary)),
		Flash:     lipgloss.NewStyle().Background(lipgloss.Color("#ffffff")).Foreground(lipgloss.Color("#ffffff")),
	}
}
