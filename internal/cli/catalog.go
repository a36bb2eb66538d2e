package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/photobooth/pkg/compose"
	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/layout"
)

var catalogHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// layoutsCommand lists the layout catalog.
func (c *CLI) layoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List available layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(layoutTable(layout.Default.All(), cfg.Layout))
			printNewline()
			printNextStep("Shoot with a layout", appName+" shoot --layout <id>")
			return nil
		},
	}
}

// layoutTable renders ds, marking current.
func layoutTable(ds []layout.Descriptor, current string) string {
	rows := make([][]string, 0, len(ds))
	for _, d := range ds {
		mark := " "
		if d.ID == current {
			mark = "●"
		}
		w, h := compose.CanvasSize(d)
		rows = append(rows, []string{
			mark,
			d.ID,
			d.Description,
			fmt.Sprint(d.PhotoCount),
			fmt.Sprintf("%dx%d", d.Grid.Cols, d.Grid.Rows),
			fmt.Sprintf("%dx%d", w, h),
		})
	}
	return catalogTable(rows, func(row int) bool { return ds[row].ID == current },
		"", "ID", "Layout", "Photos", "Grid", "Canvas")
}

// decorationsCommand lists filters, frame colors, overlays, stickers and
// anchors.
func (c *CLI) decorationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "decorations",
		Aliases: []string{"decor"},
		Short:   "List filters, frame colors, overlays and stickers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(decorationTables())
			return nil
		},
	}
}

func decorationTables() string {
	none := func(int) bool { return false }
	var b strings.Builder

	section := func(title, body string) {
		b.WriteString(StyleTitle.Render(title))
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n\n")
	}

	filters := make([][]string, 0, len(decor.FilterPresets))
	for _, f := range decor.FilterPresets {
		expr := f.Expr
		if expr == "" {
			expr = "-"
		}
		filters = append(filters, []string{f.ID, f.Name, expr})
	}
	section("Filters", catalogTable(filters, none, "ID", "Name", "Expression"))

	frames := make([][]string, 0, len(decor.FrameColors))
	for _, fc := range decor.FrameColors {
		frames = append(frames, []string{fc.ID, fc.Name, string(fc.Kind)})
	}
	section("Frame colors", catalogTable(frames, none, "ID", "Name", "Kind"))

	overlays := make([][]string, 0, len(decor.Overlays))
	for _, o := range decor.Overlays {
		overlays = append(overlays, []string{o.ID, o.Name, o.Ref})
	}
	section("Overlays", catalogTable(overlays, none, "ID", "Name", "Asset"))

	stickers := make([][]string, 0, len(decor.Stickers))
	for _, s := range decor.Stickers {
		builtin := ""
		if s.Builtin {
			builtin = "✓"
		}
		stickers = append(stickers, []string{s.ID, s.Name, s.Ref, builtin})
	}
	section("Stickers", catalogTable(stickers, none, "ID", "Name", "Asset", "Built-in"))

	anchors := make([]string, len(decor.Anchors))
	for i, a := range decor.Anchors {
		anchors[i] = string(a)
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("Sticker anchors: %s (max %d stickers)",
		strings.Join(anchors, ", "), decor.MaxStickers)))
	return b.String()
}

// catalogTable renders rows with a header; highlight selects rows drawn in
// the accent color.
func catalogTable(rows [][]string, highlight func(row int) bool, headers ...string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return catalogHeaderStyle.Padding(0, 1)
			case highlight(row):
				return base.Foreground(colorGreen).Bold(true)
			case col == 0:
				return base.Foreground(colorCyan)
			}
			return base.Foreground(colorWhite)
		})
	return t.Render()
}
