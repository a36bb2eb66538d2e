package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/theme"
)

// themeCommand lists the booth themes or selects one.
func (c *CLI) themeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [name]",
		Short:     "List themes or set the booth theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: theme.IDs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				for _, t := range theme.List() {
					fmt.Println(themeLine(t, t.ID == cfg.Theme))
				}
				printNewline()
				printNextStep("Change theme", appName+" theme <name>")
				return nil
			}

			t, ok := theme.Get(args[0])
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, "unknown theme %q (available: %s)",
					args[0], strings.Join(theme.IDs(), ", "))
			}
			cfg.Theme = t.ID
			if err := c.saveConfig(cfg); err != nil {
				return err
			}
			printSuccess("Theme set to %s", t.Gradient(t.Name))
			return nil
		},
	}
}

// themeLine renders a theme as a list entry with a color swatch.
func themeLine(t theme.Theme, current bool) string {
	mark := "  "
	if current {
		mark = styleIconSuccess.Render(iconSuccess) + " "
	}
	s := t.Styles()
	swatch := s.Primary.Render("██") + s.Secondary.Render("██") + s.Accent.Render("██")
	return fmt.Sprintf("%s%-8s %s  %s", mark, t.ID, swatch, t.Gradient(t.Name))
}
