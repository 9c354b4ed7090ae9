package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"taskmate/internal/theme"
)

func themeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or toggle the color theme",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the active palette",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				printPalette(cmd.OutOrStdout(), a.sess.Preference(), a.sess.Palette())
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Switch between light and dark",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.sess.ToggleTheme(cmd.Context())
				if err != nil {
					return failure(err, "Failed to update theme.")
				}
				printPalette(cmd.OutOrStdout(), a.sess.Preference(), p)
				return nil
			},
		},
	)
	return cmd
}

func printPalette(out io.Writer, pref theme.Preference, p theme.Palette) {
	fmt.Fprintf(out, "Theme: %s\n", pref)
	for _, role := range theme.Roles {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(p.Hex(role))).Render("   ")
		fmt.Fprintf(out, "  %-10s %-16s %s %s\n", role, p.Color(role), p.Hex(role), swatch)
	}
}
