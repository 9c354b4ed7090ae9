package theme

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles the TUI and CLI render with.
type Styles struct {
	Palette Palette

	Base    lipgloss.Style
	Header  lipgloss.Style
	Card    lipgloss.Style
	Primary lipgloss.Style
	Logout  lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles derives styles from p using the default renderer.
func NewStyles(p Palette) Styles {
	return NewStylesWithRenderer(lipgloss.DefaultRenderer(), p)
}

// NewStylesWithRenderer derives styles bound to r, which lets SSH sessions
// render for the remote terminal instead of the server's.
func NewStylesWithRenderer(r *lipgloss.Renderer, p Palette) Styles {
	bg := lipgloss.Color(p.Hex(RoleBackground))
	text := lipgloss.Color(p.Hex(RoleText))
	card := lipgloss.Color(p.Hex(RoleCard))

	return Styles{
		Palette: p,
		Base:    r.NewStyle().Foreground(text).Background(bg),
		Header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.Hex(RoleHeader))).
			Padding(0, 1),
		Card: r.NewStyle().
			Foreground(text).
			Background(card).
			Padding(0, 1).
			MarginBottom(1),
		Primary: r.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Hex(RolePrimary))),
		Logout:  r.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Hex(RoleLogout))),
		Error:   r.NewStyle().Foreground(lipgloss.Color(p.Hex(RoleLogout))),
		Muted:   r.NewStyle().Faint(true).Foreground(text),
	}
}
