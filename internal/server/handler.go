package server

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	bm "github.com/charmbracelet/wish/bubbletea"

	"taskmate/internal/router"
	"taskmate/internal/session"
	"taskmate/internal/storage"
	"taskmate/internal/tui"
)

// TUIHandler gives every connection its own signed-out Session over memory
// storage, sharing client for API calls.
func TUIHandler(client session.API, logger *log.Logger) bm.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		l := router.Logger(s.Context(), logger)
		sess := session.New(storage.NewMemoryStore(), client, session.WithLogger(l))

		pty, _, _ := s.Pty()
		remote := ""
		if a := s.RemoteAddr(); a != nil {
			remote = a.String()
		}
		m := tui.NewModel(sess, tui.Options{
			Width:      pty.Window.Width,
			Height:     pty.Window.Height,
			RemoteAddr: remote,
			Renderer:   bm.MakeRenderer(s),
			Context:    s.Context(),
		})
		return m, []tea.ProgramOption{tea.WithAltScreen()}
	}
}
