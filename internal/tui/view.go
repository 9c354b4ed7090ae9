package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"taskmate/internal/domain"
)

const dueLayout = "Mon Jan 2 2006 15:04"

// View renders header, body, status line and key help.
func (m Model) View() string {
	parts := []string{m.renderHeader(), m.renderBody()}
	if line := m.renderStatus(); line != "" {
		parts = append(parts, line)
	}
	parts = append(parts, m.styles.Muted.Render(m.help()))
	out := strings.Join(parts, "\n\n")
	if m.width > 0 {
		out = m.styles.Base.Width(m.width).Render(out)
	}
	return out
}

func (m Model) renderHeader() string {
	title := "TaskMate // " + m.screen.String()
	right := ""
	if u, ok := m.backend.User(); ok {
		right = u.Name
	}
	if m.remote != "" {
		right = strings.TrimSpace(right + " @ " + m.remote)
	}
	header := m.styles.Header.Render(title)
	if right == "" {
		return header
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, header, m.styles.Muted.Render("  "+right))
}

func (m Model) renderBody() string {
	switch m.screen {
	case ScreenStart:
		return strings.Join([]string{
			m.styles.Primary.Render("Organize your tasks."),
			"",
			"Press enter or l to log in, r to create an account.",
		}, "\n")
	case ScreenHome:
		return m.renderTaskList()
	case ScreenTaskDetails:
		return m.renderTask()
	case ScreenProfile:
		body := m.form.view(m.styles)
		if m.confirm {
			body += "\n" + m.styles.Logout.Render("Delete your account? (y/N)")
		}
		return body
	default:
		return m.form.view(m.styles)
	}
}

func (m Model) renderTaskList() string {
	if len(m.tasks) == 0 {
		return m.styles.Muted.Render("No tasks yet. Press a to add one.")
	}
	var b strings.Builder
	for i, t := range m.tasks {
		marker := "  "
		title := t.Title
		if i == m.cursor {
			marker = m.styles.Primary.Render("> ")
			title = m.styles.Primary.Render(title)
		}
		fmt.Fprintf(&b, "%s%s  %s\n", marker, title, m.styles.Muted.Render("Status: "+statusText(t.Status)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderTask() string {
	t := m.task
	lines := []string{
		m.styles.Primary.Render(t.Title),
		t.Description,
		"Status: " + statusText(t.Status),
		"Due: " + dueText(t.Due),
	}
	body := m.styles.Card.Render(strings.Join(lines, "\n"))
	if m.confirm {
		body += "\n" + m.styles.Logout.Render("Delete this task? (y/N)")
	}
	return body
}

func (m Model) renderStatus() string {
	switch {
	case m.busy:
		return m.styles.Muted.Render("Working...")
	case m.alert != "":
		return m.styles.Error.Render(m.alert)
	case m.notice != "":
		return m.styles.Primary.Render(m.notice)
	}
	return ""
}

func (m Model) help() string {
	switch m.screen {
	case ScreenStart:
		return "enter/l log in • r register • q quit"
	case ScreenLogin, ScreenRegister:
		return "tab next field • enter submit • esc back"
	case ScreenHome:
		return "↑/↓ move • enter open • a add • p profile • r refresh • t theme • o log out • q quit"
	case ScreenTaskDetails:
		return "e edit • d done • x delete • t theme • esc back"
	case ScreenAddTask, ScreenEditTask:
		return "tab next field • enter save • esc cancel"
	case ScreenProfile:
		return "tab next field • enter save • ctrl+t theme • ctrl+d delete account • esc back"
	}
	return ""
}

func statusText(s domain.Status) string {
	if s == "" {
		return string(domain.StatusPending)
	}
	return string(s)
}

func dueText(due *time.Time) string {
	if due == nil {
		return "not set"
	}
	return due.In(time.Local).Format(dueLayout)
}
