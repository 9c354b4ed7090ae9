package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"taskmate/internal/api"
	"taskmate/internal/domain"
	"taskmate/internal/session"
	"taskmate/internal/theme"
	"taskmate/internal/validate"
)

type (
	userMsg struct {
		err      error
		fallback string
		next     Screen
		notice   string
	}
	tasksMsg struct {
		tasks []domain.Task
		err   error
	}
	taskMsg struct {
		task     domain.Task
		err      error
		fallback string
		next     Screen
		notice   string
	}
	taskDeletedMsg struct{ err error }
	paletteMsg     struct {
		palette theme.Palette
		err     error
	}
	signedOutMsg struct {
		err      error
		fallback string
		notice   string
	}
)

func alertFor(err error, fallback string) string {
	return api.Alert(err, fallback)
}

func (m Model) login(c validate.Credentials) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		_, err := b.Login(ctx, c)
		return userMsg{err: err, fallback: "Login failed. Please check your email and password.", next: ScreenHome}
	}
}

func (m Model) register(c validate.Credentials) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		_, err := b.Register(ctx, c)
		return userMsg{err: err, next: ScreenHome, notice: "Account registered successfully"}
	}
}

func (m Model) updateProfile(name, email string) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		_, err := b.UpdateProfile(ctx, name, email)
		return userMsg{err: err, fallback: "Failed to update profile.", next: ScreenProfile, notice: "Profile updated successfully."}
	}
}

func (m Model) toggleTheme() tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		p, err := b.ToggleTheme(ctx)
		return paletteMsg{palette: p, err: err}
	}
}

func (m Model) logout() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		return signedOutMsg{err: b.Logout(), fallback: "Failed to log out."}
	}
}

func (m Model) deleteAccount() tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		err := b.DeleteAccount(ctx)
		return signedOutMsg{err: err, fallback: "Failed to delete account.", notice: "Your account has been deleted."}
	}
}

func (m Model) loadTasks() tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		tasks, err := b.Tasks(ctx)
		return tasksMsg{tasks: tasks, err: err}
	}
}

func (m Model) fetchTask(id int64, next Screen) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		t, err := b.Task(ctx, id)
		return taskMsg{task: t, err: err, fallback: "Failed to load the task.", next: next}
	}
}

func (m Model) addTask(f session.TaskForm) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		t, err := b.AddTask(ctx, f)
		return taskMsg{task: t, err: err, fallback: "Failed to add the task.", next: ScreenHome, notice: "Task added successfully"}
	}
}

func (m Model) editTask(id int64, f session.TaskForm) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		t, err := b.EditTask(ctx, id, f)
		return taskMsg{task: t, err: err, fallback: "Failed to update the task.", next: ScreenTaskDetails, notice: "Task updated successfully"}
	}
}

func (m Model) completeTask(id int64) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		t, err := b.CompleteTask(ctx, id)
		return taskMsg{task: t, err: err, fallback: "Failed to update the task.", next: ScreenTaskDetails, notice: "Task marked as completed"}
	}
}

func (m Model) deleteTask(id int64) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		return taskDeletedMsg{err: b.DeleteTask(ctx, id)}
	}
}
