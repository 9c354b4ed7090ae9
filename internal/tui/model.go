package tui

import (
	"context"
	"net"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskmate/internal/domain"
	"taskmate/internal/session"
	"taskmate/internal/theme"
	"taskmate/internal/validate"
)

// Screen identifies the active view.
type Screen int

const (
	ScreenStart Screen = iota
	ScreenLogin
	ScreenRegister
	ScreenHome
	ScreenTaskDetails
	ScreenAddTask
	ScreenEditTask
	ScreenProfile
)

var screenTitles = map[Screen]string{
	ScreenStart:       "Welcome",
	ScreenLogin:       "Log in",
	ScreenRegister:    "Create account",
	ScreenHome:        "Your tasks",
	ScreenTaskDetails: "Task details",
	ScreenAddTask:     "Add task",
	ScreenEditTask:    "Edit task",
	ScreenProfile:     "Profile",
}

func (s Screen) String() string {
	if t, ok := screenTitles[s]; ok {
		return t
	}
	return "Screen(" + strconv.Itoa(int(s)) + ")"
}

// Backend is what the screens need from a session.
type Backend interface {
	Load() (domain.User, bool, error)
	User() (domain.User, bool)
	Palette() theme.Palette
	Register(ctx context.Context, c validate.Credentials) (domain.User, error)
	Login(ctx context.Context, c validate.Credentials) (domain.User, error)
	Logout() error
	UpdateProfile(ctx context.Context, name, email string) (domain.User, error)
	ToggleTheme(ctx context.Context) (theme.Palette, error)
	DeleteAccount(ctx context.Context) error
	Tasks(ctx context.Context) ([]domain.Task, error)
	Task(ctx context.Context, id int64) (domain.Task, error)
	AddTask(ctx context.Context, f session.TaskForm) (domain.Task, error)
	EditTask(ctx context.Context, id int64, f session.TaskForm) (domain.Task, error)
	CompleteTask(ctx context.Context, id int64) (domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Options configures a Model.
type Options struct {
	Width, Height int
	// RemoteAddr is shown in the header for SSH sessions.
	RemoteAddr string
	// Renderer binds styles to a specific terminal; nil uses the default.
	Renderer *lipgloss.Renderer
	// Context bounds every backend call the model issues.
	Context context.Context
}

// Model is the bubbletea model for the whole client.
type Model struct {
	backend  Backend
	ctx      context.Context
	renderer *lipgloss.Renderer
	styles   theme.Styles

	width, height int
	remote        string

	screen  Screen
	form    form
	tasks   []domain.Task
	cursor  int
	task    domain.Task
	alert   string
	notice  string
	busy    bool
	confirm bool
}

// NewModel builds a model. A stored user skips the start screen.
func NewModel(b Backend, opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	m := Model{
		backend:  b,
		ctx:      ctx,
		renderer: r,
		width:    opts.Width,
		height:   opts.Height,
		remote:   normalizeRemoteAddr(opts.RemoteAddr),
		screen:   ScreenStart,
	}
	if _, ok, err := b.Load(); err != nil {
		m.alert = "Failed to load user data."
	} else if ok {
		m.screen = ScreenHome
	}
	m.restyle()
	return m
}

// Screen reports the active view.
func (m Model) Screen() Screen { return m.screen }

// Palette reports the palette the model is rendering with.
func (m Model) Palette() theme.Palette { return m.styles.Palette }

func (m Model) Init() tea.Cmd {
	if m.screen == ScreenHome {
		return m.loadTasks()
	}
	return nil
}

func (m *Model) restyle() {
	m.styles = theme.NewStylesWithRenderer(m.renderer, m.backend.Palette())
}

func (m *Model) goTo(s Screen) {
	m.screen = s
	m.confirm = false
	m.alert = ""
	switch s {
	case ScreenLogin:
		m.form = newForm(
			field{key: validate.FieldEmail, label: "Email"},
			field{key: validate.FieldPassword, label: "Password", secret: true},
		)
	case ScreenRegister:
		m.form = newForm(
			field{key: validate.FieldName, label: "Name"},
			field{key: validate.FieldEmail, label: "Email"},
			field{key: validate.FieldPassword, label: "Password", secret: true},
		)
	case ScreenAddTask, ScreenEditTask:
		m.form = newForm(
			field{key: validate.FieldTitle, label: "Title"},
			field{key: fieldDescription, label: "Description"},
			field{key: validate.FieldDate, label: "Date (YYYY-MM-DD HH:MM)"},
			field{key: fieldStatus, label: "Status"},
		)
		if s == ScreenEditTask {
			f := session.FormFromTask(m.task)
			m.form.set(validate.FieldTitle, f.Title)
			m.form.set(fieldDescription, f.Description)
			m.form.set(validate.FieldDate, f.Date)
			m.form.set(fieldStatus, f.Status)
		}
	case ScreenProfile:
		u, _ := m.backend.User()
		m.form = newForm(
			field{key: validate.FieldName, label: "Name", value: u.Name},
			field{key: validate.FieldEmail, label: "Email", value: u.Email},
		)
	default:
		m.form = form{}
	}
}

const (
	fieldDescription = "description"
	fieldStatus      = "status"
	fieldProfile     = "profile"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)
	case userMsg:
		return m.onUser(msg)
	case tasksMsg:
		m.busy = false
		if msg.err != nil {
			m.alert = alertFor(msg.err, "Failed to load tasks.")
			return m, nil
		}
		m.tasks = msg.tasks
		m.cursor = clamp(m.cursor, 0, len(m.tasks)-1)
		return m, nil
	case taskMsg:
		return m.onTask(msg)
	case taskDeletedMsg:
		m.busy = false
		if msg.err != nil {
			m.alert = alertFor(msg.err, "Failed to delete the task. Please try again.")
			return m, nil
		}
		m.goTo(ScreenHome)
		m.notice = "Task deleted successfully!"
		return m, m.loadTasks()
	case paletteMsg:
		m.busy = false
		if msg.err != nil {
			m.alert = alertFor(msg.err, "Failed to update theme.")
			return m, nil
		}
		m.restyle()
		return m, nil
	case signedOutMsg:
		m.busy = false
		if msg.err != nil {
			m.alert = alertFor(msg.err, msg.fallback)
			return m, nil
		}
		m.tasks, m.task = nil, domain.Task{}
		m.restyle()
		m.goTo(ScreenStart)
		m.notice = msg.notice
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.notice = ""
	switch m.screen {
	case ScreenStart:
		switch key {
		case "enter", "l":
			m.goTo(ScreenLogin)
		case "r":
			m.goTo(ScreenRegister)
		case "q", "esc":
			return m, tea.Quit
		}
	case ScreenLogin, ScreenRegister:
		switch key {
		case "esc":
			m.goTo(ScreenStart)
		case "enter":
			return m.submit()
		default:
			m.form.update(msg)
		}
	case ScreenAddTask, ScreenEditTask, ScreenProfile:
		return m.handleFormScreen(msg)
	case ScreenHome:
		return m.handleHome(key)
	case ScreenTaskDetails:
		return m.handleDetails(key)
	}
	return m, nil
}

func (m Model) handleHome(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, len(m.tasks)-1)
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, len(m.tasks)-1)
	case "enter":
		if len(m.tasks) == 0 {
			return m, nil
		}
		m.busy = true
		return m, m.fetchTask(m.tasks[m.cursor].ID, ScreenTaskDetails)
	case "a":
		m.goTo(ScreenAddTask)
	case "p":
		m.goTo(ScreenProfile)
	case "r":
		m.busy = true
		return m, m.loadTasks()
	case "t":
		m.busy = true
		return m, m.toggleTheme()
	case "o":
		m.busy = true
		return m, m.logout()
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleDetails(key string) (tea.Model, tea.Cmd) {
	if m.confirm {
		m.confirm = false
		if key == "y" {
			m.busy = true
			return m, m.deleteTask(m.task.ID)
		}
		m.notice = "Task deletion canceled."
		return m, nil
	}
	switch key {
	case "esc", "backspace":
		m.goTo(ScreenHome)
		m.busy = true
		return m, m.loadTasks()
	case "e":
		m.goTo(ScreenEditTask)
	case "d":
		m.busy = true
		return m, m.completeTask(m.task.ID)
	case "x":
		m.confirm = true
	case "t":
		m.busy = true
		return m, m.toggleTheme()
	}
	return m, nil
}

func (m Model) handleFormScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.confirm {
		m.confirm = false
		if key == "y" {
			m.busy = true
			return m, m.deleteAccount()
		}
		return m, nil
	}
	switch key {
	case "esc":
		if m.screen == ScreenEditTask {
			m.goTo(ScreenTaskDetails)
			return m, nil
		}
		m.goTo(ScreenHome)
		m.busy = true
		return m, m.loadTasks()
	case "enter":
		return m.submit()
	}
	if m.screen == ScreenProfile {
		switch key {
		case "ctrl+t":
			m.busy = true
			return m, m.toggleTheme()
		case "ctrl+d":
			m.confirm = true
			return m, nil
		}
	}
	m.form.update(msg)
	return m, nil
}

// submit validates the active form and, when clean, starts the request.
func (m Model) submit() (tea.Model, tea.Cmd) {
	f := m.form
	m.alert = ""
	switch m.screen {
	case ScreenLogin:
		c := validate.Credentials{Email: f.value(validate.FieldEmail), Password: f.value(validate.FieldPassword)}
		if m.form.errs = c.Login(); !m.form.errs.Empty() {
			return m, nil
		}
		m.busy = true
		return m, m.login(c)
	case ScreenRegister:
		c := validate.Credentials{
			Name:     f.value(validate.FieldName),
			Email:    f.value(validate.FieldEmail),
			Password: f.value(validate.FieldPassword),
		}
		if m.form.errs = c.Register(); !m.form.errs.Empty() {
			return m, nil
		}
		m.busy = true
		return m, m.register(c)
	case ScreenAddTask, ScreenEditTask:
		tf := session.TaskForm{
			Title:       f.value(validate.FieldTitle),
			Description: f.value(fieldDescription),
			Date:        f.value(validate.FieldDate),
			Status:      f.value(fieldStatus),
		}
		in := validate.TaskInput{Title: tf.Title, Description: tf.Description, Date: tf.Date}
		if m.screen == ScreenAddTask {
			m.form.errs = in.Add()
		} else {
			m.form.errs = in.Edit()
		}
		if !m.form.errs.Empty() {
			return m, nil
		}
		m.busy = true
		if m.screen == ScreenAddTask {
			return m, m.addTask(tf)
		}
		return m, m.editTask(m.task.ID, tf)
	case ScreenProfile:
		name, email := f.value(validate.FieldName), f.value(validate.FieldEmail)
		m.form.errs = validate.Errors{}
		if msg := validate.Profile(name, email); msg != "" {
			m.form.errs[fieldProfile] = msg
			m.alert = msg
			return m, nil
		}
		m.busy = true
		return m, m.updateProfile(name, email)
	}
	return m, nil
}

func (m Model) onUser(msg userMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		if fields := session.FieldErrors(msg.err); fields != nil {
			m.form.errs = fields
			return m, nil
		}
		m.alert = alertFor(msg.err, msg.fallback)
		return m, nil
	}
	m.restyle()
	if msg.next == m.screen {
		m.notice = msg.notice
		return m, nil
	}
	m.goTo(msg.next)
	m.notice = msg.notice
	if msg.next == ScreenHome {
		m.busy = true
		return m, m.loadTasks()
	}
	return m, nil
}

func (m Model) onTask(msg taskMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		if fields := session.FieldErrors(msg.err); fields != nil {
			m.form.errs = fields
			return m, nil
		}
		m.alert = alertFor(msg.err, msg.fallback)
		return m, nil
	}
	m.task = msg.task
	if msg.next == ScreenHome {
		m.goTo(ScreenHome)
		m.notice = msg.notice
		m.busy = true
		return m, m.loadTasks()
	}
	m.goTo(msg.next)
	m.notice = msg.notice
	return m, nil
}

func normalizeRemoteAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
