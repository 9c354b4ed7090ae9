// Package session owns the signed-in user. Every surface (CLI, local TUI,
// SSH TUI) goes through a Session: it validates input before any request,
// keeps the persisted userData blob in step with the server, and is the one
// place the theme preference is read.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"taskmate/internal/domain"
	"taskmate/internal/logging"
	"taskmate/internal/storage"
	"taskmate/internal/theme"
	"taskmate/internal/validate"
)

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrInvalidInput = errors.New("invalid input")
)

// InputError carries per-field validation messages. It matches
// ErrInvalidInput with errors.Is.
type InputError struct {
	Fields validate.Errors
}

func (e *InputError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// FieldErrors extracts validation messages from err, or nil.
func FieldErrors(err error) validate.Errors {
	var in *InputError
	if errors.As(err, &in) {
		return in.Fields
	}
	return nil
}

func invalid(fields validate.Errors) error {
	if fields.Empty() {
		return nil
	}
	return &InputError{Fields: fields}
}

// API is the slice of the REST client a Session needs.
type API interface {
	Register(ctx context.Context, name, email, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	UpdateUser(ctx context.Context, id int64, upd domain.ProfileUpdate) (domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListTasks(ctx context.Context, userID int64) ([]domain.Task, error)
	GetTask(ctx context.Context, id int64) (domain.Task, error)
	CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error)
	UpdateTask(ctx context.Context, id int64, draft domain.TaskDraft) (domain.Task, error)
	CompleteTask(ctx context.Context, id int64) (domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Session is safe for concurrent use.
type Session struct {
	store  storage.Store
	api    API
	logger *log.Logger

	mu       sync.RWMutex
	user     domain.User
	loggedIn bool
}

type Option func(*Session)

func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a signed-out Session; call Load to pick up a stored user.
func New(store storage.Store, client API, opts ...Option) *Session {
	s := &Session{store: store, api: client, logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted user, if any.
func (s *Session) Load() (domain.User, bool, error) {
	u, ok, err := storage.LoadUser(s.store)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("load user: %w", err)
	}
	s.mu.Lock()
	s.user, s.loggedIn = u, ok
	s.mu.Unlock()
	return u, ok, nil
}

// User returns the signed-in user.
func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.loggedIn
}

// Preference is the stored theme flag; light while nobody is signed in.
func (s *Session) Preference() theme.Preference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Theme
}

// Palette resolves the current preference. TASKMATE_THEME, when set to light
// or dark, wins over the stored flag.
func (s *Session) Palette() theme.Palette {
	return theme.ResolveFromEnv(s.Preference())
}

func (s *Session) current() (domain.User, error) {
	u, ok := s.User()
	if !ok {
		return domain.User{}, ErrNotLoggedIn
	}
	return u, nil
}

func (s *Session) remember(u domain.User) error {
	if err := storage.SaveUser(s.store, u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	s.mu.Lock()
	s.user, s.loggedIn = u, true
	s.mu.Unlock()
	return nil
}

func (s *Session) forget() error {
	s.mu.Lock()
	s.user, s.loggedIn = domain.User{}, false
	s.mu.Unlock()
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	return nil
}

// Register creates the account and signs in as it. Invalid credentials
// return an *InputError without contacting the server.
func (s *Session) Register(ctx context.Context, c validate.Credentials) (domain.User, error) {
	if err := invalid(c.Register()); err != nil {
		return domain.User{}, err
	}
	u, err := s.api.Register(ctx, c.Name, c.Email, c.Password)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.remember(u); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("registered", "user_id", u.ID)
	return u, nil
}

// Login signs in with email and password.
func (s *Session) Login(ctx context.Context, c validate.Credentials) (domain.User, error) {
	if err := invalid(c.Login()); err != nil {
		return domain.User{}, err
	}
	u, err := s.api.Login(ctx, c.Email, c.Password)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.remember(u); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("logged in", "user_id", u.ID)
	return u, nil
}

// Logout wipes local storage.
func (s *Session) Logout() error {
	if u, ok := s.User(); ok {
		s.logger.Info("logged out", "user_id", u.ID)
	}
	return s.forget()
}

// UpdateProfile saves name and email. The current theme is sent along so
// the record the server echoes back keeps the palette unchanged.
func (s *Session) UpdateProfile(ctx context.Context, name, email string) (domain.User, error) {
	u, err := s.current()
	if err != nil {
		return domain.User{}, err
	}
	if msg := validate.Profile(name, email); msg != "" {
		return domain.User{}, invalid(validate.Errors{"profile": msg})
	}
	updated, err := s.api.UpdateUser(ctx, u.ID, domain.ProfileUpdate{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Theme: u.Theme,
	})
	if err != nil {
		return domain.User{}, err
	}
	if err := s.remember(updated); err != nil {
		return domain.User{}, err
	}
	return updated, nil
}

// ToggleTheme flips the preference on the server and in storage and
// returns the new palette.
func (s *Session) ToggleTheme(ctx context.Context) (theme.Palette, error) {
	u, err := s.current()
	if err != nil {
		return theme.Palette{}, err
	}
	updated, err := s.api.UpdateUser(ctx, u.ID, domain.ProfileUpdate{
		Name:  u.Name,
		Email: u.Email,
		Theme: u.Theme.Toggle(),
	})
	if err != nil {
		return theme.Palette{}, err
	}
	if err := s.remember(updated); err != nil {
		return theme.Palette{}, err
	}
	s.logger.Debug("theme toggled", "user_id", updated.ID, "theme", updated.Theme)
	return theme.ResolveFromEnv(updated.Theme), nil
}

// DeleteAccount removes the account remotely, then wipes local storage.
func (s *Session) DeleteAccount(ctx context.Context) error {
	u, err := s.current()
	if err != nil {
		return err
	}
	if err := s.api.DeleteUser(ctx, u.ID); err != nil {
		return err
	}
	s.logger.Info("account deleted", "user_id", u.ID)
	return s.forget()
}
