package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"taskmate/internal/api"
	"taskmate/internal/api/apitest"
	"taskmate/internal/domain"
	"taskmate/internal/session"
	"taskmate/internal/storage"
	"taskmate/internal/theme"
	"taskmate/internal/validate"
)

type fixture struct {
	srv   *apitest.Server
	store *storage.MemoryStore
	sess  *session.Session
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	store := storage.NewMemoryStore()
	return fixture{
		srv:   srv,
		store: store,
		sess:  session.New(store, api.New(srv.URL, api.WithTimeout(2*time.Second))),
	}
}

// signIn seeds an account and logs the session into it.
func (f fixture) signIn(t *testing.T, pref theme.Preference) domain.User {
	t.Helper()
	f.srv.SeedUser("Ada", "ada@example.com", "Secret1!", pref)
	u, err := f.sess.Login(context.Background(), validate.Credentials{Email: "ada@example.com", Password: "Secret1!"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return u
}

func TestSignedOutDefaultsToLight(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, ok, err := f.sess.Load()
	if err != nil || ok {
		t.Fatalf("Load = ok %v err %v", ok, err)
	}
	if diff := cmp.Diff(theme.Light(), f.sess.Palette()); diff != "" {
		t.Fatalf("palette mismatch (-want +got):\n%s", diff)
	}
	if _, err := f.sess.Tasks(context.Background()); !errors.Is(err, session.ErrNotLoggedIn) {
		t.Fatalf("Tasks err = %v", err)
	}
}

func TestRegisterInvalidMakesNoRequest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.sess.Register(context.Background(), validate.Credentials{Name: "", Email: "a@b", Password: "short"})
	if !errors.Is(err, session.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	want := validate.Errors{
		validate.FieldName:     validate.MsgRequired,
		validate.FieldEmail:    validate.MsgInvalidEmail,
		validate.FieldPassword: validate.MsgPasswordLength,
	}
	if diff := cmp.Diff(want, session.FieldErrors(err)); diff != "" {
		t.Fatalf("field errors (-want +got):\n%s", diff)
	}
	if n := f.srv.Requests(); n != 0 {
		t.Fatalf("server saw %d requests", n)
	}
}

func TestRegisterPersistsUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	u, err := f.sess.Register(context.Background(), validate.Credentials{Name: "Ada", Email: "ada@example.com", Password: "Secret1!"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	reloaded := session.New(f.store, nil)
	got, ok, err := reloaded.Load()
	if err != nil || !ok {
		t.Fatalf("Load = ok %v err %v", ok, err)
	}
	if diff := cmp.Diff(u, got); diff != "" {
		t.Fatalf("stored user (-want +got):\n%s", diff)
	}
}

func TestRegisterEmailTakenSurfacesServerMessage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.srv.SeedUser("Ada", "ada@example.com", "Secret1!", theme.PreferenceLight)

	_, err := f.sess.Register(context.Background(), validate.Credentials{Name: "Ada", Email: "ada@example.com", Password: "Secret1!"})
	if got := api.Alert(err, ""); got != "The email has already been taken." {
		t.Fatalf("alert = %q (err %v)", got, err)
	}
	if _, ok := f.sess.User(); ok {
		t.Fatal("failed registration signed in")
	}
}

func TestLogoutClearsStorage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signIn(t, theme.PreferenceDark)

	if err := f.sess.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.store.Get(storage.KeyUserData); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("userData still stored: %v", err)
	}
	if f.sess.Preference() != theme.PreferenceLight {
		t.Fatal("preference survived logout")
	}
}

func TestToggleThemePersistsEverywhere(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	u := f.signIn(t, theme.PreferenceLight)

	pal, err := f.sess.ToggleTheme(context.Background())
	if err != nil {
		t.Fatalf("ToggleTheme: %v", err)
	}
	if diff := cmp.Diff(theme.Dark(), pal); diff != "" {
		t.Fatalf("palette (-want +got):\n%s", diff)
	}
	stored, _, err := storage.LoadUser(f.store)
	if err != nil || stored.Theme != theme.PreferenceDark {
		t.Fatalf("stored theme = %v err %v", stored.Theme, err)
	}
	remote, _ := f.srv.User(u.ID)
	if remote.Theme != theme.PreferenceDark {
		t.Fatalf("remote theme = %v", remote.Theme)
	}

	if _, err := f.sess.ToggleTheme(context.Background()); err != nil {
		t.Fatalf("second ToggleTheme: %v", err)
	}
	if f.sess.Preference() != theme.PreferenceLight {
		t.Fatal("double toggle did not restore light")
	}
}

func TestUpdateProfileKeepsPalette(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signIn(t, theme.PreferenceDark)
	before := f.sess.Palette()

	updated, err := f.sess.UpdateProfile(context.Background(), " Ada Lovelace ", "ada@example.com")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Ada Lovelace" {
		t.Fatalf("name = %q", updated.Name)
	}
	if diff := cmp.Diff(before, theme.Resolve(updated.Theme)); diff != "" {
		t.Fatalf("palette changed (-before +after):\n%s", diff)
	}
}

func TestUpdateProfileRequiresBothFields(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signIn(t, theme.PreferenceLight)
	seen := f.srv.Requests()

	_, err := f.sess.UpdateProfile(context.Background(), "   ", "ada@example.com")
	if !errors.Is(err, session.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if got := session.FieldErrors(err)["profile"]; got != validate.MsgProfileRequired {
		t.Fatalf("message = %q", got)
	}
	if f.srv.Requests() != seen {
		t.Fatal("invalid profile reached the server")
	}
}

func TestTaskFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signIn(t, theme.PreferenceLight)
	ctx := context.Background()

	created, err := f.sess.AddTask(ctx, session.TaskForm{Title: "  Buy milk ", Description: "2 litres"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if created.Title != "Buy milk" || created.Status != domain.StatusPending || created.Due != nil {
		t.Fatalf("created = %+v", created)
	}

	_, err = f.sess.EditTask(ctx, created.ID, session.TaskForm{Title: "Buy milk"})
	if got := session.FieldErrors(err)[validate.FieldDate]; got != validate.MsgTaskDate {
		t.Fatalf("edit without date: %v", err)
	}

	edited, err := f.sess.EditTask(ctx, created.ID, session.TaskForm{
		Title: "Buy oat milk", Date: "2026-03-14T09:30:00Z", Status: "in progress",
	})
	if err != nil {
		t.Fatalf("EditTask: %v", err)
	}
	want := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	if edited.Status != domain.StatusInProgress || edited.Due == nil || !edited.Due.Equal(want) {
		t.Fatalf("edited = %+v", edited)
	}

	done, err := f.sess.CompleteTask(ctx, created.ID)
	if err != nil || !done.Status.Done() {
		t.Fatalf("CompleteTask = %+v, %v", done, err)
	}

	tasks, err := f.sess.Tasks(ctx)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("Tasks = %+v, %v", tasks, err)
	}
	if err := f.sess.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := f.sess.Task(ctx, created.ID); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("Task after delete: %v", err)
	}
}

func TestAddTaskRejectsBadInput(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signIn(t, theme.PreferenceLight)
	seen := f.srv.Requests()

	tests := []struct {
		name  string
		form  session.TaskForm
		field string
		want  string
	}{
		{name: "blank title", form: session.TaskForm{Title: " "}, field: validate.FieldTitle, want: validate.MsgTaskTitle},
		{name: "bad date", form: session.TaskForm{Title: "x", Date: "tomorrow"}, field: validate.FieldDate, want: validate.MsgInvalidTaskDate},
		{name: "bad status", form: session.TaskForm{Title: "x", Status: "Someday"}, field: "status", want: "Unknown status Someday."},
	}
	for _, tt := range tests {
		_, err := f.sess.AddTask(context.Background(), tt.form)
		if got := session.FieldErrors(err)[tt.field]; got != tt.want {
			t.Fatalf("%s: %s = %q (err %v)", tt.name, tt.field, got, err)
		}
	}
	if f.srv.Requests() != seen {
		t.Fatal("invalid task reached the server")
	}
}

func TestDeleteAccountClearsStorage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	u := f.signIn(t, theme.PreferenceLight)

	if err := f.sess.DeleteAccount(context.Background()); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if _, ok := f.srv.User(u.ID); ok {
		t.Fatal("remote account survived")
	}
	if _, ok, _ := storage.LoadUser(f.store); ok {
		t.Fatal("local user survived")
	}
}

func TestPaletteReadsRaceWithToggle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signIn(t, theme.PreferenceLight)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p := f.sess.Palette()
				if p != theme.Light() && p != theme.Dark() {
					t.Errorf("unexpected palette %+v", p)
					return
				}
			}
		}()
	}
	for i := 0; i < 4; i++ {
		if _, err := f.sess.ToggleTheme(context.Background()); err != nil {
			t.Fatalf("ToggleTheme: %v", err)
		}
	}
	wg.Wait()
}

func TestFormFromTaskRoundTrips(t *testing.T) {
	t.Parallel()
	due := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	form := session.FormFromTask(domain.Task{Title: "t", Description: "d", Status: domain.StatusPending, Due: &due})
	got, ok := validate.ParseTaskDate(form.Date)
	if !ok || !got.Equal(due) {
		t.Fatalf("date %q parsed to %v", form.Date, got)
	}
}

func TestThemeEnvOverrideWinsOverStoredFlag(t *testing.T) {
	t.Setenv("TASKMATE_THEME", "light")
	f := newFixture(t)
	f.signIn(t, theme.PreferenceDark)

	if f.sess.Preference() != theme.PreferenceDark {
		t.Fatalf("stored preference = %v, want dark", f.sess.Preference())
	}
	if diff := cmp.Diff(theme.Light(), f.sess.Palette()); diff != "" {
		t.Fatalf("palette mismatch (-want +got):\n%s", diff)
	}

	t.Setenv("TASKMATE_THEME", "dark")
	p, err := f.sess.ToggleTheme(context.Background())
	if err != nil {
		t.Fatalf("ToggleTheme: %v", err)
	}
	if f.sess.Preference() != theme.PreferenceLight {
		t.Fatalf("toggled preference = %v, want light", f.sess.Preference())
	}
	if diff := cmp.Diff(theme.Dark(), p); diff != "" {
		t.Fatalf("toggle palette mismatch (-want +got):\n%s", diff)
	}
}
