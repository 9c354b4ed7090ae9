package commands

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskmate/internal/api"
	"taskmate/internal/api/apitest"
	"taskmate/internal/session"
	"taskmate/internal/storage"
	"taskmate/internal/theme"
	"taskmate/internal/validate"
)

// scriptedPrompter answers prompts from a queue and fails the test when an
// answer would not pass the attached check.
type scriptedPrompter struct {
	t        *testing.T
	answers  []string
	confirms []bool
	asked    []string
}

func (p *scriptedPrompter) next(message string, check Check) (string, error) {
	p.asked = append(p.asked, message)
	if len(p.answers) == 0 {
		return "", fmt.Errorf("unexpected prompt %q", message)
	}
	ans := p.answers[0]
	p.answers = p.answers[1:]
	if check != nil {
		if msg := check(ans); msg != "" {
			p.t.Errorf("prompt %q: scripted answer %q rejected: %s", message, ans, msg)
		}
	}
	return ans, nil
}

func (p *scriptedPrompter) Input(message, _ string, check Check) (string, error) {
	return p.next(message, check)
}

func (p *scriptedPrompter) Password(message string, check Check) (string, error) {
	return p.next(message, check)
}

func (p *scriptedPrompter) Confirm(message string) (bool, error) {
	p.asked = append(p.asked, message)
	if len(p.confirms) == 0 {
		return false, fmt.Errorf("unexpected confirm %q", message)
	}
	ok := p.confirms[0]
	p.confirms = p.confirms[1:]
	return ok, nil
}

type cli struct {
	t      *testing.T
	srv    *apitest.Server
	apiURL string
	dir    string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return &cli{t: t, srv: srv, apiURL: srv.URL, dir: t.TempDir()}
}

func (c *cli) run(p *scriptedPrompter, args ...string) (string, error) {
	c.t.Helper()
	if p == nil {
		p = &scriptedPrompter{t: c.t}
	}
	p.t = c.t
	var out, errOut bytes.Buffer
	root := NewRootCommand(Options{Prompter: p, Out: &out, Err: &errOut})
	root.SetArgs(append([]string{"--api", c.apiURL, "--data-dir", c.dir, "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(nil, args...)
	if err != nil {
		c.t.Fatalf("%v: %v", args, err)
	}
	return out
}

func (c *cli) login() {
	c.t.Helper()
	c.srv.SeedUser("Ada", "ada@example.com", "Secret1!", theme.PreferenceLight)
	c.mustRun("login", "--email", "ada@example.com", "--password", "Secret1!")
}

func TestRegisterWithFlagsPersistsUser(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("register", "--name", "Ada", "--email", "ada@example.com", "--password", "Secret1!")
	if !strings.Contains(out, "Account registered successfully") {
		t.Fatalf("output = %q", out)
	}

	out = c.mustRun("profile", "show")
	if !strings.Contains(out, "Name:  Ada") || !strings.Contains(out, "Theme: light") {
		t.Fatalf("profile output = %q", out)
	}
}

func TestRegisterPromptsForMissingFields(t *testing.T) {
	c := newCLI(t)
	p := &scriptedPrompter{answers: []string{"Ada", "ada@example.com", "Secret1!"}}
	if _, err := c.run(p, "register"); err != nil {
		t.Fatalf("register: %v", err)
	}
	want := []string{"Name", "Email", "Password"}
	if strings.Join(p.asked, ",") != strings.Join(want, ",") {
		t.Fatalf("asked = %v, want %v", p.asked, want)
	}
}

func TestRegisterInvalidFlagsMakeNoRequest(t *testing.T) {
	c := newCLI(t)
	_, err := c.run(nil, "register", "--name", "Ada", "--email", "ada@", "--password", "Secret1!")
	if err == nil || !strings.Contains(err.Error(), validate.MsgInvalidEmail) {
		t.Fatalf("err = %v", err)
	}
	if c.srv.Requests() != 0 {
		t.Fatalf("server saw %d requests", c.srv.Requests())
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	c := newCLI(t)
	c.srv.SeedUser("Ada", "ada@example.com", "Secret1!", theme.PreferenceLight)
	_, err := c.run(nil, "register", "--name", "Ada", "--email", "ada@example.com", "--password", "Secret1!")
	if err == nil || err.Error() != "The email has already been taken." {
		t.Fatalf("err = %v", err)
	}
}

func TestTasksRequireLogin(t *testing.T) {
	c := newCLI(t)
	_, err := c.run(nil, "tasks", "list")
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("err = %v", err)
	}
}

func TestTaskCommandsEndToEnd(t *testing.T) {
	c := newCLI(t)
	c.login()

	if out := c.mustRun("tasks", "list"); !strings.Contains(out, "No tasks yet.") {
		t.Fatalf("empty list output = %q", out)
	}
	if out := c.mustRun("tasks", "add", "--title", "Buy milk", "--description", "2 litres"); !strings.Contains(out, "#1") {
		t.Fatalf("add output = %q", out)
	}
	if out := c.mustRun("tasks", "list"); !strings.Contains(out, "Buy milk") || !strings.Contains(out, "[Pending]") {
		t.Fatalf("list output = %q", out)
	}

	if _, err := c.run(nil, "tasks", "edit", "1", "--title", "Buy oat milk"); err == nil || err.Error() != validate.MsgTaskDate {
		t.Fatalf("edit without date: %v", err)
	}
	c.mustRun("tasks", "edit", "1", "--title", "Buy oat milk", "--date", "2026-03-14 09:30")
	c.mustRun("tasks", "done", "#1")

	out := c.mustRun("tasks", "show", "1")
	for _, want := range []string{"Buy oat milk", "2 litres", "Status: Completed", "Due: Sat Mar 14 2026 09:30"} {
		if !strings.Contains(out, want) {
			t.Fatalf("show output missing %q:\n%s", want, out)
		}
	}

	out, err := c.run(&scriptedPrompter{confirms: []bool{false}}, "tasks", "delete", "1")
	if err != nil || !strings.Contains(out, "Task deletion canceled.") {
		t.Fatalf("declined delete: %q %v", out, err)
	}
	if out := c.mustRun("tasks", "delete", "1", "--yes"); !strings.Contains(out, "Task deleted successfully!") {
		t.Fatalf("delete output = %q", out)
	}
	if _, err := c.run(nil, "tasks", "show", "1"); err == nil || err.Error() != "Failed to load the task." {
		t.Fatalf("show after delete: %v", err)
	}
}

func TestAddTaskPromptsForTitle(t *testing.T) {
	c := newCLI(t)
	c.login()
	p := &scriptedPrompter{answers: []string{"Write docs"}}
	if _, err := c.run(p, "tasks", "add"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(p.asked) != 1 || p.asked[0] != "Title" {
		t.Fatalf("asked = %v", p.asked)
	}
}

func TestThemeToggleAndShow(t *testing.T) {
	c := newCLI(t)
	c.login()

	if out := c.mustRun("theme", "toggle"); !strings.Contains(out, "Theme: dark") || !strings.Contains(out, "rgb(53, 50, 49)") {
		t.Fatalf("toggle output = %q", out)
	}
	if out := c.mustRun("theme", "show"); !strings.Contains(out, "Theme: dark") || !strings.Contains(out, "#353231") {
		t.Fatalf("show output = %q", out)
	}
	if out := c.mustRun("profile", "update", "--name", "Ada L"); !strings.Contains(out, "Profile updated successfully.") {
		t.Fatalf("update output = %q", out)
	}
	if out := c.mustRun("theme", "show"); !strings.Contains(out, "Theme: dark") {
		t.Fatalf("profile update changed theme: %q", out)
	}
}

func TestProfileUpdateRejectsBlankName(t *testing.T) {
	c := newCLI(t)
	c.login()
	_, err := c.run(nil, "profile", "update", "--name", "  ")
	if err == nil || err.Error() != validate.MsgProfileRequired {
		t.Fatalf("err = %v", err)
	}
}

func TestProfileDeleteThenLoggedOut(t *testing.T) {
	c := newCLI(t)
	c.login()
	if out := c.mustRun("profile", "delete", "--yes"); !strings.Contains(out, "Your account has been deleted.") {
		t.Fatalf("delete output = %q", out)
	}
	if _, err := c.run(nil, "profile", "show"); err == nil {
		t.Fatal("expected not logged in after deletion")
	}
}

func TestLogout(t *testing.T) {
	c := newCLI(t)
	c.login()
	c.mustRun("logout")
	if _, err := c.run(nil, "tasks", "list"); err == nil {
		t.Fatal("expected not logged in after logout")
	}
}

func TestNetworkFailureMessage(t *testing.T) {
	c := newCLI(t)
	c.srv.Close()
	_, err := c.run(nil, "login", "--email", "ada@example.com", "--password", "Secret1!")
	if err == nil || err.Error() != api.AlertNetwork {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(err, api.ErrNetwork) {
		t.Fatal("cli error should wrap the network error")
	}
}

func TestMemoryStorageFlag(t *testing.T) {
	c := newCLI(t)
	c.srv.SeedUser("Ada", "ada@example.com", "Secret1!", theme.PreferenceLight)
	c.mustRun("--storage", "memory", "login", "--email", "ada@example.com", "--password", "Secret1!")
	if _, err := c.run(nil, "--storage", "memory", "profile", "show"); err == nil {
		t.Fatal("memory storage should not persist across runs")
	}
}

func TestParseID(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "7", want: 7},
		{in: "#12", want: 12},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseID(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("parseID(%q) = %d, %v", tc.in, got, err)
		}
	}
}

func TestSurveyValidatorAdapter(t *testing.T) {
	v := surveyValidator(validate.Email)
	if err := v("ada@example.com"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	if err := v("nope"); err == nil || err.Error() != validate.MsgInvalidEmail {
		t.Fatalf("invalid email: %v", err)
	}
	if err := v(42); err == nil {
		t.Fatal("non-string answer should fail")
	}
}

func TestFailedCommandReleasesStorage(t *testing.T) {
	c := newCLI(t)
	root, a := newRootCommand(Options{Prompter: &scriptedPrompter{t: t}, Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})
	root.SetArgs([]string{"--api", c.apiURL, "--data-dir", c.dir, "--storage", "sqlite", "--log-level", "error", "tasks", "list"})

	err := root.Execute()
	if !errors.Is(err, session.ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", err)
	}
	if len(a.closers) != 0 {
		t.Fatalf("closers left open: %d", len(a.closers))
	}
	if _, err := a.store.Get(storage.KeyUserData); err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("store still usable after failure: err = %v", err)
	}
	if err := a.close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestServerFieldErrorsPrintedOnePerLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"The given data was invalid.","errors":{
			"name":["The name may not be greater than 255 characters."],
			"email":["The email has already been taken."]}}`))
	}))
	t.Cleanup(srv.Close)
	c := &cli{t: t, apiURL: srv.URL, dir: t.TempDir()}

	_, err := c.run(nil, "register", "--name", "Ada", "--email", "ada@example.com", "--password", "Secret1!")
	want := "The email has already been taken.\nThe name may not be greater than 255 characters."
	if err == nil || err.Error() != want {
		t.Fatalf("err = %v, want %q", err, want)
	}
}
