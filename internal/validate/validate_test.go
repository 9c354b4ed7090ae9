package validate

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEmailTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: MsgRequired},
		{name: "short tld ok", input: "a@b.co", want: ""},
		{name: "no tld", input: "a@b", want: MsgInvalidEmail},
		{name: "plus and percent", input: "first.last+tag%x@mail-host.example.org", want: ""},
		{name: "one letter tld", input: "a@b.c", want: MsgInvalidEmail},
		{name: "numeric tld", input: "a@b.12", want: MsgInvalidEmail},
		{name: "missing local part", input: "@b.co", want: MsgInvalidEmail},
		{name: "leading space not trimmed", input: " a@b.co", want: MsgInvalidEmail},
		{name: "trailing newline", input: "a@b.co\n", want: MsgInvalidEmail},
		{name: "upper case kept", input: "A@B.CO", want: ""},
		{name: "two ats", input: "a@b@c.co", want: MsgInvalidEmail},
		{name: "whitespace only", input: "   ", want: MsgInvalidEmail},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Email(tt.input); got != tt.want {
				t.Fatalf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPasswordRuleOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: MsgRequired},
		{name: "short with every class", input: "Ab1!", want: MsgPasswordLength},
		{name: "seven chars", input: "Abcde1!", want: MsgPasswordLength},
		{name: "lower only", input: "abcdefgh", want: MsgPasswordUpper},
		{name: "upper only", input: "ABCDEFGH", want: MsgPasswordLower},
		{name: "letters only", input: "Abcdefgh", want: MsgPasswordNumber},
		{name: "no special", input: "Abcdefg1", want: MsgPasswordSpecial},
		{name: "valid minimal", input: "Abcdef1!", want: ""},
		{name: "quote is special", input: `Abcdef1"`, want: ""},
		{name: "brace is special", input: "Abcdef1{", want: ""},
		{name: "underscore is not special", input: "Abcdef1_", want: MsgPasswordSpecial},
		{name: "space is not special", input: "Abcdef1 ", want: MsgPasswordSpecial},
		{name: "astral chars count twice", input: "😀😀Ab1!", want: ""},
		{name: "one astral char is short", input: "😀Ab1!", want: MsgPasswordLength},
		{name: "bmp accents count once", input: "Ééééé1!", want: MsgPasswordLength},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Password(tt.input); got != tt.want {
				t.Fatalf("Password(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPasswordSpecialSetCoverage(t *testing.T) {
	t.Parallel()

	for _, r := range passwordSpecials {
		input := "Abcdef1" + string(r)
		if got := Password(input); got != "" {
			t.Fatalf("Password(%q) = %q, want valid", input, got)
		}
	}
}

func TestPasswordLengthWinsOverClasses(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"a", "A", "1", "!", "aA1!", "abcdefg", "!!!!!!!"} {
		if got := Password(input); got != MsgPasswordLength {
			t.Fatalf("Password(%q) = %q, want length message", input, got)
		}
	}
}

func TestNameRequiresValue(t *testing.T) {
	t.Parallel()

	if got := Name(""); got != MsgRequired {
		t.Fatalf("Name(\"\") = %q, want %q", got, MsgRequired)
	}
	if got := Name("Ada"); got != "" {
		t.Fatalf("Name(\"Ada\") = %q, want empty", got)
	}
}

func TestRequiredKeepsWhitespace(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"": MsgRequired, " ": "", "x": ""} {
		if got := Required(in); got != want {
			t.Fatalf("Required(%q) = %q, want %q", in, got, want)
		}
	}
	if got := (Credentials{Email: "ada@example.com"}).Login()[FieldPassword]; got != MsgRequired {
		t.Fatalf("login password error = %q, want %q", got, MsgRequired)
	}
}

func TestTaskTitleAndDate(t *testing.T) {
	t.Parallel()

	if got := TaskTitle("   "); got != MsgTaskTitle {
		t.Fatalf("TaskTitle(blank) = %q", got)
	}
	if got := TaskTitle("Write docs"); got != "" {
		t.Fatalf("TaskTitle(valid) = %q", got)
	}

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: MsgTaskDate},
		{input: "tomorrow", want: MsgInvalidTaskDate},
		{input: "2024-05-01T10:30:00Z", want: ""},
		{input: "2024-05-01T10:30", want: ""},
		{input: "2024-05-01 10:30", want: ""},
		{input: "2024-05-01", want: ""},
		{input: "2024-13-01", want: MsgInvalidTaskDate},
	}
	for _, tt := range tests {
		if got := TaskDate(tt.input); got != tt.want {
			t.Fatalf("TaskDate(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseTaskDateNormalizesToUTC(t *testing.T) {
	t.Parallel()

	got, ok := ParseTaskDate("2024-05-01T10:30:00+02:00")
	if !ok {
		t.Fatal("ParseTaskDate() failed")
	}
	want := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("ParseTaskDate() = %v, want %v", got, want)
	}
}

func TestProfile(t *testing.T) {
	t.Parallel()

	cases := map[[2]string]string{
		{"", "a@b.co"}:    MsgProfileRequired,
		{"Ada", "  "}:     MsgProfileRequired,
		{"Ada", "a@b.co"}: "",
	}
	for in, want := range cases {
		if got := Profile(in[0], in[1]); got != want {
			t.Fatalf("Profile(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}

func TestCredentialsRegister(t *testing.T) {
	t.Parallel()

	got := Credentials{Name: "", Email: "a@b", Password: "abcdefgh"}.Register()
	want := Errors{
		FieldName:     MsgRequired,
		FieldEmail:    MsgInvalidEmail,
		FieldPassword: MsgPasswordUpper,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Register() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"email", "name", "password"}, got.Fields()); diff != "" {
		t.Fatalf("Fields() mismatch (-want +got):\n%s", diff)
	}

	ok := Credentials{Name: "Ada", Email: "ada@example.com", Password: "Abcdef1!"}.Register()
	if !ok.Empty() {
		t.Fatalf("expected valid credentials, got %v", ok)
	}
}

func TestCredentialsLoginOnlyRequiresPassword(t *testing.T) {
	t.Parallel()

	got := Credentials{Email: "ada@example.com", Password: "short"}.Login()
	if !got.Empty() {
		t.Fatalf("Login() = %v, want no errors", got)
	}
	got = Credentials{}.Login()
	want := Errors{FieldEmail: MsgRequired, FieldPassword: MsgRequired}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Login() mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskInputAddAndEdit(t *testing.T) {
	t.Parallel()

	if errs := (TaskInput{Title: "Ship"}).Add(); !errs.Empty() {
		t.Fatalf("Add() = %v", errs)
	}
	if errs := (TaskInput{Title: "Ship", Date: "soon"}).Add(); errs[FieldDate] != MsgInvalidTaskDate {
		t.Fatalf("Add() with bad date = %v", errs)
	}
	errs := (TaskInput{Title: " "}).Edit()
	want := Errors{FieldTitle: MsgTaskTitle, FieldDate: MsgTaskDate}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("Edit() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidatorsArePure(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "a@b.co", "a@b", "Abcdef1!", "abcdefgh", strings.Repeat("x", 64)}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, in := range inputs {
				if Email(in) != Email(in) || Password(in) != Password(in) || Name(in) != Name(in) {
					t.Errorf("validator result changed between calls for %q", in)
				}
			}
		}()
	}
	wg.Wait()
}
