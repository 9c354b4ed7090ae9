package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"taskmate/internal/theme"
	"taskmate/internal/validate"
)

type field struct {
	key    string
	label  string
	value  string
	secret bool
}

// form is a vertical list of text inputs with per-field error lines.
type form struct {
	fields []field
	focus  int
	errs   validate.Errors
}

func newForm(fields ...field) form {
	return form{fields: fields, errs: validate.Errors{}}
}

func (f form) value(key string) string {
	for _, fl := range f.fields {
		if fl.key == key {
			return fl.value
		}
	}
	return ""
}

func (f *form) set(key, value string) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].value = value
		}
	}
}

// update applies an editing key. It reports whether the key was consumed.
func (f *form) update(msg tea.KeyMsg) bool {
	if len(f.fields) == 0 {
		return false
	}
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % len(f.fields)
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
	case tea.KeyBackspace:
		v := []rune(f.fields[f.focus].value)
		if len(v) > 0 {
			f.fields[f.focus].value = string(v[:len(v)-1])
		}
	case tea.KeyCtrlU:
		f.fields[f.focus].value = ""
	case tea.KeySpace:
		f.fields[f.focus].value += " "
	case tea.KeyRunes:
		f.fields[f.focus].value += string(msg.Runes)
	default:
		return false
	}
	return true
}

func (f form) view(s theme.Styles) string {
	var b strings.Builder
	for i, fl := range f.fields {
		marker := "  "
		label := s.Muted.Render(fl.label)
		if i == f.focus {
			marker = s.Primary.Render("> ")
			label = s.Primary.Render(fl.label)
		}
		value := fl.value
		if fl.secret {
			value = strings.Repeat("*", len([]rune(value)))
		}
		b.WriteString(marker + label + ": " + value + "\n")
		if msg := f.errs[fl.key]; msg != "" {
			b.WriteString("    " + s.Error.Render(msg) + "\n")
		}
	}
	return b.String()
}
