package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf16"
)

const (
	MsgRequired        = "Please fill in this field."
	MsgInvalidEmail    = "Please enter a valid email address!"
	MsgPasswordLength  = "Password should contain at least 8 characters."
	MsgPasswordUpper   = "Password should contain at least one uppercase letter."
	MsgPasswordLower   = "Password should contain at least one lowercase letter."
	MsgPasswordNumber  = "Password should contain at least one number."
	MsgPasswordSpecial = "Password should contain at least one special character."
	MsgTaskTitle       = "Please enter a task title"
	MsgTaskDate        = "Please select a date and time."
	MsgInvalidTaskDate = "Please enter a valid date and time."
	MsgProfileRequired = "Name and email are required."
)

const (
	minPasswordLength = 8
	passwordSpecials  = `!@#$%^&*(),.?":{}|<>`
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// taskDateLayouts lists the accepted task date inputs, most specific first.
var taskDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Email checks value against the address pattern. The value is not trimmed or
// case folded first.
func Email(value string) string {
	if msg := Required(value); msg != "" {
		return msg
	}
	if !emailPattern.MatchString(value) {
		return MsgInvalidEmail
	}
	return ""
}

// Password applies the password rules in a fixed order and reports the first
// one that fails.
func Password(value string) string {
	switch {
	case value == "":
		return MsgRequired
	case utf16Len(value) < minPasswordLength:
		return MsgPasswordLength
	case !containsRange(value, 'A', 'Z'):
		return MsgPasswordUpper
	case !containsRange(value, 'a', 'z'):
		return MsgPasswordLower
	case !containsRange(value, '0', '9'):
		return MsgPasswordNumber
	case !strings.ContainsAny(value, passwordSpecials):
		return MsgPasswordSpecial
	}
	return ""
}

// Required rejects an empty value. Whitespace counts as a value.
func Required(value string) string {
	if value == "" {
		return MsgRequired
	}
	return ""
}

// Name only requires a value.
func Name(value string) string { return Required(value) }

// TaskTitle requires a title with at least one non-space character.
func TaskTitle(value string) string {
	if strings.TrimSpace(value) == "" {
		return MsgTaskTitle
	}
	return ""
}

// TaskDate requires a date/time the API can store.
func TaskDate(value string) string {
	if strings.TrimSpace(value) == "" {
		return MsgTaskDate
	}
	if _, ok := ParseTaskDate(value); !ok {
		return MsgInvalidTaskDate
	}
	return ""
}

// ParseTaskDate parses a task date in any accepted layout. Inputs without a
// zone are read as local time; the result is in UTC.
func ParseTaskDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range taskDateLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339 {
			t, err = time.Parse(layout, value)
		} else {
			t, err = time.ParseInLocation(layout, value, time.Local)
		}
		if err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Profile checks the profile edit form, where name and email are both
// required and surrounding spaces do not count.
func Profile(name, email string) string {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return MsgProfileRequired
	}
	return ""
}

// utf16Len counts UTF-16 code units, so characters outside the BMP count
// twice, as they do in browser form fields.
func utf16Len(value string) int {
	n := 0
	for _, r := range value {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

func containsRange(value string, lo, hi rune) bool {
	for _, r := range value {
		if r >= lo && r <= hi {
			return true
		}
	}
	return false
}
