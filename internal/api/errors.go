package api

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrNetwork wraps transport failures (no response from the server).
	ErrNetwork = errors.New("network error")
	// ErrNotFound matches an *Error carrying a 404.
	ErrNotFound = errors.New("not found")
)

const (
	AlertNetwork = "Network error. Please check your connection."
	AlertGeneric = "An error occurred. Please try again."
)

// Error is a non-2xx response from the API.
type Error struct {
	Status  int                 `json:"-"`
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"errors,omitempty"`
	Cause   error               `json:"-"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Field returns the joined messages reported for field.
func (e *Error) Field(field string) string {
	return strings.Join(e.Fields[field], " ")
}

// Messages returns every server field message, email first and the rest by
// field name.
func (e *Error) Messages() []string {
	fields := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		if k != "email" {
			fields = append(fields, k)
		}
	}
	sort.Strings(fields)
	if _, ok := e.Fields["email"]; ok {
		fields = append([]string{"email"}, fields...)
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if msg := e.Field(f); msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

// Alert turns err into the single line shown to the user. Server field
// errors win (email first, since registration conflicts are the common case);
// transport failures get the network message; anything else gets fallback,
// or the generic message when fallback is empty.
func Alert(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if fallback == "" {
		fallback = AlertGeneric
	}
	if errors.Is(err, ErrNetwork) {
		return AlertNetwork
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return fallback
	}
	if msgs := apiErr.Messages(); len(msgs) > 0 {
		return msgs[0]
	}
	return fallback
}
