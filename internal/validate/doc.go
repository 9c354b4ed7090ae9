// Package validate holds the form field checks shared by every TaskMate
// surface (TUI screens, CLI prompts, the session layer).
//
// Each check maps a raw input string to a message: the empty string means the
// value is acceptable, anything else is text meant to be shown next to the
// field. Checks never panic, perform no I/O and keep no state, so they can be
// called from any goroutine.
//
//	if msg := validate.Email(input); msg != "" {
//		form.SetError("email", msg)
//		return
//	}
package validate
