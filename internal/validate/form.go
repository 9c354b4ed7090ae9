package validate

import "sort"

// Field names used as keys in Errors.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldTitle    = "title"
	FieldDate     = "date"
)

// Errors maps a field name to its message. Fields that passed are absent.
type Errors map[string]string

// Empty reports whether every field passed.
func (e Errors) Empty() bool { return len(e) == 0 }

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (e Errors) add(field, msg string) {
	if msg != "" {
		e[field] = msg
	}
}

// Credentials is the raw content of the register and login forms.
type Credentials struct {
	Name     string
	Email    string
	Password string
}

// Register validates every register field.
func (c Credentials) Register() Errors {
	errs := Errors{}
	errs.add(FieldName, Name(c.Name))
	errs.add(FieldEmail, Email(c.Email))
	errs.add(FieldPassword, Password(c.Password))
	return errs
}

// Login validates the login fields. Only presence of the password is checked
// so accounts created under older rules can still sign in.
func (c Credentials) Login() Errors {
	errs := Errors{}
	errs.add(FieldEmail, Email(c.Email))
	errs.add(FieldPassword, Required(c.Password))
	return errs
}

// TaskInput is the raw content of the add/edit task forms.
type TaskInput struct {
	Title       string
	Description string
	Date        string
}

// Add validates a new task. A date is optional when adding.
func (t TaskInput) Add() Errors {
	errs := Errors{}
	errs.add(FieldTitle, TaskTitle(t.Title))
	if t.Date != "" {
		errs.add(FieldDate, TaskDate(t.Date))
	}
	return errs
}

// Edit validates an edited task, where the date is required.
func (t TaskInput) Edit() Errors {
	errs := Errors{}
	errs.add(FieldTitle, TaskTitle(t.Title))
	errs.add(FieldDate, TaskDate(t.Date))
	return errs
}
