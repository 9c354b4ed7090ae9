package domain

import (
	"encoding/json"
	"strings"
	"time"

	"taskmate/internal/theme"
	"taskmate/internal/validate"
)

// dueLayouts are the due date encodings seen from the API, most specific
// first. Zoneless values are read as local time.
var dueLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// User is the persisted userData blob.
type User struct {
	ID    int64            `json:"id"`
	Name  string           `json:"name"`
	Email string           `json:"email"`
	Theme theme.Preference `json:"theme"`
}

// Status is a task's progress state as the API spells it.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists the known statuses in workflow order.
var Statuses = [...]Status{StatusPending, StatusInProgress, StatusCompleted}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// Done reports whether the task is completed.
func (s Status) Done() bool { return s == StatusCompleted }

// Task is one task record.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status,omitempty"`
	Due         *time.Time `json:"selected_date_time,omitempty"`
}

// UnmarshalJSON decodes a task record. A due date in an unknown format is
// dropped instead of failing the record.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		Due json.RawMessage `json:"selected_date_time"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Due = parseDue(aux.Due)
	return nil
}

func parseDue(raw json.RawMessage) *time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dueLayouts {
		loc := time.Local
		if layout == time.RFC3339Nano {
			loc = time.UTC
		}
		if due, err := time.ParseInLocation(layout, s, loc); err == nil {
			due = due.UTC()
			return &due
		}
	}
	if due, ok := validate.ParseTaskDate(s); ok {
		return &due
	}
	return nil
}

// TaskDraft carries the fields a create or update call sends. Nil fields are
// left untouched on update.
type TaskDraft struct {
	UserID      int64      `json:"user_id,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Due         *time.Time `json:"selected_date_time,omitempty"`
}

// ProfileUpdate is the body of a profile update.
type ProfileUpdate struct {
	Name  string           `json:"name"`
	Email string           `json:"email"`
	Theme theme.Preference `json:"theme"`
}
