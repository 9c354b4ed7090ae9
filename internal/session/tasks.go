package session

import (
	"context"
	"strings"
	"time"

	"taskmate/internal/domain"
	"taskmate/internal/validate"
)

// TaskForm is raw form input. Date uses any layout validate.ParseTaskDate
// accepts; Status is optional and matched case-insensitively.
type TaskForm struct {
	Title       string
	Description string
	Date        string
	Status      string
}

func (f TaskForm) input() validate.TaskInput {
	return validate.TaskInput{Title: f.Title, Description: f.Description, Date: f.Date}
}

// draft converts validated input. Unset date and status stay nil.
func (f TaskForm) draft() (domain.TaskDraft, error) {
	title := strings.TrimSpace(f.Title)
	desc := strings.TrimSpace(f.Description)
	d := domain.TaskDraft{Title: &title, Description: &desc}
	if strings.TrimSpace(f.Date) != "" {
		due, _ := validate.ParseTaskDate(f.Date)
		d.Due = &due
	}
	if strings.TrimSpace(f.Status) != "" {
		st, ok := domain.ParseStatus(f.Status)
		if !ok {
			return domain.TaskDraft{}, invalid(validate.Errors{"status": "Unknown status " + f.Status + "."})
		}
		d.Status = &st
	}
	return d, nil
}

// Tasks lists the signed-in user's tasks.
func (s *Session) Tasks(ctx context.Context) ([]domain.Task, error) {
	u, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.api.ListTasks(ctx, u.ID)
}

// Task fetches one task.
func (s *Session) Task(ctx context.Context, id int64) (domain.Task, error) {
	if _, err := s.current(); err != nil {
		return domain.Task{}, err
	}
	return s.api.GetTask(ctx, id)
}

// AddTask validates and creates a task. A missing date is allowed.
func (s *Session) AddTask(ctx context.Context, f TaskForm) (domain.Task, error) {
	u, err := s.current()
	if err != nil {
		return domain.Task{}, err
	}
	if err := invalid(f.input().Add()); err != nil {
		return domain.Task{}, err
	}
	d, err := f.draft()
	if err != nil {
		return domain.Task{}, err
	}
	d.UserID = u.ID
	if d.Status == nil {
		pending := domain.StatusPending
		d.Status = &pending
	}
	return s.api.CreateTask(ctx, d)
}

// EditTask validates and saves a task. The date is required here.
func (s *Session) EditTask(ctx context.Context, id int64, f TaskForm) (domain.Task, error) {
	if _, err := s.current(); err != nil {
		return domain.Task{}, err
	}
	if err := invalid(f.input().Edit()); err != nil {
		return domain.Task{}, err
	}
	d, err := f.draft()
	if err != nil {
		return domain.Task{}, err
	}
	return s.api.UpdateTask(ctx, id, d)
}

// CompleteTask marks a task completed.
func (s *Session) CompleteTask(ctx context.Context, id int64) (domain.Task, error) {
	if _, err := s.current(); err != nil {
		return domain.Task{}, err
	}
	return s.api.CompleteTask(ctx, id)
}

// DeleteTask removes a task.
func (s *Session) DeleteTask(ctx context.Context, id int64) error {
	if _, err := s.current(); err != nil {
		return err
	}
	return s.api.DeleteTask(ctx, id)
}

// FormFromTask pre-fills an edit form.
func FormFromTask(t domain.Task) TaskForm {
	f := TaskForm{Title: t.Title, Description: t.Description, Status: string(t.Status)}
	if t.Due != nil {
		f.Date = t.Due.In(time.Local).Format("2006-01-02 15:04")
	}
	return f
}
