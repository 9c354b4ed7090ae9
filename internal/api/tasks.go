package api

import (
	"context"
	"fmt"
	"net/http"

	"taskmate/internal/domain"
)

// ListTasks returns the tasks owned by userID.
func (c *Client) ListTasks(ctx context.Context, userID int64) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/index/%d", userID), nil, &tasks); err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i] = cleanTask(tasks[i])
	}
	return tasks, nil
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	var t domain.Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/get/%d", id), nil, &t); err != nil {
		return domain.Task{}, err
	}
	return cleanTask(t), nil
}

// CreateTask stores a new task.
func (c *Client) CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	var t domain.Task
	if err := c.do(ctx, http.MethodPost, "/store", draft, &t); err != nil {
		return domain.Task{}, err
	}
	return cleanTask(t), nil
}

// UpdateTask sends the non-nil draft fields for task id.
func (c *Client) UpdateTask(ctx context.Context, id int64, draft domain.TaskDraft) (domain.Task, error) {
	var t domain.Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/update/%d", id), draft, &t); err != nil {
		return domain.Task{}, err
	}
	return cleanTask(t), nil
}

// CompleteTask marks task id completed.
func (c *Client) CompleteTask(ctx context.Context, id int64) (domain.Task, error) {
	done := domain.StatusCompleted
	return c.UpdateTask(ctx, id, domain.TaskDraft{Status: &done})
}

// DeleteTask removes task id.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/delete/%d", id), nil, nil)
}
