package task

import (
	"errors"
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      Status     `json:"status"`
	OwnerID     string     `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"` // set iff Status == completed
}

var ErrNotFound = errors.New("task not found")

// Toggled returns the task after one status flip. Applying it twice
// returns to the original state.
func (t Task) Toggled(now time.Time) Task {
	if t.Status == StatusActive {
		t.Status = StatusCompleted
		t.CompletedAt = &now
		return t
	}

	t.Status = StatusActive
	t.CompletedAt = nil
	return t
}

type CreateTaskRequest struct {
	Title string `json:"title" binding:"required"`
}

type UpdateTaskRequest struct {
	Title string `json:"title" binding:"required"`
}
