package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arabian-ops/login-project/internal/domain/task"
	"github.com/google/uuid"
)

// TasksRepo keeps tasks in a map. It mirrors the postgres repo's methods
// so tests and local runs can skip the database.
type TasksRepo struct {
	mu    sync.RWMutex
	items map[string]task.Task
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items: make(map[string]task.Task),
	}
}

func (r *TasksRepo) Create(_ context.Context, ownerID, title string) (task.Task, error) {
	t := task.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    task.StatusActive,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()

	return t, nil
}

func (r *TasksRepo) ListByOwner(_ context.Context, ownerID string) ([]task.Task, error) {
	r.mu.RLock()

	out := make([]task.Task, 0)

	for _, t := range r.items {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}

	r.mu.RUnlock()

	// newest first, ties broken by id like the postgres query
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (r *TasksRepo) UpdateTitle(_ context.Context, id, ownerID, title string) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.OwnerID != ownerID {
		return task.Task{}, task.ErrNotFound
	}

	t.Title = title
	r.items[id] = t

	return t, nil
}

func (r *TasksRepo) Toggle(_ context.Context, id, ownerID string) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.OwnerID != ownerID {
		return task.Task{}, task.ErrNotFound
	}

	t = t.Toggled(time.Now().UTC())
	r.items[id] = t

	return t, nil
}

func (r *TasksRepo) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.OwnerID != ownerID {
		return task.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
