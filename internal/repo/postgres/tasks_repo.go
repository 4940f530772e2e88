package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/arabian-ops/login-project/internal/domain/task"
	"github.com/arabian-ops/login-project/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *TasksRepo) Create(ctx context.Context, ownerID, title string) (task.Task, error) {
	t := task.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    task.StatusActive,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	err := r.prom.ObserveDB("tasks.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tasks (id, title, status, owner_id, created_at, completed_at)
			 VALUES ($1, $2, $3, $4, $5, NULL)`,
			t.ID, t.Title, t.Status, t.OwnerID, t.CreatedAt,
		)
		return err
	})

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

// ListByOwner returns the owner's tasks, most recent first.
func (r *TasksRepo) ListByOwner(ctx context.Context, ownerID string) ([]task.Task, error) {
	var output []task.Task

	err := r.prom.ObserveDB("tasks.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, title, status, owner_id, created_at, completed_at
			 FROM tasks
			 WHERE owner_id = $1
			 ORDER BY created_at DESC, id DESC`,
			ownerID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]task.Task, 0)

		for rows.Next() {
			var t task.Task

			err = rows.Scan(&t.ID, &t.Title, &t.Status, &t.OwnerID, &t.CreatedAt, &t.CompletedAt)

			if err != nil {
				return err
			}

			output = append(output, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

// UpdateTitle replaces the title of a task the owner holds. A task that
// does not exist and a task owned by someone else are reported the same.
func (r *TasksRepo) UpdateTitle(ctx context.Context, id, ownerID, title string) (task.Task, error) {
	var t task.Task

	err := r.prom.ObserveDB("tasks.update_title", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE tasks
				SET title = $3
			 WHERE id = $1 AND owner_id = $2
			 RETURNING id, title, status, owner_id, created_at, completed_at`,
			id,
			ownerID,
			title,
		).Scan(
			&t.ID,
			&t.Title,
			&t.Status,
			&t.OwnerID,
			&t.CreatedAt,
			&t.CompletedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

// Toggle flips active<->completed in a single statement so two racing
// toggles resolve last-write-wins at the row level.
func (r *TasksRepo) Toggle(ctx context.Context, id, ownerID string) (task.Task, error) {
	var t task.Task

	err := r.prom.ObserveDB("tasks.toggle", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE tasks
				SET status = CASE WHEN status = 'active' THEN 'completed' ELSE 'active' END,
						completed_at = CASE WHEN status = 'active' THEN NOW() ELSE NULL END
			 WHERE id = $1 AND owner_id = $2
			 RETURNING id, title, status, owner_id, created_at, completed_at`,
			id,
			ownerID,
		).Scan(
			&t.ID,
			&t.Title,
			&t.Status,
			&t.OwnerID,
			&t.CreatedAt,
			&t.CompletedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id, ownerID string) error {
	var affected int64

	err := r.prom.ObserveDB("tasks.delete", func() error {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`,
			id, ownerID,
		)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return task.ErrNotFound
	}

	return nil
}
