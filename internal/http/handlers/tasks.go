package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/arabian-ops/login-project/internal/actorctx"
	"github.com/arabian-ops/login-project/internal/config"
	"github.com/arabian-ops/login-project/internal/domain/task"
	"github.com/arabian-ops/login-project/internal/domain/user"
	"github.com/arabian-ops/login-project/internal/http/middlewares"
	"github.com/arabian-ops/login-project/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type UserResolver interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type TasksStore interface {
	Create(ctx context.Context, ownerID, title string) (task.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]task.Task, error)
	UpdateTitle(ctx context.Context, id, ownerID, title string) (task.Task, error)
	Toggle(ctx context.Context, id, ownerID string) (task.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type TasksHandler struct {
	users UserResolver
	tasks TasksStore
}

func NewTasksHandler(users UserResolver, tasks TasksStore) *TasksHandler {
	return &TasksHandler{users: users, tasks: tasks}
}

// resolveOwner turns the middleware's verified user id back into a User.
// This happens on every call: a token can outlive its user, and a stale
// one must not grant access.
func (h *TasksHandler) resolveOwner(ctx *gin.Context, timeout time.Duration) (user.User, context.Context, context.CancelFunc, bool) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authorized")
		return user.User{}, nil, nil, false
	}

	cctx, cancel := config.WithTimeout(timeout)
	cctx = actorctx.WithUserID(cctx, userID)

	owner, err := h.users.GetByID(cctx, userID)

	if err != nil {
		defer cancel()

		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return user.User{}, nil, nil, false
		}

		RespondInternal(ctx, err)
		return user.User{}, nil, nil, false
	}

	return owner, cctx, cancel, true
}

func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	owner, cctx, cancel, ok := h.resolveOwner(ctx, 2*time.Second)

	if !ok {
		return
	}
	defer cancel()

	tasks, err := h.tasks.ListByOwner(cctx, owner.ID)

	if err != nil {
		RespondInternal(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
	})
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		RespondBadRequest(ctx, "Title is required", nil)
		return
	}

	owner, cctx, cancel, ok := h.resolveOwner(ctx, 3*time.Second)

	if !ok {
		return
	}
	defer cancel()

	t, err := h.tasks.Create(cctx, owner.ID, req.Title)

	if err != nil {
		RespondInternal(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Task created",
		"task":    t,
	})
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	id := ctx.Param("id")

	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		RespondBadRequest(ctx, "Title is required", nil)
		return
	}

	owner, cctx, cancel, ok := h.resolveOwner(ctx, 3*time.Second)

	if !ok {
		return
	}
	defer cancel()

	t, err := h.tasks.UpdateTitle(cctx, id, owner.ID, req.Title)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			// absent and not-owned look identical on purpose
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task updated",
		"task":    t,
	})
}

func (h *TasksHandler) ToggleTask(ctx *gin.Context) {
	id := ctx.Param("id")

	owner, cctx, cancel, ok := h.resolveOwner(ctx, 3*time.Second)

	if !ok {
		return
	}
	defer cancel()

	t, err := h.tasks.Toggle(cctx, id, owner.ID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task toggled",
		"task":    t,
	})
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	id := ctx.Param("id")

	owner, cctx, cancel, ok := h.resolveOwner(ctx, 3*time.Second)

	if !ok {
		return
	}
	defer cancel()

	err := h.tasks.Delete(cctx, id, owner.ID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted",
	})
}
