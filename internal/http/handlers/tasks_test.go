package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/arabian-ops/login-project/internal/domain/task"
	"github.com/arabian-ops/login-project/internal/domain/user"
	"github.com/arabian-ops/login-project/internal/http/handlers"
	"github.com/arabian-ops/login-project/internal/http/middlewares"
	"github.com/arabian-ops/login-project/internal/repo/memory"
	"github.com/arabian-ops/login-project/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Fake implementations of the handlers.UserResolver and handlers.TasksStore interfaces

type fakeUserResolver struct {
	getByIDFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUserResolver) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return user.User{ID: id, Email: id + "@x.com"}, nil
}

type fakeTasksRepo struct {
	createFn func(ctx context.Context, ownerID, title string) (task.Task, error)
	listFn   func(ctx context.Context, ownerID string) ([]task.Task, error)
	updateFn func(ctx context.Context, id, ownerID, title string) (task.Task, error)
	toggleFn func(ctx context.Context, id, ownerID string) (task.Task, error)
	deleteFn func(ctx context.Context, id, ownerID string) error
}

func (f *fakeTasksRepo) Create(ctx context.Context, ownerID, title string) (task.Task, error) {
	if f.createFn != nil {
		return f.createFn(ctx, ownerID, title)
	}

	return task.Task{}, nil
}

func (f *fakeTasksRepo) ListByOwner(ctx context.Context, ownerID string) ([]task.Task, error) {
	if f.listFn != nil {
		return f.listFn(ctx, ownerID)
	}

	return []task.Task{}, nil
}

func (f *fakeTasksRepo) UpdateTitle(ctx context.Context, id, ownerID, title string) (task.Task, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, ownerID, title)
	}

	return task.Task{}, nil
}

func (f *fakeTasksRepo) Toggle(ctx context.Context, id, ownerID string) (task.Task, error) {
	if f.toggleFn != nil {
		return f.toggleFn(ctx, id, ownerID)
	}

	return task.Task{}, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, id, ownerID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, ownerID)
	}

	return nil
}

// mounts one handler behind a stand-in for the auth middleware

func setupTasksRouter(userID, method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(middlewares.CtxUserID, userID)
		}
		c.Next()
	})

	r.Handle(method, path, h)

	return r
}

type taskEnvelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Task    *task.Task `json:"task"`
	Tasks   []task.Task `json:"tasks"`
}

func TestCreateTaskHandler(t *testing.T) {
	ownerID := uuid.NewString()

	tests := []struct {
		name           string
		userID         string
		body           string
		repoSetUp      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name:   "success",
			userID: ownerID,
			body:   `{"title":"Buy milk"}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, oid, title string) (task.Task, error) {
					if oid != ownerID {
						t.Fatalf("owner id = %s, want %s", oid, ownerID)
					}
					return task.Task{
						ID:        uuid.NewString(),
						Title:     title,
						Status:    task.StatusActive,
						OwnerID:   oid,
						CreatedAt: time.Now().UTC(),
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_title",
			userID:         ownerID,
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "whitespace_title",
			userID:         ownerID,
			body:           `{"title":"  "}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "no_identity",
			userID:         "",
			body:           `{"title":"Buy milk"}`,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "repo_error",
			userID: ownerID,
			body:   `{"title":"Buy milk"}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, oid, title string) (task.Task, error) {
					return task.Task{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewTasksHandler(&fakeUserResolver{}, repo)

			r := setupTasksRouter(tt.userID, http.MethodPost, "/tasks", h.CreateTask)

			w := doJSON(r, http.MethodPost, "/tasks", tt.body, nil)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusCreated {
				var resp taskEnvelope
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}

				if resp.Task == nil || resp.Task.Status != task.StatusActive {
					t.Fatalf("new task should be active, body=%s", w.Body.String())
				}

				if resp.Task.CompletedAt != nil {
					t.Fatalf("new task should have no completion timestamp")
				}
			}
		})
	}
}

func TestListTasksHandler(t *testing.T) {
	ownerID := uuid.NewString()
	now := time.Now().UTC()

	newest := task.Task{ID: uuid.NewString(), Title: "newest", Status: task.StatusActive, CreatedAt: now}
	oldest := task.Task{ID: uuid.NewString(), Title: "oldest", Status: task.StatusActive, CreatedAt: now.Add(-time.Hour)}

	repo := &fakeTasksRepo{
		listFn: func(ctx context.Context, oid string) ([]task.Task, error) {
			return []task.Task{newest, oldest}, nil
		},
	}

	h := handlers.NewTasksHandler(&fakeUserResolver{}, repo)
	r := setupTasksRouter(ownerID, http.MethodGet, "/tasks", h.ListTasks)

	w := doJSON(r, http.MethodGet, "/tasks", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp taskEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(resp.Tasks) != 2 || resp.Tasks[0].Title != "newest" {
		t.Fatalf("ordering lost: %s", w.Body.String())
	}

	// a second request with the returned ETag short-circuits
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag header")
	}

	w2 := doJSON(r, http.MethodGet, "/tasks", "", map[string]string{"If-None-Match": etag})

	if w2.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want 304", w2.Code)
	}
}

func TestListTasksUnknownUser(t *testing.T) {
	users := &fakeUserResolver{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{}, postgres.ErrUserNotFound
		},
	}

	h := handlers.NewTasksHandler(users, &fakeTasksRepo{})
	r := setupTasksRouter(uuid.NewString(), http.MethodGet, "/tasks", h.ListTasks)

	w := doJSON(r, http.MethodGet, "/tasks", "", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404, body=%s", w.Code, w.Body.String())
	}

	if !strings.Contains(w.Body.String(), "User not found") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestUpdateTaskHandler(t *testing.T) {
	ownerID := uuid.NewString()

	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"title":"Renamed"}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.updateFn = func(ctx context.Context, id, oid, title string) (task.Task, error) {
					return task.Task{ID: id, Title: title, Status: task.StatusActive, OwnerID: oid}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "empty_title",
			body:           `{"title":""}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_found_or_foreign",
			body: `{"title":"Renamed"}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.updateFn = func(ctx context.Context, id, oid, title string) (task.Task, error) {
					return task.Task{}, task.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewTasksHandler(&fakeUserResolver{}, repo)
			r := setupTasksRouter(ownerID, http.MethodPatch, "/tasks/:id", h.UpdateTask)

			w := doJSON(r, http.MethodPatch, "/tasks/"+uuid.NewString(), tt.body, nil)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// Toggle through the real in-memory store: two flips land back where we started.
func TestToggleTaskInvolution(t *testing.T) {
	ownerID := uuid.NewString()

	store := memory.NewTasksRepo()

	created, err := store.Create(context.Background(), ownerID, "Write spec")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	h := handlers.NewTasksHandler(&fakeUserResolver{}, store)
	r := setupTasksRouter(ownerID, http.MethodPatch, "/tasks/:id/toggle", h.ToggleTask)

	w := doJSON(r, http.MethodPatch, "/tasks/"+created.ID+"/toggle", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("first toggle: status %d, body=%s", w.Code, w.Body.String())
	}

	var first taskEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if first.Task.Status != task.StatusCompleted || first.Task.CompletedAt == nil {
		t.Fatalf("after first toggle want completed with timestamp, got %+v", first.Task)
	}

	w = doJSON(r, http.MethodPatch, "/tasks/"+created.ID+"/toggle", "", nil)

	var second taskEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if second.Task.Status != task.StatusActive || second.Task.CompletedAt != nil {
		t.Fatalf("after second toggle want active with no timestamp, got %+v", second.Task)
	}
}

// Another user's id never reaches tasks it does not own.
func TestTaskOwnershipIsolation(t *testing.T) {
	alice := uuid.NewString()
	bob := uuid.NewString()

	store := memory.NewTasksRepo()

	aliceTask, err := store.Create(context.Background(), alice, "private")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	h := handlers.NewTasksHandler(&fakeUserResolver{}, store)

	// Bob listing sees nothing
	listRouter := setupTasksRouter(bob, http.MethodGet, "/tasks", h.ListTasks)
	w := doJSON(listRouter, http.MethodGet, "/tasks", "", nil)

	var resp taskEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Tasks) != 0 {
		t.Fatalf("bob sees alice's tasks: %s", w.Body.String())
	}

	// Bob mutating gets the same 404 an absent task would give
	for _, tc := range []struct {
		method string
		tmpl   string
		path   string
		h      gin.HandlerFunc
		body   string
	}{
		{http.MethodPatch, "/tasks/:id", "/tasks/" + aliceTask.ID, h.UpdateTask, `{"title":"stolen"}`},
		{http.MethodPatch, "/tasks/:id/toggle", "/tasks/" + aliceTask.ID + "/toggle", h.ToggleTask, ""},
		{http.MethodDelete, "/tasks/:id", "/tasks/" + aliceTask.ID, h.DeleteTask, ""},
	} {
		r := setupTasksRouter(bob, tc.method, tc.tmpl, tc.h)
		w := doJSON(r, tc.method, tc.path, tc.body, nil)

		if w.Code != http.StatusNotFound {
			t.Fatalf("%s %s: got status %d, want 404", tc.method, tc.path, w.Code)
		}

		if !strings.Contains(w.Body.String(), "Task not found") {
			t.Fatalf("%s %s: unexpected body %s", tc.method, tc.path, w.Body.String())
		}
	}

	// and the task is still there for Alice
	got, err := store.Toggle(context.Background(), aliceTask.ID, alice)
	if err != nil {
		t.Fatalf("alice lost her task: %v", err)
	}
	if got.Title != "private" {
		t.Fatalf("task mutated by foreign user: %+v", got)
	}
}

func TestDeleteTaskHandler(t *testing.T) {
	ownerID := uuid.NewString()

	tests := []struct {
		name           string
		repoSetUp      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name:           "success",
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			repoSetUp: func(f *fakeTasksRepo) {
				f.deleteFn = func(ctx context.Context, id, oid string) error {
					return task.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			repoSetUp: func(f *fakeTasksRepo) {
				f.deleteFn = func(ctx context.Context, id, oid string) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewTasksHandler(&fakeUserResolver{}, repo)
			r := setupTasksRouter(ownerID, http.MethodDelete, "/tasks/:id", h.DeleteTask)

			w := doJSON(r, http.MethodDelete, "/tasks/"+uuid.NewString(), "", nil)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
