package tasks_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/tasks"
)

// newTaskServer serves a tiny in-memory task API rooted at /api/v1/tasks
func newTaskServer(t *testing.T) (*httptest.Server, map[string]domain.Task) {
	t.Helper()
	store := map[string]domain.Task{}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("x-api-key") != "test-key" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var task domain.Task
			require.NoError(t, json.NewDecoder(r.Body).Decode(&task))
			task.ID = "task-1"
			store[task.ID] = task
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(task)
		})
		r.Get("/note/{noteId}", func(w http.ResponseWriter, r *http.Request) {
			out := []domain.Task{}
			for _, task := range store {
				if task.NoteID == chi.URLParam(r, "noteId") {
					out = append(out, task)
				}
			}
			_ = json.NewEncoder(w).Encode(out)
		})
		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			task, ok := store[chi.URLParam(r, "id")]
			if !ok {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			var upd tasks.UpdateTaskRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&upd))
			if upd.Status != nil {
				task.Status = *upd.Status
			}
			store[task.ID] = task
			_ = json.NewEncoder(w).Encode(task)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			delete(store, chi.URLParam(r, "id"))
			w.WriteHeader(http.StatusNoContent)
		})
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, store
}

func TestClient_Lifecycle(t *testing.T) {
	server, store := newTaskServer(t)
	client := tasks.NewClient(server.URL+"/api/v1/tasks/", "test-key", time.Second, zap.NewNop())
	ctx := context.Background()

	created, err := client.Create(ctx, domain.Task{
		Title:    "Follow-up from Note: Intro call",
		LeadID:   "lead-1",
		NoteID:   "note-1",
		Type:     domain.TaskTypeReminder,
		Status:   domain.TaskStatusPending,
		Priority: domain.TaskPriorityMedium,
	})
	require.NoError(t, err)
	assert.Equal(t, "task-1", created.ID)

	found, err := client.FindByNote(ctx, "note-1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Follow-up from Note: Intro call", found[0].Title)

	completed := domain.TaskStatusCompleted
	updated, err := client.Update(ctx, "task-1", tasks.UpdateTaskRequest{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, updated.Status)

	require.NoError(t, client.Delete(ctx, "task-1"))
	assert.Empty(t, store)
}

func TestClient_ErrorStatus(t *testing.T) {
	server, _ := newTaskServer(t)
	client := tasks.NewClient(server.URL+"/api/v1/tasks", "test-key", time.Second, zap.NewNop())

	_, err := client.Update(context.Background(), "missing", tasks.UpdateTaskRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_WrongAPIKey(t *testing.T) {
	server, _ := newTaskServer(t)
	client := tasks.NewClient(server.URL+"/api/v1/tasks", "wrong", time.Second, zap.NewNop())

	_, err := client.FindByNote(context.Background(), "note-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_NotConfigured(t *testing.T) {
	client := tasks.NewClient("", "k", time.Second, zap.NewNop())

	err := client.Delete(context.Background(), "task-1")
	assert.ErrorIs(t, err, tasks.ErrNotConfigured)
}
