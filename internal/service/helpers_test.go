package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
	"github.com/adeshyearanty/crm-lead-service/internal/repository"
	"github.com/adeshyearanty/crm-lead-service/internal/storage"
)

// memStore is an in-memory storage.Storage
type memStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Upload(ctx context.Context, key, contentType string, data io.Reader) (int64, error) {
	if m.uploadErr != nil {
		return 0, m.uploadErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return int64(len(b)), nil
}

func (m *memStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(string(b))), nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	return out
}

// recorder collects logged activities
type recorder struct {
	mu   sync.Mutex
	logs []domain.Activity
}

func (r *recorder) Log(ctx context.Context, a domain.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, a)
}

func (r *recorder) types() []domain.ActivityType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ActivityType, len(r.logs))
	for i, a := range r.logs {
		out[i] = a.ActivityType
	}
	return out
}

func (r *recorder) last() domain.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logs[len(r.logs)-1]
}

// fakeTasks records task calls
type fakeTasks struct {
	created   []domain.Task
	deleted   []string
	createErr error
}

func (f *fakeTasks) Create(ctx context.Context, task domain.Task) (*domain.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, task)
	task.ID = "task-1"
	return &task, nil
}

func (f *fakeTasks) Delete(ctx context.Context, taskID string) error {
	f.deleted = append(f.deleted, taskID)
	return nil
}

var errBoom = errors.New("boom")

func fakeLeadRequest() *domain.CreateLeadRequest {
	score := gofakeit.Number(0, 100)
	return &domain.CreateLeadRequest{
		LeadOwner:   gofakeit.Name(),
		FullName:    gofakeit.Name(),
		Email:       gofakeit.Email(),
		CompanyName: gofakeit.Company(),
		Status:      "New",
		Source:      "Web",
		Score:       &score,
		CreatedBy:   "user-1",
	}
}

// lostRaceCollection reads from memory but rejects every write with a unique
// index violation, as the store does when another writer takes the key
// between the uniqueness check and the write.
type lostRaceCollection[T query.Document] struct {
	*repository.MemoryCollection[T]
}

func (c lostRaceCollection[T]) Insert(context.Context, T) error {
	return fmt.Errorf("%w: E11000", repository.ErrDuplicate)
}

func (c lostRaceCollection[T]) ReplaceOne(context.Context, query.Filter, T) error {
	return fmt.Errorf("%w: E11000", repository.ErrDuplicate)
}

func (c lostRaceCollection[T]) UpdateOne(context.Context, query.Filter, map[string]any) (T, error) {
	var zero T
	return zero, fmt.Errorf("%w: E11000", repository.ErrDuplicate)
}
