package repository

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/adeshyearanty/crm-lead-service/internal/query"
)

// MemoryCollection is an in-process Collection used by tests and local runs
// without MongoDB. Documents are matched with query.Filter.Match and updated
// through a BSON round trip, so field names follow the bson tags.
type MemoryCollection[T query.Document] struct {
	mu   sync.RWMutex
	docs []T
	// unique lists fields whose values must not repeat
	unique []string
}

// NewMemoryCollection creates an empty collection enforcing the given
// unique fields
func NewMemoryCollection[T query.Document](unique ...string) *MemoryCollection[T] {
	return &MemoryCollection[T]{unique: unique}
}

// All returns a snapshot of the stored documents
func (m *MemoryCollection[T]) All() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]T(nil), m.docs...)
}

// Count implements query.Source
func (m *MemoryCollection[T]) Count(_ context.Context, filter query.Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return query.Count(m.docs, filter), nil
}

// Find implements query.Source
func (m *MemoryCollection[T]) Find(_ context.Context, plan query.Plan) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return query.Select(m.docs, plan), nil
}

// FindOne implements Collection
func (m *MemoryCollection[T]) FindOne(_ context.Context, filter query.Filter) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.index(filter); i >= 0 {
		return m.docs[i], nil
	}
	var zero T
	return zero, ErrNotFound
}

// Insert implements Collection
func (m *MemoryCollection[T]) Insert(_ context.Context, doc T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkUnique(doc, -1); err != nil {
		return err
	}
	m.docs = append(m.docs, doc)
	return nil
}

// ReplaceOne implements Collection
func (m *MemoryCollection[T]) ReplaceOne(_ context.Context, filter query.Filter, doc T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(filter)
	if i < 0 {
		return ErrNotFound
	}
	if err := m.checkUnique(doc, i); err != nil {
		return err
	}
	m.docs[i] = doc
	return nil
}

// UpdateOne implements Collection
func (m *MemoryCollection[T]) UpdateOne(_ context.Context, filter query.Filter, set map[string]any) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	i := m.index(filter)
	if i < 0 {
		return zero, ErrNotFound
	}
	updated, err := apply(m.docs[i], set)
	if err != nil {
		return zero, err
	}
	m.docs[i] = updated
	return updated, nil
}

// UpdateMany implements Collection
func (m *MemoryCollection[T]) UpdateMany(_ context.Context, filter query.Filter, set map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i, doc := range m.docs {
		if !filter.Match(doc) {
			continue
		}
		updated, err := apply(doc, set)
		if err != nil {
			return n, err
		}
		m.docs[i] = updated
		n++
	}
	return n, nil
}

// DeleteOne implements Collection
func (m *MemoryCollection[T]) DeleteOne(_ context.Context, filter query.Filter) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(filter)
	if i < 0 {
		var zero T
		return zero, ErrNotFound
	}
	doc := m.docs[i]
	m.docs = append(m.docs[:i], m.docs[i+1:]...)
	return doc, nil
}

// DeleteMany implements Collection
func (m *MemoryCollection[T]) DeleteMany(_ context.Context, filter query.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.docs[:0]
	var n int64
	for _, doc := range m.docs {
		if filter.Match(doc) {
			n++
			continue
		}
		kept = append(kept, doc)
	}
	m.docs = kept
	return n, nil
}

func (m *MemoryCollection[T]) index(filter query.Filter) int {
	for i, doc := range m.docs {
		if filter.Match(doc) {
			return i
		}
	}
	return -1
}

func (m *MemoryCollection[T]) checkUnique(doc T, skip int) error {
	for _, field := range m.unique {
		v, ok := doc.FieldValue(field)
		if !ok {
			continue
		}
		var f query.Filter
		f.Set(query.Eq(field, v))
		for i, other := range m.docs {
			if i != skip && f.Match(other) {
				return fmt.Errorf("%w: %s", ErrDuplicate, field)
			}
		}
	}
	return nil
}

// apply returns a copy of doc with set applied. Nil values remove the field.
func apply[T any](doc T, set map[string]any) (T, error) {
	var zero T
	raw, err := bson.Marshal(doc)
	if err != nil {
		return zero, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return zero, err
	}
	for k, v := range set {
		if v == nil {
			delete(m, k)
			continue
		}
		m[k] = v
	}
	raw, err = bson.Marshal(m)
	if err != nil {
		return zero, err
	}

	out := reflect.New(reflect.TypeOf(doc).Elem())
	if err := bson.Unmarshal(raw, out.Interface()); err != nil {
		return zero, err
	}
	return out.Interface().(T), nil
}
