// Package repository persists domain documents. Every collection is accessed
// through the same Collection interface, filtered with query.Filter.
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/adeshyearanty/crm-lead-service/internal/query"
)

var (
	// ErrNotFound is returned when no document matches
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write violates a unique index
	ErrDuplicate = errors.New("duplicate key")
)

// Collection is a typed document collection. T is a pointer to a domain
// struct such as *domain.Lead.
type Collection[T any] interface {
	query.Source[T]
	FindOne(ctx context.Context, filter query.Filter) (T, error)
	Insert(ctx context.Context, doc T) error
	ReplaceOne(ctx context.Context, filter query.Filter, doc T) error
	// UpdateOne sets fields on the first match and returns the updated
	// document. Nil values unset the field.
	UpdateOne(ctx context.Context, filter query.Filter, set map[string]any) (T, error)
	UpdateMany(ctx context.Context, filter query.Filter, set map[string]any) (int64, error)
	// DeleteOne removes the first match and returns it
	DeleteOne(ctx context.Context, filter query.Filter) (T, error)
	DeleteMany(ctx context.Context, filter query.Filter) (int64, error)
}

// ByID matches the document with the given id
func ByID(id bson.ObjectID) query.Filter {
	var f query.Filter
	f.Set(query.Eq("_id", id))
	return f
}

// ByIDs matches the documents with any of the given ids
func ByIDs(ids []bson.ObjectID) query.Filter {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	var f query.Filter
	f.Set(query.In("_id", values...))
	return f
}

// Where matches documents whose fields equal the given values. Pairs are
// applied in order.
func Where(field string, value any, more ...any) query.Filter {
	var f query.Filter
	f.Set(query.Eq(field, value))
	for i := 0; i+1 < len(more); i += 2 {
		if name, ok := more[i].(string); ok {
			f.Set(query.Eq(name, more[i+1]))
		}
	}
	return f
}

// ParseIDs converts hex ids to ObjectIDs, reporting the first invalid one
func ParseIDs(hexIDs []string) ([]bson.ObjectID, error) {
	ids := make([]bson.ObjectID, 0, len(hexIDs))
	for _, h := range hexIDs {
		id, err := bson.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitSet(set map[string]any) (bson.D, bson.D) {
	var toSet, toUnset bson.D
	for k, v := range set {
		if v == nil {
			toUnset = append(toUnset, bson.E{Key: k, Value: ""})
			continue
		}
		toSet = append(toSet, bson.E{Key: k, Value: v})
	}
	return toSet, toUnset
}

func updateDoc(set map[string]any) bson.D {
	toSet, toUnset := splitSet(set)
	doc := bson.D{}
	if len(toSet) > 0 {
		doc = append(doc, bson.E{Key: "$set", Value: toSet})
	}
	if len(toUnset) > 0 {
		doc = append(doc, bson.E{Key: "$unset", Value: toUnset})
	}
	return doc
}
