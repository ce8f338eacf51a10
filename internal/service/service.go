// Package service holds the business rules of the lead service. Services
// depend on repository collections and outbound clients through small
// interfaces so tests can run them against in-memory fakes.
package service

import (
	"context"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
)

// ActivityLogger records timeline entries. Implementations must not block
// the caller on delivery.
type ActivityLogger interface {
	Log(ctx context.Context, a domain.Activity)
}

// TaskClient creates and removes follow-up tasks in the task service
type TaskClient interface {
	Create(ctx context.Context, task domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, taskID string) error
}

// Upload is a file received from a client
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// baseName strips directories from a client supplied file name
func baseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}

func parseID(id, what string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, invalidInput("Invalid %s ID: %s", what, id)
	}
	return oid, nil
}

// preview shortens activity content to 100 characters
func preview(s string) string {
	if utf8.RuneCountInString(s) <= 100 {
		return s
	}
	return string([]rune(s)[:100]) + "..."
}

// nopActivities discards every activity
type nopActivities struct{}

func (nopActivities) Log(context.Context, domain.Activity) {}

func orNop(a ActivityLogger) ActivityLogger {
	if a == nil {
		return nopActivities{}
	}
	return a
}
