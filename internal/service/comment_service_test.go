package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/service"
)

func comment(content string) *domain.CreateCommentRequest {
	return &domain.CreateCommentRequest{Content: content, CreatedBy: "user-1", OrganizationID: "org-1"}
}

func TestCommentService_Create(t *testing.T) {
	f := newNoteFixture()
	note := f.create(t, "Thread", "x")

	c, err := f.comments.Create(context.Background(), note.ID.Hex(), comment("  looks good  "))
	require.NoError(t, err)
	assert.Equal(t, "looks good", c.Content)
	assert.Equal(t, note.ID, c.NoteID)

	act := f.activities.last()
	assert.Equal(t, domain.ActivityNoteCommentAdded, act.ActivityType)
	assert.Equal(t, c.ID.Hex(), act.CommentID)
	assert.Equal(t, f.leadID, act.LeadID)
	assert.Equal(t, "Comment added to note: Thread", act.Description)
}

func TestCommentService_CreateErrors(t *testing.T) {
	f := newNoteFixture()
	note := f.create(t, "Thread", "x")

	_, err := f.comments.Create(context.Background(), note.ID.Hex(), comment("   "))
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, "Comment cannot be empty", err.Error())

	_, err = f.comments.Create(context.Background(), bson.NewObjectID().Hex(), comment("hi"))
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCommentService_FindByNoteOrdersOldestFirst(t *testing.T) {
	f := newNoteFixture()
	note := f.create(t, "Thread", "x")
	for _, text := range []string{"one", "two", "three"} {
		_, err := f.comments.Create(context.Background(), note.ID.Hex(), comment(text))
		require.NoError(t, err)
	}

	page, err := f.comments.FindByNote(context.Background(), note.ID.Hex(), 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "one", page.Items[0].Content)

	desc, err := f.comments.FindByNote(context.Background(), note.ID.Hex(), 1, 10, domain.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, "three", desc.Items[0].Content)
}

func TestCommentService_UpdateAndDelete(t *testing.T) {
	f := newNoteFixture()
	note := f.create(t, "Thread", "x")
	other := f.create(t, "Other", "y")
	c, err := f.comments.Create(context.Background(), note.ID.Hex(), comment("draft"))
	require.NoError(t, err)

	updated, err := f.comments.Update(context.Background(), note.ID.Hex(), c.ID.Hex(), " final ", "user-2")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)
	assert.Equal(t, domain.ActivityNoteCommentUpdated, f.activities.last().ActivityType)

	_, err = f.comments.Update(context.Background(), other.ID.Hex(), c.ID.Hex(), "moved", "user-2")
	assert.ErrorIs(t, err, service.ErrNotFound, "comments are scoped to their note")

	_, err = f.comments.Delete(context.Background(), note.ID.Hex(), c.ID.Hex(), "user-2")
	require.NoError(t, err)
	assert.Empty(t, f.commColl.All())
	assert.Equal(t, domain.ActivityNoteCommentDeleted, f.activities.last().ActivityType)

	_, err = f.comments.Delete(context.Background(), note.ID.Hex(), c.ID.Hex(), "user-2")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
