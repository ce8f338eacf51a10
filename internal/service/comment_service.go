package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
	"github.com/adeshyearanty/crm-lead-service/internal/repository"
)

const msgEmptyComment = "Comment cannot be empty"

type CommentService struct {
	comments   repository.Collection[*domain.Comment]
	notes      repository.Collection[*domain.Note]
	activities ActivityLogger
	logger     *zap.Logger
	now        func() time.Time
}

func NewCommentService(
	comments repository.Collection[*domain.Comment],
	notes repository.Collection[*domain.Note],
	activities ActivityLogger,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{
		comments:   comments,
		notes:      notes,
		activities: orNop(activities),
		logger:     logger,
		now:        time.Now,
	}
}

// Create adds a comment to a note
func (s *CommentService) Create(ctx context.Context, noteID string, req *domain.CreateCommentRequest) (*domain.Comment, error) {
	trimmed := strings.TrimSpace(req.Content)
	if trimmed == "" {
		return nil, invalidInput(msgEmptyComment)
	}
	note, err := s.note(ctx, noteID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	comment := &domain.Comment{
		ID:             bson.NewObjectID(),
		NoteID:         note.ID,
		Content:        trimmed,
		CreatedBy:      req.CreatedBy,
		OrganizationID: req.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.comments.Insert(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.activities.Log(ctx, domain.Activity{
		ActivityType: domain.ActivityNoteCommentAdded,
		LeadID:       note.LeadID.Hex(),
		NoteID:       noteID,
		CommentID:    comment.ID.Hex(),
		Description:  fmt.Sprintf("Comment added to note: %s", note.Title),
		PerformedBy:  req.CreatedBy,
		Metadata:     map[string]any{"content": preview(trimmed)},
	})
	return comment, nil
}

// FindByNote lists the comments of a note, oldest first unless sortOrder
// is desc
func (s *CommentService) FindByNote(ctx context.Context, noteID string, page, limit int, order domain.SortOrder) (domain.ItemsPage[*domain.Comment], error) {
	oid, err := parseID(noteID, "note")
	if err != nil {
		return domain.ItemsPage[*domain.Comment]{}, err
	}

	plan := query.Plan{
		Filter: repository.Where("noteId", oid),
		Sort:   query.Sort{Field: "createdAt", Desc: order == domain.SortDesc},
		Page:   max(page, 1),
		Limit:  limit,
	}
	if plan.Limit < 1 {
		plan.Limit = 10
	}

	result, err := query.Execute[*domain.Comment](ctx, s.comments, plan)
	if err != nil {
		return domain.ItemsPage[*domain.Comment]{}, fmt.Errorf("failed to list comments: %w", err)
	}
	return domain.NewItemsPage(result.Data, result.Meta.Total, plan.Page, plan.Limit), nil
}

// Update replaces the content of a comment on the given note
func (s *CommentService) Update(ctx context.Context, noteID, commentID, content, userID string) (*domain.Comment, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, invalidInput(msgEmptyComment)
	}
	note, err := s.note(ctx, noteID)
	if err != nil {
		return nil, err
	}
	cid, err := parseID(commentID, "comment")
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.UpdateOne(ctx, repository.Where("_id", cid, "noteId", note.ID), map[string]any{
		"content":   trimmed,
		"updatedAt": s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, commentNotFound(commentID)
		}
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	s.activities.Log(ctx, domain.Activity{
		ActivityType: domain.ActivityNoteCommentUpdated,
		LeadID:       note.LeadID.Hex(),
		NoteID:       noteID,
		CommentID:    commentID,
		Description:  fmt.Sprintf("Comment updated from note: %s", note.Title),
		PerformedBy:  userID,
		Metadata:     map[string]any{"content": preview(trimmed)},
	})
	return comment, nil
}

// Delete removes a comment from the given note
func (s *CommentService) Delete(ctx context.Context, noteID, commentID, userID string) (*domain.Comment, error) {
	note, err := s.note(ctx, noteID)
	if err != nil {
		return nil, err
	}
	cid, err := parseID(commentID, "comment")
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.DeleteOne(ctx, repository.Where("_id", cid, "noteId", note.ID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, commentNotFound(commentID)
		}
		return nil, fmt.Errorf("failed to delete comment: %w", err)
	}

	s.activities.Log(ctx, domain.Activity{
		ActivityType: domain.ActivityNoteCommentDeleted,
		LeadID:       note.LeadID.Hex(),
		NoteID:       noteID,
		CommentID:    commentID,
		Description:  fmt.Sprintf("Comment deleted from note: %s", note.Title),
		PerformedBy:  userID,
		Metadata:     map[string]any{},
	})
	return comment, nil
}

func (s *CommentService) note(ctx context.Context, noteID string) (*domain.Note, error) {
	oid, err := parseID(noteID, "note")
	if err != nil {
		return nil, err
	}
	note, err := s.notes.FindOne(ctx, repository.ByID(oid))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noteNotFound(noteID)
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

func commentNotFound(id string) error {
	return notFound("Comment with ID %q not found", id)
}
