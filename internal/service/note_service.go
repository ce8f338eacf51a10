package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
	"github.com/adeshyearanty/crm-lead-service/internal/repository"
	"github.com/adeshyearanty/crm-lead-service/internal/storage"
)

const msgEmptyNote = "Note cannot be empty"

var (
	objectKeyPattern = regexp.MustCompile(`"s3://([^"]+)"`)

	noteSortFields = query.NewFieldSet("createdAt", "updatedAt", "title", "pinnedAt")
)

// NoteListQuery holds the list options of the notes of a lead
type NoteListQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder domain.SortOrder
}

type NoteService struct {
	notes      repository.Collection[*domain.Note]
	comments   repository.Collection[*domain.Comment]
	tasks      TaskClient
	store      storage.Storage
	activities ActivityLogger
	policy     *bluemonday.Policy
	logger     *zap.Logger
	now        func() time.Time
}

func NewNoteService(
	notes repository.Collection[*domain.Note],
	comments repository.Collection[*domain.Comment],
	tasks TaskClient,
	store storage.Storage,
	activities ActivityLogger,
	logger *zap.Logger,
) *NoteService {
	return &NoteService{
		notes:      notes,
		comments:   comments,
		tasks:      tasks,
		store:      store,
		activities: orNop(activities),
		policy:     NotePolicy(),
		logger:     logger,
		now:        time.Now,
	}
}

// NotePolicy is the HTML policy applied to note content. It keeps user
// generated markup and images referencing the object store.
func NotePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowURLSchemes("s3")
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("style").OnElements("span", "p")
	return p
}

// ObjectKeys returns the object store keys referenced as "s3://<key>" in
// note content, URL-decoded
func ObjectKeys(content string) []string {
	var keys []string
	for _, m := range objectKeyPattern.FindAllStringSubmatch(content, -1) {
		key, err := url.PathUnescape(m[1])
		if err != nil {
			key = m[1]
		}
		keys = append(keys, key)
	}
	return keys
}

// Create stores a note and, when asked for with a due date, a follow-up task
// assigned to the author
func (s *NoteService) Create(ctx context.Context, req *domain.CreateNoteRequest) (*domain.Note, error) {
	trimmed := strings.TrimSpace(req.Content)
	if trimmed == "" {
		return nil, invalidInput(msgEmptyNote)
	}
	leadID, err := parseID(req.LeadID, "lead")
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	note := &domain.Note{
		ID:             bson.NewObjectID(),
		Title:          req.Title,
		LeadID:         leadID,
		Content:        s.policy.Sanitize(trimmed),
		CreatedBy:      req.CreatedBy,
		OrganizationID: req.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.notes.Insert(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.activities.Log(ctx, domain.Activity{
		ActivityType: domain.ActivityNoteCreated,
		LeadID:       req.LeadID,
		NoteID:       note.ID.Hex(),
		Description:  fmt.Sprintf("Note created: %s", req.Title),
		PerformedBy:  req.CreatedBy,
		Metadata: map[string]any{
			"leadId":  req.LeadID,
			"content": preview(trimmed),
		},
	})

	if req.CreateTask && req.DueDate != "" {
		s.createTask(ctx, note, req, trimmed)
	}
	return note, nil
}

// createTask links a follow-up task to the note. Failures are logged and
// leave the note without a task.
func (s *NoteService) createTask(ctx context.Context, note *domain.Note, req *domain.CreateNoteRequest, content string) {
	if s.tasks == nil {
		return
	}
	description := req.TaskDescription
	if description == "" {
		description = content
	}

	task, err := s.tasks.Create(ctx, domain.Task{
		Title:          fmt.Sprintf("Follow-up from Note: %s", req.Title),
		Description:    description,
		DueDate:        req.DueDate,
		LeadID:         req.LeadID,
		NoteID:         note.ID.Hex(),
		Type:           domain.TaskTypeReminder,
		Status:         domain.TaskStatusPending,
		Priority:       domain.TaskPriorityMedium,
		AssignedTo:     req.CreatedBy,
		CreatedBy:      req.CreatedBy,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		s.logger.Error("Failed to create follow-up task",
			zap.String("note_id", note.ID.Hex()),
			zap.Error(err),
		)
		return
	}

	updated, err := s.notes.UpdateOne(ctx, repository.ByID(note.ID), map[string]any{"createdTaskId": task.ID})
	if err != nil {
		s.logger.Error("Failed to link task to note",
			zap.String("note_id", note.ID.Hex()),
			zap.String("task_id", task.ID),
			zap.Error(err),
		)
		return
	}
	*note = *updated
}

// FindByLead lists the notes of a lead, pinned notes first
func (s *NoteService) FindByLead(ctx context.Context, leadID string, q NoteListQuery) (domain.ItemsPage[*domain.Note], error) {
	oid, err := parseID(leadID, "lead")
	if err != nil {
		return domain.ItemsPage[*domain.Note]{}, err
	}

	plan := query.Plan{
		Filter:  repository.Where("leadId", oid),
		Leading: []query.Sort{{Field: "isPinned", Desc: true}},
		Sort:    query.Sort{Field: "createdAt", Desc: q.SortOrder != domain.SortAsc},
		Page:    max(q.Page, 1),
		Limit:   q.Limit,
	}
	if plan.Limit < 1 {
		plan.Limit = 10
	}
	if noteSortFields.Allows(q.SortBy) {
		plan.Sort.Field = q.SortBy
	}
	if q.Search != "" {
		plan.Filter.AnyOf(query.Contains("title", q.Search), query.Contains("content", q.Search))
	}

	page, err := query.Execute[*domain.Note](ctx, s.notes, plan)
	if err != nil {
		return domain.ItemsPage[*domain.Note]{}, fmt.Errorf("failed to list notes: %w", err)
	}
	return domain.NewItemsPage(page.Data, page.Meta.Total, plan.Page, plan.Limit), nil
}

// Update changes the title or content of a note. Images no longer
// referenced by the content are removed from the object store.
func (s *NoteService) Update(ctx context.Context, noteID string, req *domain.UpdateNoteRequest) (*domain.Note, error) {
	oid, err := parseID(noteID, "note")
	if err != nil {
		return nil, err
	}
	existing, err := s.find(ctx, oid, noteID)
	if err != nil {
		return nil, err
	}

	set := map[string]any{"updatedAt": s.now().UTC()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	var content string
	if req.Content != nil {
		trimmed := strings.TrimSpace(*req.Content)
		if trimmed == "" {
			return nil, invalidInput(msgEmptyNote)
		}
		content = s.policy.Sanitize(trimmed)
		set["content"] = content
		s.deleteObjects(ctx, removedKeys(existing.Content, content))
	}

	note, err := s.notes.UpdateOne(ctx, repository.ByID(oid), set)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noteNotFound(noteID)
		}
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	if req.CreatedBy != "" && req.OrganizationID != "" {
		meta := map[string]any{"leadId": note.LeadID.Hex()}
		if content != "" {
			meta["content"] = preview(content)
		}
		s.activities.Log(ctx, domain.Activity{
			ActivityType: domain.ActivityNoteUpdated,
			LeadID:       note.LeadID.Hex(),
			NoteID:       noteID,
			Description:  fmt.Sprintf("Note updated: %s", note.Title),
			PerformedBy:  req.CreatedBy,
			Metadata:     meta,
		})
	}
	return note, nil
}

// Delete removes a note with its comments, images and follow-up task
func (s *NoteService) Delete(ctx context.Context, noteID, userID string) (*domain.Note, error) {
	oid, err := parseID(noteID, "note")
	if err != nil {
		return nil, err
	}
	note, err := s.notes.DeleteOne(ctx, repository.ByID(oid))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noteNotFound(noteID)
		}
		return nil, fmt.Errorf("failed to delete note: %w", err)
	}

	s.deleteObjects(ctx, ObjectKeys(note.Content))

	if _, err := s.comments.DeleteMany(ctx, repository.Where("noteId", oid)); err != nil {
		s.logger.Error("Failed to delete note comments", zap.String("note_id", noteID), zap.Error(err))
	}

	leadID := note.LeadID.Hex()
	s.activities.Log(ctx, domain.Activity{
		ActivityType: domain.ActivityNoteDeleted,
		LeadID:       leadID,
		NoteID:       noteID,
		Description:  fmt.Sprintf("Note deleted: %s", note.Title),
		PerformedBy:  userID,
		Metadata:     map[string]any{"leadId": leadID},
	})

	if note.CreatedTaskID != "" && s.tasks != nil {
		if err := s.tasks.Delete(ctx, note.CreatedTaskID); err != nil {
			s.logger.Error("Failed to delete note task",
				zap.String("note_id", noteID),
				zap.String("task_id", note.CreatedTaskID),
				zap.Error(err),
			)
			return note, nil
		}
		s.activities.Log(ctx, domain.Activity{
			ActivityType: domain.ActivityNoteTaskDeleted,
			LeadID:       leadID,
			NoteID:       noteID,
			Description:  fmt.Sprintf("Task deleted with note: %s", note.Title),
			PerformedBy:  userID,
			Metadata: map[string]any{
				"taskId": note.CreatedTaskID,
				"leadId": leadID,
			},
		})
	}
	return note, nil
}

// Pin pins or unpins a note
func (s *NoteService) Pin(ctx context.Context, noteID string, pin bool, userID string) (*domain.Note, error) {
	oid, err := parseID(noteID, "note")
	if err != nil {
		return nil, err
	}

	set := map[string]any{"isPinned": pin, "pinnedAt": nil}
	if pin {
		set["pinnedAt"] = s.now().UTC()
	}
	note, err := s.notes.UpdateOne(ctx, repository.ByID(oid), set)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noteNotFound(noteID)
		}
		return nil, fmt.Errorf("failed to pin note: %w", err)
	}

	activityType, verb := domain.ActivityNoteUnpinned, "unpinned"
	if pin {
		activityType, verb = domain.ActivityNotePinned, "pinned"
	}
	s.activities.Log(ctx, domain.Activity{
		ActivityType: activityType,
		LeadID:       note.LeadID.Hex(),
		NoteID:       noteID,
		Description:  fmt.Sprintf("Note %s: %s", verb, note.Title),
		PerformedBy:  userID,
		Metadata:     map[string]any{"leadId": note.LeadID.Hex()},
	})
	return note, nil
}

func (s *NoteService) find(ctx context.Context, oid bson.ObjectID, id string) (*domain.Note, error) {
	note, err := s.notes.FindOne(ctx, repository.ByID(oid))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noteNotFound(id)
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

func (s *NoteService) deleteObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to delete note image", zap.String("key", key), zap.Error(err))
		}
	}
}

func removedKeys(before, after string) []string {
	kept := make(map[string]struct{})
	for _, k := range ObjectKeys(after) {
		kept[k] = struct{}{}
	}
	var removed []string
	for _, k := range ObjectKeys(before) {
		if _, ok := kept[k]; !ok {
			removed = append(removed, k)
		}
	}
	return removed
}

func noteNotFound(id string) error {
	return notFound("Note with ID %q not found", id)
}
