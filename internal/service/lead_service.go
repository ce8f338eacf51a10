package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/export"
	"github.com/adeshyearanty/crm-lead-service/internal/logger"
	"github.com/adeshyearanty/crm-lead-service/internal/metrics"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
	"github.com/adeshyearanty/crm-lead-service/internal/repository"
	"github.com/adeshyearanty/crm-lead-service/internal/storage"
)

const (
	msgDuplicateEmail = "Lead with this email already exists"
	msgInvalidLeadIDs = "Invalid or empty leadIds array"
	msgMissingLeads   = "Some leads do not exist"
)

type LeadService struct {
	leads      repository.Collection[*domain.Lead]
	planner    *query.Planner
	store      storage.Storage
	activities ActivityLogger
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

func NewLeadService(
	leads repository.Collection[*domain.Lead],
	planner *query.Planner,
	store storage.Storage,
	activities ActivityLogger,
	m *metrics.Metrics,
	logger *zap.Logger,
) *LeadService {
	if m == nil {
		m = metrics.NewNop()
	}
	return &LeadService{
		leads:      leads,
		planner:    planner,
		store:      store,
		activities: orNop(activities),
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// Create stores a new lead. The email must not be taken by another lead.
// When image is set it is uploaded first; a failed upload fails the create.
func (s *LeadService) Create(ctx context.Context, req *domain.CreateLeadRequest, image *Upload) (*domain.Lead, error) {
	lead := req.ToLead()

	if err := s.ensureEmailFree(ctx, lead.Email, bson.ObjectID{}); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if image != nil {
		key, err := s.uploadImage(ctx, image, now)
		if err != nil {
			return nil, err
		}
		lead.LeadImage = key
	}

	lead.ID = bson.NewObjectID()
	lead.CreatedDate = now
	lead.CreatedAt = now
	lead.UpdatedAt = now

	if err := s.leads.Insert(ctx, lead); err != nil {
		if lead.LeadImage != "" {
			s.deleteImage(ctx, lead.LeadImage)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateKey()
		}
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.activities.Log(ctx, domain.Activity{
		ActivityType: domain.ActivityLeadCreated,
		LeadID:       lead.ID.Hex(),
		Description:  fmt.Sprintf("Lead created by %s", req.CreatedBy),
		PerformedBy:  req.CreatedBy,
		Metadata:     leadSnapshot(lead),
	})

	logger.WithLead(s.logger, lead.ID.Hex()).Info("Lead created",
		zap.String("created_by", req.CreatedBy),
	)
	return lead, nil
}

// GetByID returns a single lead
func (s *LeadService) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	oid, err := parseID(id, "lead")
	if err != nil {
		return nil, err
	}
	return s.find(ctx, oid, id)
}

func (s *LeadService) find(ctx context.Context, oid bson.ObjectID, id string) (*domain.Lead, error) {
	lead, err := s.leads.FindOne(ctx, repository.ByID(oid))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Lead with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// Update applies a partial update. A new image replaces the stored one; an
// explicitly empty leadImage removes it.
func (s *LeadService) Update(ctx context.Context, id string, req *domain.UpdateLeadRequest, image *Upload) (*domain.Lead, error) {
	oid, err := parseID(id, "lead")
	if err != nil {
		return nil, err
	}
	lead, err := s.find(ctx, oid, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		if email := domain.NormalizeEmail(*req.Email); email != lead.Email {
			if err := s.ensureEmailFree(ctx, email, oid); err != nil {
				return nil, err
			}
		}
	}

	now := s.now().UTC()
	switch {
	case image != nil:
		if lead.LeadImage != "" {
			s.deleteImage(ctx, lead.LeadImage)
		}
		key, err := s.uploadImage(ctx, image, now)
		if err != nil {
			return nil, err
		}
		lead.LeadImage = key
	case req.ClearsImage() && lead.LeadImage != "":
		if err := s.store.Delete(ctx, lead.LeadImage); err != nil {
			logger.WithLead(s.logger, id).Error("Failed to delete lead image",
				zap.String("key", lead.LeadImage),
				zap.Error(err),
			)
			return nil, upstream("Failed to delete lead image")
		}
		lead.LeadImage = ""
	}

	req.Apply(lead)
	lead.UpdatedAt = now

	if err := s.leads.ReplaceOne(ctx, repository.ByID(oid), lead); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFound("Lead with ID %s not found", id)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, duplicateKey()
		}
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	meta := leadSnapshot(lead)
	meta["updatedFields"] = req.UpdatedFields
	s.activities.Log(ctx, domain.Activity{
		ActivityType: domain.ActivityLeadUpdated,
		LeadID:       id,
		Description:  fmt.Sprintf("Lead updated by %s", req.UpdatedBy),
		PerformedBy:  req.UpdatedBy,
		Metadata:     meta,
	})
	return lead, nil
}

// Delete removes a lead and, best effort, its image
func (s *LeadService) Delete(ctx context.Context, id, deletedBy string) (*domain.Lead, error) {
	oid, err := parseID(id, "lead")
	if err != nil {
		return nil, err
	}

	lead, err := s.leads.DeleteOne(ctx, repository.ByID(oid))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Lead with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to delete lead: %w", err)
	}

	if lead.LeadImage != "" {
		s.deleteImage(ctx, lead.LeadImage)
	}

	s.activities.Log(ctx, domain.Activity{
		ActivityType: domain.ActivityLeadDeleted,
		LeadID:       id,
		Description:  fmt.Sprintf("Lead deleted by %s", deletedBy),
		PerformedBy:  deletedBy,
		Metadata:     leadSnapshot(lead),
	})
	return lead, nil
}

// BulkDelete removes every listed lead. The whole batch fails when any id
// does not exist.
func (s *LeadService) BulkDelete(ctx context.Context, req *domain.BulkDeleteRequest) (*domain.BulkDeleteResponse, error) {
	ids, leads, err := s.findBatch(ctx, req.LeadIDs)
	if err != nil {
		return nil, err
	}

	for _, lead := range leads {
		meta := leadSnapshot(lead)
		meta["bulkOperation"] = true
		meta["totalLeadsInBatch"] = len(req.LeadIDs)
		s.activities.Log(ctx, domain.Activity{
			ActivityType: domain.ActivityLeadDeleted,
			LeadID:       lead.ID.Hex(),
			Description:  fmt.Sprintf("Lead deleted by %s", req.DeletedBy),
			PerformedBy:  req.DeletedBy,
			Metadata:     meta,
		})
		if lead.LeadImage != "" {
			s.deleteImage(ctx, lead.LeadImage)
		}
	}

	n, err := s.leads.DeleteMany(ctx, repository.ByIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to delete leads: %w", err)
	}
	return &domain.BulkDeleteResponse{Success: true, DeletedCount: n}, nil
}

// BulkUpdate applies the same patch to every listed lead
func (s *LeadService) BulkUpdate(ctx context.Context, req *domain.BulkUpdateRequest) (*domain.ModifiedCountResponse, error) {
	fields := req.LeadPatch.Fields()
	if len(fields) == 0 {
		return nil, invalidInput("No fields to update")
	}

	ids, leads, err := s.findBatch(ctx, req.LeadIDs)
	if err != nil {
		return nil, err
	}

	updatedFields := make([]string, 0, len(fields))
	for name := range fields {
		updatedFields = append(updatedFields, name)
	}
	sort.Strings(updatedFields)

	performedBy := ""
	if req.UpdatedBy != nil {
		performedBy = *req.UpdatedBy
	}
	for _, lead := range leads {
		meta := leadSnapshot(lead)
		meta["bulkOperation"] = true
		meta["totalLeadsInBatch"] = len(req.LeadIDs)
		meta["updatedFields"] = updatedFields
		s.activities.Log(ctx, domain.Activity{
			ActivityType: domain.ActivityLeadUpdated,
			LeadID:       lead.ID.Hex(),
			Description:  fmt.Sprintf("Lead updated by %s", performedBy),
			PerformedBy:  performedBy,
			Metadata:     meta,
		})
	}

	fields["updatedAt"] = s.now().UTC()
	n, err := s.leads.UpdateMany(ctx, repository.ByIDs(ids), fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update leads: %w", err)
	}
	return &domain.ModifiedCountResponse{ModifiedCount: n}, nil
}

// Archive sets the archived flag of every listed lead. Archive defaults to
// true.
func (s *LeadService) Archive(ctx context.Context, req *domain.ArchiveRequest) (*domain.ModifiedCountResponse, error) {
	ids, _, err := s.findBatch(ctx, req.LeadIDs)
	if err != nil {
		return nil, err
	}

	archive := true
	if req.Archive != nil {
		archive = *req.Archive
	}
	n, err := s.leads.UpdateMany(ctx, repository.ByIDs(ids), map[string]any{
		"isArchived": archive,
		"updatedAt":  s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to archive leads: %w", err)
	}
	return &domain.ModifiedCountResponse{ModifiedCount: n}, nil
}

// Search runs an advanced search. When columns are selected each item
// holds only those columns and _id.
func (s *LeadService) Search(ctx context.Context, spec domain.PaginationSpec, clauses []domain.FilterClause) (domain.PageResult[any], error) {
	plan, err := s.plan(spec, clauses)
	if err != nil {
		return domain.PageResult[any]{}, err
	}

	page, err := query.Execute[*domain.Lead](ctx, s.leads, plan)
	if err != nil {
		return domain.PageResult[any]{}, fmt.Errorf("failed to search leads: %w", err)
	}
	s.metrics.RecordLeadSearch()

	return query.MapPage(page, func(l *domain.Lead) any {
		if len(plan.Projection) == 0 {
			return l
		}
		return project(l, plan.Projection)
	}), nil
}

// ExportSelected renders the listed leads as CSV
func (s *LeadService) ExportSelected(ctx context.Context, leadIDs, columns []string) ([]byte, error) {
	ids, err := repository.ParseIDs(leadIDs)
	if err != nil {
		return nil, invalidInput(msgInvalidLeadIDs)
	}

	leads, err := s.leads.Find(ctx, query.Plan{Filter: repository.ByIDs(ids)})
	if err != nil {
		return nil, fmt.Errorf("failed to find leads for export: %w", err)
	}
	if len(leads) == 0 {
		return nil, notFound("No leads found for export")
	}
	return s.render(export.FormatCSV, columns, leads)
}

// ExportAdvanced renders every lead matching the search, ignoring paging
func (s *LeadService) ExportAdvanced(ctx context.Context, spec domain.PaginationSpec, clauses []domain.FilterClause, format export.Format) ([]byte, error) {
	plan, err := s.plan(spec, clauses)
	if err != nil {
		return nil, err
	}

	leads, err := s.leads.Find(ctx, plan.Unpaged())
	if err != nil {
		return nil, fmt.Errorf("failed to find leads for export: %w", err)
	}
	return s.render(format, spec.ColumnsToDisplay, leads)
}

// Counts returns the number of leads and of archived leads
func (s *LeadService) Counts(ctx context.Context) (total, archived int64, err error) {
	total, err = s.leads.Count(ctx, query.Filter{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count leads: %w", err)
	}
	archived, err = s.leads.Count(ctx, repository.Where("isArchived", true))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count archived leads: %w", err)
	}
	return total, archived, nil
}

func (s *LeadService) plan(spec domain.PaginationSpec, clauses []domain.FilterClause) (query.Plan, error) {
	plan, err := s.planner.Plan(spec, clauses)
	if err != nil {
		var fe *query.FieldError
		if errors.As(err, &fe) {
			return query.Plan{}, invalidInput("%s", fe.Error())
		}
		return query.Plan{}, fmt.Errorf("failed to plan lead search: %w", err)
	}
	return plan, nil
}

// render writes leads in format. Columns outside the lead allow-list are
// dropped; when none remain the default columns are used.
func (s *LeadService) render(format export.Format, columns []string, leads []*domain.Lead) ([]byte, error) {
	rows := make([]query.Document, len(leads))
	for i, l := range leads {
		rows[i] = l
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, export.Columns(s.planner.Columns(columns)), rows); err != nil {
		return nil, fmt.Errorf("failed to export leads: %w", err)
	}
	s.metrics.RecordExport(string(format))
	return buf.Bytes(), nil
}

// findBatch resolves a non-empty list of lead ids, failing when any is
// missing
func (s *LeadService) findBatch(ctx context.Context, leadIDs []string) ([]bson.ObjectID, []*domain.Lead, error) {
	if len(leadIDs) == 0 {
		return nil, nil, invalidInput(msgInvalidLeadIDs)
	}
	ids, err := repository.ParseIDs(leadIDs)
	if err != nil {
		return nil, nil, invalidInput(msgInvalidLeadIDs)
	}

	leads, err := s.leads.Find(ctx, query.Plan{Filter: repository.ByIDs(ids)})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find leads: %w", err)
	}
	if len(leads) != len(ids) {
		return nil, nil, invalidInput(msgMissingLeads)
	}
	return ids, leads, nil
}

func (s *LeadService) ensureEmailFree(ctx context.Context, email string, self bson.ObjectID) error {
	existing, err := s.leads.FindOne(ctx, repository.Where("email", email))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check lead email: %w", err)
	case existing.ID != self:
		return conflict(msgDuplicateEmail)
	}
	return nil
}

func (s *LeadService) uploadImage(ctx context.Context, image *Upload, now time.Time) (string, error) {
	key := fmt.Sprintf("leads/%d-%s", now.UnixMilli(), baseName(image.Filename))
	if _, err := s.store.Upload(ctx, key, image.ContentType, image.Data); err != nil {
		s.metrics.RecordImageUpload("lead", false)
		s.logger.Error("Failed to upload lead image", zap.String("key", key), zap.Error(err))
		return "", upstream("Failed to upload lead image")
	}
	s.metrics.RecordImageUpload("lead", true)
	return key, nil
}

// deleteImage removes an image without failing the caller
func (s *LeadService) deleteImage(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete lead image", zap.String("key", key), zap.Error(err))
	}
}

func leadSnapshot(l *domain.Lead) map[string]any {
	meta := map[string]any{
		"leadId":      l.ID.Hex(),
		"leadOwner":   l.LeadOwner,
		"fullName":    l.FullName,
		"email":       l.Email,
		"companyName": l.CompanyName,
		"status":      l.Status,
		"source":      l.Source,
	}
	if l.Score != nil {
		meta["score"] = *l.Score
	}
	return meta
}

func project(l *domain.Lead, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := l.FieldValue(f); ok {
			out[f] = v
		}
	}
	return out
}
