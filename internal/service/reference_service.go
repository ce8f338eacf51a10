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

const maxReferencePageSize = 100

// ReferenceKind describes one collection of lead reference data
type ReferenceKind struct {
	// Name is used in messages, e.g. "Company size"
	Name string
	// KeyField must be unique across the collection
	KeyField string
	// SearchFields are matched by a free-text search
	SearchFields []string
	// LeadField is the lead attribute holding the KeyField value
	LeadField string
}

var (
	CompanySizeKind = ReferenceKind{
		Name:         "Company size",
		KeyField:     "label",
		SearchFields: []string{"label", "employeeRange"},
		LeadField:    "companySize",
	}
	IndustryTypeKind = ReferenceKind{
		Name:         "Industry type",
		KeyField:     "name",
		SearchFields: []string{"name"},
		LeadField:    "industryType",
	}
	LeadSourceKind = ReferenceKind{
		Name:         "Lead source",
		KeyField:     "name",
		SearchFields: []string{"name", "description"},
		LeadField:    "source",
	}
	LeadStatusKind = ReferenceKind{
		Name:         "Lead status",
		KeyField:     "name",
		SearchFields: []string{"name"},
		LeadField:    "status",
	}
)

// ReferenceService manages one collection of reference data such as lead
// statuses. Key values are unique and at most one document is the default.
type ReferenceService[T query.Document] struct {
	items      repository.Collection[T]
	leads      repository.Collection[*domain.Lead]
	kind       ReferenceKind
	sortFields query.FieldSet
	logger     *zap.Logger
	now        func() time.Time
}

func NewReferenceService[T query.Document](
	items repository.Collection[T],
	leads repository.Collection[*domain.Lead],
	kind ReferenceKind,
	logger *zap.Logger,
) *ReferenceService[T] {
	return &ReferenceService[T]{
		items:      items,
		leads:      leads,
		kind:       kind,
		sortFields: query.NewFieldSet(kind.KeyField, "isDefault", "createdAt", "updatedAt"),
		logger:     logger.With(zap.String("reference", kind.Name)),
		now:        time.Now,
	}
}

// Now returns the service clock, used to stamp new documents
func (s *ReferenceService[T]) Now() time.Time {
	return s.now().UTC()
}

// Create stores doc. A default doc takes the default flag from all others.
func (s *ReferenceService[T]) Create(ctx context.Context, doc T) (T, error) {
	var zero T
	key, _ := doc.FieldValue(s.kind.KeyField)
	if err := s.ensureUnique(ctx, key, bson.ObjectID{}); err != nil {
		return zero, err
	}

	if err := s.items.Insert(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return zero, duplicateKey()
		}
		return zero, fmt.Errorf("failed to create %s: %w", s.lower(), err)
	}

	if isDefault, _ := doc.FieldValue("isDefault"); isDefault == true {
		id := documentID(doc)
		if err := s.clearDefaults(ctx, id); err != nil {
			return zero, err
		}
	}
	return doc, nil
}

// List returns one page of documents. Limit is capped at 100.
func (s *ReferenceService[T]) List(ctx context.Context, q domain.ReferenceListQuery) (domain.ListResult[T], error) {
	plan := query.Plan{
		Sort:  query.Sort{Field: "createdAt", Desc: q.SortOrder != domain.SortAsc},
		Page:  max(q.Page, 1),
		Limit: min(q.Limit, maxReferencePageSize),
	}
	if plan.Limit < 1 {
		plan.Limit = 10
	}
	if s.sortFields.Allows(q.SortBy) {
		plan.Sort.Field = q.SortBy
	}
	if q.Search != "" {
		alts := make([]query.Predicate, len(s.kind.SearchFields))
		for i, f := range s.kind.SearchFields {
			alts[i] = query.Contains(f, q.Search)
		}
		plan.Filter.AnyOf(alts...)
	}

	page, err := query.Execute[T](ctx, s.items, plan)
	if err != nil {
		return domain.ListResult[T]{}, fmt.Errorf("failed to list %s: %w", s.lower(), err)
	}
	return domain.NewListResult(page.Data, page.Meta.Total, plan.Page, plan.Limit), nil
}

func (s *ReferenceService[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	oid, err := parseID(id, s.lower())
	if err != nil {
		return zero, err
	}
	return s.find(ctx, oid)
}

// Update applies fields to a document. Setting isDefault to true moves the
// default flag to this document.
func (s *ReferenceService[T]) Update(ctx context.Context, id string, fields map[string]any) (T, error) {
	var zero T
	oid, err := parseID(id, s.lower())
	if err != nil {
		return zero, err
	}
	if _, err := s.find(ctx, oid); err != nil {
		return zero, err
	}

	if key, ok := fields[s.kind.KeyField]; ok {
		if err := s.ensureUnique(ctx, key, oid); err != nil {
			return zero, err
		}
	}
	if fields["isDefault"] == true {
		if err := s.clearDefaults(ctx, oid); err != nil {
			return zero, err
		}
	}

	set := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		set[k] = v
	}
	set["updatedAt"] = s.Now()

	doc, err := s.items.UpdateOne(ctx, repository.ByID(oid), set)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return zero, s.notFound()
		case errors.Is(err, repository.ErrDuplicate):
			return zero, duplicateKey()
		}
		return zero, fmt.Errorf("failed to update %s: %w", s.lower(), err)
	}
	return doc, nil
}

func (s *ReferenceService[T]) Delete(ctx context.Context, id string) (T, error) {
	var zero T
	oid, err := parseID(id, s.lower())
	if err != nil {
		return zero, err
	}
	doc, err := s.items.DeleteOne(ctx, repository.ByID(oid))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, s.notFound()
		}
		return zero, fmt.Errorf("failed to delete %s: %w", s.lower(), err)
	}
	return doc, nil
}

// SetDefault makes the document the only default
func (s *ReferenceService[T]) SetDefault(ctx context.Context, id string) (T, error) {
	var zero T
	oid, err := parseID(id, s.lower())
	if err != nil {
		return zero, err
	}
	if _, err := s.find(ctx, oid); err != nil {
		return zero, err
	}
	if err := s.clearDefaults(ctx, oid); err != nil {
		return zero, err
	}

	doc, err := s.items.UpdateOne(ctx, repository.ByID(oid), map[string]any{
		"isDefault": true,
		"updatedAt": s.Now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, s.notFound()
		}
		return zero, fmt.Errorf("failed to set default %s: %w", s.lower(), err)
	}
	return doc, nil
}

func (s *ReferenceService[T]) Default(ctx context.Context) (T, error) {
	var zero T
	doc, err := s.items.FindOne(ctx, repository.Where("isDefault", true))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, notFound("Default %s not found", s.lower())
		}
		return zero, fmt.Errorf("failed to get default %s: %w", s.lower(), err)
	}
	return doc, nil
}

// Usage counts the leads referencing the document's key value
func (s *ReferenceService[T]) Usage(ctx context.Context, id string) (*domain.UsageResponse, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	key, ok := doc.FieldValue(s.kind.KeyField)
	if !ok {
		return &domain.UsageResponse{}, nil
	}

	n, err := s.leads.Count(ctx, repository.Where(s.kind.LeadField, key))
	if err != nil {
		return nil, fmt.Errorf("failed to count %s usage: %w", s.lower(), err)
	}
	return &domain.UsageResponse{Count: n}, nil
}

func (s *ReferenceService[T]) find(ctx context.Context, oid bson.ObjectID) (T, error) {
	doc, err := s.items.FindOne(ctx, repository.ByID(oid))
	if err != nil {
		var zero T
		if errors.Is(err, repository.ErrNotFound) {
			return zero, s.notFound()
		}
		return zero, fmt.Errorf("failed to get %s: %w", s.lower(), err)
	}
	return doc, nil
}

func (s *ReferenceService[T]) ensureUnique(ctx context.Context, key any, self bson.ObjectID) error {
	if key == nil || key == "" {
		return nil
	}
	existing, err := s.items.FindOne(ctx, repository.Where(s.kind.KeyField, key))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check %s %s: %w", s.lower(), s.kind.KeyField, err)
	case documentID(existing) != self:
		return s.duplicate()
	}
	return nil
}

// clearDefaults removes the default flag from every document except keep
func (s *ReferenceService[T]) clearDefaults(ctx context.Context, keep bson.ObjectID) error {
	filter := repository.Where("isDefault", true)
	filter.Set(query.NotIn("_id", keep))
	if _, err := s.items.UpdateMany(ctx, filter, map[string]any{"isDefault": false}); err != nil {
		return fmt.Errorf("failed to clear default %s: %w", s.lower(), err)
	}
	return nil
}

func (s *ReferenceService[T]) notFound() error {
	return notFound("%s not found", s.kind.Name)
}

func (s *ReferenceService[T]) duplicate() error {
	return conflict("%s with this %s already exists", s.kind.Name, s.kind.KeyField)
}

func (s *ReferenceService[T]) lower() string {
	return strings.ToLower(s.kind.Name)
}

func documentID(doc query.Document) bson.ObjectID {
	v, _ := doc.FieldValue("_id")
	id, _ := v.(bson.ObjectID)
	return id
}
