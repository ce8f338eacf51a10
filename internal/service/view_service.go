package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
	"github.com/adeshyearanty/crm-lead-service/internal/repository"
)

// ViewService manages the saved lead views of each user. A user has at most
// one default view.
type ViewService struct {
	views  repository.Collection[*domain.View]
	logger *zap.Logger
	now    func() time.Time
}

func NewViewService(views repository.Collection[*domain.View], logger *zap.Logger) *ViewService {
	return &ViewService{
		views:  views,
		logger: logger,
		now:    time.Now,
	}
}

func (s *ViewService) Create(ctx context.Context, userID string, req *domain.CreateViewRequest) (*domain.View, error) {
	if req.IsDefault {
		if err := s.clearDefault(ctx, userID); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	view := &domain.View{
		ID:               bson.NewObjectID(),
		UserID:           userID,
		Name:             req.Name,
		IsDefault:        req.IsDefault,
		Filters:          req.Filters,
		SortBy:           req.SortBy,
		SortOrder:        req.SortOrder,
		ColumnsToDisplay: req.ColumnsToDisplay,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if view.Filters == nil {
		view.Filters = []domain.FilterClause{}
	}
	if view.ColumnsToDisplay == nil {
		view.ColumnsToDisplay = []string{}
	}

	if err := s.views.Insert(ctx, view); err != nil {
		return nil, fmt.Errorf("failed to create view: %w", err)
	}
	return view, nil
}

// List returns every view of the user, oldest first
func (s *ViewService) List(ctx context.Context, userID string) ([]*domain.View, error) {
	views, err := s.views.Find(ctx, query.Plan{
		Filter: repository.Where("userId", userID),
		Sort:   query.Sort{Field: "createdAt"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	return views, nil
}

func (s *ViewService) Get(ctx context.Context, userID, viewID string) (*domain.View, error) {
	oid, err := parseID(viewID, "view")
	if err != nil {
		return nil, err
	}
	return s.one(ctx, repository.Where("_id", oid, "userId", userID), "View not found")
}

func (s *ViewService) Default(ctx context.Context, userID string) (*domain.View, error) {
	return s.one(ctx, repository.Where("userId", userID, "isDefault", true), "Default view not found")
}

// Update changes a view. Setting isDefault moves the default flag from the
// user's other views to this one.
func (s *ViewService) Update(ctx context.Context, userID, viewID string, req *domain.UpdateViewRequest) (*domain.View, error) {
	oid, err := parseID(viewID, "view")
	if err != nil {
		return nil, err
	}
	filter := repository.Where("_id", oid, "userId", userID)
	if _, err := s.one(ctx, filter, "View not found"); err != nil {
		return nil, err
	}

	if req.IsDefault != nil && *req.IsDefault {
		if err := s.clearDefault(ctx, userID); err != nil {
			return nil, err
		}
	}

	set := map[string]any{"updatedAt": s.now().UTC()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.IsDefault != nil {
		set["isDefault"] = *req.IsDefault
	}
	if req.Filters != nil {
		set["filters"] = req.Filters
	}
	if req.SortBy != nil {
		set["sortBy"] = *req.SortBy
	}
	if req.SortOrder != nil {
		set["sortOrder"] = *req.SortOrder
	}
	if req.ColumnsToDisplay != nil {
		set["columnsToDisplay"] = req.ColumnsToDisplay
	}

	view, err := s.views.UpdateOne(ctx, filter, set)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("View not found")
		}
		return nil, fmt.Errorf("failed to update view: %w", err)
	}
	return view, nil
}

// Delete removes a view. Default views cannot be deleted.
func (s *ViewService) Delete(ctx context.Context, userID, viewID string) (*domain.View, error) {
	oid, err := parseID(viewID, "view")
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Deleting view", zap.String("user_id", userID), zap.String("view_id", viewID))
	view, err := s.views.DeleteOne(ctx, repository.Where("_id", oid, "userId", userID, "isDefault", false))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("View not found or cannot delete default view")
		}
		return nil, fmt.Errorf("failed to delete view: %w", err)
	}
	return view, nil
}

func (s *ViewService) one(ctx context.Context, filter query.Filter, missing string) (*domain.View, error) {
	view, err := s.views.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("%s", missing)
		}
		return nil, fmt.Errorf("failed to get view: %w", err)
	}
	return view, nil
}

func (s *ViewService) clearDefault(ctx context.Context, userID string) error {
	if _, err := s.views.UpdateMany(ctx, repository.Where("userId", userID, "isDefault", true), map[string]any{"isDefault": false}); err != nil {
		return fmt.Errorf("failed to clear default view: %w", err)
	}
	return nil
}
