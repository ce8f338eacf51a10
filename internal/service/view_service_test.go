package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/repository"
	"github.com/adeshyearanty/crm-lead-service/internal/service"
)

func newViewService() (*service.ViewService, *repository.MemoryCollection[*domain.View]) {
	views := repository.NewMemoryCollection[*domain.View]()
	return service.NewViewService(views, zap.NewNop()), views
}

func TestViewService_CreateNormalisesSlices(t *testing.T) {
	svc, _ := newViewService()
	view, err := svc.Create(context.Background(), "user-1", &domain.CreateViewRequest{Name: "Hot"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", view.UserID)
	assert.NotNil(t, view.Filters)
	assert.NotNil(t, view.ColumnsToDisplay)
	assert.False(t, view.IsDefault)
}

func TestViewService_SingleDefaultPerUser(t *testing.T) {
	svc, views := newViewService()
	ctx := context.Background()

	first, err := svc.Create(ctx, "user-1", &domain.CreateViewRequest{Name: "A", IsDefault: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-2", &domain.CreateViewRequest{Name: "Other", IsDefault: true})
	require.NoError(t, err)
	second, err := svc.Create(ctx, "user-1", &domain.CreateViewRequest{Name: "B", IsDefault: true})
	require.NoError(t, err)

	def, err := svc.Default(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	yes := true
	_, err = svc.Update(ctx, "user-1", first.ID.Hex(), &domain.UpdateViewRequest{IsDefault: &yes})
	require.NoError(t, err)

	defaults := map[string]int{}
	for _, v := range views.All() {
		if v.IsDefault {
			defaults[v.UserID]++
		}
	}
	assert.Equal(t, map[string]int{"user-1": 1, "user-2": 1}, defaults)

	def, err = svc.Default(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, def.ID)
}

func TestViewService_ListIsScopedToUser(t *testing.T) {
	svc, _ := newViewService()
	ctx := context.Background()
	for _, name := range []string{"one", "two"} {
		_, err := svc.Create(ctx, "user-1", &domain.CreateViewRequest{Name: name})
		require.NoError(t, err)
	}
	other, err := svc.Create(ctx, "user-2", &domain.CreateViewRequest{Name: "three"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Name)

	_, err = svc.Get(ctx, "user-1", other.ID.Hex())
	require.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, "View not found", err.Error())

	_, err = svc.Default(ctx, "user-1")
	assert.Equal(t, "Default view not found", err.Error())
}

func TestViewService_Update(t *testing.T) {
	svc, _ := newViewService()
	ctx := context.Background()
	view, err := svc.Create(ctx, "user-1", &domain.CreateViewRequest{Name: "Mine", ColumnsToDisplay: []string{"email"}})
	require.NoError(t, err)

	name := "Renamed"
	order := domain.SortAsc
	updated, err := svc.Update(ctx, "user-1", view.ID.Hex(), &domain.UpdateViewRequest{
		Name:      &name,
		SortOrder: &order,
		Filters:   []domain.FilterClause{{Field: "status", Condition: domain.ConditionEquals, Values: []string{"New"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, domain.SortAsc, updated.SortOrder)
	assert.Len(t, updated.Filters, 1)
	assert.Equal(t, []string{"email"}, updated.ColumnsToDisplay)

	_, err = svc.Update(ctx, "user-2", view.ID.Hex(), &domain.UpdateViewRequest{Name: &name})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Update(ctx, "user-1", "bad", &domain.UpdateViewRequest{Name: &name})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestViewService_DeleteKeepsDefault(t *testing.T) {
	svc, views := newViewService()
	ctx := context.Background()
	def, err := svc.Create(ctx, "user-1", &domain.CreateViewRequest{Name: "Default", IsDefault: true})
	require.NoError(t, err)
	plain, err := svc.Create(ctx, "user-1", &domain.CreateViewRequest{Name: "Plain"})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, "user-1", def.ID.Hex())
	require.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, "View not found or cannot delete default view", err.Error())

	deleted, err := svc.Delete(ctx, "user-1", plain.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, plain.ID, deleted.ID)
	assert.Len(t, views.All(), 1)
}
