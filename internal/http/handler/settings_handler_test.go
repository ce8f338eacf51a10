package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/http/handler"
	"github.com/adeshyearanty/crm-lead-service/internal/repository"
	"github.com/adeshyearanty/crm-lead-service/internal/service"
)

// settingsServer mounts the lead status endpoints on a chi router
func settingsServer(t *testing.T) (http.Handler, *repository.MemoryCollection[*domain.Lead]) {
	t.Helper()
	leads := repository.NewMemoryCollection[*domain.Lead]()
	statuses := repository.NewMemoryCollection[*domain.LeadStatus]()
	svc := service.NewReferenceService[*domain.LeadStatus](statuses, leads, service.LeadStatusKind, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/statuses", handler.NewLeadStatusHandler(svc, zap.NewNop()).Routes)
	return r, leads
}

func serve(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSettingsHandler_Statuses(t *testing.T) {
	srv, leads := settingsServer(t)

	create := func(name string, isDefault bool) *httptest.ResponseRecorder {
		return serve(t, srv, jsonRequest(t, http.MethodPost, "/statuses/", map[string]any{
			"name":      name,
			"isDefault": isDefault,
		}))
	}

	rr := create("New", true)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	newStatus := decode[domain.LeadStatus](t, rr)

	rr = create("Qualified", false)
	require.Equal(t, http.StatusCreated, rr.Code)
	qualified := decode[domain.LeadStatus](t, rr)

	t.Run("duplicate name", func(t *testing.T) {
		rr := create("New", false)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Lead status with this name already exists", apiError(t, rr).Detail)
	})

	t.Run("missing name", func(t *testing.T) {
		rr := serve(t, srv, jsonRequest(t, http.MethodPost, "/statuses/", map[string]any{}))
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, apiError(t, rr).Errors, "name")
	})

	t.Run("list", func(t *testing.T) {
		rr := serve(t, srv, httptest.NewRequest(http.MethodGet, "/statuses/?search=qual", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		page := decode[domain.ListResult[domain.LeadStatus]](t, rr)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Qualified", page.Items[0].Name)
		assert.Equal(t, 1, page.TotalPages)
		assert.False(t, page.HasNextPage)
	})

	t.Run("set default moves the flag", func(t *testing.T) {
		rr := serve(t, srv, httptest.NewRequest(http.MethodPost, "/statuses/"+qualified.ID.Hex()+"/set-default", nil))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = serve(t, srv, httptest.NewRequest(http.MethodGet, "/statuses/default", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, qualified.ID, decode[domain.LeadStatus](t, rr).ID)
	})

	t.Run("patch", func(t *testing.T) {
		rr := serve(t, srv, jsonRequest(t, http.MethodPatch, "/statuses/"+newStatus.ID.Hex(), map[string]any{"name": "Fresh"}))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "Fresh", decode[domain.LeadStatus](t, rr).Name)
	})

	t.Run("usage", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, leads.Insert(t.Context(), &domain.Lead{ID: bson.NewObjectID(), Email: fmt.Sprintf("l%d@acme.io", i), Status: "Qualified"}))
		}
		rr := serve(t, srv, httptest.NewRequest(http.MethodGet, "/statuses/"+qualified.ID.Hex()+"/usage", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(3), decode[domain.UsageResponse](t, rr).Count)
	})

	t.Run("get and delete", func(t *testing.T) {
		path := "/statuses/" + newStatus.ID.Hex()
		assert.Equal(t, http.StatusOK, serve(t, srv, httptest.NewRequest(http.MethodGet, path, nil)).Code)
		assert.Equal(t, http.StatusOK, serve(t, srv, httptest.NewRequest(http.MethodDelete, path, nil)).Code)

		rr := serve(t, srv, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Lead status not found", apiError(t, rr).Detail)
	})

	t.Run("malformed id", func(t *testing.T) {
		rr := serve(t, srv, httptest.NewRequest(http.MethodGet, "/statuses/xyz", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSettingsHandler_CompanySizeValidation(t *testing.T) {
	items := repository.NewMemoryCollection[*domain.CompanySize]()
	svc := service.NewReferenceService[*domain.CompanySize](items, repository.NewMemoryCollection[*domain.Lead](), service.CompanySizeKind, zap.NewNop())
	h := handler.NewCompanySizeHandler(svc, zap.NewNop())

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"valid", map[string]any{"label": "Small", "employeeRange": "1-50"}, http.StatusCreated},
		{"bad range", map[string]any{"label": "Large", "employeeRange": "1000+"}, http.StatusBadRequest},
		{"bad label", map[string]any{"label": "Mid/size"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.Create(rr, jsonRequest(t, http.MethodPost, "/company-sizes", tt.body))
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}

// takenKeyStatuses fails inserts the way the store does when a concurrent
// writer took the unique key first
type takenKeyStatuses struct {
	*repository.MemoryCollection[*domain.LeadStatus]
}

func (takenKeyStatuses) Insert(context.Context, *domain.LeadStatus) error {
	return fmt.Errorf("%w: E11000 duplicate key error", repository.ErrDuplicate)
}

func TestSettingsHandler_StoreDuplicateKey(t *testing.T) {
	leads := repository.NewMemoryCollection[*domain.Lead]()
	statuses := takenKeyStatuses{repository.NewMemoryCollection[*domain.LeadStatus]()}
	svc := service.NewReferenceService[*domain.LeadStatus](statuses, leads, service.LeadStatusKind, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/statuses", handler.NewLeadStatusHandler(svc, zap.NewNop()).Routes)

	rr := serve(t, r, jsonRequest(t, http.MethodPost, "/statuses/", map[string]any{"name": "New"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Duplicate key error", apiError(t, rr).Detail)
}
