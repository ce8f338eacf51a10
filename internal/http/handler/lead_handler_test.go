package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/http/handler"
	"github.com/adeshyearanty/crm-lead-service/internal/metrics"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
	"github.com/adeshyearanty/crm-lead-service/internal/repository"
	"github.com/adeshyearanty/crm-lead-service/internal/service"
	"github.com/adeshyearanty/crm-lead-service/internal/storage"
)

func createLeadHandler(t *testing.T) (*handler.LeadHandler, *repository.MemoryCollection[*domain.Lead]) {
	t.Helper()
	leads := repository.NewMemoryCollection[*domain.Lead]("email")
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	planner := query.NewLeadPlanner(query.NewLeadCompiler())
	svc := service.NewLeadService(leads, planner, store, nil, metrics.NewNop(), zap.NewNop())
	return handler.NewLeadHandler(svc, 1<<20, zap.NewNop()), leads
}

func leadBody(email string) map[string]any {
	return map[string]any{
		"leadOwner":   gofakeit.Name(),
		"fullName":    gofakeit.Name(),
		"email":       email,
		"companyName": "Acme Corp",
		"status":      "New",
		"source":      "Web",
		"score":       80,
		"createdBy":   "user-1",
	}
}

func seedLead(t *testing.T, h *handler.LeadHandler, email string) domain.Lead {
	t.Helper()
	rr := httptest.NewRecorder()
	h.CreateLead(rr, jsonRequest(t, http.MethodPost, "/leads", leadBody(email)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[domain.Lead](t, rr)
}

func TestLeadHandler_CreateLead(t *testing.T) {
	h, leads := createLeadHandler(t)

	t.Run("json body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.CreateLead(rr, jsonRequest(t, http.MethodPost, "/leads", leadBody("Jane@Acme.io")))

		require.Equal(t, http.StatusCreated, rr.Code)
		lead := decode[domain.Lead](t, rr)
		assert.Equal(t, "jane@acme.io", lead.Email)
		assert.Equal(t, "/api/v1/leads/"+lead.ID.Hex(), rr.Header().Get("Location"))
		assert.Len(t, leads.All(), 1)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.CreateLead(rr, jsonRequest(t, http.MethodPost, "/leads", leadBody("jane@acme.io")))

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Lead with this email already exists", apiError(t, rr).Detail)
	})

	t.Run("validation errors use json names", func(t *testing.T) {
		body := leadBody("not-an-email")
		delete(body, "status")
		rr := httptest.NewRecorder()
		h.CreateLead(rr, jsonRequest(t, http.MethodPost, "/leads", body))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		e := apiError(t, rr)
		assert.Equal(t, domain.ErrorTypeValidation, e.Type)
		assert.Contains(t, e.Errors, "email")
		assert.Contains(t, e.Errors, "status")
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		h.CreateLead(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func multipartLead(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("leadImage", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/leads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestLeadHandler_CreateLeadMultipart(t *testing.T) {
	h, _ := createLeadHandler(t)
	fields := map[string]string{
		"leadOwner": "Owner",
		"fullName":  "Multi Part",
		"email":     "multi@acme.io",
		"status":    "New",
		"source":    "Web",
		"score":     "42",
		"createdBy": "user-1",
	}

	t.Run("with image", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.CreateLead(rr, multipartLead(t, fields, "avatar.png", []byte("\x89PNG\r\n\x1a\n")))

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		lead := decode[domain.Lead](t, rr)
		require.NotNil(t, lead.Score)
		assert.Equal(t, 42, *lead.Score)
		assert.True(t, strings.HasPrefix(lead.LeadImage, "leads/"))
		assert.True(t, strings.HasSuffix(lead.LeadImage, "-avatar.png"))
	})

	t.Run("rejects other image types", func(t *testing.T) {
		fields["email"] = "gif@acme.io"
		rr := httptest.NewRecorder()
		h.CreateLead(rr, multipartLead(t, fields, "anim.gif", []byte("GIF89a")))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects oversize image", func(t *testing.T) {
		fields["email"] = "big@acme.io"
		rr := httptest.NewRecorder()
		h.CreateLead(rr, multipartLead(t, fields, "big.jpg", bytes.Repeat([]byte("x"), 2<<20)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})
}

func TestLeadHandler_GetLead(t *testing.T) {
	h, _ := createLeadHandler(t)
	lead := seedLead(t, h, "get@acme.io")

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"found", lead.ID.Hex(), http.StatusOK},
		{"unknown id", bson.NewObjectID().Hex(), http.StatusNotFound},
		{"malformed id", "nope", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withParams(httptest.NewRequest(http.MethodGet, "/leads/"+tt.id, nil), "id", tt.id)
			rr := httptest.NewRecorder()
			h.GetLead(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestLeadHandler_UpdateAndDelete(t *testing.T) {
	h, leads := createLeadHandler(t)
	lead := seedLead(t, h, "upd@acme.io")
	id := lead.ID.Hex()

	req := withParams(jsonRequest(t, http.MethodPut, "/leads/"+id, map[string]any{
		"status":    "Qualified",
		"updatedBy": "user-2",
	}), "id", id)
	rr := httptest.NewRecorder()
	h.UpdateLead(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Qualified", decode[domain.Lead](t, rr).Status)

	// Delete accepts an empty body
	req = withParams(httptest.NewRequest(http.MethodDelete, "/leads/"+id, nil), "id", id)
	rr = httptest.NewRecorder()
	h.DeleteLead(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, leads.All())
}

func TestLeadHandler_BulkOperations(t *testing.T) {
	h, leads := createLeadHandler(t)
	a := seedLead(t, h, "a@acme.io")
	b := seedLead(t, h, "b@acme.io")
	ids := []string{a.ID.Hex(), b.ID.Hex()}

	rr := httptest.NewRecorder()
	h.Archive(rr, jsonRequest(t, http.MethodPost, "/leads/archive", map[string]any{"leadIds": ids}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(2), decode[domain.ModifiedCountResponse](t, rr).ModifiedCount)

	rr = httptest.NewRecorder()
	h.BulkUpdate(rr, jsonRequest(t, http.MethodPost, "/leads/bulk-update", map[string]any{
		"leadIds": ids,
		"status":  "Contacted",
	}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	h.BulkDelete(rr, jsonRequest(t, http.MethodPost, "/leads/bulk-delete", map[string]any{
		"leadIds": append(ids, bson.NewObjectID().Hex()),
	}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Len(t, leads.All(), 2)

	rr = httptest.NewRecorder()
	h.BulkDelete(rr, jsonRequest(t, http.MethodPost, "/leads/bulk-delete", map[string]any{"leadIds": ids}))
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[domain.BulkDeleteResponse](t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(2), resp.DeletedCount)
}

func TestLeadHandler_Search(t *testing.T) {
	h, _ := createLeadHandler(t)
	for i := 0; i < 3; i++ {
		seedLead(t, h, gofakeit.Email())
	}

	t.Run("no body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/leads/search?limit=2", nil)
		rr := httptest.NewRecorder()
		h.Search(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		page := decode[domain.PageResult[map[string]any]](t, rr)
		assert.Len(t, page.Data, 2)
		assert.Equal(t, int64(3), page.Meta.Total)
		assert.Equal(t, 2, page.Meta.LastPage)
	})

	t.Run("filters and projection", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/leads/search?columnsToDisplay=email,status", domain.AdvancedFiltersRequest{
			Filters: []domain.FilterClause{{Field: "status", Condition: domain.ConditionEquals, Values: []string{"New"}}},
		})
		rr := httptest.NewRecorder()
		h.Search(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		page := decode[domain.PageResult[map[string]any]](t, rr)
		require.Len(t, page.Data, 3)
		assert.Contains(t, page.Data[0], "email")
		assert.NotContains(t, page.Data[0], "fullName")
	})

	t.Run("unknown filter field", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/leads/search", domain.AdvancedFiltersRequest{
			Filters: []domain.FilterClause{{Field: "password", Condition: domain.ConditionEquals, Values: []string{"x"}}},
		})
		rr := httptest.NewRecorder()
		h.Search(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid field: password", apiError(t, rr).Detail)
	})
}

func TestLeadHandler_Export(t *testing.T) {
	h, _ := createLeadHandler(t)
	lead := seedLead(t, h, "export@acme.io")

	t.Run("selected as csv", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ExportSelected(rr, jsonRequest(t, http.MethodPost, "/leads/export-selected?columnsToDisplay=email",
			map[string]any{"leadIds": []string{lead.ID.Hex()}}))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "selected-leads.csv")
		assert.Contains(t, rr.Body.String(), `"export@acme.io"`)
	})

	t.Run("advanced as xlsx", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/leads/export/advanced?format=xlsx", nil)
		rr := httptest.NewRecorder()
		h.ExportAdvanced(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "leads-advanced.xlsx")
		assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")))
	})

	t.Run("unknown format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/leads/export/advanced?format=pdf", nil)
		rr := httptest.NewRecorder()
		h.ExportAdvanced(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
