package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
	"github.com/adeshyearanty/crm-lead-service/internal/service"
)

// SettingsHandler serves one collection of lead reference data: company
// sizes, industry types, lead sources or lead statuses.
type SettingsHandler[T query.Document] struct {
	service *service.ReferenceService[T]
	create  func(w http.ResponseWriter, r *http.Request, now time.Time) (T, bool)
	update  func(w http.ResponseWriter, r *http.Request) (map[string]any, bool)
	failure string
	logger  *zap.Logger
}

func NewCompanySizeHandler(svc *service.ReferenceService[*domain.CompanySize], logger *zap.Logger) *SettingsHandler[*domain.CompanySize] {
	return newSettingsHandler(svc, createBody((*domain.CreateCompanySizeRequest).ToCompanySize),
		updateBody((*domain.UpdateCompanySizeRequest).Fields), "company size", logger)
}

func NewIndustryTypeHandler(svc *service.ReferenceService[*domain.IndustryType], logger *zap.Logger) *SettingsHandler[*domain.IndustryType] {
	return newSettingsHandler(svc, createBody((*domain.CreateIndustryTypeRequest).ToIndustryType),
		updateBody((*domain.UpdateIndustryTypeRequest).Fields), "industry type", logger)
}

func NewLeadSourceHandler(svc *service.ReferenceService[*domain.LeadSource], logger *zap.Logger) *SettingsHandler[*domain.LeadSource] {
	return newSettingsHandler(svc, createBody((*domain.CreateLeadSourceRequest).ToLeadSource),
		updateBody((*domain.UpdateLeadSourceRequest).Fields), "lead source", logger)
}

func NewLeadStatusHandler(svc *service.ReferenceService[*domain.LeadStatus], logger *zap.Logger) *SettingsHandler[*domain.LeadStatus] {
	return newSettingsHandler(svc, createBody((*domain.CreateLeadStatusRequest).ToLeadStatus),
		updateBody((*domain.UpdateLeadStatusRequest).Fields), "lead status", logger)
}

func newSettingsHandler[T query.Document](
	svc *service.ReferenceService[T],
	create func(http.ResponseWriter, *http.Request, time.Time) (T, bool),
	update func(http.ResponseWriter, *http.Request) (map[string]any, bool),
	name string,
	logger *zap.Logger,
) *SettingsHandler[T] {
	return &SettingsHandler[T]{
		service: svc,
		create:  create,
		update:  update,
		failure: name,
		logger:  logger.With(zap.String("settings", name)),
	}
}

// createBody decodes and validates a create request of type C, then builds
// the document from it
func createBody[C any, T any](build func(*C, time.Time) T) func(http.ResponseWriter, *http.Request, time.Time) (T, bool) {
	return func(w http.ResponseWriter, r *http.Request, now time.Time) (T, bool) {
		var req C
		if !decodeJSON(w, r, &req) {
			var zero T
			return zero, false
		}
		return build(&req, now), true
	}
}

// updateBody decodes and validates an update request of type U and returns
// the fields it sets
func updateBody[U any](fields func(*U) map[string]any) func(http.ResponseWriter, *http.Request) (map[string]any, bool) {
	return func(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
		var req U
		if !decodeJSON(w, r, &req) {
			return nil, false
		}
		return fields(&req), true
	}
}

// Routes mounts the settings endpoints on r
func (h *SettingsHandler[T]) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/default", h.GetDefault)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/set-default", h.SetDefault)
	r.Get("/{id}/usage", h.Usage)
}

// Create godoc
// @Summary Create settings value
// @Description Create a company size, industry type, lead source or lead status
// @Tags Settings
// @Accept json
// @Produce json
// @Param kind path string true "Settings collection" Enums(company-sizes, industry-types, sources, statuses)
// @Success 201 {object} any
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /{kind} [post]
func (h *SettingsHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.create(w, r, h.service.Now())
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), doc)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create "+h.failure)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// List godoc
// @Summary List settings values
// @Tags Settings
// @Produce json
// @Param kind path string true "Settings collection" Enums(company-sizes, industry-types, sources, statuses)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page, at most 100" default(10)
// @Param search query string false "Search text"
// @Param sortBy query string false "Sort field" default(createdAt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} domain.ListResult[any]
// @Router /{kind} [get]
func (h *SettingsHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.service.List(r.Context(), domain.ReferenceListQuery{
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 10),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: sortOrder(r),
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list "+h.failure+" values")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetDefault godoc
// @Summary Get the default settings value
// @Tags Settings
// @Produce json
// @Param kind path string true "Settings collection" Enums(company-sizes, industry-types, sources, statuses)
// @Success 200 {object} any
// @Failure 404 {object} domain.APIError
// @Router /{kind}/default [get]
func (h *SettingsHandler[T]) GetDefault(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Default(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get default "+h.failure)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// Get godoc
// @Summary Get settings value
// @Tags Settings
// @Produce json
// @Param kind path string true "Settings collection" Enums(company-sizes, industry-types, sources, statuses)
// @Param id path string true "ID"
// @Success 200 {object} any
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /{kind}/{id} [get]
func (h *SettingsHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get "+h.failure)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// Update godoc
// @Summary Update settings value
// @Tags Settings
// @Accept json
// @Produce json
// @Param kind path string true "Settings collection" Enums(company-sizes, industry-types, sources, statuses)
// @Param id path string true "ID"
// @Success 200 {object} any
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /{kind}/{id} [patch]
func (h *SettingsHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.update(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update "+h.failure)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// Delete godoc
// @Summary Delete settings value
// @Tags Settings
// @Produce json
// @Param kind path string true "Settings collection" Enums(company-sizes, industry-types, sources, statuses)
// @Param id path string true "ID"
// @Success 200 {object} any
// @Failure 404 {object} domain.APIError
// @Router /{kind}/{id} [delete]
func (h *SettingsHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete "+h.failure)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// SetDefault godoc
// @Summary Make a settings value the default
// @Tags Settings
// @Produce json
// @Param kind path string true "Settings collection" Enums(company-sizes, industry-types, sources, statuses)
// @Param id path string true "ID"
// @Success 200 {object} any
// @Failure 404 {object} domain.APIError
// @Router /{kind}/{id}/set-default [post]
func (h *SettingsHandler[T]) SetDefault(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.SetDefault(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to set default "+h.failure)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// Usage godoc
// @Summary Count leads using a settings value
// @Tags Settings
// @Produce json
// @Param kind path string true "Settings collection" Enums(company-sizes, industry-types, sources, statuses)
// @Param id path string true "ID"
// @Success 200 {object} domain.UsageResponse
// @Failure 404 {object} domain.APIError
// @Router /{kind}/{id}/usage [get]
func (h *SettingsHandler[T]) Usage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.service.Usage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to count "+h.failure+" usage")
		return
	}
	respondJSON(w, http.StatusOK, usage)
}
