package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/export"
	"github.com/adeshyearanty/crm-lead-service/internal/service"
)

// LeadHandler handles HTTP requests for leads
type LeadHandler struct {
	leadService *service.LeadService
	maxUpload   int64
	logger      *zap.Logger
}

// NewLeadHandler creates a new LeadHandler. maxUpload bounds the lead image
// size in bytes.
func NewLeadHandler(leadService *service.LeadService, maxUpload int64, logger *zap.Logger) *LeadHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &LeadHandler{
		leadService: leadService,
		maxUpload:   maxUpload,
		logger:      logger,
	}
}

// GetLead godoc
// @Summary Get lead
// @Description Get a lead by ID
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.Lead
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /leads/{id} [get]
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leadService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get lead")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// CreateLead godoc
// @Summary Create lead
// @Description Create a lead from JSON or a multipart form with an optional leadImage (jpg, jpeg or png, at most 5MB)
// @Tags Leads
// @Accept json,mpfd
// @Produce json
// @Param request body domain.CreateLeadRequest true "Lead data"
// @Param leadImage formData file false "Lead image"
// @Success 201 {object} domain.Lead
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /leads [post]
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	_, image, err := decodeLeadBody(r, &req, "leadImage", h.maxUpload)
	if err != nil {
		respondBodyError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.Create(r.Context(), &req, image)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create lead")
		return
	}

	w.Header().Set("Location", "/api/v1/leads/"+lead.ID.Hex())
	respondJSON(w, http.StatusCreated, lead)
}

// UpdateLead godoc
// @Summary Update lead
// @Description Partially update a lead. Sending an empty leadImage removes the stored image.
// @Tags Leads
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.UpdateLeadRequest true "Lead fields"
// @Param leadImage formData file false "New lead image"
// @Success 200 {object} domain.Lead
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /leads/{id} [put]
func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateLeadRequest
	fields, image, err := decodeLeadBody(r, &req, "leadImage", h.maxUpload)
	if err != nil {
		respondBodyError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	req.UpdatedFields = fields

	lead, err := h.leadService.Update(r.Context(), chi.URLParam(r, "id"), &req, image)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update lead")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// DeleteLead godoc
// @Summary Delete lead
// @Description Delete a lead and its image
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.DeleteLeadRequest false "Who deleted the lead"
// @Success 200 {object} domain.Lead
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /leads/{id} [delete]
func (h *LeadHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	var req domain.DeleteLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	lead, err := h.leadService.Delete(r.Context(), chi.URLParam(r, "id"), req.DeletedBy)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete lead")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// BulkDelete godoc
// @Summary Bulk delete leads
// @Description Delete several leads. The batch fails when any lead is missing.
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.BulkDeleteRequest true "Lead IDs"
// @Success 200 {object} domain.BulkDeleteResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /leads/bulk-delete [post]
func (h *LeadHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.leadService.BulkDelete(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete leads")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// BulkUpdate godoc
// @Summary Bulk update leads
// @Description Apply the same field values to several leads
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.BulkUpdateRequest true "Lead IDs and fields"
// @Success 200 {object} domain.ModifiedCountResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /leads/bulk-update [post]
func (h *LeadHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.leadService.BulkUpdate(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update leads")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Archive godoc
// @Summary Archive leads
// @Description Archive or restore several leads. archive defaults to true.
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.ArchiveRequest true "Lead IDs"
// @Success 200 {object} domain.ModifiedCountResponse
// @Failure 400 {object} domain.APIError
// @Router /leads/archive [post]
func (h *LeadHandler) Archive(w http.ResponseWriter, r *http.Request) {
	var req domain.ArchiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.leadService.Archive(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to archive leads")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Search godoc
// @Summary Search leads
// @Description Paginated lead search with free text and structured filters
// @Tags Leads
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(25)
// @Param search query string false "Free text search"
// @Param searchBy query string false "Search this field only"
// @Param sortBy query string false "Sort field" default(createdDate)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Param columnsToDisplay query []string false "Projected fields"
// @Param columnsToSearch query []string false "Fields searched by free text"
// @Param archived query bool false "Archived leads only, or active only"
// @Param request body domain.AdvancedFiltersRequest false "Filter clauses"
// @Success 200 {object} domain.PageResult[any]
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /leads/search [post]
func (h *LeadHandler) Search(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.decodeFilters(w, r)
	if !ok {
		return
	}
	result, err := h.leadService.Search(r.Context(), paginationSpec(r), filters)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to search leads")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ExportSelected godoc
// @Summary Export selected leads
// @Description Export the given leads as CSV
// @Tags Leads
// @Accept json
// @Produce text/csv
// @Param columnsToDisplay query []string false "Exported columns"
// @Param request body domain.ExportSelectedRequest true "Lead IDs"
// @Success 200 {file} file
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /leads/export-selected [post]
func (h *LeadHandler) ExportSelected(w http.ResponseWriter, r *http.Request) {
	var req domain.ExportSelectedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	data, err := h.leadService.ExportSelected(r.Context(), req.LeadIDs, queryList(r, "columnsToDisplay"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to export leads")
		return
	}
	respondFile(w, export.FormatCSV.ContentType(), "selected-leads.csv", data)
}

// ExportAdvanced godoc
// @Summary Export searched leads
// @Description Export every lead matching the search as CSV, or XLSX with format=xlsx
// @Tags Leads
// @Accept json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "Export format" Enums(csv, xlsx)
// @Param search query string false "Free text search"
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Param columnsToDisplay query []string false "Exported columns"
// @Param request body domain.AdvancedFiltersRequest false "Filter clauses"
// @Success 200 {file} file
// @Failure 400 {object} domain.APIError
// @Router /leads/export/advanced [post]
func (h *LeadHandler) ExportAdvanced(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid format: must be one of csv, xlsx")
		return
	}
	filters, ok := h.decodeFilters(w, r)
	if !ok {
		return
	}

	data, err := h.leadService.ExportAdvanced(r.Context(), paginationSpec(r), filters, format)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to export leads")
		return
	}
	respondFile(w, format.ContentType(), fmt.Sprintf("leads-advanced.%s", format), data)
}

// decodeFilters reads the optional filter clauses of a search body
func (h *LeadHandler) decodeFilters(w http.ResponseWriter, r *http.Request) ([]domain.FilterClause, bool) {
	var req domain.AdvancedFiltersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, true
		}
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return nil, false
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return nil, false
	}
	return req.Filters, true
}
