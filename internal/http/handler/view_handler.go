package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/service"
)

// ViewHandler handles the saved lead views of the calling user
type ViewHandler struct {
	viewService *service.ViewService
	logger      *zap.Logger
}

// NewViewHandler creates a new ViewHandler
func NewViewHandler(viewService *service.ViewService, logger *zap.Logger) *ViewHandler {
	return &ViewHandler{
		viewService: viewService,
		logger:      logger,
	}
}

// userID reads the calling user from the user-id header
func (h *ViewHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(userHeader))
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing user-id header")
		return "", false
	}
	return id, true
}

// CreateView godoc
// @Summary Create view
// @Tags Views
// @Accept json
// @Produce json
// @Param user-id header string true "Calling user"
// @Param request body domain.CreateViewRequest true "View data"
// @Success 201 {object} domain.View
// @Failure 400 {object} domain.APIError
// @Router /views [post]
func (h *ViewHandler) CreateView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req domain.CreateViewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := h.viewService.Create(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create view")
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// ListViews godoc
// @Summary List views
// @Tags Views
// @Produce json
// @Param user-id header string true "Calling user"
// @Success 200 {array} domain.View
// @Failure 400 {object} domain.APIError
// @Router /views [get]
func (h *ViewHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	views, err := h.viewService.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list views")
		return
	}
	if views == nil {
		views = []*domain.View{}
	}
	respondJSON(w, http.StatusOK, views)
}

// GetDefaultView godoc
// @Summary Get default view
// @Tags Views
// @Produce json
// @Param user-id header string true "Calling user"
// @Success 200 {object} domain.View
// @Failure 404 {object} domain.APIError
// @Router /views/default [get]
func (h *ViewHandler) GetDefaultView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	view, err := h.viewService.Default(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get default view")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GetView godoc
// @Summary Get view
// @Tags Views
// @Produce json
// @Param user-id header string true "Calling user"
// @Param id path string true "View ID"
// @Success 200 {object} domain.View
// @Failure 404 {object} domain.APIError
// @Router /views/{id} [get]
func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	view, err := h.viewService.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get view")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// UpdateView godoc
// @Summary Update view
// @Tags Views
// @Accept json
// @Produce json
// @Param user-id header string true "Calling user"
// @Param id path string true "View ID"
// @Param request body domain.UpdateViewRequest true "View fields"
// @Success 200 {object} domain.View
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /views/{id} [put]
func (h *ViewHandler) UpdateView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req domain.UpdateViewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := h.viewService.Update(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update view")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// DeleteView godoc
// @Summary Delete view
// @Description Delete a view. The default view cannot be deleted.
// @Tags Views
// @Produce json
// @Param user-id header string true "Calling user"
// @Param id path string true "View ID"
// @Success 200 {object} domain.View
// @Failure 404 {object} domain.APIError
// @Router /views/{id} [delete]
func (h *ViewHandler) DeleteView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	view, err := h.viewService.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete view")
		return
	}
	respondJSON(w, http.StatusOK, view)
}
