package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/service"
)

// NoteHandler handles HTTP requests for lead notes and their media
type NoteHandler struct {
	noteService  *service.NoteService
	mediaService *service.NoteMediaService
	maxUpload    int64
	logger       *zap.Logger
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(noteService *service.NoteService, mediaService *service.NoteMediaService, maxUpload int64, logger *zap.Logger) *NoteHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &NoteHandler{
		noteService:  noteService,
		mediaService: mediaService,
		maxUpload:    maxUpload,
		logger:       logger,
	}
}

// CreateNote godoc
// @Summary Create note
// @Description Create a note on a lead, optionally with a follow-up task
// @Tags Notes
// @Accept json
// @Produce json
// @Param request body domain.CreateNoteRequest true "Note data"
// @Success 201 {object} domain.Note
// @Failure 400 {object} domain.APIError
// @Router /notes [post]
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	note, err := h.noteService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create note")
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

// ListByLead godoc
// @Summary List notes of a lead
// @Description Paginated notes of a lead, pinned notes first
// @Tags Notes
// @Produce json
// @Param leadId path string true "Lead ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Search title and content"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, title, pinnedAt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} domain.ItemsPage[domain.Note]
// @Failure 400 {object} domain.APIError
// @Router /notes/lead/{leadId} [get]
func (h *NoteHandler) ListByLead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.noteService.FindByLead(r.Context(), chi.URLParam(r, "leadId"), service.NoteListQuery{
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 10),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: sortOrder(r),
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list notes")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// UpdateNote godoc
// @Summary Update note
// @Tags Notes
// @Accept json
// @Produce json
// @Param noteId path string true "Note ID"
// @Param request body domain.UpdateNoteRequest true "Note fields"
// @Success 200 {object} domain.Note
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /notes/{noteId} [put]
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	note, err := h.noteService.Update(r.Context(), chi.URLParam(r, "noteId"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update note")
		return
	}
	respondJSON(w, http.StatusOK, note)
}

// DeleteNote godoc
// @Summary Delete note
// @Description Delete a note with its comments, images and follow-up task
// @Tags Notes
// @Produce json
// @Param noteId path string true "Note ID"
// @Param userId query string false "Acting user"
// @Success 200 {object} domain.Note
// @Failure 404 {object} domain.APIError
// @Router /notes/{noteId} [delete]
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.noteService.Delete(r.Context(), chi.URLParam(r, "noteId"), r.URL.Query().Get("userId"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete note")
		return
	}
	respondJSON(w, http.StatusOK, note)
}

// PinNote godoc
// @Summary Pin or unpin a note
// @Tags Notes
// @Produce json
// @Param noteId path string true "Note ID"
// @Param pin query bool true "Pin state"
// @Param userId query string false "Acting user"
// @Success 200 {object} domain.Note
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /notes/{noteId}/pin [put]
func (h *NoteHandler) PinNote(w http.ResponseWriter, r *http.Request) {
	pin, err := strconv.ParseBool(r.URL.Query().Get("pin"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid pin: must be true or false")
		return
	}
	note, err := h.noteService.Pin(r.Context(), chi.URLParam(r, "noteId"), pin, r.URL.Query().Get("userId"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to pin note")
		return
	}
	respondJSON(w, http.StatusOK, note)
}

// UploadMedia godoc
// @Summary Upload note media
// @Description Store an image embedded in note content and return its object key
// @Tags Notes
// @Accept mpfd
// @Produce json
// @Param file formData file true "Image"
// @Success 201 {object} domain.MediaUploadResponse
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /notes/media/upload [post]
func (h *NoteHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+(1<<20))
	file, err := formFile(r, "file", h.maxUpload)
	if err != nil {
		respondBodyError(w, err)
		return
	}

	key, err := h.mediaService.Upload(r.Context(), file)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to upload note media")
		return
	}
	respondJSON(w, http.StatusCreated, domain.MediaUploadResponse{Success: true, Key: key})
}
