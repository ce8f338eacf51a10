package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
	logger         *zap.Logger
}

func NewCommentHandler(commentService *service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// @Summary Add comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param noteId path string true "Note ID"
// @Param request body domain.CreateCommentRequest true "Comment"
// @Success 201 {object} domain.Comment
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /notes/{noteId}/comments [post]
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	comment, err := h.commentService.Create(r.Context(), chi.URLParam(r, "noteId"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add comment")
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// @Summary List comments
// @Tags Comments
// @Produce json
// @Param noteId path string true "Note ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(asc)
// @Success 200 {object} domain.ItemsPage[domain.Comment]
// @Failure 400 {object} domain.APIError
// @Router /notes/{noteId}/comments [get]
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	order := domain.SortAsc
	if r.URL.Query().Get("sortOrder") == string(domain.SortDesc) {
		order = domain.SortDesc
	}
	result, err := h.commentService.FindByNote(r.Context(), chi.URLParam(r, "noteId"),
		queryInt(r, "page", 1), queryInt(r, "limit", 10), order)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list comments")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Update comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param noteId path string true "Note ID"
// @Param commentId path string true "Comment ID"
// @Param userId query string false "Acting user"
// @Param request body domain.UpdateCommentRequest true "Comment"
// @Success 200 {object} domain.Comment
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /notes/{noteId}/comments/{commentId} [put]
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	comment, err := h.commentService.Update(r.Context(), chi.URLParam(r, "noteId"), chi.URLParam(r, "commentId"),
		req.Content, r.URL.Query().Get("userId"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update comment")
		return
	}
	respondJSON(w, http.StatusOK, comment)
}

// @Summary Delete comment
// @Tags Comments
// @Produce json
// @Param noteId path string true "Note ID"
// @Param commentId path string true "Comment ID"
// @Param userId query string false "Acting user"
// @Success 200 {object} domain.Comment
// @Failure 404 {object} domain.APIError
// @Router /notes/{noteId}/comments/{commentId} [delete]
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	comment, err := h.commentService.Delete(r.Context(), chi.URLParam(r, "noteId"), chi.URLParam(r, "commentId"),
		r.URL.Query().Get("userId"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete comment")
		return
	}
	respondJSON(w, http.StatusOK, comment)
}
