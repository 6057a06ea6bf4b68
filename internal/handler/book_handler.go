package handler

import (
	"net/http"
	"strconv"

	"bookmart/internal/model"
	"bookmart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// BookHandler handles catalogue HTTP requests.
type BookHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewBookHandler creates a new book handler.
func NewBookHandler(service service.CatalogService, logger zerolog.Logger) *BookHandler {
	return &BookHandler{
		service: service,
		logger:  logger.With().Str("handler", "book").Logger(),
	}
}

// GetAll handles GET /api/books requests with pagination.
func (h *BookHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := parsePagination(w, r, h.logger)
	if !ok {
		return
	}

	books, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to retrieve books", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, books)
}

// GetByID handles GET /api/books/{id} requests.
func (h *BookHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "book ID is required", h.logger)
		return
	}

	book, err := h.service.GetByID(r.Context(), bookID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if book == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeBookNotFound, "book not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// parsePagination reads limit/offset query parameters, writing a 400 on
// malformed values.
func parsePagination(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (limit, offset int, ok bool) {
	limit = 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid limit parameter", logger)
			return 0, 0, false
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		var err error
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid offset parameter", logger)
			return 0, 0, false
		}
	}

	return limit, offset, true
}
