package handler

import (
	"encoding/json"
	"net/http"

	"bookmart/internal/cart"
	"bookmart/internal/model"

	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	store  *cart.Store
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(store *cart.Store, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		store:  store,
		logger: logger.With().Str("handler", "cart").Logger(),
	}
}

// cartView is the full cart state returned to clients.
type cartView struct {
	Items         []model.CartLine `json:"items"`
	SavedForLater []model.CartLine `json:"savedForLater"`
	Subtotal      float64          `json:"subtotal"`
	Count         int              `json:"count"`
}

// lineKeyRequest identifies an existing line for mutation requests.
type lineKeyRequest struct {
	BookID       string         `json:"bookId"`
	Type         model.LineType `json:"type"`
	DurationDays int            `json:"durationDays,omitempty"`
}

func (r lineKeyRequest) key() model.LineKey {
	return model.LineKey{BookID: r.BookID, Type: r.Type, DurationDays: r.DurationDays}
}

// updateQuantityRequest changes the quantity of an existing line.
type updateQuantityRequest struct {
	lineKeyRequest
	Quantity int `json:"quantity"`
}

func (h *CartHandler) view() cartView {
	return cartView{
		Items:         h.store.Items(),
		SavedForLater: h.store.Saved(),
		Subtotal:      h.store.Total(),
		Count:         h.store.Count(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view())
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var line model.CartLine
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if line.BookID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "bookId is required", h.logger)
		return
	}

	if err := h.store.Add(r.Context(), line); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.view())
}

// UpdateQuantity handles PUT /api/cart/items requests.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.store.UpdateQuantity(r.Context(), req.key(), req.Quantity); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.view())
}

// RemoveItem handles DELETE /api/cart/items requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var req lineKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.store.Remove(r.Context(), req.key()); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.view())
}

// SaveForLater handles POST /api/cart/items/save requests.
func (h *CartHandler) SaveForLater(w http.ResponseWriter, r *http.Request) {
	var req lineKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.store.SaveForLater(r.Context(), req.key()); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.view())
}

// MoveToCart handles POST /api/cart/items/activate requests.
func (h *CartHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	var req lineKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.store.MoveToCart(r.Context(), req.key()); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.view())
}

// Clear handles DELETE /api/cart requests. Saved-for-later lines
// survive a clear.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.view())
}
