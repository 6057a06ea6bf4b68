package handler

import (
	"encoding/json"
	"net/http"

	"bookmart/internal/model"
	"bookmart/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout HTTP requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Quote handles GET /api/checkout/quote requests. The promo query
// parameter is optional.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	quote := h.service.Quote(r.URL.Query().Get("promo"))
	writeJSON(w, http.StatusOK, quote)
}

// State handles GET /api/checkout/state requests.
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]service.State{"state": h.service.State()})
}

// Pay handles POST /api/checkout requests.
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req service.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	switch req.Method {
	case model.PaymentMethodCard, model.PaymentMethodUPI, model.PaymentMethodWallet:
	default:
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "unknown payment method", h.logger)
		return
	}

	result, err := h.service.Pay(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
