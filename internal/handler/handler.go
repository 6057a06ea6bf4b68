package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookmart/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// domainStatus maps business-condition error codes to HTTP statuses.
var domainStatus = map[string]int{
	model.ErrCodeEmptyCart:              http.StatusUnprocessableEntity,
	model.ErrCodeMissingCardDetails:     http.StatusUnprocessableEntity,
	model.ErrCodeMissingUpiID:           http.StatusUnprocessableEntity,
	model.ErrCodeMissingDeliveryAddress: http.StatusUnprocessableEntity,
	model.ErrCodeInsufficientFunds:      http.StatusPaymentRequired,
	model.ErrCodeInvalidPromoCode:       http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:        http.StatusBadRequest,
	model.ErrCodeInvalidAmount:          http.StatusBadRequest,
	model.ErrCodeInvalidRentalDuration:  http.StatusBadRequest,
	model.ErrCodeCheckoutInFlight:       http.StatusConflict,
	model.ErrCodeBookNotFound:           http.StatusNotFound,
	model.ErrCodeRentalNotActive:        http.StatusConflict,
	model.ErrCodePaymentDeclined:        http.StatusPaymentRequired,
	model.ErrCodePersistenceFailure:     http.StatusInternalServerError,
}

// writeDomainError writes a typed business error when err is one, and a
// generic internal error otherwise.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := domainStatus[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		writeError(w, status, domainErr.Code, domainErr.Message, logger)
		return
	}
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}
