package handler

import (
	"encoding/json"
	"net/http"

	"bookmart/internal/model"
	"bookmart/internal/wallet"

	"github.com/rs/zerolog"
)

// WalletHandler handles wallet HTTP requests.
type WalletHandler struct {
	ledger *wallet.Ledger
	logger zerolog.Logger
}

// NewWalletHandler creates a new wallet handler.
func NewWalletHandler(ledger *wallet.Ledger, logger zerolog.Logger) *WalletHandler {
	return &WalletHandler{
		ledger: ledger,
		logger: logger.With().Str("handler", "wallet").Logger(),
	}
}

// walletView is the wallet state returned to clients.
type walletView struct {
	Balance      float64                   `json:"balance"`
	Transactions []model.WalletTransaction `json:"transactions"`
}

// depositRequest adds funds to the wallet.
type depositRequest struct {
	Amount      float64 `json:"amount"`
	Method      string  `json:"method"`
	Description string  `json:"description,omitempty"`
}

// Get handles GET /api/wallet requests.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, walletView{
		Balance:      h.ledger.Balance(),
		Transactions: h.ledger.Transactions(),
	})
}

// Deposit handles POST /api/wallet/deposits requests.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.Method == "" {
		req.Method = "card"
	}
	if req.Description == "" {
		req.Description = "Wallet top-up"
	}

	balance, err := h.ledger.Deposit(r.Context(), req.Amount, req.Method, req.Description)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, walletView{
		Balance:      balance,
		Transactions: h.ledger.Transactions(),
	})
}
