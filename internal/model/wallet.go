package model

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies wallet ledger entries.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypePayment    TransactionType = "payment"
)

// WalletTransaction is an immutable ledger entry. Amount is signed:
// positive for credits, negative for debits. The balance is always the
// sum of all signed amounts since the last reset.
type WalletTransaction struct {
	ID          uuid.UUID       `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
	Method      string          `json:"method,omitempty"`
	OrderID     *uuid.UUID      `json:"orderId,omitempty"`
}
