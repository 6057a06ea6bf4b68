package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeEmptyCart              = "EMPTY_CART"
	ErrCodeMissingCardDetails     = "MISSING_CARD_DETAILS"
	ErrCodeMissingUpiID           = "MISSING_UPI_ID"
	ErrCodeMissingDeliveryAddress = "MISSING_DELIVERY_ADDRESS"
	ErrCodeInsufficientFunds      = "INSUFFICIENT_FUNDS"
	ErrCodeInvalidPromoCode       = "INVALID_PROMO_CODE"
	ErrCodePersistenceFailure     = "PERSISTENCE_FAILURE"
	ErrCodeInvalidQuantity        = "INVALID_QUANTITY"
	ErrCodeInvalidAmount          = "INVALID_AMOUNT"
	ErrCodeInvalidRentalDuration  = "INVALID_RENTAL_DURATION"
	ErrCodeCheckoutInFlight       = "CHECKOUT_IN_FLIGHT"
	ErrCodeBookNotFound           = "BOOK_NOT_FOUND"
	ErrCodeRentalNotActive        = "RENTAL_NOT_ACTIVE"
	ErrCodePaymentDeclined        = "PAYMENT_DECLINED"
	ErrCodeUnauthorised           = "UNAUTHORIZED"
	ErrCodeInternalError          = "INTERNAL_ERROR"
)

// DomainError is a typed business-condition error. Expected conditions
// (insufficient funds, empty cart, invalid promo code) are returned as
// these values, never raised as panics.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart              = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrMissingCardDetails     = NewDomainError(ErrCodeMissingCardDetails, "All card details are required for card payments")
	ErrMissingUpiID           = NewDomainError(ErrCodeMissingUpiID, "UPI ID is required for UPI payments")
	ErrMissingDeliveryAddress = NewDomainError(ErrCodeMissingDeliveryAddress, "Delivery address is required when buying books")
	ErrInsufficientFunds      = NewDomainError(ErrCodeInsufficientFunds, "Wallet balance is insufficient for this payment")
	ErrInvalidPromoCode       = NewDomainError(ErrCodeInvalidPromoCode, "Promo code is not recognised")
	ErrPersistenceFailure     = NewDomainError(ErrCodePersistenceFailure, "Failed to persist state")
	ErrInvalidQuantity        = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidAmount          = NewDomainError(ErrCodeInvalidAmount, "Amount must be greater than zero")
	ErrInvalidRentalDuration  = NewDomainError(ErrCodeInvalidRentalDuration, "Rental duration must be at least one day")
	ErrCheckoutInFlight       = NewDomainError(ErrCodeCheckoutInFlight, "A checkout is already in progress")
	ErrBookNotFound           = NewDomainError(ErrCodeBookNotFound, "Book not found")
	ErrRentalNotActive        = NewDomainError(ErrCodeRentalNotActive, "Rental is not active")
	ErrPaymentDeclined        = NewDomainError(ErrCodePaymentDeclined, "Payment was declined")
)
