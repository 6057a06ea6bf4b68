package service

import (
	"context"

	"bookmart/internal/model"

	"github.com/google/uuid"
)

// CatalogService defines operations for browsing the book catalogue.
type CatalogService interface {
	// GetAll retrieves all books with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Book, error)

	// GetByID retrieves a single book by ID.
	GetByID(ctx context.Context, id string) (*model.Book, error)
}

// CheckoutService materializes the cart into orders and rentals.
type CheckoutService interface {
	// Quote computes the totals the next Pay call would charge, with
	// the given promo code applied to the current cart.
	Quote(code string) Quote

	// Pay runs a single checkout attempt against the current cart.
	Pay(ctx context.Context, req *PayRequest) (*PayResult, error)

	// State returns the current checkout state.
	State() State

	// GetOrder retrieves an order with its line snapshots.
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListOrders retrieves past orders, newest first.
	ListOrders(ctx context.Context, limit, offset int) ([]model.Order, error)

	// ListRentals retrieves rentals newest first, with overdue derived
	// from the due date.
	ListRentals(ctx context.Context, limit, offset int) ([]model.Rental, error)

	// ReturnRental transitions an active rental to returned.
	ReturnRental(ctx context.Context, id uuid.UUID) error
}

// Quote breaks down what a checkout would charge. PromoInvalid marks a
// promo code that was not recognised; the discount is then zero and
// the rest of the quote is unaffected.
type Quote struct {
	Subtotal     float64 `json:"subtotal"`
	Discount     float64 `json:"discount"`
	Tax          float64 `json:"tax"`
	Shipping     float64 `json:"shipping"`
	Total        float64 `json:"total"`
	PromoInvalid bool    `json:"promoInvalid,omitempty"`
}

// CardDetails are the four fields required for card payments.
type CardDetails struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// Complete reports whether all four card fields are present.
func (c *CardDetails) Complete() bool {
	return c != nil && c.Number != "" && c.Name != "" && c.Expiry != "" && c.CVV != ""
}

// PayRequest is a single checkout attempt.
type PayRequest struct {
	Method          model.PaymentMethod `json:"method"`
	Card            *CardDetails        `json:"card,omitempty"`
	UpiID           string              `json:"upiId,omitempty"`
	UpiViaQR        bool                `json:"upiViaQr,omitempty"`
	DeliveryAddress string              `json:"deliveryAddress,omitempty"`
	PromoCode       string              `json:"promoCode,omitempty"`
}

// PayResult reports a successful checkout.
type PayResult struct {
	OrderID uuid.UUID `json:"orderId"`
	Quote   Quote     `json:"quote"`
}
