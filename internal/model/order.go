package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is the method used to pay for an order.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "credit_card"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// OrderStatus is the fulfilment status of an order.
type OrderStatus string

const (
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPaid:      {OrderStatusShipped: true, OrderStatusCancelled: true},
	OrderStatusShipped:   {OrderStatusDelivered: true},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to
// another.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return validOrderNext[s][to]
}

// Order is immutable once created: its lines are snapshots of the cart
// at checkout time, so later catalogue price changes never affect it.
type Order struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	Items           []OrderLine   `json:"items"`
	Subtotal        float64       `json:"subtotal" db:"subtotal"`
	Discount        float64       `json:"discount" db:"discount"`
	Tax             float64       `json:"tax" db:"tax"`
	Shipping        float64       `json:"shipping" db:"shipping"`
	TotalAmount     float64       `json:"totalAmount" db:"total_amount"`
	Status          OrderStatus   `json:"status" db:"status"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" db:"payment_method"`
	PromoCode       *string       `json:"promoCode,omitempty" db:"promo_code"`
	DeliveryAddress string        `json:"deliveryAddress,omitempty" db:"delivery_address"`
	OrderDate       time.Time     `json:"orderDate" db:"order_date"`
}

// OrderLine is the economic snapshot of a cart line at checkout time.
// UnitAmount is the charge per unit: the purchase price for purchase
// lines, or the full rental charge for the line's duration.
type OrderLine struct {
	ID           uuid.UUID `json:"-" db:"id"`
	OrderID      uuid.UUID `json:"-" db:"order_id"`
	BookID       string    `json:"bookId" db:"book_id"`
	Type         LineType  `json:"type" db:"line_type"`
	Title        string    `json:"title" db:"title"`
	UnitAmount   float64   `json:"unitAmount" db:"unit_amount"`
	Quantity     int       `json:"quantity" db:"quantity"`
	DurationDays int       `json:"durationDays,omitempty" db:"duration_days"`
}

// LineTotal returns the snapshot charge for this line.
func (l OrderLine) LineTotal() float64 {
	return l.UnitAmount * float64(l.Quantity)
}
