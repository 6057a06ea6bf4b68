package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRentalStatusCanTransition(t *testing.T) {
	assert.True(t, RentalStatusActive.CanTransition(RentalStatusReturned))
	assert.True(t, RentalStatusActive.CanTransition(RentalStatusCancelled))

	assert.False(t, RentalStatusReturned.CanTransition(RentalStatusActive))
	assert.False(t, RentalStatusReturned.CanTransition(RentalStatusReturned))
	assert.False(t, RentalStatusCancelled.CanTransition(RentalStatusActive))
	assert.False(t, RentalStatusOverdue.CanTransition(RentalStatusReturned),
		"overdue is derived, never a stored status")
}

func TestRentalEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		stored  RentalStatus
		dueDate time.Time
		want    RentalStatus
	}{
		{"active before due date", RentalStatusActive, now.AddDate(0, 0, 1), RentalStatusActive},
		{"active exactly at due date", RentalStatusActive, now, RentalStatusActive},
		{"active past due date", RentalStatusActive, now.AddDate(0, 0, -1), RentalStatusOverdue},
		{"returned past due date stays returned", RentalStatusReturned, now.AddDate(0, 0, -1), RentalStatusReturned},
		{"cancelled past due date stays cancelled", RentalStatusCancelled, now.AddDate(0, 0, -1), RentalStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Rental{Status: tt.stored, DueDate: tt.dueDate}
			assert.Equal(t, tt.want, r.EffectiveStatus(now))
		})
	}
}

func TestCartLineKey(t *testing.T) {
	purchase := CartLine{BookID: "B1", Type: LineTypePurchase}
	assert.Equal(t, LineKey{BookID: "B1", Type: LineTypePurchase}, purchase.Key())

	rental := CartLine{
		BookID: "B1",
		Type:   LineTypeRental,
		Rental: &RentalTerms{DurationDays: 14},
	}
	assert.Equal(t, LineKey{BookID: "B1", Type: LineTypeRental, DurationDays: 14}, rental.Key())

	// Same book, different durations: distinct keys.
	other := rental.Clone()
	other.Rental.DurationDays = 7
	assert.NotEqual(t, rental.Key(), other.Key())
}

func TestOrderStatusCanTransition(t *testing.T) {
	assert.True(t, OrderStatusPaid.CanTransition(OrderStatusShipped))
	assert.True(t, OrderStatusPaid.CanTransition(OrderStatusCancelled))
	assert.True(t, OrderStatusShipped.CanTransition(OrderStatusDelivered))

	assert.False(t, OrderStatusDelivered.CanTransition(OrderStatusShipped))
	assert.False(t, OrderStatusCancelled.CanTransition(OrderStatusPaid))
}
