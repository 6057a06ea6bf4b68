package model

import (
	"time"

	"github.com/google/uuid"
)

// RentalStatus is the stored status of a rental. Overdue is never
// stored; it is derived from the due date at read time.
type RentalStatus string

const (
	RentalStatusActive    RentalStatus = "active"
	RentalStatusOverdue   RentalStatus = "overdue"
	RentalStatusReturned  RentalStatus = "returned"
	RentalStatusCancelled RentalStatus = "cancelled"
)

var validRentalNext = map[RentalStatus]map[RentalStatus]bool{
	RentalStatusActive:    {RentalStatusReturned: true, RentalStatusCancelled: true},
	RentalStatusReturned:  {},
	RentalStatusCancelled: {},
}

// CanTransition reports whether a rental may move from one stored
// status to another. Nothing transitions back to active.
func (s RentalStatus) CanTransition(to RentalStatus) bool {
	return validRentalNext[s][to]
}

// Rental is created once per rental cart line at checkout. Rates and
// duration are snapshots; the due date always follows the start date.
type Rental struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	OrderID       uuid.UUID    `json:"orderId" db:"order_id"`
	BookID        string       `json:"bookId" db:"book_id"`
	Title         string       `json:"title" db:"title"`
	WeeklyRate    float64      `json:"weeklyRate" db:"weekly_rate"`
	DurationWeeks int          `json:"durationWeeks" db:"duration_weeks"`
	StartDate     time.Time    `json:"startDate" db:"start_date"`
	DueDate       time.Time    `json:"dueDate" db:"due_date"`
	Status        RentalStatus `json:"status" db:"status"`
	SellerID      string       `json:"sellerId,omitempty" db:"seller_id"`
}

// EffectiveStatus returns the status as of now, deriving overdue for
// active rentals past their due date.
func (r Rental) EffectiveStatus(now time.Time) RentalStatus {
	if r.Status == RentalStatusActive && now.After(r.DueDate) {
		return RentalStatusOverdue
	}
	return r.Status
}
