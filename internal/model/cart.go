package model

import "time"

// LineType distinguishes purchase lines from rental lines.
type LineType string

const (
	LineTypePurchase LineType = "purchase"
	LineTypeRental   LineType = "rental"
)

// LineKey identifies a cart line. Two lines with the same key are the
// same logical line and must be merged (quantities summed), never
// duplicated. DurationDays is zero for purchase lines, so two rentals
// of the same book with different durations stay separate lines.
type LineKey struct {
	BookID       string   `json:"bookId"`
	Type         LineType `json:"type"`
	DurationDays int      `json:"durationDays,omitempty"`
}

// RentalTerms carries the rental-only attributes of a cart line.
// DailyRate may be zero, in which case the pricing calculator derives
// it from the weekly rate.
type RentalTerms struct {
	DailyRate    float64   `json:"dailyRate,omitempty"`
	WeeklyRate   float64   `json:"weeklyRate"`
	DurationDays int       `json:"durationDays"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	SellerID     string    `json:"sellerId,omitempty"`
}

// CartLine is a single line item in the active cart or the
// saved-for-later list. Purchase lines carry UnitPrice and a nil
// Rental; rental lines carry Rental and a zero UnitPrice.
type CartLine struct {
	BookID    string       `json:"bookId"`
	Type      LineType     `json:"type"`
	Title     string       `json:"title"`
	Author    string       `json:"author,omitempty"`
	Condition string       `json:"condition,omitempty"`
	UnitPrice float64      `json:"unitPrice,omitempty"`
	Quantity  int          `json:"quantity"`
	Rental    *RentalTerms `json:"rental,omitempty"`
}

// Key returns the merge key for this line.
func (l CartLine) Key() LineKey {
	k := LineKey{BookID: l.BookID, Type: l.Type}
	if l.Type == LineTypeRental && l.Rental != nil {
		k.DurationDays = l.Rental.DurationDays
	}
	return k
}

// Clone returns a deep copy of the line.
func (l CartLine) Clone() CartLine {
	c := l
	if l.Rental != nil {
		terms := *l.Rental
		c.Rental = &terms
	}
	return c
}

// CloneLines returns a deep copy of a line slice.
func CloneLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}
