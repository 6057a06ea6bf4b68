package model

import "time"

// Book represents a listing in the marketplace catalogue. A book can be
// bought at Price and, when the seller allows it, rented at DailyRate
// or WeeklyRate.
type Book struct {
	ID         string    `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Author     string    `json:"author" db:"author"`
	Condition  string    `json:"condition" db:"condition"`
	Price      float64   `json:"price" db:"price"`
	DailyRate  float64   `json:"dailyRate" db:"daily_rate"`
	WeeklyRate float64   `json:"weeklyRate" db:"weekly_rate"`
	SellerID   string    `json:"sellerId" db:"seller_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
