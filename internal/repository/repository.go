package repository

import (
	"context"

	"bookmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BookRepository defines the interface for catalogue data access.
type BookRepository interface {
	// GetAll retrieves catalogue books with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Book, error)

	// GetByID retrieves a single book by its ID.
	GetByID(ctx context.Context, id string) (*model.Book, error)

	// UpdatePrice changes a book's purchase price. Existing order
	// snapshots are unaffected.
	UpdatePrice(ctx context.Context, id string, price float64) error
}

// OrderRepository defines the interface for order and rental data
// access.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderLines inserts the order's line snapshots within the
	// provided transaction.
	CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error

	// CreateRentals inserts rental records within the provided
	// transaction.
	CreateRentals(ctx context.Context, tx pgx.Tx, rentals []model.Rental) error

	// GetByID retrieves an order by its ID along with its lines.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List retrieves orders newest first with pagination support.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// GetRental retrieves a rental by its ID.
	GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error)

	// ListRentals retrieves rentals newest first.
	ListRentals(ctx context.Context, limit, offset int) ([]model.Rental, error)

	// UpdateRentalStatus changes a rental's stored status.
	UpdateRentalStatus(ctx context.Context, id uuid.UUID, status model.RentalStatus) error
}
