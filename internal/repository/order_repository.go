package repository

import (
	"context"
	"fmt"

	"bookmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using
// PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, status, payment_method, promo_code, delivery_address,
			subtotal, discount, tax, shipping, total_amount, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.Status, order.PaymentMethod, order.PromoCode, order.DeliveryAddress,
		order.Subtotal, order.Discount, order.Tax, order.Shipping, order.TotalAmount, order.OrderDate,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderLines inserts the order's line snapshots within the
// provided transaction.
func (r *orderRepository) CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_lines (id, order_id, book_id, line_type, title, unit_amount, quantity, duration_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(query, line.ID, line.OrderID, line.BookID, line.Type, line.Title, line.UnitAmount, line.Quantity, line.DurationDays)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(lines); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", lines[i].OrderID.String()).
				Str("book_id", lines[i].BookID).
				Msg("failed to create order line")
			return fmt.Errorf("failed to create order line: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(lines)).
		Msg("order lines created successfully")

	return nil
}

// CreateRentals inserts rental records within the provided transaction.
func (r *orderRepository) CreateRentals(ctx context.Context, tx pgx.Tx, rentals []model.Rental) error {
	if len(rentals) == 0 {
		return nil
	}

	query := `
		INSERT INTO rentals (id, order_id, book_id, title, weekly_rate, duration_weeks,
			start_date, due_date, status, seller_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for _, rental := range rentals {
		batch.Queue(query, rental.ID, rental.OrderID, rental.BookID, rental.Title,
			rental.WeeklyRate, rental.DurationWeeks, rental.StartDate, rental.DueDate,
			rental.Status, rental.SellerID)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(rentals); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("rental_id", rentals[i].ID.String()).
				Msg("failed to create rental")
			return fmt.Errorf("failed to create rental: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(rentals)).
		Msg("rentals created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its lines.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	orderQuery := `
		SELECT id, status, payment_method, promo_code, delivery_address,
			subtotal, discount, tax, shipping, total_amount, order_date
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&order.ID,
		&order.Status,
		&order.PaymentMethod,
		&order.PromoCode,
		&order.DeliveryAddress,
		&order.Subtotal,
		&order.Discount,
		&order.Tax,
		&order.Shipping,
		&order.TotalAmount,
		&order.OrderDate,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	lines, err := r.linesForOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = lines

	return &order, nil
}

func (r *orderRepository) linesForOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderLine, error) {
	query := `
		SELECT id, order_id, book_id, line_type, title, unit_amount, quantity, duration_days
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order lines")
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []model.OrderLine
	for rows.Next() {
		var line model.OrderLine
		err := rows.Scan(&line.ID, &line.OrderID, &line.BookID, &line.Type, &line.Title, &line.UnitAmount, &line.Quantity, &line.DurationDays)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line row")
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line rows")
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return lines, nil
}

// List retrieves orders newest first with pagination support. Lines
// are not loaded; use GetByID for the full order.
func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	query := `
		SELECT id, status, payment_method, promo_code, delivery_address,
			subtotal, discount, tax, shipping, total_amount, order_date
		FROM orders
		ORDER BY order_date DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var order model.Order
		err := rows.Scan(
			&order.ID,
			&order.Status,
			&order.PaymentMethod,
			&order.PromoCode,
			&order.DeliveryAddress,
			&order.Subtotal,
			&order.Discount,
			&order.Tax,
			&order.Shipping,
			&order.TotalAmount,
			&order.OrderDate,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// GetRental retrieves a rental by its ID.
func (r *orderRepository) GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	query := `
		SELECT id, order_id, book_id, title, weekly_rate, duration_weeks,
			start_date, due_date, status, seller_id
		FROM rentals
		WHERE id = $1
	`

	var rental model.Rental
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rental.ID,
		&rental.OrderID,
		&rental.BookID,
		&rental.Title,
		&rental.WeeklyRate,
		&rental.DurationWeeks,
		&rental.StartDate,
		&rental.DueDate,
		&rental.Status,
		&rental.SellerID,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("rental_id", id.String()).Msg("rental not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("rental_id", id.String()).Msg("failed to query rental")
		return nil, fmt.Errorf("failed to query rental: %w", err)
	}

	return &rental, nil
}

// ListRentals retrieves rentals newest first.
func (r *orderRepository) ListRentals(ctx context.Context, limit, offset int) ([]model.Rental, error) {
	query := `
		SELECT id, order_id, book_id, title, weekly_rate, duration_weeks,
			start_date, due_date, status, seller_id
		FROM rentals
		ORDER BY start_date DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query rentals")
		return nil, fmt.Errorf("failed to query rentals: %w", err)
	}
	defer rows.Close()

	var rentals []model.Rental
	for rows.Next() {
		var rental model.Rental
		err := rows.Scan(
			&rental.ID,
			&rental.OrderID,
			&rental.BookID,
			&rental.Title,
			&rental.WeeklyRate,
			&rental.DurationWeeks,
			&rental.StartDate,
			&rental.DueDate,
			&rental.Status,
			&rental.SellerID,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan rental row")
			return nil, fmt.Errorf("failed to scan rental: %w", err)
		}
		rentals = append(rentals, rental)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating rental rows")
		return nil, fmt.Errorf("error iterating rentals: %w", err)
	}

	return rentals, nil
}

// UpdateRentalStatus changes a rental's stored status.
func (r *orderRepository) UpdateRentalStatus(ctx context.Context, id uuid.UUID, status model.RentalStatus) error {
	query := `UPDATE rentals SET status = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("rental_id", id.String()).Msg("failed to update rental status")
		return fmt.Errorf("failed to update rental status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRentalNotActive
	}

	r.logger.Info().
		Str("rental_id", id.String()).
		Str("status", string(status)).
		Msg("rental status updated")

	return nil
}
