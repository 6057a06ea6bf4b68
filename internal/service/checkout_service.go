package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bookmart/internal/cart"
	"bookmart/internal/events"
	"bookmart/internal/model"
	"bookmart/internal/pricing"
	"bookmart/internal/promo"
	"bookmart/internal/repository"
	"bookmart/internal/wallet"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutConfig holds the fixed pricing knobs of a checkout.
type CheckoutConfig struct {
	// TaxRate is applied to the subtotal.
	TaxRate float64

	// ShippingFee is a flat fee charged only when the cart holds at
	// least one purchase line.
	ShippingFee float64
}

// checkoutService implements CheckoutService. It owns the checkout
// state machine: one attempt at a time, snapshot taken at the
// Validating → Processing boundary, and writes ordered so the system
// never charges without recording an order before clearing the cart.
type checkoutService struct {
	cart      *cart.Store
	wallet    *wallet.Ledger
	promo     promo.Evaluator
	orderRepo repository.OrderRepository
	gateway   PaymentGateway
	publisher events.Publisher
	config    CheckoutConfig
	logger    zerolog.Logger
	now       func() time.Time

	mu    sync.Mutex
	state State
}

// CheckoutOption configures the checkout service.
type CheckoutOption func(*checkoutService)

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) CheckoutOption {
	return func(s *checkoutService) { s.now = now }
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	cartStore *cart.Store,
	ledger *wallet.Ledger,
	evaluator promo.Evaluator,
	orderRepo repository.OrderRepository,
	gateway PaymentGateway,
	publisher events.Publisher,
	config CheckoutConfig,
	logger zerolog.Logger,
	opts ...CheckoutOption,
) CheckoutService {
	s := &checkoutService{
		cart:      cartStore,
		wallet:    ledger,
		promo:     evaluator,
		orderRepo: orderRepo,
		gateway:   gateway,
		publisher: publisher,
		config:    config,
		logger:    logger.With().Str("service", "checkout").Logger(),
		now:       time.Now,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current checkout state.
func (s *checkoutService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// transition moves the state machine, refusing transitions the machine
// does not allow.
func (s *checkoutService) transition(to State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CanTransition(to) {
		s.logger.Error().
			Str("from", string(s.state)).
			Str("to", string(to)).
			Msg("refused invalid checkout state transition")
		return
	}
	s.state = to
}

// finish records a terminal state and resets to idle, ready for the
// next attempt.
func (s *checkoutService) finish(terminal State) {
	s.transition(terminal)
	s.transition(StateIdle)
}

// Quote computes the totals the next Pay call would charge.
func (s *checkoutService) Quote(code string) Quote {
	return s.quoteLines(s.cart.Items(), code)
}

func (s *checkoutService) quoteLines(lines []model.CartLine, code string) Quote {
	subtotal := pricing.Subtotal(lines)

	discount, err := s.promo.Evaluate(code, subtotal)
	promoInvalid := err != nil
	if promoInvalid {
		// Invalid codes are non-fatal: zero discount, flag surfaced.
		discount = 0
	}

	tax := pricing.Round2(subtotal * s.config.TaxRate)

	var shipping float64
	if len(lines) > 0 && hasPurchaseLine(lines) {
		shipping = s.config.ShippingFee
	}

	return Quote{
		Subtotal:     subtotal,
		Discount:     discount,
		Tax:          tax,
		Shipping:     shipping,
		Total:        pricing.Round2(subtotal - discount + tax + shipping),
		PromoInvalid: promoInvalid,
	}
}

// Pay runs a single checkout attempt. A second call while an attempt
// is Processing is rejected with ErrCheckoutInFlight.
func (s *checkoutService) Pay(ctx context.Context, req *PayRequest) (*PayResult, error) {
	if req == nil {
		return nil, fmt.Errorf("pay request is nil")
	}

	s.mu.Lock()
	if s.state == StateProcessing {
		s.mu.Unlock()
		s.logger.Warn().Msg("pay rejected: checkout already in flight")
		return nil, model.ErrCheckoutInFlight
	}
	s.state = StateValidating
	s.mu.Unlock()

	// The snapshot is fixed here; cart mutations during Processing do
	// not affect this attempt.
	snapshot := s.cart.Items()

	if err := s.validate(snapshot, req); err != nil {
		s.transition(StateIdle)
		return nil, err
	}

	quote := s.quoteLines(snapshot, req.PromoCode)

	s.transition(StateProcessing)

	orderID := uuid.New()

	if req.Method == model.PaymentMethodWallet {
		err := s.wallet.Withdraw(ctx, quote.Total, string(req.Method), "Order payment", &orderID)
		if err != nil {
			s.logger.Warn().Err(err).Float64("total", quote.Total).Msg("wallet payment failed")
			s.finish(StateFailed)
			return nil, err
		}
	} else {
		if err := s.gateway.Charge(ctx, req.Method, quote.Total); err != nil {
			s.logger.Warn().Err(err).Float64("total", quote.Total).Msg("gateway charge failed")
			s.finish(StateFailed)
			return nil, err
		}
	}

	order, rentals := s.materialize(orderID, snapshot, quote, req)

	if err := s.persistOrder(ctx, order, rentals); err != nil {
		// The payment is committed but no order was recorded. This is a
		// recoverable inconsistency that needs reconciliation; it must
		// never be silently ignored.
		s.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Float64("total", quote.Total).
			Str("method", string(req.Method)).
			Msg("payment committed without order record; reconciliation required")
		s.finish(StateFailed)
		return nil, model.ErrPersistenceFailure
	}

	if err := s.cart.Clear(ctx); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("order recorded but cart not cleared")
		s.finish(StateFailed)
		return nil, model.ErrPersistenceFailure
	}

	s.publisher.PublishOrderCreated(ctx, events.OrderCreated{
		OrderID:       orderID,
		TotalAmount:   quote.Total,
		ItemCount:     len(order.Items),
		RentalCount:   len(rentals),
		PaymentMethod: string(req.Method),
		OrderDate:     order.OrderDate,
	})

	s.logger.Info().
		Str("order_id", orderID.String()).
		Float64("total", quote.Total).
		Int("item_count", len(order.Items)).
		Int("rental_count", len(rentals)).
		Msg("checkout succeeded")

	s.finish(StateSucceeded)

	return &PayResult{OrderID: orderID, Quote: quote}, nil
}

// validate runs the checkout preconditions in order, short-circuiting
// on the first failure.
func (s *checkoutService) validate(snapshot []model.CartLine, req *PayRequest) error {
	if len(snapshot) == 0 {
		return model.ErrEmptyCart
	}
	if req.Method == model.PaymentMethodCard && !req.Card.Complete() {
		return model.ErrMissingCardDetails
	}
	if req.Method == model.PaymentMethodUPI && !req.UpiViaQR && req.UpiID == "" {
		return model.ErrMissingUpiID
	}
	if hasPurchaseLine(snapshot) && req.DeliveryAddress == "" {
		return model.ErrMissingDeliveryAddress
	}
	return nil
}

// materialize builds the immutable order and rental records from the
// cart snapshot. Prices are captured here, never referenced back to the
// catalogue.
func (s *checkoutService) materialize(orderID uuid.UUID, snapshot []model.CartLine, quote Quote, req *PayRequest) (*model.Order, []model.Rental) {
	now := s.now()

	order := &model.Order{
		ID:              orderID,
		Subtotal:        quote.Subtotal,
		Discount:        quote.Discount,
		Tax:             quote.Tax,
		Shipping:        quote.Shipping,
		TotalAmount:     quote.Total,
		Status:          model.OrderStatusPaid,
		PaymentMethod:   req.Method,
		DeliveryAddress: req.DeliveryAddress,
		OrderDate:       now,
	}
	if req.PromoCode != "" && !quote.PromoInvalid {
		code := req.PromoCode
		order.PromoCode = &code
	}

	var rentals []model.Rental
	for _, line := range snapshot {
		amount, err := pricing.LineAmount(line)
		if err != nil {
			continue
		}

		orderLine := model.OrderLine{
			ID:         uuid.New(),
			OrderID:    orderID,
			BookID:     line.BookID,
			Type:       line.Type,
			Title:      line.Title,
			UnitAmount: amount,
			Quantity:   line.Quantity,
		}

		if line.Type == model.LineTypeRental {
			orderLine.DurationDays = line.Rental.DurationDays

			rentals = append(rentals, model.Rental{
				ID:            uuid.New(),
				OrderID:       orderID,
				BookID:        line.BookID,
				Title:         line.Title,
				WeeklyRate:    line.Rental.WeeklyRate,
				DurationWeeks: pricing.WeeksForDuration(line.Rental.DurationDays),
				StartDate:     now,
				DueDate:       now.AddDate(0, 0, line.Rental.DurationDays),
				Status:        model.RentalStatusActive,
				SellerID:      line.Rental.SellerID,
			})
		}

		order.Items = append(order.Items, orderLine)
	}

	return order, rentals
}

// persistOrder writes the order, its lines, and any rentals in one
// database transaction.
func (s *checkoutService) persistOrder(ctx context.Context, order *model.Order, rentals []model.Rental) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to persist order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to persist order: %w", err)
	}
	if err = s.orderRepo.CreateOrderLines(ctx, tx, order.Items); err != nil {
		return fmt.Errorf("failed to persist order lines: %w", err)
	}
	if err = s.orderRepo.CreateRentals(ctx, tx, rentals); err != nil {
		return fmt.Errorf("failed to persist rentals: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// GetOrder retrieves an order with its line snapshots.
func (s *checkoutService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// ListOrders retrieves past orders, newest first.
func (s *checkoutService) ListOrders(ctx context.Context, limit, offset int) ([]model.Order, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := s.orderRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListRentals retrieves rentals newest first. Stored statuses are
// replaced with the effective status, so active rentals past their due
// date come back overdue.
func (s *checkoutService) ListRentals(ctx context.Context, limit, offset int) ([]model.Rental, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rentals, err := s.orderRepo.ListRentals(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list rentals")
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}

	now := s.now()
	for i := range rentals {
		rentals[i].Status = rentals[i].EffectiveStatus(now)
	}
	return rentals, nil
}

// ReturnRental transitions an active rental to returned.
func (s *checkoutService) ReturnRental(ctx context.Context, id uuid.UUID) error {
	rental, err := s.orderRepo.GetRental(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("rental_id", id.String()).Msg("failed to get rental")
		return fmt.Errorf("failed to get rental: %w", err)
	}
	if rental == nil || !rental.Status.CanTransition(model.RentalStatusReturned) {
		return model.ErrRentalNotActive
	}

	if err := s.orderRepo.UpdateRentalStatus(ctx, id, model.RentalStatusReturned); err != nil {
		return fmt.Errorf("failed to return rental: %w", err)
	}

	s.logger.Info().Str("rental_id", id.String()).Msg("rental returned")

	return nil
}

// hasPurchaseLine reports whether any line is a purchase.
func hasPurchaseLine(lines []model.CartLine) bool {
	for _, line := range lines {
		if line.Type == model.LineTypePurchase {
			return true
		}
	}
	return false
}
