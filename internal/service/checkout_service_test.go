package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookmart/internal/cart"
	"bookmart/internal/events"
	"bookmart/internal/kvstore"
	"bookmart/internal/model"
	"bookmart/internal/promo"
	"bookmart/internal/wallet"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error {
	args := m.Called(ctx, tx, lines)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateRentals(ctx context.Context, tx pgx.Tx, rentals []model.Rental) error {
	args := m.Called(ctx, tx, rentals)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Rental), args.Error(1)
}

func (m *MockOrderRepository) ListRentals(ctx context.Context, limit, offset int) ([]model.Rental, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Rental), args.Error(1)
}

func (m *MockOrderRepository) UpdateRentalStatus(ctx context.Context, id uuid.UUID, status model.RentalStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// blockingGateway holds every charge until released, so tests can
// observe the service while a checkout is in flight.
type blockingGateway struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingGateway() *blockingGateway {
	return &blockingGateway{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *blockingGateway) Charge(ctx context.Context, method model.PaymentMethod, amount float64) error {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type checkoutFixture struct {
	service CheckoutService
	cart    *cart.Store
	wallet  *wallet.Ledger
	repo    *MockOrderRepository
	tx      *MockTx
}

func newCheckoutFixture(t *testing.T, gateway PaymentGateway) *checkoutFixture {
	t.Helper()
	logger := zerolog.Nop()
	ctx := context.Background()

	cartStore, err := cart.NewStore(ctx, kvstore.NewMemory(), logger)
	require.NoError(t, err)

	ledger, err := wallet.NewLedger(ctx, kvstore.NewMemory(), logger)
	require.NoError(t, err)

	evaluator, err := promo.NewEvaluator(promo.DefaultRules(), logger)
	require.NoError(t, err)

	repo := new(MockOrderRepository)

	if gateway == nil {
		gateway = NewSimulatedGateway(0, logger)
	}

	svc := NewCheckoutService(
		cartStore,
		ledger,
		evaluator,
		repo,
		gateway,
		events.NewNopPublisher(),
		CheckoutConfig{TaxRate: 0.08, ShippingFee: 5.00},
		logger,
	)

	return &checkoutFixture{
		service: svc,
		cart:    cartStore,
		wallet:  ledger,
		repo:    repo,
		tx:      new(MockTx),
	}
}

func (f *checkoutFixture) expectPersistSuccess(ctx context.Context) {
	f.tx.On("Commit", ctx).Return(nil)
	f.repo.On("BeginTx", ctx).Return(f.tx, nil)
	f.repo.On("CreateOrder", ctx, f.tx, mock.AnythingOfType("*model.Order")).Return(nil)
	f.repo.On("CreateOrderLines", ctx, f.tx, mock.AnythingOfType("[]model.OrderLine")).Return(nil)
	f.repo.On("CreateRentals", ctx, f.tx, mock.AnythingOfType("[]model.Rental")).Return(nil)
}

func purchaseLine(bookID, title string, price float64, quantity int) model.CartLine {
	return model.CartLine{
		BookID:    bookID,
		Type:      model.LineTypePurchase,
		Title:     title,
		UnitPrice: price,
		Quantity:  quantity,
	}
}

func rentalLine(bookID, title string, daily, weekly float64, days int) model.CartLine {
	return model.CartLine{
		BookID:   bookID,
		Type:     model.LineTypeRental,
		Title:    title,
		Quantity: 1,
		Rental: &model.RentalTerms{
			DailyRate:    daily,
			WeeklyRate:   weekly,
			DurationDays: days,
			SellerID:     "seller-1",
		},
	}
}

func TestCheckoutService_Pay_EmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)

	_, err := f.service.Pay(ctx, &PayRequest{Method: model.PaymentMethodWallet})

	assert.ErrorIs(t, err, model.ErrEmptyCart)
	assert.Equal(t, StateIdle, f.service.State())
	assert.Equal(t, 100.00, f.wallet.Balance())
	f.repo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestCheckoutService_Pay_ValidationOrder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		lines   []model.CartLine
		req     *PayRequest
		wantErr error
	}{
		{
			name:    "card without details",
			lines:   []model.CartLine{purchaseLine("B1", "Dune", 12.99, 1)},
			req:     &PayRequest{Method: model.PaymentMethodCard, DeliveryAddress: "42 Elm St"},
			wantErr: model.ErrMissingCardDetails,
		},
		{
			name:    "card with partial details",
			lines:   []model.CartLine{purchaseLine("B1", "Dune", 12.99, 1)},
			req:     &PayRequest{Method: model.PaymentMethodCard, Card: &CardDetails{Number: "4111", Name: "A Reader"}, DeliveryAddress: "42 Elm St"},
			wantErr: model.ErrMissingCardDetails,
		},
		{
			name:    "upi without id",
			lines:   []model.CartLine{purchaseLine("B1", "Dune", 12.99, 1)},
			req:     &PayRequest{Method: model.PaymentMethodUPI, DeliveryAddress: "42 Elm St"},
			wantErr: model.ErrMissingUpiID,
		},
		{
			name:    "purchase without delivery address",
			lines:   []model.CartLine{purchaseLine("B1", "Dune", 12.99, 1)},
			req:     &PayRequest{Method: model.PaymentMethodWallet},
			wantErr: model.ErrMissingDeliveryAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t, nil)
			for _, line := range tt.lines {
				require.NoError(t, f.cart.Add(ctx, line))
			}

			_, err := f.service.Pay(ctx, tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StateIdle, f.service.State())
			assert.Len(t, f.cart.Items(), len(tt.lines))
			f.repo.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func TestCheckoutService_Pay_UpiViaQRSkipsID(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)
	f.expectPersistSuccess(ctx)

	require.NoError(t, f.cart.Add(ctx, purchaseLine("B1", "Dune", 12.99, 1)))

	result, err := f.service.Pay(ctx, &PayRequest{
		Method:          model.PaymentMethodUPI,
		UpiViaQR:        true,
		DeliveryAddress: "42 Elm St",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.OrderID)
}

func TestCheckoutService_Pay_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)

	// Seeded balance is 100.00; this cart costs well over that.
	require.NoError(t, f.cart.Add(ctx, purchaseLine("B1", "Atlas", 89.99, 2)))

	_, err := f.service.Pay(ctx, &PayRequest{
		Method:          model.PaymentMethodWallet,
		DeliveryAddress: "42 Elm St",
	})

	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
	assert.Equal(t, 100.00, f.wallet.Balance())
	assert.Len(t, f.cart.Items(), 1, "cart must survive a failed attempt")
	assert.Equal(t, StateIdle, f.service.State())
	f.repo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestCheckoutService_Pay_WalletSuccess(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)
	f.expectPersistSuccess(ctx)

	require.NoError(t, f.cart.Add(ctx, purchaseLine("B1", "Dune", 12.99, 1)))
	require.NoError(t, f.cart.Add(ctx, purchaseLine("B2", "Middlemarch", 21.99, 1)))

	result, err := f.service.Pay(ctx, &PayRequest{
		Method:          model.PaymentMethodWallet,
		DeliveryAddress: "42 Elm St",
	})
	require.NoError(t, err)

	// 34.98 + 2.80 tax + 5.00 shipping.
	assert.Equal(t, 34.98, result.Quote.Subtotal)
	assert.Equal(t, 2.80, result.Quote.Tax)
	assert.Equal(t, 5.00, result.Quote.Shipping)
	assert.Equal(t, 42.78, result.Quote.Total)

	assert.Equal(t, 57.22, f.wallet.Balance())
	assert.Empty(t, f.cart.Items(), "cart clears only after the order is recorded")
	assert.Equal(t, StateIdle, f.service.State())
	assert.True(t, f.tx.committed)

	transactions := f.wallet.Transactions()
	last := transactions[len(transactions)-1]
	assert.Equal(t, model.TransactionTypePayment, last.Type)
	require.NotNil(t, last.OrderID)
	assert.Equal(t, result.OrderID, *last.OrderID)

	f.repo.AssertCalled(t, "CreateOrder", ctx, f.tx, mock.MatchedBy(func(order *model.Order) bool {
		return order.ID == result.OrderID &&
			order.TotalAmount == 42.78 &&
			order.Status == model.OrderStatusPaid &&
			len(order.Items) == 2
	}))
}

func TestCheckoutService_Pay_RentalOnly(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)
	f.expectPersistSuccess(ctx)

	require.NoError(t, f.cart.Add(ctx, rentalLine("B1", "Dune", 1.99, 5.99, 10)))

	// No delivery address: rentals ship nothing.
	result, err := f.service.Pay(ctx, &PayRequest{Method: model.PaymentMethodWallet})
	require.NoError(t, err)

	// 5.99 + ceil(1.99*3) for ten days, no shipping.
	assert.Equal(t, 11.96, result.Quote.Subtotal)
	assert.Equal(t, 0.00, result.Quote.Shipping)

	f.repo.AssertCalled(t, "CreateRentals", ctx, f.tx, mock.MatchedBy(func(rentals []model.Rental) bool {
		if len(rentals) != 1 {
			return false
		}
		r := rentals[0]
		return r.OrderID == result.OrderID &&
			r.Status == model.RentalStatusActive &&
			r.DurationWeeks == 2 &&
			r.DueDate.Sub(r.StartDate) == 10*24*time.Hour
	}))
}

func TestCheckoutService_Pay_PromoApplied(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)
	f.expectPersistSuccess(ctx)

	require.NoError(t, f.cart.Add(ctx, purchaseLine("B1", "Dune", 40.00, 1)))

	result, err := f.service.Pay(ctx, &PayRequest{
		Method:          model.PaymentMethodWallet,
		DeliveryAddress: "42 Elm St",
		PromoCode:       "SAVE10",
	})
	require.NoError(t, err)

	assert.Equal(t, 4.00, result.Quote.Discount)
	assert.False(t, result.Quote.PromoInvalid)

	f.repo.AssertCalled(t, "CreateOrder", ctx, f.tx, mock.MatchedBy(func(order *model.Order) bool {
		return order.PromoCode != nil && *order.PromoCode == "SAVE10"
	}))
}

func TestCheckoutService_Pay_InvalidPromoIsNonFatal(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)
	f.expectPersistSuccess(ctx)

	require.NoError(t, f.cart.Add(ctx, purchaseLine("B1", "Dune", 40.00, 1)))

	result, err := f.service.Pay(ctx, &PayRequest{
		Method:          model.PaymentMethodWallet,
		DeliveryAddress: "42 Elm St",
		PromoCode:       "NOSUCHCODE",
	})
	require.NoError(t, err)

	assert.True(t, result.Quote.PromoInvalid)
	assert.Equal(t, 0.00, result.Quote.Discount)

	f.repo.AssertCalled(t, "CreateOrder", ctx, f.tx, mock.MatchedBy(func(order *model.Order) bool {
		return order.PromoCode == nil
	}))
}

func TestCheckoutService_Pay_RejectsConcurrentAttempt(t *testing.T) {
	ctx := context.Background()
	gateway := newBlockingGateway()
	f := newCheckoutFixture(t, gateway)
	f.expectPersistSuccess(ctx)

	require.NoError(t, f.cart.Add(ctx, purchaseLine("B1", "Dune", 12.99, 1)))

	req := &PayRequest{
		Method:          model.PaymentMethodCard,
		Card:            &CardDetails{Number: "4111111111111111", Name: "A Reader", Expiry: "12/27", CVV: "123"},
		DeliveryAddress: "42 Elm St",
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Pay(ctx, req)
		done <- err
	}()

	<-gateway.started
	assert.Equal(t, StateProcessing, f.service.State())

	_, err := f.service.Pay(ctx, req)
	assert.ErrorIs(t, err, model.ErrCheckoutInFlight)

	close(gateway.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, f.service.State())
}

func TestCheckoutService_Pay_SnapshotIgnoresConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	gateway := newBlockingGateway()
	f := newCheckoutFixture(t, gateway)
	f.expectPersistSuccess(ctx)

	require.NoError(t, f.cart.Add(ctx, purchaseLine("B1", "Dune", 12.99, 1)))

	req := &PayRequest{
		Method:          model.PaymentMethodCard,
		Card:            &CardDetails{Number: "4111111111111111", Name: "A Reader", Expiry: "12/27", CVV: "123"},
		DeliveryAddress: "42 Elm St",
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Pay(ctx, req)
		done <- err
	}()

	<-gateway.started

	// Lands after the snapshot; this attempt must not see it.
	require.NoError(t, f.cart.Add(ctx, purchaseLine("B2", "Middlemarch", 21.99, 1)))

	close(gateway.release)
	require.NoError(t, <-done)

	f.repo.AssertCalled(t, "CreateOrder", ctx, f.tx, mock.MatchedBy(func(order *model.Order) bool {
		return len(order.Items) == 1 && order.Items[0].BookID == "B1"
	}))
}

func TestCheckoutService_Pay_PersistFailureAfterDebit(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)

	f.tx.On("Rollback", ctx).Return(nil)
	f.repo.On("BeginTx", ctx).Return(f.tx, nil)
	f.repo.On("CreateOrder", ctx, f.tx, mock.AnythingOfType("*model.Order")).
		Return(errors.New("connection reset"))

	require.NoError(t, f.cart.Add(ctx, purchaseLine("B1", "Dune", 12.99, 1)))

	_, err := f.service.Pay(ctx, &PayRequest{
		Method:          model.PaymentMethodWallet,
		DeliveryAddress: "42 Elm St",
	})

	assert.ErrorIs(t, err, model.ErrPersistenceFailure)
	assert.True(t, f.tx.rolledBack)
	assert.Less(t, f.wallet.Balance(), 100.00, "debit is committed before the order write")
	assert.Len(t, f.cart.Items(), 1, "cart is not cleared when the order write fails")
	assert.Equal(t, StateIdle, f.service.State())
}

func TestCheckoutService_Quote_ShippingOnlyForPurchases(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)

	require.NoError(t, f.cart.Add(ctx, rentalLine("B1", "Dune", 1.99, 5.99, 7)))
	assert.Equal(t, 0.00, f.service.Quote("").Shipping)

	require.NoError(t, f.cart.Add(ctx, purchaseLine("B2", "Middlemarch", 21.99, 1)))
	assert.Equal(t, 5.00, f.service.Quote("").Shipping)
}

func TestCheckoutService_ListRentals_DerivesOverdue(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cartStore, err := cart.NewStore(ctx, kvstore.NewMemory(), logger)
	require.NoError(t, err)
	ledger, err := wallet.NewLedger(ctx, kvstore.NewMemory(), logger)
	require.NoError(t, err)
	evaluator, err := promo.NewEvaluator(promo.DefaultRules(), logger)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	svc := NewCheckoutService(
		cartStore, ledger, evaluator, repo,
		NewSimulatedGateway(0, logger), events.NewNopPublisher(),
		CheckoutConfig{TaxRate: 0.08, ShippingFee: 5.00}, logger,
		WithClock(func() time.Time { return now }),
	)

	repo.On("ListRentals", ctx, 20, 0).Return([]model.Rental{
		{ID: uuid.New(), Status: model.RentalStatusActive, DueDate: now.AddDate(0, 0, 3)},
		{ID: uuid.New(), Status: model.RentalStatusActive, DueDate: now.AddDate(0, 0, -2)},
		{ID: uuid.New(), Status: model.RentalStatusReturned, DueDate: now.AddDate(0, 0, -9)},
	}, nil)

	rentals, err := svc.ListRentals(ctx, 0, -1)
	require.NoError(t, err)
	require.Len(t, rentals, 3)

	assert.Equal(t, model.RentalStatusActive, rentals[0].Status)
	assert.Equal(t, model.RentalStatusOverdue, rentals[1].Status)
	assert.Equal(t, model.RentalStatusReturned, rentals[2].Status)
}

func TestCheckoutService_ReturnRental(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)

	id := uuid.New()
	f.repo.On("GetRental", ctx, id).Return(&model.Rental{ID: id, Status: model.RentalStatusActive}, nil)
	f.repo.On("UpdateRentalStatus", ctx, id, model.RentalStatusReturned).Return(nil)

	require.NoError(t, f.service.ReturnRental(ctx, id))
	f.repo.AssertExpectations(t)
}

func TestCheckoutService_ReturnRental_AlreadyReturned(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)

	id := uuid.New()
	f.repo.On("GetRental", ctx, id).Return(&model.Rental{ID: id, Status: model.RentalStatusReturned}, nil)

	err := f.service.ReturnRental(ctx, id)

	assert.ErrorIs(t, err, model.ErrRentalNotActive)
	f.repo.AssertNotCalled(t, "UpdateRentalStatus", mock.Anything, mock.Anything, mock.Anything)
}
