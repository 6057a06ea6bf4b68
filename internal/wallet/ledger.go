package wallet

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"bookmart/internal/kvstore"
	"bookmart/internal/model"
	"bookmart/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	balanceKey      = "walletBalance"
	transactionsKey = "walletTransactions"
)

// SeedBalance is the opening balance for a wallet with no persisted
// state. It is recorded as an opening deposit so the balance always
// equals the sum of signed transaction amounts.
const SeedBalance = 100.00

// Ledger holds a wallet balance and its append-only transaction log.
// Every mutation is written through to the key-value store before it
// is visible to callers; the balance never goes negative.
type Ledger struct {
	mu           sync.Mutex
	kv           kvstore.Store
	logger       zerolog.Logger
	now          func() time.Time
	seed         float64
	balance      float64
	transactions []model.WalletTransaction
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithSeed overrides the opening balance for a fresh wallet. Ignored
// when persisted state already exists.
func WithSeed(seed float64) Option {
	return func(l *Ledger) { l.seed = seed }
}

// NewLedger loads the wallet from the key-value store, seeding it with
// SeedBalance (persisted immediately) when no state exists.
func NewLedger(ctx context.Context, kv kvstore.Store, logger zerolog.Logger, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		kv:     kv,
		logger: logger.With().Str("component", "wallet").Logger(),
		now:    time.Now,
		seed:   SeedBalance,
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.Refresh(ctx); err != nil {
		return nil, err
	}

	return l, nil
}

// Refresh re-hydrates the balance and transaction log from persisted
// storage, seeding the wallet if nothing has been stored yet.
func (l *Ledger) Refresh(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, found, err := l.kv.Get(ctx, balanceKey)
	if err != nil {
		l.logger.Error().Err(err).Msg("failed to load wallet balance")
		return model.ErrPersistenceFailure
	}

	if !found {
		return l.seedLocked(ctx)
	}

	balance, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		l.logger.Error().Err(err).Str("value", raw).Msg("corrupt wallet balance")
		return model.ErrPersistenceFailure
	}

	var transactions []model.WalletTransaction
	rawTxns, found, err := l.kv.Get(ctx, transactionsKey)
	if err != nil {
		l.logger.Error().Err(err).Msg("failed to load wallet transactions")
		return model.ErrPersistenceFailure
	}
	if found {
		if err := json.Unmarshal([]byte(rawTxns), &transactions); err != nil {
			l.logger.Error().Err(err).Msg("corrupt wallet transaction log")
			return model.ErrPersistenceFailure
		}
	}

	l.balance = balance
	l.transactions = transactions

	l.logger.Info().
		Float64("balance", balance).
		Int("transaction_count", len(transactions)).
		Msg("wallet loaded")

	return nil
}

func (l *Ledger) seedLocked(ctx context.Context) error {
	opening := model.WalletTransaction{
		ID:          uuid.New(),
		Type:        model.TransactionTypeDeposit,
		Amount:      l.seed,
		Timestamp:   l.now(),
		Description: "Opening balance",
	}

	if err := l.persist(ctx, l.seed, []model.WalletTransaction{opening}); err != nil {
		return err
	}

	l.balance = l.seed
	l.transactions = []model.WalletTransaction{opening}

	l.logger.Info().Float64("balance", l.seed).Msg("wallet seeded")

	return nil
}

// Deposit credits the wallet. Never fails for a valid positive amount
// unless persistence fails. Returns the new balance.
func (l *Ledger) Deposit(ctx context.Context, amount float64, method, description string) (float64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	txn := model.WalletTransaction{
		ID:          uuid.New(),
		Type:        model.TransactionTypeDeposit,
		Amount:      pricing.Round2(amount),
		Timestamp:   l.now(),
		Description: description,
		Method:      method,
	}

	newBalance := pricing.Round2(l.balance + txn.Amount)
	newTxns := append(append([]model.WalletTransaction{}, l.transactions...), txn)

	if err := l.persist(ctx, newBalance, newTxns); err != nil {
		return 0, err
	}

	l.balance = newBalance
	l.transactions = newTxns

	l.logger.Info().
		Float64("amount", txn.Amount).
		Float64("balance", newBalance).
		Str("method", method).
		Msg("wallet deposit")

	return newBalance, nil
}

// Withdraw debits the wallet. A withdrawal that would take the balance
// negative is rejected entirely with no mutation. An orderID ties the
// entry to a checkout payment.
func (l *Ledger) Withdraw(ctx context.Context, amount float64, method, description string, orderID *uuid.UUID) error {
	if amount <= 0 {
		return model.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	amount = pricing.Round2(amount)
	if l.balance < amount {
		l.logger.Warn().
			Float64("amount", amount).
			Float64("balance", l.balance).
			Msg("withdrawal rejected: insufficient funds")
		return model.ErrInsufficientFunds
	}

	txnType := model.TransactionTypeWithdrawal
	if orderID != nil {
		txnType = model.TransactionTypePayment
	}

	txn := model.WalletTransaction{
		ID:          uuid.New(),
		Type:        txnType,
		Amount:      -amount,
		Timestamp:   l.now(),
		Description: description,
		Method:      method,
		OrderID:     orderID,
	}

	newBalance := pricing.Round2(l.balance - amount)
	newTxns := append(append([]model.WalletTransaction{}, l.transactions...), txn)

	if err := l.persist(ctx, newBalance, newTxns); err != nil {
		return err
	}

	l.balance = newBalance
	l.transactions = newTxns

	l.logger.Info().
		Float64("amount", amount).
		Float64("balance", newBalance).
		Str("type", string(txnType)).
		Msg("wallet debit")

	return nil
}

// Balance returns the current balance.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Transactions returns a copy of the transaction log, oldest first.
func (l *Ledger) Transactions() []model.WalletTransaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.WalletTransaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// persist writes the new state through to the key-value store. The
// in-memory state is only updated after both writes succeed.
func (l *Ledger) persist(ctx context.Context, balance float64, transactions []model.WalletTransaction) error {
	data, err := json.Marshal(transactions)
	if err != nil {
		l.logger.Error().Err(err).Msg("failed to marshal wallet transactions")
		return model.ErrPersistenceFailure
	}

	if err := l.kv.Set(ctx, transactionsKey, string(data)); err != nil {
		l.logger.Error().Err(err).Msg("failed to persist wallet transactions")
		return model.ErrPersistenceFailure
	}

	if err := l.kv.Set(ctx, balanceKey, strconv.FormatFloat(balance, 'f', 2, 64)); err != nil {
		l.logger.Error().Err(err).Msg("failed to persist wallet balance")
		return model.ErrPersistenceFailure
	}

	return nil
}
