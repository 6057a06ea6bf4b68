package service

import (
	"context"
	"time"

	"bookmart/internal/model"

	"github.com/rs/zerolog"
)

// PaymentGateway authorizes card and UPI charges. Wallet payments go
// through the wallet ledger instead.
type PaymentGateway interface {
	// Charge authorizes a payment. Expected declines come back as
	// model.ErrPaymentDeclined; a context error means the attempt was
	// torn down, not declined.
	Charge(ctx context.Context, method model.PaymentMethod, amount float64) error
}

// simulatedGateway approves every charge after a fixed processing
// delay. There is no real gateway integration in this system; a real
// implementation must keep the same contract shape.
type simulatedGateway struct {
	delay  time.Duration
	logger zerolog.Logger
}

// NewSimulatedGateway creates a gateway that always approves after the
// given delay.
func NewSimulatedGateway(delay time.Duration, logger zerolog.Logger) PaymentGateway {
	return &simulatedGateway{
		delay:  delay,
		logger: logger.With().Str("component", "payment-gateway").Logger(),
	}
}

func (g *simulatedGateway) Charge(ctx context.Context, method model.PaymentMethod, amount float64) error {
	timer := time.NewTimer(g.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	g.logger.Info().
		Str("method", string(method)).
		Float64("amount", amount).
		Msg("payment authorized")

	return nil
}
