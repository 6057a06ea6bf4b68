package promo

import (
	"fmt"

	"bookmart/internal/model"
	"bookmart/internal/pricing"

	"github.com/rs/zerolog"
)

// evaluator implements Evaluator over an in-memory rule table. The
// table is read-only after construction, so no locking is needed.
type evaluator struct {
	rules  map[string]Rule
	logger zerolog.Logger
}

// DefaultRules returns the rule table shipped with the binary, used
// when no rule file is configured.
func DefaultRules() []Rule {
	return []Rule{
		{Code: "SAVE10", Kind: KindPercent, Value: 0.10},
		{Code: "READER15", Kind: KindPercent, Value: 0.15},
		{Code: "WELCOME5", Kind: KindFlat, Value: 5.00},
	}
}

// NewEvaluator creates an evaluator from the given rules. Every rule
// must validate; a table with a bad rule is rejected outright rather
// than silently dropping codes.
func NewEvaluator(rules []Rule, logger zerolog.Logger) (Evaluator, error) {
	table := make(map[string]Rule, len(rules))
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("invalid promo rule table: %w", err)
		}
		table[rule.Code] = rule
	}

	logger.Info().Int("rule_count", len(table)).Msg("promo evaluator initialised")

	return &evaluator{
		rules:  table,
		logger: logger.With().Str("component", "promo-evaluator").Logger(),
	}, nil
}

// Evaluate resolves code against the rule table. Flat discounts are
// capped at the subtotal so a total can never go negative.
func (e *evaluator) Evaluate(code string, subtotal float64) (float64, error) {
	if code == "" {
		return 0, nil
	}

	rule, ok := e.rules[code]
	if !ok {
		e.logger.Debug().Str("promo_code", code).Msg("promo code not found")
		return 0, model.ErrInvalidPromoCode
	}

	var discount float64
	switch rule.Kind {
	case KindPercent:
		discount = pricing.Round2(subtotal * rule.Value)
	case KindFlat:
		discount = rule.Value
		if discount > subtotal {
			discount = subtotal
		}
	}

	e.logger.Debug().
		Str("promo_code", code).
		Float64("subtotal", subtotal).
		Float64("discount", discount).
		Msg("promo code applied")

	return discount, nil
}
