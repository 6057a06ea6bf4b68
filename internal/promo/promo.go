package promo

import (
	"context"
	"fmt"
)

// RuleKind distinguishes percentage discounts from flat ones.
type RuleKind string

const (
	KindPercent RuleKind = "percent"
	KindFlat    RuleKind = "flat"
)

// Rule maps a promo code to a discount. Percent rules hold a fraction
// of the subtotal (0 < value <= 1); flat rules hold a fixed amount.
type Rule struct {
	Code  string   `json:"code"`
	Kind  RuleKind `json:"kind"`
	Value float64  `json:"value"`
}

// Validate checks the rule is well formed.
func (r Rule) Validate() error {
	if r.Code == "" {
		return fmt.Errorf("promo rule has empty code")
	}
	switch r.Kind {
	case KindPercent:
		if r.Value <= 0 || r.Value > 1 {
			return fmt.Errorf("promo rule %s: percent value %v out of (0,1]", r.Code, r.Value)
		}
	case KindFlat:
		if r.Value <= 0 {
			return fmt.Errorf("promo rule %s: flat value %v must be positive", r.Code, r.Value)
		}
	default:
		return fmt.Errorf("promo rule %s: unknown kind %q", r.Code, r.Kind)
	}
	return nil
}

// Evaluator resolves a promo code to a discount amount against a
// subtotal.
type Evaluator interface {
	// Evaluate returns the discount for code applied to subtotal.
	// Unknown codes return zero and model.ErrInvalidPromoCode; an empty
	// code is no promo at all and returns zero with no error.
	Evaluate(code string, subtotal float64) (float64, error)
}

// Loader defines the interface for loading promo rule tables.
type Loader interface {
	// Load reads a rule table from the given path or key.
	Load(ctx context.Context, path string) ([]Rule, error)
}
