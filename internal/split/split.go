// Package split turns an expense amount and its participants into the
// per-user shares the ledger records.
package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
)

// Input is everything a strategy needs to resolve shares.
// Values is aligned with OwedBy: percentages for PERCENTAGE, amounts for
// EXACT, and empty for EQUAL.
type Input struct {
	PayerID string
	OwedBy  []string
	Values  []decimal.Decimal
	Amount  decimal.Decimal
}

// Strategy computes ordered shares for one split type.
type Strategy interface {
	Type() domain.SplitType
	Compute(in Input) ([]domain.Share, error)
}

var strategies = map[domain.SplitType]Strategy{
	domain.SplitEqual:      Equal{},
	domain.SplitPercentage: Percentage{},
	domain.SplitExact:      Exact{},
}

// For returns the strategy registered for t.
func For(t domain.SplitType) (Strategy, error) {
	s, ok := strategies[t]
	if !ok {
		return nil, fmt.Errorf("%w: unknown split type %q", domain.ErrInvalidSplit, t)
	}
	return s, nil
}

// Compute resolves shares using the strategy for t.
func Compute(t domain.SplitType, in Input) ([]domain.Share, error) {
	s, err := For(t)
	if err != nil {
		return nil, err
	}
	return s.Compute(in)
}

// validateCommon checks the rules shared by every strategy.
func validateCommon(in Input) error {
	if in.PayerID == "" {
		return fmt.Errorf("%w: payer is required", domain.ErrInvalidSplit)
	}
	if err := domain.ValidateAmount(in.Amount); err != nil {
		return err
	}
	if len(in.OwedBy) == 0 {
		return fmt.Errorf("%w: at least one participant is required", domain.ErrInvalidSplit)
	}
	if len(in.OwedBy) > domain.MaxParticipants {
		return fmt.Errorf("%w: more than %d participants", domain.ErrInvalidSplit, domain.MaxParticipants)
	}

	seen := make(map[string]struct{}, len(in.OwedBy))
	others := 0
	for _, id := range in.OwedBy {
		if id == "" {
			return fmt.Errorf("%w: empty participant id", domain.ErrInvalidSplit)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate participant %s", domain.ErrInvalidSplit, id)
		}
		seen[id] = struct{}{}
		if id != in.PayerID {
			others++
		}
	}
	if others == 0 {
		return fmt.Errorf("%w: nobody besides the payer owes anything", domain.ErrInvalidSplit)
	}

	return nil
}

func validateValues(in Input) error {
	if len(in.Values) != len(in.OwedBy) {
		return fmt.Errorf("%w: got %d values for %d participants", domain.ErrInvalidSplit, len(in.Values), len(in.OwedBy))
	}
	for i, v := range in.Values {
		if !v.IsPositive() {
			return fmt.Errorf("%w: value for %s must be positive", domain.ErrInvalidSplit, in.OwedBy[i])
		}
	}
	return nil
}

// checkShares rejects splits where someone other than the payer would owe nothing.
func checkShares(payerID string, shares []domain.Share) error {
	for _, s := range shares {
		if s.UserID != payerID && s.Amount.IsZero() {
			return fmt.Errorf("%w: share for %s rounds to zero", domain.ErrInvalidSplit, s.UserID)
		}
	}
	return nil
}
