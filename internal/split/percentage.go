package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Percentage splits the amount by per-participant percentages that must
// add up to exactly 100.
type Percentage struct{}

// Type implements Strategy.
func (Percentage) Type() domain.SplitType { return domain.SplitPercentage }

// Compute implements Strategy.
func (Percentage) Compute(in Input) ([]domain.Share, error) {
	if err := validateCommon(in); err != nil {
		return nil, err
	}
	if err := validateValues(in); err != nil {
		return nil, err
	}
	if total := domain.SumMoney(in.Values...); !total.Equal(hundred) {
		return nil, fmt.Errorf("%w: percentages sum to %s, expected 100", domain.ErrInvalidSplit, total)
	}

	cents := Allocate(domain.ToCents(in.Amount), in.Values)

	shares := make([]domain.Share, 0, len(in.OwedBy))
	for i, id := range in.OwedBy {
		shares = append(shares, domain.Share{UserID: id, Amount: domain.FromCents(cents[i])})
	}

	if err := checkShares(in.PayerID, shares); err != nil {
		return nil, err
	}
	return shares, nil
}
