package split

import (
	"fmt"

	"github.com/iho/splitledger/internal/domain"
)

// Exact uses caller supplied amounts that must add up to the expense amount.
type Exact struct{}

// Type implements Strategy.
func (Exact) Type() domain.SplitType { return domain.SplitExact }

// Compute implements Strategy.
func (Exact) Compute(in Input) ([]domain.Share, error) {
	if err := validateCommon(in); err != nil {
		return nil, err
	}
	if err := validateValues(in); err != nil {
		return nil, err
	}

	shares := make([]domain.Share, 0, len(in.OwedBy))
	for i, id := range in.OwedBy {
		if err := domain.CheckPrecision(in.Values[i]); err != nil {
			return nil, fmt.Errorf("%w: amount for %s: %v", domain.ErrInvalidSplit, id, err)
		}
		shares = append(shares, domain.Share{UserID: id, Amount: in.Values[i]})
	}

	if total := domain.SumMoney(in.Values...); !total.Equal(in.Amount) {
		return nil, fmt.Errorf("%w: amounts sum to %s, expected %s", domain.ErrInvalidSplit, total, in.Amount)
	}

	return shares, nil
}
