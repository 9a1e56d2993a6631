package split

import (
	"fmt"

	"github.com/iho/splitledger/internal/domain"
)

// Equal divides the amount among the participants plus the payer.
// Every participant owes the same whole-cent share; the cents left over
// by the division stay with the payer's own implicit share.
type Equal struct{}

// Type implements Strategy.
func (Equal) Type() domain.SplitType { return domain.SplitEqual }

// Compute implements Strategy.
func (Equal) Compute(in Input) ([]domain.Share, error) {
	if err := validateCommon(in); err != nil {
		return nil, err
	}
	if len(in.Values) != 0 {
		return nil, fmt.Errorf("%w: EQUAL split takes no values", domain.ErrInvalidSplit)
	}
	for _, id := range in.OwedBy {
		if id == in.PayerID {
			return nil, fmt.Errorf("%w: payer's share is implicit in an EQUAL split", domain.ErrInvalidSplit)
		}
	}

	parts := int64(len(in.OwedBy) + 1)
	share := domain.FromCents(domain.ToCents(in.Amount) / parts)

	shares := make([]domain.Share, 0, len(in.OwedBy))
	for _, id := range in.OwedBy {
		shares = append(shares, domain.Share{UserID: id, Amount: share})
	}

	if err := checkShares(in.PayerID, shares); err != nil {
		return nil, err
	}
	return shares, nil
}
