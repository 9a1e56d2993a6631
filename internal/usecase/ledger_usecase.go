package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInconsistentLedger is returned when balances do not sum to zero.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not sum to zero")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	balances BalanceStore
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(balances BalanceStore) *LedgerUseCase {
	return &LedgerUseCase{
		balances: balances,
	}
}

// CheckConsistency verifies the conservation invariant and returns the
// observed sum of all balances.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (decimal.Decimal, error) {
	total, err := uc.balances.Sum(ctx)
	if err != nil {
		return decimal.Zero, classifyStorageError(err)
	}

	if !total.IsZero() {
		return total, ErrInconsistentLedger
	}

	return total, nil
}
