package postgres

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/postgres/generated"
	"github.com/iho/splitledger/internal/usecase"
)

// BalanceStore implements usecase.BalanceStore.
type BalanceStore struct {
	queries *generated.Queries
	now     func() time.Time
}

// NewBalanceStore creates a new BalanceStore.
func NewBalanceStore(db generated.DBTX) *BalanceStore {
	return &BalanceStore{
		queries: generated.New(db),
		now:     time.Now,
	}
}

// Get returns the committed balance of userID.
func (s *BalanceStore) Get(ctx context.Context, userID string) (*domain.Balance, error) {
	row, err := s.queries.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}

		return nil, err
	}

	return rowToBalance(row), nil
}

// LockForUpdate inserts missing zero rows, then takes row locks in user id
// order so concurrent applies touching the same users cannot deadlock.
func (s *BalanceStore) LockForUpdate(ctx context.Context, tx usecase.Tx, userIDs []string) (map[string]*domain.Balance, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	if err := queries.EnsureBalances(ctx, generated.EnsureBalancesParams{
		UserIds:   ids,
		UpdatedAt: timeToPgTimestamptz(s.now()),
	}); err != nil {
		return nil, err
	}

	rows, err := queries.LockBalances(ctx, ids)
	if err != nil {
		return nil, err
	}

	locked := make(map[string]*domain.Balance, len(rows))
	for _, row := range rows {
		locked[row.UserID] = rowToBalance(row)
	}

	return locked, nil
}

// ApplyDelta adds delta to the balance of userID.
func (s *BalanceStore) ApplyDelta(ctx context.Context, tx usecase.Tx, userID string, delta decimal.Decimal, at time.Time) (*domain.Balance, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.ApplyBalanceDelta(ctx, generated.ApplyBalanceDeltaParams{
		Delta:     decimalToNumeric(delta),
		UpdatedAt: timeToPgTimestamptz(at),
		UserID:    userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}

		return nil, err
	}

	return rowToBalance(row), nil
}

// List returns balances ordered by user id.
func (s *BalanceStore) List(ctx context.Context, limit, offset int) ([]*domain.Balance, error) {
	rows, err := s.queries.ListBalances(ctx, generated.ListBalancesParams{
		Limit:  clampInt32(limit),
		Offset: clampInt32(offset),
	})
	if err != nil {
		return nil, err
	}

	balances := make([]*domain.Balance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, rowToBalance(row))
	}

	return balances, nil
}

// Sum returns the total of all balances.
func (s *BalanceStore) Sum(ctx context.Context) (decimal.Decimal, error) {
	total, err := s.queries.SumBalances(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

func rowToBalance(row generated.Balance) *domain.Balance {
	return &domain.Balance{
		UserID:    row.UserID,
		Amount:    numericToDecimal(row.Amount),
		Version:   row.Version,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
