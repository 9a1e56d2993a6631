package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/domain"
)

// BalanceUseCase serves balance reads, through the cache when one is set.
type BalanceUseCase struct {
	balances BalanceStore
	cache    Cache
	ttl      time.Duration
}

// NewBalanceUseCase creates a new BalanceUseCase. cache may be nil.
func NewBalanceUseCase(balances BalanceStore, cache Cache, ttl time.Duration) *BalanceUseCase {
	if ttl <= 0 {
		ttl = DefaultBalanceCacheTTL
	}
	return &BalanceUseCase{balances: balances, cache: cache, ttl: ttl}
}

type cachedBalance struct {
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `json:"user_id"`
	Amount    string    `json:"amount"`
	Version   int64     `json:"version"`
}

// GetBalance returns a user's balance or domain.ErrBalanceNotFound.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, userID string) (*domain.Balance, error) {
	if b, ok := uc.fromCache(ctx, userID); ok {
		return b, nil
	}

	b, err := uc.balances.Get(ctx, userID)
	if err != nil {
		return nil, classifyStorageError(err)
	}

	uc.toCache(ctx, b)
	return b, nil
}

func (uc *BalanceUseCase) fromCache(ctx context.Context, userID string) (*domain.Balance, bool) {
	if uc.cache == nil {
		return nil, false
	}

	raw, err := uc.cache.Get(ctx, balanceCacheKey(userID))
	if err != nil || raw == nil {
		return nil, false
	}

	var cb cachedBalance
	if err := json.Unmarshal(raw, &cb); err != nil {
		return nil, false
	}
	amount, err := domain.ParseMoney(cb.Amount)
	if err != nil {
		return nil, false
	}

	return &domain.Balance{
		UserID:    cb.UserID,
		Amount:    amount,
		Version:   cb.Version,
		UpdatedAt: cb.UpdatedAt,
	}, true
}

// toCache fills the cache with b unless a newer version is already there,
// which is the case when a commit landed between the read and this write.
func (uc *BalanceUseCase) toCache(ctx context.Context, b *domain.Balance) {
	if uc.cache == nil {
		return
	}
	if _, err := cacheBalance(ctx, uc.cache, b, uc.ttl); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", b.UserID).Msg("failed to cache balance")
	}
}

func cacheBalance(ctx context.Context, cache Cache, b *domain.Balance, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(cachedBalance{
		UserID:    b.UserID,
		Amount:    domain.FormatMoney(b.Amount),
		Version:   b.Version,
		UpdatedAt: b.UpdatedAt,
	})
	if err != nil {
		return false, err
	}
	return cache.SetIfNewer(ctx, balanceCacheKey(b.UserID), b.Version, raw, ttl)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrExpenseNotFound) ||
		errors.Is(err, domain.ErrBalanceNotFound)
}
