package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a single ledger apply, retries included.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultBalanceCacheTTL is how long a balance read stays cached.
	DefaultBalanceCacheTTL = 30 * time.Second

	balanceCachePrefix = "balance:"
)

func balanceCacheKey(userID string) string {
	return balanceCachePrefix + userID
}
