package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/domain"
)

// SQLSTATE codes a ledger transaction may hit when it races another writer.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

// Retrier implements usecase.Retrier. A ledger operation that loses a lock
// race is re-run from scratch with exponential backoff.
type Retrier struct {
	logger          zerolog.Logger
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
}

func NewRetrier(maxRetries int, logger zerolog.Logger) *Retrier {
	return &Retrier{
		logger:          logger,
		maxRetries:      maxRetries,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		maxElapsedTime:  10 * time.Second,
	}
}

// Retry runs operation at most maxRetries+1 times. A conflict that survives
// every attempt is reported as domain.ErrConflictRetryable.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(r.maxRetries, 0))), ctx)

	retry := 0
	notify := func(err error, wait time.Duration) {
		retry++
		r.logger.Warn().
			Err(err).
			Str("sqlstate", conflictCode(err)).
			Int("retry", retry).
			Dur("backoff", wait).
			Msg("ledger transaction conflicted, retrying")
	}

	err := backoff.RetryNotify(func() error {
		err := operation()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, notify)

	if err != nil && isRetryableError(err) {
		return fmt.Errorf("%w: %w", domain.ErrConflictRetryable, err)
	}

	return err
}

func isRetryableError(err error) bool {
	return conflictCode(err) != ""
}

// conflictCode returns the SQLSTATE of a retryable conflict, or "".
func conflictCode(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}

	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
		return pgErr.Code
	}

	return ""
}
