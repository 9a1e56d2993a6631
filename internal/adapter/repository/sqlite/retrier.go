package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iho/splitledger/internal/domain"
)

// Retrier implements usecase.Retrier for SQLITE_BUSY and SQLITE_LOCKED.
type Retrier struct {
	logger          zerolog.Logger
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

// NewRetrier creates a new Retrier.
func NewRetrier(maxRetries int, logger zerolog.Logger) *Retrier {
	return &Retrier{
		logger:          logger,
		maxRetries:      maxRetries,
		initialInterval: 10 * time.Millisecond,
		maxInterval:     500 * time.Millisecond,
	}
}

// Retry runs operation, retrying while the database is busy.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(r.maxRetries, 0))), ctx)

	attempt := 0

	err := backoff.Retry(func() error {
		attempt++

		err := operation()
		if err == nil {
			return nil
		}

		if !isBusy(err) {
			return backoff.Permanent(err)
		}

		r.logger.Warn().Err(err).Int("attempt", attempt).Msg("sqlite busy, retrying")

		return err
	}, policy)

	if err != nil && isBusy(err) {
		return fmt.Errorf("%w: %w", domain.ErrConflictRetryable, err)
	}

	return err
}

func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}

	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}

	return false
}
