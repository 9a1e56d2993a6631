package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/splitledger/internal/domain"
)

func newFastRetrier(maxRetries int, logger zerolog.Logger) *Retrier {
	r := NewRetrier(maxRetries, logger)
	r.initialInterval = time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = time.Second

	return r
}

// failing returns an operation that fails with errs in order, then succeeds.
func failing(attempts *int, errs ...error) func() error {
	return func() error {
		*attempts++
		if *attempts <= len(errs) {
			return errs[*attempts-1]
		}
		return nil
	}
}

func TestRetrier(t *testing.T) {
	deadlock := &pgconn.PgError{Code: pgErrDeadlock}
	serialization := &pgconn.PgError{Code: pgErrSerializationFailure}
	lockTimeout := &pgconn.PgError{Code: pgErrLockNotAvailable}
	permanent := errors.New("permanent")

	tests := []struct {
		name         string
		maxRetries   int
		errs         []error
		wantAttempts int
		wantErr      error
	}{
		{name: "succeeds first time", maxRetries: 3, wantAttempts: 1},
		{name: "recovers from deadlock", maxRetries: 2, errs: []error{deadlock}, wantAttempts: 2},
		{name: "recovers from lock timeout", maxRetries: 2, errs: []error{lockTimeout, lockTimeout}, wantAttempts: 3},
		{name: "permanent error stops immediately", maxRetries: 3, errs: []error{permanent}, wantAttempts: 1, wantErr: permanent},
		{name: "exhausted conflict", maxRetries: 2, errs: []error{serialization, serialization, serialization}, wantAttempts: 3, wantErr: domain.ErrConflictRetryable},
		{name: "zero retries runs once", maxRetries: 0, errs: []error{deadlock}, wantAttempts: 1, wantErr: domain.ErrConflictRetryable},
		{name: "wrapped conflict is recognised", maxRetries: 1, errs: []error{fmt.Errorf("apply split: %w", deadlock)}, wantAttempts: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := newFastRetrier(tt.maxRetries, zerolog.Nop()).Retry(context.Background(), failing(&attempts, tt.errs...))

			assert.Equal(t, tt.wantAttempts, attempts)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRetrierLogsEachRetry(t *testing.T) {
	var buf bytes.Buffer
	r := newFastRetrier(3, zerolog.New(&buf))

	attempts := 0
	err := r.Retry(context.Background(), failing(&attempts, &pgconn.PgError{Code: pgErrLockNotAvailable}))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"sqlstate":"55P03"`)
	assert.Contains(t, buf.String(), `"retry":1`)
}

func TestRetrierStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := newFastRetrier(5, zerolog.Nop()).Retry(ctx, failing(&attempts, &pgconn.PgError{Code: pgErrDeadlock}, &pgconn.PgError{Code: pgErrDeadlock}))

	require.Error(t, err)
	assert.LessOrEqual(t, attempts, 1)
}

func TestConflictCode(t *testing.T) {
	assert.Equal(t, pgErrDeadlock, conflictCode(&pgconn.PgError{Code: pgErrDeadlock}))
	assert.Empty(t, conflictCode(&pgconn.PgError{Code: "23505"}), "unique violation is not a conflict")
	assert.Empty(t, conflictCode(errors.New("other")))
	assert.False(t, isRetryableError(nil))
}
