package sqlite

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/splitledger/internal/domain"
)

func TestRetrierStopsOnOrdinaryErrors(t *testing.T) {
	r := NewRetrier(3, zerolog.Nop())
	boom := errors.New("boom")

	calls := 0
	err := r.Retry(context.Background(), func() error {
		calls++
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrConflictRetryable)
	assert.Equal(t, 1, calls)
	assert.False(t, isBusy(boom))
}

func TestRetrierReturnsSuccess(t *testing.T) {
	r := NewRetrier(0, zerolog.Nop())

	calls := 0
	err := r.Retry(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDSN(t *testing.T) {
	assert.True(t, strings.HasPrefix(dsn(":memory:"), "file::memory:?"))
	assert.True(t, strings.HasPrefix(dsn(""), "file::memory:?"))
	assert.True(t, strings.HasPrefix(dsn("ledger.db"), "file:ledger.db?"))
	assert.Contains(t, dsn("ledger.db"), "_txlock=immediate")
}

func TestTimeFormatSortsLexically(t *testing.T) {
	early := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	late := early.Add(time.Millisecond)

	assert.Less(t, formatTime(early), formatTime(late))

	parsed, err := parseTime(formatTime(late))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(late))
}

func TestCheckerPingsDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	checker := NewChecker(db)
	if err := checker.Check(ctx); err != nil {
		t.Fatalf("expected open database to be healthy, got %v", err)
	}

	db.Close()
	if err := checker.Check(ctx); err == nil {
		t.Fatalf("expected closed database to fail the check")
	}
}
