package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
)

// BalanceStore is the read/update surface over per-user balances.
type BalanceStore interface {
	// Get returns domain.ErrBalanceNotFound for users that never transacted.
	Get(ctx context.Context, userID string) (*domain.Balance, error)
	// LockForUpdate creates missing rows at zero and locks every row in
	// ascending user id order for the rest of tx.
	LockForUpdate(ctx context.Context, tx Tx, userIDs []string) (map[string]*domain.Balance, error)
	// ApplyDelta adds delta to a locked balance.
	ApplyDelta(ctx context.Context, tx Tx, userID string, delta decimal.Decimal, at time.Time) (*domain.Balance, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Balance, error)
	Sum(ctx context.Context) (decimal.Decimal, error)
}

// TransactionLog is the append-only record of debt movements.
type TransactionLog interface {
	Append(ctx context.Context, tx Tx, t *domain.Transaction) error
	ListByRecipient(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
	ListByPayer(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
	ListByExpense(ctx context.Context, expenseID string) ([]*domain.Transaction, error)
	// ListAfter pages through the whole log ordered by id.
	ListAfter(ctx context.Context, afterID string, limit int) ([]*domain.Transaction, error)
}

// ExpenseRepository defines data access for expenses and their shares.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Tx, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id string) (*domain.Expense, error)
	ListByPayer(ctx context.Context, payerID string, limit, offset int) ([]*domain.Expense, error)
	MarkDeleted(ctx context.Context, tx Tx, id string, deletedAt time.Time) error
}

// UserRepository defines data access for the user directory.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ExistingIDs returns the subset of ids that belong to registered users.
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Tx, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Tx represents a database transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles transaction lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation that failed on a transient storage conflict.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations. Entries carry the version they were
// built from so a slow writer never replaces a newer entry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// SetIfNewer stores value unless the key already holds a version >= version.
	// It reports whether the value was stored.
	SetIfNewer(ctx context.Context, key string, version int64, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// LedgerMetrics receives ledger outcomes.
type LedgerMetrics interface {
	RecordExpense(splitType string, amount float64)
	RecordSettlement(amount float64)
	RecordLedgerError(operation, errorType string)
	ObserveLedgerDuration(operation string, d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordExpense(string, float64)               {}
func (nopMetrics) RecordSettlement(float64)                    {}
func (nopMetrics) RecordLedgerError(string, string)            {}
func (nopMetrics) ObserveLedgerDuration(string, time.Duration) {}
