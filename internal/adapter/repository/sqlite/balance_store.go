package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

const balanceColumns = `user_id, amount, version, updated_at`

// BalanceStore implements usecase.BalanceStore. Amounts are stored as
// decimal strings.
type BalanceStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewBalanceStore creates a new BalanceStore.
func NewBalanceStore(db *sql.DB) *BalanceStore {
	return &BalanceStore{db: db, now: time.Now}
}

// Get returns the committed balance of userID.
func (s *BalanceStore) Get(ctx context.Context, userID string) (*domain.Balance, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+balanceColumns+` FROM balances WHERE user_id = ?`, userID)

	b, err := scanBalance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBalanceNotFound
	}

	return b, err
}

// LockForUpdate creates missing rows at zero. The IMMEDIATE transaction
// already holds the database write lock, so rows need no further locking.
func (s *BalanceStore) LockForUpdate(ctx context.Context, tx usecase.Tx, userIDs []string) (map[string]*domain.Balance, error) {
	q, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	now := formatTime(s.now())
	for _, id := range ids {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO balances (user_id, amount, version, updated_at) VALUES (?, '0', 0, ?)
			 ON CONFLICT (user_id) DO NOTHING`, id, now); err != nil {
			return nil, err
		}
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+balanceColumns+` FROM balances WHERE user_id IN (`+placeholders(len(ids))+`) ORDER BY user_id`,
		stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locked := make(map[string]*domain.Balance, len(ids))
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}

		locked[b.UserID] = b
	}

	return locked, rows.Err()
}

// ApplyDelta adds delta to the balance of userID.
func (s *BalanceStore) ApplyDelta(ctx context.Context, tx usecase.Tx, userID string, delta decimal.Decimal, at time.Time) (*domain.Balance, error) {
	q, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	current, err := scanBalance(q.QueryRowContext(ctx, `SELECT `+balanceColumns+` FROM balances WHERE user_id = ?`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}

		return nil, err
	}

	current.Amount = current.Apply(delta)
	current.Version++
	current.UpdatedAt = at

	if _, err := q.ExecContext(ctx,
		`UPDATE balances SET amount = ?, version = ?, updated_at = ? WHERE user_id = ?`,
		domain.FormatMoney(current.Amount), current.Version, formatTime(at), userID); err != nil {
		return nil, err
	}

	return current, nil
}

// List returns balances ordered by user id.
func (s *BalanceStore) List(ctx context.Context, limit, offset int) ([]*domain.Balance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+balanceColumns+` FROM balances ORDER BY user_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []*domain.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}

		balances = append(balances, b)
	}

	return balances, rows.Err()
}

// Sum adds every balance exactly; SQLite's SUM would go through floats.
func (s *BalanceStore) Sum(ctx context.Context) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT amount FROM balances`)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}

		total = total.Add(amount)
	}

	return total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBalance(row scanner) (*domain.Balance, error) {
	var (
		b         domain.Balance
		updatedAt string
	)

	if err := row.Scan(&b.UserID, &b.Amount, &b.Version, &updatedAt); err != nil {
		return nil, err
	}

	t, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("balance %s: %w", b.UserID, err)
	}

	b.UpdatedAt = t

	return &b, nil
}
