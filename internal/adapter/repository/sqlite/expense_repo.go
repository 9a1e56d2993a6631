package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

const expenseColumns = `id, payer_id, description, category, split_type, amount, created_at, deleted_at`

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create stores the expense and its shares in participant order.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Tx, expense *domain.Expense) error {
	q, err := sqlTx(tx)
	if err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.PayerID, expense.Description, expense.Category, string(expense.SplitType),
		domain.FormatMoney(expense.Amount), formatTime(expense.CreatedAt), nullTime(expense.DeletedAt)); err != nil {
		return err
	}

	for i, share := range expense.Shares {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO expense_shares (expense_id, user_id, position, amount) VALUES (?, ?, ?, ?)`,
			expense.ID, share.UserID, i, domain.FormatMoney(share.Amount)); err != nil {
			return err
		}
	}

	return nil
}

// GetByID loads an expense, deleted or not.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	return loadExpense(ctx, r.db, id)
}

// GetByIDForUpdate loads an expense within tx.
func (r *ExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.Expense, error) {
	q, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	return loadExpense(ctx, q, id)
}

// ListByPayer lists live expenses paid by payerID.
func (r *ExpenseRepository) ListByPayer(ctx context.Context, payerID string, limit, offset int) ([]*domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE payer_id = ? AND deleted_at IS NULL ORDER BY id LIMIT ? OFFSET ?`,
		payerID, limit, offset)
	if err != nil {
		return nil, err
	}

	var expenses []*domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}

		expenses = append(expenses, e)
	}

	// shares are read after the cursor is closed; the pool has one connection
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return nil, err
	}

	for _, e := range expenses {
		if e.Shares, err = loadShares(ctx, r.db, e.ID); err != nil {
			return nil, err
		}
	}

	return expenses, nil
}

// MarkDeleted soft-deletes a live expense.
func (r *ExpenseRepository) MarkDeleted(ctx context.Context, tx usecase.Tx, id string, deletedAt time.Time) error {
	q, err := sqlTx(tx)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx,
		`UPDATE expenses SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		formatTime(deletedAt), id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

func loadExpense(ctx context.Context, q queryer, id string) (*domain.Expense, error) {
	e, err := scanExpense(q.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}

		return nil, err
	}

	if e.Shares, err = loadShares(ctx, q, id); err != nil {
		return nil, err
	}

	return e, nil
}

func loadShares(ctx context.Context, q queryer, expenseID string) ([]domain.Share, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT user_id, amount FROM expense_shares WHERE expense_id = ? ORDER BY position`, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := make([]domain.Share, 0)
	for rows.Next() {
		var s domain.Share
		if err := rows.Scan(&s.UserID, &s.Amount); err != nil {
			return nil, err
		}

		shares = append(shares, s)
	}

	return shares, rows.Err()
}

func scanExpense(row scanner) (*domain.Expense, error) {
	var (
		e         domain.Expense
		splitType string
		createdAt string
		deletedAt sql.NullString
	)

	if err := row.Scan(&e.ID, &e.PayerID, &e.Description, &e.Category, &splitType, &e.Amount, &createdAt, &deletedAt); err != nil {
		return nil, err
	}

	e.SplitType = domain.SplitType(splitType)

	var err error
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	if e.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return nil, err
	}

	return &e, nil
}
