package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/postgres/generated"
	"github.com/iho/splitledger/internal/usecase"
)

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	queries *generated.Queries
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db generated.DBTX) *ExpenseRepository {
	return &ExpenseRepository{queries: generated.New(db)}
}

// Create stores the expense and its shares in participant order.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Tx, expense *domain.Expense) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	if err := queries.CreateExpense(ctx, generated.CreateExpenseParams{
		ID:          expense.ID,
		PayerID:     expense.PayerID,
		Description: expense.Description,
		Category:    expense.Category,
		SplitType:   string(expense.SplitType),
		Amount:      decimalToNumeric(expense.Amount),
		CreatedAt:   timeToPgTimestamptz(expense.CreatedAt),
	}); err != nil {
		return err
	}

	for i, share := range expense.Shares {
		if err := queries.CreateExpenseShare(ctx, generated.CreateExpenseShareParams{
			ExpenseID: expense.ID,
			UserID:    share.UserID,
			Position:  int32(i),
			Amount:    decimalToNumeric(share.Amount),
		}); err != nil {
			return err
		}
	}

	return nil
}

// GetByID loads an expense, deleted or not.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	return loadExpense(ctx, r.queries, id, r.queries.GetExpenseByID)
}

// GetByIDForUpdate loads and locks an expense within tx.
func (r *ExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.Expense, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	return loadExpense(ctx, queries, id, queries.GetExpenseByIDForUpdate)
}

// ListByPayer lists live expenses paid by payerID.
func (r *ExpenseRepository) ListByPayer(ctx context.Context, payerID string, limit, offset int) ([]*domain.Expense, error) {
	rows, err := r.queries.ListExpensesByPayer(ctx, generated.ListExpensesByPayerParams{
		PayerID: payerID,
		Limit:   clampInt32(limit),
		Offset:  clampInt32(offset),
	})
	if err != nil {
		return nil, err
	}

	expenses := make([]*domain.Expense, 0, len(rows))
	for _, row := range rows {
		shares, err := r.queries.ListExpenseShares(ctx, row.ID)
		if err != nil {
			return nil, err
		}

		expenses = append(expenses, rowToExpense(row, shares))
	}

	return expenses, nil
}

// MarkDeleted soft-deletes a live expense.
func (r *ExpenseRepository) MarkDeleted(ctx context.Context, tx usecase.Tx, id string, deletedAt time.Time) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	affected, err := queries.MarkExpenseDeleted(ctx, generated.MarkExpenseDeletedParams{
		ID:        id,
		DeletedAt: timeToPgTimestamptz(deletedAt),
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

func loadExpense(
	ctx context.Context,
	queries *generated.Queries,
	id string,
	get func(context.Context, string) (generated.Expense, error),
) (*domain.Expense, error) {
	row, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}

		return nil, err
	}

	shares, err := queries.ListExpenseShares(ctx, id)
	if err != nil {
		return nil, err
	}

	return rowToExpense(row, shares), nil
}

func rowToExpense(row generated.Expense, shares []generated.ExpenseShare) *domain.Expense {
	expense := &domain.Expense{
		ID:          row.ID,
		PayerID:     row.PayerID,
		Description: row.Description,
		Category:    row.Category,
		SplitType:   domain.SplitType(row.SplitType),
		Amount:      numericToDecimal(row.Amount),
		CreatedAt:   row.CreatedAt.Time,
		DeletedAt:   timestamptzToPtr(row.DeletedAt),
		Shares:      make([]domain.Share, 0, len(shares)),
	}

	for _, s := range shares {
		expense.Shares = append(expense.Shares, domain.Share{
			UserID: s.UserID,
			Amount: numericToDecimal(s.Amount),
		})
	}

	return expense
}
