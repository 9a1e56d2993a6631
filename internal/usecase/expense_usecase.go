package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/split"
)

// ExpenseUseCase handles expense business logic.
type ExpenseUseCase struct {
	engine   *LedgerEngine
	expenses ExpenseRepository
	log      TransactionLog
	users    UserRepository
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(engine *LedgerEngine, expenses ExpenseRepository, log TransactionLog, users UserRepository) *ExpenseUseCase {
	return &ExpenseUseCase{
		engine:   engine,
		expenses: expenses,
		log:      log,
		users:    users,
	}
}

// CreateExpenseInput represents input for creating an expense.
type CreateExpenseInput struct {
	PayerID     string
	Description string
	Category    string
	SplitType   domain.SplitType
	OwedBy      []string
	SplitValues []decimal.Decimal
	Amount      decimal.Decimal
}

// CreateExpense resolves shares with the requested strategy and applies
// the expense to the ledger.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error) {
	description := strings.TrimSpace(input.Description)
	if err := domain.ValidateDescription(description); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if err := domain.ValidateCategory(category); err != nil {
		return nil, err
	}

	shares, err := split.Compute(input.SplitType, split.Input{
		PayerID: input.PayerID,
		OwedBy:  input.OwedBy,
		Values:  input.SplitValues,
		Amount:  input.Amount,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.checkUsersExist(ctx, input.PayerID, input.OwedBy); err != nil {
		return nil, err
	}

	return uc.engine.ApplySplit(ctx, &domain.Expense{
		PayerID:     input.PayerID,
		Amount:      input.Amount,
		Description: description,
		Category:    category,
		SplitType:   input.SplitType,
		Shares:      shares,
	})
}

func (uc *ExpenseUseCase) checkUsersExist(ctx context.Context, payerID string, owedBy []string) error {
	ids := make([]string, 0, len(owedBy)+1)
	ids = append(ids, payerID)
	for _, id := range owedBy {
		if id != payerID {
			ids = append(ids, id)
		}
	}

	existing, err := uc.users.ExistingIDs(ctx, ids)
	if err != nil {
		return classifyStorageError(err)
	}

	known := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		known[id] = struct{}{}
	}

	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownUser, strings.Join(missing, ", "))
	}

	return nil
}

// GetExpense returns an expense the caller paid for.
func (uc *ExpenseUseCase) GetExpense(ctx context.Context, callerID, id string) (*domain.Expense, error) {
	expense, err := uc.expenses.GetByID(ctx, id)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	if expense.IsDeleted() {
		return nil, domain.ErrExpenseNotFound
	}
	if !expense.CanBeViewedBy(callerID) {
		return nil, domain.ErrForbidden
	}
	return expense, nil
}

// ListExpensesInput represents input for listing expenses.
type ListExpensesInput struct {
	PayerID string
	Limit   int
	Offset  int
}

// ListExpensesByPayer lists the expenses a user paid for.
func (uc *ExpenseUseCase) ListExpensesByPayer(ctx context.Context, input ListExpensesInput) ([]*domain.Expense, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	expenses, err := uc.expenses.ListByPayer(ctx, input.PayerID, limit, offset)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	return expenses, nil
}

// DeleteExpense reverses an expense's ledger effects.
func (uc *ExpenseUseCase) DeleteExpense(ctx context.Context, callerID, id string) (*domain.Expense, error) {
	return uc.engine.ReverseExpense(ctx, id, callerID)
}

// ListExpenseTransactions lists the log entries of an expense the caller paid for.
func (uc *ExpenseUseCase) ListExpenseTransactions(ctx context.Context, callerID, id string) ([]*domain.Transaction, error) {
	expense, err := uc.expenses.GetByID(ctx, id)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	if expense.IsDeleted() {
		return nil, domain.ErrExpenseNotFound
	}
	if !expense.CanBeViewedBy(callerID) {
		return nil, domain.ErrForbidden
	}

	txs, err := uc.log.ListByExpense(ctx, id)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	return txs, nil
}
