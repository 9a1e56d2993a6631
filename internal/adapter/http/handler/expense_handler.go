package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// ExpenseService defines the behavior needed by ExpenseHandler.
type ExpenseService interface {
	CreateExpense(ctx context.Context, input usecase.CreateExpenseInput) (*domain.Expense, error)
	GetExpense(ctx context.Context, callerID, id string) (*domain.Expense, error)
	ListExpensesByPayer(ctx context.Context, input usecase.ListExpensesInput) ([]*domain.Expense, error)
	DeleteExpense(ctx context.Context, callerID, id string) (*domain.Expense, error)
	ListExpenseTransactions(ctx context.Context, callerID, id string) ([]*domain.Transaction, error)
}

// ExpenseHandler handles expense endpoints. The caller is always the payer.
type ExpenseHandler struct {
	expenseUC ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseUC ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseUC: expenseUC}
}

// Create records an expense paid by the caller.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req dto.CreateExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(caller)
	if err != nil {
		writeDomainError(r.Context(), w, "invalid expense", err)
		return
	}

	expense, err := h.expenseUC.CreateExpense(r.Context(), input)
	if err != nil {
		writeDomainError(r.Context(), w, "failed to create expense", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(expense))
}

// List lists expenses the caller paid for.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	expenses, err := h.expenseUC.ListExpensesByPayer(r.Context(), usecase.ListExpensesInput{
		PayerID: caller,
		Limit:   parseIntQuery(r, "limit", 50),
		Offset:  parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(r.Context(), w, "failed to list expenses", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpensesFromDomain(expenses))
}

// Get returns one expense.
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	expense, err := h.expenseUC.GetExpense(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(r.Context(), w, "failed to get expense", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// Delete reverses an expense.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	expense, err := h.expenseUC.DeleteExpense(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(r.Context(), w, "failed to delete expense", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// Transactions lists the log entries an expense produced.
func (h *ExpenseHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	txs, err := h.expenseUC.ListExpenseTransactions(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(r.Context(), w, "failed to list expense transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}
