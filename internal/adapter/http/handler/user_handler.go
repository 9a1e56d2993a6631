package handler

import (
	"context"
	"net/http"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// BalanceService defines the balance lookup needed by UserHandler.
type BalanceService interface {
	GetBalance(ctx context.Context, userID string) (*domain.Balance, error)
}

// TransactionService defines the history lookups needed by UserHandler.
type TransactionService interface {
	ListIncoming(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
	ListOutgoing(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

// UserHandler serves the caller's own profile, balance and history.
type UserHandler struct {
	users        UserService
	balances     BalanceService
	transactions TransactionService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService, balances BalanceService, transactions TransactionService) *UserHandler {
	return &UserHandler{
		users:        users,
		balances:     balances,
		transactions: transactions,
	}
}

// Me returns the caller's profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), caller)
	if err != nil {
		writeDomainError(r.Context(), w, "failed to get user", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// Balance returns the caller's net balance. A user who never took part in
// a transaction has no balance row and gets 404.
func (h *UserHandler) Balance(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	balance, err := h.balances.GetBalance(r.Context(), caller)
	if err != nil {
		writeDomainError(r.Context(), w, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// Incoming lists transactions where the caller is the recipient.
func (h *UserHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.transactions.ListIncoming)
}

// Outgoing lists transactions where the caller is the payer.
func (h *UserHandler) Outgoing(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.transactions.ListOutgoing)
}

func (h *UserHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(context.Context, usecase.ListTransactionsInput) ([]*domain.Transaction, error),
) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	txs, err := fetch(r.Context(), usecase.ListTransactionsInput{
		UserID: caller,
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(r.Context(), w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}
