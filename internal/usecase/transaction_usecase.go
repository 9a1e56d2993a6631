package usecase

import (
	"context"

	"github.com/iho/splitledger/internal/domain"
)

// TransactionUseCase serves a user's transaction history.
type TransactionUseCase struct {
	log TransactionLog
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(log TransactionLog) *TransactionUseCase {
	return &TransactionUseCase{log: log}
}

// ListTransactionsInput represents input for listing transactions.
type ListTransactionsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListIncoming lists transactions where the user is the recipient.
func (uc *TransactionUseCase) ListIncoming(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	txs, err := uc.log.ListByRecipient(ctx, input.UserID, limit, offset)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	return txs, nil
}

// ListOutgoing lists transactions where the user is the payer.
func (uc *TransactionUseCase) ListOutgoing(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	txs, err := uc.log.ListByPayer(ctx, input.UserID, limit, offset)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	return txs, nil
}
