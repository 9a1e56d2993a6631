package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/postgres/generated"
	"github.com/iho/splitledger/internal/usecase"
)

// TransactionLog implements usecase.TransactionLog. Rows are only ever
// inserted.
type TransactionLog struct {
	queries *generated.Queries
}

// NewTransactionLog creates a new TransactionLog.
func NewTransactionLog(db generated.DBTX) *TransactionLog {
	return &TransactionLog{queries: generated.New(db)}
}

// Append inserts t within tx.
func (l *TransactionLog) Append(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:          t.ID,
		ExpenseID:   ptrToText(t.ExpenseID),
		PayerID:     t.PayerID,
		RecipientID: t.RecipientID,
		Kind:        string(t.Kind),
		Description: t.Description,
		Amount:      decimalToNumeric(t.Amount),
		CreatedAt:   timeToPgTimestamptz(t.CreatedAt),
	})
}

// ListByRecipient lists transactions in which userID is the recipient.
func (l *TransactionLog) ListByRecipient(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := l.queries.ListTransactionsByRecipient(ctx, generated.ListTransactionsByRecipientParams{
		RecipientID: userID,
		Limit:       clampInt32(limit),
		Offset:      clampInt32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// ListByPayer lists transactions in which userID is the payer.
func (l *TransactionLog) ListByPayer(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := l.queries.ListTransactionsByPayer(ctx, generated.ListTransactionsByPayerParams{
		PayerID: userID,
		Limit:   clampInt32(limit),
		Offset:  clampInt32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// ListByExpense lists the split and reversal entries of an expense.
func (l *TransactionLog) ListByExpense(ctx context.Context, expenseID string) ([]*domain.Transaction, error) {
	rows, err := l.queries.ListTransactionsByExpense(ctx, pgtype.Text{String: expenseID, Valid: true})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// ListAfter pages through the whole log in id order.
func (l *TransactionLog) ListAfter(ctx context.Context, afterID string, limit int) ([]*domain.Transaction, error) {
	rows, err := l.queries.ListTransactionsAfter(ctx, generated.ListTransactionsAfterParams{
		ID:    afterID,
		Limit: clampInt32(limit),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

func rowsToTransactions(rows []generated.Transaction) []*domain.Transaction {
	txs := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, &domain.Transaction{
			ID:          row.ID,
			ExpenseID:   textToPtr(row.ExpenseID),
			PayerID:     row.PayerID,
			RecipientID: row.RecipientID,
			Kind:        domain.TransactionKind(row.Kind),
			Description: row.Description,
			Amount:      numericToDecimal(row.Amount),
			CreatedAt:   row.CreatedAt.Time,
		})
	}

	return txs
}
