package sqlite

import (
	"context"
	"database/sql"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

const transactionColumns = `id, expense_id, payer_id, recipient_id, kind, description, amount, created_at`

// TransactionLog implements usecase.TransactionLog.
type TransactionLog struct {
	db *sql.DB
}

// NewTransactionLog creates a new TransactionLog.
func NewTransactionLog(db *sql.DB) *TransactionLog {
	return &TransactionLog{db: db}
}

// Append inserts t within tx.
func (l *TransactionLog) Append(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error {
	q, err := sqlTx(tx)
	if err != nil {
		return err
	}

	var expenseID sql.NullString
	if t.ExpenseID != nil {
		expenseID = sql.NullString{String: *t.ExpenseID, Valid: true}
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, expenseID, t.PayerID, t.RecipientID, string(t.Kind), t.Description,
		domain.FormatMoney(t.Amount), formatTime(t.CreatedAt))

	return err
}

// ListByRecipient lists transactions in which userID is the recipient.
func (l *TransactionLog) ListByRecipient(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	return l.query(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE recipient_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

// ListByPayer lists transactions in which userID is the payer.
func (l *TransactionLog) ListByPayer(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	return l.query(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE payer_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

// ListByExpense lists the split and reversal entries of an expense.
func (l *TransactionLog) ListByExpense(ctx context.Context, expenseID string) ([]*domain.Transaction, error) {
	return l.query(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE expense_id = ? ORDER BY id`,
		expenseID)
}

// ListAfter pages through the whole log in id order.
func (l *TransactionLog) ListAfter(ctx context.Context, afterID string, limit int) ([]*domain.Transaction, error) {
	return l.query(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id > ? ORDER BY id LIMIT ?`,
		afterID, limit)
}

func (l *TransactionLog) query(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		var (
			t         domain.Transaction
			expenseID sql.NullString
			kind      string
			createdAt string
		)

		if err := rows.Scan(&t.ID, &expenseID, &t.PayerID, &t.RecipientID, &kind, &t.Description, &t.Amount, &createdAt); err != nil {
			return nil, err
		}

		if expenseID.Valid {
			t.ExpenseID = &expenseID.String
		}

		t.Kind = domain.TransactionKind(kind)

		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}

		txs = append(txs, &t)
	}

	return txs, rows.Err()
}
