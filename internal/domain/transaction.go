package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind tells how a log entry moved balances.
type TransactionKind string

const (
	// KindSplit: the recipient owes the payer a share of an expense.
	KindSplit TransactionKind = "split"
	// KindSettlement: a direct payment between two users.
	KindSettlement TransactionKind = "settlement"
	// KindReversal: a split entry undone by deleting its expense.
	KindReversal TransactionKind = "reversal"
)

// Transaction is one append-only debt movement between two users.
type Transaction struct {
	CreatedAt   time.Time
	ExpenseID   *string
	ID          string
	PayerID     string
	RecipientID string
	Description string
	Kind        TransactionKind
	Amount      decimal.Decimal
}

// Validate checks a transaction before it is appended to the log.
func (t *Transaction) Validate() error {
	if t.PayerID == t.RecipientID {
		if t.Kind == KindSettlement {
			return ErrSelfSettlement
		}
		return fmt.Errorf("%w: payer and recipient are the same user", ErrInvalidSplit)
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	switch t.Kind {
	case KindSplit, KindReversal:
		if t.ExpenseID == nil {
			return fmt.Errorf("%w: %s transaction without expense", ErrInvalidSplit, t.Kind)
		}
	case KindSettlement:
		if t.ExpenseID != nil {
			return fmt.Errorf("%w: settlement cannot reference an expense", ErrInvalidAmount)
		}
	default:
		return fmt.Errorf("unknown transaction kind %q", t.Kind)
	}
	return nil
}

// Deltas returns the balance change this entry causes for each side.
func (t *Transaction) Deltas() (payer, recipient decimal.Decimal) {
	switch t.Kind {
	case KindSplit:
		return t.Amount, t.Amount.Neg()
	default:
		// Settlements and reversals both move value from payer to recipient.
		return t.Amount.Neg(), t.Amount
	}
}
