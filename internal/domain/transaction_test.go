package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransaction_Validate(t *testing.T) {
	expenseID := "exp-1"

	tests := []struct {
		name        string
		tx          Transaction
		expectError error
	}{
		{
			name: "valid split entry",
			tx:   Transaction{PayerID: "a", RecipientID: "b", Kind: KindSplit, ExpenseID: &expenseID, Amount: decimal.NewFromInt(30)},
		},
		{
			name: "valid settlement",
			tx:   Transaction{PayerID: "a", RecipientID: "b", Kind: KindSettlement, Amount: decimal.NewFromInt(25)},
		},
		{
			name:        "self settlement",
			tx:          Transaction{PayerID: "a", RecipientID: "a", Kind: KindSettlement, Amount: decimal.NewFromInt(25)},
			expectError: ErrSelfSettlement,
		},
		{
			name:        "zero amount",
			tx:          Transaction{PayerID: "a", RecipientID: "b", Kind: KindSettlement, Amount: decimal.Zero},
			expectError: ErrInvalidAmount,
		},
		{
			name:        "split without expense",
			tx:          Transaction{PayerID: "a", RecipientID: "b", Kind: KindSplit, Amount: decimal.NewFromInt(1)},
			expectError: ErrInvalidSplit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestTransaction_Deltas(t *testing.T) {
	amount := decimal.NewFromInt(30)

	tests := []struct {
		kind          TransactionKind
		wantPayer     decimal.Decimal
		wantRecipient decimal.Decimal
	}{
		{KindSplit, amount, amount.Neg()},
		{KindSettlement, amount.Neg(), amount},
		{KindReversal, amount.Neg(), amount},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			tx := Transaction{Kind: tt.kind, Amount: amount}
			p, r := tx.Deltas()
			if !p.Equal(tt.wantPayer) || !r.Equal(tt.wantRecipient) {
				t.Errorf("expected (%s,%s), got (%s,%s)", tt.wantPayer, tt.wantRecipient, p, r)
			}
			if !p.Add(r).IsZero() {
				t.Errorf("deltas must cancel out, got %s", p.Add(r))
			}
		})
	}
}

func TestIsCallerError(t *testing.T) {
	if !IsCallerError(ErrInvalidSplit) {
		t.Error("ErrInvalidSplit should be a caller error")
	}
	if IsCallerError(ErrStorageUnavailable) {
		t.Error("ErrStorageUnavailable should not be a caller error")
	}
	if IsCallerError(ErrConflictRetryable) {
		t.Error("ErrConflictRetryable should not be a caller error")
	}
}
