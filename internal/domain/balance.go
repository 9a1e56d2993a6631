package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is a user's net position across every expense and settlement.
// Positive means the user is owed money; negative means the user owes.
type Balance struct {
	UpdatedAt time.Time
	UserID    string
	Amount    decimal.Decimal
	Version   int64
}

// Apply returns the balance after adding delta.
func (b *Balance) Apply(delta decimal.Decimal) decimal.Decimal {
	return b.Amount.Add(delta)
}

// IsCreditor reports whether others owe this user.
func (b *Balance) IsCreditor() bool {
	return b.Amount.IsPositive()
}

// IsDebtor reports whether this user owes others.
func (b *Balance) IsDebtor() bool {
	return b.Amount.IsNegative()
}
