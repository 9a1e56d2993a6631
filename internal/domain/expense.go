package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SplitType selects how an expense amount is divided among participants.
type SplitType string

const (
	SplitEqual      SplitType = "EQUAL"
	SplitPercentage SplitType = "PERCENTAGE"
	SplitExact      SplitType = "EXACT"
)

// ParseSplitType accepts the split type case-insensitively.
func ParseSplitType(s string) (SplitType, error) {
	switch st := SplitType(strings.ToUpper(strings.TrimSpace(s))); st {
	case SplitEqual, SplitPercentage, SplitExact:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown split type %q", ErrInvalidSplit, s)
	}
}

// Share is what one participant owes for an expense.
type Share struct {
	UserID string
	Amount decimal.Decimal
}

// Expense is an immutable record of one payment shared among users.
// Shares keeps the order the participants were given in and may contain
// the payer's own retained share.
type Expense struct {
	CreatedAt   time.Time
	DeletedAt   *time.Time
	ID          string
	PayerID     string
	Description string
	Category    string
	SplitType   SplitType
	Amount      decimal.Decimal
	Shares      []Share
}

// OwedBy returns the participant ids in order.
func (e *Expense) OwedBy() []string {
	ids := make([]string, 0, len(e.Shares))
	for _, s := range e.Shares {
		ids = append(ids, s.UserID)
	}
	return ids
}

// ShareOf returns the share held by userID.
func (e *Expense) ShareOf(userID string) (decimal.Decimal, bool) {
	for _, s := range e.Shares {
		if s.UserID == userID {
			return s.Amount, true
		}
	}
	return decimal.Zero, false
}

// CanBeViewedBy reports whether userID may read the expense.
func (e *Expense) CanBeViewedBy(userID string) bool {
	return e.PayerID == userID
}

// IsDeleted reports whether the expense was reversed.
func (e *Expense) IsDeleted() bool {
	return e.DeletedAt != nil
}

// Validate checks the resolved expense before it reaches the ledger.
func (e *Expense) Validate() error {
	if e.PayerID == "" {
		return fmt.Errorf("%w: payer is required", ErrInvalidSplit)
	}
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if len(e.Shares) == 0 {
		return fmt.Errorf("%w: expense has no participants", ErrInvalidSplit)
	}

	seen := make(map[string]struct{}, len(e.Shares))
	total := decimal.Zero
	for _, s := range e.Shares {
		if s.UserID == "" {
			return fmt.Errorf("%w: empty participant id", ErrInvalidSplit)
		}
		if _, dup := seen[s.UserID]; dup {
			return fmt.Errorf("%w: duplicate participant %s", ErrInvalidSplit, s.UserID)
		}
		seen[s.UserID] = struct{}{}
		if s.Amount.IsNegative() {
			return fmt.Errorf("%w: negative share for %s", ErrInvalidSplit, s.UserID)
		}
		if err := CheckPrecision(s.Amount); err != nil {
			return fmt.Errorf("%w: share for %s: %v", ErrInvalidSplit, s.UserID, err)
		}
		total = total.Add(s.Amount)
	}

	// EQUAL leaves the payer's portion implicit; others list it explicitly.
	if e.SplitType != SplitEqual && !total.Equal(e.Amount) {
		return fmt.Errorf("%w: shares sum to %s, expected %s", ErrInvalidSplit, total, e.Amount)
	}
	if total.GreaterThan(e.Amount) {
		return fmt.Errorf("%w: shares exceed amount", ErrInvalidSplit)
	}

	return nil
}
