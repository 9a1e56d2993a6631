package domain

import "errors"

var (
	// Split errors
	ErrInvalidSplit = errors.New("invalid split")
	ErrUnknownUser  = errors.New("unknown user in split")

	// Money errors
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidPrecision = errors.New("amount has more than two decimal places")

	// Settlement errors
	ErrSelfSettlement = errors.New("cannot settle with yourself")

	// Lookup errors
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrBalanceNotFound     = errors.New("balance not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Access errors
	ErrForbidden = errors.New("forbidden")

	// Storage errors
	ErrConflictRetryable  = errors.New("conflicting concurrent update, retry the operation")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// IsCallerError reports whether err is a precondition failure that retrying
// the same request cannot fix.
func IsCallerError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidSplit),
		errors.Is(err, ErrUnknownUser),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidPrecision),
		errors.Is(err, ErrAmountTooSmall),
		errors.Is(err, ErrAmountTooLarge),
		errors.Is(err, ErrSelfSettlement),
		errors.Is(err, ErrInvalidDescription),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrExpenseNotFound),
		errors.Is(err, ErrBalanceNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrForbidden):
		return true
	}
	return false
}
