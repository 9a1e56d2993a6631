package dto

import (
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobile_number,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		CreatedAt:    u.CreatedAt,
	}
}

// AuthResponse carries an issued bearer token.
type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// ShareResponse is one participant's portion of an expense.
type ShareResponse struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          string          `json:"id"`
	PayerID     string          `json:"payer_id"`
	Amount      string          `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	SplitType   string          `json:"split_type"`
	Shares      []ShareResponse `json:"shares"`
	CreatedAt   time.Time       `json:"created_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// ExpenseFromDomain converts a domain expense to a response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	shares := make([]ShareResponse, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = ShareResponse{UserID: s.UserID, Amount: domain.FormatMoney(s.Amount)}
	}

	return &ExpenseResponse{
		ID:          e.ID,
		PayerID:     e.PayerID,
		Amount:      domain.FormatMoney(e.Amount),
		Description: e.Description,
		Category:    e.Category,
		SplitType:   string(e.SplitType),
		Shares:      shares,
		CreatedAt:   e.CreatedAt,
		DeletedAt:   e.DeletedAt,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.Expense) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// TransactionResponse represents a log entry in API responses.
type TransactionResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	PayerID     string    `json:"payer_id"`
	RecipientID string    `json:"recipient_id"`
	ExpenseID   *string   `json:"expense_id,omitempty"`
	Amount      string    `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		Kind:        string(t.Kind),
		PayerID:     t.PayerID,
		RecipientID: t.RecipientID,
		ExpenseID:   t.ExpenseID,
		Amount:      domain.FormatMoney(t.Amount),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// BalanceResponse represents a user's net position. Positive means others
// owe the user.
type BalanceResponse struct {
	UserID    string    `json:"user_id"`
	Amount    string    `json:"amount"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceFromDomain converts a domain balance to a response.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		UserID:    b.UserID,
		Amount:    domain.FormatMoney(b.Amount),
		Version:   b.Version,
		UpdatedAt: b.UpdatedAt,
	}
}

// ConsistencyResponse reports whether all balances sum to zero.
type ConsistencyResponse struct {
	Status     string `json:"status"`
	Consistent bool   `json:"consistent"`
	Total      string `json:"total"`
}

// DiscrepancyResponse is one user whose stored balance disagrees with the log.
type DiscrepancyResponse struct {
	UserID            string `json:"user_id"`
	RecordedBalance   string `json:"recorded_balance"`
	CalculatedBalance string `json:"calculated_balance"`
	Difference        string `json:"difference"`
}

// ReconciliationResponse represents a reconciliation report.
type ReconciliationResponse struct {
	CheckedAt        time.Time             `json:"checked_at"`
	TotalUsers       int                   `json:"total_users"`
	ReconciledUsers  int                   `json:"reconciled_users"`
	TransactionsRead int                   `json:"transactions_read"`
	TotalBalance     string                `json:"total_balance"`
	LedgerConsistent bool                  `json:"ledger_consistent"`
	Discrepancies    []DiscrepancyResponse `json:"discrepancies"`
}

// ReconciliationFromReport converts a report to a response.
func ReconciliationFromReport(r *usecase.ReconciliationReport) *ReconciliationResponse {
	discrepancies := make([]DiscrepancyResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = DiscrepancyResponse{
			UserID:            d.UserID,
			RecordedBalance:   domain.FormatMoney(d.RecordedBalance),
			CalculatedBalance: domain.FormatMoney(d.CalculatedBalance),
			Difference:        domain.FormatMoney(d.Difference),
		}
	}

	return &ReconciliationResponse{
		CheckedAt:        r.CheckedAt,
		TotalUsers:       r.TotalUsers,
		ReconciledUsers:  r.ReconciledUsers,
		TransactionsRead: r.TransactionsRead,
		TotalBalance:     domain.FormatMoney(r.TotalBalance),
		LedgerConsistent: r.LedgerConsistent,
		Discrepancies:    discrepancies,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
