package domain

import "time"

// Event types
const (
	EventTypeExpenseCreated    = "expense.created"
	EventTypeExpenseDeleted    = "expense.deleted"
	EventTypeSettlementCreated = "settlement.created"
	EventTypeUserRegistered    = "user.registered"
)

// Aggregate types
const (
	AggregateTypeExpense     = "expense"
	AggregateTypeTransaction = "transaction"
	AggregateTypeUser        = "user"
)

// OutboxEvent is a ledger change waiting to be published.
type OutboxEvent struct {
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Payload       map[string]any
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Published     bool
}

// ExpenseCreatedEvent payload
type ExpenseCreatedEvent struct {
	ExpenseID string            `json:"expense_id"`
	PayerID   string            `json:"payer_id"`
	Amount    string            `json:"amount"`
	SplitType string            `json:"split_type"`
	Shares    map[string]string `json:"shares"`
}

// ExpenseDeletedEvent payload
type ExpenseDeletedEvent struct {
	ExpenseID string `json:"expense_id"`
	PayerID   string `json:"payer_id"`
	Amount    string `json:"amount"`
}

// SettlementCreatedEvent payload
type SettlementCreatedEvent struct {
	TransactionID string `json:"transaction_id"`
	PayerID       string `json:"payer_id"`
	RecipientID   string `json:"recipient_id"`
	Amount        string `json:"amount"`
}

// ToMap converts the payload into the outbox map form.
func (e ExpenseCreatedEvent) ToMap() map[string]any {
	shares := make(map[string]any, len(e.Shares))
	for k, v := range e.Shares {
		shares[k] = v
	}
	return map[string]any{
		"expense_id": e.ExpenseID,
		"payer_id":   e.PayerID,
		"amount":     e.Amount,
		"split_type": e.SplitType,
		"shares":     shares,
	}
}

// ToMap converts the payload into the outbox map form.
func (e ExpenseDeletedEvent) ToMap() map[string]any {
	return map[string]any{
		"expense_id": e.ExpenseID,
		"payer_id":   e.PayerID,
		"amount":     e.Amount,
	}
}

// ToMap converts the payload into the outbox map form.
func (e SettlementCreatedEvent) ToMap() map[string]any {
	return map[string]any{
		"transaction_id": e.TransactionID,
		"payer_id":       e.PayerID,
		"recipient_id":   e.RecipientID,
		"amount":         e.Amount,
	}
}
