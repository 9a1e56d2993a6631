package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// SignupRequest registers a new user.
type SignupRequest struct {
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number,omitempty"`
	Password     string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *SignupRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Username:     r.Username,
		Name:         r.Name,
		Email:        r.Email,
		MobileNumber: r.MobileNumber,
		Password:     r.Password,
	}
}

// LoginRequest exchanges credentials for a bearer token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *LoginRequest) ToUseCaseInput() usecase.AuthenticateInput {
	return usecase.AuthenticateInput{
		Username: r.Username,
		Password: r.Password,
	}
}

// CreateExpenseRequest records an expense paid by the caller.
// Amounts are decimal strings, e.g. "100.00".
type CreateExpenseRequest struct {
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Amount      string   `json:"amount"`
	SplitType   string   `json:"split_type"`
	OwedBy      []string `json:"owed_by"`
	SplitValues []string `json:"split_values,omitempty"`
}

// ToUseCaseInput converts to use case input with the caller as payer.
func (r *CreateExpenseRequest) ToUseCaseInput(payerID string) (usecase.CreateExpenseInput, error) {
	amount, err := domain.ParseMoney(r.Amount)
	if err != nil {
		return usecase.CreateExpenseInput{}, err
	}

	splitType, err := domain.ParseSplitType(r.SplitType)
	if err != nil {
		return usecase.CreateExpenseInput{}, err
	}

	var values []decimal.Decimal
	if len(r.SplitValues) > 0 {
		values = make([]decimal.Decimal, len(r.SplitValues))
		for i, raw := range r.SplitValues {
			v, err := decimal.NewFromString(strings.TrimSpace(raw))
			if err != nil {
				return usecase.CreateExpenseInput{}, fmt.Errorf("%w: split value %q is not a number", domain.ErrInvalidSplit, raw)
			}
			values[i] = v
		}
	}

	return usecase.CreateExpenseInput{
		PayerID:     payerID,
		Description: r.Description,
		Category:    r.Category,
		SplitType:   splitType,
		OwedBy:      r.OwedBy,
		SplitValues: values,
		Amount:      amount,
	}, nil
}

// CreateSettlementRequest records a payment from the caller to a recipient.
type CreateSettlementRequest struct {
	RecipientID string `json:"recipient_id"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input with the caller as payer.
func (r *CreateSettlementRequest) ToUseCaseInput(payerID string) (usecase.CreateSettlementInput, error) {
	amount, err := domain.ParseMoney(r.Amount)
	if err != nil {
		return usecase.CreateSettlementInput{}, err
	}

	return usecase.CreateSettlementInput{
		PayerID:     payerID,
		RecipientID: r.RecipientID,
		Description: r.Description,
		Amount:      amount,
	}, nil
}
