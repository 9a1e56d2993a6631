package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
)

// SettlementUseCase handles direct payments between users.
type SettlementUseCase struct {
	engine *LedgerEngine
	users  UserRepository
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(engine *LedgerEngine, users UserRepository) *SettlementUseCase {
	return &SettlementUseCase{engine: engine, users: users}
}

// CreateSettlementInput represents input for a settlement.
type CreateSettlementInput struct {
	PayerID     string
	RecipientID string
	Description string
	Amount      decimal.Decimal
}

// CreateSettlement records a settlement from the payer to the recipient.
func (uc *SettlementUseCase) CreateSettlement(ctx context.Context, input CreateSettlementInput) (*domain.Transaction, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if input.PayerID == input.RecipientID {
		return nil, domain.ErrSelfSettlement
	}

	description := strings.TrimSpace(input.Description)
	if err := domain.ValidateDescription(description); err != nil {
		return nil, err
	}

	if _, err := uc.users.GetByID(ctx, input.RecipientID); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: recipient %s", domain.ErrUnknownUser, input.RecipientID)
		}
		return nil, classifyStorageError(err)
	}

	return uc.engine.ApplySettlement(ctx, SettlementInput{
		PayerID:     input.PayerID,
		RecipientID: input.RecipientID,
		Description: description,
		Amount:      input.Amount,
	})
}
