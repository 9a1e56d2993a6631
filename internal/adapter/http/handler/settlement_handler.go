package handler

import (
	"context"
	"net/http"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	CreateSettlement(ctx context.Context, input usecase.CreateSettlementInput) (*domain.Transaction, error)
}

// SettlementHandler records direct payments between users.
type SettlementHandler struct {
	settlementUC SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC}
}

// Create records a payment from the caller to the recipient.
func (h *SettlementHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req dto.CreateSettlementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(caller)
	if err != nil {
		writeDomainError(r.Context(), w, "invalid settlement", err)
		return
	}

	tx, err := h.settlementUC.CreateSettlement(r.Context(), input)
	if err != nil {
		writeDomainError(r.Context(), w, "failed to create settlement", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}
