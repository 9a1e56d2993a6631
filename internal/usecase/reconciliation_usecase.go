package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const reconciliationPageSize = 1000

// ReconciliationUseCase replays the transaction log and compares the
// result with the stored balances.
type ReconciliationUseCase struct {
	balances BalanceStore
	log      TransactionLog
	now      func() time.Time
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(balances BalanceStore, log TransactionLog) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		balances: balances,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ReconciliationResult is one user's recorded versus replayed balance.
type ReconciliationResult struct {
	UserID            string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	CheckedAt        time.Time
	Discrepancies    []*ReconciliationResult
	TotalUsers       int
	ReconciledUsers  int
	TransactionsRead int
	TotalBalance     decimal.Decimal
	LedgerConsistent bool
}

// GenerateReconciliationReport rebuilds every balance from the log.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	calculated, read, err := uc.replay(ctx)
	if err != nil {
		return nil, err
	}

	recorded, err := uc.recordedBalances(ctx)
	if err != nil {
		return nil, err
	}

	users := make(map[string]struct{}, len(recorded)+len(calculated))
	for id := range recorded {
		users[id] = struct{}{}
	}
	for id := range calculated {
		users[id] = struct{}{}
	}
	ids := make([]string, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	report := &ReconciliationReport{
		CheckedAt:        uc.now(),
		Discrepancies:    make([]*ReconciliationResult, 0),
		TotalUsers:       len(ids),
		TransactionsRead: read,
		TotalBalance:     decimal.Zero,
	}

	for _, id := range ids {
		result := &ReconciliationResult{
			UserID:            id,
			RecordedBalance:   recorded[id],
			CalculatedBalance: calculated[id],
		}
		result.Difference = result.RecordedBalance.Sub(result.CalculatedBalance)
		result.IsReconciled = result.Difference.IsZero()

		report.TotalBalance = report.TotalBalance.Add(result.RecordedBalance)
		if result.IsReconciled {
			report.ReconciledUsers++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	report.LedgerConsistent = report.TotalBalance.IsZero() && len(report.Discrepancies) == 0
	return report, nil
}

func (uc *ReconciliationUseCase) replay(ctx context.Context) (map[string]decimal.Decimal, int, error) {
	balances := make(map[string]decimal.Decimal)
	read := 0
	after := ""

	for {
		page, err := uc.log.ListAfter(ctx, after, reconciliationPageSize)
		if err != nil {
			return nil, 0, classifyStorageError(err)
		}

		for _, t := range page {
			payerDelta, recipientDelta := t.Deltas()
			balances[t.PayerID] = balances[t.PayerID].Add(payerDelta)
			balances[t.RecipientID] = balances[t.RecipientID].Add(recipientDelta)
		}
		read += len(page)

		if len(page) < reconciliationPageSize {
			return balances, read, nil
		}
		after = page[len(page)-1].ID
	}
}

func (uc *ReconciliationUseCase) recordedBalances(ctx context.Context) (map[string]decimal.Decimal, error) {
	recorded := make(map[string]decimal.Decimal)
	offset := 0

	for {
		page, err := uc.balances.List(ctx, reconciliationPageSize, offset)
		if err != nil {
			return nil, classifyStorageError(err)
		}

		for _, b := range page {
			recorded[b.UserID] = b.Amount
		}

		if len(page) < reconciliationPageSize {
			return recorded, nil
		}
		offset += len(page)
	}
}
