package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
	"github.com/iho/splitledger/internal/usecase/mocks"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store  *mocks.Store
	engine *usecase.LedgerEngine
	ids    *mocks.SequenceIDs
}

func newFixture(t *testing.T, users ...string) *fixture {
	t.Helper()

	store := mocks.NewStore()
	store.AddUsers(users...)
	ids := &mocks.SequenceIDs{}

	engine := usecase.NewLedgerEngine(usecase.LedgerEngineConfig{
		TxManager: store,
		Balances:  store,
		Log:       store,
		Expenses:  store.Expenses(),
		Outbox:    store.Outbox(),
		IDGen:     ids,
	})

	return &fixture{store: store, engine: engine, ids: ids}
}

func (f *fixture) expenses() *usecase.ExpenseUseCase {
	return usecase.NewExpenseUseCase(f.engine, f.store.Expenses(), f.store, f.store.Users())
}

func (f *fixture) settlements() *usecase.SettlementUseCase {
	return usecase.NewSettlementUseCase(f.engine, f.store.Users())
}

// balance returns the committed balance, zero when the user never transacted.
func (f *fixture) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	b, err := f.store.Get(context.Background(), userID)
	if err != nil {
		require.ErrorIs(t, err, domain.ErrBalanceNotFound)
		return decimal.Zero
	}
	return b.Amount
}

func (f *fixture) requireBalance(t *testing.T, userID, want string) {
	t.Helper()
	got := f.balance(t, userID)
	require.Truef(t, got.Equal(dec(want)), "balance of %s: want %s, got %s", userID, want, got)
}

func (f *fixture) requireConserved(t *testing.T) {
	t.Helper()
	sum, err := f.store.Sum(context.Background())
	require.NoError(t, err)
	require.Truef(t, sum.IsZero(), "balances sum to %s", sum)
}
