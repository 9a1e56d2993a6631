package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/splitledger/internal/adapter/repository/sqlite"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
	"github.com/iho/splitledger/internal/usecase/mocks"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type ledger struct {
	db          *sql.DB
	balances    *sqlite.BalanceStore
	log         *sqlite.TransactionLog
	outbox      *sqlite.OutboxRepository
	users       *usecase.UserUseCase
	expenses    *usecase.ExpenseUseCase
	settlements *usecase.SettlementUseCase
	ledger      *usecase.LedgerUseCase
	recon       *usecase.ReconciliationUseCase
}

func openLedger(t *testing.T, path string) *ledger {
	t.Helper()

	db, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ids := &mocks.SequenceIDs{}
	balances := sqlite.NewBalanceStore(db)
	log := sqlite.NewTransactionLog(db)
	expenseRepo := sqlite.NewExpenseRepository(db)
	userRepo := sqlite.NewUserRepository(db)
	outbox := sqlite.NewOutboxRepository(db)

	engine := usecase.NewLedgerEngine(usecase.LedgerEngineConfig{
		TxManager: sqlite.NewTxManager(db),
		Balances:  balances,
		Log:       log,
		Expenses:  expenseRepo,
		Outbox:    outbox,
		IDGen:     ids,
		Retrier:   sqlite.NewRetrier(3, zerolog.Nop()),
	})

	return &ledger{
		db:          db,
		balances:    balances,
		log:         log,
		outbox:      outbox,
		users:       usecase.NewUserUseCase(userRepo, ids),
		expenses:    usecase.NewExpenseUseCase(engine, expenseRepo, log, userRepo),
		settlements: usecase.NewSettlementUseCase(engine, userRepo),
		ledger:      usecase.NewLedgerUseCase(balances),
		recon:       usecase.NewReconciliationUseCase(balances, log),
	}
}

func (l *ledger) register(t *testing.T, names ...string) []string {
	t.Helper()

	ids := make([]string, 0, len(names))
	for _, name := range names {
		u, err := l.users.Register(context.Background(), usecase.RegisterInput{
			Username: name,
			Name:     name,
			Email:    name + "@example.com",
			Password: "password1",
		})
		require.NoError(t, err)

		ids = append(ids, u.ID)
	}

	return ids
}

func (l *ledger) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()

	b, err := l.balances.Get(context.Background(), userID)
	require.NoError(t, err)

	return b.Amount
}

func (l *ledger) requireConsistent(t *testing.T) {
	t.Helper()

	sum, err := l.ledger.CheckConsistency(context.Background())
	require.NoError(t, err)
	require.True(t, sum.IsZero(), "balances sum to %s", sum)

	report, err := l.recon.GenerateReconciliationReport(context.Background())
	require.NoError(t, err)
	require.True(t, report.LedgerConsistent)
	require.Empty(t, report.Discrepancies)
}

func TestEqualSplitPersistsExpenseAndBalances(t *testing.T) {
	l := openLedger(t, ":memory:")
	ids := l.register(t, "alice", "bob", "carol")
	alice, bob, carol := ids[0], ids[1], ids[2]

	expense, err := l.expenses.CreateExpense(context.Background(), usecase.CreateExpenseInput{
		PayerID:     alice,
		Description: "groceries",
		SplitType:   domain.SplitEqual,
		OwedBy:      []string{bob, carol},
		Amount:      dec("100.00"),
	})
	require.NoError(t, err)

	assert.True(t, l.balance(t, alice).Equal(dec("66.66")))
	assert.True(t, l.balance(t, bob).Equal(dec("-33.33")))
	assert.True(t, l.balance(t, carol).Equal(dec("-33.33")))

	_, err = l.expenses.GetExpense(context.Background(), bob, expense.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := l.expenses.GetExpense(context.Background(), alice, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "groceries", stored.Description)
	require.Len(t, stored.Shares, 2)
	assert.Equal(t, bob, stored.Shares[0].UserID)
	assert.True(t, stored.Shares[0].Amount.Equal(dec("33.33")))

	txs, err := l.expenses.ListExpenseTransactions(context.Background(), alice, expense.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, domain.KindSplit, tx.Kind)
		require.NotNil(t, tx.ExpenseID)
		assert.Equal(t, expense.ID, *tx.ExpenseID)
	}

	events, err := l.outbox.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeExpenseCreated, events[0].EventType)

	l.requireConsistent(t)
}

func TestPercentageSplitWithPayerShare(t *testing.T) {
	l := openLedger(t, ":memory:")
	ids := l.register(t, "alice", "bob")
	alice, bob := ids[0], ids[1]

	_, err := l.expenses.CreateExpense(context.Background(), usecase.CreateExpenseInput{
		PayerID:     alice,
		Description: "hotel",
		SplitType:   domain.SplitPercentage,
		OwedBy:      []string{alice, bob},
		SplitValues: []decimal.Decimal{dec("20"), dec("80")},
		Amount:      dec("100.00"),
	})
	require.NoError(t, err)

	assert.True(t, l.balance(t, alice).Equal(dec("80.00")))
	assert.True(t, l.balance(t, bob).Equal(dec("-80.00")))

	l.requireConsistent(t)
}

func TestSettlementRoundTripRestoresBalances(t *testing.T) {
	l := openLedger(t, ":memory:")
	ids := l.register(t, "alice", "bob")
	alice, bob := ids[0], ids[1]

	_, err := l.settlements.CreateSettlement(context.Background(), usecase.CreateSettlementInput{
		PayerID:     alice,
		RecipientID: bob,
		Amount:      dec("25.00"),
	})
	require.NoError(t, err)

	assert.True(t, l.balance(t, alice).Equal(dec("-25.00")))
	assert.True(t, l.balance(t, bob).Equal(dec("25.00")))

	_, err = l.settlements.CreateSettlement(context.Background(), usecase.CreateSettlementInput{
		PayerID:     bob,
		RecipientID: alice,
		Amount:      dec("25.00"),
	})
	require.NoError(t, err)

	assert.True(t, l.balance(t, alice).IsZero())
	assert.True(t, l.balance(t, bob).IsZero())

	outgoing, err := l.log.ListByPayer(context.Background(), alice, 10, 0)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Nil(t, outgoing[0].ExpenseID)

	l.requireConsistent(t)
}

func TestRejectedExpenseLeavesNoTrace(t *testing.T) {
	l := openLedger(t, ":memory:")
	ids := l.register(t, "alice", "bob")
	alice, bob := ids[0], ids[1]

	_, err := l.expenses.CreateExpense(context.Background(), usecase.CreateExpenseInput{
		PayerID:     alice,
		Description: "bad",
		SplitType:   domain.SplitExact,
		OwedBy:      []string{bob},
		SplitValues: []decimal.Decimal{dec("10.00")},
		Amount:      dec("20.00"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidSplit)

	_, err = l.balances.Get(context.Background(), alice)
	require.ErrorIs(t, err, domain.ErrBalanceNotFound)

	txs, err := l.log.ListAfter(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestDeleteExpenseReversesBalances(t *testing.T) {
	l := openLedger(t, ":memory:")
	ids := l.register(t, "alice", "bob", "carol")
	alice, bob, carol := ids[0], ids[1], ids[2]

	expense, err := l.expenses.CreateExpense(context.Background(), usecase.CreateExpenseInput{
		PayerID:     alice,
		Description: "tickets",
		SplitType:   domain.SplitExact,
		OwedBy:      []string{bob, carol},
		SplitValues: []decimal.Decimal{dec("12.50"), dec("7.50")},
		Amount:      dec("20.00"),
	})
	require.NoError(t, err)

	_, err = l.expenses.DeleteExpense(context.Background(), bob, expense.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	deleted, err := l.expenses.DeleteExpense(context.Background(), alice, expense.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted.DeletedAt)

	for _, id := range ids {
		assert.True(t, l.balance(t, id).IsZero(), "balance of %s", id)
	}

	_, err = l.expenses.DeleteExpense(context.Background(), alice, expense.ID)
	require.ErrorIs(t, err, domain.ErrExpenseNotFound)

	_, err = l.expenses.GetExpense(context.Background(), alice, expense.ID)
	require.ErrorIs(t, err, domain.ErrExpenseNotFound)

	txs, err := l.log.ListByExpense(context.Background(), expense.ID)
	require.NoError(t, err)
	require.Len(t, txs, 4)

	l.requireConsistent(t)
}

func TestDuplicateRegistrationIsRejected(t *testing.T) {
	l := openLedger(t, ":memory:")
	l.register(t, "alice")

	_, err := l.users.Register(context.Background(), usecase.RegisterInput{
		Username: "alice",
		Name:     "Other",
		Email:    "other@example.com",
		Password: "password1",
	})
	require.ErrorIs(t, err, domain.ErrUsernameTaken)

	repo := sqlite.NewUserRepository(l.db)
	err = repo.Create(context.Background(), &domain.User{
		ID:             "direct",
		Username:       "someone",
		Email:          "alice@example.com",
		HashedPassword: "x",
		CreatedAt:      time.Now(),
	})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestConcurrentAppliesConserveBalances(t *testing.T) {
	l := openLedger(t, filepath.Join(t.TempDir(), "ledger.db"))
	ids := l.register(t, "alice", "bob", "carol", "dave")

	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for w := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			payer := ids[w%len(ids)]
			owed := make([]string, 0, len(ids)-1)
			for _, id := range ids {
				if id != payer {
					owed = append(owed, id)
				}
			}

			_, err := l.expenses.CreateExpense(context.Background(), usecase.CreateExpenseInput{
				PayerID:     payer,
				Description: fmt.Sprintf("round %d", w),
				SplitType:   domain.SplitEqual,
				OwedBy:      owed,
				Amount:      dec("10.01"),
			})
			if err != nil {
				errs <- err
				return
			}

			_, err = l.settlements.CreateSettlement(context.Background(), usecase.CreateSettlementInput{
				PayerID:     owed[0],
				RecipientID: payer,
				Amount:      dec("1.25"),
			})
			if err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	txs, err := l.log.ListAfter(context.Background(), "", 1000)
	require.NoError(t, err)
	assert.Len(t, txs, workers*4)

	l.requireConsistent(t)
}

func TestOutboxPublishAndPurge(t *testing.T) {
	l := openLedger(t, ":memory:")
	ids := l.register(t, "alice", "bob")

	_, err := l.settlements.CreateSettlement(context.Background(), usecase.CreateSettlementInput{
		PayerID:     ids[0],
		RecipientID: ids[1],
		Amount:      dec("5.00"),
	})
	require.NoError(t, err)

	events, err := l.outbox.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeSettlementCreated, events[0].EventType)

	publishedAt := time.Now().Add(-2 * time.Hour)
	require.NoError(t, l.outbox.MarkPublished(context.Background(), events[0].ID, publishedAt))

	events, err = l.outbox.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, l.outbox.DeletePublished(context.Background(), time.Now().Add(-time.Hour)))

	var remaining int
	require.NoError(t, l.db.QueryRow(`SELECT COUNT(*) FROM outbox_events`).Scan(&remaining))
	assert.Zero(t, remaining)
}
