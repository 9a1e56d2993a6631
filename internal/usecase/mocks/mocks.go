package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// ErrInjected is returned by operations set to fail with Store.FailOn.
var ErrInjected = errors.New("injected storage failure")

// Operation names accepted by Store.FailOn.
const (
	OpBegin         = "Begin"
	OpCommit        = "Commit"
	OpLock          = "LockForUpdate"
	OpApplyDelta    = "ApplyDelta"
	OpAppend        = "Append"
	OpCreateExpense = "CreateExpense"
	OpMarkDeleted   = "MarkDeleted"
	OpCreateEvent   = "CreateEvent"
)

// Store is an in-memory ledger store. It implements every repository the
// engine needs plus TxManager; writes are staged per transaction and only
// become visible on Commit. Transactions are serialized like SQLite's
// BEGIN IMMEDIATE.
type Store struct {
	txMu sync.Mutex

	mu           sync.RWMutex
	balances     map[string]*domain.Balance
	transactions []*domain.Transaction
	expenses     map[string]*domain.Expense
	users        map[string]*domain.User
	events       []*domain.OutboxEvent
	failures     map[string]error
	calls        map[string]int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		balances: make(map[string]*domain.Balance),
		expenses: make(map[string]*domain.Expense),
		users:    make(map[string]*domain.User),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// FailOn makes every call of op return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Calls returns how many times op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

func (s *Store) hit(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	return s.failures[op]
}

// AddUsers registers users by id.
func (s *Store) AddUsers(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.users[id] = &domain.User{ID: id, Username: id, CreatedAt: time.Now().UTC()}
	}
}

// Events returns committed outbox events.
func (s *Store) Events() []*domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), s.events...)
}

// TxManager

// Tx stages writes until Commit.
type Tx struct {
	store    *Store
	balances map[string]*domain.Balance
	txs      []*domain.Transaction
	expenses map[string]*domain.Expense
	events   []*domain.OutboxEvent
	done     bool
}

// Begin implements usecase.TxManager.
func (s *Store) Begin(ctx context.Context) (usecase.Tx, error) {
	if err := s.hit(OpBegin); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.txMu.Lock()
	return &Tx{
		store:    s,
		balances: make(map[string]*domain.Balance),
		expenses: make(map[string]*domain.Expense),
	}, nil
}

// Commit publishes the staged writes.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("transaction already closed")
	}
	if err := t.store.hit(OpCommit); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s := t.store
	s.mu.Lock()
	for id, b := range t.balances {
		s.balances[id] = b
	}
	s.transactions = append(s.transactions, t.txs...)
	for id, e := range t.expenses {
		s.expenses[id] = e
	}
	s.events = append(s.events, t.events...)
	s.mu.Unlock()

	t.close()
	return nil
}

// Rollback discards the staged writes.
func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.close()
	return nil
}

func (t *Tx) close() {
	t.done = true
	t.store.txMu.Unlock()
}

func asTx(tx usecase.Tx) *Tx {
	return tx.(*Tx)
}

// BalanceStore

// Get implements usecase.BalanceStore.
func (s *Store) Get(_ context.Context, userID string) (*domain.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.balances[userID]
	if !ok {
		return nil, domain.ErrBalanceNotFound
	}
	cp := *b
	return &cp, nil
}

// LockForUpdate implements usecase.BalanceStore.
func (s *Store) LockForUpdate(_ context.Context, tx usecase.Tx, userIDs []string) (map[string]*domain.Balance, error) {
	if err := s.hit(OpLock); err != nil {
		return nil, err
	}
	t := asTx(tx)

	ids := append([]string(nil), userIDs...)
	sort.Strings(ids)

	out := make(map[string]*domain.Balance, len(ids))
	s.mu.RLock()
	for _, id := range ids {
		if b, ok := t.balances[id]; ok {
			out[id] = b
			continue
		}
		b := &domain.Balance{UserID: id, Amount: decimal.Zero}
		if committed, ok := s.balances[id]; ok {
			cp := *committed
			b = &cp
		}
		t.balances[id] = b
		out[id] = b
	}
	s.mu.RUnlock()

	return out, nil
}

// ApplyDelta implements usecase.BalanceStore.
func (s *Store) ApplyDelta(_ context.Context, tx usecase.Tx, userID string, delta decimal.Decimal, at time.Time) (*domain.Balance, error) {
	if err := s.hit(OpApplyDelta); err != nil {
		return nil, err
	}
	b, ok := asTx(tx).balances[userID]
	if !ok {
		return nil, fmt.Errorf("balance %s not locked", userID)
	}
	b.Amount = b.Apply(delta)
	b.Version++
	b.UpdatedAt = at
	cp := *b
	return &cp, nil
}

// List implements usecase.BalanceStore.
func (s *Store) List(_ context.Context, limit, offset int) ([]*domain.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.balances))
	for id := range s.balances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*domain.Balance, 0)
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		cp := *s.balances[ids[i]]
		out = append(out, &cp)
	}
	return out, nil
}

// Sum implements usecase.BalanceStore.
func (s *Store) Sum(context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, b := range s.balances {
		total = total.Add(b.Amount)
	}
	return total, nil
}

// SetBalance overwrites a committed balance, for corrupting state in tests.
func (s *Store) SetBalance(userID string, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = &domain.Balance{UserID: userID, Amount: amount}
}

// TransactionLog

// Append implements usecase.TransactionLog.
func (s *Store) Append(_ context.Context, tx usecase.Tx, t *domain.Transaction) error {
	if err := s.hit(OpAppend); err != nil {
		return err
	}
	cp := *t
	asTx(tx).txs = append(asTx(tx).txs, &cp)
	return nil
}

func (s *Store) filterTransactions(keep func(*domain.Transaction) bool, limit, offset int) []*domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Transaction, 0)
	skipped := 0
	for _, t := range s.transactions {
		if !keep(t) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		cp := *t
		out = append(out, &cp)
	}
	return out
}

// ListByRecipient implements usecase.TransactionLog.
func (s *Store) ListByRecipient(_ context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	return s.filterTransactions(func(t *domain.Transaction) bool { return t.RecipientID == userID }, limit, offset), nil
}

// ListByPayer implements usecase.TransactionLog.
func (s *Store) ListByPayer(_ context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	return s.filterTransactions(func(t *domain.Transaction) bool { return t.PayerID == userID }, limit, offset), nil
}

// ListByExpense implements usecase.TransactionLog.
func (s *Store) ListByExpense(_ context.Context, expenseID string) ([]*domain.Transaction, error) {
	return s.filterTransactions(func(t *domain.Transaction) bool {
		return t.ExpenseID != nil && *t.ExpenseID == expenseID
	}, 0, 0), nil
}

// ListAfter implements usecase.TransactionLog.
func (s *Store) ListAfter(_ context.Context, afterID string, limit int) ([]*domain.Transaction, error) {
	all := s.filterTransactions(func(t *domain.Transaction) bool { return t.ID > afterID }, 0, 0)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// AllTransactions returns the committed log.
func (s *Store) AllTransactions() []*domain.Transaction {
	return s.filterTransactions(func(*domain.Transaction) bool { return true }, 0, 0)
}

// Expenses

// ExpenseRepository adapts Store to usecase.ExpenseRepository, whose
// method names overlap with the other repositories.
type ExpenseRepository struct{ *Store }

// Expenses returns the expense repository view of s.
func (s *Store) Expenses() ExpenseRepository { return ExpenseRepository{s} }

// Create implements usecase.ExpenseRepository.
func (r ExpenseRepository) Create(_ context.Context, tx usecase.Tx, e *domain.Expense) error {
	if err := r.hit(OpCreateExpense); err != nil {
		return err
	}
	cp := *e
	cp.Shares = append([]domain.Share(nil), e.Shares...)
	asTx(tx).expenses[e.ID] = &cp
	return nil
}

// GetByID implements usecase.ExpenseRepository.
func (r ExpenseRepository) GetByID(_ context.Context, id string) (*domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.expenses[id]
	if !ok {
		return nil, domain.ErrExpenseNotFound
	}
	cp := *e
	return &cp, nil
}

// GetByIDForUpdate implements usecase.ExpenseRepository.
func (r ExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.Expense, error) {
	if e, ok := asTx(tx).expenses[id]; ok {
		cp := *e
		return &cp, nil
	}
	return r.GetByID(ctx, id)
}

// ListByPayer implements usecase.ExpenseRepository.
func (r ExpenseRepository) ListByPayer(_ context.Context, payerID string, limit, offset int) ([]*domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.Expense, 0)
	for _, e := range r.expenses {
		if e.PayerID == payerID && !e.IsDeleted() {
			cp := *e
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	if offset >= len(matched) {
		return []*domain.Expense{}, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// MarkDeleted implements usecase.ExpenseRepository.
func (r ExpenseRepository) MarkDeleted(ctx context.Context, tx usecase.Tx, id string, deletedAt time.Time) error {
	if err := r.hit(OpMarkDeleted); err != nil {
		return err
	}
	e, err := r.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	e.DeletedAt = &deletedAt
	asTx(tx).expenses[id] = e
	return nil
}

// Users

// UserRepository adapts Store to usecase.UserRepository.
type UserRepository struct{ *Store }

// Users returns the user repository view of s.
func (s *Store) Users() UserRepository { return UserRepository{s} }

// Create implements usecase.UserRepository.
func (r UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

// GetByID implements usecase.UserRepository.
func (r UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r UserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetByUsername implements usecase.UserRepository.
func (r UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

// GetByEmail implements usecase.UserRepository.
func (r UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email != "" && u.Email == email })
}

// ExistingIDs implements usecase.UserRepository.
func (r UserRepository) ExistingIDs(_ context.Context, ids []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := r.users[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// Outbox

// OutboxRepository adapts Store to usecase.OutboxRepository.
type OutboxRepository struct{ *Store }

// Outbox returns the outbox repository view of s.
func (s *Store) Outbox() OutboxRepository { return OutboxRepository{s} }

// Create implements usecase.OutboxRepository.
func (r OutboxRepository) Create(_ context.Context, tx usecase.Tx, event *domain.OutboxEvent) error {
	if err := r.hit(OpCreateEvent); err != nil {
		return err
	}
	asTx(tx).events = append(asTx(tx).events, event)
	return nil
}

// GetUnpublished implements usecase.OutboxRepository.
func (r OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.OutboxEvent, 0)
	for _, e := range r.events {
		if !e.Published && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

// MarkPublished implements usecase.OutboxRepository.
func (r OutboxRepository) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

// DeletePublished implements usecase.OutboxRepository.
func (r OutboxRepository) DeletePublished(_ context.Context, before time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	for _, e := range r.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return nil
}

// SequenceIDs returns increasing, sortable ids.
type SequenceIDs struct {
	mu sync.Mutex
	n  int
}

// Generate implements usecase.IDGenerator.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%06d", g.n)
}
