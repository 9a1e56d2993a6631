package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
)

// LedgerEngineConfig wires the engine's collaborators.
type LedgerEngineConfig struct {
	TxManager TxManager
	Balances  BalanceStore
	Log       TransactionLog
	Expenses  ExpenseRepository
	IDGen     IDGenerator
	// Optional collaborators.
	Outbox   OutboxRepository
	Retrier  Retrier
	Cache    Cache
	CacheTTL time.Duration
	Metrics  LedgerMetrics
	Now      func() time.Time
}

// LedgerEngine applies expenses and settlements to balances and the
// transaction log. Every apply is one storage transaction.
type LedgerEngine struct {
	txManager TxManager
	balances  BalanceStore
	log       TransactionLog
	expenses  ExpenseRepository
	outbox    OutboxRepository
	idGen     IDGenerator
	retrier   Retrier
	cache     Cache
	cacheTTL  time.Duration
	metrics   LedgerMetrics
	now       func() time.Time
}

// NewLedgerEngine creates a new LedgerEngine.
func NewLedgerEngine(cfg LedgerEngineConfig) *LedgerEngine {
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultBalanceCacheTTL
	}

	return &LedgerEngine{
		txManager: cfg.TxManager,
		balances:  cfg.Balances,
		log:       cfg.Log,
		expenses:  cfg.Expenses,
		outbox:    cfg.Outbox,
		idGen:     cfg.IDGen,
		retrier:   cfg.Retrier,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		metrics:   cfg.Metrics,
		now:       cfg.Now,
	}
}

// SettlementInput describes a direct payment between two users.
type SettlementInput struct {
	PayerID     string
	RecipientID string
	Description string
	Amount      decimal.Decimal
}

// posting is the full effect of one ledger operation.
type posting struct {
	deltas       map[string]decimal.Decimal
	transactions []*domain.Transaction
}

func newPosting() *posting {
	return &posting{deltas: make(map[string]decimal.Decimal)}
}

func (p *posting) add(t *domain.Transaction) {
	payerDelta, recipientDelta := t.Deltas()
	p.deltas[t.PayerID] = p.deltas[t.PayerID].Add(payerDelta)
	p.deltas[t.RecipientID] = p.deltas[t.RecipientID].Add(recipientDelta)
	p.transactions = append(p.transactions, t)
}

// userIDs returns every touched user in ascending order, the global lock order.
func (p *posting) userIDs() []string {
	ids := make([]string, 0, len(p.deltas))
	for id := range p.deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ApplySplit records a resolved expense: one split transaction per share
// owed by someone other than the payer, the payer credited with their sum,
// and the expense itself, all committed together.
func (e *LedgerEngine) ApplySplit(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	start := time.Now()
	defer func() { e.metrics.ObserveLedgerDuration("apply_split", time.Since(start)) }()

	if err := expense.Validate(); err != nil {
		e.metrics.RecordLedgerError("apply_split", errorType(err))
		return nil, err
	}

	now := e.now()
	if expense.ID == "" {
		expense.ID = e.idGen.Generate()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = now
	}

	p := newPosting()
	for _, share := range expense.Shares {
		// The payer's own share is retained, not owed to anyone.
		if share.UserID == expense.PayerID || share.Amount.IsZero() {
			continue
		}
		p.add(&domain.Transaction{
			ID:          e.idGen.Generate(),
			PayerID:     expense.PayerID,
			RecipientID: share.UserID,
			ExpenseID:   &expense.ID,
			Kind:        domain.KindSplit,
			Amount:      share.Amount,
			Description: expense.Description,
			CreatedAt:   now,
		})
	}
	if len(p.transactions) == 0 {
		return nil, fmt.Errorf("%w: nobody besides the payer owes anything", domain.ErrInvalidSplit)
	}

	event := e.newEvent(domain.AggregateTypeExpense, expense.ID, domain.EventTypeExpenseCreated, expenseCreatedPayload(expense), now)

	err := e.commit(ctx, p, now, func(ctx context.Context, tx Tx) error {
		return e.expenses.Create(ctx, tx, expense)
	}, event)
	if err != nil {
		e.metrics.RecordLedgerError("apply_split", errorType(err))
		return nil, err
	}

	e.metrics.RecordExpense(string(expense.SplitType), expense.Amount.InexactFloat64())
	return expense, nil
}

// ApplySettlement records a direct payment: the payer's balance goes down
// by amount and the recipient's goes up by amount.
func (e *LedgerEngine) ApplySettlement(ctx context.Context, input SettlementInput) (*domain.Transaction, error) {
	start := time.Now()
	defer func() { e.metrics.ObserveLedgerDuration("apply_settlement", time.Since(start)) }()

	if err := domain.ValidateAmount(input.Amount); err != nil {
		e.metrics.RecordLedgerError("apply_settlement", errorType(err))
		return nil, err
	}

	now := e.now()
	t := &domain.Transaction{
		ID:          e.idGen.Generate(),
		PayerID:     input.PayerID,
		RecipientID: input.RecipientID,
		Kind:        domain.KindSettlement,
		Amount:      input.Amount,
		Description: input.Description,
		CreatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		e.metrics.RecordLedgerError("apply_settlement", errorType(err))
		return nil, err
	}

	p := newPosting()
	p.add(t)

	event := e.newEvent(domain.AggregateTypeTransaction, t.ID, domain.EventTypeSettlementCreated, domain.SettlementCreatedEvent{
		TransactionID: t.ID,
		PayerID:       t.PayerID,
		RecipientID:   t.RecipientID,
		Amount:        domain.FormatMoney(t.Amount),
	}.ToMap(), now)

	if err := e.commit(ctx, p, now, nil, event); err != nil {
		e.metrics.RecordLedgerError("apply_settlement", errorType(err))
		return nil, err
	}

	e.metrics.RecordSettlement(t.Amount.InexactFloat64())
	return t, nil
}

// ReverseExpense undoes every balance effect of an expense with reversal
// transactions and marks the expense deleted. Only the payer may do this.
func (e *LedgerEngine) ReverseExpense(ctx context.Context, expenseID, callerID string) (*domain.Expense, error) {
	start := time.Now()
	defer func() { e.metrics.ObserveLedgerDuration("reverse_expense", time.Since(start)) }()

	var reversed *domain.Expense

	err := e.run(ctx, func(ctx context.Context) error {
		tx, err := e.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		expense, err := e.expenses.GetByIDForUpdate(ctx, tx, expenseID)
		if err != nil {
			return err
		}
		if expense.IsDeleted() {
			return domain.ErrExpenseNotFound
		}
		if expense.PayerID != callerID {
			return domain.ErrForbidden
		}

		now := e.now()
		p := newPosting()
		for _, share := range expense.Shares {
			if share.UserID == expense.PayerID || share.Amount.IsZero() {
				continue
			}
			p.add(&domain.Transaction{
				ID:          e.idGen.Generate(),
				PayerID:     expense.PayerID,
				RecipientID: share.UserID,
				ExpenseID:   &expense.ID,
				Kind:        domain.KindReversal,
				Amount:      share.Amount,
				Description: "reversal: " + expense.Description,
				CreatedAt:   now,
			})
		}

		updated, err := e.post(ctx, tx, p, now)
		if err != nil {
			return err
		}
		if err := e.expenses.MarkDeleted(ctx, tx, expense.ID, now); err != nil {
			return err
		}

		event := e.newEvent(domain.AggregateTypeExpense, expense.ID, domain.EventTypeExpenseDeleted, domain.ExpenseDeletedEvent{
			ExpenseID: expense.ID,
			PayerID:   expense.PayerID,
			Amount:    domain.FormatMoney(expense.Amount),
		}.ToMap(), now)
		if err := e.writeEvent(ctx, tx, event); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		expense.DeletedAt = &now
		reversed = expense
		e.refreshCache(ctx, updated)
		return nil
	})
	if err != nil {
		e.metrics.RecordLedgerError("reverse_expense", errorType(err))
		return nil, err
	}

	return reversed, nil
}

// commit runs one atomic apply of p, with an optional extra write staged
// in the same transaction before the log entries.
func (e *LedgerEngine) commit(
	ctx context.Context,
	p *posting,
	now time.Time,
	stage func(ctx context.Context, tx Tx) error,
	event *domain.OutboxEvent,
) error {
	return e.run(ctx, func(ctx context.Context) error {
		tx, err := e.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if stage != nil {
			if err := stage(ctx, tx); err != nil {
				return err
			}
		}

		updated, err := e.post(ctx, tx, p, now)
		if err != nil {
			return err
		}

		if err := e.writeEvent(ctx, tx, event); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		e.refreshCache(ctx, updated)
		return nil
	})
}

// post locks every touched balance, appends the log entries and applies
// the net delta per user. It returns the balances as they stand after
// the deltas.
func (e *LedgerEngine) post(ctx context.Context, tx Tx, p *posting, now time.Time) ([]*domain.Balance, error) {
	ids := p.userIDs()

	if _, err := e.balances.LockForUpdate(ctx, tx, ids); err != nil {
		return nil, err
	}

	for _, t := range p.transactions {
		if err := e.log.Append(ctx, tx, t); err != nil {
			return nil, err
		}
	}

	updated := make([]*domain.Balance, 0, len(ids))
	for _, id := range ids {
		delta := p.deltas[id]
		if delta.IsZero() {
			continue
		}
		b, err := e.balances.ApplyDelta(ctx, tx, id, delta, now)
		if err != nil {
			return nil, err
		}
		updated = append(updated, b)
	}

	return updated, nil
}

// run executes op under the retrier and a bounded deadline, and turns
// unexpected storage failures into domain.ErrStorageUnavailable.
func (e *LedgerEngine) run(ctx context.Context, op func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	attempt := func() error { return op(ctx) }

	var err error
	if e.retrier != nil {
		err = e.retrier.Retry(ctx, attempt)
	} else {
		err = attempt()
	}

	return classifyStorageError(err)
}

func (e *LedgerEngine) newEvent(aggregateType, aggregateID, eventType string, payload map[string]any, now time.Time) *domain.OutboxEvent {
	if e.outbox == nil {
		return nil
	}
	return &domain.OutboxEvent{
		ID:            e.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}

func (e *LedgerEngine) writeEvent(ctx context.Context, tx Tx, event *domain.OutboxEvent) error {
	if e.outbox == nil || event == nil {
		return nil
	}
	return e.outbox.Create(ctx, tx, event)
}

// refreshCache writes the committed balances through to the cache. A
// balance that cannot be written is dropped instead, so readers fall back
// to storage rather than see the pre-commit amount.
func (e *LedgerEngine) refreshCache(ctx context.Context, balances []*domain.Balance) {
	if e.cache == nil {
		return
	}
	for _, b := range balances {
		if _, err := cacheBalance(ctx, e.cache, b, e.cacheTTL); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", b.UserID).Msg("failed to refresh cached balance")
			if err := e.cache.Delete(ctx, balanceCacheKey(b.UserID)); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", b.UserID).Msg("failed to invalidate cached balance")
			}
		}
	}
}

func expenseCreatedPayload(expense *domain.Expense) map[string]any {
	shares := make(map[string]string, len(expense.Shares))
	for _, s := range expense.Shares {
		shares[s.UserID] = domain.FormatMoney(s.Amount)
	}
	return domain.ExpenseCreatedEvent{
		ExpenseID: expense.ID,
		PayerID:   expense.PayerID,
		Amount:    domain.FormatMoney(expense.Amount),
		SplitType: string(expense.SplitType),
		Shares:    shares,
	}.ToMap()
}

func classifyStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case domain.IsCallerError(err),
		errors.Is(err, domain.ErrConflictRetryable),
		errors.Is(err, domain.ErrStorageUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidSplit), errors.Is(err, domain.ErrUnknownUser):
		return "invalid_split"
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidPrecision),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrSelfSettlement):
		return "invalid_amount"
	case errors.Is(err, domain.ErrExpenseNotFound), errors.Is(err, domain.ErrBalanceNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrConflictRetryable):
		return "conflict"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "storage"
	}
}
