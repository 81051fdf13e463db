// Package services orchestrates record writes across the store, the
// snapshot hub and the event stream, and assembles the read models the
// HTTP layer serves.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"teto/internal/amqp"
	"teto/internal/core"
	"teto/internal/snapshot"
	"teto/internal/store"
)

// EventPublisher pushes record-change events to the export queue. Nil-safe
// at the call sites: the queue is optional infrastructure.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, event *amqp.RecordEvent) error
}

// Ledger is the write and read-model service over one record store.
type Ledger struct {
	store  store.Store
	hub    *snapshot.Hub
	events EventPublisher

	now   func() time.Time
	newID func() string
}

func NewLedger(s store.Store, hub *snapshot.Hub, events EventPublisher) *Ledger {
	return &Ledger{
		store:  s,
		hub:    hub,
		events: events,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Overview is the dashboard read model. Balance figures span the whole
// history; the category breakdown, budgets and health are scoped to the
// selected month.
type Overview struct {
	Summary     core.Summary
	Breakdown   []core.CategorySpend
	Budgets     []core.BudgetStatus
	Health      core.HealthReport
	RecentCards []core.Transaction
	Patrimony   core.Money
}

// CreateTransaction validates and stores a transaction. A recurring
// transaction is exploded into twelve monthly instances, each written
// independently: instances already written stay if a later write fails, and
// the error reports how far the batch got.
func (l *Ledger) CreateTransaction(ctx context.Context, t core.Transaction) ([]core.Transaction, error) {
	if t.ID == "" {
		t.ID = l.newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = l.now()
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	batch := []core.Transaction{t}
	if t.IsRecurring {
		batch = core.ExpandRecurring(t, core.DefaultRecurrenceCount, core.Monthly, t.CreatedAt)
	}

	for i, inst := range batch {
		if err := l.store.CreateTransaction(ctx, inst); err != nil {
			// Earlier instances stay written; expose them so the caller
			// can report the partial batch.
			l.hub.Invalidate(t.OwnerID)
			return batch[:i], fmt.Errorf("write instance %d of %d: %w", i+1, len(batch), err)
		}
	}

	if err := l.registerCategory(ctx, t.OwnerID, t.Category); err != nil {
		slog.WarnContext(ctx, "Failed to register category", "category", t.Category, "error", err)
	}

	l.afterWrite(ctx, t.OwnerID, "transactions", amqp.OpCreate, t.ID)
	return batch, nil
}

func (l *Ledger) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := l.store.UpdateTransaction(ctx, t); err != nil {
		return err
	}
	if err := l.registerCategory(ctx, t.OwnerID, t.Category); err != nil {
		slog.WarnContext(ctx, "Failed to register category", "category", t.Category, "error", err)
	}
	l.afterWrite(ctx, t.OwnerID, "transactions", amqp.OpUpdate, t.ID)
	return nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if err := l.store.DeleteTransaction(ctx, ownerID, id); err != nil {
		return err
	}
	l.afterWrite(ctx, ownerID, "transactions", amqp.OpDelete, id)
	return nil
}

// PayBill records a credit-bill settlement: a debit expense under the
// reserved bill-payment category. It lowers the outstanding bill without
// counting as category spend.
func (l *Ledger) PayBill(ctx context.Context, ownerID string, amount core.Money, date core.Date) (core.Transaction, error) {
	t := core.Transaction{
		ID:            l.newID(),
		OwnerID:       ownerID,
		Description:   "Credit card bill payment",
		Amount:        amount,
		Category:      core.BillPaymentCategory,
		Type:          core.Expense,
		PaymentMethod: core.Debit,
		Date:          date,
		CreatedAt:     l.now(),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := l.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	l.afterWrite(ctx, ownerID, "transactions", amqp.OpCreate, t.ID)
	return t, nil
}

func (l *Ledger) ListTransactions(ctx context.Context, ownerID string, year, month int) ([]core.Transaction, error) {
	snap, err := l.hub.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	txs := snap.Transactions
	if year != 0 {
		txs = core.FilterMonth(txs, year, month)
	}
	return txs, nil
}

// Overview assembles the dashboard for the selected month.
func (l *Ledger) Overview(ctx context.Context, ownerID string, year, month int) (Overview, error) {
	snap, err := l.hub.Snapshot(ctx, ownerID)
	if err != nil {
		return Overview{}, err
	}

	monthTxs := core.FilterMonth(snap.Transactions, year, month)
	monthBudgets := core.BudgetsForMonth(snap.Budgets, year, month)

	return Overview{
		Summary:     core.Summarize(snap.Transactions, snap.Settings),
		Breakdown:   core.SpendByCategory(monthTxs),
		Budgets:     core.ClassifyBudgets(monthTxs, monthBudgets),
		Health:      core.FinancialHealth(monthTxs, monthBudgets),
		RecentCards: core.RecentCardCharges(snap.Transactions, 5),
		Patrimony:   core.Patrimony(snap.Investments),
	}, nil
}

// SetBudget upserts the spending ceiling for the (category, month, year)
// slot.
func (l *Ledger) SetBudget(ctx context.Context, b core.CategoryBudget) (core.CategoryBudget, error) {
	if b.ID == "" {
		b.ID = l.newID()
	}
	if err := b.Validate(); err != nil {
		return core.CategoryBudget{}, err
	}
	if err := l.registerCategory(ctx, b.OwnerID, b.Category); err != nil {
		return core.CategoryBudget{}, fmt.Errorf("register category: %w", err)
	}
	if err := l.store.UpsertBudget(ctx, b); err != nil {
		return core.CategoryBudget{}, err
	}
	l.afterWrite(ctx, b.OwnerID, "budgets", amqp.OpUpdate, b.ID)
	return b, nil
}

func (l *Ledger) DeleteBudget(ctx context.Context, ownerID, id string) error {
	if err := l.store.DeleteBudget(ctx, ownerID, id); err != nil {
		return err
	}
	l.afterWrite(ctx, ownerID, "budgets", amqp.OpDelete, id)
	return nil
}

func (l *Ledger) ListBudgets(ctx context.Context, ownerID string, year, month int) ([]core.CategoryBudget, error) {
	snap, err := l.hub.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if year == 0 {
		return snap.Budgets, nil
	}
	return core.BudgetsForMonth(snap.Budgets, year, month), nil
}

func (l *Ledger) AddInvestment(ctx context.Context, e core.InvestmentEntry) (core.InvestmentEntry, error) {
	if e.ID == "" {
		e.ID = l.newID()
	}
	if err := e.Validate(); err != nil {
		return core.InvestmentEntry{}, err
	}
	if err := l.store.CreateInvestment(ctx, e); err != nil {
		return core.InvestmentEntry{}, err
	}
	l.afterWrite(ctx, e.OwnerID, "investments", amqp.OpCreate, e.ID)
	return e, nil
}

func (l *Ledger) DeleteInvestment(ctx context.Context, ownerID, id string) error {
	if err := l.store.DeleteInvestment(ctx, ownerID, id); err != nil {
		return err
	}
	l.afterWrite(ctx, ownerID, "investments", amqp.OpDelete, id)
	return nil
}

// InvestmentReport pairs the entry list with the running patrimony total.
type InvestmentReport struct {
	Entries   []core.InvestmentEntry
	Patrimony core.Money
}

func (l *Ledger) Investments(ctx context.Context, ownerID string) (InvestmentReport, error) {
	snap, err := l.hub.Snapshot(ctx, ownerID)
	if err != nil {
		return InvestmentReport{}, err
	}
	return InvestmentReport{
		Entries:   snap.Investments,
		Patrimony: core.Patrimony(snap.Investments),
	}, nil
}

func (l *Ledger) MonthlyReport(ctx context.Context, ownerID string) ([]core.MonthBucket, error) {
	snap, err := l.hub.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return core.MonthlyFlow(snap.Transactions), nil
}

// Categories returns the seed set merged with the owner's stored and used
// categories.
func (l *Ledger) Categories(ctx context.Context, ownerID string) ([]string, error) {
	snap, err := l.hub.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	known := core.KnownCategories(snap.Transactions)
	seen := make(map[string]bool, len(known))
	for _, c := range known {
		seen[c] = true
	}
	for _, c := range snap.Categories {
		if !seen[c] {
			seen[c] = true
			known = append(known, c)
		}
	}
	return known, nil
}

func (l *Ledger) GetSettings(ctx context.Context, ownerID string) (core.Settings, error) {
	snap, err := l.hub.Snapshot(ctx, ownerID)
	if err != nil {
		return core.Settings{}, err
	}
	return snap.Settings, nil
}

func (l *Ledger) SaveSettings(ctx context.Context, s core.Settings) error {
	if s.InitialBalance.Cents < 0 || s.InitialCreditBill.Cents < 0 || s.TotalCreditLimit.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if err := l.store.PutSettings(ctx, s); err != nil {
		return err
	}
	l.afterWrite(ctx, s.OwnerID, "settings", amqp.OpUpdate, s.OwnerID)
	return nil
}

// ResetAll wipes every record collection for the owner. The account
// survives; a partial failure leaves earlier collections cleared.
func (l *Ledger) ResetAll(ctx context.Context, ownerID string) error {
	err := l.store.ResetAll(ctx, ownerID)
	// Invalidate even on failure: some collections may be gone already.
	l.afterWrite(ctx, ownerID, "all", amqp.OpDelete, "")
	return err
}

// Subscribe exposes the hub's change feed for server-sent events.
func (l *Ledger) Subscribe(ownerID string) (<-chan struct{}, func()) {
	return l.hub.Subscribe(ownerID)
}

func (l *Ledger) registerCategory(ctx context.Context, ownerID, name string) error {
	if name == core.BillPaymentCategory {
		return nil
	}
	return l.store.AddCategory(ctx, ownerID, name)
}

func (l *Ledger) afterWrite(ctx context.Context, ownerID, collection, op, recordID string) {
	l.hub.Invalidate(ownerID)

	if l.events == nil {
		return
	}
	event := amqp.NewRecordEvent(ownerID, collection, op, recordID)
	if err := l.events.PublishRecordEvent(ctx, event); err != nil {
		// The write already landed; the export stream catches up later.
		slog.ErrorContext(ctx, "Failed to publish record event",
			"owner_id", ownerID, "collection", collection, "op", op, "error", err)
	}
}

// IsNotFound reports whether err is the store's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
