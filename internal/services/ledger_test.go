package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"teto/internal/amqp"
	"teto/internal/core"
	"teto/internal/snapshot"
	"teto/internal/store"
	"teto/internal/store/memory"
)

type eventRecorder struct {
	events []*amqp.RecordEvent
	fail   bool
}

func (r *eventRecorder) PublishRecordEvent(_ context.Context, e *amqp.RecordEvent) error {
	if r.fail {
		return errors.New("broker down")
	}
	r.events = append(r.events, e)
	return nil
}

// failingStore wraps the memory store and fails transaction creates after a
// set number of successes.
type failingStore struct {
	store.Store
	allow int
	seen  int
}

func (f *failingStore) CreateTransaction(ctx context.Context, t core.Transaction) error {
	if f.seen >= f.allow {
		return errors.New("disk full")
	}
	f.seen++
	return f.Store.CreateTransaction(ctx, t)
}

func newLedger(s store.Store, events EventPublisher) *Ledger {
	l := NewLedger(s, snapshot.NewHub(s), events)
	l.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return l
}

func validTx(owner string) core.Transaction {
	return core.Transaction{
		OwnerID:       owner,
		Description:   "groceries",
		Amount:        core.Money{Cents: 4500},
		Category:      "Food",
		Type:          core.Expense,
		PaymentMethod: core.Debit,
		Date:          core.NewDate(2024, 5, 1),
	}
}

func TestCreateTransaction(t *testing.T) {
	s := memory.New()
	rec := &eventRecorder{}
	l := newLedger(s, rec)
	ctx := context.Background()

	batch, err := l.CreateTransaction(ctx, validTx("alice"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("got %d instances, want 1", len(batch))
	}
	if batch[0].ID == "" {
		t.Fatal("id not assigned")
	}

	got, _ := s.ListTransactions(ctx, "alice")
	if len(got) != 1 {
		t.Fatalf("stored %d, want 1", len(got))
	}
	if len(rec.events) != 1 || rec.events[0].Op != amqp.OpCreate {
		t.Fatalf("events = %+v, want one create", rec.events)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	l := newLedger(memory.New(), nil)

	bad := validTx("alice")
	bad.Amount = core.Money{}
	if _, err := l.CreateTransaction(context.Background(), bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestCreateRecurringExplodesToTwelve(t *testing.T) {
	s := memory.New()
	l := newLedger(s, nil)
	ctx := context.Background()

	seed := validTx("alice")
	seed.IsRecurring = true

	batch, err := l.CreateTransaction(ctx, seed)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(batch) != core.DefaultRecurrenceCount {
		t.Fatalf("got %d instances, want %d", len(batch), core.DefaultRecurrenceCount)
	}

	got, _ := s.ListTransactions(ctx, "alice")
	if len(got) != 12 {
		t.Fatalf("stored %d, want 12", len(got))
	}
	if got[0].Date.Key() != "2024-05" || got[11].Date.Key() != "2025-04" {
		t.Fatalf("span = %s..%s, want 2024-05..2025-04", got[0].Date.Key(), got[11].Date.Key())
	}
}

func TestCreateRecurringPartialFailureKeepsWrites(t *testing.T) {
	inner := memory.New()
	s := &failingStore{Store: inner, allow: 5}
	l := newLedger(s, nil)
	ctx := context.Background()

	seed := validTx("alice")
	seed.IsRecurring = true

	written, err := l.CreateTransaction(ctx, seed)
	if err == nil {
		t.Fatal("expected partial-batch error")
	}
	if len(written) != 5 {
		t.Fatalf("reported %d written, want 5", len(written))
	}

	got, _ := inner.ListTransactions(ctx, "alice")
	if len(got) != 5 {
		t.Fatalf("stored %d, want 5 (no rollback)", len(got))
	}
}

func TestCreateRegistersCategory(t *testing.T) {
	s := memory.New()
	l := newLedger(s, nil)
	ctx := context.Background()

	custom := validTx("alice")
	custom.Category = "Gadgets"
	if _, err := l.CreateTransaction(ctx, custom); err != nil {
		t.Fatalf("create: %v", err)
	}

	cats, _ := s.ListCategories(ctx, "alice")
	if len(cats) != 1 || cats[0] != "Gadgets" {
		t.Fatalf("categories = %v, want [Gadgets]", cats)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	s := memory.New()
	l := newLedger(s, &eventRecorder{fail: true})

	if _, err := l.CreateTransaction(context.Background(), validTx("alice")); err != nil {
		t.Fatalf("create should survive a broker outage: %v", err)
	}
	got, _ := s.ListTransactions(context.Background(), "alice")
	if len(got) != 1 {
		t.Fatalf("stored %d, want 1", len(got))
	}
}

func TestPayBill(t *testing.T) {
	s := memory.New()
	l := newLedger(s, nil)
	ctx := context.Background()

	paid, err := l.PayBill(ctx, "alice", core.Money{Cents: 25000}, core.NewDate(2024, 5, 10))
	if err != nil {
		t.Fatalf("pay bill: %v", err)
	}
	if paid.Category != core.BillPaymentCategory || paid.PaymentMethod != core.Debit || paid.Type != core.Expense {
		t.Fatalf("bill payment shape wrong: %+v", paid)
	}

	s.PutSettings(ctx, core.Settings{OwnerID: "alice", InitialCreditBill: core.Money{Cents: 30000}})
	l.hub.Invalidate("alice")

	ov, err := l.Overview(ctx, "alice", 2024, 5)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.Summary.OutstandingBill.Cents != 5000 {
		t.Fatalf("outstanding bill = %d, want 5000", ov.Summary.OutstandingBill.Cents)
	}
	if len(ov.Breakdown) != 0 {
		t.Fatalf("bill payment leaked into breakdown: %+v", ov.Breakdown)
	}
}

func TestOverviewScopesMonth(t *testing.T) {
	s := memory.New()
	l := newLedger(s, nil)
	ctx := context.Background()

	may := validTx("alice")
	april := validTx("alice")
	april.Date = core.NewDate(2024, 4, 15)
	april.Category = "Leisure"
	if _, err := l.CreateTransaction(ctx, may); err != nil {
		t.Fatalf("create may: %v", err)
	}
	if _, err := l.CreateTransaction(ctx, april); err != nil {
		t.Fatalf("create april: %v", err)
	}

	ov, err := l.Overview(ctx, "alice", 2024, 5)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(ov.Breakdown) != 1 || ov.Breakdown[0].Category != "Food" {
		t.Fatalf("breakdown = %+v, want only may's Food", ov.Breakdown)
	}
	// Balance spans the whole history.
	if ov.Summary.ImmediateExpense.Cents != 9000 {
		t.Fatalf("immediate expense = %d, want 9000 across months", ov.Summary.ImmediateExpense.Cents)
	}
}

func TestSetBudgetUpsertsSlot(t *testing.T) {
	s := memory.New()
	l := newLedger(s, nil)
	ctx := context.Background()

	b := core.CategoryBudget{OwnerID: "alice", Category: "Food", Limit: core.Money{Cents: 50000}, Month: 5, Year: 2024}
	first, err := l.SetBudget(ctx, b)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if first.ID == "" {
		t.Fatal("id not assigned")
	}

	b.Limit = core.Money{Cents: 70000}
	if _, err := l.SetBudget(ctx, b); err != nil {
		t.Fatalf("second set: %v", err)
	}

	got, _ := l.ListBudgets(ctx, "alice", 2024, 5)
	if len(got) != 1 || got[0].Limit.Cents != 70000 {
		t.Fatalf("budgets = %+v, want single updated slot", got)
	}

	// Budgeting a category registers it, same as spending in it.
	cats, _ := s.ListCategories(ctx, "alice")
	if len(cats) != 1 || cats[0] != "Food" {
		t.Fatalf("categories = %v, want [Food]", cats)
	}
}

func TestCategoriesMergesSeedStoredAndUsed(t *testing.T) {
	s := memory.New()
	l := newLedger(s, nil)
	ctx := context.Background()

	custom := validTx("alice")
	custom.Category = "Gadgets"
	if _, err := l.CreateTransaction(ctx, custom); err != nil {
		t.Fatalf("create: %v", err)
	}
	s.AddCategory(ctx, "alice", "Pets")
	l.hub.Invalidate("alice")

	cats, err := l.Categories(ctx, "alice")
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	want := len(core.SeedCategories) + 2
	if len(cats) != want {
		t.Fatalf("got %d categories, want %d: %v", len(cats), want, cats)
	}
}

func TestResetAll(t *testing.T) {
	s := memory.New()
	l := newLedger(s, nil)
	ctx := context.Background()

	if _, err := l.CreateTransaction(ctx, validTx("alice")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := l.SaveSettings(ctx, core.Settings{OwnerID: "alice", InitialBalance: core.Money{Cents: 100}}); err != nil {
		t.Fatalf("settings: %v", err)
	}

	if err := l.ResetAll(ctx, "alice"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	txs, _ := l.ListTransactions(ctx, "alice", 0, 0)
	if len(txs) != 0 {
		t.Fatalf("%d transactions survived reset", len(txs))
	}
	set, _ := l.GetSettings(ctx, "alice")
	if set.InitialBalance.Cents != 0 {
		t.Fatalf("settings survived reset: %+v", set)
	}
}

func TestSaveSettingsRejectsNegative(t *testing.T) {
	l := newLedger(memory.New(), nil)
	err := l.SaveSettings(context.Background(), core.Settings{
		OwnerID:        "alice",
		InitialBalance: core.Money{Cents: -1},
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}
