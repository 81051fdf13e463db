package memory

import (
	"context"
	"errors"
	"testing"

	"teto/internal/core"
	"teto/internal/store"
)

func TestTransactionLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx := core.Transaction{
		ID:            "t1",
		OwnerID:       "alice",
		Description:   "coffee",
		Amount:        core.Money{Cents: 500},
		Category:      "Food",
		Type:          core.Expense,
		PaymentMethod: core.Cash,
		Date:          core.NewDate(2024, 5, 1),
	}
	if err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("create: %v", err)
	}

	tx.Description = "espresso"
	if err := s.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.ListTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Description != "espresso" {
		t.Fatalf("got %+v, want one updated record", got)
	}

	if err := s.DeleteTransaction(ctx, "alice", "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "alice", "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}

func TestOwnerIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, owner := range []string{"alice", "bob"} {
		err := s.CreateTransaction(ctx, core.Transaction{
			ID: owner + "-t", OwnerID: owner, Description: "x",
			Amount: core.Money{Cents: 100}, Category: "Food",
			Type: core.Expense, PaymentMethod: core.Cash, Date: core.NewDate(2024, 1, 1),
		})
		if err != nil {
			t.Fatalf("create for %s: %v", owner, err)
		}
	}

	got, _ := s.ListTransactions(ctx, "alice")
	if len(got) != 1 || got[0].OwnerID != "alice" {
		t.Fatalf("alice sees %+v", got)
	}
	if err := s.DeleteTransaction(ctx, "alice", "bob-t"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("cross-owner delete = %v, want ErrNotFound", err)
	}
}

func TestUpsertBudgetReplacesSlot(t *testing.T) {
	s := New()
	ctx := context.Background()

	b := core.CategoryBudget{ID: "b1", OwnerID: "alice", Category: "Food", Limit: core.Money{Cents: 50000}, Month: 5, Year: 2024}
	if err := s.UpsertBudget(ctx, b); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	b.ID = "b2"
	b.Limit = core.Money{Cents: 60000}
	if err := s.UpsertBudget(ctx, b); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, _ := s.ListBudgets(ctx, "alice")
	if len(got) != 1 {
		t.Fatalf("got %d budgets, want 1 (same slot replaced)", len(got))
	}
	if got[0].Limit.Cents != 60000 || got[0].ID != "b1" {
		t.Fatalf("slot = %+v, want new limit under original id", got[0])
	}

	// Different month is a different slot.
	b.Month = 6
	if err := s.UpsertBudget(ctx, b); err != nil {
		t.Fatalf("third upsert: %v", err)
	}
	if got, _ := s.ListBudgets(ctx, "alice"); len(got) != 2 {
		t.Fatalf("got %d budgets, want 2", len(got))
	}
}

func TestAddCategoryDedupes(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, name := range []string{"Pets", "Pets", " Pets "} {
		if err := s.AddCategory(ctx, "alice", name); err != nil {
			t.Fatalf("add %q: %v", name, err)
		}
	}
	got, _ := s.ListCategories(ctx, "alice")
	if len(got) != 1 || got[0] != "Pets" {
		t.Fatalf("got %v, want [Pets]", got)
	}
	if err := s.AddCategory(ctx, "alice", "  "); err == nil {
		t.Fatal("blank category should be rejected")
	}
}

func TestUserUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := store.User{ID: "u1", Email: "a@example.com", PasswordHash: "h"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := store.User{ID: "u2", Email: "A@Example.COM", PasswordHash: "h"}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate email = %v, want ErrConflict", err)
	}

	got, err := s.GetUserByEmail(ctx, "A@EXAMPLE.com")
	if err != nil || got.ID != "u1" {
		t.Fatalf("lookup = %+v, %v", got, err)
	}
}

func TestResetAllClearsRecordsKeepsUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateUser(ctx, store.User{ID: "alice", Email: "a@x.com"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	s.CreateTransaction(ctx, core.Transaction{ID: "t1", OwnerID: "alice"})
	s.UpsertBudget(ctx, core.CategoryBudget{ID: "b1", OwnerID: "alice", Category: "Food", Month: 1, Year: 2024})
	s.CreateInvestment(ctx, core.InvestmentEntry{ID: "i1", OwnerID: "alice"})
	s.AddCategory(ctx, "alice", "Pets")
	s.PutSettings(ctx, core.Settings{OwnerID: "alice", InitialBalance: core.Money{Cents: 100}})

	if err := s.ResetAll(ctx, "alice"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	snap, err := store.Load(ctx, s, "alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Transactions)+len(snap.Budgets)+len(snap.Investments)+len(snap.Categories) != 0 {
		t.Fatalf("records survived reset: %+v", snap)
	}
	if snap.Settings.InitialBalance.Cents != 0 {
		t.Fatalf("settings survived reset: %+v", snap.Settings)
	}
	if _, err := s.GetUser(ctx, "alice"); err != nil {
		t.Fatalf("account should survive reset: %v", err)
	}
}
