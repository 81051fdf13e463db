package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	valid := tx("coffee", 500, "Food", Expense, Cash, NewDate(2024, 5, 1))

	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"zero date", func(tr *Transaction) { tr.Date = Date{} }, ErrZeroDate},
		{"empty description", func(tr *Transaction) { tr.Description = "  " }, ErrEmptyDescription},
		{"zero amount", func(tr *Transaction) { tr.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tr *Transaction) { tr.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"empty category", func(tr *Transaction) { tr.Category = "" }, ErrEmptyCategory},
		{"bad type", func(tr *Transaction) { tr.Type = "TRANSFER" }, ErrInvalidType},
		{"bad method", func(tr *Transaction) { tr.PaymentMethod = "CHECK" }, ErrInvalidMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid
			tt.mutate(&tr)
			err := tr.Validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransactionValidateLongDescription(t *testing.T) {
	tr := tx(strings.Repeat("x", 201), 500, "Food", Expense, Cash, NewDate(2024, 5, 1))
	if err := tr.Validate(); err == nil {
		t.Fatal("201-char description should be rejected")
	}
	tr.Description = strings.Repeat("x", 200)
	if err := tr.Validate(); err != nil {
		t.Fatalf("200-char description rejected: %v", err)
	}
}

func TestCategoryBudgetValidate(t *testing.T) {
	valid := CategoryBudget{Category: "Food", Limit: Money{Cents: 50000}, Month: 5, Year: 2024}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}

	zero := valid
	zero.Limit = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero limit should be allowed (budget can be cleared): %v", err)
	}

	for _, month := range []int{0, 13, -1} {
		b := valid
		b.Month = month
		if err := b.Validate(); err == nil {
			t.Fatalf("month %d should be rejected", month)
		}
	}
}

func TestInvestmentEntryValidate(t *testing.T) {
	valid := InvestmentEntry{
		Description: "index fund",
		Amount:      Money{Cents: 100000},
		Date:        NewDate(2024, 5, 1),
		Kind:        Deposit,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	bad := valid
	bad.Kind = "transfer"
	if !errors.Is(bad.Validate(), ErrInvalidKind) {
		t.Fatal("unknown kind should be rejected")
	}
}

func TestDateKeyAndAnchor(t *testing.T) {
	d := NewDate(2024, 3, 1)
	if got := d.Key(); got != "2024-03" {
		t.Fatalf("Key() = %s, want 2024-03", got)
	}
	if d.Hour() != 12 || d.Location() != time.UTC {
		t.Fatalf("date not noon-anchored UTC: %v", d.Time)
	}
}

func TestKnownCategories(t *testing.T) {
	txs := []Transaction{
		tx("a", 100, "Gadgets", Expense, Cash, NewDate(2024, 1, 1)),
		tx("b", 100, "Food", Expense, Cash, NewDate(2024, 1, 2)),
		tx("c", 100, "Gadgets", Expense, Cash, NewDate(2024, 1, 3)),
		tx("d", 100, "Pets", Expense, Cash, NewDate(2024, 1, 4)),
	}

	out := KnownCategories(txs)
	if len(out) != len(SeedCategories)+2 {
		t.Fatalf("got %d categories, want %d", len(out), len(SeedCategories)+2)
	}
	for i, c := range SeedCategories {
		if out[i] != c {
			t.Fatalf("seed order broken at %d: %s", i, out[i])
		}
	}
	if out[len(out)-2] != "Gadgets" || out[len(out)-1] != "Pets" {
		t.Fatalf("custom categories out of first-use order: %v", out[len(out)-2:])
	}
}
