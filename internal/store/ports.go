// Package store defines the persistence ports for the record collections.
// Every operation is owner-scoped: a store never returns or mutates records
// belonging to another owner.
package store

import (
	"context"
	"errors"
	"time"

	"teto/internal/core"
)

var (
	// ErrNotFound is returned when the addressed record does not exist
	// for the given owner.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned on unique-constraint violations, e.g.
	// registering an email twice.
	ErrConflict = errors.New("record already exists")
)

// User is an account that owns records. PasswordHash is a bcrypt hash and
// never leaves the store layer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Snapshot is the full state of one owner's records, loaded in one pass.
// All derivations in core operate on snapshots.
type Snapshot struct {
	Transactions []core.Transaction
	Budgets      []core.CategoryBudget
	Categories   []string
	Investments  []core.InvestmentEntry
	Settings     core.Settings
}

// Ports for record persistence.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) error
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, ownerID, id string) error
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context, ownerID string) ([]core.CategoryBudget, error)
		// UpsertBudget replaces the limit for the budget's
		// (category, month, year) slot, creating it when absent.
		UpsertBudget(ctx context.Context, b core.CategoryBudget) error
		DeleteBudget(ctx context.Context, ownerID, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context, ownerID string) ([]string, error)
		// AddCategory registers a category name; adding an existing name
		// is a no-op.
		AddCategory(ctx context.Context, ownerID, name string) error
	}

	InvestmentStore interface {
		ListInvestments(ctx context.Context, ownerID string) ([]core.InvestmentEntry, error)
		CreateInvestment(ctx context.Context, e core.InvestmentEntry) error
		DeleteInvestment(ctx context.Context, ownerID, id string) error
	}

	SettingsStore interface {
		// GetSettings returns zeroed settings (not ErrNotFound) when the
		// owner has never saved any.
		GetSettings(ctx context.Context, ownerID string) (core.Settings, error)
		PutSettings(ctx context.Context, s core.Settings) error
	}

	UserStore interface {
		CreateUser(ctx context.Context, u User) error
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUser(ctx context.Context, id string) (User, error)
	}

	// Resetter wipes every record collection for one owner, leaving the
	// account itself intact. Collections are cleared one by one; a failure
	// partway leaves earlier collections cleared.
	Resetter interface {
		ResetAll(ctx context.Context, ownerID string) error
	}
)

// Store is the unified persistence interface the service layer runs on.
type Store interface {
	TransactionStore
	BudgetStore
	CategoryStore
	InvestmentStore
	SettingsStore
	UserStore
	Resetter
}

// Load assembles a full snapshot for the owner from the individual
// collection reads.
func Load(ctx context.Context, s Store, ownerID string) (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.Transactions, err = s.ListTransactions(ctx, ownerID); err != nil {
		return snap, err
	}
	if snap.Budgets, err = s.ListBudgets(ctx, ownerID); err != nil {
		return snap, err
	}
	if snap.Categories, err = s.ListCategories(ctx, ownerID); err != nil {
		return snap, err
	}
	if snap.Investments, err = s.ListInvestments(ctx, ownerID); err != nil {
		return snap, err
	}
	if snap.Settings, err = s.GetSettings(ctx, ownerID); err != nil {
		return snap, err
	}
	return snap, nil
}
