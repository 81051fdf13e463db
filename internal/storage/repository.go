// Package storage is the SQLite implementation of the record store. Dates
// are persisted as YYYY-MM-DD text and rehydrated noon-anchored; timestamps
// as unix milliseconds.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"teto/internal/core"
	"teto/internal/store"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (r *SQLiteStore) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteStore) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, description, amount_cents, category, type, payment_method, is_recurring, date, created_at
		FROM transactions
		WHERE owner_id = ?
		ORDER BY date, created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t         core.Transaction
			recurring int64
			date      string
			createdAt int64
		)
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Description, &t.Amount.Cents, &t.Category,
			&t.Type, &t.PaymentMethod, &recurring, &date, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.IsRecurring = recurring != 0
		if t.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		t.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteStore) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_id, description, amount_cents, category, type, payment_method, is_recurring, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Description, t.Amount.Cents, t.Category, string(t.Type),
		string(t.PaymentMethod), boolInt(t.IsRecurring), t.Date.Format(dateLayout), t.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *SQLiteStore) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET description = ?, amount_cents = ?, category = ?, type = ?, payment_method = ?, is_recurring = ?, date = ?
		WHERE id = ? AND owner_id = ?`,
		t.Description, t.Amount.Cents, t.Category, string(t.Type), string(t.PaymentMethod),
		boolInt(t.IsRecurring), t.Date.Format(dateLayout), t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return oneRow(res)
}

func (r *SQLiteStore) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return oneRow(res)
}

func (r *SQLiteStore) ListBudgets(ctx context.Context, ownerID string) ([]core.CategoryBudget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, category, limit_cents, month, year
		FROM budgets
		WHERE owner_id = ?
		ORDER BY year, month, category`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryBudget
	for rows.Next() {
		var b core.CategoryBudget
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Category, &b.Limit.Cents, &b.Month, &b.Year); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteStore) UpsertBudget(ctx context.Context, b core.CategoryBudget) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (id, owner_id, category, limit_cents, month, year)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, category, month, year)
		DO UPDATE SET limit_cents = excluded.limit_cents`,
		b.ID, b.OwnerID, b.Category, b.Limit.Cents, b.Month, b.Year)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (r *SQLiteStore) DeleteBudget(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return oneRow(res)
}

func (r *SQLiteStore) ListCategories(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM categories WHERE owner_id = ? ORDER BY rowid`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *SQLiteStore) AddCategory(ctx context.Context, ownerID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (owner_id, name) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		ownerID, name)
	if err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

func (r *SQLiteStore) ListInvestments(ctx context.Context, ownerID string) ([]core.InvestmentEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, description, amount_cents, date, kind
		FROM investments
		WHERE owner_id = ?
		ORDER BY date, rowid`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()

	var out []core.InvestmentEntry
	for rows.Next() {
		var (
			e    core.InvestmentEntry
			date string
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Description, &e.Amount.Cents, &date, &e.Kind); err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		if e.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("investment %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteStore) CreateInvestment(ctx context.Context, e core.InvestmentEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO investments (id, owner_id, description, amount_cents, date, kind)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.Description, e.Amount.Cents, e.Date.Format(dateLayout), string(e.Kind))
	if err != nil {
		return fmt.Errorf("create investment: %w", err)
	}
	return nil
}

func (r *SQLiteStore) DeleteInvestment(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM investments WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete investment: %w", err)
	}
	return oneRow(res)
}

func (r *SQLiteStore) GetSettings(ctx context.Context, ownerID string) (core.Settings, error) {
	s := core.Settings{OwnerID: ownerID}
	err := r.db.QueryRowContext(ctx, `
		SELECT initial_balance_cents, initial_credit_bill_cents, total_credit_limit_cents
		FROM settings WHERE owner_id = ?`, ownerID).
		Scan(&s.InitialBalance.Cents, &s.InitialCreditBill.Cents, &s.TotalCreditLimit.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteStore) PutSettings(ctx context.Context, s core.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (owner_id, initial_balance_cents, initial_credit_bill_cents, total_credit_limit_cents)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			initial_balance_cents = excluded.initial_balance_cents,
			initial_credit_bill_cents = excluded.initial_credit_bill_cents,
			total_credit_limit_cents = excluded.total_credit_limit_cents`,
		s.OwnerID, s.InitialBalance.Cents, s.InitialCreditBill.Cents, s.TotalCreditLimit.Cents)
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}

func (r *SQLiteStore) CreateUser(ctx context.Context, u store.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	return r.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

func (r *SQLiteStore) GetUser(ctx context.Context, id string) (store.User, error) {
	return r.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (r *SQLiteStore) getUser(ctx context.Context, query, arg string) (store.User, error) {
	var (
		u         store.User
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, store.ErrNotFound
	}
	if err != nil {
		return store.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return u, nil
}

// ResetAll clears the owner's collections one statement at a time, in a
// fixed order. A failure partway leaves the earlier tables cleared, matching
// the non-transactional reset semantics of the product.
func (r *SQLiteStore) ResetAll(ctx context.Context, ownerID string) error {
	for _, table := range []string{"transactions", "budgets", "categories", "investments", "settings"} {
		if _, err := r.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE owner_id = ?", table), ownerID); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
