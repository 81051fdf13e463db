// Package supabase is the hosted-Postgres implementation of the record
// store, speaking PostgREST through the Supabase client. Table layout
// mirrors the SQLite schema.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/supabase-community/supabase-go"

	"teto/internal/core"
	"teto/internal/store"
)

const dateLayout = "2006-01-02"

type Store struct {
	client *supabase.Client
}

var _ store.Store = (*Store)(nil)

func New(url, key string) (*Store, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Store{client: client}, nil
}

type transactionRow struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	Description   string `json:"description"`
	AmountCents   int64  `json:"amount_cents"`
	Category      string `json:"category"`
	Type          string `json:"type"`
	PaymentMethod string `json:"payment_method"`
	IsRecurring   bool   `json:"is_recurring"`
	Date          string `json:"date"`
	CreatedAt     int64  `json:"created_at"`
}

type budgetRow struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	Category   string `json:"category"`
	LimitCents int64  `json:"limit_cents"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

type categoryRow struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
}

type investmentRow struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
}

type settingsRow struct {
	OwnerID                string `json:"owner_id"`
	InitialBalanceCents    int64  `json:"initial_balance_cents"`
	InitialCreditBillCents int64  `json:"initial_credit_bill_cents"`
	TotalCreditLimitCents  int64  `json:"total_credit_limit_cents"`
}

type userRow struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

func (s *Store) ListTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	data, _, err := s.client.From("transactions").
		Select("*", "", false).
		Eq("owner_id", ownerID).
		Order("date.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	var rows []transactionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		t, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	core.SortChronological(out)
	return out, nil
}

func (r transactionRow) toDomain() (core.Transaction, error) {
	d, err := parseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", r.ID, err)
	}
	return core.Transaction{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Description:   r.Description,
		Amount:        core.Money{Cents: r.AmountCents},
		Category:      r.Category,
		Type:          core.TransactionType(r.Type),
		PaymentMethod: core.PaymentMethod(r.PaymentMethod),
		IsRecurring:   r.IsRecurring,
		Date:          d,
		CreatedAt:     time.UnixMilli(r.CreatedAt).UTC(),
	}, nil
}

func rowOf(t core.Transaction) transactionRow {
	return transactionRow{
		ID:            t.ID,
		OwnerID:       t.OwnerID,
		Description:   t.Description,
		AmountCents:   t.Amount.Cents,
		Category:      t.Category,
		Type:          string(t.Type),
		PaymentMethod: string(t.PaymentMethod),
		IsRecurring:   t.IsRecurring,
		Date:          t.Date.Format(dateLayout),
		CreatedAt:     t.CreatedAt.UnixMilli(),
	}
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	_, _, err := s.client.From("transactions").Insert(rowOf(t), false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	data, _, err := s.client.From("transactions").
		Update(rowOf(t), "representation", "").
		Eq("id", t.ID).
		Eq("owner_id", t.OwnerID).
		Execute()
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireMatch(data)
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) error {
	data, _, err := s.client.From("transactions").
		Delete("representation", "").
		Eq("id", id).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireMatch(data)
}

func (s *Store) ListBudgets(_ context.Context, ownerID string) ([]core.CategoryBudget, error) {
	data, _, err := s.client.From("budgets").
		Select("*", "", false).
		Eq("owner_id", ownerID).
		Order("year.asc", nil).
		Order("month.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	var rows []budgetRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse budgets: %w", err)
	}

	out := make([]core.CategoryBudget, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.CategoryBudget{
			ID:       r.ID,
			OwnerID:  r.OwnerID,
			Category: r.Category,
			Limit:    core.Money{Cents: r.LimitCents},
			Month:    r.Month,
			Year:     r.Year,
		})
	}
	return out, nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.CategoryBudget) error {
	row := budgetRow{
		ID:         b.ID,
		OwnerID:    b.OwnerID,
		Category:   b.Category,
		LimitCents: b.Limit.Cents,
		Month:      b.Month,
		Year:       b.Year,
	}
	_, _, err := s.client.From("budgets").
		Insert(row, true, "owner_id,category,month,year", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, ownerID, id string) error {
	data, _, err := s.client.From("budgets").
		Delete("representation", "").
		Eq("id", id).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireMatch(data)
}

func (s *Store) ListCategories(_ context.Context, ownerID string) ([]string, error) {
	data, _, err := s.client.From("categories").
		Select("*", "", false).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	var rows []categoryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out, nil
}

func (s *Store) AddCategory(_ context.Context, ownerID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	_, _, err := s.client.From("categories").
		Insert(categoryRow{OwnerID: ownerID, Name: name}, true, "owner_id,name", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

func (s *Store) ListInvestments(_ context.Context, ownerID string) ([]core.InvestmentEntry, error) {
	data, _, err := s.client.From("investments").
		Select("*", "", false).
		Eq("owner_id", ownerID).
		Order("date.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}

	var rows []investmentRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse investments: %w", err)
	}

	out := make([]core.InvestmentEntry, 0, len(rows))
	for _, r := range rows {
		d, err := parseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("investment %s: %w", r.ID, err)
		}
		out = append(out, core.InvestmentEntry{
			ID:          r.ID,
			OwnerID:     r.OwnerID,
			Description: r.Description,
			Amount:      core.Money{Cents: r.AmountCents},
			Date:        d,
			Kind:        core.InvestmentKind(r.Kind),
		})
	}
	return out, nil
}

func (s *Store) CreateInvestment(_ context.Context, e core.InvestmentEntry) error {
	row := investmentRow{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Date:        e.Date.Format(dateLayout),
		Kind:        string(e.Kind),
	}
	_, _, err := s.client.From("investments").Insert(row, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("create investment: %w", err)
	}
	return nil
}

func (s *Store) DeleteInvestment(_ context.Context, ownerID, id string) error {
	data, _, err := s.client.From("investments").
		Delete("representation", "").
		Eq("id", id).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete investment: %w", err)
	}
	return requireMatch(data)
}

func (s *Store) GetSettings(_ context.Context, ownerID string) (core.Settings, error) {
	set := core.Settings{OwnerID: ownerID}
	data, _, err := s.client.From("settings").
		Select("*", "", false).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return set, fmt.Errorf("get settings: %w", err)
	}

	var rows []settingsRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return set, fmt.Errorf("parse settings: %w", err)
	}
	if len(rows) == 0 {
		return set, nil
	}
	set.InitialBalance = core.Money{Cents: rows[0].InitialBalanceCents}
	set.InitialCreditBill = core.Money{Cents: rows[0].InitialCreditBillCents}
	set.TotalCreditLimit = core.Money{Cents: rows[0].TotalCreditLimitCents}
	return set, nil
}

func (s *Store) PutSettings(_ context.Context, set core.Settings) error {
	row := settingsRow{
		OwnerID:                set.OwnerID,
		InitialBalanceCents:    set.InitialBalance.Cents,
		InitialCreditBillCents: set.InitialCreditBill.Cents,
		TotalCreditLimitCents:  set.TotalCreditLimit.Cents,
	}
	_, _, err := s.client.From("settings").
		Insert(row, true, "owner_id", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}

func (s *Store) CreateUser(_ context.Context, u store.User) error {
	row := userRow{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UnixMilli(),
	}
	_, _, err := s.client.From("users").Insert(row, false, "", "", "").Execute()
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return store.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	return s.findUser("email", strings.ToLower(email))
}

func (s *Store) GetUser(ctx context.Context, id string) (store.User, error) {
	return s.findUser("id", id)
}

func (s *Store) findUser(column, value string) (store.User, error) {
	data, _, err := s.client.From("users").
		Select("*", "", false).
		Eq(column, value).
		Execute()
	if err != nil {
		return store.User{}, fmt.Errorf("get user: %w", err)
	}

	var rows []userRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return store.User{}, fmt.Errorf("parse user: %w", err)
	}
	if len(rows) == 0 {
		return store.User{}, store.ErrNotFound
	}
	return store.User{
		ID:           rows[0].ID,
		Email:        rows[0].Email,
		PasswordHash: rows[0].PasswordHash,
		CreatedAt:    time.UnixMilli(rows[0].CreatedAt).UTC(),
	}, nil
}

// ResetAll clears the owner's collections table by table. A failure partway
// leaves earlier tables cleared.
func (s *Store) ResetAll(_ context.Context, ownerID string) error {
	for _, table := range []string{"transactions", "budgets", "categories", "investments", "settings"} {
		_, _, err := s.client.From(table).
			Delete("", "").
			Eq("owner_id", ownerID).
			Execute()
		if err != nil {
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

// requireMatch distinguishes a zero-row write from a matched one; PostgREST
// reports both as success.
func requireMatch(data []byte) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}
