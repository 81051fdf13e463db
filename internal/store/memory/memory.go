// Package memory is an in-memory store implementation, used by tests and as
// a zero-setup backend for local runs. State is lost on restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"teto/internal/core"
	"teto/internal/store"
)

type Store struct {
	mu           sync.Mutex
	transactions map[string][]core.Transaction
	budgets      map[string][]core.CategoryBudget
	categories   map[string][]string
	investments  map[string][]core.InvestmentEntry
	settings     map[string]core.Settings
	users        map[string]store.User // keyed by id
	emails       map[string]string     // lower(email) -> id
}

func New() *Store {
	return &Store{
		transactions: make(map[string][]core.Transaction),
		budgets:      make(map[string][]core.CategoryBudget),
		categories:   make(map[string][]string),
		investments:  make(map[string][]core.InvestmentEntry),
		settings:     make(map[string]core.Settings),
		users:        make(map[string]store.User),
		emails:       make(map[string]string),
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) ListTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Transaction(nil), s.transactions[ownerID]...)
	core.SortChronological(out)
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.OwnerID] = append(s.transactions[t.OwnerID], t)
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := s.transactions[t.OwnerID]
	for i := range txs {
		if txs[i].ID == t.ID {
			txs[i] = t
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := s.transactions[ownerID]
	for i := range txs {
		if txs[i].ID == id {
			s.transactions[ownerID] = append(txs[:i], txs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListBudgets(_ context.Context, ownerID string) ([]core.CategoryBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.CategoryBudget(nil), s.budgets[ownerID]...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.CategoryBudget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	budgets := s.budgets[b.OwnerID]
	for i := range budgets {
		if budgets[i].Category == b.Category && budgets[i].Month == b.Month && budgets[i].Year == b.Year {
			b.ID = budgets[i].ID
			budgets[i] = b
			return nil
		}
	}
	s.budgets[b.OwnerID] = append(budgets, b)
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	budgets := s.budgets[ownerID]
	for i := range budgets {
		if budgets[i].ID == id {
			s.budgets[ownerID] = append(budgets[:i], budgets[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListCategories(_ context.Context, ownerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.categories[ownerID]...), nil
}

func (s *Store) AddCategory(_ context.Context, ownerID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories[ownerID] {
		if c == name {
			return nil
		}
	}
	s.categories[ownerID] = append(s.categories[ownerID], name)
	return nil
}

func (s *Store) ListInvestments(_ context.Context, ownerID string) ([]core.InvestmentEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.InvestmentEntry(nil), s.investments[ownerID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *Store) CreateInvestment(_ context.Context, e core.InvestmentEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investments[e.OwnerID] = append(s.investments[e.OwnerID], e)
	return nil
}

func (s *Store) DeleteInvestment(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.investments[ownerID]
	for i := range entries {
		if entries[i].ID == id {
			s.investments[ownerID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) GetSettings(_ context.Context, ownerID string) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.settings[ownerID]
	set.OwnerID = ownerID
	return set, nil
}

func (s *Store) PutSettings(_ context.Context, set core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[set.OwnerID] = set
	return nil
}

func (s *Store) CreateUser(_ context.Context, u store.User) error {
	key := strings.ToLower(u.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emails[key]; taken {
		return store.ErrConflict
	}
	s.users[u.ID] = u
	s.emails[key] = u.ID
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetUser(_ context.Context, id string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) ResetAll(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transactions, ownerID)
	delete(s.budgets, ownerID)
	delete(s.categories, ownerID)
	delete(s.investments, ownerID)
	delete(s.settings, ownerID)
	return nil
}
