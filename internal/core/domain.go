package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	CreditCard PaymentMethod = "CREDIT_CARD"
	Debit      PaymentMethod = "DEBIT"
	Cash       PaymentMethod = "CASH"
)

const (
	Deposit    InvestmentKind = "deposit"
	Withdrawal InvestmentKind = "withdrawal"
)

// BillPaymentCategory is the reserved category label that marks a transaction
// as a credit-bill settlement rather than ordinary spending. It reduces the
// outstanding bill and is excluded from category breakdowns.
const BillPaymentCategory = "Bill Payment"

// SeedCategories is the fixed starter set; the full category list for an
// owner is the union of this and every distinct category they have used.
var SeedCategories = []string{
	"Food",
	"Transport",
	"Leisure",
	"Health",
	"Housing",
	"Income",
	"Education",
	"Subscriptions",
}

type (
	TransactionType string
	PaymentMethod   string
	InvestmentKind  string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is an atomic financial event. Amount is always
	// non-negative; direction is carried by Type.
	Transaction struct {
		ID            string
		OwnerID       string
		Description   string
		Amount        Money
		Category      string
		Type          TransactionType
		PaymentMethod PaymentMethod
		IsRecurring   bool
		Date          Date
		CreatedAt     time.Time
	}

	// CategoryBudget is a monthly spending ceiling for a category,
	// scoped to a single (month, year). Category matches
	// Transaction.Category by exact string equality.
	CategoryBudget struct {
		ID       string
		OwnerID  string
		Category string
		Limit    Money
		Month    int // 1-12
		Year     int
	}

	// InvestmentEntry is a movement into or out of the aggregate
	// investment pool. The running total of the ledger is the patrimony.
	InvestmentEntry struct {
		ID          string
		OwnerID     string
		Description string
		Amount      Money
		Date        Date
		Kind        InvestmentKind
	}

	// Settings holds the per-owner calibration values: bank balance and
	// credit bill outstanding at a reference point, and the aggregate
	// credit limit across cards.
	Settings struct {
		OwnerID           string
		InitialBalance    Money
		InitialCreditBill Money
		TotalCreditLimit  Money
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidMethod    = errors.New("invalid payment method")
	ErrInvalidKind      = errors.New("invalid investment kind")
	ErrZeroDate         = errors.New("date cannot be zero")
)

// NewDate creates a calendar date at noon UTC. Anchoring at noon keeps the
// calendar day stable across timezone offsets when the date is compared or
// serialized (the original data carries dates without a time component).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day, noon-anchored.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Key returns the zero-padded YYYY-MM bucket key for the date. Lexical order
// of keys equals chronological order.
func (d Date) Key() string {
	return d.Format("2006-01")
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (m PaymentMethod) Valid() bool {
	return m == CreditCard || m == Debit || m == Cash
}

func (k InvestmentKind) Valid() bool {
	return k == Deposit || k == Withdrawal
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.PaymentMethod.Valid() {
		return ErrInvalidMethod
	}
	return nil
}

func (b CategoryBudget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Limit.Cents < 0 {
		return ErrInvalidAmount
	}
	if b.Month < 1 || b.Month > 12 {
		return errors.New("invalid month")
	}
	if b.Year < 1 {
		return errors.New("invalid year")
	}
	return nil
}

func (e InvestmentEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

// KnownCategories returns the union of the seed list and every distinct
// category used by txs, preserving seed order first and first-use order after.
func KnownCategories(txs []Transaction) []string {
	seen := make(map[string]bool, len(SeedCategories)+len(txs))
	out := make([]string, 0, len(SeedCategories))
	for _, c := range SeedCategories {
		seen[c] = true
		out = append(out, c)
	}
	for _, t := range txs {
		if t.Category == "" || seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		out = append(out, t.Category)
	}
	return out
}
