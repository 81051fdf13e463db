// JSON wire shapes. Amounts travel as decimal strings ("45.90") in both
// directions; cents stay an internal representation.
package http

import (
	"strings"
	"time"

	"teto/internal/core"
	"teto/internal/services"
)

type transactionJSON struct {
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	Amount        string    `json:"amount"`
	Category      string    `json:"category"`
	Type          string    `json:"type"`
	PaymentMethod string    `json:"payment_method"`
	IsRecurring   bool      `json:"is_recurring"`
	Date          string    `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:            t.ID,
		Description:   t.Description,
		Amount:        t.Amount.String(),
		Category:      t.Category,
		Type:          string(t.Type),
		PaymentMethod: string(t.PaymentMethod),
		IsRecurring:   t.IsRecurring,
		Date:          t.Date.Format("2006-01-02"),
		CreatedAt:     t.CreatedAt,
	}
}

func toTransactionListJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionJSON(t))
	}
	return out
}

type transactionRequest struct {
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	Type          string `json:"type"`
	PaymentMethod string `json:"payment_method"`
	IsRecurring   bool   `json:"is_recurring"`
	Date          string `json:"date"`
}

// toCore builds a validated transaction owned by ownerID. The id and
// creation time are left for the service to assign.
func (req transactionRequest) toCore(ownerID string) (core.Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, core.ErrZeroDate
	}
	t := core.Transaction{
		OwnerID:       ownerID,
		Description:   sanitizeInput(req.Description),
		Amount:        amount,
		Category:      sanitizeInput(req.Category),
		Type:          core.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type))),
		PaymentMethod: core.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod))),
		IsRecurring:   req.IsRecurring,
		Date:          date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

type budgetJSON struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Limit    string `json:"limit"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
}

func toBudgetJSON(b core.CategoryBudget) budgetJSON {
	return budgetJSON{
		ID:       b.ID,
		Category: b.Category,
		Limit:    b.Limit.String(),
		Month:    b.Month,
		Year:     b.Year,
	}
}

type budgetRequest struct {
	Category string `json:"category"`
	Limit    string `json:"limit"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
}

// toCore validates the slot. A zero limit is allowed: it reads as "spend
// nothing on this category this month".
func (req budgetRequest) toCore(ownerID string) (core.CategoryBudget, error) {
	limit, err := parseLimit(req.Limit)
	if err != nil {
		return core.CategoryBudget{}, err
	}
	b := core.CategoryBudget{
		OwnerID:  ownerID,
		Category: sanitizeInput(req.Category),
		Limit:    limit,
		Month:    req.Month,
		Year:     req.Year,
	}
	if err := b.Validate(); err != nil {
		return core.CategoryBudget{}, err
	}
	return b, nil
}

type investmentJSON struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
}

func toInvestmentJSON(e core.InvestmentEntry) investmentJSON {
	return investmentJSON{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount.String(),
		Date:        e.Date.Format("2006-01-02"),
		Kind:        string(e.Kind),
	}
}

type investmentRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
}

func (req investmentRequest) toCore(ownerID string) (core.InvestmentEntry, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.InvestmentEntry{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.InvestmentEntry{}, core.ErrZeroDate
	}
	e := core.InvestmentEntry{
		OwnerID:     ownerID,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Date:        date,
		Kind:        core.InvestmentKind(strings.ToLower(strings.TrimSpace(req.Kind))),
	}
	if err := e.Validate(); err != nil {
		return core.InvestmentEntry{}, err
	}
	return e, nil
}

type settingsJSON struct {
	InitialBalance    string `json:"initial_balance"`
	InitialCreditBill string `json:"initial_credit_bill"`
	TotalCreditLimit  string `json:"total_credit_limit"`
}

func toSettingsJSON(s core.Settings) settingsJSON {
	return settingsJSON{
		InitialBalance:    s.InitialBalance.String(),
		InitialCreditBill: s.InitialCreditBill.String(),
		TotalCreditLimit:  s.TotalCreditLimit.String(),
	}
}

type summaryJSON struct {
	Income                string  `json:"income"`
	ImmediateExpense      string  `json:"immediate_expense"`
	NewCardCharges        string  `json:"new_card_charges"`
	BillPayments          string  `json:"bill_payments"`
	AvailableBalance      string  `json:"available_balance"`
	OutstandingBill       string  `json:"outstanding_bill"`
	OperationalDebitSpend string  `json:"operational_debit_spend"`
	TotalLifestyleSpend   string  `json:"total_lifestyle_spend"`
	UtilizationPercent    float64 `json:"utilization_percent"`
	UtilizationOK         bool    `json:"utilization_ok"`
}

func toSummaryJSON(s core.Summary) summaryJSON {
	return summaryJSON{
		Income:                s.Income.String(),
		ImmediateExpense:      s.ImmediateExpense.String(),
		NewCardCharges:        s.NewCardCharges.String(),
		BillPayments:          s.BillPayments.String(),
		AvailableBalance:      s.AvailableBalance.String(),
		OutstandingBill:       s.OutstandingBill.String(),
		OperationalDebitSpend: s.OperationalDebitSpend.String(),
		TotalLifestyleSpend:   s.TotalLifestyleSpend.String(),
		UtilizationPercent:    s.UtilizationPercent,
		UtilizationOK:         s.UtilizationOK,
	}
}

type categorySpendJSON struct {
	Category string  `json:"category"`
	Spent    string  `json:"spent"`
	Percent  float64 `json:"percent"`
}

type budgetStatusJSON struct {
	Budget    budgetJSON `json:"budget"`
	Spent     string     `json:"spent"`
	Ratio     float64    `json:"ratio"`
	Tier      string     `json:"tier"`
	Overshoot string     `json:"overshoot"`
}

type healthJSON struct {
	TotalSpent string  `json:"total_spent"`
	TotalLimit string  `json:"total_limit"`
	Ratio      float64 `json:"ratio"`
	Label      string  `json:"label"`
}

type overviewJSON struct {
	Summary     summaryJSON         `json:"summary"`
	Breakdown   []categorySpendJSON `json:"breakdown"`
	Budgets     []budgetStatusJSON  `json:"budgets"`
	Health      healthJSON          `json:"health"`
	RecentCards []transactionJSON   `json:"recent_card_charges"`
	Patrimony   string              `json:"patrimony"`
}

func toOverviewJSON(ov services.Overview) overviewJSON {
	out := overviewJSON{
		Summary:     toSummaryJSON(ov.Summary),
		Breakdown:   make([]categorySpendJSON, 0, len(ov.Breakdown)),
		Budgets:     make([]budgetStatusJSON, 0, len(ov.Budgets)),
		RecentCards: toTransactionListJSON(ov.RecentCards),
		Patrimony:   ov.Patrimony.String(),
		Health: healthJSON{
			TotalSpent: ov.Health.TotalSpent.String(),
			TotalLimit: ov.Health.TotalLimit.String(),
			Ratio:      ov.Health.Ratio,
			Label:      ov.Health.Label,
		},
	}
	for _, row := range ov.Breakdown {
		out.Breakdown = append(out.Breakdown, categorySpendJSON{
			Category: row.Category,
			Spent:    row.Spent.String(),
			Percent:  row.Percent,
		})
	}
	for _, st := range ov.Budgets {
		out.Budgets = append(out.Budgets, budgetStatusJSON{
			Budget:    toBudgetJSON(st.Budget),
			Spent:     st.Spent.String(),
			Ratio:     st.Ratio,
			Tier:      string(st.Tier),
			Overshoot: st.Overshoot.String(),
		})
	}
	return out
}

type monthBucketJSON struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

func toMonthBucketsJSON(buckets []core.MonthBucket) []monthBucketJSON {
	out := make([]monthBucketJSON, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, monthBucketJSON{
			Key:     b.Key,
			Label:   b.Label,
			Income:  b.Income.String(),
			Expense: b.Expense.String(),
		})
	}
	return out
}
