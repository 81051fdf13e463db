package core

import "sort"

// Budget tiers. Boundaries are inclusive on the upper edge: a ratio of
// exactly 0.7 is still Healthy and exactly 1.0 is still Watch. The
// comparisons below use integer cross-multiplication so the boundaries are
// exact regardless of floating-point representation.
type Tier string

const (
	TierHealthy Tier = "healthy"
	TierWatch   Tier = "watch"
	TierOver    Tier = "over"
)

// CategorySpend is the total expense for one category within a snapshot.
type CategorySpend struct {
	Category string
	Spent    Money
	Percent  float64 // share of total category spend, 0 when the total is 0
}

// BudgetStatus pairs a monthly budget with the observed spend and its tier.
type BudgetStatus struct {
	Budget    CategoryBudget
	Spent     Money
	Ratio     float64 // spend over max(limit, 1 cent)
	Tier      Tier
	Overshoot Money // spent - limit when Tier == TierOver, zero otherwise
}

// HealthReport is the aggregate spend-to-limit classification across every
// budget active in the selected month.
type HealthReport struct {
	TotalSpent Money
	TotalLimit Money
	Ratio      float64
	Label      string // excellent | stable | critical
}

// SpendByCategory groups expense transactions by category, summing amounts.
// The bill-payment sentinel is excluded: settling a bill is not spending in
// a category, even though it reduces the outstanding bill. Results are
// sorted by descending spend, with Percent filled relative to the total.
func SpendByCategory(txs []Transaction) []CategorySpend {
	sums := make(map[string]int64)
	for _, t := range txs {
		if t.Type != Expense || t.Category == BillPaymentCategory {
			continue
		}
		sums[t.Category] += t.Amount.Cents
	}

	var total int64
	out := make([]CategorySpend, 0, len(sums))
	for cat, cents := range sums {
		total += cents
		out = append(out, CategorySpend{Category: cat, Spent: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spent.Cents != out[j].Spent.Cents {
			return out[i].Spent.Cents > out[j].Spent.Cents
		}
		return out[i].Category < out[j].Category
	})
	if total > 0 {
		for i := range out {
			out[i].Percent = float64(out[i].Spent.Cents) / float64(total) * 100
		}
	}
	return out
}

// classify applies the shared three-tier step function. spent*10 <= limit*7
// is the exact integer form of ratio <= 0.7.
func classify(spentCents, limitCents int64) Tier {
	if spentCents*10 <= limitCents*7 {
		return TierHealthy
	}
	if spentCents <= limitCents {
		return TierWatch
	}
	return TierOver
}

// ratioOf divides spend by the limit, substituting one cent for a zero limit
// so the ratio is always finite.
func ratioOf(spentCents, limitCents int64) float64 {
	if limitCents < 1 {
		limitCents = 1
	}
	return float64(spentCents) / float64(limitCents)
}

// ClassifyBudgets computes the per-budget utilization for every budget,
// matching spend by exact category string. Transactions should already be
// filtered to the budget's month.
func ClassifyBudgets(txs []Transaction, budgets []CategoryBudget) []BudgetStatus {
	spend := make(map[string]int64)
	for _, t := range txs {
		if t.Type != Expense || t.Category == BillPaymentCategory {
			continue
		}
		spend[t.Category] += t.Amount.Cents
	}

	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := spend[b.Category]
		st := BudgetStatus{
			Budget: b,
			Spent:  Money{Cents: spent},
			Ratio:  ratioOf(spent, b.Limit.Cents),
			Tier:   classify(spent, b.Limit.Cents),
		}
		if st.Tier == TierOver {
			st.Overshoot = Money{Cents: spent - b.Limit.Cents}
		}
		out = append(out, st)
	}
	return out
}

// FinancialHealth classifies the aggregate spend against the aggregate limit
// using the same tier boundaries as the per-budget classification. All
// category spend counts toward the total, budgeted or not, mirroring the
// per-category grouping (sentinel excluded).
func FinancialHealth(txs []Transaction, budgets []CategoryBudget) HealthReport {
	var spent int64
	for _, t := range txs {
		if t.Type != Expense || t.Category == BillPaymentCategory {
			continue
		}
		spent += t.Amount.Cents
	}
	var limit int64
	for _, b := range budgets {
		limit += b.Limit.Cents
	}

	r := HealthReport{
		TotalSpent: Money{Cents: spent},
		TotalLimit: Money{Cents: limit},
		Ratio:      ratioOf(spent, limit),
	}
	// The aggregate label is strict at the lower boundary (ratio exactly 0.7
	// is already "stable"), unlike the per-budget tier which is inclusive.
	// A zero total limit counts as one cent, matching ratioOf.
	effLimit := limit
	if effLimit < 1 {
		effLimit = 1
	}
	switch {
	case spent*10 < effLimit*7:
		r.Label = "excellent"
	case spent <= effLimit:
		r.Label = "stable"
	default:
		r.Label = "critical"
	}
	return r
}
