package core

import "sort"

// FilterMonth returns the transactions attributed to the given calendar
// month. Dates are noon-anchored (see NewDate), so the comparison cannot
// slip across a month boundary under timezone offsets of up to 11 hours.
func FilterMonth(txs []Transaction, year, month int) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		d := DateOf(t.Date.Time)
		if d.Year() == year && int(d.Month()) == month {
			out = append(out, t)
		}
	}
	return out
}

// BudgetsForMonth returns the budgets tagged with exactly the given month
// and year. Budgets are independently tagged at creation time and never fall
// back to another month's ceiling.
func BudgetsForMonth(budgets []CategoryBudget, year, month int) []CategoryBudget {
	out := make([]CategoryBudget, 0, len(budgets))
	for _, b := range budgets {
		if b.Year == year && b.Month == month {
			out = append(out, b)
		}
	}
	return out
}

// SortChronological orders transactions by date ascending, breaking same-day
// ties with the creation timestamp so intra-day order is stable.
func SortChronological(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.Before(txs[j].Date.Time)
		}
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})
}

// RecentCardCharges returns up to n most recent credit-card expenses,
// newest first.
func RecentCardCharges(txs []Transaction, n int) []Transaction {
	cards := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Type == Expense && t.PaymentMethod == CreditCard {
			cards = append(cards, t)
		}
	}
	sort.SliceStable(cards, func(i, j int) bool {
		if !cards[i].Date.Equal(cards[j].Date.Time) {
			return cards[i].Date.After(cards[j].Date.Time)
		}
		return cards[i].CreatedAt.After(cards[j].CreatedAt)
	})
	if len(cards) > n {
		cards = cards[:n]
	}
	return cards
}
