package core

import "sort"

// MonthBucket is one month of the income-vs-expense report.
type MonthBucket struct {
	Key     string // YYYY-MM, zero-padded; lexical order is chronological
	Label   string // short month name plus two-digit year, e.g. "Mar/24"
	Income  Money
	Expense Money
}

var shortMonths = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// MonthlyFlow buckets the full transaction history by calendar month,
// summing income and expense separately, sorted chronologically. Months with
// no transactions simply do not appear; the axis is not gap-filled.
func MonthlyFlow(txs []Transaction) []MonthBucket {
	buckets := make(map[string]*MonthBucket)
	for _, t := range txs {
		key := t.Date.Key()
		b, ok := buckets[key]
		if !ok {
			b = &MonthBucket{
				Key:   key,
				Label: monthLabel(t.Date),
			}
			buckets[key] = b
		}
		switch t.Type {
		case Income:
			b.Income.Cents += t.Amount.Cents
		case Expense:
			b.Expense.Cents += t.Amount.Cents
		}
	}

	out := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func monthLabel(d Date) string {
	return shortMonths[int(d.Month())-1] + "/" + d.Format("06")
}
