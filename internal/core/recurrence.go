package core

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRecurrenceCount is the number of monthly instances materialized
// when a transaction is flagged recurring at creation time.
const DefaultRecurrenceCount = 12

// Interval is a calendar step between recurring instances.
type Interval struct {
	Years  int
	Months int
	Days   int
}

// Monthly is the recurrence interval used by the product: one calendar month.
var Monthly = Interval{Months: 1}

// ExpandRecurring materializes count discrete instances of the seed
// transaction, stepping the date by interval each time via calendar
// arithmetic. Day-of-month is preserved except where the target month is
// shorter, in which case the date normalizes forward (Jan 31 + 1 month is
// Mar 2 or Mar 3); this native overflow is accepted behavior, not clamped.
//
// Each instance gets a fresh id and a CreatedAt offset by its index so the
// batch keeps a deterministic order before server timestamps settle. The
// instances are plain records: recurrence is exploded here, never stored as
// a rule.
func ExpandRecurring(seed Transaction, count int, interval Interval, now time.Time) []Transaction {
	if count < 1 {
		count = 1
	}
	out := make([]Transaction, 0, count)
	for i := 0; i < count; i++ {
		inst := seed
		inst.ID = uuid.New().String()
		inst.Date = Date{Time: seed.Date.AddDate(interval.Years*i, interval.Months*i, interval.Days*i)}
		inst.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		inst.IsRecurring = true
		out = append(out, inst)
	}
	return out
}
