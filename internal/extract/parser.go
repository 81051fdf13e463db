package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"teto/internal/core"
)

// Parser is the rule-based text extractor. It needs no model or network:
// amounts, dates and keywords are matched directly, and the category is
// fuzzy-matched against the owner's known category list.
type Parser struct {
	now func() time.Time
}

func NewParser() *Parser {
	return &Parser{now: time.Now}
}

var _ Extractor = (*Parser)(nil)

var (
	amountRE = regexp.MustCompile(`(?:R?\$\s*)?(\d+(?:[.,]\d{1,2})?)`)
	isoRE    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
)

var incomeWords = []string{
	"received", "salary", "income", "earned", "refund", "got paid", "payment from",
}

var recurringWords = []string{
	"every month", "monthly", "subscription", "recurring",
}

// categoryHints maps common spending words to the seed categories. Checked
// before the fuzzy match so "groceries" lands on Food rather than nothing.
var categoryHints = map[string]string{
	"grocer":     "Food",
	"market":     "Food",
	"restaurant": "Food",
	"lunch":      "Food",
	"dinner":     "Food",
	"coffee":     "Food",
	"uber":       "Transport",
	"taxi":       "Transport",
	"bus":        "Transport",
	"train":      "Transport",
	"fuel":       "Transport",
	"gas":        "Transport",
	"movie":      "Leisure",
	"cinema":     "Leisure",
	"game":       "Leisure",
	"bar":        "Leisure",
	"pharmacy":   "Health",
	"doctor":     "Health",
	"dentist":    "Health",
	"gym":        "Health",
	"rent":       "Housing",
	"mortgage":   "Housing",
	"electric":   "Housing",
	"internet":   "Housing",
	"salary":     "Income",
	"course":     "Education",
	"tuition":    "Education",
	"book":       "Education",
	"netflix":    "Subscriptions",
	"spotify":    "Subscriptions",
	"streaming":  "Subscriptions",
}

// Extract parses chat text into a candidate. The image argument is ignored
// here; see the OCR extractor for the receipt path.
func (p *Parser) Extract(_ context.Context, text string, _ []byte) (*Candidate, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "Tell me what you spent or received, for example: \"spent 25.90 on groceries\".", nil
	}

	cents, ok := findAmount(text)
	if !ok {
		return nil, "Sorry, I couldn't find an amount in that. Try something like \"spent 25.90 on groceries\".", nil
	}

	lower := strings.ToLower(text)
	c := &Candidate{
		Description:   describe(text),
		Amount:        core.Money{Cents: cents},
		Type:          core.Expense,
		PaymentMethod: core.Debit,
		Date:          p.findDate(lower),
	}
	for _, w := range incomeWords {
		if strings.Contains(lower, w) {
			c.Type = core.Income
			break
		}
	}
	switch {
	case strings.Contains(lower, "credit card") || strings.Contains(lower, "on card") || strings.Contains(lower, "credit"):
		c.PaymentMethod = core.CreditCard
	case strings.Contains(lower, "cash"):
		c.PaymentMethod = core.Cash
	}
	for _, w := range recurringWords {
		if strings.Contains(lower, w) {
			c.IsRecurring = true
			break
		}
	}
	c.Category = GuessCategory(lower, core.SeedCategories)
	if c.Category == "" {
		if c.Type == core.Income {
			c.Category = "Income"
		} else {
			c.Category = core.SeedCategories[0]
		}
	}

	reply := fmt.Sprintf("Got it: %s, %s under %s. Say the word and I'll save it.",
		c.Description, c.Amount.String(), c.Category)
	return c, reply, nil
}

// findAmount returns the first parseable decimal in the text, in cents.
// Digits that are part of an ISO date are not amounts.
func findAmount(text string) (int64, bool) {
	var dateStart, dateEnd = -1, -1
	if loc := isoRE.FindStringIndex(text); loc != nil {
		dateStart, dateEnd = loc[0], loc[1]
	}
	for _, m := range amountRE.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		if start >= dateStart && end <= dateEnd {
			continue
		}
		cents, err := core.ParseDecimalToCents(text[start:end])
		if err != nil {
			continue
		}
		return cents, true
	}
	return 0, false
}

func (p *Parser) findDate(lower string) core.Date {
	if m := isoRE.FindStringSubmatch(lower); m != nil {
		var y, mo, d int
		fmt.Sscanf(m[0], "%d-%d-%d", &y, &mo, &d)
		if mo >= 1 && mo <= 12 && d >= 1 && d <= 31 {
			return core.NewDate(y, mo, d)
		}
	}
	today := core.DateOf(p.now())
	if strings.Contains(lower, "yesterday") {
		return core.DateOf(p.now().AddDate(0, 0, -1))
	}
	return today
}

// GuessCategory picks the best category for the text: keyword hints first,
// then a fuzzy token match (edit distance at most 2) against the known
// category names.
func GuessCategory(lower string, known []string) string {
	for hint, cat := range categoryHints {
		if strings.Contains(lower, hint) {
			for _, k := range known {
				if k == cat {
					return cat
				}
			}
		}
	}

	best := ""
	bestDist := 3
	for _, token := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(token) < 3 {
			continue
		}
		for _, cat := range known {
			d := levenshtein.ComputeDistance(token, strings.ToLower(cat))
			if d < bestDist {
				bestDist = d
				best = cat
			}
		}
	}
	return best
}

// describe trims the text into a usable description.
func describe(text string) string {
	desc := strings.Join(strings.Fields(text), " ")
	if len(desc) > 200 {
		desc = desc[:200]
	}
	return desc
}
