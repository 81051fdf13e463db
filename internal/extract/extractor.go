// Package extract turns free-form assistant input (chat text or a receipt
// photo) into a transaction candidate. The candidate is a suggestion: the
// caller validates and stores it through the normal write path.
package extract

import (
	"context"

	"teto/internal/core"
)

// Candidate is a proposed transaction assembled from unstructured input.
// Fields the extractor could not determine carry defaults, never garbage.
type Candidate struct {
	Description   string
	Amount        core.Money
	Category      string
	Type          core.TransactionType
	PaymentMethod core.PaymentMethod
	IsRecurring   bool
	Date          core.Date
}

// Extractor parses text and/or an image into a candidate plus a
// conversational reply. A failed extraction is not an error: the candidate
// is nil and the reply explains what was missing. Errors are reserved for
// infrastructure faults (e.g. the OCR engine).
type Extractor interface {
	Extract(ctx context.Context, text string, image []byte) (*Candidate, string, error)
}
