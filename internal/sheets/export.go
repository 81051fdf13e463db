// Package sheets mirrors an owner's transaction history into a Google
// spreadsheet. The export is full-replacement: every run rewrites the
// owner's tab from the store, so missed events only delay the mirror,
// never corrupt it.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"teto/internal/core"
)

// LedgerExporter is the outbound port the export worker writes through.
type LedgerExporter interface {
	ExportTransactions(ctx context.Context, ownerID string, txs []core.Transaction) error
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
}

var _ LedgerExporter = (*Client)(nil)

// NewFromEnv builds a client from service-account credentials.
// Required: GOOGLE_SPREADSHEET_ID. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Optional: SHEETS_EXPORT_SHEET_NAME
// (default "Ledger").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetBase := strings.TrimSpace(os.Getenv("SHEETS_EXPORT_SHEET_NAME"))
	if sheetBase == "" {
		sheetBase = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	var credentialsJSON []byte

	switch {
	case os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") != "":
		credentialsJSON = []byte(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	default:
		path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
		if path == "" {
			path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		}
		if path == "" {
			return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
		}
		var err error
		credentialsJSON, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportTransactions rewrites the owner's tab with the full history. The
// previous contents are cleared first so deletions propagate.
func (c *Client) ExportTransactions(ctx context.Context, ownerID string, txs []core.Transaction) error {
	tab := c.tabName(ownerID)

	if _, err := c.svc.Spreadsheets.Values.
		Clear(c.spreadsheetID, tab, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", tab, err)
	}

	body := &gsheet.ValueRange{Values: TransactionRows(txs)}
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, tab+"!A1", body).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", tab, err)
	}
	return nil
}

func (c *Client) tabName(ownerID string) string {
	// One tab per owner keeps histories separate; sheet names cap at 100
	// chars, owner ids are uuids and fit comfortably.
	return c.sheetBase + " " + ownerID
}

// TransactionRows builds the spreadsheet rows: a header plus one row per
// transaction in chronological order.
func TransactionRows(txs []core.Transaction) [][]interface{} {
	rows := make([][]interface{}, 0, len(txs)+1)
	rows = append(rows, []interface{}{
		"Date", "Description", "Amount", "Category", "Type", "Method", "Recurring",
	})
	for _, t := range txs {
		rows = append(rows, []interface{}{
			t.Date.Format("2006-01-02"),
			t.Description,
			t.Amount.String(),
			t.Category,
			string(t.Type),
			string(t.PaymentMethod),
			t.IsRecurring,
		})
	}
	return rows
}
