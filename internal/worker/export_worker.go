// Package worker consumes record events and mirrors the affected owner's
// transaction history into the export spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"teto/internal/amqp"
	"teto/internal/sheets"
	"teto/internal/store"
)

// ExportWorker re-exports an owner's ledger whenever one of their records
// changes. Exports are idempotent full rewrites, so replayed or reordered
// events converge on the same sheet.
type ExportWorker struct {
	store    store.TransactionStore
	exporter sheets.LedgerExporter

	mu         sync.Mutex
	lastRun    map[string]time.Time
	pending    map[string]struct{}
	debounce   time.Duration
	sweepEvery time.Duration
}

func NewExportWorker(s store.TransactionStore, exporter sheets.LedgerExporter) *ExportWorker {
	return &ExportWorker{
		store:      s,
		exporter:   exporter,
		lastRun:    make(map[string]time.Time),
		pending:    make(map[string]struct{}),
		debounce:   2 * time.Second,
		sweepEvery: time.Minute,
	}
}

// HandleRecordEvent processes one event. Only transaction-bearing changes
// trigger an export; budget and settings events carry nothing the sheet
// shows. Bursts for the same owner inside the debounce window are deferred
// to the catch-up sweep, since the first export may have read the store
// before the later writes landed.
func (w *ExportWorker) HandleRecordEvent(ctx context.Context, event *amqp.RecordEvent) error {
	if event.Collection != "transactions" && event.Collection != "all" {
		return nil
	}
	if w.recentlyExported(event.OwnerID) {
		w.markPending(event.OwnerID)
		slog.DebugContext(ctx, "Owner recently exported, deferring to catch-up",
			"owner_id", event.OwnerID)
		return nil
	}
	return w.exportOwner(ctx, event.OwnerID)
}

func (w *ExportWorker) exportOwner(ctx context.Context, ownerID string) error {
	txs, err := w.store.ListTransactions(ctx, ownerID)
	if err != nil {
		w.markPending(ownerID)
		return fmt.Errorf("load transactions: %w", err)
	}
	if err := w.exporter.ExportTransactions(ctx, ownerID, txs); err != nil {
		w.markPending(ownerID)
		return fmt.Errorf("export transactions: %w", err)
	}
	w.markExported(ownerID)

	slog.InfoContext(ctx, "Exported owner ledger",
		"owner_id", ownerID,
		"transactions", len(txs))
	return nil
}

func (w *ExportWorker) recentlyExported(ownerID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	last, ok := w.lastRun[ownerID]
	return ok && time.Since(last) < w.debounce
}

// markExported records the run only after success, so a failed export is
// retried as soon as the event comes back around.
func (w *ExportWorker) markExported(ownerID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastRun[ownerID] = time.Now()
	delete(w.pending, ownerID)
}

func (w *ExportWorker) markPending(ownerID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[ownerID] = struct{}{}
}

func (w *ExportWorker) takePending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	owners := make([]string, 0, len(w.pending))
	for id := range w.pending {
		owners = append(owners, id)
	}
	clear(w.pending)
	return owners
}

// Run consumes events until the context is cancelled.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeRecordEvents(ctx, func(event *amqp.RecordEvent) error {
		return w.HandleRecordEvent(ctx, event)
	})
}

// RunCatchUp periodically re-exports owners whose events were deferred or
// whose export failed, so debounced bursts and transient sheet outages do
// not lose changes. Runs alongside Run until the context is cancelled.
func (w *ExportWorker) RunCatchUp(ctx context.Context) error {
	ticker := time.NewTicker(w.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.CatchUp(ctx)
		}
	}
}

// CatchUp exports every pending owner once. A failure leaves the owner
// pending for the next sweep.
func (w *ExportWorker) CatchUp(ctx context.Context) {
	for _, ownerID := range w.takePending() {
		if err := w.exportOwner(ctx, ownerID); err != nil {
			slog.ErrorContext(ctx, "Catch-up export failed",
				"owner_id", ownerID, "error", err)
		}
	}
}
