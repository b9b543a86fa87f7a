package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contas/internal/amqp"
	"contas/internal/ports"
	"contas/internal/storage"
)

// SyncStore is the slice of the repository the worker needs. Narrowed so
// tests can fake it.
type SyncStore interface {
	GetTransactionForSync(ctx context.Context, id string) (storage.SyncRecord, error)
	ListPendingSync(ctx context.Context, limit int) ([]storage.PendingSyncTransaction, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

// SyncWorker mirrors stored transactions into the spreadsheet. It consumes
// sync and delete messages and doubles as a poller for records whose
// messages were lost.
type SyncWorker struct {
	store     SyncStore
	exporter  ports.SheetExporter
	batchSize int
}

func NewSyncWorker(store SyncStore, exporter ports.SheetExporter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		store:     store,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage mirrors one transaction into the spreadsheet. A record
// deleted between publish and consume is treated as done.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	record, err := w.store.GetTransactionForSync(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction gone before sync, skipping", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get transaction for sync: %w", err)
	}

	return w.export(ctx, record)
}

// HandleDeleteMessage removes the spreadsheet row for a deleted
// transaction. Group deletes arrive as one message per member, published
// before the SQLite rows disappear.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.TransactionDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message",
		"id", msg.ID,
		"group_id", msg.GroupID)

	if msg.ID == "" {
		slog.WarnContext(ctx, "Delete message carries no transaction id, dropping",
			"group_id", msg.GroupID)
		return nil
	}

	if err := w.exporter.DeleteByTransactionID(ctx, msg.ID); err != nil {
		return fmt.Errorf("delete sheet row: %w", err)
	}
	return nil
}

// ProcessPendingTransactions mirrors records still marked pending. Backup
// path for lost messages; errors on individual records are logged and the
// batch continues.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.store.ListPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		record, err := w.store.GetTransactionForSync(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load pending transaction", "id", p.ID, "error", err)
			continue
		}
		if err := w.export(ctx, record); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending transaction", "id", p.ID, "error", err)
		}
	}
	return nil
}

// StartupSyncCheck drains the pending backlog once, with a larger batch, so
// a restarted worker catches up on anything missed while it was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.ListPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		record, err := w.store.GetTransactionForSync(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load transaction for startup sync",
				"id", p.ID, "error", err)
			failed++
			continue
		}
		if err := w.export(ctx, record); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *SyncWorker) export(ctx context.Context, record storage.SyncRecord) error {
	ref, err := w.exporter.Append(ctx, record.OwnerID, record.Transaction)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, record.Transaction.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error",
				"id", record.Transaction.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.store.MarkSynced(ctx, record.Transaction.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced",
			"id", record.Transaction.ID, "error", err)
		// The row is on the sheet; don't fail the message
	}

	slog.InfoContext(ctx, "Synced transaction",
		"id", record.Transaction.ID,
		"sheet_ref", ref)
	return nil
}
