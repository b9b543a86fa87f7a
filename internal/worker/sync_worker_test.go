package worker

import (
	"context"
	"errors"
	"testing"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/storage"
)

type fakeSyncStore struct {
	records    map[string]storage.SyncRecord
	pending    []storage.PendingSyncTransaction
	synced     []string
	syncErrors []string
}

func (f *fakeSyncStore) GetTransactionForSync(_ context.Context, id string) (storage.SyncRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return storage.SyncRecord{}, storage.ErrNotFound
	}
	return rec, nil
}

func (f *fakeSyncStore) ListPendingSync(_ context.Context, limit int) ([]storage.PendingSyncTransaction, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeSyncStore) MarkSynced(_ context.Context, id string) error {
	f.synced = append(f.synced, id)
	return nil
}

func (f *fakeSyncStore) MarkSyncError(_ context.Context, id string) error {
	f.syncErrors = append(f.syncErrors, id)
	return nil
}

type fakeExporter struct {
	appended  []string
	deleted   []string
	appendErr error
}

func (f *fakeExporter) Append(_ context.Context, _ string, t core.Transaction) (string, error) {
	if f.appendErr != nil {
		return "", f.appendErr
	}
	f.appended = append(f.appended, t.ID)
	return "Transactions!A2:H2", nil
}

func (f *fakeExporter) DeleteByTransactionID(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func syncRecord(id string) storage.SyncRecord {
	return storage.SyncRecord{
		OwnerID: "owner-1",
		Transaction: core.Transaction{
			ID:          id,
			Type:        core.Payable,
			Description: "Rent",
			Amount:      500,
			DueDate:     core.NewDate(2024, 3, 1),
			CategoryID:  "cat-1",
			Status:      core.StatusPending,
		},
	}
}

func TestHandleSyncMessage(t *testing.T) {
	store := &fakeSyncStore{records: map[string]storage.SyncRecord{
		"tx-1": syncRecord("tx-1"),
	}}
	exporter := &fakeExporter{}
	w := NewSyncWorker(store, exporter, 10)

	msg := amqp.NewTransactionSyncMessage("tx-1", 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}
	if len(exporter.appended) != 1 || exporter.appended[0] != "tx-1" {
		t.Errorf("appended = %v, want [tx-1]", exporter.appended)
	}
	if len(store.synced) != 1 || store.synced[0] != "tx-1" {
		t.Errorf("marked synced = %v, want [tx-1]", store.synced)
	}
}

func TestHandleSyncMessageGoneRecord(t *testing.T) {
	store := &fakeSyncStore{records: map[string]storage.SyncRecord{}}
	exporter := &fakeExporter{}
	w := NewSyncWorker(store, exporter, 10)

	msg := amqp.NewTransactionSyncMessage("missing", 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncMessage() for deleted record = %v, want nil", err)
	}
	if len(exporter.appended) != 0 {
		t.Errorf("appended %v for a deleted record", exporter.appended)
	}
}

func TestHandleSyncMessageAppendFailureMarksError(t *testing.T) {
	store := &fakeSyncStore{records: map[string]storage.SyncRecord{
		"tx-1": syncRecord("tx-1"),
	}}
	exporter := &fakeExporter{appendErr: errors.New("quota exceeded")}
	w := NewSyncWorker(store, exporter, 10)

	msg := amqp.NewTransactionSyncMessage("tx-1", 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Fatal("HandleSyncMessage() succeeded, want append error")
	}
	if len(store.syncErrors) != 1 || store.syncErrors[0] != "tx-1" {
		t.Errorf("marked sync error = %v, want [tx-1]", store.syncErrors)
	}
	if len(store.synced) != 0 {
		t.Errorf("marked synced = %v for failed append", store.synced)
	}
}

func TestHandleDeleteMessage(t *testing.T) {
	store := &fakeSyncStore{}
	exporter := &fakeExporter{}
	w := NewSyncWorker(store, exporter, 10)

	msg := amqp.NewTransactionDeleteMessage("tx-9", "group-1")
	if err := w.HandleDeleteMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleDeleteMessage() error = %v", err)
	}
	if len(exporter.deleted) != 1 || exporter.deleted[0] != "tx-9" {
		t.Errorf("deleted = %v, want [tx-9]", exporter.deleted)
	}

	// A message with no id is malformed; drop it without touching the sheet
	if err := w.HandleDeleteMessage(context.Background(), amqp.NewTransactionDeleteMessage("", "group-1")); err != nil {
		t.Fatalf("HandleDeleteMessage() for empty id = %v, want nil", err)
	}
	if len(exporter.deleted) != 1 {
		t.Errorf("deleted = %v after malformed message", exporter.deleted)
	}
}

func TestProcessPendingTransactions(t *testing.T) {
	store := &fakeSyncStore{
		records: map[string]storage.SyncRecord{
			"tx-1": syncRecord("tx-1"),
			"tx-2": syncRecord("tx-2"),
		},
		pending: []storage.PendingSyncTransaction{
			{ID: "tx-1", Version: 1},
			{ID: "tx-2", Version: 1},
		},
	}
	exporter := &fakeExporter{}
	w := NewSyncWorker(store, exporter, 10)

	if err := w.ProcessPendingTransactions(context.Background()); err != nil {
		t.Fatalf("ProcessPendingTransactions() error = %v", err)
	}
	if len(exporter.appended) != 2 {
		t.Errorf("appended %d rows, want 2", len(exporter.appended))
	}
	if len(store.synced) != 2 {
		t.Errorf("marked %d synced, want 2", len(store.synced))
	}
}

func TestProcessPendingRespectsBatchSize(t *testing.T) {
	store := &fakeSyncStore{
		records: map[string]storage.SyncRecord{
			"tx-1": syncRecord("tx-1"),
			"tx-2": syncRecord("tx-2"),
			"tx-3": syncRecord("tx-3"),
		},
		pending: []storage.PendingSyncTransaction{
			{ID: "tx-1"}, {ID: "tx-2"}, {ID: "tx-3"},
		},
	}
	exporter := &fakeExporter{}
	w := NewSyncWorker(store, exporter, 2)

	if err := w.ProcessPendingTransactions(context.Background()); err != nil {
		t.Fatalf("ProcessPendingTransactions() error = %v", err)
	}
	if len(exporter.appended) != 2 {
		t.Errorf("appended %d rows with batch size 2, want 2", len(exporter.appended))
	}
}
