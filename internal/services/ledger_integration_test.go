package services

import (
	"context"
	"path/filepath"
	"testing"

	"contas/internal/storage"
)

// Installment batches persist concurrently, so this exercises Record
// against the real SQLite repository where the writers contend for the
// database lock rather than a mutex in a fake.
func TestRecordInstallmentsAgainstSQLite(t *testing.T) {
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "contas.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	defer repo.Close()

	svc := NewLedgerService(repo, nil)
	ctx := context.Background()

	draft := testDraft()
	draft.Installments = 12

	for batch := 0; batch < 5; batch++ {
		stored, err := svc.Record(ctx, "owner-1", draft)
		if err != nil {
			t.Fatalf("Record() batch %d error = %v", batch, err)
		}
		if len(stored) != 12 {
			t.Fatalf("Record() batch %d stored %d records, want 12", batch, len(stored))
		}
	}

	all, err := repo.ListTransactions(ctx, "owner-1")
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(all) != 60 {
		t.Fatalf("ListTransactions() returned %d records, want 60", len(all))
	}
	for _, tx := range all {
		if tx.Amount != 100.0 {
			t.Errorf("installment amount = %v, want 100", tx.Amount)
		}
		if tx.RecurrenceID == "" {
			t.Error("installment has no group ID")
		}
	}
}
