package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"contas/internal/core"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "contas.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		Type:        core.Payable,
		Description: "Rent",
		Amount:      1200,
		DueDate:     core.NewDate(2024, 1, 15),
		CategoryID:  "cat-1",
		Status:      core.StatusPending,
	}
}

func TestTransactionCRUD(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, "owner-1", sampleTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("created transaction has no id")
	}

	got, err := repo.GetTransaction(ctx, "owner-1", created.ID)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.Description != "Rent" || got.Amount != 1200 || got.DueDate.String() != "2024-01-15" {
		t.Errorf("GetTransaction() = %+v, want original fields back", got)
	}

	// Other owners can't see it
	if _, err := repo.GetTransaction(ctx, "owner-2", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-owner get error = %v, want ErrNotFound", err)
	}

	paid := core.StatusPaid
	newAmount := 1100.0
	updated, err := repo.UpdateTransaction(ctx, "owner-1", created.ID, core.TransactionPatch{
		Status: &paid,
		Amount: &newAmount,
	})
	if err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if updated.Status != core.StatusPaid || updated.Amount != 1100 {
		t.Errorf("UpdateTransaction() = %+v, want patched fields", updated)
	}

	if err := repo.DeleteTransaction(ctx, "owner-1", created.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if _, err := repo.GetTransaction(ctx, "owner-1", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete error = %v, want ErrNotFound", err)
	}
}

func TestUpdateMissingTransaction(t *testing.T) {
	repo := testRepo(t)

	desc := "nope"
	_, err := repo.UpdateTransaction(context.Background(), "owner-1", "missing",
		core.TransactionPatch{Description: &desc})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestGroupOperations(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		tx := sampleTransaction()
		tx.RecurrenceID = "group-1"
		tx.Installment = i
		tx.TotalInstallments = 3
		tx.DueDate = tx.DueDate.AddMonths(i - 1)
		if _, err := repo.CreateTransaction(ctx, "owner-1", tx); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}
	// A record outside the group survives
	if _, err := repo.CreateTransaction(ctx, "owner-1", sampleTransaction()); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	members, err := repo.ListTransactionsByGroup(ctx, "owner-1", "group-1")
	if err != nil {
		t.Fatalf("ListTransactionsByGroup() error = %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("group has %d members, want 3", len(members))
	}
	if members[0].Installment != 1 {
		t.Errorf("first member installment = %d, want 1 (due-date order)", members[0].Installment)
	}

	if err := repo.DeleteTransactionsByGroup(ctx, "owner-1", "group-1"); err != nil {
		t.Fatalf("DeleteTransactionsByGroup() error = %v", err)
	}

	remaining, err := repo.ListTransactions(ctx, "owner-1")
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("%d records left, want 1", len(remaining))
	}

	if err := repo.DeleteTransactionsByGroup(ctx, "owner-1", ""); err == nil {
		t.Error("DeleteTransactionsByGroup() with empty group id succeeded, want error")
	}
}

func TestListTransactionsByMonth(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for _, due := range []core.Date{
		core.NewDate(2024, 1, 5),
		core.NewDate(2024, 1, 20),
		core.NewDate(2024, 2, 5),
	} {
		tx := sampleTransaction()
		tx.DueDate = due
		if _, err := repo.CreateTransaction(ctx, "owner-1", tx); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	january, err := repo.ListTransactionsByMonth(ctx, "owner-1", 2024, 1)
	if err != nil {
		t.Fatalf("ListTransactionsByMonth() error = %v", err)
	}
	if len(january) != 2 {
		t.Errorf("january has %d records, want 2", len(january))
	}
}

func TestMonthSummary(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	seed := []struct {
		typ    core.TransactionType
		status core.Status
		amount float64
	}{
		{core.Payable, core.StatusPending, 100},
		{core.Payable, core.StatusPaid, 50},
		{core.Receivable, core.StatusPending, 300},
		{core.Receivable, core.StatusReceived, 40},
	}
	for _, s := range seed {
		tx := sampleTransaction()
		tx.Type = s.typ
		tx.Status = s.status
		tx.Amount = s.amount
		if _, err := repo.CreateTransaction(ctx, "owner-1", tx); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	summary, err := repo.MonthSummary(ctx, "owner-1", 2024, 1)
	if err != nil {
		t.Fatalf("MonthSummary() error = %v", err)
	}
	if summary.Payable != 100 {
		t.Errorf("payable = %v, want 100 (paid records excluded)", summary.Payable)
	}
	if summary.Receivable != 300 {
		t.Errorf("receivable = %v, want 300 (received records excluded)", summary.Receivable)
	}
	// Balance nets everything: 300 + 40 - 100 - 50
	if summary.Balance != 190 {
		t.Errorf("balance = %v, want 190", summary.Balance)
	}
	if len(summary.ByCategory) != 1 {
		t.Errorf("ByCategory has %d entries, want 1", len(summary.ByCategory))
	}
}

func TestSeedCategories(t *testing.T) {
	repo := testRepo(t)

	categories, err := repo.ListCategories(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) == 0 {
		t.Fatal("no seed categories after migration")
	}
	for _, c := range categories {
		if !c.Type.Valid() {
			t.Errorf("seed category %q has invalid type %q", c.Name, c.Type)
		}
	}
}

func TestCategoryCRUD(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	created, err := repo.CreateCategory(ctx, "owner-1", core.Category{
		Name: "Side project",
		Type: core.Receivable,
	})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if created.Icon != "Tag" {
		t.Errorf("icon = %q, want default Tag", created.Icon)
	}

	renamed, err := repo.UpdateCategory(ctx, "owner-1", created.ID, "Freelance")
	if err != nil {
		t.Fatalf("UpdateCategory() error = %v", err)
	}
	if renamed.Name != "Freelance" {
		t.Errorf("name = %q, want Freelance", renamed.Name)
	}

	// Seed categories belong to nobody and can't be renamed
	seeds, _ := repo.ListCategories(ctx, "owner-1")
	var seedID string
	for _, c := range seeds {
		if c.ID != created.ID {
			seedID = c.ID
			break
		}
	}
	if _, err := repo.UpdateCategory(ctx, "owner-1", seedID, "Hijacked"); !errors.Is(err, ErrNotFound) {
		t.Errorf("renaming seed category error = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteCategory(ctx, "owner-1", created.ID); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
}

func TestApprovals(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	ok, err := repo.IsApproved(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("IsApproved() error = %v", err)
	}
	if ok {
		t.Error("unknown email approved")
	}

	if err := repo.RecordAccessRequest(ctx, "new@example.com", "New User"); err != nil {
		t.Fatalf("RecordAccessRequest() error = %v", err)
	}
	// Recording again keeps one row and doesn't flip approval
	if err := repo.RecordAccessRequest(ctx, "new@example.com", "New User"); err != nil {
		t.Fatalf("RecordAccessRequest() repeat error = %v", err)
	}

	requests, err := repo.ListAccessRequests(ctx)
	if err != nil {
		t.Fatalf("ListAccessRequests() error = %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("%d access requests, want 1", len(requests))
	}
	if requests[0].Approved {
		t.Error("fresh request already approved")
	}

	if err := repo.SetApproval(ctx, "new@example.com", true); err != nil {
		t.Fatalf("SetApproval() error = %v", err)
	}
	ok, err = repo.IsApproved(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("IsApproved() error = %v", err)
	}
	if !ok {
		t.Error("approved email still rejected")
	}

	if err := repo.RecordAccessRequest(ctx, "new@example.com", "New User"); err != nil {
		t.Fatalf("RecordAccessRequest() after approval error = %v", err)
	}
	if ok, _ := repo.IsApproved(ctx, "new@example.com"); !ok {
		t.Error("re-recording a request revoked approval")
	}
}

func TestSyncBookkeeping(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, "owner-1", sampleTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	pending, err := repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSync() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != created.ID {
		t.Fatalf("pending = %+v, want the fresh record", pending)
	}

	rec, err := repo.GetTransactionForSync(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTransactionForSync() error = %v", err)
	}
	if rec.OwnerID != "owner-1" {
		t.Errorf("owner = %q, want owner-1", rec.OwnerID)
	}

	if err := repo.MarkSynced(ctx, created.ID); err != nil {
		t.Fatalf("MarkSynced() error = %v", err)
	}
	pending, err = repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSync() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after MarkSynced = %+v, want none", pending)
	}

	// An update re-queues the record
	desc := "Rent (updated)"
	if _, err := repo.UpdateTransaction(ctx, "owner-1", created.ID, core.TransactionPatch{Description: &desc}); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	pending, _ = repo.ListPendingSync(ctx, 10)
	if len(pending) != 1 {
		t.Errorf("pending after update = %+v, want the record back", pending)
	}
	if len(pending) == 1 && pending[0].Version != 2 {
		t.Errorf("version = %d, want 2 after one update", pending[0].Version)
	}
}
