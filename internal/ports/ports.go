package ports

import (
	"context"

	"contas/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionStore persists ledger records. Implementations assign the
	// record identifier on create; callers never supply one.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, ownerID string, t core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, ownerID, id string, patch core.TransactionPatch) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, ownerID, id string) error
		// DeleteTransactionsByGroup removes every record sharing the given
		// recurrence-group id.
		DeleteTransactionsByGroup(ctx context.Context, ownerID, groupID string) error
		ListTransactionsByGroup(ctx context.Context, ownerID, groupID string) ([]core.Transaction, error)
		// ListTransactions returns the owner's records ordered by ascending
		// due date.
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
		ListTransactionsByMonth(ctx context.Context, ownerID string, year, month int) ([]core.Transaction, error)
		// MonthSummary aggregates open payables/receivables and per-category
		// totals for a year+month.
		MonthSummary(ctx context.Context, ownerID string, year, month int) (core.MonthSummary, error)
	}

	CategoryStore interface {
		ListCategories(ctx context.Context, ownerID string) ([]core.Category, error)
		CreateCategory(ctx context.Context, ownerID string, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, ownerID, id string, name string) (core.Category, error)
		DeleteCategory(ctx context.Context, ownerID, id string) error
	}

	// ApprovalStore backs the access gate: the auth provider authenticates,
	// this store decides who may use the ledger.
	ApprovalStore interface {
		ListAccessRequests(ctx context.Context) ([]core.AccessRequest, error)
		// RecordAccessRequest files a pending request without touching an
		// existing row's approval state.
		RecordAccessRequest(ctx context.Context, email, name string) error
		SetApproval(ctx context.Context, email string, approved bool) error
		IsApproved(ctx context.Context, email string) (bool, error)
	}

	// SheetExporter mirrors stored transactions into an external
	// spreadsheet for reporting.
	SheetExporter interface {
		// Append writes one transaction row and returns a row reference.
		Append(ctx context.Context, ownerID string, t core.Transaction) (rowRef string, err error)
		// DeleteByTransactionID removes the row previously appended for the
		// given transaction id, if present.
		DeleteByTransactionID(ctx context.Context, id string) error
	}
)
