package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/ports"
)

// SyncPublisher publishes spreadsheet-sync messages. The AMQP client
// satisfies it; a nil publisher disables mirroring.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id string, version int64) error
	PublishTransactionDelete(ctx context.Context, msg *amqp.TransactionDeleteMessage) error
}

// LedgerService orchestrates transaction operations: expanding drafts into
// stored records, deriving effective statuses on read, and publishing sync
// messages after local writes succeed.
type LedgerService struct {
	store     ports.TransactionStore
	publisher SyncPublisher
}

func NewLedgerService(store ports.TransactionStore, publisher SyncPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// Record validates a draft, expands it into one or more records and stores
// them. Installment records get a "(n/total)" suffix on the description.
// When any record of a multi-record batch fails to store, the already-stored
// siblings are removed so no partial series remains.
func (s *LedgerService) Record(ctx context.Context, ownerID string, draft core.Draft) ([]core.Transaction, error) {
	if draft.Status == "" {
		draft.Status = core.StatusPending
	}
	if draft.Recurrence == "" {
		draft.Recurrence = core.RecurrenceNone
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	records, err := core.Expand(draft)
	if err != nil {
		return nil, err
	}

	if draft.Installments > 1 {
		for i := range records {
			records[i].Description = fmt.Sprintf("%s (%d/%d)",
				draft.Description, records[i].Installment, records[i].TotalInstallments)
		}
	}

	stored := make([]core.Transaction, len(records))
	g, gctx := errgroup.WithContext(ctx)
	for i, record := range records {
		g.Go(func() error {
			saved, err := s.store.CreateTransaction(gctx, ownerID, record)
			if err != nil {
				return fmt.Errorf("store record %d of %d: %w", i+1, len(records), err)
			}
			stored[i] = saved
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.compensate(ctx, ownerID, records)
		return nil, err
	}

	for _, t := range stored {
		s.publishSync(ctx, t.ID)
	}

	slog.InfoContext(ctx, "Recorded transactions",
		"owner", ownerID,
		"count", len(stored),
		"type", draft.Type,
		"recurrence", draft.Recurrence,
		"installments", draft.Installments)

	return stored, nil
}

// compensate removes whatever part of a failed batch was already stored.
// Single records carry no group id and need no cleanup beyond the failed
// insert itself.
func (s *LedgerService) compensate(ctx context.Context, ownerID string, records []core.Transaction) {
	if len(records) == 0 || records[0].RecurrenceID == "" {
		return
	}
	groupID := records[0].RecurrenceID
	if err := s.store.DeleteTransactionsByGroup(ctx, ownerID, groupID); err != nil {
		slog.ErrorContext(ctx, "Failed to clean up partial batch",
			"owner", ownerID, "group_id", groupID, "error", err)
		return
	}
	slog.WarnContext(ctx, "Removed partially stored batch",
		"owner", ownerID, "group_id", groupID)
}

// Get returns one record with its effective status.
func (s *LedgerService) Get(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Status = core.EffectiveStatus(t, core.Today())
	return t, nil
}

// List returns the owner's records, optionally restricted to one month
// (year > 0), with effective statuses applied.
func (s *LedgerService) List(ctx context.Context, ownerID string, year, month int) ([]core.Transaction, error) {
	var (
		records []core.Transaction
		err     error
	)
	if year > 0 {
		records, err = s.store.ListTransactionsByMonth(ctx, ownerID, year, month)
	} else {
		records, err = s.store.ListTransactions(ctx, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	today := core.Today()
	for i := range records {
		records[i].Status = core.EffectiveStatus(records[i], today)
	}
	return records, nil
}

// Update applies a partial change to one record and republishes it for sync.
func (s *LedgerService) Update(ctx context.Context, ownerID, id string, patch core.TransactionPatch) (core.Transaction, error) {
	if err := patch.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, ownerID, id, patch)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishSync(ctx, updated.ID)
	updated.Status = core.EffectiveStatus(updated, core.Today())
	return updated, nil
}

// Delete removes one record and publishes a delete message for its
// spreadsheet row.
func (s *LedgerService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteTransaction(ctx, ownerID, id); err != nil {
		return err
	}
	s.publishDelete(ctx, amqp.NewTransactionDeleteMessage(id, ""))
	return nil
}

// DeleteGroup removes every record of a recurrence or installment series.
// Member ids are captured before the rows go so the worker can still find
// their spreadsheet rows.
func (s *LedgerService) DeleteGroup(ctx context.Context, ownerID, groupID string) error {
	members, err := s.store.ListTransactionsByGroup(ctx, ownerID, groupID)
	if err != nil {
		return fmt.Errorf("list group members: %w", err)
	}

	if err := s.store.DeleteTransactionsByGroup(ctx, ownerID, groupID); err != nil {
		return err
	}

	for _, member := range members {
		s.publishDelete(ctx, amqp.NewTransactionDeleteMessage(member.ID, groupID))
	}
	return nil
}

// Summary aggregates one month's open totals and per-category breakdown.
func (s *LedgerService) Summary(ctx context.Context, ownerID string, year, month int) (core.MonthSummary, error) {
	return s.store.MonthSummary(ctx, ownerID, year, month)
}

func (s *LedgerService) publishSync(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	// New and updated rows both start their sync cycle at the stored
	// version; the worker reads the authoritative version from SQLite.
	if err := s.publisher.PublishTransactionSync(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
		// Don't fail the request - the record is saved locally
	}
}

func (s *LedgerService) publishDelete(ctx context.Context, msg *amqp.TransactionDeleteMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionDelete(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", msg.ID, "group_id", msg.GroupID, "error", err)
	}
}
