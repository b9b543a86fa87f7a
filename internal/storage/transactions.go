package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
)

const transactionColumns = `id, type, description, amount, due_date, category_id,
	status, recurrence_id, installment, total_installments`

// CreateTransaction stores one record and assigns its identifier. Any ID
// already present on the record is discarded.
func (r *Repository) CreateTransaction(ctx context.Context, ownerID string, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, owner_id, type, description, amount, due_date, category_id,
			 status, recurrence_id, installment, total_installments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, ownerID, string(t.Type), t.Description, t.Amount,
		t.DueDate.String(), t.CategoryID, string(t.Status),
		nullString(t.RecurrenceID), nullInt(t.Installment), nullInt(t.TotalInstallments),
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"description", t.Description,
		"amount", t.Amount,
		"due_date", t.DueDate.String(),
		"recurrence_id", t.RecurrenceID)

	return t, nil
}

func (r *Repository) GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanTransaction(row)
}

// UpdateTransaction applies a partial update and bumps the sync version so
// the sheet mirror picks the change up.
func (r *Repository) UpdateTransaction(ctx context.Context, ownerID, id string, patch core.TransactionPatch) (core.Transaction, error) {
	sets := []string{"version = version + 1", "sync_status = 'pending'", "updated_at = CURRENT_TIMESTAMP"}
	args := []any{}

	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *patch.Amount)
	}
	if patch.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, patch.DueDate.String())
	}
	if patch.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *patch.CategoryID)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}

	args = append(args, id, ownerID)
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ? AND owner_id = ?",
		args...)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Transaction{}, ErrNotFound
	}

	return r.GetTransaction(ctx, ownerID, id)
}

func (r *Repository) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteTransactionsByGroup(ctx context.Context, ownerID, groupID string) error {
	if groupID == "" {
		return errors.New("empty recurrence group id")
	}
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE recurrence_id = ? AND owner_id = ?", groupID, ownerID)
	if err != nil {
		return fmt.Errorf("delete transactions by group: %w", err)
	}
	return nil
}

// ListTransactionsByGroup returns every record of a recurrence or
// installment series, ordered by due date.
func (r *Repository) ListTransactionsByGroup(ctx context.Context, ownerID, groupID string) ([]core.Transaction, error) {
	if groupID == "" {
		return nil, errors.New("empty recurrence group id")
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE recurrence_id = ? AND owner_id = ?
		ORDER BY due_date ASC`, groupID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions by group: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *Repository) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE owner_id = ?
		ORDER BY due_date ASC, installment ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *Repository) ListTransactionsByMonth(ctx context.Context, ownerID string, year, month int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE owner_id = ? AND substr(due_date, 1, 7) = printf('%04d-%02d', ?, ?)
		ORDER BY due_date ASC, installment ASC`, ownerID, year, month)
	if err != nil {
		return nil, fmt.Errorf("list transactions by month: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// MonthSummary aggregates one month. Payable/Receivable exclude settled
// records; Balance nets everything dated in the month.
func (r *Repository) MonthSummary(ctx context.Context, ownerID string, year, month int) (core.MonthSummary, error) {
	summary := core.MonthSummary{Year: year, Month: month}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'PAYABLE' AND status != 'PAID' THEN amount END), 0),
			COALESCE(SUM(CASE WHEN type = 'RECEIVABLE' AND status != 'RECEIVED' THEN amount END), 0),
			COALESCE(SUM(CASE WHEN type = 'RECEIVABLE' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE owner_id = ? AND substr(due_date, 1, 7) = printf('%04d-%02d', ?, ?)`,
		ownerID, year, month)
	if err := row.Scan(&summary.Payable, &summary.Receivable, &summary.Balance); err != nil {
		return summary, fmt.Errorf("month totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT t.category_id, COALESCE(c.name, ''), SUM(t.amount) AS total
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.owner_id = ? AND substr(t.due_date, 1, 7) = printf('%04d-%02d', ?, ?)
		GROUP BY t.category_id
		ORDER BY total DESC`, ownerID, year, month)
	if err != nil {
		return summary, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.CategoryID, &ca.Name, &ca.Amount); err != nil {
			return summary, fmt.Errorf("scan category sum: %w", err)
		}
		summary.ByCategory = append(summary.ByCategory, ca)
	}
	return summary, rows.Err()
}

// PendingSyncTransaction is the minimal data carried in sync queue messages.
type PendingSyncTransaction struct {
	ID        string
	Version   int64
	CreatedAt time.Time
}

// SyncRecord is a transaction joined with its owner, as the sync worker
// needs it when mirroring to the sheet.
type SyncRecord struct {
	OwnerID     string
	Transaction core.Transaction
}

// GetTransactionForSync fetches a record by id without owner scoping; only
// the worker uses this path.
func (r *Repository) GetTransactionForSync(ctx context.Context, id string) (SyncRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT owner_id, `+transactionColumns+`
		FROM transactions WHERE id = ?`, id)

	var rec SyncRecord
	var due string
	var recurrenceID sql.NullString
	var installment, totalInstallments sql.NullInt64
	err := row.Scan(&rec.OwnerID,
		&rec.Transaction.ID, &rec.Transaction.Type, &rec.Transaction.Description,
		&rec.Transaction.Amount, &due, &rec.Transaction.CategoryID,
		&rec.Transaction.Status, &recurrenceID, &installment, &totalInstallments)
	if errors.Is(err, sql.ErrNoRows) {
		return SyncRecord{}, ErrNotFound
	}
	if err != nil {
		return SyncRecord{}, fmt.Errorf("get transaction for sync: %w", err)
	}
	if rec.Transaction.DueDate, err = core.ParseDate(due); err != nil {
		return SyncRecord{}, fmt.Errorf("parse due date %q: %w", due, err)
	}
	rec.Transaction.RecurrenceID = recurrenceID.String
	rec.Transaction.Installment = int(installment.Int64)
	rec.Transaction.TotalInstallments = int(totalInstallments.Int64)
	return rec, nil
}

// ListPendingSync returns transactions not yet mirrored to the sheet,
// oldest first. Backup path for lost queue messages.
func (r *Repository) ListPendingSync(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, created_at FROM transactions
		WHERE sync_status = 'pending'
		ORDER BY created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (r *Repository) MarkSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET sync_status = 'synced' WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

func (r *Repository) MarkSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET sync_status = 'error' WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var due string
	var recurrenceID sql.NullString
	var installment, totalInstallments sql.NullInt64

	err := row.Scan(&t.ID, &t.Type, &t.Description, &t.Amount, &due,
		&t.CategoryID, &t.Status, &recurrenceID, &installment, &totalInstallments)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	if t.DueDate, err = core.ParseDate(due); err != nil {
		return core.Transaction{}, fmt.Errorf("parse due date %q: %w", due, err)
	}
	t.RecurrenceID = recurrenceID.String
	t.Installment = int(installment.Int64)
	t.TotalInstallments = int(totalInstallments.Int64)
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return int64(n)
}
