package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"contas/internal/core"
)

func (r *Repository) ListAccessRequests(ctx context.Context) ([]core.AccessRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT email, name, approved, created_at FROM access_requests
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	defer rows.Close()

	var out []core.AccessRequest
	for rows.Next() {
		var req core.AccessRequest
		if err := rows.Scan(&req.Email, &req.Name, &req.Approved, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan access request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// RecordAccessRequest files a pending request for an unknown email. An
// existing row keeps its approval state; only the name is refreshed.
func (r *Repository) RecordAccessRequest(ctx context.Context, email, name string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_requests (email, name, approved) VALUES (?, ?, 0)
		ON CONFLICT (email) DO UPDATE SET name = excluded.name`,
		email, name)
	if err != nil {
		return fmt.Errorf("record access request: %w", err)
	}
	return nil
}

// SetApproval upserts the request so approving an email that never asked
// still works (admins pre-approving known users).
func (r *Repository) SetApproval(ctx context.Context, email string, approved bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_requests (email, approved) VALUES (?, ?)
		ON CONFLICT (email) DO UPDATE SET approved = excluded.approved`,
		email, approved)
	if err != nil {
		return fmt.Errorf("set approval: %w", err)
	}

	slog.InfoContext(ctx, "Access approval updated", "email", email, "approved", approved)
	return nil
}

func (r *Repository) IsApproved(ctx context.Context, email string) (bool, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT approved FROM access_requests WHERE email = ?", email)
	var approved bool
	if err := row.Scan(&approved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check approval: %w", err)
	}
	return approved, nil
}
