package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"contas/internal/core"
)

// ListCategories returns the shared seed categories plus the owner's own,
// grouped by type.
func (r *Repository) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, icon FROM categories
		WHERE owner_id IN ('', ?)
		ORDER BY type, name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) CreateCategory(ctx context.Context, ownerID string, c core.Category) (core.Category, error) {
	c.ID = uuid.NewString()
	if c.Icon == "" {
		c.Icon = "Tag"
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, owner_id, name, type, icon)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, ownerID, c.Name, string(c.Type), c.Icon)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "id", c.ID, "name", c.Name, "type", c.Type)
	return c, nil
}

// UpdateCategory renames an owned category. Seed categories (owner '') are
// read-only and come back as ErrNotFound here.
func (r *Repository) UpdateCategory(ctx context.Context, ownerID, id string, name string) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ? WHERE id = ? AND owner_id = ?",
		name, id, ownerID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Category{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, type, icon FROM categories WHERE id = ?", id)
	var c core.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Icon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, ErrNotFound
		}
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
