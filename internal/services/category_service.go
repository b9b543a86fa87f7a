package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/core"
	"contas/internal/ports"
)

// CategoryService manages the shared seed categories plus each owner's own.
type CategoryService struct {
	store ports.CategoryStore
}

func NewCategoryService(store ports.CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) List(ctx context.Context, ownerID string) ([]core.Category, error) {
	categories, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, ownerID string, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	created, err := s.store.CreateCategory(ctx, ownerID, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Created category",
		"owner", ownerID, "id", created.ID, "name", created.Name)
	return created, nil
}

func (s *CategoryService) Rename(ctx context.Context, ownerID, id, name string) (core.Category, error) {
	if name == "" {
		return core.Category{}, core.ErrEmptyName
	}
	return s.store.UpdateCategory(ctx, ownerID, id, name)
}

func (s *CategoryService) Delete(ctx context.Context, ownerID, id string) error {
	return s.store.DeleteCategory(ctx, ownerID, id)
}
