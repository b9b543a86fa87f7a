package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/core"
	"contas/internal/ports"
)

// ApprovalService decides which authenticated users may use the ledger.
// Unknown users are recorded as pending access requests.
type ApprovalService struct {
	store ports.ApprovalStore
}

func NewApprovalService(store ports.ApprovalStore) *ApprovalService {
	return &ApprovalService{store: store}
}

// Check reports whether the given email is approved. The first check for an
// unknown email files a pending request so an admin can approve it later.
func (s *ApprovalService) Check(ctx context.Context, email, name string) (bool, error) {
	if email == "" {
		return false, nil
	}

	approved, err := s.store.IsApproved(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check approval: %w", err)
	}
	if approved {
		return true, nil
	}

	if err := s.store.RecordAccessRequest(ctx, email, name); err != nil {
		slog.ErrorContext(ctx, "Failed to record access request",
			"email", email, "error", err)
	}
	return false, nil
}

func (s *ApprovalService) List(ctx context.Context) ([]core.AccessRequest, error) {
	return s.store.ListAccessRequests(ctx)
}

func (s *ApprovalService) SetApproval(ctx context.Context, email string, approved bool) error {
	if err := s.store.SetApproval(ctx, email, approved); err != nil {
		return fmt.Errorf("set approval: %w", err)
	}
	slog.InfoContext(ctx, "Updated access approval", "email", email, "approved", approved)
	return nil
}
