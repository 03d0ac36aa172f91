package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
	"github.com/budgetledger/budget_ledger_app/internal/middleware"
)

// permissionService provides budget sharing operations.
type permissionService struct {
	permissionRepo portsrepo.PermissionRepository
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(permissionRepo portsrepo.PermissionRepository) portssvc.PermissionService {
	return &permissionService{
		permissionRepo: permissionRepo,
	}
}

// Ensure permissionService implements the portssvc.PermissionService interface
var _ portssvc.PermissionService = (*permissionService)(nil)

// SetPermissions grants or revokes another user's access to a budget. The
// acting user needs the can_share flag on that budget.
func (s *permissionService) SetPermissions(ctx context.Context, actingUserID string, req dto.SetPermissionsRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.permissionRepo.SetPermissions(ctx, actingUserID, req.ToDomainPermission()); err != nil {
		logger.Warn("Failed to set permissions",
			slog.String("budget_id", req.BudgetID),
			slog.String("target_user_id", req.UserID),
			slog.String("error", err.Error()))
		return err
	}

	logger.Info("Permissions updated",
		slog.String("budget_id", req.BudgetID),
		slog.String("target_user_id", req.UserID))
	return nil
}

// GetPermissions retrieves a user's permission flags for a budget. A missing
// row means no access of any kind.
func (s *permissionService) GetPermissions(ctx context.Context, userID, budgetID string) (*domain.Permission, error) {
	perm, err := s.permissionRepo.GetPermissions(ctx, userID, budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.Permission{UserID: userID, BudgetID: budgetID}, nil
		}
		return nil, err
	}
	return perm, nil
}
