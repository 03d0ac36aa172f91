package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
	"github.com/budgetledger/budget_ledger_app/internal/middleware"
)

// budgetService provides budget lifecycle operations.
type budgetService struct {
	budgetRepo     portsrepo.BudgetRepository
	permissionRepo portsrepo.PermissionRepository
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(budgetRepo portsrepo.BudgetRepository, permissionRepo portsrepo.PermissionRepository) portssvc.BudgetService {
	return &budgetService{
		budgetRepo:     budgetRepo,
		permissionRepo: permissionRepo,
	}
}

// Ensure budgetService implements the portssvc.BudgetService interface
var _ portssvc.BudgetService = (*budgetService)(nil)

// CreateBudget creates a budget owned by the user, together with its four
// root nodes and the creator's full permissions.
func (s *budgetService) CreateBudget(ctx context.Context, userID string, req dto.CreateBudgetRequest) (*domain.Budget, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	budget := domain.Budget{
		BudgetID: uuid.NewString(),
		Name:     req.Name,
	}

	if err := s.budgetRepo.CreateBudget(ctx, budget, userID); err != nil {
		logger.Error("Failed to create budget", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Budget created", slog.String("budget_id", budget.BudgetID))
	return s.budgetRepo.FindBudgetByID(ctx, budget.BudgetID)
}

// UpdateBudget renames a budget.
func (s *budgetService) UpdateBudget(ctx context.Context, userID, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.budgetRepo.UpdateBudget(ctx, budgetID, req.Name, userID); err != nil {
		logger.Warn("Failed to update budget", slog.String("budget_id", budgetID), slog.String("error", err.Error()))
		return nil, err
	}
	return s.budgetRepo.FindBudgetByID(ctx, budgetID)
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.budgetRepo.DeleteBudget(ctx, budgetID, userID); err != nil {
		logger.Warn("Failed to delete budget", slog.String("budget_id", budgetID), slog.String("error", err.Error()))
		return err
	}
	logger.Info("Budget deleted", slog.String("budget_id", budgetID))
	return nil
}

// GetBudgetByID retrieves a budget the user can read. Deleted budgets are
// reported as not found.
func (s *budgetService) GetBudgetByID(ctx context.Context, userID, budgetID string) (*domain.Budget, error) {
	if err := s.permissionRepo.AssertCanRead(ctx, userID, budgetID); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.IsDeleted {
		return nil, apperrors.NewNotFoundError("budget " + budgetID + " not found")
	}
	return budget, nil
}

// ListBudgets retrieves every budget the user can read.
func (s *budgetService) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	return s.budgetRepo.ListBudgetsByReader(ctx, userID)
}
