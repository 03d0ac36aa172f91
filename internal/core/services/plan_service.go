package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
	"github.com/budgetledger/budget_ledger_app/internal/middleware"
)

// planService provides subscription plan operations.
type planService struct {
	planRepo portsrepo.PlanRepository
}

// NewPlanService creates a new PlanService.
func NewPlanService(planRepo portsrepo.PlanRepository) portssvc.PlanService {
	return &planService{
		planRepo: planRepo,
	}
}

// Ensure planService implements the portssvc.PlanService interface
var _ portssvc.PlanService = (*planService)(nil)

func (s *planService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*domain.Plan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	plan := domain.Plan{
		PlanID: uuid.NewString(),
		Name:   req.Name,
		Cost:   req.Cost,
	}

	if err := s.planRepo.CreatePlan(ctx, plan); err != nil {
		logger.Warn("Failed to create plan", slog.String("error", err.Error()))
		return nil, err
	}
	logger.Info("Plan created", slog.String("plan_id", plan.PlanID))
	return &plan, nil
}

func (s *planService) GetPlanByID(ctx context.Context, planID string) (*domain.Plan, error) {
	return s.planRepo.FindPlanByID(ctx, planID)
}
