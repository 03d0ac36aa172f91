package dto

import (
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePlanRequest defines data for creating a subscription plan.
type CreatePlanRequest struct {
	Name string          `json:"name" binding:"required,max=255"`
	Cost decimal.Decimal `json:"cost" binding:"required"`
}

// PlanResponse defines data returned for a plan.
type PlanResponse struct {
	PlanID string          `json:"planID"`
	Name   string          `json:"name"`
	Cost   decimal.Decimal `json:"cost"`
}

// ToPlanResponse converts domain.Plan to DTO.
func ToPlanResponse(p *domain.Plan) PlanResponse {
	return PlanResponse{
		PlanID: p.PlanID,
		Name:   p.Name,
		Cost:   p.Cost,
	}
}
