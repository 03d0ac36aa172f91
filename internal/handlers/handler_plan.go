package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
	"github.com/budgetledger/budget_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type planHandler struct {
	planService portssvc.PlanService
}

func registerPlanRoutes(rg *gin.RouterGroup, planService portssvc.PlanService) {
	h := &planHandler{planService: planService}

	plans := rg.Group("/plans")
	{
		plans.POST("", h.createPlan)
		plans.GET("/:plan_id", h.getPlanByID)
	}
}

// createPlan godoc
// @Summary Create a plan
// @Description Creates a new subscription plan.
// @Tags plans
// @Accept json
// @Produce json
// @Param plan body dto.CreatePlanRequest true "Plan details"
// @Success 201 {object} dto.PlanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /plans [post]
func (h *planHandler) createPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createPlan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, err, "Failed to create plan")
		return
	}

	c.JSON(http.StatusCreated, dto.ToPlanResponse(plan))
}

// getPlanByID godoc
// @Summary Get plan by ID
// @Description Retrieves a single plan.
// @Tags plans
// @Produce json
// @Param plan_id path string true "Plan ID"
// @Success 200 {object} dto.PlanResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /plans/{plan_id} [get]
func (h *planHandler) getPlanByID(c *gin.Context) {
	planID := c.Param("plan_id")

	plan, err := h.planService.GetPlanByID(c.Request.Context(), planID)
	if err != nil {
		respondWithError(c, err, "Failed to get plan")
		return
	}

	c.JSON(http.StatusOK, dto.ToPlanResponse(plan))
}
