package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
	"github.com/budgetledger/budget_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// budgetHandler handles HTTP requests related to budgets and their sharing.
type budgetHandler struct {
	budgetService     portssvc.BudgetService
	permissionService portssvc.PermissionService
}

// newBudgetHandler creates a new budgetHandler.
func newBudgetHandler(bs portssvc.BudgetService, ps portssvc.PermissionService) *budgetHandler {
	return &budgetHandler{
		budgetService:     bs,
		permissionService: ps,
	}
}

// registerBudgetRoutes registers routes related to budgets. Node and
// transaction routes nest under a specific budget.
func registerBudgetRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newBudgetHandler(services.BudgetService, services.PermissionService)

	budgets := rg.Group("/budgets")
	{
		budgets.POST("", h.createBudget)
		budgets.GET("", h.listBudgets)
	}

	budgetSpecific := rg.Group("/budgets/:budget_id")
	{
		budgetSpecific.GET("", h.getBudget)
		budgetSpecific.PUT("", h.updateBudget)
		budgetSpecific.DELETE("", h.deleteBudget)

		budgetSpecific.PUT("/permissions", h.setPermissions)
		budgetSpecific.GET("/permissions", h.getPermissions)

		registerNodeRoutes(budgetSpecific, services.NodeService)
		registerTransactionRoutes(budgetSpecific, services.TransactionService)
	}
}

// createBudget godoc
// @Summary Create a new budget
// @Description Creates a budget with its four root nodes and grants the creator full permissions.
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budget body dto.CreateBudgetRequest true "Budget details"
// @Success 201 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create budget"
// @Security BearerAuth
// @Router /budgets [post]
func (h *budgetHandler) createBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), userID, req)
	if err != nil {
		logger.Error("Failed to create budget in service", slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to create budget")
		return
	}

	c.JSON(http.StatusCreated, dto.ToBudgetResponse(budget))
}

// listBudgets godoc
// @Summary List budgets for current user
// @Description Retrieves every budget the authenticated user can read.
// @Tags budgets
// @Produce  json
// @Success 200 {object} dto.ListBudgetsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list budgets"
// @Security BearerAuth
// @Router /budgets [get]
func (h *budgetHandler) listBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list budgets from service", slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to list budgets")
		return
	}

	c.JSON(http.StatusOK, dto.ToListBudgetsResponse(budgets))
}

// getBudget godoc
// @Summary Get a budget
// @Description Retrieves the current version of a budget the user can read.
// @Tags budgets
// @Produce  json
// @Param   budget_id path string true "Budget ID"
// @Success 200 {object} dto.BudgetResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget not found"
// @Security BearerAuth
// @Router /budgets/{budget_id} [get]
func (h *budgetHandler) getBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budget_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	budget, err := h.budgetService.GetBudgetByID(c.Request.Context(), userID, budgetID)
	if err != nil {
		logger.Warn("Failed to get budget", slog.String("budget_id", budgetID), slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to get budget")
		return
	}

	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// updateBudget godoc
// @Summary Rename a budget
// @Description Appends a new version of the budget with the given name.
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budget_id path string true "Budget ID"
// @Param   budget body dto.UpdateBudgetRequest true "New budget details"
// @Success 200 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget not found"
// @Security BearerAuth
// @Router /budgets/{budget_id} [put]
func (h *budgetHandler) updateBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budget_id")

	var req dto.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), userID, budgetID, req)
	if err != nil {
		logger.Warn("Failed to update budget", slog.String("budget_id", budgetID), slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to update budget")
		return
	}

	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// deleteBudget godoc
// @Summary Delete a budget
// @Description Soft-deletes a budget. Requires the can_delete permission.
// @Tags budgets
// @Param   budget_id path string true "Budget ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget not found"
// @Security BearerAuth
// @Router /budgets/{budget_id} [delete]
func (h *budgetHandler) deleteBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budget_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.budgetService.DeleteBudget(c.Request.Context(), userID, budgetID); err != nil {
		logger.Warn("Failed to delete budget", slog.String("budget_id", budgetID), slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to delete budget")
		return
	}

	c.Status(http.StatusNoContent)
}

// setPermissions godoc
// @Summary Set a user's permissions on a budget
// @Description Grants or revokes another user's access flags. Requires the can_share permission.
// @Tags budgets
// @Accept  json
// @Param   budget_id path string true "Budget ID"
// @Param   permissions body dto.SetPermissionsRequest true "Target user and flags"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /budgets/{budget_id}/permissions [put]
func (h *budgetHandler) setPermissions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SetPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetPermissions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	req.BudgetID = c.Param("budget_id")

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.permissionService.SetPermissions(c.Request.Context(), actingUserID, req); err != nil {
		logger.Warn("Failed to set permissions", slog.String("budget_id", req.BudgetID), slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to set permissions")
		return
	}

	c.Status(http.StatusNoContent)
}

// getPermissions godoc
// @Summary Get own permissions on a budget
// @Description Retrieves the authenticated user's permission flags for a budget.
// @Tags budgets
// @Produce  json
// @Param   budget_id path string true "Budget ID"
// @Success 200 {object} dto.PermissionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /budgets/{budget_id}/permissions [get]
func (h *budgetHandler) getPermissions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budget_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	perm, err := h.permissionService.GetPermissions(c.Request.Context(), userID, budgetID)
	if err != nil {
		logger.Error("Failed to get permissions", slog.String("budget_id", budgetID), slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to get permissions")
		return
	}

	c.JSON(http.StatusOK, dto.ToPermissionResponse(perm))
}
