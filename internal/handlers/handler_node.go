package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
	"github.com/budgetledger/budget_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// nodeHandler handles HTTP requests on the node hierarchy of a budget.
type nodeHandler struct {
	nodeService portssvc.NodeService
}

// newNodeHandler creates a new nodeHandler.
func newNodeHandler(ns portssvc.NodeService) *nodeHandler {
	return &nodeHandler{
		nodeService: ns,
	}
}

// registerNodeRoutes registers node routes nested under a specific budget.
func registerNodeRoutes(rg *gin.RouterGroup, nodeService portssvc.NodeService) {
	h := newNodeHandler(nodeService)

	nodes := rg.Group("/nodes")
	{
		nodes.POST("", h.createNode)
		nodes.GET("", h.listNodes)
		nodes.GET("/root", h.getRootNode)
		nodes.GET("/:node_id", h.getNode)
		nodes.PUT("/:node_id", h.updateNode)
		nodes.DELETE("/:node_id", h.deleteNode)
	}
}

// createNode godoc
// @Summary Create a child node
// @Description Creates a node under an existing parent in the budget's hierarchy.
// @Tags nodes
// @Accept  json
// @Produce  json
// @Param   budget_id path string true "Budget ID"
// @Param   node body dto.CreateNodeRequest true "Node details"
// @Success 201 {object} dto.NodeResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Parent node not found"
// @Security BearerAuth
// @Router /budgets/{budget_id}/nodes [post]
func (h *nodeHandler) createNode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateNode", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	req.BudgetID = c.Param("budget_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	node, err := h.nodeService.CreateNode(c.Request.Context(), userID, req)
	if err != nil {
		logger.Warn("Failed to create node", slog.String("budget_id", req.BudgetID), slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to create node")
		return
	}

	c.JSON(http.StatusCreated, dto.ToNodeResponse(node))
}

// listNodes godoc
// @Summary List nodes of a budget
// @Description Retrieves the current version of every live node, ordered by path.
// @Tags nodes
// @Produce  json
// @Param   budget_id path string true "Budget ID"
// @Success 200 {object} dto.ListNodesResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /budgets/{budget_id}/nodes [get]
func (h *nodeHandler) listNodes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budget_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	nodes, err := h.nodeService.ListNodes(c.Request.Context(), userID, budgetID)
	if err != nil {
		logger.Warn("Failed to list nodes", slog.String("budget_id", budgetID), slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to list nodes")
		return
	}

	c.JSON(http.StatusOK, dto.ToListNodesResponse(nodes))
}

// getRootNode godoc
// @Summary Get a root node
// @Description Resolves one of the budget's four root nodes by domain and layer.
// @Tags nodes
// @Produce  json
// @Param   budget_id path string true "Budget ID"
// @Param   domain query string true "Node domain" Enums(internal, external)
// @Param   layer query string true "Node layer" Enums(location, purpose)
// @Success 200 {object} dto.NodeResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Root node not found"
// @Security BearerAuth
// @Router /budgets/{budget_id}/nodes/root [get]
func (h *nodeHandler) getRootNode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budget_id")

	var req dto.GetRootNodeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Failed to bind query for GetRootNode", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	node, err := h.nodeService.GetRootNode(c.Request.Context(), userID, budgetID, req.Domain, req.Layer)
	if err != nil {
		logger.Warn("Failed to get root node", slog.String("budget_id", budgetID), slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to get root node")
		return
	}

	c.JSON(http.StatusOK, dto.ToNodeResponse(node))
}

// getNode godoc
// @Summary Get a node
// @Description Retrieves the current version of a node.
// @Tags nodes
// @Produce  json
// @Param   budget_id path string true "Budget ID"
// @Param   node_id path string true "Node ID"
// @Success 200 {object} dto.NodeResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Node not found"
// @Security BearerAuth
// @Router /budgets/{budget_id}/nodes/{node_id} [get]
func (h *nodeHandler) getNode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	nodeID := c.Param("node_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	node, err := h.nodeService.GetNodeByID(c.Request.Context(), userID, nodeID)
	if err != nil {
		logger.Warn("Failed to get node", slog.String("node_id", nodeID), slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to get node")
		return
	}

	c.JSON(http.StatusOK, dto.ToNodeResponse(node))
}

// updateNode godoc
// @Summary Update a node
// @Description Appends a new version of a non-root node with the given content.
// @Tags nodes
// @Accept  json
// @Produce  json
// @Param   budget_id path string true "Budget ID"
// @Param   node_id path string true "Node ID"
// @Param   node body dto.UpdateNodeRequest true "New node content"
// @Success 200 {object} dto.NodeResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Node not found"
// @Failure 409 {object} map[string]string "Node is a protected root"
// @Security BearerAuth
// @Router /budgets/{budget_id}/nodes/{node_id} [put]
func (h *nodeHandler) updateNode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	nodeID := c.Param("node_id")

	var req dto.UpdateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateNode", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	req.BudgetID = c.Param("budget_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	node, err := h.nodeService.UpdateNode(c.Request.Context(), userID, nodeID, req)
	if err != nil {
		logger.Warn("Failed to update node", slog.String("node_id", nodeID), slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to update node")
		return
	}

	c.JSON(http.StatusOK, dto.ToNodeResponse(node))
}

// deleteNode godoc
// @Summary Delete a node
// @Description Soft-deletes a non-root node.
// @Tags nodes
// @Param   budget_id path string true "Budget ID"
// @Param   node_id path string true "Node ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Node not found"
// @Failure 409 {object} map[string]string "Node is a protected root"
// @Security BearerAuth
// @Router /budgets/{budget_id}/nodes/{node_id} [delete]
func (h *nodeHandler) deleteNode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budget_id")
	nodeID := c.Param("node_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.nodeService.DeleteNode(c.Request.Context(), userID, budgetID, nodeID); err != nil {
		logger.Warn("Failed to delete node", slog.String("node_id", nodeID), slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to delete node")
		return
	}

	c.Status(http.StatusNoContent)
}
