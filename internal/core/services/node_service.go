package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
	"github.com/budgetledger/budget_ledger_app/internal/middleware"
)

// nodeService provides operations on the node hierarchy of a budget.
type nodeService struct {
	nodeRepo       portsrepo.NodeRepository
	permissionRepo portsrepo.PermissionRepository
}

// NewNodeService creates a new NodeService.
func NewNodeService(nodeRepo portsrepo.NodeRepository, permissionRepo portsrepo.PermissionRepository) portssvc.NodeService {
	return &nodeService{
		nodeRepo:       nodeRepo,
		permissionRepo: permissionRepo,
	}
}

// Ensure nodeService implements the portssvc.NodeService interface
var _ portssvc.NodeService = (*nodeService)(nil)

// CreateNode creates a child node under an existing parent. An omitted
// opening date defaults to now.
func (s *nodeService) CreateNode(ctx context.Context, userID string, req dto.CreateNodeRequest) (*domain.Node, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	openingDate := req.OpeningDate
	if openingDate.IsZero() {
		openingDate = time.Now().UTC()
	}
	if req.ClosingDate != nil && req.ClosingDate.Before(openingDate) {
		return nil, apperrors.NewValidationFailedError("closing date cannot precede opening date")
	}

	parentID := req.ParentNodeID
	node := domain.Node{
		NodeID:       uuid.NewString(),
		BudgetID:     req.BudgetID,
		ParentNodeID: &parentID,
		Name:         req.Name,
		OpeningDate:  openingDate,
		ClosingDate:  req.ClosingDate,
	}

	if err := s.nodeRepo.CreateChildNode(ctx, node, userID); err != nil {
		logger.Warn("Failed to create node", slog.String("budget_id", req.BudgetID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Node created", slog.String("node_id", node.NodeID), slog.String("budget_id", req.BudgetID))
	return s.nodeRepo.FindNodeByID(ctx, node.NodeID)
}

// UpdateNode replaces the node's versioned content.
func (s *nodeService) UpdateNode(ctx context.Context, userID, nodeID string, req dto.UpdateNodeRequest) (*domain.Node, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.ClosingDate != nil && !req.OpeningDate.IsZero() && req.ClosingDate.Before(req.OpeningDate) {
		return nil, apperrors.NewValidationFailedError("closing date cannot precede opening date")
	}

	node := domain.Node{
		NodeID:      nodeID,
		BudgetID:    req.BudgetID,
		Name:        req.Name,
		OpeningDate: req.OpeningDate,
		ClosingDate: req.ClosingDate,
	}

	if err := s.nodeRepo.UpdateNode(ctx, node, userID); err != nil {
		logger.Warn("Failed to update node", slog.String("node_id", nodeID), slog.String("error", err.Error()))
		return nil, err
	}
	return s.nodeRepo.FindNodeByID(ctx, nodeID)
}

// DeleteNode soft-deletes a non-root node.
func (s *nodeService) DeleteNode(ctx context.Context, userID, budgetID, nodeID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.nodeRepo.DeleteNode(ctx, budgetID, nodeID, userID); err != nil {
		logger.Warn("Failed to delete node", slog.String("node_id", nodeID), slog.String("error", err.Error()))
		return err
	}
	logger.Info("Node deleted", slog.String("node_id", nodeID), slog.String("budget_id", budgetID))
	return nil
}

// GetNodeByID retrieves a node the user can read. Deleted nodes are reported
// as not found.
func (s *nodeService) GetNodeByID(ctx context.Context, userID, nodeID string) (*domain.Node, error) {
	node, err := s.nodeRepo.FindNodeByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if err := s.permissionRepo.AssertCanRead(ctx, userID, node.BudgetID); err != nil {
		return nil, err
	}
	if node.IsDeleted {
		return nil, apperrors.NewNotFoundError("node " + nodeID + " not found")
	}
	return node, nil
}

// ListNodes retrieves the current version of every non-deleted node of the
// budget, ordered by path.
func (s *nodeService) ListNodes(ctx context.Context, userID, budgetID string) ([]domain.Node, error) {
	if err := s.permissionRepo.AssertCanRead(ctx, userID, budgetID); err != nil {
		return nil, err
	}

	nodes, err := s.nodeRepo.FindNodesByBudgetID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	live := nodes[:0]
	for _, n := range nodes {
		if !n.IsDeleted {
			live = append(live, n)
		}
	}
	return live, nil
}

// GetRootNode resolves one of the four root nodes of a budget.
func (s *nodeService) GetRootNode(ctx context.Context, userID, budgetID string, dom domain.NodeDomain, layer domain.NodeLayer) (*domain.Node, error) {
	if err := s.permissionRepo.AssertCanRead(ctx, userID, budgetID); err != nil {
		return nil, err
	}
	return s.nodeRepo.FindRootNode(ctx, budgetID, dom, layer)
}
