package repositories

import (
	"context"

	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
)

// NodeRepository maintains the materialized-path node forest of a budget.
// Root nodes are created only through BudgetRepository.CreateBudget.
type NodeRepository interface {
	// CreateChildNode draws a fresh label, extends the parent's path and
	// inserts identity plus version 0, gated on can_write.
	CreateChildNode(ctx context.Context, node domain.Node, userID string) error

	// UpdateNode appends a new version with the given content. Root nodes
	// are rejected with ErrRootNodeProtected.
	UpdateNode(ctx context.Context, node domain.Node, userID string) error

	// DeleteNode appends a soft-delete version. Root nodes are rejected
	// with ErrRootNodeProtected.
	DeleteNode(ctx context.Context, budgetID, nodeID, userID string) error

	// FindNodeByID returns the node's current version, deleted or not.
	FindNodeByID(ctx context.Context, nodeID string) (*domain.Node, error)

	// FindNodesByBudgetID returns the current version of every node of the
	// budget, ordered by path.
	FindNodesByBudgetID(ctx context.Context, budgetID string) ([]domain.Node, error)

	// FindRootNode resolves the (domain, layer) root mapping of a budget.
	FindRootNode(ctx context.Context, budgetID string, dom domain.NodeDomain, layer domain.NodeLayer) (*domain.Node, error)
}
