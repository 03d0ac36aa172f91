package dto

import (
	"time"

	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
)

// --- Node DTOs ---

// CreateNodeRequest defines data for creating a child node under a parent.
// BudgetID comes from the route, not the body.
type CreateNodeRequest struct {
	BudgetID     string     `json:"-"`
	ParentNodeID string     `json:"parentNodeID" binding:"required,uuid"`
	Name         string     `json:"name" binding:"required,max=255"`
	OpeningDate  time.Time  `json:"openingDate"`
	ClosingDate  *time.Time `json:"closingDate,omitempty"`
}

// UpdateNodeRequest defines data for updating a node's content.
type UpdateNodeRequest struct {
	BudgetID    string     `json:"-"`
	Name        string     `json:"name" binding:"required,max=255"`
	OpeningDate time.Time  `json:"openingDate"`
	ClosingDate *time.Time `json:"closingDate,omitempty"`
}

// GetRootNodeRequest selects one of the four root nodes of a budget.
type GetRootNodeRequest struct {
	Domain domain.NodeDomain `form:"domain" binding:"required,nodedomain"`
	Layer  domain.NodeLayer  `form:"layer" binding:"required,nodelayer"`
}

// NodeResponse defines data returned for a node.
type NodeResponse struct {
	NodeID        string     `json:"nodeID"`
	BudgetID      string     `json:"budgetID"`
	ParentNodeID  *string    `json:"parentNodeID,omitempty"`
	Path          string     `json:"path"`
	Name          string     `json:"name"`
	OpeningDate   time.Time  `json:"openingDate"`
	ClosingDate   *time.Time `json:"closingDate,omitempty"`
	VersionNumber int64      `json:"versionNumber"`
	IsDeleted     bool       `json:"isDeleted"`
	ChangesetID   string     `json:"changesetID"`
}

// ToNodeResponse converts domain.Node to DTO.
func ToNodeResponse(n *domain.Node) NodeResponse {
	return NodeResponse{
		NodeID:        n.NodeID,
		BudgetID:      n.BudgetID,
		ParentNodeID:  n.ParentNodeID,
		Path:          n.Path,
		Name:          n.Name,
		OpeningDate:   n.OpeningDate,
		ClosingDate:   n.ClosingDate,
		VersionNumber: n.VersionNumber,
		IsDeleted:     n.IsDeleted,
		ChangesetID:   n.ChangesetID,
	}
}

// ListNodesResponse wraps the node forest of a budget, ordered by path.
type ListNodesResponse struct {
	Nodes []NodeResponse `json:"nodes"`
}

// ToListNodesResponse converts a slice of domain.Node to DTO.
func ToListNodesResponse(ns []domain.Node) ListNodesResponse {
	list := make([]NodeResponse, len(ns))
	for i, n := range ns {
		list[i] = ToNodeResponse(&n)
	}
	return ListNodesResponse{Nodes: list}
}
