package dto

import (
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
)

// --- Budget DTOs ---

// CreateBudgetRequest defines data for creating a new budget.
type CreateBudgetRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// UpdateBudgetRequest defines data for renaming a budget.
type UpdateBudgetRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// BudgetResponse defines data returned for a budget.
type BudgetResponse struct {
	BudgetID      string `json:"budgetID"`
	Name          string `json:"name"`
	VersionNumber int64  `json:"versionNumber"`
	IsDeleted     bool   `json:"isDeleted"`
	ChangesetID   string `json:"changesetID"`
}

// ToBudgetResponse converts domain.Budget to DTO.
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		BudgetID:      b.BudgetID,
		Name:          b.Name,
		VersionNumber: b.VersionNumber,
		IsDeleted:     b.IsDeleted,
		ChangesetID:   b.ChangesetID,
	}
}

// ListBudgetsResponse wraps a list of budgets.
type ListBudgetsResponse struct {
	Budgets []BudgetResponse `json:"budgets"`
}

// ToListBudgetsResponse converts a slice of domain.Budget to DTO.
func ToListBudgetsResponse(bs []domain.Budget) ListBudgetsResponse {
	list := make([]BudgetResponse, len(bs))
	for i, b := range bs {
		list[i] = ToBudgetResponse(&b)
	}
	return ListBudgetsResponse{Budgets: list}
}

// --- Permission DTOs ---

// SetPermissionsRequest defines data for sharing a budget with a user.
// BudgetID comes from the route, not the body.
type SetPermissionsRequest struct {
	UserID    string `json:"userID" binding:"required,uuid"`
	BudgetID  string `json:"-"`
	CanRead   bool   `json:"canRead"`
	CanWrite  bool   `json:"canWrite"`
	CanShare  bool   `json:"canShare"`
	CanDelete bool   `json:"canDelete"`
}

// ToDomainPermission converts the request to a domain.Permission.
func (r SetPermissionsRequest) ToDomainPermission() domain.Permission {
	return domain.Permission{
		UserID:    r.UserID,
		BudgetID:  r.BudgetID,
		CanRead:   r.CanRead,
		CanWrite:  r.CanWrite,
		CanShare:  r.CanShare,
		CanDelete: r.CanDelete,
	}
}

// PermissionResponse defines data returned for a permission row.
type PermissionResponse struct {
	UserID    string `json:"userID"`
	BudgetID  string `json:"budgetID"`
	CanRead   bool   `json:"canRead"`
	CanWrite  bool   `json:"canWrite"`
	CanShare  bool   `json:"canShare"`
	CanDelete bool   `json:"canDelete"`
}

// ToPermissionResponse converts domain.Permission to DTO.
func ToPermissionResponse(p *domain.Permission) PermissionResponse {
	return PermissionResponse{
		UserID:    p.UserID,
		BudgetID:  p.BudgetID,
		CanRead:   p.CanRead,
		CanWrite:  p.CanWrite,
		CanShare:  p.CanShare,
		CanDelete: p.CanDelete,
	}
}
