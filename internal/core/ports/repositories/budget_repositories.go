package repositories

import (
	"context"

	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
)

// BudgetRepository persists the budget version chains.
//
// Each mutating method runs as one atomic database transaction: permission
// assertion, row lock, changeset insert and version writes commit or roll
// back as a unit.
type BudgetRepository interface {
	// CreateBudget inserts the budget identity, version 0, the creator's
	// full permission grant and the four root nodes atomically.
	CreateBudget(ctx context.Context, budget domain.Budget, creatorUserID string) error

	// UpdateBudget appends a new version carrying the given name.
	UpdateBudget(ctx context.Context, budgetID, name, userID string) error

	// DeleteBudget appends a soft-delete version carrying the previous content.
	DeleteBudget(ctx context.Context, budgetID, userID string) error

	// FindBudgetByID returns the budget's current version, deleted or not.
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// ListBudgetsByReader returns the current version of every budget the
	// user holds a can_read permission on.
	ListBudgetsByReader(ctx context.Context, userID string) ([]domain.Budget, error)
}

// PermissionRepository owns the permission rows and the capability
// assertions executed before budget-scoped reads.
type PermissionRepository interface {
	// SetPermissions upserts the target user's flags after asserting the
	// acting user may share the budget; assertion and upsert run in one
	// transaction.
	SetPermissions(ctx context.Context, actingUserID string, perm domain.Permission) error

	// GetPermissions returns the flags for (userID, budgetID), or ErrNotFound.
	GetPermissions(ctx context.Context, userID, budgetID string) (*domain.Permission, error)

	AssertCanRead(ctx context.Context, userID, budgetID string) error
	AssertCanWrite(ctx context.Context, userID, budgetID string) error
	AssertCanShare(ctx context.Context, userID, budgetID string) error
	AssertCanDelete(ctx context.Context, userID, budgetID string) error
}
