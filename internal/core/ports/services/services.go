package services

import (
	"context"

	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
)

// ServiceContainer bundles every service for dependency injection into the
// handler layer.
type ServiceContainer struct {
	UserService        UserService
	PlanService        PlanService
	BudgetService      BudgetService
	PermissionService  PermissionService
	NodeService        NodeService
	TransactionService TransactionService
}

type UserService interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)
	UpdateUser(ctx context.Context, actingUserID, userID string, req dto.UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, actingUserID, userID string) error
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// AuthenticateUser verifies credentials and returns the user on
	// success, ErrUnauthorized otherwise.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)
}

type PlanService interface {
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*domain.Plan, error)
	GetPlanByID(ctx context.Context, planID string) (*domain.Plan, error)
}

type BudgetService interface {
	CreateBudget(ctx context.Context, userID string, req dto.CreateBudgetRequest) (*domain.Budget, error)
	UpdateBudget(ctx context.Context, userID, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
	GetBudgetByID(ctx context.Context, userID, budgetID string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
}

type PermissionService interface {
	// SetPermissions grants or revokes access to a budget, gated on the
	// acting user's can_share flag.
	SetPermissions(ctx context.Context, actingUserID string, req dto.SetPermissionsRequest) error
	GetPermissions(ctx context.Context, userID, budgetID string) (*domain.Permission, error)
}

type NodeService interface {
	CreateNode(ctx context.Context, userID string, req dto.CreateNodeRequest) (*domain.Node, error)
	UpdateNode(ctx context.Context, userID, nodeID string, req dto.UpdateNodeRequest) (*domain.Node, error)
	DeleteNode(ctx context.Context, userID, budgetID, nodeID string) error
	GetNodeByID(ctx context.Context, userID, nodeID string) (*domain.Node, error)
	ListNodes(ctx context.Context, userID, budgetID string) ([]domain.Node, error)
	GetRootNode(ctx context.Context, userID, budgetID string, dom domain.NodeDomain, layer domain.NodeLayer) (*domain.Node, error)
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, budgetID, transactionID string) error
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*domain.Transaction, error)
}
