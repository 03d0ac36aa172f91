package services

import (
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.PlanService = NewPlanService(repos.PlanRepo)
	container.UserService = NewUserService(repos.UserRepo, repos.PlanRepo)
	container.PermissionService = NewPermissionService(repos.PermissionRepo)
	container.BudgetService = NewBudgetService(repos.BudgetRepo, repos.PermissionRepo)
	container.NodeService = NewNodeService(repos.NodeRepo, repos.PermissionRepo)
	container.TransactionService = NewTransactionService(repos.TransactionRepo, repos.PermissionRepo)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.BudgetService      = (*budgetService)(nil)
	_ portssvc.NodeService        = (*nodeService)(nil)
	_ portssvc.TransactionService = (*transactionService)(nil)
	_ portssvc.UserService        = (*userService)(nil)
)
