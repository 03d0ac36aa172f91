package repositories

// RepositoryProvider bundles the concrete repositories handed to the
// service container at startup.
type RepositoryProvider struct {
	UserRepo        UserRepository
	PlanRepo        PlanRepository
	BudgetRepo      BudgetRepository
	PermissionRepo  PermissionRepository
	NodeRepo        NodeRepository
	TransactionRepo TransactionRepository
}
