package pgsql

import (
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	planRepo := newPgxPlanRepository(dbPool)
	budgetRepo := newPgxBudgetRepository(dbPool)
	permissionRepo := newPgxPermissionRepository(dbPool)
	nodeRepo := newPgxNodeRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:        userRepo,
		PlanRepo:        planRepo,
		BudgetRepo:      budgetRepo,
		PermissionRepo:  permissionRepo,
		NodeRepo:        nodeRepo,
		TransactionRepo: transactionRepo,
	}
}
