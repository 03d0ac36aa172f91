package pgsql

import (
	"context"
	"errors"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPlanRepository struct {
	BaseRepository
}

// newPgxPlanRepository creates a new repository for subscription plans.
func newPgxPlanRepository(pool *pgxpool.Pool) portsrepo.PlanRepository {
	return &PgxPlanRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPlanRepository implements portsrepo.PlanRepository
var _ portsrepo.PlanRepository = (*PgxPlanRepository)(nil)

func (r *PgxPlanRepository) CreatePlan(ctx context.Context, plan domain.Plan) error {
	query := `
		INSERT INTO plans (id, name, cost)
		VALUES ($1, $2, $3);
	`
	_, err := r.Pool.Exec(ctx, query, plan.PlanID, plan.Name, plan.Cost)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("plan ID " + plan.PlanID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to insert plan "+plan.PlanID, err)
	}
	return nil
}

func (r *PgxPlanRepository) FindPlanByID(ctx context.Context, planID string) (*domain.Plan, error) {
	query := `
		SELECT id, name, cost
		FROM plans
		WHERE id = $1;
	`
	var p domain.Plan
	err := r.Pool.QueryRow(ctx, query, planID).Scan(&p.PlanID, &p.Name, &p.Cost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find plan by ID "+planID, err)
	}
	return &p, nil
}
