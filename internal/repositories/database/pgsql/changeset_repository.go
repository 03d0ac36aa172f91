package pgsql

import (
	"context"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// createBudgetChangeset records the provenance of a budget-scoped mutation
// and returns the fresh changeset ID for the version rows to reference.
func createBudgetChangeset(ctx context.Context, tx pgx.Tx, userID, budgetID string, hint domain.BudgetChangesetHint) (string, error) {
	changesetID := uuid.NewString()
	query := `
		INSERT INTO budget_changesets (id, user_id, budget_id, hint, created_at)
		VALUES ($1, $2, $3, $4, NOW());
	`
	_, err := tx.Exec(ctx, query, changesetID, userID, budgetID, hint)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to insert budget changeset for budget "+budgetID, err)
	}
	return changesetID, nil
}

// createUserChangeset records the provenance of a user-scoped mutation.
func createUserChangeset(ctx context.Context, tx pgx.Tx, userID string, hint domain.UserChangesetHint) (string, error) {
	changesetID := uuid.NewString()
	query := `
		INSERT INTO user_changesets (id, user_id, hint, created_at)
		VALUES ($1, $2, $3, NOW());
	`
	_, err := tx.Exec(ctx, query, changesetID, userID, hint)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to insert user changeset for user "+userID, err)
	}
	return changesetID, nil
}
