package pgsql

import (
	"context"
	"errors"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBudgetRepository struct {
	BaseRepository
}

// newPgxBudgetRepository creates a new repository for budget data.
func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepository {
	return &PgxBudgetRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxBudgetRepository implements portsrepo.BudgetRepository
var _ portsrepo.BudgetRepository = (*PgxBudgetRepository)(nil)

// CreateBudget inserts the budget identity, version 0, full permissions for
// the creator and the four root nodes, all within one database transaction.
func (r *PgxBudgetRepository) CreateBudget(ctx context.Context, budget domain.Budget, creatorUserID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO budgets (id) VALUES ($1);`, budget.BudgetID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("budget ID " + budget.BudgetID + " already exists")
			}
			return apperrors.NewAppError(500, "failed to insert budget "+budget.BudgetID, err)
		}

		changesetID, err := createBudgetChangeset(ctx, tx, creatorUserID, budget.BudgetID, domain.HintCreateBudget)
		if err != nil {
			return err
		}

		perm := domain.FullPermissions(creatorUserID, budget.BudgetID)
		_, err = tx.Exec(ctx, `
			INSERT INTO permissions (user_id, budget_id, can_read, can_write, can_share, can_delete)
			VALUES ($1, $2, $3, $4, $5, $6);
		`, perm.UserID, perm.BudgetID, perm.CanRead, perm.CanWrite, perm.CanShare, perm.CanDelete)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert creator permissions for budget "+budget.BudgetID, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO budget_versions (budget_id, version_number, name, is_deleted, is_most_recent, changeset_id)
			VALUES ($1, 0, $2, false, true, $3);
		`, budget.BudgetID, budget.Name, changesetID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert budget version for budget "+budget.BudgetID, err)
		}

		// One root node per (domain, layer) pair, named after the pair.
		roots := []struct {
			dom   domain.NodeDomain
			layer domain.NodeLayer
			name  string
		}{
			{domain.DomainInternal, domain.LayerLocation, "Internal Location"},
			{domain.DomainInternal, domain.LayerPurpose, "Internal Purpose"},
			{domain.DomainExternal, domain.LayerLocation, "External Location"},
			{domain.DomainExternal, domain.LayerPurpose, "External Purpose"},
		}
		for _, root := range roots {
			nodeID := uuid.NewString()
			if err := createRootNode(ctx, tx, changesetID, budget.BudgetID, nodeID, root.name); err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO roots (budget_id, domain, layer, node_id)
				VALUES ($1, $2, $3, $4);
			`, budget.BudgetID, root.dom, root.layer, nodeID)
			if err != nil {
				return apperrors.NewAppError(500, "failed to insert root mapping for budget "+budget.BudgetID, err)
			}
		}

		return nil
	})
}

// UpdateBudget appends a new version with the given name.
func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budgetID, name, userID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := assertPermission(ctx, tx, userID, budgetID, permissionCanWrite, "write to"); err != nil {
			return err
		}
		if err := acquireLockOnBudget(ctx, tx, budgetID); err != nil {
			return err
		}
		changesetID, err := createBudgetChangeset(ctx, tx, userID, budgetID, domain.HintUpdateBudget)
		if err != nil {
			return err
		}

		query := `
			WITH prev AS (
				UPDATE budget_versions
				SET is_most_recent = false
				WHERE budget_id = $1 AND is_most_recent = true
				RETURNING version_number, is_deleted
			)
			INSERT INTO budget_versions (budget_id, version_number, name, is_deleted, is_most_recent, changeset_id)
			SELECT $1, prev.version_number + 1, $2, false, true, $3
			FROM prev
			WHERE prev.is_deleted = false;
		`
		cmdTag, err := tx.Exec(ctx, query, budgetID, name, changesetID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to append budget version for "+budgetID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			// Current version is deleted, roll everything back
			return apperrors.NewNotFoundError("budget " + budgetID + " not found for update")
		}
		return nil
	})
}

// DeleteBudget appends a soft-delete version carrying the previous name.
func (r *PgxBudgetRepository) DeleteBudget(ctx context.Context, budgetID, userID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := assertPermission(ctx, tx, userID, budgetID, permissionCanDelete, "delete"); err != nil {
			return err
		}
		if err := acquireLockOnBudget(ctx, tx, budgetID); err != nil {
			return err
		}
		changesetID, err := createBudgetChangeset(ctx, tx, userID, budgetID, domain.HintDeleteBudget)
		if err != nil {
			return err
		}

		query := `
			WITH prev AS (
				UPDATE budget_versions
				SET is_most_recent = false
				WHERE budget_id = $1 AND is_most_recent = true
				RETURNING version_number, name, is_deleted
			)
			INSERT INTO budget_versions (budget_id, version_number, name, is_deleted, is_most_recent, changeset_id)
			SELECT $1, prev.version_number + 1, prev.name, true, true, $2
			FROM prev
			WHERE prev.is_deleted = false;
		`
		cmdTag, err := tx.Exec(ctx, query, budgetID, changesetID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to append budget delete version for "+budgetID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("budget " + budgetID + " not found for delete")
		}
		return nil
	})
}

// FindBudgetByID retrieves the current version of a budget, deleted or not.
func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	query := `
		SELECT budget_id, name, version_number, is_deleted, is_most_recent, changeset_id
		FROM current_budgets
		WHERE budget_id = $1;
	`
	var b domain.Budget
	err := r.Pool.QueryRow(ctx, query, budgetID).Scan(
		&b.BudgetID,
		&b.Name,
		&b.VersionNumber,
		&b.IsDeleted,
		&b.IsMostRecent,
		&b.ChangesetID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find budget by ID "+budgetID, err)
	}
	return &b, nil
}

// ListBudgetsByReader retrieves the current version of every non-deleted
// budget the user can read.
func (r *PgxBudgetRepository) ListBudgetsByReader(ctx context.Context, userID string) ([]domain.Budget, error) {
	query := `
		SELECT b.budget_id, b.name, b.version_number, b.is_deleted, b.is_most_recent, b.changeset_id
		FROM current_budgets b
		JOIN permissions p ON p.budget_id = b.budget_id
		WHERE p.user_id = $1 AND p.can_read = true AND b.is_deleted = false
		ORDER BY b.name;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query budgets for user "+userID, err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		var b domain.Budget
		if err := rows.Scan(
			&b.BudgetID,
			&b.Name,
			&b.VersionNumber,
			&b.IsDeleted,
			&b.IsMostRecent,
			&b.ChangesetID,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan budget row for user "+userID, err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating budget rows for user "+userID, err)
	}
	return budgets, nil
}

// acquireLockOnBudget locks the budget identity row for the remainder of the
// transaction so concurrent version appends serialize.
func acquireLockOnBudget(ctx context.Context, tx pgx.Tx, budgetID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM budgets WHERE id = $1 FOR UPDATE;`, budgetID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("cannot find matching budget " + budgetID)
		}
		return apperrors.NewAppError(500, "failed to lock budget "+budgetID, err)
	}
	return nil
}
