package pgsql

import (
	"context"
	"errors"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Permission columns checked by the assertion helpers. Kept as constants so
// no caller input ever reaches the SQL text.
const (
	permissionCanRead   = "can_read"
	permissionCanWrite  = "can_write"
	permissionCanShare  = "can_share"
	permissionCanDelete = "can_delete"
)

type PgxPermissionRepository struct {
	BaseRepository
}

// newPgxPermissionRepository creates a new repository for budget permissions.
func newPgxPermissionRepository(pool *pgxpool.Pool) portsrepo.PermissionRepository {
	return &PgxPermissionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPermissionRepository implements portsrepo.PermissionRepository
var _ portsrepo.PermissionRepository = (*PgxPermissionRepository)(nil)

// SetPermissions upserts the target user's permission row for a budget,
// gated on the acting user's can_share flag. Runs in one transaction so the
// share check and the write cannot be split.
func (r *PgxPermissionRepository) SetPermissions(ctx context.Context, actingUserID string, perm domain.Permission) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := assertPermission(ctx, tx, actingUserID, perm.BudgetID, permissionCanShare, "share"); err != nil {
			return err
		}

		query := `
			INSERT INTO permissions (user_id, budget_id, can_read, can_write, can_share, can_delete)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id, budget_id)
				DO UPDATE
				SET can_read = $3, can_write = $4, can_share = $5, can_delete = $6;
		`
		_, err := tx.Exec(ctx, query,
			perm.UserID,
			perm.BudgetID,
			perm.CanRead,
			perm.CanWrite,
			perm.CanShare,
			perm.CanDelete,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to upsert permissions for budget "+perm.BudgetID, err)
		}
		return nil
	})
}

// GetPermissions retrieves the permission row for a user and budget.
func (r *PgxPermissionRepository) GetPermissions(ctx context.Context, userID, budgetID string) (*domain.Permission, error) {
	query := `
		SELECT user_id, budget_id, can_read, can_write, can_share, can_delete
		FROM permissions
		WHERE user_id = $1 AND budget_id = $2;
	`
	var perm domain.Permission
	err := r.Pool.QueryRow(ctx, query, userID, budgetID).Scan(
		&perm.UserID,
		&perm.BudgetID,
		&perm.CanRead,
		&perm.CanWrite,
		&perm.CanShare,
		&perm.CanDelete,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find permissions for budget "+budgetID, err)
	}
	return &perm, nil
}

func (r *PgxPermissionRepository) AssertCanRead(ctx context.Context, userID, budgetID string) error {
	return assertPermission(ctx, r.Pool, userID, budgetID, permissionCanRead, "read")
}

func (r *PgxPermissionRepository) AssertCanWrite(ctx context.Context, userID, budgetID string) error {
	return assertPermission(ctx, r.Pool, userID, budgetID, permissionCanWrite, "write to")
}

func (r *PgxPermissionRepository) AssertCanShare(ctx context.Context, userID, budgetID string) error {
	return assertPermission(ctx, r.Pool, userID, budgetID, permissionCanShare, "share")
}

func (r *PgxPermissionRepository) AssertCanDelete(ctx context.Context, userID, budgetID string) error {
	return assertPermission(ctx, r.Pool, userID, budgetID, permissionCanDelete, "delete")
}

// assertPermission fails with a forbidden error unless the user's permission
// row exists and grants the given flag. A missing row and a false flag are
// deliberately indistinguishable to the caller.
func assertPermission(ctx context.Context, q querier, userID, budgetID, column, verb string) error {
	query := `SELECT ` + column + ` FROM permissions WHERE user_id = $1 AND budget_id = $2;`

	var allowed bool
	err := q.QueryRow(ctx, query, userID, budgetID).Scan(&allowed)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewAppError(500, "failed to check permissions for budget "+budgetID, err)
	}
	if !allowed {
		return apperrors.NewForbiddenError("user " + userID + " cannot " + verb + " budget " + budgetID)
	}
	return nil
}
