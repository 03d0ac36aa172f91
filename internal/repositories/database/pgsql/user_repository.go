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

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new repository for user data.
func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepository {
	return &PgxUserRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxUserRepository implements portsrepo.UserRepository
var _ portsrepo.UserRepository = (*PgxUserRepository)(nil)

// The password hash lives on the identity row; email is versioned with the
// rest of the profile.
const selectCurrentUser = `
	SELECT user_id, full_name, display_name, email, plan_id,
	       version_number, is_deleted, is_most_recent, changeset_id
	FROM current_users
`

// CreateUser inserts the user identity with its credentials and version 0 of
// the profile within one database transaction.
func (r *PgxUserRepository) CreateUser(ctx context.Context, user domain.User, passwordHash string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, password_hash)
			VALUES ($1, $2);
		`, user.UserID, passwordHash)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert user "+user.UserID, err)
		}

		changesetID, err := createUserChangeset(ctx, tx, user.UserID, domain.HintCreateUser)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_versions (user_id, version_number, full_name, display_name, email, plan_id, is_most_recent, is_deleted, changeset_id)
			VALUES ($1, 0, $2, $3, $4, $5, true, false, $6);
		`, user.UserID, user.FullName, user.DisplayName, user.Email, user.PlanID, changesetID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on live email
				return apperrors.NewConflictError("email " + user.Email + " already registered")
			}
			return apperrors.NewAppError(500, "failed to insert user version "+user.UserID, err)
		}
		return nil
	})
}

// UpdateUser appends a new version with the given profile fields.
func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := acquireLockOnUser(ctx, tx, user.UserID); err != nil {
			return err
		}
		changesetID, err := createUserChangeset(ctx, tx, user.UserID, domain.HintUpdateUser)
		if err != nil {
			return err
		}

		query := `
			WITH prev AS (
				UPDATE user_versions
				SET is_most_recent = false
				WHERE user_id = $1 AND is_most_recent = true
				RETURNING version_number, is_deleted
			)
			INSERT INTO user_versions (user_id, version_number, full_name, display_name, email, plan_id, is_most_recent, is_deleted, changeset_id)
			SELECT $1, prev.version_number + 1, $2, $3, $4, $5, true, false, $6
			FROM prev
			WHERE prev.is_deleted = false;
		`
		cmdTag, err := tx.Exec(ctx, query, user.UserID, user.FullName, user.DisplayName, user.Email, user.PlanID, changesetID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on live email
				return apperrors.NewConflictError("email " + user.Email + " already registered")
			}
			return apperrors.NewAppError(500, "failed to append user version for "+user.UserID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("user " + user.UserID + " not found for update")
		}
		return nil
	})
}

// DeleteUser appends a soft-delete version carrying the previous profile.
func (r *PgxUserRepository) DeleteUser(ctx context.Context, userID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := acquireLockOnUser(ctx, tx, userID); err != nil {
			return err
		}
		changesetID, err := createUserChangeset(ctx, tx, userID, domain.HintDeleteUser)
		if err != nil {
			return err
		}

		query := `
			WITH prev AS (
				UPDATE user_versions
				SET is_most_recent = false
				WHERE user_id = $1 AND is_most_recent = true
				RETURNING version_number, full_name, display_name, email, plan_id, is_deleted
			)
			INSERT INTO user_versions (user_id, version_number, full_name, display_name, email, plan_id, is_most_recent, is_deleted, changeset_id)
			SELECT $1, prev.version_number + 1, prev.full_name, prev.display_name, prev.email, prev.plan_id, true, true, $2
			FROM prev
			WHERE prev.is_deleted = false;
		`
		cmdTag, err := tx.Exec(ctx, query, userID, changesetID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to append user delete version for "+userID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("user " + userID + " not found for delete")
		}
		return nil
	})
}

// FindUserByID retrieves the current version of a user, deleted or not.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := selectCurrentUser + ` WHERE user_id = $1;`
	var u domain.User
	err := r.Pool.QueryRow(ctx, query, userID).Scan(
		&u.UserID,
		&u.FullName,
		&u.DisplayName,
		&u.Email,
		&u.PlanID,
		&u.VersionNumber,
		&u.IsDeleted,
		&u.IsMostRecent,
		&u.ChangesetID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find user by ID "+userID, err)
	}
	return &u, nil
}

// FindUserByEmail resolves a user for authentication along with the stored
// password hash.
func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	query := `
		SELECT u.user_id, u.full_name, u.display_name, u.email, u.plan_id,
		       u.version_number, u.is_deleted, u.is_most_recent, u.changeset_id,
		       i.password_hash
		FROM current_users u
		JOIN users i ON i.id = u.user_id
		WHERE u.email = $1 AND u.is_deleted = false;
	`
	var u domain.User
	var hash string
	err := r.Pool.QueryRow(ctx, query, email).Scan(
		&u.UserID,
		&u.FullName,
		&u.DisplayName,
		&u.Email,
		&u.PlanID,
		&u.VersionNumber,
		&u.IsDeleted,
		&u.IsMostRecent,
		&u.ChangesetID,
		&hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.ErrNotFound
		}
		return nil, "", apperrors.NewAppError(500, "failed to find user by email", err)
	}
	return &u, hash, nil
}

// acquireLockOnUser locks the user identity row for the remainder of the
// transaction.
func acquireLockOnUser(ctx context.Context, tx pgx.Tx, userID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE;`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("cannot find matching user " + userID)
		}
		return apperrors.NewAppError(500, "failed to lock user "+userID, err)
	}
	return nil
}
