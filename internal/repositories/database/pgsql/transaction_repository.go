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

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction and
// posting data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepository {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepository
var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

const insertPostingIdentityQuery = `
	INSERT INTO postings (id, transaction_id)
	VALUES ($1, $2);
`

const insertPostingVersionQuery = `
	INSERT INTO posting_versions (posting_id, version_number, node_id, amount, description, is_most_recent, is_deleted, changeset_id)
	VALUES ($1, 0, $2, $3, $4, true, false, $5);
`

const appendPostingVersionQuery = `
	WITH prev AS (
		UPDATE posting_versions
		SET is_most_recent = false
		WHERE posting_id = $1 AND is_most_recent = true
		RETURNING version_number, is_deleted
	)
	INSERT INTO posting_versions (posting_id, version_number, node_id, amount, description, is_most_recent, is_deleted, changeset_id)
	SELECT $1, prev.version_number + 1, $2, $3, $4, true, false, $5
	FROM prev
	WHERE prev.is_deleted = false;
`

const appendPostingDeleteQuery = `
	WITH prev AS (
		UPDATE posting_versions
		SET is_most_recent = false
		WHERE posting_id = $1 AND is_most_recent = true
		RETURNING version_number, node_id, amount, description, is_deleted
	)
	INSERT INTO posting_versions (posting_id, version_number, node_id, amount, description, is_most_recent, is_deleted, changeset_id)
	SELECT $1, prev.version_number + 1, prev.node_id, prev.amount, prev.description, true, true, $2
	FROM prev
	WHERE prev.is_deleted = false;
`

// CreateTransaction inserts the transaction identity, version 0 and version 0
// of every posting within one database transaction.
func (r *PgxTransactionRepository) CreateTransaction(ctx context.Context, txn domain.Transaction, userID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := assertPermission(ctx, tx, userID, txn.BudgetID, permissionCanWrite, "write to"); err != nil {
			return err
		}
		changesetID, err := createBudgetChangeset(ctx, tx, userID, txn.BudgetID, domain.HintCreateTransaction)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `INSERT INTO transactions (id, budget_id) VALUES ($1, $2);`, txn.TransactionID, txn.BudgetID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("transaction ID " + txn.TransactionID + " already exists")
			}
			return apperrors.NewAppError(500, "failed to insert transaction "+txn.TransactionID, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO transaction_versions (transaction_id, version_number, date, description, is_most_recent, is_deleted, changeset_id)
			VALUES ($1, 0, $2, $3, true, false, $4);
		`, txn.TransactionID, txn.Date, txn.Description, changesetID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert transaction version "+txn.TransactionID, err)
		}

		batch := &pgx.Batch{}
		for _, p := range txn.Postings {
			batch.Queue(insertPostingIdentityQuery, p.PostingID, txn.TransactionID)
			batch.Queue(insertPostingVersionQuery, p.PostingID, p.NodeID, p.Amount, p.Description, changesetID)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return apperrors.NewAppError(500, "failed to insert postings for transaction "+txn.TransactionID, err)
		}
		return nil
	})
}

// UpdateTransaction appends a new transaction version and reconciles the
// posting set by posting ID: creates get identity plus version 0, updates a
// new version and stored postings absent from the incoming set a soft-delete
// version. The stored set is read after the row lock so the diff always acts
// on the committed state of a concurrent update.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction, incoming []domain.Posting, userID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := assertPermission(ctx, tx, userID, txn.BudgetID, permissionCanWrite, "write to"); err != nil {
			return err
		}
		if err := acquireLockOnTransaction(ctx, tx, txn.BudgetID, txn.TransactionID); err != nil {
			return err
		}
		stored, deletedIDs, err := findPostingsForUpdate(ctx, tx, txn.TransactionID)
		if err != nil {
			return err
		}
		for _, p := range incoming {
			if deletedIDs[p.PostingID] {
				return apperrors.NewConflictError("posting " + p.PostingID + " was deleted")
			}
		}
		changes := domain.DiffPostings(stored, incoming)

		changesetID, err := createBudgetChangeset(ctx, tx, userID, txn.BudgetID, domain.HintUpdateTransaction)
		if err != nil {
			return err
		}

		query := `
			WITH prev AS (
				UPDATE transaction_versions
				SET is_most_recent = false
				WHERE transaction_id = $1 AND is_most_recent = true
				RETURNING version_number, is_deleted
			)
			INSERT INTO transaction_versions (transaction_id, version_number, date, description, is_most_recent, is_deleted, changeset_id)
			SELECT $1, prev.version_number + 1, $2, $3, true, false, $4
			FROM prev
			WHERE prev.is_deleted = false;
		`
		cmdTag, err := tx.Exec(ctx, query, txn.TransactionID, txn.Date, txn.Description, changesetID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to append transaction version for "+txn.TransactionID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("transaction " + txn.TransactionID + " not found for update")
		}

		batch := &pgx.Batch{}
		for _, p := range changes.Create {
			batch.Queue(insertPostingIdentityQuery, p.PostingID, txn.TransactionID)
			batch.Queue(insertPostingVersionQuery, p.PostingID, p.NodeID, p.Amount, p.Description, changesetID)
		}
		for _, p := range changes.Update {
			batch.Queue(appendPostingVersionQuery, p.PostingID, p.NodeID, p.Amount, p.Description, changesetID)
		}
		for _, p := range changes.Delete {
			batch.Queue(appendPostingDeleteQuery, p.PostingID, changesetID)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("posting ID already exists")
			}
			return apperrors.NewAppError(500, "failed to apply posting changes for transaction "+txn.TransactionID, err)
		}
		return nil
	})
}

// findPostingsForUpdate reads the current posting versions of the transaction
// within the caller's database transaction, split into the live set and the
// ids of soft-deleted postings.
func findPostingsForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) ([]domain.Posting, map[string]bool, error) {
	rows, err := tx.Query(ctx, `
		SELECT posting_id, transaction_id, node_id, amount, description, version_number, is_deleted, is_most_recent, changeset_id
		FROM current_postings
		WHERE transaction_id = $1
		ORDER BY posting_id;
	`, transactionID)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query postings for transaction "+transactionID, err)
	}
	defer rows.Close()

	live := []domain.Posting{}
	deletedIDs := map[string]bool{}
	for rows.Next() {
		var p domain.Posting
		if err := rows.Scan(
			&p.PostingID,
			&p.TransactionID,
			&p.NodeID,
			&p.Amount,
			&p.Description,
			&p.VersionNumber,
			&p.IsDeleted,
			&p.IsMostRecent,
			&p.ChangesetID,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan posting row for transaction "+transactionID, err)
		}
		if p.IsDeleted {
			deletedIDs[p.PostingID] = true
			continue
		}
		live = append(live, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating posting rows for transaction "+transactionID, err)
	}
	return live, deletedIDs, nil
}

// DeleteTransaction appends soft-delete versions for the transaction and all
// of its live postings.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, budgetID, transactionID, userID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := assertPermission(ctx, tx, userID, budgetID, permissionCanWrite, "write to"); err != nil {
			return err
		}
		if err := acquireLockOnTransaction(ctx, tx, budgetID, transactionID); err != nil {
			return err
		}
		changesetID, err := createBudgetChangeset(ctx, tx, userID, budgetID, domain.HintDeleteTransaction)
		if err != nil {
			return err
		}

		query := `
			WITH prev AS (
				UPDATE transaction_versions
				SET is_most_recent = false
				WHERE transaction_id = $1 AND is_most_recent = true
				RETURNING version_number, date, description, is_deleted
			)
			INSERT INTO transaction_versions (transaction_id, version_number, date, description, is_most_recent, is_deleted, changeset_id)
			SELECT $1, prev.version_number + 1, prev.date, prev.description, true, true, $2
			FROM prev
			WHERE prev.is_deleted = false;
		`
		cmdTag, err := tx.Exec(ctx, query, transactionID, changesetID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to append transaction delete version for "+transactionID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("transaction " + transactionID + " not found for delete")
		}

		// Soft-delete every posting still live on the transaction.
		postingIDs := []string{}
		rows, err := tx.Query(ctx, `
			SELECT posting_id FROM current_postings
			WHERE transaction_id = $1 AND is_deleted = false;
		`, transactionID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to query postings for transaction "+transactionID, err)
		}
		var id string
		if _, err := pgx.ForEachRow(rows, []any{&id}, func() error {
			postingIDs = append(postingIDs, id)
			return nil
		}); err != nil {
			return apperrors.NewAppError(500, "failed to scan posting rows for transaction "+transactionID, err)
		}

		batch := &pgx.Batch{}
		for _, postingID := range postingIDs {
			batch.Queue(appendPostingDeleteQuery, postingID, changesetID)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return apperrors.NewAppError(500, "failed to delete postings for transaction "+transactionID, err)
		}
		return nil
	})
}

// FindTransactionByID retrieves the current version with its live postings
// attached, deleted or not.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT transaction_id, budget_id, date, description, version_number, is_deleted, is_most_recent, changeset_id
		FROM current_transactions
		WHERE transaction_id = $1;
	`
	var t domain.Transaction
	err := r.Pool.QueryRow(ctx, query, transactionID).Scan(
		&t.TransactionID,
		&t.BudgetID,
		&t.Date,
		&t.Description,
		&t.VersionNumber,
		&t.IsDeleted,
		&t.IsMostRecent,
		&t.ChangesetID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}

	postings, err := r.FindPostingsByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	t.Postings = postings
	return &t, nil
}

// FindPostingsByTransactionID retrieves the current version of every
// non-deleted posting of the transaction.
func (r *PgxTransactionRepository) FindPostingsByTransactionID(ctx context.Context, transactionID string) ([]domain.Posting, error) {
	query := `
		SELECT posting_id, transaction_id, node_id, amount, description, version_number, is_deleted, is_most_recent, changeset_id
		FROM current_postings
		WHERE transaction_id = $1 AND is_deleted = false
		ORDER BY posting_id;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query postings for transaction "+transactionID, err)
	}
	defer rows.Close()

	postings := []domain.Posting{}
	for rows.Next() {
		var p domain.Posting
		if err := rows.Scan(
			&p.PostingID,
			&p.TransactionID,
			&p.NodeID,
			&p.Amount,
			&p.Description,
			&p.VersionNumber,
			&p.IsDeleted,
			&p.IsMostRecent,
			&p.ChangesetID,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan posting row for transaction "+transactionID, err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating posting rows for transaction "+transactionID, err)
	}
	return postings, nil
}

// acquireLockOnTransaction locks the transaction identity row for the
// remainder of the database transaction. The lock is scoped to the budget the
// permission assertion ran against, so a transaction belonging to another
// budget reads as not found.
func acquireLockOnTransaction(ctx context.Context, tx pgx.Tx, budgetID, transactionID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM transactions WHERE id = $1 AND budget_id = $2 FOR UPDATE;`, transactionID, budgetID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("cannot find matching transaction " + transactionID)
		}
		return apperrors.NewAppError(500, "failed to lock transaction "+transactionID, err)
	}
	return nil
}
