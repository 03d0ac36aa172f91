package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxNodeRepository struct {
	BaseRepository
}

// newPgxNodeRepository creates a new repository for the node hierarchy.
func newPgxNodeRepository(pool *pgxpool.Pool) portsrepo.NodeRepository {
	return &PgxNodeRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxNodeRepository implements portsrepo.NodeRepository
var _ portsrepo.NodeRepository = (*PgxNodeRepository)(nil)

const selectCurrentNode = `
	SELECT node_id, budget_id, parent_node_id, path, label, name, opening_date, closing_date,
	       version_number, is_deleted, is_most_recent, changeset_id
	FROM current_nodes
`

// createRootNode inserts a root node for a new budget: fresh label, path
// equal to its own label, version 1. Shared with the budget repository,
// which calls it during budget creation.
func createRootNode(ctx context.Context, tx pgx.Tx, changesetID, budgetID, nodeID, name string) error {
	var label int64
	if err := tx.QueryRow(ctx, `SELECT nextval('node_label_seq');`).Scan(&label); err != nil {
		return apperrors.NewAppError(500, "failed to draw node label for budget "+budgetID, err)
	}

	path := strconv.FormatInt(label, 10)
	_, err := tx.Exec(ctx, `
		INSERT INTO nodes (id, budget_id, parent_node_id, path, label)
		VALUES ($1, $2, NULL, $3, $4);
	`, nodeID, budgetID, path, label)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert root node "+nodeID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO node_versions (node_id, version_number, name, opening_date, closing_date, is_most_recent, is_deleted, changeset_id)
		VALUES ($1, 1, $2, NOW(), NULL, true, false, $3);
	`, nodeID, name, changesetID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert root node version "+nodeID, err)
	}
	return nil
}

// CreateChildNode draws a fresh label, extends the parent's path with it and
// inserts identity plus version 0 within one transaction.
func (r *PgxNodeRepository) CreateChildNode(ctx context.Context, node domain.Node, userID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := assertPermission(ctx, tx, userID, node.BudgetID, permissionCanWrite, "write to"); err != nil {
			return err
		}
		changesetID, err := createBudgetChangeset(ctx, tx, userID, node.BudgetID, domain.HintCreateNode)
		if err != nil {
			return err
		}

		if node.ParentNodeID == nil {
			return apperrors.NewValidationFailedError("parent node ID is required")
		}
		parentID := *node.ParentNodeID

		// Lock the parent identity row so its path cannot disappear under us.
		var parentPath string
		err = tx.QueryRow(ctx, `
			SELECT path FROM nodes WHERE id = $1 AND budget_id = $2 FOR UPDATE;
		`, parentID, node.BudgetID).Scan(&parentPath)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFoundError("cannot find matching parent node " + parentID)
			}
			return apperrors.NewAppError(500, "failed to lock parent node "+parentID, err)
		}

		var label int64
		if err := tx.QueryRow(ctx, `SELECT nextval('node_label_seq');`).Scan(&label); err != nil {
			return apperrors.NewAppError(500, "failed to draw node label for budget "+node.BudgetID, err)
		}

		path := parentPath + domain.PathSeparator + strconv.FormatInt(label, 10)
		_, err = tx.Exec(ctx, `
			INSERT INTO nodes (id, budget_id, parent_node_id, path, label)
			VALUES ($1, $2, $3, $4, $5);
		`, node.NodeID, node.BudgetID, parentID, path, label)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("node ID " + node.NodeID + " already exists")
			}
			return apperrors.NewAppError(500, "failed to insert node "+node.NodeID, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO node_versions (node_id, version_number, name, opening_date, closing_date, is_most_recent, is_deleted, changeset_id)
			VALUES ($1, 0, $2, $3, $4, true, false, $5);
		`, node.NodeID, node.Name, node.OpeningDate, node.ClosingDate, changesetID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert node version "+node.NodeID, err)
		}
		return nil
	})
}

// UpdateNode appends a new version with the given content. Root nodes cannot
// be updated.
func (r *PgxNodeRepository) UpdateNode(ctx context.Context, node domain.Node, userID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := assertPermission(ctx, tx, userID, node.BudgetID, permissionCanWrite, "write to"); err != nil {
			return err
		}
		if err := acquireLockOnNode(ctx, tx, node.BudgetID, node.NodeID); err != nil {
			return err
		}
		if err := rejectRootNode(ctx, tx, node.BudgetID, node.NodeID, "cannot update a root node"); err != nil {
			return err
		}
		changesetID, err := createBudgetChangeset(ctx, tx, userID, node.BudgetID, domain.HintUpdateNode)
		if err != nil {
			return err
		}

		query := `
			WITH prev AS (
				UPDATE node_versions
				SET is_most_recent = false
				WHERE node_id = $1 AND is_most_recent = true
				RETURNING version_number, is_deleted
			)
			INSERT INTO node_versions (node_id, version_number, name, opening_date, closing_date, is_most_recent, is_deleted, changeset_id)
			SELECT $1, prev.version_number + 1, $2, $3, $4, true, false, $5
			FROM prev
			WHERE prev.is_deleted = false;
		`
		cmdTag, err := tx.Exec(ctx, query, node.NodeID, node.Name, node.OpeningDate, node.ClosingDate, changesetID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to append node version for "+node.NodeID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("node " + node.NodeID + " not found for update")
		}
		return nil
	})
}

// DeleteNode appends a soft-delete version carrying the previous content.
// Root nodes cannot be deleted.
func (r *PgxNodeRepository) DeleteNode(ctx context.Context, budgetID, nodeID, userID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := assertPermission(ctx, tx, userID, budgetID, permissionCanWrite, "write to"); err != nil {
			return err
		}
		if err := acquireLockOnNode(ctx, tx, budgetID, nodeID); err != nil {
			return err
		}
		if err := rejectRootNode(ctx, tx, budgetID, nodeID, "cannot delete a root node"); err != nil {
			return err
		}
		changesetID, err := createBudgetChangeset(ctx, tx, userID, budgetID, domain.HintDeleteNode)
		if err != nil {
			return err
		}

		query := `
			WITH prev AS (
				UPDATE node_versions
				SET is_most_recent = false
				WHERE node_id = $1 AND is_most_recent = true
				RETURNING version_number, name, opening_date, closing_date, is_deleted
			)
			INSERT INTO node_versions (node_id, version_number, name, opening_date, closing_date, is_most_recent, is_deleted, changeset_id)
			SELECT $1, prev.version_number + 1, prev.name, prev.opening_date, prev.closing_date, true, true, $2
			FROM prev
			WHERE prev.is_deleted = false;
		`
		cmdTag, err := tx.Exec(ctx, query, nodeID, changesetID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to append node delete version for "+nodeID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("node " + nodeID + " not found for delete")
		}
		return nil
	})
}

// FindNodeByID retrieves the current version of a node, deleted or not.
func (r *PgxNodeRepository) FindNodeByID(ctx context.Context, nodeID string) (*domain.Node, error) {
	query := selectCurrentNode + ` WHERE node_id = $1;`
	node, err := scanNode(r.Pool.QueryRow(ctx, query, nodeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find node by ID "+nodeID, err)
	}
	return node, nil
}

// FindNodesByBudgetID retrieves the current version of every node of the
// budget, ordered by path so parents precede their children.
func (r *PgxNodeRepository) FindNodesByBudgetID(ctx context.Context, budgetID string) ([]domain.Node, error) {
	query := selectCurrentNode + ` WHERE budget_id = $1 ORDER BY path;`
	rows, err := r.Pool.Query(ctx, query, budgetID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query nodes for budget "+budgetID, err)
	}
	defer rows.Close()

	nodes := []domain.Node{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan node row for budget "+budgetID, err)
		}
		nodes = append(nodes, *node)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating node rows for budget "+budgetID, err)
	}
	return nodes, nil
}

// FindRootNode resolves the root node of a (domain, layer) pair.
func (r *PgxNodeRepository) FindRootNode(ctx context.Context, budgetID string, dom domain.NodeDomain, layer domain.NodeLayer) (*domain.Node, error) {
	query := `
		SELECT n.node_id, n.budget_id, n.parent_node_id, n.path, n.label, n.name, n.opening_date, n.closing_date,
		       n.version_number, n.is_deleted, n.is_most_recent, n.changeset_id
		FROM current_nodes n
		JOIN roots r ON r.node_id = n.node_id
		WHERE r.budget_id = $1 AND r.domain = $2 AND r.layer = $3;
	`
	node, err := scanNode(r.Pool.QueryRow(ctx, query, budgetID, dom, layer))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find root node for budget "+budgetID, err)
	}
	return node, nil
}

// acquireLockOnNode locks the node identity row for the remainder of the
// transaction. The lock is scoped to the budget the permission assertion ran
// against, so a node belonging to another budget reads as not found.
func acquireLockOnNode(ctx context.Context, tx pgx.Tx, budgetID, nodeID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM nodes WHERE id = $1 AND budget_id = $2 FOR UPDATE;`, nodeID, budgetID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("cannot find matching node " + nodeID)
		}
		return apperrors.NewAppError(500, "failed to lock node "+nodeID, err)
	}
	return nil
}

// rejectRootNode fails when the node is one of the budget's protected roots.
func rejectRootNode(ctx context.Context, tx pgx.Tx, budgetID, nodeID, message string) error {
	var isRoot bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM roots WHERE budget_id = $1 AND node_id = $2);
	`, budgetID, nodeID).Scan(&isRoot)
	if err != nil {
		return apperrors.NewAppError(500, "failed to check root status of node "+nodeID, err)
	}
	if isRoot {
		return apperrors.NewRootProtectedError(message)
	}
	return nil
}

func scanNode(row pgx.Row) (*domain.Node, error) {
	var n domain.Node
	err := row.Scan(
		&n.NodeID,
		&n.BudgetID,
		&n.ParentNodeID,
		&n.Path,
		&n.Label,
		&n.Name,
		&n.OpeningDate,
		&n.ClosingDate,
		&n.VersionNumber,
		&n.IsDeleted,
		&n.IsMostRecent,
		&n.ChangesetID,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
