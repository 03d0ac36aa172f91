package repositories

import (
	"context"

	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
)

// TransactionRepository persists transactions together with their postings.
// Every mutation runs in a single database transaction and records a
// changeset.
type TransactionRepository interface {
	// CreateTransaction inserts the transaction identity, version 0 and
	// version 0 of every posting, gated on can_write.
	CreateTransaction(ctx context.Context, txn domain.Transaction, userID string) error

	// UpdateTransaction appends a new transaction version and reconciles
	// the stored posting set against the incoming one by posting ID. The
	// stored set is read under the transaction's row lock so a concurrent
	// committed update is always observed.
	UpdateTransaction(ctx context.Context, txn domain.Transaction, incoming []domain.Posting, userID string) error

	// DeleteTransaction appends soft-delete versions for the transaction
	// and all of its live postings.
	DeleteTransaction(ctx context.Context, budgetID, transactionID, userID string) error

	// FindTransactionByID returns the current version with its live
	// postings attached, deleted or not.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindPostingsByTransactionID returns the current version of every
	// non-deleted posting of the transaction.
	FindPostingsByTransactionID(ctx context.Context, transactionID string) ([]domain.Posting, error)
}
