package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
	"github.com/budgetledger/budget_ledger_app/internal/middleware"
)

var (
	ErrTransactionUnbalanced = errors.New("postings do not balance to zero")
	ErrTransactionMinEntries = errors.New("transaction must have at least two postings")
)

// transactionService provides double-entry transaction operations.
type transactionService struct {
	transactionRepo portsrepo.TransactionRepository
	permissionRepo  portsrepo.PermissionRepository
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(transactionRepo portsrepo.TransactionRepository, permissionRepo portsrepo.PermissionRepository) portssvc.TransactionService {
	return &transactionService{
		transactionRepo: transactionRepo,
		permissionRepo:  permissionRepo,
	}
}

// Ensure transactionService implements the portssvc.TransactionService interface
var _ portssvc.TransactionService = (*transactionService)(nil)

// validatePostingBalance checks the double-entry invariant: at least two
// postings, summing exactly to zero.
func validatePostingBalance(postings []domain.Posting) error {
	if len(postings) < 2 {
		return ErrTransactionMinEntries
	}
	if sum := domain.SumPostings(postings); !sum.IsZero() {
		return fmt.Errorf("%w: postings sum to %s", ErrTransactionUnbalanced, sum.String())
	}
	return nil
}

// CreateTransaction creates a transaction with its postings after the
// balance check. Posting IDs are assigned here.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	transactionID := uuid.NewString()
	postings := dto.ToDomainPostings(transactionID, req.Postings)
	for i := range postings {
		postings[i].PostingID = uuid.NewString()
	}

	if err := validatePostingBalance(postings); err != nil {
		return nil, apperrors.NewValidationFailedError(err.Error())
	}

	txn := domain.Transaction{
		TransactionID: transactionID,
		BudgetID:      req.BudgetID,
		Date:          req.Date,
		Description:   req.Description,
		Postings:      postings,
	}

	if err := s.transactionRepo.CreateTransaction(ctx, txn, userID); err != nil {
		logger.Warn("Failed to create transaction", slog.String("budget_id", req.BudgetID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Transaction created", slog.String("transaction_id", transactionID), slog.String("budget_id", req.BudgetID))
	return s.transactionRepo.FindTransactionByID(ctx, transactionID)
}

// UpdateTransaction replaces the transaction's state with the request.
// Incoming postings are reconciled against the stored ones by posting ID
// inside the repository's locked transaction: matches become updates, fresh
// entries become creates and stored postings absent from the request are
// soft-deleted.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	incoming := dto.ToDomainPostings(transactionID, req.Postings)
	for i := range incoming {
		if incoming[i].PostingID == "" {
			incoming[i].PostingID = uuid.NewString()
		}
	}

	if err := validatePostingBalance(incoming); err != nil {
		return nil, apperrors.NewValidationFailedError(err.Error())
	}

	txn := domain.Transaction{
		TransactionID: transactionID,
		BudgetID:      req.BudgetID,
		Date:          req.Date,
		Description:   req.Description,
	}

	// The repository reconciles against the stored postings under the row
	// lock, so a concurrent committed update is never acted on stale.
	if err := s.transactionRepo.UpdateTransaction(ctx, txn, incoming, userID); err != nil {
		logger.Warn("Failed to update transaction", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		return nil, err
	}
	return s.transactionRepo.FindTransactionByID(ctx, transactionID)
}

// DeleteTransaction soft-deletes the transaction together with its postings.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, budgetID, transactionID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.transactionRepo.DeleteTransaction(ctx, budgetID, transactionID, userID); err != nil {
		logger.Warn("Failed to delete transaction", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		return err
	}
	logger.Info("Transaction deleted", slog.String("transaction_id", transactionID), slog.String("budget_id", budgetID))
	return nil
}

// GetTransactionByID retrieves a transaction the user can read, with its
// live postings. Deleted transactions are reported as not found.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.permissionRepo.AssertCanRead(ctx, userID, txn.BudgetID); err != nil {
		return nil, err
	}
	if txn.IsDeleted {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
	}
	return txn, nil
}
