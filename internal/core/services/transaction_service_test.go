package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
	"github.com/budgetledger/budget_ledger_app/internal/core/services"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepository = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, txn domain.Transaction, userID string) error {
	args := m.Called(ctx, txn, userID)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction, incoming []domain.Posting, userID string) error {
	args := m.Called(ctx, txn, incoming, userID)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, budgetID, transactionID, userID string) error {
	args := m.Called(ctx, budgetID, transactionID, userID)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindPostingsByTransactionID(ctx context.Context, transactionID string) ([]domain.Posting, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Posting), args.Error(1)
}

// --- Test Suite Setup ---
type TransactionServiceTestSuite struct {
	suite.Suite
	mockTransactionRepo *MockTransactionRepository
	mockPermissionRepo  *MockPermissionRepository
	service             portssvc.TransactionService
	userID              string
	budgetID            string
	nodeA               string
	nodeB               string
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTransactionRepo = new(MockTransactionRepository)
	suite.mockPermissionRepo = new(MockPermissionRepository)
	suite.service = services.NewTransactionService(suite.mockTransactionRepo, suite.mockPermissionRepo)
	suite.userID = uuid.NewString()
	suite.budgetID = uuid.NewString()
	suite.nodeA = uuid.NewString()
	suite.nodeB = uuid.NewString()
}

func (suite *TransactionServiceTestSuite) balancedRequest() dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		BudgetID:    suite.budgetID,
		Date:        time.Now().UTC(),
		Description: "weekly shop",
		Postings: []dto.PostingRequest{
			{NodeID: suite.nodeA, Amount: decimal.NewFromInt(100)},
			{NodeID: suite.nodeB, Amount: decimal.NewFromInt(-100)},
		},
	}
}

// --- Test Cases ---

func (suite *TransactionServiceTestSuite) TestCreateTransaction_Success() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockTransactionRepo.On("CreateTransaction", ctx, mock.AnythingOfType("domain.Transaction"), suite.userID).Return(nil).Once()
	suite.mockTransactionRepo.On("FindTransactionByID", ctx, mock.AnythingOfType("string")).
		Return(&domain.Transaction{BudgetID: suite.budgetID, Description: "weekly shop"}, nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.Equal("weekly shop", txn.Description)

	created := suite.mockTransactionRepo.Calls[0].Arguments.Get(1).(domain.Transaction)
	suite.NotEmpty(created.TransactionID)
	suite.Require().Len(created.Postings, 2)
	for _, p := range created.Postings {
		suite.NotEmpty(p.PostingID)
		suite.Equal(created.TransactionID, p.TransactionID)
	}
	suite.mockTransactionRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_LessThanTwoPostings() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Postings = req.Postings[:1]

	_, err := suite.service.CreateTransaction(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTransactionRepo.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_Unbalanced() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Postings[1].Amount = decimal.NewFromInt(-99)

	_, err := suite.service.CreateTransaction(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTransactionRepo.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_PassesFullPostingSetToRepository() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	keptID := uuid.NewString()

	req := dto.UpdateTransactionRequest{
		BudgetID: suite.budgetID,
		Date:     time.Now().UTC(),
		Postings: []dto.PostingRequest{
			{PostingID: keptID, NodeID: suite.nodeA, Amount: decimal.NewFromInt(75)},
			{NodeID: suite.nodeB, Amount: decimal.NewFromInt(-75)},
		},
	}

	suite.mockTransactionRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("[]domain.Posting"), suite.userID).Return(nil).Once()
	suite.mockTransactionRepo.On("FindTransactionByID", ctx, transactionID).
		Return(&domain.Transaction{TransactionID: transactionID, BudgetID: suite.budgetID}, nil).Once()

	_, err := suite.service.UpdateTransaction(ctx, suite.userID, transactionID, req)

	suite.Require().NoError(err)

	// Reconciliation happens inside the repository's locked transaction. The
	// service must not read the stored postings first: a read here would act
	// on state a concurrent committed update may have replaced.
	suite.mockTransactionRepo.AssertNotCalled(suite.T(), "FindPostingsByTransactionID", mock.Anything, mock.Anything)
	suite.Equal("UpdateTransaction", suite.mockTransactionRepo.Calls[0].Method)

	incoming := suite.mockTransactionRepo.Calls[0].Arguments.Get(2).([]domain.Posting)
	suite.Require().Len(incoming, 2)
	suite.Equal(keptID, incoming[0].PostingID)
	suite.True(incoming[0].Amount.Equal(decimal.NewFromInt(75)))
	suite.NotEmpty(incoming[1].PostingID)
	suite.Equal(transactionID, incoming[1].TransactionID)
	suite.mockTransactionRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_Unbalanced() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	req := dto.UpdateTransactionRequest{
		BudgetID: suite.budgetID,
		Date:     time.Now().UTC(),
		Postings: []dto.PostingRequest{
			{NodeID: suite.nodeA, Amount: decimal.NewFromInt(10)},
			{NodeID: suite.nodeB, Amount: decimal.NewFromInt(-5)},
		},
	}

	_, err := suite.service.UpdateTransaction(ctx, suite.userID, transactionID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTransactionRepo.AssertNotCalled(suite.T(), "UpdateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_NotFound() {
	ctx := context.Background()
	transactionID := uuid.NewString()

	suite.mockTransactionRepo.On("DeleteTransaction", ctx, suite.budgetID, transactionID, suite.userID).
		Return(apperrors.NewNotFoundError("transaction missing")).Once()

	err := suite.service.DeleteTransaction(ctx, suite.userID, suite.budgetID, transactionID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TransactionServiceTestSuite) TestGetTransactionByID_Success() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	txn := &domain.Transaction{
		TransactionID: transactionID,
		BudgetID:      suite.budgetID,
		Postings: []domain.Posting{
			{PostingID: uuid.NewString(), Amount: decimal.NewFromInt(20)},
			{PostingID: uuid.NewString(), Amount: decimal.NewFromInt(-20)},
		},
	}

	suite.mockTransactionRepo.On("FindTransactionByID", ctx, transactionID).Return(txn, nil).Once()
	suite.mockPermissionRepo.On("AssertCanRead", ctx, suite.userID, suite.budgetID).Return(nil).Once()

	got, err := suite.service.GetTransactionByID(ctx, suite.userID, transactionID)

	suite.Require().NoError(err)
	suite.Len(got.Postings, 2)
}

func (suite *TransactionServiceTestSuite) TestGetTransactionByID_DeletedIsNotFound() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	txn := &domain.Transaction{
		TransactionID: transactionID,
		BudgetID:      suite.budgetID,
		VersionFields: domain.VersionFields{IsDeleted: true, IsMostRecent: true},
	}

	suite.mockTransactionRepo.On("FindTransactionByID", ctx, transactionID).Return(txn, nil).Once()
	suite.mockPermissionRepo.On("AssertCanRead", ctx, suite.userID, suite.budgetID).Return(nil).Once()

	_, err := suite.service.GetTransactionByID(ctx, suite.userID, transactionID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
