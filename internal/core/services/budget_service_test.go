package services_test

import (
	"context"
	"testing"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
	"github.com/budgetledger/budget_ledger_app/internal/core/services"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock BudgetRepository ---
type MockBudgetRepository struct {
	mock.Mock
}

var _ portsrepo.BudgetRepository = (*MockBudgetRepository)(nil)

func (m *MockBudgetRepository) CreateBudget(ctx context.Context, budget domain.Budget, creatorUserID string) error {
	args := m.Called(ctx, budget, creatorUserID)
	return args.Error(0)
}

func (m *MockBudgetRepository) UpdateBudget(ctx context.Context, budgetID, name, userID string) error {
	args := m.Called(ctx, budgetID, name, userID)
	return args.Error(0)
}

func (m *MockBudgetRepository) DeleteBudget(ctx context.Context, budgetID, userID string) error {
	args := m.Called(ctx, budgetID, userID)
	return args.Error(0)
}

func (m *MockBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ListBudgetsByReader(ctx context.Context, userID string) ([]domain.Budget, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

// --- Mock PermissionRepository (shared across service tests) ---
type MockPermissionRepository struct {
	mock.Mock
}

var _ portsrepo.PermissionRepository = (*MockPermissionRepository)(nil)

func (m *MockPermissionRepository) SetPermissions(ctx context.Context, actingUserID string, perm domain.Permission) error {
	args := m.Called(ctx, actingUserID, perm)
	return args.Error(0)
}

func (m *MockPermissionRepository) GetPermissions(ctx context.Context, userID, budgetID string) (*domain.Permission, error) {
	args := m.Called(ctx, userID, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Permission), args.Error(1)
}

func (m *MockPermissionRepository) AssertCanRead(ctx context.Context, userID, budgetID string) error {
	args := m.Called(ctx, userID, budgetID)
	return args.Error(0)
}

func (m *MockPermissionRepository) AssertCanWrite(ctx context.Context, userID, budgetID string) error {
	args := m.Called(ctx, userID, budgetID)
	return args.Error(0)
}

func (m *MockPermissionRepository) AssertCanShare(ctx context.Context, userID, budgetID string) error {
	args := m.Called(ctx, userID, budgetID)
	return args.Error(0)
}

func (m *MockPermissionRepository) AssertCanDelete(ctx context.Context, userID, budgetID string) error {
	args := m.Called(ctx, userID, budgetID)
	return args.Error(0)
}

// --- Test Suite Setup ---
type BudgetServiceTestSuite struct {
	suite.Suite
	mockBudgetRepo     *MockBudgetRepository
	mockPermissionRepo *MockPermissionRepository
	service            portssvc.BudgetService
	userID             string
	budgetID           string
}

func (suite *BudgetServiceTestSuite) SetupTest() {
	suite.mockBudgetRepo = new(MockBudgetRepository)
	suite.mockPermissionRepo = new(MockPermissionRepository)
	suite.service = services.NewBudgetService(suite.mockBudgetRepo, suite.mockPermissionRepo)
	suite.userID = uuid.NewString()
	suite.budgetID = uuid.NewString()
}

// --- Test Cases ---

func (suite *BudgetServiceTestSuite) TestCreateBudget_Success() {
	ctx := context.Background()
	req := dto.CreateBudgetRequest{Name: "Household"}

	suite.mockBudgetRepo.On("CreateBudget", ctx, mock.AnythingOfType("domain.Budget"), suite.userID).Return(nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, mock.AnythingOfType("string")).
		Return(&domain.Budget{Name: "Household", VersionFields: domain.VersionFields{VersionNumber: 0, IsMostRecent: true}}, nil).Once()

	budget, err := suite.service.CreateBudget(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(budget)
	suite.Equal("Household", budget.Name)
	suite.Equal(int64(0), budget.VersionNumber)
	suite.mockBudgetRepo.AssertExpectations(suite.T())

	// The generated id must flow into the repository call.
	created := suite.mockBudgetRepo.Calls[0].Arguments.Get(1).(domain.Budget)
	suite.NotEmpty(created.BudgetID)
}

func (suite *BudgetServiceTestSuite) TestCreateBudget_RepoError() {
	ctx := context.Background()
	req := dto.CreateBudgetRequest{Name: "Household"}

	suite.mockBudgetRepo.On("CreateBudget", ctx, mock.AnythingOfType("domain.Budget"), suite.userID).
		Return(apperrors.NewInternalServerError("boom", nil)).Once()

	_, err := suite.service.CreateBudget(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.mockBudgetRepo.AssertNotCalled(suite.T(), "FindBudgetByID", mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestUpdateBudget_Success() {
	ctx := context.Background()
	req := dto.UpdateBudgetRequest{Name: "Renamed"}

	suite.mockBudgetRepo.On("UpdateBudget", ctx, suite.budgetID, "Renamed", suite.userID).Return(nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, suite.budgetID).
		Return(&domain.Budget{BudgetID: suite.budgetID, Name: "Renamed", VersionFields: domain.VersionFields{VersionNumber: 1, IsMostRecent: true}}, nil).Once()

	budget, err := suite.service.UpdateBudget(ctx, suite.userID, suite.budgetID, req)

	suite.Require().NoError(err)
	suite.Equal("Renamed", budget.Name)
	suite.Equal(int64(1), budget.VersionNumber)
	suite.mockBudgetRepo.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestUpdateBudget_NotFound() {
	ctx := context.Background()
	req := dto.UpdateBudgetRequest{Name: "Renamed"}

	suite.mockBudgetRepo.On("UpdateBudget", ctx, suite.budgetID, "Renamed", suite.userID).
		Return(apperrors.NewNotFoundError("budget missing")).Once()

	_, err := suite.service.UpdateBudget(ctx, suite.userID, suite.budgetID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BudgetServiceTestSuite) TestDeleteBudget_Forbidden() {
	ctx := context.Background()

	suite.mockBudgetRepo.On("DeleteBudget", ctx, suite.budgetID, suite.userID).
		Return(apperrors.NewForbiddenError("no delete permission")).Once()

	err := suite.service.DeleteBudget(ctx, suite.userID, suite.budgetID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *BudgetServiceTestSuite) TestGetBudgetByID_Success() {
	ctx := context.Background()

	suite.mockPermissionRepo.On("AssertCanRead", ctx, suite.userID, suite.budgetID).Return(nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, suite.budgetID).
		Return(&domain.Budget{BudgetID: suite.budgetID, Name: "Household"}, nil).Once()

	budget, err := suite.service.GetBudgetByID(ctx, suite.userID, suite.budgetID)

	suite.Require().NoError(err)
	suite.Equal(suite.budgetID, budget.BudgetID)
	suite.mockPermissionRepo.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestGetBudgetByID_NoReadPermission() {
	ctx := context.Background()

	suite.mockPermissionRepo.On("AssertCanRead", ctx, suite.userID, suite.budgetID).
		Return(apperrors.NewForbiddenError("cannot read")).Once()

	_, err := suite.service.GetBudgetByID(ctx, suite.userID, suite.budgetID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockBudgetRepo.AssertNotCalled(suite.T(), "FindBudgetByID", mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestGetBudgetByID_DeletedIsNotFound() {
	ctx := context.Background()

	suite.mockPermissionRepo.On("AssertCanRead", ctx, suite.userID, suite.budgetID).Return(nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, suite.budgetID).
		Return(&domain.Budget{BudgetID: suite.budgetID, VersionFields: domain.VersionFields{IsDeleted: true, IsMostRecent: true}}, nil).Once()

	_, err := suite.service.GetBudgetByID(ctx, suite.userID, suite.budgetID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BudgetServiceTestSuite) TestListBudgets() {
	ctx := context.Background()
	budgets := []domain.Budget{
		{BudgetID: uuid.NewString(), Name: "A"},
		{BudgetID: uuid.NewString(), Name: "B"},
	}

	suite.mockBudgetRepo.On("ListBudgetsByReader", ctx, suite.userID).Return(budgets, nil).Once()

	got, err := suite.service.ListBudgets(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Len(got, 2)
}

func TestBudgetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetServiceTestSuite))
}
