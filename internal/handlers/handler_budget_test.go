package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
	"github.com/budgetledger/budget_ledger_app/internal/handlers"
	"github.com/budgetledger/budget_ledger_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock BudgetService ---
type MockBudgetService struct {
	mock.Mock
}

var _ portssvc.BudgetService = (*MockBudgetService)(nil)

func (m *MockBudgetService) CreateBudget(ctx context.Context, userID string, req dto.CreateBudgetRequest) (*domain.Budget, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetService) UpdateBudget(ctx context.Context, userID, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error) {
	args := m.Called(ctx, userID, budgetID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	args := m.Called(ctx, userID, budgetID)
	return args.Error(0)
}

func (m *MockBudgetService) GetBudgetByID(ctx context.Context, userID, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, userID, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetService) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

// --- Mock PermissionService ---
type MockPermissionService struct {
	mock.Mock
}

var _ portssvc.PermissionService = (*MockPermissionService)(nil)

func (m *MockPermissionService) SetPermissions(ctx context.Context, actingUserID string, req dto.SetPermissionsRequest) error {
	args := m.Called(ctx, actingUserID, req)
	return args.Error(0)
}

func (m *MockPermissionService) GetPermissions(ctx context.Context, userID, budgetID string) (*domain.Permission, error) {
	args := m.Called(ctx, userID, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Permission), args.Error(1)
}

// --- Mock NodeService ---
type MockNodeService struct {
	mock.Mock
}

var _ portssvc.NodeService = (*MockNodeService)(nil)

func (m *MockNodeService) CreateNode(ctx context.Context, userID string, req dto.CreateNodeRequest) (*domain.Node, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Node), args.Error(1)
}

func (m *MockNodeService) UpdateNode(ctx context.Context, userID, nodeID string, req dto.UpdateNodeRequest) (*domain.Node, error) {
	args := m.Called(ctx, userID, nodeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Node), args.Error(1)
}

func (m *MockNodeService) DeleteNode(ctx context.Context, userID, budgetID, nodeID string) error {
	args := m.Called(ctx, userID, budgetID, nodeID)
	return args.Error(0)
}

func (m *MockNodeService) GetNodeByID(ctx context.Context, userID, nodeID string) (*domain.Node, error) {
	args := m.Called(ctx, userID, nodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Node), args.Error(1)
}

func (m *MockNodeService) ListNodes(ctx context.Context, userID, budgetID string) ([]domain.Node, error) {
	args := m.Called(ctx, userID, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Node), args.Error(1)
}

func (m *MockNodeService) GetRootNode(ctx context.Context, userID, budgetID string, dom domain.NodeDomain, layer domain.NodeLayer) (*domain.Node, error) {
	args := m.Called(ctx, userID, budgetID, dom, layer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Node), args.Error(1)
}

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

var _ portssvc.TransactionService = (*MockTransactionService)(nil)

func (m *MockTransactionService) CreateTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, transactionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) DeleteTransaction(ctx context.Context, userID, budgetID, transactionID string) error {
	args := m.Called(ctx, userID, budgetID, transactionID)
	return args.Error(0)
}

func (m *MockTransactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

var _ portssvc.UserService = (*MockUserService)(nil)

func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, actingUserID, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, actingUserID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, actingUserID, userID string) error {
	args := m.Called(ctx, actingUserID, userID)
	return args.Error(0)
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Mock PlanService ---
type MockPlanService struct {
	mock.Mock
}

var _ portssvc.PlanService = (*MockPlanService)(nil)

func (m *MockPlanService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*domain.Plan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

func (m *MockPlanService) GetPlanByID(ctx context.Context, planID string) (*domain.Plan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

// --- Test Suite ---
type BudgetHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockBudgetService  *MockBudgetService
	mockPermissionSvc  *MockPermissionService
	mockNodeService    *MockNodeService
	mockTransactionSvc *MockTransactionService
	jwtSecret          string
	userID             string
	budgetID           string
}

func (suite *BudgetHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "bla-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *BudgetHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()
	suite.budgetID = uuid.NewString()

	suite.mockBudgetService = new(MockBudgetService)
	suite.mockPermissionSvc = new(MockPermissionService)
	suite.mockNodeService = new(MockNodeService)
	suite.mockTransactionSvc = new(MockTransactionService)

	cfg := &config.Config{
		JWTSecret:         suite.jwtSecret,
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "bla-test",
		IsProduction:      true, // skip swagger wiring
	}
	container := &portssvc.ServiceContainer{
		UserService:        new(MockUserService),
		PlanService:        new(MockPlanService),
		BudgetService:      suite.mockBudgetService,
		PermissionService:  suite.mockPermissionSvc,
		NodeService:        suite.mockNodeService,
		TransactionService: suite.mockTransactionSvc,
	}
	handlers.RegisterRoutes(suite.router, cfg, container)
}

func (suite *BudgetHandlerTestSuite) doRequest(method, url string, body any, authenticated bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *BudgetHandlerTestSuite) TestCreateBudget_Success() {
	budget := &domain.Budget{
		BudgetID: suite.budgetID,
		Name:     "Household",
	}
	suite.mockBudgetService.On("CreateBudget", mock.Anything, suite.userID, dto.CreateBudgetRequest{Name: "Household"}).
		Return(budget, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/budgets", gin.H{"name": "Household"}, true)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.BudgetResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(suite.budgetID, resp.BudgetID)
	suite.mockBudgetService.AssertExpectations(suite.T())
}

func (suite *BudgetHandlerTestSuite) TestCreateBudget_MissingName() {
	w := suite.doRequest(http.MethodPost, "/api/v1/budgets", gin.H{}, true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockBudgetService.AssertNotCalled(suite.T(), "CreateBudget", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BudgetHandlerTestSuite) TestCreateBudget_NoToken() {
	w := suite.doRequest(http.MethodPost, "/api/v1/budgets", gin.H{"name": "Household"}, false)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *BudgetHandlerTestSuite) TestGetBudget_Forbidden() {
	suite.mockBudgetService.On("GetBudgetByID", mock.Anything, suite.userID, suite.budgetID).
		Return(nil, apperrors.NewForbiddenError("cannot read")).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/budgets/"+suite.budgetID, nil, true)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *BudgetHandlerTestSuite) TestDeleteBudget_NoContent() {
	suite.mockBudgetService.On("DeleteBudget", mock.Anything, suite.userID, suite.budgetID).Return(nil).Once()

	w := suite.doRequest(http.MethodDelete, "/api/v1/budgets/"+suite.budgetID, nil, true)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *BudgetHandlerTestSuite) TestSetPermissions_BudgetIDFromPath() {
	targetUserID := uuid.NewString()

	suite.mockPermissionSvc.On("SetPermissions", mock.Anything, suite.userID,
		mock.MatchedBy(func(req dto.SetPermissionsRequest) bool {
			return req.BudgetID == suite.budgetID && req.UserID == targetUserID && req.CanRead
		})).Return(nil).Once()

	w := suite.doRequest(http.MethodPut, "/api/v1/budgets/"+suite.budgetID+"/permissions",
		gin.H{"userID": targetUserID, "canRead": true}, true)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockPermissionSvc.AssertExpectations(suite.T())
}

func (suite *BudgetHandlerTestSuite) TestGetRootNode_Success() {
	root := &domain.Node{
		NodeID:   uuid.NewString(),
		BudgetID: suite.budgetID,
		Name:     "Internal Location",
		Path:     "3",
	}
	suite.mockNodeService.On("GetRootNode", mock.Anything, suite.userID, suite.budgetID,
		domain.DomainInternal, domain.LayerLocation).Return(root, nil).Once()

	url := fmt.Sprintf("/api/v1/budgets/%s/nodes/root?domain=internal&layer=location", suite.budgetID)
	w := suite.doRequest(http.MethodGet, url, nil, true)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.NodeResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(root.NodeID, resp.NodeID)
}

func (suite *BudgetHandlerTestSuite) TestGetRootNode_InvalidDomain() {
	url := fmt.Sprintf("/api/v1/budgets/%s/nodes/root?domain=sideways&layer=location", suite.budgetID)
	w := suite.doRequest(http.MethodGet, url, nil, true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockNodeService.AssertNotCalled(suite.T(), "GetRootNode",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BudgetHandlerTestSuite) TestDeleteNode_RootProtectedConflict() {
	nodeID := uuid.NewString()
	suite.mockNodeService.On("DeleteNode", mock.Anything, suite.userID, suite.budgetID, nodeID).
		Return(apperrors.NewRootProtectedError("node "+nodeID+" is a root node")).Once()

	url := fmt.Sprintf("/api/v1/budgets/%s/nodes/%s", suite.budgetID, nodeID)
	w := suite.doRequest(http.MethodDelete, url, nil, true)

	suite.Equal(http.StatusConflict, w.Code)
}

func TestBudgetHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetHandlerTestSuite))
}
