package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/budgetledger/budget_ledger_app/internal/core/ports/services"
	"github.com/budgetledger/budget_ledger_app/internal/dto"
	"github.com/budgetledger/budget_ledger_app/internal/middleware"
	"github.com/budgetledger/budget_ledger_app/internal/utils"
)

// userService provides user account operations.
type userService struct {
	userRepo portsrepo.UserRepository
	planRepo portsrepo.PlanRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepository, planRepo portsrepo.PlanRepository) portssvc.UserService {
	return &userService{
		userRepo: userRepo,
		planRepo: planRepo,
	}
}

// Ensure userService implements the portssvc.UserService interface
var _ portssvc.UserService = (*userService)(nil)

// CreateUser registers a new user on an existing plan.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.planRepo.FindPlanByID(ctx, req.PlanID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationFailedError("plan " + req.PlanID + " does not exist")
		}
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, apperrors.NewInternalServerError("failed to hash password", err)
	}

	user := domain.User{
		UserID:      uuid.NewString(),
		FullName:    req.FullName,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		PlanID:      req.PlanID,
	}

	if err := s.userRepo.CreateUser(ctx, user, hash); err != nil {
		logger.Warn("Failed to create user", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("User created", slog.String("user_id", user.UserID))
	return s.userRepo.FindUserByID(ctx, user.UserID)
}

// UpdateUser updates the user's own profile. Omitted fields keep their
// current values.
func (s *userService) UpdateUser(ctx context.Context, actingUserID, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if actingUserID != userID {
		return nil, apperrors.NewForbiddenError("users can only update their own account")
	}

	current, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.IsDeleted {
		return nil, apperrors.NewNotFoundError("user " + userID + " not found")
	}

	updated := *current
	if req.FullName != nil {
		updated.FullName = *req.FullName
	}
	if req.DisplayName != nil {
		updated.DisplayName = *req.DisplayName
	}
	if req.Email != nil {
		updated.Email = *req.Email
	}
	if req.PlanID != nil {
		if _, err := s.planRepo.FindPlanByID(ctx, *req.PlanID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationFailedError("plan " + *req.PlanID + " does not exist")
			}
			return nil, err
		}
		updated.PlanID = *req.PlanID
	}

	if err := s.userRepo.UpdateUser(ctx, updated); err != nil {
		logger.Warn("Failed to update user", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, err
	}
	return s.userRepo.FindUserByID(ctx, userID)
}

// DeleteUser soft-deletes the user's own account.
func (s *userService) DeleteUser(ctx context.Context, actingUserID, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if actingUserID != userID {
		return apperrors.NewForbiddenError("users can only delete their own account")
	}

	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		logger.Warn("Failed to delete user", slog.String("user_id", userID), slog.String("error", err.Error()))
		return err
	}
	logger.Info("User deleted", slog.String("user_id", userID))
	return nil
}

// GetUserByID retrieves a user. Deleted users are reported as not found.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted {
		return nil, apperrors.NewNotFoundError("user " + userID + " not found")
	}
	return user, nil
}

// AuthenticateUser verifies the credentials. Unknown emails, deleted users
// and wrong passwords all produce the same unauthorized error.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, hash, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewUnauthorizedError("invalid credentials")
		}
		return nil, err
	}
	if user.IsDeleted || !utils.CheckPasswordHash(password, hash) {
		logger.Warn("Authentication failed", slog.String("user_id", user.UserID))
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}
	return user, nil
}
