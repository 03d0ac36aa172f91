package repositories

import (
	"context"

	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
)

// UserRepository persists versioned users. The password hash lives on the
// identity row and never travels with version data.
type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User, passwordHash string) error

	// UpdateUser appends a new version with the given profile fields.
	UpdateUser(ctx context.Context, user domain.User) error

	// DeleteUser appends a soft-delete version.
	DeleteUser(ctx context.Context, userID string) error

	// FindUserByID returns the current version, deleted or not.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail resolves a user for authentication and returns the
	// stored password hash alongside the current version.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, string, error)
}

// PlanRepository manages subscription plans. Plans are not versioned.
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan domain.Plan) error
	FindPlanByID(ctx context.Context, planID string) (*domain.Plan, error)
}
