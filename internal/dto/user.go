package dto

import (
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
)

// CreateUserRequest defines data for registering a new user.
type CreateUserRequest struct {
	FullName    string `json:"fullName" binding:"required,max=255"`
	DisplayName string `json:"displayName" binding:"required,max=255"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PlanID      string `json:"planID" binding:"required,uuid"`
}

// UpdateUserRequest defines the data allowed for updating a user.
// Pointers differentiate omitted fields from zero-value fields.
type UpdateUserRequest struct {
	FullName    *string `json:"fullName"`
	DisplayName *string `json:"displayName"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PlanID      *string `json:"planID"`
}

// LoginRequest defines credentials for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse defines data returned for a user.
type UserResponse struct {
	UserID        string `json:"userID"`
	FullName      string `json:"fullName"`
	DisplayName   string `json:"displayName"`
	Email         string `json:"email"`
	PlanID        string `json:"planID"`
	VersionNumber int64  `json:"versionNumber"`
}

// ToUserResponse converts domain.User to DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:        u.UserID,
		FullName:      u.FullName,
		DisplayName:   u.DisplayName,
		Email:         u.Email,
		PlanID:        u.PlanID,
		VersionNumber: u.VersionNumber,
	}
}
