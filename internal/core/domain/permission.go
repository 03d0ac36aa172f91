package domain

// Permission holds the capability flags one user has on one budget.
// Permissions are upserted, not versioned; the last write wins.
type Permission struct {
	UserID    string `json:"userID" db:"user_id"`
	BudgetID  string `json:"budgetID" db:"budget_id"`
	CanRead   bool   `json:"canRead" db:"can_read"`
	CanWrite  bool   `json:"canWrite" db:"can_write"`
	CanShare  bool   `json:"canShare" db:"can_share"`
	CanDelete bool   `json:"canDelete" db:"can_delete"`
}

// FullPermissions returns the flag set granted to a budget's creator.
func FullPermissions(userID, budgetID string) Permission {
	return Permission{
		UserID:    userID,
		BudgetID:  budgetID,
		CanRead:   true,
		CanWrite:  true,
		CanShare:  true,
		CanDelete: true,
	}
}
