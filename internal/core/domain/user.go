package domain

// User is a versioned account record. The password hash lives on the
// identity row, not the version chain, and never leaves the repository
// layer except through the authentication path.
type User struct {
	UserID      string `json:"userID" db:"user_id"`
	FullName    string `json:"fullName" db:"full_name"`
	DisplayName string `json:"displayName" db:"display_name"`
	Email       string `json:"email" db:"email"`
	PlanID      string `json:"planID" db:"plan_id"`
	VersionFields
}
