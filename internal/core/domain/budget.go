package domain

// Budget is the top-level container for nodes and transactions. Only the
// name is versioned content; the identifier is fixed at creation.
type Budget struct {
	BudgetID string `json:"budgetID" db:"budget_id"`
	Name     string `json:"name" db:"name"`
	VersionFields
}
