package domain

// BudgetChangesetHint names the logical action a budget-scoped changeset records.
type BudgetChangesetHint string

const (
	HintCreateBudget      BudgetChangesetHint = "create-budget"
	HintUpdateBudget      BudgetChangesetHint = "update-budget"
	HintDeleteBudget      BudgetChangesetHint = "delete-budget"
	HintCreateNode        BudgetChangesetHint = "create-node"
	HintUpdateNode        BudgetChangesetHint = "update-node"
	HintDeleteNode        BudgetChangesetHint = "delete-node"
	HintCreateTransaction BudgetChangesetHint = "create-transaction"
	HintUpdateTransaction BudgetChangesetHint = "update-transaction"
	HintDeleteTransaction BudgetChangesetHint = "delete-transaction"
)

// UserChangesetHint names the logical action a user-scoped changeset records.
type UserChangesetHint string

const (
	HintCreateUser UserChangesetHint = "create-user"
	HintUpdateUser UserChangesetHint = "update-user"
	HintDeleteUser UserChangesetHint = "delete-user"
)

// BudgetChangeset is the immutable provenance record written once per
// budget-scoped operation. Every version row the operation writes
// references it.
type BudgetChangeset struct {
	ChangesetID string              `json:"changesetID" db:"id"`
	UserID      string              `json:"userID" db:"user_id"`
	BudgetID    string              `json:"budgetID" db:"budget_id"`
	Hint        BudgetChangesetHint `json:"hint" db:"hint"`
}

// UserChangeset is the provenance record for operations on user accounts,
// which are not scoped to any budget.
type UserChangeset struct {
	ChangesetID string            `json:"changesetID" db:"id"`
	UserID      string            `json:"userID" db:"user_id"`
	Hint        UserChangesetHint `json:"hint" db:"hint"`
}
