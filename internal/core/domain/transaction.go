package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one double-entry movement. Date and description are
// versioned content; the posting set is owned alongside it and reconciled
// on update.
type Transaction struct {
	TransactionID string    `json:"transactionID" db:"transaction_id"`
	BudgetID      string    `json:"budgetID" db:"budget_id"`
	Date          time.Time `json:"date" db:"date"`
	Description   string    `json:"description" db:"description"`
	VersionFields
	Postings []Posting `json:"postings" db:"-"`
}

// Posting attributes an amount to a classification node as one line of a
// transaction. NodeID, amount and description are versioned content.
type Posting struct {
	PostingID     string          `json:"postingID" db:"posting_id"`
	TransactionID string          `json:"transactionID" db:"transaction_id"`
	NodeID        string          `json:"nodeID" db:"node_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Description   string          `json:"description" db:"description"`
	VersionFields
}

// PostingChanges is the plan produced by reconciling a transaction's
// stored posting set against an incoming one.
type PostingChanges struct {
	Create []Posting
	Update []Posting
	Delete []Posting
}

// DiffPostings reconciles the incoming posting set against the stored one,
// keyed by posting identity. Incoming postings whose id matches a stored
// posting become updates, incoming postings with an unknown or empty id
// become creates, and stored postings absent from the incoming set are
// deleted. Callers assign fresh ids to not-yet-persisted postings before
// the plan is applied.
func DiffPostings(stored, incoming []Posting) PostingChanges {
	existing := make(map[string]struct{}, len(stored))
	for _, p := range stored {
		existing[p.PostingID] = struct{}{}
	}

	var changes PostingChanges
	seen := make(map[string]struct{}, len(incoming))
	for _, p := range incoming {
		if _, ok := existing[p.PostingID]; ok {
			changes.Update = append(changes.Update, p)
			seen[p.PostingID] = struct{}{}
		} else {
			changes.Create = append(changes.Create, p)
		}
	}
	for _, p := range stored {
		if _, ok := seen[p.PostingID]; !ok {
			changes.Delete = append(changes.Delete, p)
		}
	}
	return changes
}

// SumPostings returns the sum of the posting amounts. A balanced
// double-entry set sums to zero.
func SumPostings(postings []Posting) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range postings {
		sum = sum.Add(p.Amount)
	}
	return sum
}
