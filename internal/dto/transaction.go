package dto

import (
	"time"

	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Transaction DTOs ---

// PostingRequest defines one leg of a transaction. PostingID is empty for
// new postings and set when updating an existing one.
type PostingRequest struct {
	PostingID   string          `json:"postingID" binding:"omitempty,uuid"`
	NodeID      string          `json:"nodeID" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// CreateTransactionRequest defines data for creating a transaction with its
// postings. Posting amounts must sum to zero. BudgetID comes from the route,
// not the body.
type CreateTransactionRequest struct {
	BudgetID    string           `json:"-"`
	Date        time.Time        `json:"date" binding:"required"`
	Description string           `json:"description"`
	Postings    []PostingRequest `json:"postings" binding:"required,min=2,dive"`
}

// UpdateTransactionRequest defines the full replacement state of a
// transaction. Stored postings absent from the list are deleted.
type UpdateTransactionRequest struct {
	BudgetID    string           `json:"-"`
	Date        time.Time        `json:"date" binding:"required"`
	Description string           `json:"description"`
	Postings    []PostingRequest `json:"postings" binding:"required,min=2,dive"`
}

// ToDomainPostings converts posting requests for the given transaction.
func ToDomainPostings(transactionID string, reqs []PostingRequest) []domain.Posting {
	postings := make([]domain.Posting, len(reqs))
	for i, r := range reqs {
		postings[i] = domain.Posting{
			PostingID:     r.PostingID,
			TransactionID: transactionID,
			NodeID:        r.NodeID,
			Amount:        r.Amount,
			Description:   r.Description,
		}
	}
	return postings
}

// PostingResponse defines data returned for a posting.
type PostingResponse struct {
	PostingID     string          `json:"postingID"`
	TransactionID string          `json:"transactionID"`
	NodeID        string          `json:"nodeID"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	VersionNumber int64           `json:"versionNumber"`
}

// ToPostingResponse converts domain.Posting to DTO.
func ToPostingResponse(p *domain.Posting) PostingResponse {
	return PostingResponse{
		PostingID:     p.PostingID,
		TransactionID: p.TransactionID,
		NodeID:        p.NodeID,
		Amount:        p.Amount,
		Description:   p.Description,
		VersionNumber: p.VersionNumber,
	}
}

// TransactionResponse defines data returned for a transaction and its
// postings.
type TransactionResponse struct {
	TransactionID string            `json:"transactionID"`
	BudgetID      string            `json:"budgetID"`
	Date          time.Time         `json:"date"`
	Description   string            `json:"description"`
	VersionNumber int64             `json:"versionNumber"`
	IsDeleted     bool              `json:"isDeleted"`
	ChangesetID   string            `json:"changesetID"`
	Postings      []PostingResponse `json:"postings"`
}

// ToTransactionResponse converts domain.Transaction to DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	postings := make([]PostingResponse, len(t.Postings))
	for i, p := range t.Postings {
		postings[i] = ToPostingResponse(&p)
	}
	return TransactionResponse{
		TransactionID: t.TransactionID,
		BudgetID:      t.BudgetID,
		Date:          t.Date,
		Description:   t.Description,
		VersionNumber: t.VersionNumber,
		IsDeleted:     t.IsDeleted,
		ChangesetID:   t.ChangesetID,
		Postings:      postings,
	}
}
