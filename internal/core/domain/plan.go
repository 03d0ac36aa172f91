package domain

import "github.com/shopspring/decimal"

// Plan is a flat reference record describing a subscription tier.
// Plans are created once and read-only thereafter; they are not versioned.
type Plan struct {
	PlanID string          `json:"planID" db:"plan_id"`
	Name   string          `json:"name" db:"name"`
	Cost   decimal.Decimal `json:"cost" db:"cost"`
}
