package domain

import (
	"strings"
	"time"
)

// NodeDomain classifies a root node's side of the money flow.
type NodeDomain string

const (
	DomainInternal NodeDomain = "internal"
	DomainExternal NodeDomain = "external"
)

// NodeLayer classifies a root node's dimension.
type NodeLayer string

const (
	LayerLocation NodeLayer = "location"
	LayerPurpose  NodeLayer = "purpose"
)

// PathSeparator joins the labels of a node's materialized path.
const PathSeparator = "."

// Node is one entry in a budget's classification forest. BudgetID,
// ParentNodeID, Path and Label are fixed at creation; name and the
// opening/closing dates are versioned content.
//
// Path is the dot-joined chain of ancestor labels ending in the node's
// own label, so descendant queries reduce to prefix comparisons.
type Node struct {
	NodeID       string     `json:"nodeID" db:"node_id"`
	BudgetID     string     `json:"budgetID" db:"budget_id"`
	ParentNodeID *string    `json:"parentNodeID" db:"parent_id"`
	Path         string     `json:"path" db:"path"`
	Label        int64      `json:"label" db:"label"`
	Name         string     `json:"name" db:"name"`
	OpeningDate  time.Time  `json:"openingDate" db:"opening_date"`
	ClosingDate  *time.Time `json:"closingDate" db:"closing_date"`
	VersionFields
}

// IsDescendantOf reports whether the node sits strictly below other in the
// tree, judged purely from the materialized paths.
func (n Node) IsDescendantOf(other Node) bool {
	return n.Path != other.Path && strings.HasPrefix(n.Path, other.Path+PathSeparator)
}

// Depth returns the number of ancestors above the node; roots have depth 0.
func (n Node) Depth() int {
	return strings.Count(n.Path, PathSeparator)
}
