package domain

import "github.com/shopspring/decimal"

// PriceList is a named matrix of (vehicle category, service kind) -> unit price.
// Exactly one list per branch is flagged as the branch default; the default
// list's entries are the snapshot handed to the price resolver at intake.
type PriceList struct {
	PriceListID string `json:"priceListID"` // Primary Key (e.g., UUID)
	BranchID    string `json:"branchID"`    // FK -> branches.branch_id (NOT NULL)
	Name        string `json:"name"`
	IsDefault   bool   `json:"isDefault"`
	AuditFields
}

// PriceListEntry is one cell of a price list matrix. A configured zero price is
// a valid entry, distinct from the cell being absent.
type PriceListEntry struct {
	PriceListID string          `json:"priceListID"`
	Category    VehicleCategory `json:"category"`
	Kind        ServiceKind     `json:"kind"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// PriceKey identifies one cell of a price matrix.
type PriceKey struct {
	Category VehicleCategory
	Kind     ServiceKind
}

// PriceSnapshot is a read-only view of a price list's entries, keyed for the
// resolver. Presence of a key with a zero value means "configured at zero".
type PriceSnapshot map[PriceKey]decimal.Decimal
