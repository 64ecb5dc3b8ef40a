package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementCause classifies a ledger movement against a current account.
type MovementCause string

const (
	MovementTopUp         MovementCause = "TOP_UP"
	MovementServiceDebit  MovementCause = "SERVICE_DEBIT"
	MovementDebitReversal MovementCause = "DEBIT_REVERSAL"
)

// CurrentAccount is a per-client prepaid balance, looked up by phone number.
// Balance is a materialized cache and must always equal
// InitialBalance + sum of all movement amounts. It may go negative: overdraft
// is permitted and only flagged in the UI.
type CurrentAccount struct {
	AccountID      string          `json:"accountID"` // Primary Key (e.g., UUID)
	BranchID       string          `json:"branchID"`  // FK -> branches.branch_id (NOT NULL)
	ClientName     string          `json:"clientName"`
	Phone          string          `json:"phone"` // Unique per branch, lookup key
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Balance        decimal.Decimal `json:"balance"`
	IsActive       bool            `json:"isActive"`
	Notes          string          `json:"notes"`
	AuditFields
}

// LedgerMovement is one append-only, signed entry against a current account.
// Corrections are new entries, never edits.
type LedgerMovement struct {
	MovementID string          `json:"movementID"` // Primary Key (e.g., UUID)
	AccountID  string          `json:"accountID"`  // FK -> current_accounts.account_id (NOT NULL)
	BranchID   string          `json:"branchID"`
	Amount     decimal.Decimal `json:"amount"` // Signed: credits positive, debits negative
	Cause      MovementCause   `json:"cause"`
	RecordID   *string         `json:"recordID,omitempty"` // Originating service record; nil for manual top-ups
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"createdAt"`
	CreatedBy  string          `json:"createdBy"`
}
