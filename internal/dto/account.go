package dto

import (
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to open a current account.
type CreateAccountRequest struct {
	ClientName     string          `json:"clientName" binding:"required"`
	Phone          string          `json:"phone" binding:"required"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Notes          string          `json:"notes"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	ClientName *string `json:"clientName"`
	Notes      *string `json:"notes"`
}

// TopUpRequest defines the data for a manual deposit into an account.
type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Notes  string          `json:"notes"`
}

// AccountResponse defines the data returned for a current account.
// Mirrors domain.CurrentAccount.
type AccountResponse struct {
	AccountID      string          `json:"accountID"`
	BranchID       string          `json:"branchID"`
	ClientName     string          `json:"clientName"`
	Phone          string          `json:"phone"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Balance        decimal.Decimal `json:"balance"`
	IsActive       bool            `json:"isActive"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy  string          `json:"lastUpdatedBy"`
}

// MovementResponse defines the data returned for a ledger movement.
type MovementResponse struct {
	MovementID string               `json:"movementID"`
	AccountID  string               `json:"accountID"`
	Amount     decimal.Decimal      `json:"amount"`
	Cause      domain.MovementCause `json:"cause"`
	RecordID   *string              `json:"recordID,omitempty"`
	Notes      string               `json:"notes,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
	CreatedBy  string               `json:"createdBy"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ListMovementsParams defines query parameters for listing ledger movements.
type ListMovementsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListMovementsResponse wraps the movement list with the pagination token.
type ListMovementsResponse struct {
	Movements []MovementResponse `json:"movements"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToAccountResponse converts a domain.CurrentAccount to AccountResponse DTO
func ToAccountResponse(acc *domain.CurrentAccount) AccountResponse {
	return AccountResponse{
		AccountID:      acc.AccountID,
		BranchID:       acc.BranchID,
		ClientName:     acc.ClientName,
		Phone:          acc.Phone,
		InitialBalance: acc.InitialBalance,
		Balance:        acc.Balance,
		IsActive:       acc.IsActive,
		Notes:          acc.Notes,
		CreatedAt:      acc.CreatedAt,
		CreatedBy:      acc.CreatedBy,
		LastUpdatedAt:  acc.LastUpdatedAt,
		LastUpdatedBy:  acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.CurrentAccount to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.CurrentAccount) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ToMovementResponse converts a domain.LedgerMovement to MovementResponse DTO.
func ToMovementResponse(m *domain.LedgerMovement) MovementResponse {
	return MovementResponse{
		MovementID: m.MovementID,
		AccountID:  m.AccountID,
		Amount:     m.Amount,
		Cause:      m.Cause,
		RecordID:   m.RecordID,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
		CreatedBy:  m.CreatedBy,
	}
}

// ToListMovementsResponse converts a slice of domain.LedgerMovement to the list DTO.
func ToListMovementsResponse(movements []domain.LedgerMovement, nextToken *string) ListMovementsResponse {
	res := make([]MovementResponse, len(movements))
	for i, m := range movements {
		res[i] = ToMovementResponse(&m)
	}
	return ListMovementsResponse{Movements: res, NextToken: nextToken}
}
