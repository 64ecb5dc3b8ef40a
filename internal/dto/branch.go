package dto

import (
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
)

// --- Branch DTOs ---

// CreateBranchRequest defines data for creating a new branch.
type CreateBranchRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// BranchResponse defines data returned for a branch.
type BranchResponse struct {
	BranchID      string    `json:"branchID"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID
}

// ToBranchResponse converts domain.Branch to DTO.
func ToBranchResponse(b *domain.Branch) BranchResponse {
	return BranchResponse{
		BranchID:      b.BranchID,
		Name:          b.Name,
		Address:       b.Address,
		IsActive:      b.IsActive,
		CreatedAt:     b.CreatedAt,
		CreatedBy:     b.CreatedBy,
		LastUpdatedAt: b.LastUpdatedAt,
		LastUpdatedBy: b.LastUpdatedBy,
	}
}

// ListBranchesResponse wraps a list of branches.
type ListBranchesResponse struct {
	Branches []BranchResponse `json:"branches"`
}

// ToListBranchesResponse converts a slice of domain.Branch to DTO.
func ToListBranchesResponse(bs []domain.Branch) ListBranchesResponse {
	list := make([]BranchResponse, len(bs))
	for i, b := range bs {
		list[i] = ToBranchResponse(&b)
	}
	return ListBranchesResponse{Branches: list}
}

// --- User Branch Membership DTOs ---

// AddUserToBranchRequest defines data for adding a user to a branch.
type AddUserToBranchRequest struct {
	UserID string                `json:"userID" binding:"required"`
	Role   domain.UserBranchRole `json:"role" binding:"required,oneof=ADMIN OPERATOR READONLY"`
}

// UpdateUserBranchRoleRequest defines data for changing a member's role.
type UpdateUserBranchRoleRequest struct {
	Role domain.UserBranchRole `json:"role" binding:"required,oneof=ADMIN OPERATOR READONLY"`
}

// UserBranchResponse defines data returned about a user's membership.
type UserBranchResponse struct {
	UserID   string                `json:"userID"`
	UserName string                `json:"userName,omitempty"`
	BranchID string                `json:"branchID"`
	Role     domain.UserBranchRole `json:"role"`
	JoinedAt time.Time             `json:"joinedAt"`
}

// ToUserBranchResponse converts domain.UserBranch to DTO.
func ToUserBranchResponse(ub *domain.UserBranch) UserBranchResponse {
	return UserBranchResponse{
		UserID:   ub.UserID,
		UserName: ub.UserName,
		BranchID: ub.BranchID,
		Role:     ub.Role,
		JoinedAt: ub.JoinedAt,
	}
}

// ToListUserBranchResponse converts a slice of domain.UserBranch to DTOs.
func ToListUserBranchResponse(ubs []domain.UserBranch) []UserBranchResponse {
	list := make([]UserBranchResponse, len(ubs))
	for i, ub := range ubs {
		list[i] = ToUserBranchResponse(&ub)
	}
	return list
}
