package domain

import "time"

// Branch represents one car-wash location. Every record, account, price list
// and promotion is scoped to a branch.
type Branch struct {
	BranchID    string `json:"branchID"` // Primary Key (e.g., UUID)
	Name        string `json:"name"`
	Address     string `json:"address"`
	IsActive    bool   `json:"isActive"`
	AuditFields        // Embed common audit fields
}

// UserBranchRole defines the possible roles a user can have within a branch.
type UserBranchRole string

const (
	RoleAdmin    UserBranchRole = "ADMIN"    // Full control, required for annulment
	RoleOperator UserBranchRole = "OPERATOR" // Day-to-day intake and settlement
	RoleReadOnly UserBranchRole = "READONLY"
	RoleRemoved  UserBranchRole = "REMOVED" // For users who have been removed from the branch
)

// UserBranch represents the membership of a User in a Branch.
type UserBranch struct {
	UserID   string         `json:"userID"`   // FK -> users.user_id
	UserName string         `json:"userName"` // Name of the user
	BranchID string         `json:"branchID"` // FK -> branches.branch_id
	Role     UserBranchRole `json:"role"`
	JoinedAt time.Time      `json:"joinedAt"`
}
