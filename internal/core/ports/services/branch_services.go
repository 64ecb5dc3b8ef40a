package services

import (
	"context"

	"github.com/lavadero/carwash_backend/internal/core/domain"
)

// BranchReaderSvc defines read operations for branch data
type BranchReaderSvc interface {
	// FindBranchByID retrieves a specific branch by its ID.
	FindBranchByID(ctx context.Context, branchID string) (*domain.Branch, error)

	// ListUserBranches retrieves branches a user belongs to.
	// If includeDisabled is true, it includes inactive branches.
	ListUserBranches(ctx context.Context, userID string, includeDisabled bool) ([]domain.Branch, error)

	// ListBranchUsers retrieves all users and their roles for a specific branch.
	// Only members of the branch can access this data.
	ListBranchUsers(ctx context.Context, branchID string, requestingUserID string) ([]domain.UserBranch, error)
}

// BranchWriterSvc defines write operations for branch data
type BranchWriterSvc interface {
	// CreateBranch persists a new branch with the creator as admin.
	CreateBranch(ctx context.Context, name, address, creatorUserID string) (*domain.Branch, error)

	// DeactivateBranch marks a branch as inactive.
	DeactivateBranch(ctx context.Context, branchID string, requestingUserID string) error

	// ActivateBranch marks a branch as active.
	ActivateBranch(ctx context.Context, branchID string, requestingUserID string) error
}

// BranchMembershipSvc defines operations for managing branch membership
type BranchMembershipSvc interface {
	// AddUserToBranch adds a user to a branch with a specific role.
	AddUserToBranch(ctx context.Context, addingUserID, targetUserID, branchID string, role domain.UserBranchRole) error

	// RemoveUserFromBranch removes a user from a branch.
	// Only branch admins can remove users.
	RemoveUserFromBranch(ctx context.Context, requestingUserID, targetUserID, branchID string) error

	// UpdateUserBranchRole updates a user's role in a branch.
	// Only branch admins can update user roles.
	UpdateUserBranchRole(ctx context.Context, requestingUserID, targetUserID, branchID string, newRole domain.UserBranchRole) error
}

// BranchAuthorizerSvc defines operations for branch authorization
type BranchAuthorizerSvc interface {
	// AuthorizeUserAction checks if a user has required permissions for a branch.
	AuthorizeUserAction(ctx context.Context, userID, branchID string, requiredRole domain.UserBranchRole) error
}

// BranchSvcFacade combines all branch-related service interfaces
// This is a facade for clients that need access to all operations
type BranchSvcFacade interface {
	BranchReaderSvc
	BranchWriterSvc
	BranchMembershipSvc
	BranchAuthorizerSvc
}
