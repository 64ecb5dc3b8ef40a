package repositories

import (
	"context"
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
)

// BranchReader defines read operations for branch data
type BranchReader interface {
	// FindBranchByID retrieves a specific branch by its ID.
	FindBranchByID(ctx context.Context, branchID string) (*domain.Branch, error)

	// ListUserBranches retrieves branches a user belongs to.
	ListUserBranches(ctx context.Context, userID string) ([]domain.Branch, error)

	// ListBranchUsers retrieves all memberships of a branch.
	ListBranchUsers(ctx context.Context, branchID string) ([]domain.UserBranch, error)

	// FindUserBranchRole retrieves a user's membership in a branch, or ErrNotFound.
	FindUserBranchRole(ctx context.Context, userID string, branchID string) (*domain.UserBranch, error)
}

// BranchWriter defines write operations for branch data
type BranchWriter interface {
	// SaveBranch persists a new branch.
	SaveBranch(ctx context.Context, branch domain.Branch) error

	// AddUserToBranch persists a branch membership.
	AddUserToBranch(ctx context.Context, membership domain.UserBranch) error

	// UpdateUserBranchRole changes a user's role within a branch.
	UpdateUserBranchRole(ctx context.Context, userID, branchID string, role domain.UserBranchRole) error

	// SetBranchActive toggles a branch's active flag.
	SetBranchActive(ctx context.Context, branchID string, active bool, userID string, now time.Time) error
}

// BranchRepositoryFacade combines all branch-related repository interfaces
type BranchRepositoryFacade interface {
	BranchReader
	BranchWriter
}
