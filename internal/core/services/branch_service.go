package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lavadero/carwash_backend/internal/apperrors"
	"github.com/lavadero/carwash_backend/internal/core/domain"
	portsrepo "github.com/lavadero/carwash_backend/internal/core/ports/repositories"
	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/google/uuid"
)

// branchService handles business logic related to branches and memberships.
type branchService struct {
	BaseService
	branchRepo portsrepo.BranchRepositoryFacade
	userRepo   portsrepo.UserReader
}

// NewBranchService creates a new branch service.
func NewBranchService(br portsrepo.BranchRepositoryFacade, ur portsrepo.UserReader) portssvc.BranchSvcFacade {
	return &branchService{
		branchRepo: br,
		userRepo:   ur,
	}
}

var _ portssvc.BranchSvcFacade = (*branchService)(nil)

// CreateBranch creates a new branch and makes the creator the initial admin.
func (s *branchService) CreateBranch(ctx context.Context, name, address, creatorUserID string) (*domain.Branch, error) {
	now := time.Now()
	newBranchID := uuid.NewString()

	branch := domain.Branch{
		BranchID: newBranchID,
		Name:     name,
		Address:  address,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.branchRepo.SaveBranch(ctx, branch); err != nil {
		s.LogError(ctx, err, "Failed to save branch in repository", slog.String("branch_name", name))
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	membership := domain.UserBranch{
		UserID:   creatorUserID,
		BranchID: newBranchID,
		Role:     domain.RoleAdmin,
		JoinedAt: now,
	}
	if err := s.branchRepo.AddUserToBranch(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add creator as admin to new branch",
			slog.String("branch_id", newBranchID),
			slog.String("user_id", creatorUserID))
		return nil, fmt.Errorf("failed to add creator to branch: %w", err)
	}

	s.LogInfo(ctx, "Branch created successfully",
		slog.String("branch_id", newBranchID),
		slog.String("creator_user_id", creatorUserID))
	return &branch, nil
}

// FindBranchByID retrieves a specific branch by its ID.
func (s *branchService) FindBranchByID(ctx context.Context, branchID string) (*domain.Branch, error) {
	branch, err := s.branchRepo.FindBranchByID(ctx, branchID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find branch by ID", slog.String("branch_id", branchID))
		}
		return nil, err
	}
	return branch, nil
}

// ListUserBranches retrieves branches a user belongs to.
func (s *branchService) ListUserBranches(ctx context.Context, userID string, includeDisabled bool) ([]domain.Branch, error) {
	branches, err := s.branchRepo.ListUserBranches(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list user branches", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	if includeDisabled {
		return branches, nil
	}
	active := make([]domain.Branch, 0, len(branches))
	for _, b := range branches {
		if b.IsActive {
			active = append(active, b)
		}
	}
	return active, nil
}

// ListBranchUsers retrieves all users and their roles for a specific branch.
func (s *branchService) ListBranchUsers(ctx context.Context, branchID string, requestingUserID string) ([]domain.UserBranch, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	members, err := s.branchRepo.ListBranchUsers(ctx, branchID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list branch users", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to list branch users: %w", err)
	}
	return members, nil
}

// AddUserToBranch adds a user to a branch with a specific role.
func (s *branchService) AddUserToBranch(ctx context.Context, addingUserID, targetUserID, branchID string, role domain.UserBranchRole) error {
	if err := s.AuthorizeUserAction(ctx, addingUserID, branchID, domain.RoleAdmin); err != nil {
		return err
	}

	if _, err := s.userRepo.FindUserByID(ctx, targetUserID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user %s not found", apperrors.ErrValidation, targetUserID)
		}
		return fmt.Errorf("failed to validate target user: %w", err)
	}

	membership := domain.UserBranch{
		UserID:   targetUserID,
		BranchID: branchID,
		Role:     role,
		JoinedAt: time.Now(),
	}

	if err := s.branchRepo.AddUserToBranch(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add user to branch",
			slog.String("target_user_id", targetUserID),
			slog.String("branch_id", branchID))
		return err
	}

	s.LogInfo(ctx, "User added to branch",
		slog.String("target_user_id", targetUserID),
		slog.String("branch_id", branchID),
		slog.String("role", string(role)))
	return nil
}

// RemoveUserFromBranch removes a user from a branch by flipping the role to REMOVED.
// The membership row stays so audit references remain intact.
func (s *branchService) RemoveUserFromBranch(ctx context.Context, requestingUserID, targetUserID, branchID string) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, branchID, domain.RoleAdmin); err != nil {
		return err
	}
	if requestingUserID == targetUserID {
		return fmt.Errorf("%w: admins cannot remove themselves", apperrors.ErrValidation)
	}

	if err := s.branchRepo.UpdateUserBranchRole(ctx, targetUserID, branchID, domain.RoleRemoved); err != nil {
		s.LogError(ctx, err, "Failed to remove user from branch",
			slog.String("target_user_id", targetUserID),
			slog.String("branch_id", branchID))
		return err
	}
	return nil
}

// UpdateUserBranchRole updates a user's role in a branch.
func (s *branchService) UpdateUserBranchRole(ctx context.Context, requestingUserID, targetUserID, branchID string, newRole domain.UserBranchRole) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, branchID, domain.RoleAdmin); err != nil {
		return err
	}
	if requestingUserID == targetUserID {
		return fmt.Errorf("%w: admins cannot change their own role", apperrors.ErrValidation)
	}

	if err := s.branchRepo.UpdateUserBranchRole(ctx, targetUserID, branchID, newRole); err != nil {
		s.LogError(ctx, err, "Failed to update user branch role",
			slog.String("target_user_id", targetUserID),
			slog.String("branch_id", branchID),
			slog.String("new_role", string(newRole)))
		return err
	}
	return nil
}

// DeactivateBranch marks a branch as inactive.
func (s *branchService) DeactivateBranch(ctx context.Context, branchID string, requestingUserID string) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, branchID, domain.RoleAdmin); err != nil {
		return err
	}
	return s.branchRepo.SetBranchActive(ctx, branchID, false, requestingUserID, time.Now())
}

// ActivateBranch marks a branch as active.
func (s *branchService) ActivateBranch(ctx context.Context, branchID string, requestingUserID string) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, branchID, domain.RoleAdmin); err != nil {
		return err
	}
	return s.branchRepo.SetBranchActive(ctx, branchID, true, requestingUserID, time.Now())
}

// AuthorizeUserAction checks if a user has required permissions for a branch.
// READONLY is satisfied by any non-removed membership, OPERATOR by operators
// and admins, ADMIN only by admins.
func (s *branchService) AuthorizeUserAction(ctx context.Context, userID, branchID string, requiredRole domain.UserBranchRole) error {
	membership, err := s.branchRepo.FindUserBranchRole(ctx, userID, branchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user %s is not a member of branch %s", apperrors.ErrForbidden, userID, branchID)
		}
		s.LogError(ctx, err, "Failed to check branch membership",
			slog.String("user_id", userID),
			slog.String("branch_id", branchID))
		return fmt.Errorf("failed to verify branch membership: %w", err)
	}

	if !roleSatisfies(membership.Role, requiredRole) {
		return fmt.Errorf("%w: role %s does not satisfy %s", apperrors.ErrForbidden, membership.Role, requiredRole)
	}
	return nil
}

func roleSatisfies(have, required domain.UserBranchRole) bool {
	rank := func(r domain.UserBranchRole) int {
		switch r {
		case domain.RoleAdmin:
			return 3
		case domain.RoleOperator:
			return 2
		case domain.RoleReadOnly:
			return 1
		default: // REMOVED or unknown
			return 0
		}
	}
	return rank(have) >= rank(required) && rank(have) > 0
}
