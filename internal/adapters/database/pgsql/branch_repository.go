package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lavadero/carwash_backend/internal/apperrors"
	"github.com/lavadero/carwash_backend/internal/core/domain"
	portsrepo "github.com/lavadero/carwash_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBranchRepository struct {
	BaseRepository
}

// newPgxBranchRepository creates a new repository for branch and membership data.
func newPgxBranchRepository(pool *pgxpool.Pool) portsrepo.BranchRepositoryFacade {
	return &PgxBranchRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.BranchRepositoryFacade = (*PgxBranchRepository)(nil)

const branchColumns = `
	branch_id, name, address, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

// SaveBranch persists a new branch.
func (r *PgxBranchRepository) SaveBranch(ctx context.Context, branch domain.Branch) error {
	query := `
		INSERT INTO branches (
			branch_id, name, address, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		branch.BranchID,
		branch.Name,
		branch.Address,
		branch.IsActive,
		branch.CreatedAt,
		branch.CreatedBy,
		branch.LastUpdatedAt,
		branch.LastUpdatedBy,
	)
	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to insert branch %s: %w", branch.BranchID, err)
	}
	return nil
}

// FindBranchByID retrieves a branch by its ID.
func (r *PgxBranchRepository) FindBranchByID(ctx context.Context, branchID string) (*domain.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE branch_id = $1;`

	branch, err := scanBranch(r.Pool.QueryRow(ctx, query, branchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find branch %s: %w", branchID, err)
	}
	return branch, nil
}

// ListUserBranches retrieves branches a user belongs to, removed memberships
// excluded.
func (r *PgxBranchRepository) ListUserBranches(ctx context.Context, userID string) ([]domain.Branch, error) {
	query := `
		SELECT b.branch_id, b.name, b.address, b.is_active,
		       b.created_at, b.created_by, b.last_updated_at, b.last_updated_by
		FROM branches b
		JOIN user_branches ub ON ub.branch_id = b.branch_id
		WHERE ub.user_id = $1 AND ub.role != 'REMOVED'
		ORDER BY b.name;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches for user %s: %w", userID, err)
	}
	defer rows.Close()

	branches := []domain.Branch{}
	for rows.Next() {
		branch, scanErr := scanBranch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan branch row for user %s: %w", userID, scanErr)
		}
		branches = append(branches, *branch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating branch rows for user %s: %w", userID, err)
	}
	return branches, nil
}

// ListBranchUsers retrieves all memberships of a branch with user names joined in.
func (r *PgxBranchRepository) ListBranchUsers(ctx context.Context, branchID string) ([]domain.UserBranch, error) {
	query := `
		SELECT ub.user_id, u.name, ub.branch_id, ub.role, ub.joined_at
		FROM user_branches ub
		JOIN users u ON u.user_id = ub.user_id
		WHERE ub.branch_id = $1
		ORDER BY u.name;
	`
	rows, err := r.Pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users of branch %s: %w", branchID, err)
	}
	defer rows.Close()

	memberships := []domain.UserBranch{}
	for rows.Next() {
		var membership domain.UserBranch
		if err := rows.Scan(
			&membership.UserID,
			&membership.UserName,
			&membership.BranchID,
			&membership.Role,
			&membership.JoinedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan membership row of branch %s: %w", branchID, err)
		}
		memberships = append(memberships, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows of branch %s: %w", branchID, err)
	}
	return memberships, nil
}

// FindUserBranchRole retrieves a user's membership in a branch.
func (r *PgxBranchRepository) FindUserBranchRole(ctx context.Context, userID string, branchID string) (*domain.UserBranch, error) {
	query := `
		SELECT user_id, branch_id, role, joined_at
		FROM user_branches
		WHERE user_id = $1 AND branch_id = $2;
	`
	var membership domain.UserBranch
	err := r.Pool.QueryRow(ctx, query, userID, branchID).Scan(
		&membership.UserID,
		&membership.BranchID,
		&membership.Role,
		&membership.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find membership of user %s in branch %s: %w", userID, branchID, err)
	}
	return &membership, nil
}

// AddUserToBranch persists a branch membership.
func (r *PgxBranchRepository) AddUserToBranch(ctx context.Context, membership domain.UserBranch) error {
	query := `
		INSERT INTO user_branches (user_id, branch_id, role, joined_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.Pool.Exec(ctx, query,
		membership.UserID,
		membership.BranchID,
		membership.Role,
		membership.JoinedAt,
	)
	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to add user %s to branch %s: %w", membership.UserID, membership.BranchID, err)
	}
	return nil
}

// UpdateUserBranchRole changes a user's role within a branch.
func (r *PgxBranchRepository) UpdateUserBranchRole(ctx context.Context, userID, branchID string, role domain.UserBranchRole) error {
	query := `UPDATE user_branches SET role = $3 WHERE user_id = $1 AND branch_id = $2;`

	cmdTag, err := r.Pool.Exec(ctx, query, userID, branchID, role)
	if err != nil {
		return fmt.Errorf("failed to update role of user %s in branch %s: %w", userID, branchID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetBranchActive toggles a branch's active flag.
func (r *PgxBranchRepository) SetBranchActive(ctx context.Context, branchID string, active bool, userID string, now time.Time) error {
	query := `
		UPDATE branches
		SET is_active = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE branch_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, branchID, active, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set active flag of branch %s: %w", branchID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanBranch(row pgx.Row) (*domain.Branch, error) {
	var branch domain.Branch
	err := row.Scan(
		&branch.BranchID,
		&branch.Name,
		&branch.Address,
		&branch.IsActive,
		&branch.CreatedAt,
		&branch.CreatedBy,
		&branch.LastUpdatedAt,
		&branch.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &branch, nil
}
