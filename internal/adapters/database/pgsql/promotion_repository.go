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

type PgxPromotionRepository struct {
	BaseRepository
}

// newPgxPromotionRepository creates a new repository for promotion and survey
// benefit data.
func newPgxPromotionRepository(pool *pgxpool.Pool) portsrepo.PromotionRepositoryFacade {
	return &PgxPromotionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.PromotionRepositoryFacade = (*PgxPromotionRepository)(nil)

const promotionColumns = `
	promotion_id, branch_id, name, target_kinds, discount_percent, discount_amount,
	is_active, valid_from, valid_until,
	created_at, created_by, last_updated_at, last_updated_by`

const benefitColumns = `
	benefit_id, branch_id, client_phone, discount_percent, status, survey_response_id, redeemed_at,
	created_at, created_by, last_updated_at, last_updated_by`

// SavePromotion persists a new promotion.
func (r *PgxPromotionRepository) SavePromotion(ctx context.Context, promotion domain.Promotion) error {
	query := `
		INSERT INTO promotions (
			promotion_id, branch_id, name, target_kinds, discount_percent, discount_amount,
			is_active, valid_from, valid_until,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		promotion.PromotionID,
		promotion.BranchID,
		promotion.Name,
		kindsToStrings(promotion.TargetKinds),
		promotion.DiscountPercent,
		promotion.DiscountAmount,
		promotion.IsActive,
		promotion.ValidFrom,
		promotion.ValidUntil,
		promotion.CreatedAt,
		promotion.CreatedBy,
		promotion.LastUpdatedAt,
		promotion.LastUpdatedBy,
	)
	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to insert promotion %s: %w", promotion.PromotionID, err)
	}
	return nil
}

// UpdatePromotion updates an existing promotion's details.
func (r *PgxPromotionRepository) UpdatePromotion(ctx context.Context, promotion domain.Promotion) error {
	query := `
		UPDATE promotions
		SET name = $2,
		    target_kinds = $3,
		    discount_percent = $4,
		    discount_amount = $5,
		    is_active = $6,
		    valid_from = $7,
		    valid_until = $8,
		    last_updated_at = $9,
		    last_updated_by = $10
		WHERE promotion_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		promotion.PromotionID,
		promotion.Name,
		kindsToStrings(promotion.TargetKinds),
		promotion.DiscountPercent,
		promotion.DiscountAmount,
		promotion.IsActive,
		promotion.ValidFrom,
		promotion.ValidUntil,
		promotion.LastUpdatedAt,
		promotion.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update promotion %s: %w", promotion.PromotionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindPromotionByID retrieves a promotion by its ID.
func (r *PgxPromotionRepository) FindPromotionByID(ctx context.Context, promotionID string) (*domain.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE promotion_id = $1;`

	promotion, err := scanPromotion(r.Pool.QueryRow(ctx, query, promotionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find promotion %s: %w", promotionID, err)
	}
	return promotion, nil
}

// ListPromotionsByBranch retrieves promotions of a branch.
func (r *PgxPromotionRepository) ListPromotionsByBranch(ctx context.Context, branchID string, includeInactive bool) ([]domain.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE branch_id = $1`
	if !includeInactive {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query promotions for branch %s: %w", branchID, err)
	}
	defer rows.Close()

	promotions := []domain.Promotion{}
	for rows.Next() {
		promotion, scanErr := scanPromotion(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan promotion row for branch %s: %w", branchID, scanErr)
		}
		promotions = append(promotions, *promotion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promotion rows for branch %s: %w", branchID, err)
	}
	return promotions, nil
}

// SaveBenefit persists a new survey benefit. The unique index on the survey
// response surfaces double grants as ErrDuplicate.
func (r *PgxPromotionRepository) SaveBenefit(ctx context.Context, benefit domain.SurveyBenefit) error {
	query := `
		INSERT INTO survey_benefits (
			benefit_id, branch_id, client_phone, discount_percent, status, survey_response_id, redeemed_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		benefit.BenefitID,
		benefit.BranchID,
		benefit.ClientPhone,
		benefit.DiscountPercent,
		benefit.Status,
		benefit.SurveyResponseID,
		benefit.RedeemedAt,
		benefit.CreatedAt,
		benefit.CreatedBy,
		benefit.LastUpdatedAt,
		benefit.LastUpdatedBy,
	)
	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to insert benefit %s: %w", benefit.BenefitID, err)
	}
	return nil
}

// FindBenefitByID retrieves a benefit by its ID.
func (r *PgxPromotionRepository) FindBenefitByID(ctx context.Context, benefitID string) (*domain.SurveyBenefit, error) {
	query := `SELECT ` + benefitColumns + ` FROM survey_benefits WHERE benefit_id = $1;`

	benefit, err := scanBenefit(r.Pool.QueryRow(ctx, query, benefitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find benefit %s: %w", benefitID, err)
	}
	return benefit, nil
}

// ListPendingBenefitsByPhone retrieves a client's unredeemed benefits.
func (r *PgxPromotionRepository) ListPendingBenefitsByPhone(ctx context.Context, branchID string, phone string) ([]domain.SurveyBenefit, error) {
	query := `SELECT ` + benefitColumns + `
		FROM survey_benefits
		WHERE branch_id = $1 AND client_phone = $2 AND status = 'PENDING'
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, branchID, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending benefits for branch %s: %w", branchID, err)
	}
	defer rows.Close()

	benefits := []domain.SurveyBenefit{}
	for rows.Next() {
		benefit, scanErr := scanBenefit(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan benefit row for branch %s: %w", branchID, scanErr)
		}
		benefits = append(benefits, *benefit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating benefit rows for branch %s: %w", branchID, err)
	}
	return benefits, nil
}

// MarkBenefitRedeemed flips a PENDING benefit to REDEEMED. The pending guard
// sits in the predicate, so a redeem race affects zero rows.
func (r *PgxPromotionRepository) MarkBenefitRedeemed(ctx context.Context, benefitID string, userID string, now time.Time) error {
	query := `
		UPDATE survey_benefits
		SET status = 'REDEEMED',
		    redeemed_at = $2,
		    last_updated_at = $2,
		    last_updated_by = $3
		WHERE benefit_id = $1 AND status = 'PENDING';
	`
	cmdTag, err := r.Pool.Exec(ctx, query, benefitID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to redeem benefit %s: %w", benefitID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: benefit %s is no longer pending", apperrors.ErrConflict, benefitID)
	}
	return nil
}

func scanPromotion(row pgx.Row) (*domain.Promotion, error) {
	var promotion domain.Promotion
	var kinds []string
	err := row.Scan(
		&promotion.PromotionID,
		&promotion.BranchID,
		&promotion.Name,
		&kinds,
		&promotion.DiscountPercent,
		&promotion.DiscountAmount,
		&promotion.IsActive,
		&promotion.ValidFrom,
		&promotion.ValidUntil,
		&promotion.CreatedAt,
		&promotion.CreatedBy,
		&promotion.LastUpdatedAt,
		&promotion.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	promotion.TargetKinds = stringsToKinds(kinds)
	return &promotion, nil
}

func scanBenefit(row pgx.Row) (*domain.SurveyBenefit, error) {
	var benefit domain.SurveyBenefit
	err := row.Scan(
		&benefit.BenefitID,
		&benefit.BranchID,
		&benefit.ClientPhone,
		&benefit.DiscountPercent,
		&benefit.Status,
		&benefit.SurveyResponseID,
		&benefit.RedeemedAt,
		&benefit.CreatedAt,
		&benefit.CreatedBy,
		&benefit.LastUpdatedAt,
		&benefit.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &benefit, nil
}
