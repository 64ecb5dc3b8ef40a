package repositories

import (
	"context"
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
)

// PromotionReader defines read operations for promotion data
type PromotionReader interface {
	// FindPromotionByID retrieves a promotion by its unique identifier.
	FindPromotionByID(ctx context.Context, promotionID string) (*domain.Promotion, error)

	// ListPromotionsByBranch retrieves promotions of a branch. Inactive ones are
	// included only when includeInactive is true.
	ListPromotionsByBranch(ctx context.Context, branchID string, includeInactive bool) ([]domain.Promotion, error)
}

// PromotionWriter defines write operations for promotion data
type PromotionWriter interface {
	// SavePromotion persists a new promotion.
	SavePromotion(ctx context.Context, promotion domain.Promotion) error

	// UpdatePromotion updates an existing promotion's details.
	UpdatePromotion(ctx context.Context, promotion domain.Promotion) error
}

// BenefitReader defines read operations for survey benefit data
type BenefitReader interface {
	// FindBenefitByID retrieves a benefit by its unique identifier.
	FindBenefitByID(ctx context.Context, benefitID string) (*domain.SurveyBenefit, error)

	// ListPendingBenefitsByPhone retrieves a client's unredeemed benefits.
	ListPendingBenefitsByPhone(ctx context.Context, branchID string, phone string) ([]domain.SurveyBenefit, error)
}

// BenefitWriter defines write operations for survey benefit data
type BenefitWriter interface {
	// SaveBenefit persists a new benefit. Returns ErrDuplicate when the survey
	// response already granted one.
	SaveBenefit(ctx context.Context, benefit domain.SurveyBenefit) error

	// MarkBenefitRedeemed flips a PENDING benefit to REDEEMED. The pending state
	// is enforced in the UPDATE predicate; a lost race returns ErrConflict.
	MarkBenefitRedeemed(ctx context.Context, benefitID string, userID string, now time.Time) error
}

// PromotionRepositoryFacade combines promotion and benefit repository interfaces
type PromotionRepositoryFacade interface {
	PromotionReader
	PromotionWriter
	BenefitReader
	BenefitWriter
}
