package services

import (
	"context"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/lavadero/carwash_backend/internal/dto"
)

// PromotionSvcFacade defines operations for upsell promotions and survey benefits.
type PromotionSvcFacade interface {
	// CreatePromotion persists a new promotion after validating that percentage
	// and fixed amount are not both set.
	CreatePromotion(ctx context.Context, branchID string, req dto.CreatePromotionRequest, userID string) (*domain.Promotion, error)

	// UpdatePromotion updates an existing promotion's details.
	UpdatePromotion(ctx context.Context, branchID string, promotionID string, req dto.UpdatePromotionRequest, userID string) (*domain.Promotion, error)

	// GetPromotionByID retrieves a specific promotion.
	GetPromotionByID(ctx context.Context, branchID string, promotionID string, userID string) (*domain.Promotion, error)

	// ListPromotions retrieves promotions of a branch.
	ListPromotions(ctx context.Context, branchID string, userID string, includeInactive bool) ([]domain.Promotion, error)

	// GrantBenefit creates a pending survey benefit for a client phone.
	GrantBenefit(ctx context.Context, branchID string, req dto.GrantBenefitRequest, userID string) (*domain.SurveyBenefit, error)

	// GetBenefitByID retrieves a specific benefit.
	GetBenefitByID(ctx context.Context, branchID string, benefitID string, userID string) (*domain.SurveyBenefit, error)

	// ListPendingBenefits retrieves a client's unredeemed benefits.
	ListPendingBenefits(ctx context.Context, branchID string, phone string, userID string) ([]domain.SurveyBenefit, error)

	// RedeemBenefit consumes a pending benefit. Called by the record lifecycle
	// when a benefit is applied at intake.
	RedeemBenefit(ctx context.Context, branchID string, benefitID string, userID string) (*domain.SurveyBenefit, error)
}
