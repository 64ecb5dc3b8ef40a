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
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// promotionService implements the PromotionSvcFacade interface.
type promotionService struct {
	BaseService
	promotionRepo portsrepo.PromotionRepositoryFacade
}

// PromotionServiceOption is a functional option for configuring the promotion service
type PromotionServiceOption func(*promotionService)

// WithPromotionBranchAuthorizer adds branch authorizer dependency
func WithPromotionBranchAuthorizer(authorizer portssvc.BranchAuthorizerSvc) PromotionServiceOption {
	return func(s *promotionService) {
		s.BranchAuthorizer = authorizer
	}
}

// NewPromotionService creates a new promotion service with the provided options
func NewPromotionService(repo portsrepo.PromotionRepositoryFacade, options ...PromotionServiceOption) portssvc.PromotionSvcFacade {
	svc := &promotionService{
		promotionRepo: repo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PromotionSvcFacade = (*promotionService)(nil)

// CreatePromotion persists a new promotion after validating its discount shape.
func (s *promotionService) CreatePromotion(ctx context.Context, branchID string, req dto.CreatePromotionRequest, userID string) (*domain.Promotion, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	percent, amount, err := validateDiscountShape(req.DiscountPercent, req.DiscountAmount)
	if err != nil {
		return nil, err
	}
	if req.ValidFrom != nil && req.ValidUntil != nil && req.ValidUntil.Before(*req.ValidFrom) {
		return nil, fmt.Errorf("%w: validUntil precedes validFrom", apperrors.ErrValidation)
	}

	now := time.Now()
	promotion := domain.Promotion{
		PromotionID:     uuid.NewString(),
		BranchID:        branchID,
		Name:            req.Name,
		TargetKinds:     req.TargetKinds,
		DiscountPercent: percent,
		DiscountAmount:  amount,
		IsActive:        true,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.promotionRepo.SavePromotion(ctx, promotion); err != nil {
		s.LogError(ctx, err, "Failed to save promotion", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}

	s.LogInfo(ctx, "Promotion created",
		slog.String("promotion_id", promotion.PromotionID),
		slog.String("branch_id", branchID))
	return &promotion, nil
}

// UpdatePromotion updates an existing promotion's details.
func (s *promotionService) UpdatePromotion(ctx context.Context, branchID string, promotionID string, req dto.UpdatePromotionRequest, userID string) (*domain.Promotion, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	promotion, err := s.findPromotionInBranch(ctx, branchID, promotionID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		promotion.Name = *req.Name
	}
	if req.DiscountPercent != nil || req.DiscountAmount != nil {
		percent, amount, err := validateDiscountShape(req.DiscountPercent, req.DiscountAmount)
		if err != nil {
			return nil, err
		}
		promotion.DiscountPercent = percent
		promotion.DiscountAmount = amount
	}
	if req.IsActive != nil {
		promotion.IsActive = *req.IsActive
	}
	if req.ValidFrom != nil {
		promotion.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		promotion.ValidUntil = req.ValidUntil
	}
	promotion.LastUpdatedAt = time.Now()
	promotion.LastUpdatedBy = userID

	if err := s.promotionRepo.UpdatePromotion(ctx, *promotion); err != nil {
		s.LogError(ctx, err, "Failed to update promotion", slog.String("promotion_id", promotionID))
		return nil, fmt.Errorf("failed to update promotion: %w", err)
	}
	return promotion, nil
}

// GetPromotionByID retrieves a specific promotion.
func (s *promotionService) GetPromotionByID(ctx context.Context, branchID string, promotionID string, userID string) (*domain.Promotion, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.findPromotionInBranch(ctx, branchID, promotionID)
}

// ListPromotions retrieves promotions of a branch.
func (s *promotionService) ListPromotions(ctx context.Context, branchID string, userID string, includeInactive bool) ([]domain.Promotion, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	promotions, err := s.promotionRepo.ListPromotionsByBranch(ctx, branchID, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list promotions", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	if promotions == nil {
		return []domain.Promotion{}, nil
	}
	return promotions, nil
}

// GrantBenefit creates a pending survey benefit for a client phone. A zero
// percent means the standard reward applies when the benefit is stacked.
func (s *promotionService) GrantBenefit(ctx context.Context, branchID string, req dto.GrantBenefitRequest, userID string) (*domain.SurveyBenefit, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleOperator); err != nil {
		return nil, err
	}

	percent := decimal.Zero
	if req.DiscountPercent != nil {
		if !req.DiscountPercent.IsPositive() || req.DiscountPercent.GreaterThan(oneHundred) {
			return nil, fmt.Errorf("%w: benefit percent must be between 0 and 100", apperrors.ErrValidation)
		}
		percent = *req.DiscountPercent
	}

	now := time.Now()
	benefit := domain.SurveyBenefit{
		BenefitID:        uuid.NewString(),
		BranchID:         branchID,
		ClientPhone:      req.ClientPhone,
		DiscountPercent:  percent,
		Status:           domain.BenefitPending,
		SurveyResponseID: req.SurveyResponseID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.promotionRepo.SaveBenefit(ctx, benefit); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: survey response already granted a benefit", apperrors.ErrDuplicate)
		}
		s.LogError(ctx, err, "Failed to save benefit", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to grant benefit: %w", err)
	}

	s.LogInfo(ctx, "Survey benefit granted",
		slog.String("benefit_id", benefit.BenefitID),
		slog.String("branch_id", branchID))
	return &benefit, nil
}

// GetBenefitByID retrieves a specific benefit.
func (s *promotionService) GetBenefitByID(ctx context.Context, branchID string, benefitID string, userID string) (*domain.SurveyBenefit, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.findBenefitInBranch(ctx, branchID, benefitID)
}

// ListPendingBenefits retrieves a client's unredeemed benefits.
func (s *promotionService) ListPendingBenefits(ctx context.Context, branchID string, phone string, userID string) ([]domain.SurveyBenefit, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	benefits, err := s.promotionRepo.ListPendingBenefitsByPhone(ctx, branchID, phone)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending benefits", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to list benefits: %w", err)
	}
	if benefits == nil {
		return []domain.SurveyBenefit{}, nil
	}
	return benefits, nil
}

// RedeemBenefit consumes a pending benefit. The PENDING guard lives in the
// repository predicate, so two concurrent redemptions cannot both succeed.
func (s *promotionService) RedeemBenefit(ctx context.Context, branchID string, benefitID string, userID string) (*domain.SurveyBenefit, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleOperator); err != nil {
		return nil, err
	}

	if _, err := s.findBenefitInBranch(ctx, branchID, benefitID); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.promotionRepo.MarkBenefitRedeemed(ctx, benefitID, userID, now); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to redeem benefit", slog.String("benefit_id", benefitID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Survey benefit redeemed", slog.String("benefit_id", benefitID))
	return s.promotionRepo.FindBenefitByID(ctx, benefitID)
}

func (s *promotionService) findPromotionInBranch(ctx context.Context, branchID string, promotionID string) (*domain.Promotion, error) {
	promotion, err := s.promotionRepo.FindPromotionByID(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	if promotion.BranchID != branchID {
		return nil, apperrors.ErrNotFound
	}
	return promotion, nil
}

func (s *promotionService) findBenefitInBranch(ctx context.Context, branchID string, benefitID string) (*domain.SurveyBenefit, error) {
	benefit, err := s.promotionRepo.FindBenefitByID(ctx, benefitID)
	if err != nil {
		return nil, err
	}
	if benefit.BranchID != branchID {
		return nil, apperrors.ErrNotFound
	}
	return benefit, nil
}

// validateDiscountShape enforces that a promotion discounts by percentage or
// by fixed amount, never both and never neither.
func validateDiscountShape(percent, amount *decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	hasPercent := percent != nil && !percent.IsZero()
	hasAmount := amount != nil && !amount.IsZero()

	switch {
	case hasPercent && hasAmount:
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: set either a percentage or a fixed amount, not both", apperrors.ErrValidation)
	case !hasPercent && !hasAmount:
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: a discount percentage or fixed amount is required", apperrors.ErrValidation)
	case hasPercent:
		if !percent.IsPositive() || percent.GreaterThan(oneHundred) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: discount percent must be between 0 and 100", apperrors.ErrValidation)
		}
		return *percent, decimal.Zero, nil
	default:
		if !amount.IsPositive() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: discount amount must be positive", apperrors.ErrValidation)
		}
		return decimal.Zero, *amount, nil
	}
}
