package dto

import (
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePromotionRequest defines the data needed to create a promotion.
// Exactly one of discountPercent/discountAmount must be set.
type CreatePromotionRequest struct {
	Name            string               `json:"name" binding:"required"`
	TargetKinds     []domain.ServiceKind `json:"targetKinds" binding:"omitempty,dive,oneof=SIMPLE WITH_WAX INTERIOR CHASSIS_CLEANING POLISHING"`
	DiscountPercent *decimal.Decimal     `json:"discountPercent"`
	DiscountAmount  *decimal.Decimal     `json:"discountAmount"`
	ValidFrom       *time.Time           `json:"validFrom"`
	ValidUntil      *time.Time           `json:"validUntil"`
}

// UpdatePromotionRequest defines the data allowed for updating a promotion.
type UpdatePromotionRequest struct {
	Name            *string          `json:"name"`
	DiscountPercent *decimal.Decimal `json:"discountPercent"`
	DiscountAmount  *decimal.Decimal `json:"discountAmount"`
	IsActive        *bool            `json:"isActive"`
	ValidFrom       *time.Time       `json:"validFrom"`
	ValidUntil      *time.Time       `json:"validUntil"`
}

// PromotionResponse defines the data returned for a promotion.
type PromotionResponse struct {
	PromotionID     string               `json:"promotionID"`
	BranchID        string               `json:"branchID"`
	Name            string               `json:"name"`
	TargetKinds     []domain.ServiceKind `json:"targetKinds,omitempty"`
	DiscountPercent *decimal.Decimal     `json:"discountPercent,omitempty"`
	DiscountAmount  *decimal.Decimal     `json:"discountAmount,omitempty"`
	IsActive        bool                 `json:"isActive"`
	ValidFrom       *time.Time           `json:"validFrom,omitempty"`
	ValidUntil      *time.Time           `json:"validUntil,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	CreatedBy       string               `json:"createdBy"`
	LastUpdatedAt   time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy   string               `json:"lastUpdatedBy"`
}

// GrantBenefitRequest defines the data needed to grant a survey benefit.
// DiscountPercent defaults to the standard survey reward when omitted.
type GrantBenefitRequest struct {
	ClientPhone      string           `json:"clientPhone" binding:"required"`
	DiscountPercent  *decimal.Decimal `json:"discountPercent"`
	SurveyResponseID string           `json:"surveyResponseID"`
}

// BenefitResponse defines the data returned for a survey benefit.
type BenefitResponse struct {
	BenefitID        string               `json:"benefitID"`
	BranchID         string               `json:"branchID"`
	ClientPhone      string               `json:"clientPhone"`
	DiscountPercent  decimal.Decimal      `json:"discountPercent"`
	Status           domain.BenefitStatus `json:"status"`
	SurveyResponseID string               `json:"surveyResponseID,omitempty"`
	RedeemedAt       *time.Time           `json:"redeemedAt,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
	CreatedBy        string               `json:"createdBy"`
}

// ToPromotionResponse converts a domain.Promotion to PromotionResponse DTO
func ToPromotionResponse(p *domain.Promotion) PromotionResponse {
	resp := PromotionResponse{
		PromotionID:   p.PromotionID,
		BranchID:      p.BranchID,
		Name:          p.Name,
		TargetKinds:   p.TargetKinds,
		IsActive:      p.IsActive,
		ValidFrom:     p.ValidFrom,
		ValidUntil:    p.ValidUntil,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
		LastUpdatedAt: p.LastUpdatedAt,
		LastUpdatedBy: p.LastUpdatedBy,
	}
	if !p.DiscountPercent.IsZero() {
		pct := p.DiscountPercent
		resp.DiscountPercent = &pct
	}
	if !p.DiscountAmount.IsZero() {
		amt := p.DiscountAmount
		resp.DiscountAmount = &amt
	}
	return resp
}

// ToListPromotionResponse converts a slice of domain.Promotion to response DTOs.
func ToListPromotionResponse(promos []domain.Promotion) []PromotionResponse {
	res := make([]PromotionResponse, len(promos))
	for i, p := range promos {
		res[i] = ToPromotionResponse(&p)
	}
	return res
}

// ToBenefitResponse converts a domain.SurveyBenefit to BenefitResponse DTO
func ToBenefitResponse(b *domain.SurveyBenefit) BenefitResponse {
	return BenefitResponse{
		BenefitID:        b.BenefitID,
		BranchID:         b.BranchID,
		ClientPhone:      b.ClientPhone,
		DiscountPercent:  b.DiscountPercent,
		Status:           b.Status,
		SurveyResponseID: b.SurveyResponseID,
		RedeemedAt:       b.RedeemedAt,
		CreatedAt:        b.CreatedAt,
		CreatedBy:        b.CreatedBy,
	}
}

// ToListBenefitResponse converts a slice of domain.SurveyBenefit to response DTOs.
func ToListBenefitResponse(benefits []domain.SurveyBenefit) []BenefitResponse {
	res := make([]BenefitResponse, len(benefits))
	for i, b := range benefits {
		res[i] = ToBenefitResponse(&b)
	}
	return res
}
