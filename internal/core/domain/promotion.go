package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promotion is a tenant-configured upsell discount targeted at specific
// service kinds. DiscountPercent and DiscountAmount are mutually exclusive in
// practice; when both are set, the percentage takes precedence.
type Promotion struct {
	PromotionID     string          `json:"promotionID"` // Primary Key (e.g., UUID)
	BranchID        string          `json:"branchID"`    // FK -> branches.branch_id (NOT NULL)
	Name            string          `json:"name"`
	TargetKinds     []ServiceKind   `json:"targetKinds"`
	DiscountPercent decimal.Decimal `json:"discountPercent"` // 0 when the promotion is amount-based
	DiscountAmount  decimal.Decimal `json:"discountAmount"`  // 0 when the promotion is percentage-based
	IsActive        bool            `json:"isActive"`
	ValidFrom       *time.Time      `json:"validFrom,omitempty"`
	ValidUntil      *time.Time      `json:"validUntil,omitempty"`
	AuditFields
}

// InWindow reports whether the promotion's validity window covers t.
// A nil bound is open-ended.
func (p Promotion) InWindow(t time.Time) bool {
	if p.ValidFrom != nil && t.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && t.After(*p.ValidUntil) {
		return false
	}
	return true
}

// BenefitStatus is the redemption state of a survey benefit.
type BenefitStatus string

const (
	BenefitPending  BenefitStatus = "PENDING"
	BenefitRedeemed BenefitStatus = "REDEEMED"
)

// SurveyBenefit is a discount earned by a client for completing a satisfaction
// survey, redeemable once on a future visit. A zero DiscountPercent means the
// default percentage applies at stacking time.
type SurveyBenefit struct {
	BenefitID        string          `json:"benefitID"` // Primary Key (e.g., UUID)
	BranchID         string          `json:"branchID"`  // FK -> branches.branch_id (NOT NULL)
	ClientPhone      string          `json:"clientPhone"`
	DiscountPercent  decimal.Decimal `json:"discountPercent"`
	Status           BenefitStatus   `json:"status"`
	SurveyResponseID string          `json:"surveyResponseID"` // External survey system reference
	RedeemedAt       *time.Time      `json:"redeemedAt,omitempty"`
	AuditFields
}
