package pricing

import (
	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultBenefitPercent applies when a survey benefit carries no explicit percentage.
var DefaultBenefitPercent = decimal.NewFromInt(10)

var oneHundred = decimal.NewFromInt(100)

// ApplyDiscounts computes the final total for a record from its resolved
// subtotal and extras surcharge, applying the promotion first and the survey
// benefit second. The ordering is fixed: each step operates on the already
// discounted running total, so two stacked percentages compound
// multiplicatively (10% then 10% is 19% off, not 20%).
func ApplyDiscounts(subtotal, extras decimal.Decimal, promotion *domain.Promotion, benefit *domain.SurveyBenefit) decimal.Decimal {
	total := subtotal.Add(extras)

	if promotion != nil {
		if promotion.DiscountPercent.IsPositive() {
			// Percentage takes precedence when both fields are set.
			total = total.Mul(oneHundred.Sub(promotion.DiscountPercent)).Div(oneHundred)
		} else {
			total = total.Sub(promotion.DiscountAmount)
		}
		if total.IsNegative() {
			total = decimal.Zero
		}
	}

	if benefit != nil {
		pct := benefit.DiscountPercent
		if !pct.IsPositive() {
			pct = DefaultBenefitPercent
		}
		total = total.Mul(oneHundred.Sub(pct)).Div(oneHundred)
		if total.IsNegative() {
			total = decimal.Zero
		}
	}

	return total
}
