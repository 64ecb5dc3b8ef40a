package pricing_test

import (
	"testing"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/lavadero/carwash_backend/internal/core/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func pct(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestApplyDiscounts(t *testing.T) {
	tests := []struct {
		name      string
		subtotal  decimal.Decimal
		extras    decimal.Decimal
		promotion *domain.Promotion
		benefit   *domain.SurveyBenefit
		want      decimal.Decimal
	}{
		{
			name:     "no discounts",
			subtotal: decimal.NewFromInt(24000),
			extras:   decimal.NewFromInt(1500),
			want:     decimal.NewFromInt(25500),
		},
		{
			name:      "percentage promotion",
			subtotal:  decimal.NewFromInt(24000),
			extras:    decimal.Zero,
			promotion: &domain.Promotion{DiscountPercent: pct(15)},
			want:      decimal.NewFromInt(20400),
		},
		{
			name:      "fixed amount promotion",
			subtotal:  decimal.NewFromInt(24000),
			extras:    decimal.Zero,
			promotion: &domain.Promotion{DiscountAmount: decimal.NewFromInt(5000)},
			want:      decimal.NewFromInt(19000),
		},
		{
			name:      "percentage takes precedence when both set",
			subtotal:  decimal.NewFromInt(10000),
			extras:    decimal.Zero,
			promotion: &domain.Promotion{DiscountPercent: pct(10), DiscountAmount: decimal.NewFromInt(9999)},
			want:      decimal.NewFromInt(9000),
		},
		{
			name:      "fixed amount clamps at zero",
			subtotal:  decimal.NewFromInt(3000),
			extras:    decimal.Zero,
			promotion: &domain.Promotion{DiscountAmount: decimal.NewFromInt(5000)},
			want:      decimal.Zero,
		},
		{
			name:     "promotion then benefit stack multiplicatively",
			subtotal: decimal.NewFromInt(24000),
			extras:   decimal.Zero,
			promotion: &domain.Promotion{
				DiscountPercent: pct(15),
			},
			benefit: &domain.SurveyBenefit{DiscountPercent: pct(10)},
			want:    decimal.NewFromInt(18360),
		},
		{
			name:     "benefit without explicit percentage defaults to 10",
			subtotal: decimal.NewFromInt(20000),
			extras:   decimal.Zero,
			benefit:  &domain.SurveyBenefit{},
			want:     decimal.NewFromInt(18000),
		},
		{
			name:     "extras included in discount base",
			subtotal: decimal.NewFromInt(22000),
			extras:   decimal.NewFromInt(2000),
			promotion: &domain.Promotion{
				DiscountPercent: pct(15),
			},
			want: decimal.NewFromInt(20400),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.ApplyDiscounts(tt.subtotal, tt.extras, tt.promotion, tt.benefit)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestApplyDiscounts_StackingIsNotAdditive(t *testing.T) {
	base := decimal.NewFromInt(10000)
	promo := &domain.Promotion{DiscountPercent: pct(10)}
	benefit := &domain.SurveyBenefit{DiscountPercent: pct(10)}

	got := pricing.ApplyDiscounts(base, decimal.Zero, promo, benefit)

	// 10% then 10% is 19% off, not 20%.
	assert.True(t, got.Equal(decimal.NewFromInt(8100)), "got %s", got)
	additive := base.Mul(decimal.NewFromInt(80)).Div(decimal.NewFromInt(100))
	assert.False(t, got.Equal(additive))
}
