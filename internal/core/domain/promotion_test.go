package domain_test

import (
	"testing"
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestPromotion_InWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-24 * time.Hour)
	after := now.Add(24 * time.Hour)

	tests := []struct {
		name      string
		promotion domain.Promotion
		want      bool
	}{
		{
			name:      "no bounds is always in window",
			promotion: domain.Promotion{},
			want:      true,
		},
		{
			name: "inside both bounds",
			promotion: domain.Promotion{
				ValidFrom:  timePtr(before),
				ValidUntil: timePtr(after),
			},
			want: true,
		},
		{
			name: "before the window opens",
			promotion: domain.Promotion{
				ValidFrom: timePtr(after),
			},
			want: false,
		},
		{
			name: "after the window closed",
			promotion: domain.Promotion{
				ValidUntil: timePtr(before),
			},
			want: false,
		},
		{
			name: "open-ended start, inside",
			promotion: domain.Promotion{
				ValidUntil: timePtr(after),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.promotion.InWindow(now))
		})
	}
}

// Helper functions
func timePtr(t time.Time) *time.Time {
	return &t
}
