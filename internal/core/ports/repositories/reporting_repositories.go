package repositories

import (
	"context"
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
)

// ReportingRepository defines read operations for sales statistics. Every query
// excludes cancelled and annulled records in its own predicate; that exclusion
// is part of each aggregate's definition, not a post-filter.
type ReportingRepository interface {
	// GetDailySales returns per-day record counts and totals for a period.
	GetDailySales(ctx context.Context, branchID string, from, to time.Time) ([]domain.DailySalesRow, error)

	// GetHourlySales returns the intake distribution by hour of day for a period.
	GetHourlySales(ctx context.Context, branchID string, from, to time.Time) ([]domain.HourlySalesRow, error)

	// GetPaymentBreakdown returns period totals grouped by settlement method.
	GetPaymentBreakdown(ctx context.Context, branchID string, from, to time.Time) ([]domain.PaymentMethodTotal, error)

	// GetInactiveClients returns clients whose last non-voided record predates since.
	GetInactiveClients(ctx context.Context, branchID string, since time.Time, limit int) ([]domain.InactiveClientRow, error)
}
