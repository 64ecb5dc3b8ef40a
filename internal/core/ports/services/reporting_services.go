package services

import (
	"context"
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
)

// ReportingService defines operations for generating sales reports.
// Voided records (cancelled or annulled) never contribute to any report.
type ReportingService interface {
	// DailySales aggregates record count and revenue per day over a date range.
	DailySales(ctx context.Context, branchID string, from, to time.Time, userID string) ([]domain.DailySalesRow, error)

	// HourlySales aggregates intake volume per hour of day over a date range.
	HourlySales(ctx context.Context, branchID string, from, to time.Time, userID string) ([]domain.HourlySalesRow, error)

	// PaymentBreakdown totals revenue per payment method over a date range.
	PaymentBreakdown(ctx context.Context, branchID string, from, to time.Time, userID string) ([]domain.PaymentMethodTotal, error)

	// InactiveClients lists clients with no non-voided record since the cutoff.
	InactiveClients(ctx context.Context, branchID string, since time.Time, userID string) ([]domain.InactiveClientRow, error)
}
