package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lavadero/carwash_backend/internal/apperrors"
	"github.com/lavadero/carwash_backend/internal/core/domain"
	portsrepo "github.com/lavadero/carwash_backend/internal/core/ports/repositories"
	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
)

// inactiveClientsLimit caps the inactive-clients report size.
const inactiveClientsLimit = 100

// reportingService implements the ReportingService interface.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingBranchAuthorizer adds branch authorizer dependency
func WithReportingBranchAuthorizer(authorizer portssvc.BranchAuthorizerSvc) ReportingServiceOption {
	return func(s *reportingService) {
		s.BranchAuthorizer = authorizer
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo: repo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// DailySales aggregates record count and revenue per day over a date range.
func (s *reportingService) DailySales(ctx context.Context, branchID string, from, to time.Time, userID string) ([]domain.DailySalesRow, error) {
	if err := s.validateRange(ctx, branchID, from, to, userID); err != nil {
		return nil, err
	}

	rows, err := s.reportingRepo.GetDailySales(ctx, branchID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate daily sales report", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to generate daily sales report: %w", err)
	}
	if rows == nil {
		return []domain.DailySalesRow{}, nil
	}
	return rows, nil
}

// HourlySales aggregates intake volume per hour of day over a date range.
func (s *reportingService) HourlySales(ctx context.Context, branchID string, from, to time.Time, userID string) ([]domain.HourlySalesRow, error) {
	if err := s.validateRange(ctx, branchID, from, to, userID); err != nil {
		return nil, err
	}

	rows, err := s.reportingRepo.GetHourlySales(ctx, branchID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate hourly sales report", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to generate hourly sales report: %w", err)
	}
	if rows == nil {
		return []domain.HourlySalesRow{}, nil
	}
	return rows, nil
}

// PaymentBreakdown totals revenue per payment method over a date range.
func (s *reportingService) PaymentBreakdown(ctx context.Context, branchID string, from, to time.Time, userID string) ([]domain.PaymentMethodTotal, error) {
	if err := s.validateRange(ctx, branchID, from, to, userID); err != nil {
		return nil, err
	}

	rows, err := s.reportingRepo.GetPaymentBreakdown(ctx, branchID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate payment breakdown", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to generate payment breakdown: %w", err)
	}
	if rows == nil {
		return []domain.PaymentMethodTotal{}, nil
	}
	return rows, nil
}

// InactiveClients lists clients with no non-voided record since the cutoff.
func (s *reportingService) InactiveClients(ctx context.Context, branchID string, since time.Time, userID string) ([]domain.InactiveClientRow, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	rows, err := s.reportingRepo.GetInactiveClients(ctx, branchID, since, inactiveClientsLimit)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate inactive clients report", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to generate inactive clients report: %w", err)
	}
	if rows == nil {
		return []domain.InactiveClientRow{}, nil
	}
	return rows, nil
}

func (s *reportingService) validateRange(ctx context.Context, branchID string, from, to time.Time, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleReadOnly); err != nil {
		return err
	}
	if to.Before(from) {
		return fmt.Errorf("%w: report range end precedes start", apperrors.ErrValidation)
	}
	return nil
}
