package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	portsrepo "github.com/lavadero/carwash_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for sales statistics.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// Cancelled and annulled records never count toward any aggregate; the
// exclusion is part of every query's predicate.
const notVoided = `state NOT IN ('CANCELLED', 'ANNULLED')`

// GetDailySales returns per-day record counts and totals for a period.
func (r *PgxReportingRepository) GetDailySales(ctx context.Context, branchID string, from, to time.Time) ([]domain.DailySalesRow, error) {
	query := `
		SELECT date_trunc('day', created_at) AS day,
		       COUNT(*) AS record_count,
		       COALESCE(SUM(total_price), 0) AS total
		FROM service_records
		WHERE branch_id = $1 AND created_at >= $2 AND created_at < $3 AND ` + notVoided + `
		GROUP BY day
		ORDER BY day;
	`
	rows, err := r.Pool.Query(ctx, query, branchID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily sales for branch %s: %w", branchID, err)
	}
	defer rows.Close()

	results := []domain.DailySalesRow{}
	for rows.Next() {
		var row domain.DailySalesRow
		if err := rows.Scan(&row.Date, &row.RecordCount, &row.Total); err != nil {
			return nil, fmt.Errorf("failed to scan daily sales row for branch %s: %w", branchID, err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily sales rows for branch %s: %w", branchID, err)
	}
	return results, nil
}

// GetHourlySales returns the intake distribution by hour of day for a period.
func (r *PgxReportingRepository) GetHourlySales(ctx context.Context, branchID string, from, to time.Time) ([]domain.HourlySalesRow, error) {
	query := `
		SELECT EXTRACT(HOUR FROM created_at)::int AS hour,
		       COUNT(*) AS record_count,
		       COALESCE(SUM(total_price), 0) AS total
		FROM service_records
		WHERE branch_id = $1 AND created_at >= $2 AND created_at < $3 AND ` + notVoided + `
		GROUP BY hour
		ORDER BY hour;
	`
	rows, err := r.Pool.Query(ctx, query, branchID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly sales for branch %s: %w", branchID, err)
	}
	defer rows.Close()

	results := []domain.HourlySalesRow{}
	for rows.Next() {
		var row domain.HourlySalesRow
		if err := rows.Scan(&row.Hour, &row.RecordCount, &row.Total); err != nil {
			return nil, fmt.Errorf("failed to scan hourly sales row for branch %s: %w", branchID, err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hourly sales rows for branch %s: %w", branchID, err)
	}
	return results, nil
}

// GetPaymentBreakdown returns period totals grouped by settlement method.
// Account-settled records fall under the CURRENT_ACCOUNT pseudo-method; records
// that are still unpaid are left out entirely.
func (r *PgxReportingRepository) GetPaymentBreakdown(ctx context.Context, branchID string, from, to time.Time) ([]domain.PaymentMethodTotal, error) {
	query := `
		SELECT CASE WHEN paid_via_account THEN 'CURRENT_ACCOUNT' ELSE payment_method END AS method,
		       COUNT(*) AS record_count,
		       COALESCE(SUM(total_price), 0) AS total
		FROM service_records
		WHERE branch_id = $1 AND created_at >= $2 AND created_at < $3
		  AND (paid = TRUE OR paid_via_account = TRUE)
		  AND ` + notVoided + `
		GROUP BY method
		ORDER BY method;
	`
	rows, err := r.Pool.Query(ctx, query, branchID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment breakdown for branch %s: %w", branchID, err)
	}
	defer rows.Close()

	results := []domain.PaymentMethodTotal{}
	for rows.Next() {
		var row domain.PaymentMethodTotal
		if err := rows.Scan(&row.Method, &row.RecordCount, &row.Total); err != nil {
			return nil, fmt.Errorf("failed to scan payment breakdown row for branch %s: %w", branchID, err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment breakdown rows for branch %s: %w", branchID, err)
	}
	return results, nil
}

// GetInactiveClients returns clients whose last non-voided visit predates since,
// longest absent first.
func (r *PgxReportingRepository) GetInactiveClients(ctx context.Context, branchID string, since time.Time, limit int) ([]domain.InactiveClientRow, error) {
	query := `
		SELECT MAX(client_name) AS client_name,
		       client_phone,
		       MAX(created_at) AS last_visit
		FROM service_records
		WHERE branch_id = $1 AND client_phone != '' AND ` + notVoided + `
		GROUP BY client_phone
		HAVING MAX(created_at) < $2
		ORDER BY last_visit
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, branchID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query inactive clients for branch %s: %w", branchID, err)
	}
	defer rows.Close()

	now := time.Now()
	results := []domain.InactiveClientRow{}
	for rows.Next() {
		var row domain.InactiveClientRow
		if err := rows.Scan(&row.ClientName, &row.ClientPhone, &row.LastVisit); err != nil {
			return nil, fmt.Errorf("failed to scan inactive client row for branch %s: %w", branchID, err)
		}
		row.DaysInactive = int(now.Sub(row.LastVisit).Hours() / 24)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inactive client rows for branch %s: %w", branchID, err)
	}
	return results, nil
}
