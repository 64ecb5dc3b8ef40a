package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lavadero/carwash_backend/internal/apperrors"
	"github.com/lavadero/carwash_backend/internal/core/domain"
	portsrepo "github.com/lavadero/carwash_backend/internal/core/ports/repositories"
	"github.com/lavadero/carwash_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRecordRepository struct {
	BaseRepository
}

// newPgxRecordRepository creates a new repository for service record data.
func newPgxRecordRepository(pool *pgxpool.Pool) portsrepo.RecordRepositoryFacade {
	return &PgxRecordRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.RecordRepositoryFacade = (*PgxRecordRepository)(nil)

const recordColumns = `
	record_id, branch_id, vehicle_category, service_kinds, extra_description, extra_amount,
	client_name, client_phone, total_price, paid, payment_method, paid_via_account,
	account_id, promotion_id, benefit_id, state, void_reason, ready_at, delivered_at,
	created_at, created_by, last_updated_at, last_updated_by`

// SaveRecord persists a new service record.
func (r *PgxRecordRepository) SaveRecord(ctx context.Context, record domain.ServiceRecord) error {
	query := `
		INSERT INTO service_records (
			record_id, branch_id, vehicle_category, service_kinds, extra_description, extra_amount,
			client_name, client_phone, total_price, paid, payment_method, paid_via_account,
			account_id, promotion_id, benefit_id, state, void_reason, ready_at, delivered_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err := r.Pool.Exec(ctx, query,
		record.RecordID,
		record.BranchID,
		record.VehicleCategory,
		kindsToStrings(record.ServiceKinds),
		record.ExtraDescription,
		record.ExtraAmount,
		record.ClientName,
		record.ClientPhone,
		record.TotalPrice,
		record.Paid,
		record.PaymentMethod,
		record.PaidViaAccount,
		record.AccountID,
		record.PromotionID,
		record.BenefitID,
		record.State,
		record.VoidReason,
		record.ReadyAt,
		record.DeliveredAt,
		record.CreatedAt,
		record.CreatedBy,
		record.LastUpdatedAt,
		record.LastUpdatedBy,
	)
	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, apperrors.ErrDuplicate) || errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		return fmt.Errorf("failed to insert record %s: %w", record.RecordID, err)
	}
	return nil
}

// FindRecordByID retrieves a service record by its ID.
func (r *PgxRecordRepository) FindRecordByID(ctx context.Context, recordID string) (*domain.ServiceRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM service_records WHERE record_id = $1;`

	record, err := scanRecord(r.Pool.QueryRow(ctx, query, recordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find record %s: %w", recordID, err)
	}
	return record, nil
}

// ListRecordsByBranch retrieves a paginated list of records for a branch using
// token-based pagination, newest first.
func (r *PgxRecordRepository) ListRecordsByBranch(ctx context.Context, branchID string, limit int, nextToken *string, includeVoided bool) ([]domain.ServiceRecord, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + recordColumns + ` FROM service_records`
	filterClause := `WHERE branch_id = $1`
	if !includeVoided {
		filterClause += ` AND state NOT IN ('CANCELLED', 'ANNULLED')`
	}
	orderByClause := `ORDER BY created_at DESC, record_id DESC`

	args := []interface{}{branchID}
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastRecordID, decodeErr := pagination.DecodeCursorToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		// Row-value comparison so rows sharing the boundary timestamp are not
		// skipped; matches the (created_at, record_id) sort order.
		filterClause += ` AND (created_at, record_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastRecordID)
	}

	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query records for branch %s: %w", branchID, err)
	}
	defer rows.Close()

	records := make([]domain.ServiceRecord, 0, fetchLimit)
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan record row for branch %s: %w", branchID, scanErr)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating record rows for branch %s: %w", branchID, err)
	}

	var nextTokenVal *string
	if len(records) > limit {
		last := records[limit-1]
		token := pagination.EncodeCursorToken(last.CreatedAt, last.RecordID)
		nextTokenVal = &token
		records = records[:limit]
	}
	return records, nextTokenVal, nil
}

// UpdateRecordState transitions a record between lifecycle states. The expected
// state sits in the UPDATE predicate, so a lost race affects zero rows.
func (r *PgxRecordRepository) UpdateRecordState(ctx context.Context, recordID string, expectedState, newState domain.RecordState, voidReason *string, readyAt, deliveredAt *time.Time, userID string, now time.Time) error {
	query := `
		UPDATE service_records
		SET state = $3,
		    void_reason = COALESCE($4, void_reason),
		    ready_at = COALESCE($5, ready_at),
		    delivered_at = COALESCE($6, delivered_at),
		    last_updated_at = $7,
		    last_updated_by = $8
		WHERE record_id = $1 AND state = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		recordID,
		expectedState,
		newState,
		voidReason,
		readyAt,
		deliveredAt,
		now,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update state of record %s: %w", recordID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: record %s is no longer %s", apperrors.ErrConflict, recordID, expectedState)
	}
	return nil
}

// UpdateRecordPayment marks an unpaid record as paid. The paid guard sits in
// the predicate, so a double settlement affects zero rows.
func (r *PgxRecordRepository) UpdateRecordPayment(ctx context.Context, recordID string, method domain.PaymentMethod, userID string, now time.Time) error {
	query := `
		UPDATE service_records
		SET paid = TRUE,
		    payment_method = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE record_id = $1 AND paid = FALSE AND paid_via_account = FALSE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, recordID, method, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update payment of record %s: %w", recordID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: record %s is already settled", apperrors.ErrConflict, recordID)
	}
	return nil
}

// DeleteRecord physically removes a record.
func (r *PgxRecordRepository) DeleteRecord(ctx context.Context, recordID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM service_records WHERE record_id = $1;`, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", recordID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// scanRecord reads one service record from a row. service_kinds round-trips
// through text[].
func scanRecord(row pgx.Row) (*domain.ServiceRecord, error) {
	var record domain.ServiceRecord
	var kinds []string
	err := row.Scan(
		&record.RecordID,
		&record.BranchID,
		&record.VehicleCategory,
		&kinds,
		&record.ExtraDescription,
		&record.ExtraAmount,
		&record.ClientName,
		&record.ClientPhone,
		&record.TotalPrice,
		&record.Paid,
		&record.PaymentMethod,
		&record.PaidViaAccount,
		&record.AccountID,
		&record.PromotionID,
		&record.BenefitID,
		&record.State,
		&record.VoidReason,
		&record.ReadyAt,
		&record.DeliveredAt,
		&record.CreatedAt,
		&record.CreatedBy,
		&record.LastUpdatedAt,
		&record.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	record.ServiceKinds = stringsToKinds(kinds)
	return &record, nil
}

func kindsToStrings(kinds []domain.ServiceKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func stringsToKinds(values []string) []domain.ServiceKind {
	out := make([]domain.ServiceKind, len(values))
	for i, v := range values {
		out[i] = domain.ServiceKind(v)
	}
	return out
}
