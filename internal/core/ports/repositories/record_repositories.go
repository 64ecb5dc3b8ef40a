package repositories

import (
	"context"
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
)

// RecordReader defines read operations for service record data
type RecordReader interface {
	// FindRecordByID retrieves a specific service record by its unique identifier.
	FindRecordByID(ctx context.Context, recordID string) (*domain.ServiceRecord, error)

	// ListRecordsByBranch retrieves a paginated list of records for a branch using
	// token-based pagination. Voided (cancelled/annulled) records are included only
	// when includeVoided is true.
	ListRecordsByBranch(ctx context.Context, branchID string, limit int, nextToken *string, includeVoided bool) ([]domain.ServiceRecord, *string, error)
}

// RecordWriter defines write operations for service record data
type RecordWriter interface {
	// SaveRecord persists a new service record.
	SaveRecord(ctx context.Context, record domain.ServiceRecord) error

	// UpdateRecordState transitions a record from expectedState to newState.
	// The expected state is enforced in the UPDATE predicate; a lost race returns
	// ErrConflict. voidReason, readyAt and deliveredAt are written when non-nil.
	UpdateRecordState(ctx context.Context, recordID string, expectedState, newState domain.RecordState, voidReason *string, readyAt, deliveredAt *time.Time, userID string, now time.Time) error

	// UpdateRecordPayment marks an unpaid record as paid with the given method.
	// Returns ErrConflict if the record is already paid.
	UpdateRecordPayment(ctx context.Context, recordID string, method domain.PaymentMethod, userID string, now time.Time) error

	// DeleteRecord physically removes a record.
	DeleteRecord(ctx context.Context, recordID string) error
}

// RecordRepositoryFacade combines all record-related repository interfaces
type RecordRepositoryFacade interface {
	RecordReader
	RecordWriter
}
