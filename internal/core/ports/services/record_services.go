package services

import (
	"context"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// RecordReaderSvc defines read operations for service record data
type RecordReaderSvc interface {
	// GetRecordByID retrieves a specific service record.
	GetRecordByID(ctx context.Context, branchID string, recordID string, userID string) (*domain.ServiceRecord, error)

	// ListRecords retrieves a paginated list of records for a branch.
	ListRecords(ctx context.Context, branchID string, userID string, params dto.ListRecordsParams) (*dto.ListRecordsResponse, error)
}

// RecordLifecycleSvc defines the state transitions of a service record.
// Price is resolved and frozen at intake; transitions only ever move money via
// the current-account ledger, never by recomputing the price.
type RecordLifecycleSvc interface {
	// IntakeRecord creates a record in IN_PROGRESS: resolves the price, stacks
	// discounts, freezes the total, redeems a selected survey benefit and debits
	// the client's current account when account settlement was requested.
	IntakeRecord(ctx context.Context, branchID string, req dto.CreateRecordRequest, userID string) (*domain.ServiceRecord, error)

	// MarkReady transitions IN_PROGRESS -> READY.
	MarkReady(ctx context.Context, branchID string, recordID string, userID string) (*domain.ServiceRecord, error)

	// MarkDelivered transitions READY -> DELIVERED. Fails with ErrPaymentPending
	// when the record is unpaid and was not settled via current account.
	MarkDelivered(ctx context.Context, branchID string, recordID string, userID string) (*domain.ServiceRecord, error)

	// RegisterPayment marks an unpaid record as paid by cash or transfer.
	// Re-registering an already settled record is rejected.
	RegisterPayment(ctx context.Context, branchID string, recordID string, req dto.RegisterPaymentRequest, userID string) (*domain.ServiceRecord, error)

	// CancelRecord transitions IN_PROGRESS -> CANCELLED with a mandatory reason,
	// reversing any current-account debit the record incurred.
	CancelRecord(ctx context.Context, branchID string, recordID string, reason string, userID string) (*domain.ServiceRecord, error)

	// AnnulRecord voids a record from any non-annulled state (branch admins only)
	// and reverses any current-account debit. The reversed amount is returned so
	// callers can surface it; zero when no money moved.
	AnnulRecord(ctx context.Context, branchID string, recordID string, reason string, userID string) (*domain.ServiceRecord, decimal.Decimal, error)

	// DeleteRecord physically removes a record after firing the same reversal as
	// annulment. The reversed amount is returned; zero when no money moved.
	DeleteRecord(ctx context.Context, branchID string, recordID string, userID string) (decimal.Decimal, error)
}

// RecordSvcFacade combines all record-related service interfaces
type RecordSvcFacade interface {
	RecordReaderSvc
	RecordLifecycleSvc
}
