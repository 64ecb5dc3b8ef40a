package services

import (
	"context"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for current account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, branchID string, accountID string, userID string) (*domain.CurrentAccount, error)

	// LookupByPhone retrieves an account by exact phone match. A missing account
	// is not an error: callers receive (nil, nil) and operate without one.
	LookupByPhone(ctx context.Context, branchID string, phone string, userID string) (*domain.CurrentAccount, error)

	// ListAccounts retrieves a paginated list of accounts for a given branch.
	ListAccounts(ctx context.Context, branchID string, userID string, limit int, offset int) ([]domain.CurrentAccount, error)

	// ListMovements retrieves an account's ledger movements, newest first.
	ListMovements(ctx context.Context, branchID string, accountID string, userID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error)
}

// AccountWriterSvc defines write operations for current account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account; duplicate phones within a branch are
	// rejected with ErrDuplicate.
	CreateAccount(ctx context.Context, branchID string, req dto.CreateAccountRequest, userID string) (*domain.CurrentAccount, error)

	// UpdateAccount updates name/notes of an existing account.
	UpdateAccount(ctx context.Context, branchID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.CurrentAccount, error)

	// TopUp credits the account with a manual deposit.
	TopUp(ctx context.Context, branchID string, accountID string, req dto.TopUpRequest, userID string) (*domain.CurrentAccount, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, branchID string, accountID string, userID string) error
}

// LedgerSvc defines the settlement operations the record lifecycle drives.
type LedgerSvc interface {
	// DebitForRecord appends the record's unique SERVICE_DEBIT movement for the
	// frozen total. Overdraft is permitted; the resulting balance may be negative.
	DebitForRecord(ctx context.Context, branchID string, accountID string, recordID string, amount decimal.Decimal, userID string) error

	// ReverseRecordDebit appends the compensating DEBIT_REVERSAL for a record's
	// debit. It is idempotent: a reversal that already exists is not repeated.
	// The magnitude of the reversed debit is returned.
	ReverseRecordDebit(ctx context.Context, branchID string, recordID string, userID string) (decimal.Decimal, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	LedgerSvc
}
