package repositories

import (
	"context"
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
)

// AccountReader defines read operations for current account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.CurrentAccount, error)

	// FindAccountByPhone retrieves an account by exact phone match within a branch.
	// Returns ErrNotFound when no account exists for the phone.
	FindAccountByPhone(ctx context.Context, branchID string, phone string) (*domain.CurrentAccount, error)

	// ListAccounts retrieves a paginated list of accounts for a given branch.
	ListAccounts(ctx context.Context, branchID string, limit int, offset int) ([]domain.CurrentAccount, error)
}

// AccountWriter defines write operations for current account data
type AccountWriter interface {
	// SaveAccount persists a new account. Returns ErrDuplicate when the phone is
	// already taken within the branch.
	SaveAccount(ctx context.Context, account domain.CurrentAccount) error

	// UpdateAccountDetails updates name/notes of an existing account.
	UpdateAccountDetails(ctx context.Context, account domain.CurrentAccount) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// LedgerAppender defines the append-only movement log operations. Appending a
// movement and updating the account's cached balance happen in one database
// transaction with the account row locked, so the cache always equals the
// fold-sum of the log.
type LedgerAppender interface {
	// AppendMovement appends a movement and atomically adjusts the account balance.
	// Returns ErrDuplicate when a movement with the same (recordID, cause) already
	// exists, and ErrConflict on lock/serialization failures (retryable).
	AppendMovement(ctx context.Context, movement domain.LedgerMovement) error

	// FindDebitForRecord retrieves the unique SERVICE_DEBIT movement tied to a
	// record, or ErrNotFound if the record never used a current account.
	FindDebitForRecord(ctx context.Context, recordID string) (*domain.LedgerMovement, error)

	// FindReversalForRecord retrieves the DEBIT_REVERSAL movement for a record,
	// or ErrNotFound when the debit has not been reversed.
	FindReversalForRecord(ctx context.Context, recordID string) (*domain.LedgerMovement, error)

	// ListMovementsByAccount retrieves a paginated list of movements for an
	// account using token-based pagination, newest first.
	ListMovementsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerMovement, *string, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	LedgerAppender
}
