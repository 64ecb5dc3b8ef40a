package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lavadero/carwash_backend/internal/apperrors"
	"github.com/lavadero/carwash_backend/internal/core/domain"
	portsrepo "github.com/lavadero/carwash_backend/internal/core/ports/repositories"
	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// movementRetries bounds the retry loop around ledger appends that lose a
// lock/serialization race on the account row.
const movementRetries = 3

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountBranchAuthorizer adds branch authorizer dependency
func WithAccountBranchAuthorizer(authorizer portssvc.BranchAuthorizerSvc) AccountServiceOption {
	return func(s *accountService) {
		s.BranchAuthorizer = authorizer
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new current account for a client phone.
func (s *accountService) CreateAccount(ctx context.Context, branchID string, req dto.CreateAccountRequest, userID string) (*domain.CurrentAccount, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleOperator); err != nil {
		return nil, err
	}

	now := time.Now()
	account := domain.CurrentAccount{
		AccountID:      uuid.NewString(),
		BranchID:       branchID,
		ClientName:     req.ClientName,
		Phone:          req.Phone,
		InitialBalance: req.InitialBalance,
		Balance:        req.InitialBalance,
		IsActive:       true,
		Notes:          req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: an account already exists for phone %s", apperrors.ErrDuplicate, req.Phone)
		}
		s.LogError(ctx, err, "Failed to save account",
			slog.String("account_id", account.AccountID),
			slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.LogInfo(ctx, "Current account created",
		slog.String("account_id", account.AccountID),
		slog.String("branch_id", branchID))
	return &account, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
func (s *accountService) GetAccountByID(ctx context.Context, branchID string, accountID string, userID string) (*domain.CurrentAccount, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	if account.BranchID != branchID {
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

// LookupByPhone retrieves an account by exact phone match. A missing account is
// a normal outcome at intake, so it maps to (nil, nil) rather than an error.
func (s *accountService) LookupByPhone(ctx context.Context, branchID string, phone string, userID string) (*domain.CurrentAccount, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByPhone(ctx, branchID, phone)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		s.LogError(ctx, err, "Failed to look up account by phone", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return account, nil
}

// ListAccounts retrieves a paginated list of accounts for a given branch.
func (s *accountService) ListAccounts(ctx context.Context, branchID string, userID string, limit int, offset int) ([]domain.CurrentAccount, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, branchID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.CurrentAccount{}, nil
	}
	return accounts, nil
}

// ListMovements retrieves an account's ledger movements, newest first.
func (s *accountService) ListMovements(ctx context.Context, branchID string, accountID string, userID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error) {
	if _, err := s.GetAccountByID(ctx, branchID, accountID, userID); err != nil {
		return nil, err
	}

	movements, nextToken, err := s.accountRepo.ListMovementsByAccount(ctx, accountID, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list account movements", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	resp := dto.ToListMovementsResponse(movements, nextToken)
	return &resp, nil
}

// UpdateAccount updates name/notes of an existing account.
func (s *accountService) UpdateAccount(ctx context.Context, branchID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.CurrentAccount, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleOperator); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.BranchID != branchID {
		return nil, apperrors.ErrNotFound
	}

	if req.ClientName != nil {
		account.ClientName = *req.ClientName
	}
	if req.Notes != nil {
		account.Notes = *req.Notes
	}
	account.LastUpdatedAt = time.Now()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccountDetails(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// TopUp credits the account with a manual deposit.
func (s *accountService) TopUp(ctx context.Context, branchID string, accountID string, req dto.TopUpRequest, userID string) (*domain.CurrentAccount, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleOperator); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: top-up amount must be positive", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.BranchID != branchID {
		return nil, apperrors.ErrNotFound
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account is inactive", apperrors.ErrValidation)
	}

	movement := domain.LedgerMovement{
		MovementID: uuid.NewString(),
		AccountID:  accountID,
		BranchID:   branchID,
		Amount:     req.Amount,
		Cause:      domain.MovementTopUp,
		Notes:      req.Notes,
		CreatedAt:  time.Now(),
		CreatedBy:  userID,
	}

	if err := s.appendWithRetry(ctx, movement); err != nil {
		s.LogError(ctx, err, "Failed to append top-up movement", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to register top-up: %w", err)
	}

	s.LogInfo(ctx, "Account topped up",
		slog.String("account_id", accountID),
		slog.String("amount", req.Amount.String()))
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

// DeactivateAccount marks an account as inactive.
func (s *accountService) DeactivateAccount(ctx context.Context, branchID string, accountID string, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleAdmin); err != nil {
		return err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.BranchID != branchID {
		return apperrors.ErrNotFound
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}

// DebitForRecord appends the record's unique SERVICE_DEBIT for the frozen
// total. The balance may go negative; overdraft is allowed.
func (s *accountService) DebitForRecord(ctx context.Context, branchID string, accountID string, recordID string, amount decimal.Decimal, userID string) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: debit amount cannot be negative", apperrors.ErrValidation)
	}

	movement := domain.LedgerMovement{
		MovementID: uuid.NewString(),
		AccountID:  accountID,
		BranchID:   branchID,
		Amount:     amount.Neg(),
		Cause:      domain.MovementServiceDebit,
		RecordID:   &recordID,
		CreatedAt:  time.Now(),
		CreatedBy:  userID,
	}

	if err := s.appendWithRetry(ctx, movement); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: record %s already debited", apperrors.ErrDuplicate, recordID)
		}
		s.LogError(ctx, err, "Failed to append service debit",
			slog.String("account_id", accountID),
			slog.String("record_id", recordID))
		return fmt.Errorf("failed to debit account: %w", err)
	}

	s.LogInfo(ctx, "Account debited for record",
		slog.String("account_id", accountID),
		slog.String("record_id", recordID),
		slog.String("amount", amount.String()))
	return nil
}

// ReverseRecordDebit appends the compensating credit for a record's debit.
// Calling it again for the same record is a no-op: the ledger holds at most one
// reversal per record, so cancel, annul and delete can all share this path.
// A record with no debit to reverse is an ErrNotFound; the caller decides
// whether that is expected or a ledger inconsistency.
func (s *accountService) ReverseRecordDebit(ctx context.Context, branchID string, recordID string, userID string) (decimal.Decimal, error) {
	debit, err := s.accountRepo.FindDebitForRecord(ctx, recordID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: no service debit for record %s", apperrors.ErrNotFound, recordID)
		}
		s.LogError(ctx, err, "Failed to look up debit for reversal", slog.String("record_id", recordID))
		return decimal.Zero, fmt.Errorf("failed to look up debit: %w", err)
	}

	reversedAmount := debit.Amount.Neg() // debit is negative, reversal credits the magnitude

	movement := domain.LedgerMovement{
		MovementID: uuid.NewString(),
		AccountID:  debit.AccountID,
		BranchID:   debit.BranchID,
		Amount:     reversedAmount,
		Cause:      domain.MovementDebitReversal,
		RecordID:   &recordID,
		CreatedAt:  time.Now(),
		CreatedBy:  userID,
	}

	if err := s.appendWithRetry(ctx, movement); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogDebug(ctx, "Debit already reversed", slog.String("record_id", recordID))
			return reversedAmount, nil
		}
		s.LogError(ctx, err, "Failed to append debit reversal",
			slog.String("account_id", debit.AccountID),
			slog.String("record_id", recordID))
		return decimal.Zero, fmt.Errorf("failed to reverse debit: %w", err)
	}

	s.LogInfo(ctx, "Record debit reversed",
		slog.String("account_id", debit.AccountID),
		slog.String("record_id", recordID),
		slog.String("amount", reversedAmount.String()))
	return reversedAmount, nil
}

// appendWithRetry retries AppendMovement on lock/serialization conflicts.
// ErrDuplicate is never retried: it means the movement logically exists.
func (s *accountService) appendWithRetry(ctx context.Context, movement domain.LedgerMovement) error {
	var err error
	for attempt := 1; attempt <= movementRetries; attempt++ {
		err = s.accountRepo.AppendMovement(ctx, movement)
		if err == nil || !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		s.LogDebug(ctx, "Retrying movement append after conflict",
			slog.String("movement_id", movement.MovementID),
			slog.Int("attempt", attempt))
	}
	return err
}
