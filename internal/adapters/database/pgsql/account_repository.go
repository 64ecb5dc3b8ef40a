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
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for current account and
// ledger movement data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `
	account_id, branch_id, client_name, phone, initial_balance, balance, is_active, notes,
	created_at, created_by, last_updated_at, last_updated_by`

const movementColumns = `
	movement_id, account_id, branch_id, amount, cause, record_id, notes, created_at, created_by`

// SaveAccount persists a new current account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.CurrentAccount) error {
	query := `
		INSERT INTO current_accounts (
			account_id, branch_id, client_name, phone, initial_balance, balance, is_active, notes,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.BranchID,
		account.ClientName,
		account.Phone,
		account.InitialBalance,
		account.Balance,
		account.IsActive,
		account.Notes,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to insert account %s: %w", account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.CurrentAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM current_accounts WHERE account_id = $1;`

	account, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// FindAccountByPhone retrieves an account by exact phone match within a branch.
func (r *PgxAccountRepository) FindAccountByPhone(ctx context.Context, branchID string, phone string) (*domain.CurrentAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM current_accounts WHERE branch_id = $1 AND phone = $2;`

	account, err := scanAccount(r.Pool.QueryRow(ctx, query, branchID, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by phone in branch %s: %w", branchID, err)
	}
	return account, nil
}

// ListAccounts retrieves a paginated list of accounts for a branch.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, branchID string, limit int, offset int) ([]domain.CurrentAccount, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + accountColumns + `
		FROM current_accounts
		WHERE branch_id = $1
		ORDER BY client_name, account_id
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, branchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for branch %s: %w", branchID, err)
	}
	defer rows.Close()

	accounts := make([]domain.CurrentAccount, 0, limit)
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan account row for branch %s: %w", branchID, scanErr)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows for branch %s: %w", branchID, err)
	}
	return accounts, nil
}

// UpdateAccountDetails updates name/notes of an existing account.
func (r *PgxAccountRepository) UpdateAccountDetails(ctx context.Context, account domain.CurrentAccount) error {
	query := `
		UPDATE current_accounts
		SET client_name = $2,
		    notes = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.ClientName,
		account.Notes,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateAccount marks an account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE current_accounts
		SET is_active = FALSE,
		    last_updated_at = $2,
		    last_updated_by = $3
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AppendMovement appends a movement and adjusts the cached balance in one
// transaction. The account row is locked NOWAIT so a concurrent append surfaces
// as ErrConflict for the caller to retry instead of queueing on the lock.
func (r *PgxAccountRepository) AppendMovement(ctx context.Context, movement domain.LedgerMovement) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var balance decimal.Decimal
	lockQuery := `SELECT balance FROM current_accounts WHERE account_id = $1 FOR UPDATE NOWAIT;`
	if err := tx.QueryRow(ctx, lockQuery, movement.AccountID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		err = mapPgError(err)
		if errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		return fmt.Errorf("failed to lock account %s: %w", movement.AccountID, err)
	}

	insertQuery := `
		INSERT INTO ledger_movements (
			movement_id, account_id, branch_id, amount, cause, record_id, notes, created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, insertQuery,
		movement.MovementID,
		movement.AccountID,
		movement.BranchID,
		movement.Amount,
		movement.Cause,
		movement.RecordID,
		movement.Notes,
		movement.CreatedAt,
		movement.CreatedBy,
	)
	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, apperrors.ErrDuplicate) || errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		return fmt.Errorf("failed to insert movement %s: %w", movement.MovementID, err)
	}

	updateQuery := `
		UPDATE current_accounts
		SET balance = balance + $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE account_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, movement.AccountID, movement.Amount, movement.CreatedAt, movement.CreatedBy); err != nil {
		return fmt.Errorf("failed to adjust balance of account %s: %w", movement.AccountID, err)
	}

	return r.Commit(ctx, tx)
}

// FindDebitForRecord retrieves the unique SERVICE_DEBIT movement of a record.
func (r *PgxAccountRepository) FindDebitForRecord(ctx context.Context, recordID string) (*domain.LedgerMovement, error) {
	return r.findMovementByCause(ctx, recordID, domain.MovementServiceDebit)
}

// FindReversalForRecord retrieves the DEBIT_REVERSAL movement of a record.
func (r *PgxAccountRepository) FindReversalForRecord(ctx context.Context, recordID string) (*domain.LedgerMovement, error) {
	return r.findMovementByCause(ctx, recordID, domain.MovementDebitReversal)
}

func (r *PgxAccountRepository) findMovementByCause(ctx context.Context, recordID string, cause domain.MovementCause) (*domain.LedgerMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM ledger_movements WHERE record_id = $1 AND cause = $2;`

	movement, err := scanMovement(r.Pool.QueryRow(ctx, query, recordID, cause))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %s movement for record %s: %w", cause, recordID, err)
	}
	return movement, nil
}

// ListMovementsByAccount retrieves a paginated list of movements for an account
// using token-based pagination, newest first.
func (r *PgxAccountRepository) ListMovementsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerMovement, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + movementColumns + ` FROM ledger_movements`
	filterClause := `WHERE account_id = $1`
	orderByClause := `ORDER BY created_at DESC, movement_id DESC`

	args := []interface{}{accountID}
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastMovementID, decodeErr := pagination.DecodeCursorToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		// Row-value comparison so movements sharing the boundary timestamp are
		// not skipped; matches the (created_at, movement_id) sort order.
		filterClause += ` AND (created_at, movement_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastMovementID)
	}

	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query movements for account %s: %w", accountID, err)
	}
	defer rows.Close()

	movements := make([]domain.LedgerMovement, 0, fetchLimit)
	for rows.Next() {
		movement, scanErr := scanMovement(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan movement row for account %s: %w", accountID, scanErr)
		}
		movements = append(movements, *movement)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating movement rows for account %s: %w", accountID, err)
	}

	var nextTokenVal *string
	if len(movements) > limit {
		last := movements[limit-1]
		token := pagination.EncodeCursorToken(last.CreatedAt, last.MovementID)
		nextTokenVal = &token
		movements = movements[:limit]
	}
	return movements, nextTokenVal, nil
}

func scanAccount(row pgx.Row) (*domain.CurrentAccount, error) {
	var account domain.CurrentAccount
	err := row.Scan(
		&account.AccountID,
		&account.BranchID,
		&account.ClientName,
		&account.Phone,
		&account.InitialBalance,
		&account.Balance,
		&account.IsActive,
		&account.Notes,
		&account.CreatedAt,
		&account.CreatedBy,
		&account.LastUpdatedAt,
		&account.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func scanMovement(row pgx.Row) (*domain.LedgerMovement, error) {
	var movement domain.LedgerMovement
	err := row.Scan(
		&movement.MovementID,
		&movement.AccountID,
		&movement.BranchID,
		&movement.Amount,
		&movement.Cause,
		&movement.RecordID,
		&movement.Notes,
		&movement.CreatedAt,
		&movement.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &movement, nil
}
