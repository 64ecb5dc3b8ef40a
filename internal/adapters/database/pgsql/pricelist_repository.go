package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/lavadero/carwash_backend/internal/apperrors"
	"github.com/lavadero/carwash_backend/internal/core/domain"
	portsrepo "github.com/lavadero/carwash_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxPriceListRepository struct {
	BaseRepository
}

// newPgxPriceListRepository creates a new repository for price list data.
func newPgxPriceListRepository(pool *pgxpool.Pool) portsrepo.PriceListRepositoryFacade {
	return &PgxPriceListRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.PriceListRepositoryFacade = (*PgxPriceListRepository)(nil)

const priceListColumns = `
	price_list_id, branch_id, name, is_default,
	created_at, created_by, last_updated_at, last_updated_by`

// SavePriceList persists a new price list.
func (r *PgxPriceListRepository) SavePriceList(ctx context.Context, list domain.PriceList) error {
	query := `
		INSERT INTO price_lists (
			price_list_id, branch_id, name, is_default,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		list.PriceListID,
		list.BranchID,
		list.Name,
		list.IsDefault,
		list.CreatedAt,
		list.CreatedBy,
		list.LastUpdatedAt,
		list.LastUpdatedBy,
	)
	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to insert price list %s: %w", list.PriceListID, err)
	}
	return nil
}

// FindPriceListByID retrieves a price list by its ID.
func (r *PgxPriceListRepository) FindPriceListByID(ctx context.Context, priceListID string) (*domain.PriceList, error) {
	query := `SELECT ` + priceListColumns + ` FROM price_lists WHERE price_list_id = $1;`

	list, err := scanPriceList(r.Pool.QueryRow(ctx, query, priceListID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find price list %s: %w", priceListID, err)
	}
	return list, nil
}

// FindDefaultPriceList retrieves the branch's default price list.
func (r *PgxPriceListRepository) FindDefaultPriceList(ctx context.Context, branchID string) (*domain.PriceList, error) {
	query := `SELECT ` + priceListColumns + ` FROM price_lists WHERE branch_id = $1 AND is_default = TRUE;`

	list, err := scanPriceList(r.Pool.QueryRow(ctx, query, branchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find default price list for branch %s: %w", branchID, err)
	}
	return list, nil
}

// ListPriceLists retrieves all price lists of a branch.
func (r *PgxPriceListRepository) ListPriceLists(ctx context.Context, branchID string) ([]domain.PriceList, error) {
	query := `SELECT ` + priceListColumns + ` FROM price_lists WHERE branch_id = $1 ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query price lists for branch %s: %w", branchID, err)
	}
	defer rows.Close()

	lists := []domain.PriceList{}
	for rows.Next() {
		list, scanErr := scanPriceList(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan price list row for branch %s: %w", branchID, scanErr)
		}
		lists = append(lists, *list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price list rows for branch %s: %w", branchID, err)
	}
	return lists, nil
}

// FindEntriesByListID retrieves the entries of a price list as a snapshot.
func (r *PgxPriceListRepository) FindEntriesByListID(ctx context.Context, priceListID string) (domain.PriceSnapshot, error) {
	query := `SELECT category, kind, unit_price FROM price_list_entries WHERE price_list_id = $1;`

	rows, err := r.Pool.Query(ctx, query, priceListID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of price list %s: %w", priceListID, err)
	}
	defer rows.Close()

	snapshot := domain.PriceSnapshot{}
	for rows.Next() {
		var category domain.VehicleCategory
		var kind domain.ServiceKind
		var unitPrice decimal.Decimal
		if err := rows.Scan(&category, &kind, &unitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan entry row of price list %s: %w", priceListID, err)
		}
		snapshot[domain.PriceKey{Category: category, Kind: kind}] = unitPrice
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows of price list %s: %w", priceListID, err)
	}
	return snapshot, nil
}

// SetDefaultPriceList flags a list as the branch default. Clearing the old flag
// and setting the new one happen in the same transaction.
func (r *PgxPriceListRepository) SetDefaultPriceList(ctx context.Context, branchID string, priceListID string, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	clearQuery := `UPDATE price_lists SET is_default = FALSE, last_updated_by = $2 WHERE branch_id = $1 AND is_default = TRUE;`
	if _, err := tx.Exec(ctx, clearQuery, branchID, userID); err != nil {
		return fmt.Errorf("failed to clear default price list of branch %s: %w", branchID, err)
	}

	setQuery := `UPDATE price_lists SET is_default = TRUE, last_updated_by = $3 WHERE price_list_id = $1 AND branch_id = $2;`
	cmdTag, err := tx.Exec(ctx, setQuery, priceListID, branchID, userID)
	if err != nil {
		return fmt.Errorf("failed to set default price list %s: %w", priceListID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// UpsertEntry inserts or replaces one (category, kind) cell of a list. A zero
// unit price is stored as-is; it is a configured price, not an absent cell.
func (r *PgxPriceListRepository) UpsertEntry(ctx context.Context, entry domain.PriceListEntry, userID string) error {
	query := `
		INSERT INTO price_list_entries (price_list_id, category, kind, unit_price, last_updated_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (price_list_id, category, kind)
		DO UPDATE SET unit_price = EXCLUDED.unit_price, last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		entry.PriceListID,
		entry.Category,
		entry.Kind,
		entry.UnitPrice,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert entry of price list %s: %w", entry.PriceListID, err)
	}
	return nil
}

// DeleteEntry removes one cell, turning it back into "not configured".
func (r *PgxPriceListRepository) DeleteEntry(ctx context.Context, priceListID string, category domain.VehicleCategory, kind domain.ServiceKind) error {
	query := `DELETE FROM price_list_entries WHERE price_list_id = $1 AND category = $2 AND kind = $3;`

	cmdTag, err := r.Pool.Exec(ctx, query, priceListID, category, kind)
	if err != nil {
		return fmt.Errorf("failed to delete entry of price list %s: %w", priceListID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanPriceList(row pgx.Row) (*domain.PriceList, error) {
	var list domain.PriceList
	err := row.Scan(
		&list.PriceListID,
		&list.BranchID,
		&list.Name,
		&list.IsDefault,
		&list.CreatedAt,
		&list.CreatedBy,
		&list.LastUpdatedAt,
		&list.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &list, nil
}
