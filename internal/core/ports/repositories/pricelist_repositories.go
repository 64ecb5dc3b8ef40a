package repositories

import (
	"context"

	"github.com/lavadero/carwash_backend/internal/core/domain"
)

// PriceListReader defines read operations for price list data
type PriceListReader interface {
	// FindPriceListByID retrieves a price list by its unique identifier.
	FindPriceListByID(ctx context.Context, priceListID string) (*domain.PriceList, error)

	// FindDefaultPriceList retrieves the branch's default price list, or
	// ErrNotFound when the branch has no custom list (callers then resolve
	// entirely from the built-in matrix).
	FindDefaultPriceList(ctx context.Context, branchID string) (*domain.PriceList, error)

	// ListPriceLists retrieves all price lists of a branch.
	ListPriceLists(ctx context.Context, branchID string) ([]domain.PriceList, error)

	// FindEntriesByListID retrieves the entries of a price list as a snapshot.
	FindEntriesByListID(ctx context.Context, priceListID string) (domain.PriceSnapshot, error)
}

// PriceListWriter defines write operations for price list data
type PriceListWriter interface {
	// SavePriceList persists a new price list.
	SavePriceList(ctx context.Context, list domain.PriceList) error

	// SetDefaultPriceList flags a list as the branch default and clears the flag
	// from every other list of the branch in the same transaction.
	SetDefaultPriceList(ctx context.Context, branchID string, priceListID string, userID string) error

	// UpsertEntry inserts or replaces one (category, kind) cell of a list.
	UpsertEntry(ctx context.Context, entry domain.PriceListEntry, userID string) error

	// DeleteEntry removes one cell, turning it back into "not configured".
	DeleteEntry(ctx context.Context, priceListID string, category domain.VehicleCategory, kind domain.ServiceKind) error
}

// PriceListRepositoryFacade combines all price-list repository interfaces
type PriceListRepositoryFacade interface {
	PriceListReader
	PriceListWriter
}
