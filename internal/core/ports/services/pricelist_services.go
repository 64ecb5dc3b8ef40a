package services

import (
	"context"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/lavadero/carwash_backend/internal/dto"
)

// PriceListSvcFacade defines operations for managing branch price lists.
type PriceListSvcFacade interface {
	// CreatePriceList persists a new named price list for a branch.
	CreatePriceList(ctx context.Context, branchID string, req dto.CreatePriceListRequest, userID string) (*domain.PriceList, error)

	// ListPriceLists retrieves all price lists of a branch.
	ListPriceLists(ctx context.Context, branchID string, userID string) ([]domain.PriceList, error)

	// SetDefault flags a list as the branch default, clearing any previous default.
	SetDefault(ctx context.Context, branchID string, priceListID string, userID string) error

	// UpsertEntry configures one (category, kind) cell of a list. A zero unit
	// price is a valid configuration, distinct from removing the cell.
	UpsertEntry(ctx context.Context, branchID string, priceListID string, req dto.UpsertEntryRequest, userID string) error

	// DeleteEntry removes one cell of a list.
	DeleteEntry(ctx context.Context, branchID string, priceListID string, category domain.VehicleCategory, kind domain.ServiceKind, userID string) error

	// GetEffectiveSnapshot returns the entries of the branch's default price
	// list, or an empty snapshot when the branch has no custom list. The
	// resolver falls back to the built-in matrix for absent cells either way.
	GetEffectiveSnapshot(ctx context.Context, branchID string) (domain.PriceSnapshot, error)
}
