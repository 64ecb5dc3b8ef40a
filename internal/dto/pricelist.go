package dto

import (
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePriceListRequest defines the data needed to create a price list.
type CreatePriceListRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpsertEntryRequest configures one (category, kind) cell of a price list.
// A zero unit price is a valid, chargeable configuration.
type UpsertEntryRequest struct {
	Category  domain.VehicleCategory `json:"category" binding:"required,oneof=COMPACT SUV VAN LARGE_VAN MOTORCYCLE"`
	Kind      domain.ServiceKind     `json:"kind" binding:"required,oneof=SIMPLE WITH_WAX INTERIOR CHASSIS_CLEANING POLISHING"`
	UnitPrice decimal.Decimal        `json:"unitPrice"`
}

// PriceListEntryResponse defines one configured cell of a price list.
type PriceListEntryResponse struct {
	Category  domain.VehicleCategory `json:"category"`
	Kind      domain.ServiceKind     `json:"kind"`
	UnitPrice decimal.Decimal        `json:"unitPrice"`
}

// PriceListResponse defines the data returned for a price list.
type PriceListResponse struct {
	PriceListID   string    `json:"priceListID"`
	BranchID      string    `json:"branchID"`
	Name          string    `json:"name"`
	IsDefault     bool      `json:"isDefault"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToPriceListResponse converts a domain.PriceList to PriceListResponse DTO
func ToPriceListResponse(pl *domain.PriceList) PriceListResponse {
	return PriceListResponse{
		PriceListID:   pl.PriceListID,
		BranchID:      pl.BranchID,
		Name:          pl.Name,
		IsDefault:     pl.IsDefault,
		CreatedAt:     pl.CreatedAt,
		CreatedBy:     pl.CreatedBy,
		LastUpdatedAt: pl.LastUpdatedAt,
		LastUpdatedBy: pl.LastUpdatedBy,
	}
}

// ToListPriceListResponse converts a slice of domain.PriceList to response DTOs.
func ToListPriceListResponse(lists []domain.PriceList) []PriceListResponse {
	res := make([]PriceListResponse, len(lists))
	for i, pl := range lists {
		res[i] = ToPriceListResponse(&pl)
	}
	return res
}
