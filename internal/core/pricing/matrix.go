package pricing

import (
	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// defaultMatrix is the built-in fallback price matrix, used for any
// (category, kind) cell the branch's price list does not configure.
// Motorcycles have no WITH_WAX or CHASSIS_CLEANING price on purpose: the
// resolver skips those combinations instead of erroring.
var defaultMatrix = map[domain.PriceKey]decimal.Decimal{
	{Category: domain.CategoryCompact, Kind: domain.KindSimple}:    decimal.NewFromInt(22000),
	{Category: domain.CategoryCompact, Kind: domain.KindWithWax}:   decimal.NewFromInt(2000),
	{Category: domain.CategoryCompact, Kind: domain.KindInterior}:  decimal.NewFromInt(8000),
	{Category: domain.CategoryCompact, Kind: domain.KindChassis}:   decimal.NewFromInt(12000),
	{Category: domain.CategoryCompact, Kind: domain.KindPolishing}: decimal.NewFromInt(25000),

	{Category: domain.CategorySUV, Kind: domain.KindSimple}:    decimal.NewFromInt(26000),
	{Category: domain.CategorySUV, Kind: domain.KindWithWax}:   decimal.NewFromInt(2500),
	{Category: domain.CategorySUV, Kind: domain.KindInterior}:  decimal.NewFromInt(9000),
	{Category: domain.CategorySUV, Kind: domain.KindChassis}:   decimal.NewFromInt(14000),
	{Category: domain.CategorySUV, Kind: domain.KindPolishing}: decimal.NewFromInt(30000),

	{Category: domain.CategoryVan, Kind: domain.KindSimple}:    decimal.NewFromInt(30000),
	{Category: domain.CategoryVan, Kind: domain.KindWithWax}:   decimal.NewFromInt(3000),
	{Category: domain.CategoryVan, Kind: domain.KindInterior}:  decimal.NewFromInt(10000),
	{Category: domain.CategoryVan, Kind: domain.KindChassis}:   decimal.NewFromInt(16000),
	{Category: domain.CategoryVan, Kind: domain.KindPolishing}: decimal.NewFromInt(35000),

	{Category: domain.CategoryLargeVan, Kind: domain.KindSimple}:    decimal.NewFromInt(36000),
	{Category: domain.CategoryLargeVan, Kind: domain.KindWithWax}:   decimal.NewFromInt(3500),
	{Category: domain.CategoryLargeVan, Kind: domain.KindInterior}:  decimal.NewFromInt(12000),
	{Category: domain.CategoryLargeVan, Kind: domain.KindChassis}:   decimal.NewFromInt(18000),
	{Category: domain.CategoryLargeVan, Kind: domain.KindPolishing}: decimal.NewFromInt(40000),

	{Category: domain.CategoryMotorcycle, Kind: domain.KindSimple}:    decimal.NewFromInt(12000),
	{Category: domain.CategoryMotorcycle, Kind: domain.KindInterior}:  decimal.NewFromInt(5000),
	{Category: domain.CategoryMotorcycle, Kind: domain.KindPolishing}: decimal.NewFromInt(18000),
}

// DefaultPrice returns the built-in price for a matrix cell. The boolean
// distinguishes "configured at zero" from "not configured".
func DefaultPrice(category domain.VehicleCategory, kind domain.ServiceKind) (decimal.Decimal, bool) {
	price, ok := defaultMatrix[domain.PriceKey{Category: category, Kind: kind}]
	return price, ok
}
