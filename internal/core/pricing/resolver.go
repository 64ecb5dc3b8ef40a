// Package pricing holds the pure price-resolution and discount-stacking logic.
// Both entry points are deterministic functions of their inputs plus the
// price-list snapshot handed in; nothing here touches storage.
package pricing

import (
	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Breakdown is the result of resolving a set of service kinds for a vehicle.
type Breakdown struct {
	LineItems []domain.LineItem
	Subtotal  decimal.Decimal
}

// Resolve looks up each requested service kind for the vehicle category, first
// in the branch snapshot and then in the built-in default matrix.
//
// A price configured at exactly zero is a real line item; a (category, kind)
// cell absent from both sources is skipped entirely, contributing nothing and
// producing no line item. Kinds are de-duplicated, first occurrence wins the
// position in the breakdown.
func Resolve(category domain.VehicleCategory, kinds []domain.ServiceKind, snapshot domain.PriceSnapshot) Breakdown {
	breakdown := Breakdown{
		LineItems: make([]domain.LineItem, 0, len(kinds)),
		Subtotal:  decimal.Zero,
	}

	seen := make(map[domain.ServiceKind]struct{}, len(kinds))
	for _, kind := range kinds {
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}

		price, ok := snapshot[domain.PriceKey{Category: category, Kind: kind}]
		if !ok {
			price, ok = DefaultPrice(category, kind)
		}
		if !ok {
			// No price configured anywhere for this combination (e.g. motorcycle
			// with wax): skip, do not error.
			continue
		}

		breakdown.LineItems = append(breakdown.LineItems, domain.LineItem{Kind: kind, UnitPrice: price})
		breakdown.Subtotal = breakdown.Subtotal.Add(price)
	}

	return breakdown
}
