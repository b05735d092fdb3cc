package claims

import (
	"github.com/shopspring/decimal"

	route "uppf-claims/internal/route/domain"
)

// ProductType is a petroleum product grade.
type ProductType string

const (
	ProductPMS      ProductType = "PMS"
	ProductAGO      ProductType = "AGO"
	ProductKerosene ProductType = "KEROSENE"
	ProductLPG      ProductType = "LPG"
)

// Tariffs are the per-product base rates (per litre per km) and the
// road-category multipliers.
type Tariffs struct {
	BaseRates       map[ProductType]decimal.Decimal        `json:"base_rates" yaml:"base_rates"`
	RoadMultipliers map[route.RoadCategory]decimal.Decimal `json:"road_multipliers" yaml:"road_multipliers"`
}

// DefaultTariffs returns the published rate card.
func DefaultTariffs() Tariffs {
	return Tariffs{
		BaseRates: map[ProductType]decimal.Decimal{
			ProductPMS:      decimal.RequireFromString("0.0012"),
			ProductAGO:      decimal.RequireFromString("0.0012"),
			ProductKerosene: decimal.RequireFromString("0.0008"),
			ProductLPG:      decimal.RequireFromString("0.0010"),
		},
		RoadMultipliers: map[route.RoadCategory]decimal.Decimal{
			route.RoadHighway:     decimal.RequireFromString("1.0"),
			route.RoadUrban:       decimal.RequireFromString("1.2"),
			route.RoadRural:       decimal.RequireFromString("1.5"),
			route.RoadMountainous: decimal.RequireFromString("2.0"),
			route.RoadCoastal:     decimal.RequireFromString("1.3"),
		},
	}
}

// Rate returns base rate x road multiplier. An unknown road category
// uses a multiplier of 1.
func (t Tariffs) Rate(product ProductType, category route.RoadCategory) (decimal.Decimal, error) {
	base, ok := t.BaseRates[product]
	if !ok {
		return decimal.Zero, ErrTariffNotFound
	}
	mult, ok := t.RoadMultipliers[category]
	if !ok {
		mult = decimal.NewFromInt(1)
	}
	return base.Mul(mult), nil
}
