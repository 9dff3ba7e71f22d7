package pricing

import (
	"github.com/shopspring/decimal"
)

// Material is a roof covering offered in the estimator.
type Material struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	PricePerSqm float64 `json:"pricePerSqm"`
}

// Catalog is the fixed list of coverings, priced in GBP per square meter.
var Catalog = []Material{
	{ID: "large-tile", Name: "Large tile", PricePerSqm: 110},
	{ID: "large-tile-reboard", Name: "Large tile + re-board", PricePerSqm: 130},
	{ID: "plain-tile", Name: "Plain tile", PricePerSqm: 205},
	{ID: "plain-tile-reboard", Name: "Plain tile + re-board", PricePerSqm: 230},
	{ID: "slating", Name: "Slating", PricePerSqm: 180},
	{ID: "slating-resarking", Name: "Slating + re-sarking", PricePerSqm: 230},
}

// LookupMaterial finds a catalog entry by id.
func LookupMaterial(id string) (Material, bool) {
	for _, m := range Catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Material{}, false
}

// Money renders an amount with two decimal places.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatGBP renders an amount as pounds, e.g. £13200.00.
func FormatGBP(v float64) string {
	if v < 0 {
		return "-£" + Money(-v)
	}
	return "£" + Money(v)
}
