package pricing

import (
	"math"

	"github.com/Simplici0/roofquote/internal/quote"
	"github.com/Simplici0/roofquote/internal/units"
)

const (
	VATRate = 0.2

	// SqmPerDay is how much roof a crew re-covers in a working day.
	SqmPerDay = 15.0

	TravelThresholdMiles = 60.0
	MileageRate          = 0.45
	MinimumTravelCost    = 90.0
	AccommodationPerDay  = 200.0
)

var complexityMultiplier = map[quote.Complexity]float64{
	quote.ComplexitySimple:  1,
	quote.ComplexityMedium:  1.3,
	quote.ComplexityComplex: 1.6,
}

// Multiplier returns the labour multiplier for a complexity level.
func Multiplier(c quote.Complexity) float64 {
	return complexityMultiplier[c]
}

// Breakdown contains the intermediate values of a quote calculation.
type Breakdown struct {
	Area                  float64 `json:"area"`
	PricePerSqm           float64 `json:"price_per_sqm"`
	Multiplier            float64 `json:"multiplier"`
	WorkCost              float64 `json:"work_cost"`
	TravelExpenses        float64 `json:"travel_expenses"`
	AccommodationExpenses float64 `json:"accommodation_expenses"`
}

// Totals contains roll-up values of a quote calculation.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	VAT      float64 `json:"vat"`
	Total    float64 `json:"total"`
}

// Result groups the full quote output.
type Result struct {
	Breakdown  Breakdown `json:"breakdown"`
	Totals     Totals    `json:"totals"`
	DaysNeeded int       `json:"days_needed"`
}

// Area returns the roof area in square meters. Each footprint is doubled
// for the two pitches. A c-shape whose cut-out exceeds the main section
// yields a negative area; the value is returned as computed.
func Area(r quote.Record) float64 {
	m := func(v float64) float64 { return units.ToMeters(r.Unit, v) }

	a := m(r.Length) * m(r.Width)
	b := m(r.LengthB) * m(r.WidthB)
	c := m(r.LengthC) * m(r.WidthC)

	switch r.Shape {
	case quote.ShapeRectangle:
		return a * 2
	case quote.ShapeL:
		return (a + b) * 2
	case quote.ShapeC:
		return (a - b) * 2
	case quote.ShapeH:
		return (a + b + c) * 2
	}
	return 0
}

// TravelExpenses returns the round-trip mileage cost, never less than the
// minimum call-out charge.
func TravelExpenses(miles float64) float64 {
	return math.Max(MinimumTravelCost, miles*2*MileageRate)
}

// Calculate computes the estimate for a quote record.
func Calculate(r quote.Record) Result {
	area := Area(r)

	pricePerSqm := 0.0
	if m, ok := LookupMaterial(r.Material); ok {
		pricePerSqm = m.PricePerSqm
	}
	multiplier := Multiplier(r.Complexity)

	work := area * pricePerSqm * multiplier
	days := int(math.Ceil(area / SqmPerDay))

	travel, accommodation := 0.0, 0.0
	if r.DistanceToKA56PT != nil && *r.DistanceToKA56PT > TravelThresholdMiles {
		travel = TravelExpenses(*r.DistanceToKA56PT)
		accommodation = AccommodationPerDay * float64(days)
	}

	subtotal := work + travel + accommodation
	vat := subtotal * VATRate

	return Result{
		Breakdown: Breakdown{
			Area:                  area,
			PricePerSqm:           pricePerSqm,
			Multiplier:            multiplier,
			WorkCost:              work,
			TravelExpenses:        travel,
			AccommodationExpenses: accommodation,
		},
		Totals: Totals{
			Subtotal: subtotal,
			VAT:      vat,
			Total:    subtotal + vat,
		},
		DaysNeeded: days,
	}
}
