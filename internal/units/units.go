package units

import "fmt"

// Unit is a length unit accepted for roof measurements.
type Unit string

const (
	Millimeter Unit = "mm"
	Centimeter Unit = "cm"
	Meter      Unit = "m"
)

// Parse returns the Unit for a unit identifier.
func Parse(raw string) (Unit, error) {
	switch u := Unit(raw); u {
	case Millimeter, Centimeter, Meter:
		return u, nil
	}
	return "", fmt.Errorf("unknown unit %q", raw)
}

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	_, err := Parse(string(u))
	return err == nil
}

// ScaleFactor returns how many of u make up one meter.
func ScaleFactor(u Unit) float64 {
	switch u {
	case Millimeter:
		return 1000
	case Centimeter:
		return 100
	default:
		return 1
	}
}

// Convert converts v from one unit to another without rounding.
func Convert(from, to Unit, v float64) float64 {
	if from == to || v == 0 {
		return v
	}

	switch {
	case from == Meter && to == Centimeter:
		return v * 100
	case from == Meter && to == Millimeter:
		return v * 1000
	case from == Centimeter && to == Meter:
		return v / 100
	case from == Centimeter && to == Millimeter:
		return v * 10
	case from == Millimeter && to == Meter:
		return v / 1000
	case from == Millimeter && to == Centimeter:
		return v / 10
	}
	return v
}

// ToMeters converts v expressed in u to meters.
func ToMeters(u Unit, v float64) float64 {
	return v / ScaleFactor(u)
}
