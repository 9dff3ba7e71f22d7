package quote

import (
	"fmt"
	"strings"

	"github.com/Simplici0/roofquote/internal/units"
)

// Shape is the footprint of the roof seen from above.
type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeL         Shape = "l-shape"
	ShapeH         Shape = "h-shape"
	ShapeC         Shape = "c-shape"
)

// Shapes lists the supported shapes in picker order.
var Shapes = []Shape{ShapeRectangle, ShapeL, ShapeH, ShapeC}

// ParseShape returns the Shape for a shape identifier.
func ParseShape(raw string) (Shape, error) {
	for _, s := range Shapes {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown shape %q", raw)
}

// Complexity returns the complexity a shape implies.
func (s Shape) Complexity() Complexity {
	switch s {
	case ShapeL:
		return ComplexityMedium
	case ShapeH, ShapeC:
		return ComplexityComplex
	default:
		return ComplexitySimple
	}
}

// HasSectionB reports whether the shape needs a second section.
func (s Shape) HasSectionB() bool {
	return s == ShapeL || s == ShapeH || s == ShapeC
}

// HasSectionC reports whether the shape needs a third section.
func (s Shape) HasSectionC() bool {
	return s == ShapeH
}

// Label renders the shape for summaries, e.g. "l shape".
func (s Shape) Label() string {
	return strings.Replace(string(s), "-", " ", 1)
}

// Complexity scales the labour cost of a roof.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Dimension names one of the six measurement fields of a Record.
type Dimension string

const (
	Length  Dimension = "length"
	Width   Dimension = "width"
	LengthB Dimension = "lengthB"
	WidthB  Dimension = "widthB"
	LengthC Dimension = "lengthC"
	WidthC  Dimension = "widthC"
)

// Dimensions lists every measurement field.
var Dimensions = []Dimension{Length, Width, LengthB, WidthB, LengthC, WidthC}

// ParseDimension returns the Dimension for a field name.
func ParseDimension(raw string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == raw {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dimension %q", raw)
}

const DefaultMaterial = "large-tile"

// Record is the in-progress quote a visitor builds through the wizard.
// All six dimensions are expressed in Unit.
type Record struct {
	Shape      Shape      `json:"shape"`
	Length     float64    `json:"length"`
	Width      float64    `json:"width"`
	LengthB    float64    `json:"lengthB"`
	WidthB     float64    `json:"widthB"`
	LengthC    float64    `json:"lengthC"`
	WidthC     float64    `json:"widthC"`
	Complexity Complexity `json:"complexity"`
	Material   string     `json:"material"`
	Unit       units.Unit `json:"unit"`

	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	DistanceToKA56PT *float64 `json:"distanceToKA56PT,omitempty"`
}

// New returns the record a fresh session starts with.
func New() Record {
	return Record{
		Shape:      ShapeRectangle,
		Complexity: ComplexitySimple,
		Material:   DefaultMaterial,
		Unit:       units.Meter,
	}
}

// SelectShape switches the shape, derives its complexity and clears every
// measurement.
func (r *Record) SelectShape(s Shape) {
	r.Shape = s
	r.Complexity = s.Complexity()
	r.Length, r.Width = 0, 0
	r.LengthB, r.WidthB = 0, 0
	r.LengthC, r.WidthC = 0, 0
}

// ChangeUnit converts the measurements from the current unit to u.
func (r *Record) ChangeUnit(u units.Unit) {
	from := r.Unit
	for _, d := range Dimensions {
		p := r.field(d)
		*p = units.Convert(from, u, *p)
	}
	r.Unit = u
}

// SetDimension stores v in the named measurement field.
func (r *Record) SetDimension(d Dimension, v float64) {
	if p := r.field(d); p != nil {
		*p = v
	}
}

// Dimension returns the value of the named measurement field.
func (r Record) Dimension(d Dimension) float64 {
	if p := r.field(d); p != nil {
		return *p
	}
	return 0
}

func (r *Record) field(d Dimension) *float64 {
	switch d {
	case Length:
		return &r.Length
	case Width:
		return &r.Width
	case LengthB:
		return &r.LengthB
	case WidthB:
		return &r.WidthB
	case LengthC:
		return &r.LengthC
	case WidthC:
		return &r.WidthC
	}
	return nil
}

// SetAddress replaces the address and its coordinates. A changed location
// invalidates any previously resolved distance.
func (r *Record) SetAddress(address string, lat, lon *float64) {
	r.Address = address
	r.Latitude = copyFloat(lat)
	r.Longitude = copyFloat(lon)
	r.DistanceToKA56PT = nil
}

// HasCoordinates reports whether both latitude and longitude are known.
func (r Record) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// MeasurementsComplete reports whether every section the shape needs has a
// non-zero length and width.
func (r Record) MeasurementsComplete() bool {
	if r.Length == 0 || r.Width == 0 {
		return false
	}
	if r.Shape.HasSectionB() && (r.LengthB == 0 || r.WidthB == 0) {
		return false
	}
	if r.Shape.HasSectionC() && (r.LengthC == 0 || r.WidthC == 0) {
		return false
	}
	return true
}

// ContactComplete reports whether all contact fields are filled in.
func (r Record) ContactComplete() bool {
	return strings.TrimSpace(r.Name) != "" &&
		strings.TrimSpace(r.Email) != "" &&
		strings.TrimSpace(r.Phone) != "" &&
		strings.TrimSpace(r.Address) != ""
}

// Normalize repairs a decoded record: unknown enum values fall back to the
// defaults and complexity is re-derived from the shape.
func (r *Record) Normalize() {
	if _, err := ParseShape(string(r.Shape)); err != nil {
		r.Shape = ShapeRectangle
	}
	if !r.Unit.Valid() {
		r.Unit = units.Meter
	}
	if r.Material == "" {
		r.Material = DefaultMaterial
	}
	r.Complexity = r.Shape.Complexity()
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	r.Latitude = copyFloat(r.Latitude)
	r.Longitude = copyFloat(r.Longitude)
	r.DistanceToKA56PT = copyFloat(r.DistanceToKA56PT)
	return r
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
