package quote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/roofquote/internal/units"
)

func TestNew_Defaults(t *testing.T) {
	r := New()

	assert.Equal(t, ShapeRectangle, r.Shape)
	assert.Equal(t, units.Meter, r.Unit)
	assert.Equal(t, "large-tile", r.Material)
	assert.Equal(t, ComplexitySimple, r.Complexity)
	assert.False(t, r.MeasurementsComplete())
	assert.False(t, r.ContactComplete())
	assert.Nil(t, r.DistanceToKA56PT)
}

func TestSelectShape_ResetsDimensionsAndDerivesComplexity(t *testing.T) {
	tests := []struct {
		shape Shape
		want  Complexity
	}{
		{ShapeRectangle, ComplexitySimple},
		{ShapeL, ComplexityMedium},
		{ShapeH, ComplexityComplex},
		{ShapeC, ComplexityComplex},
	}

	for _, tt := range tests {
		t.Run(string(tt.shape), func(t *testing.T) {
			r := New()
			for i, d := range Dimensions {
				r.SetDimension(d, float64(i+1))
			}
			r.Complexity = ComplexitySimple

			r.SelectShape(tt.shape)

			assert.Equal(t, tt.shape, r.Shape)
			assert.Equal(t, tt.want, r.Complexity)
			for _, d := range Dimensions {
				assert.Zero(t, r.Dimension(d), "dimension %s", d)
			}
		})
	}
}

func TestChangeUnit_ConvertsAllSixFields(t *testing.T) {
	r := New()
	r.SelectShape(ShapeH)
	r.Length, r.Width = 10, 5
	r.LengthB, r.WidthB = 4, 2
	r.LengthC, r.WidthC = 3, 0

	r.ChangeUnit(units.Centimeter)

	assert.Equal(t, units.Centimeter, r.Unit)
	assert.InDelta(t, 1000, r.Length, 1e-9)
	assert.InDelta(t, 500, r.Width, 1e-9)
	assert.InDelta(t, 400, r.LengthB, 1e-9)
	assert.InDelta(t, 200, r.WidthB, 1e-9)
	assert.InDelta(t, 300, r.LengthC, 1e-9)
	assert.Zero(t, r.WidthC)

	r.ChangeUnit(units.Millimeter)
	assert.InDelta(t, 10000, r.Length, 1e-9)

	r.ChangeUnit(units.Meter)
	assert.InDelta(t, 10, r.Length, 1e-9)
	assert.InDelta(t, 2, r.WidthB, 1e-9)
}

func TestMeasurementsComplete(t *testing.T) {
	tests := []struct {
		name string
		rec  func() Record
		want bool
	}{
		{"rectangle missing width", func() Record {
			r := New()
			r.Length = 3
			return r
		}, false},
		{"rectangle complete", func() Record {
			r := New()
			r.Length, r.Width = 3, 4
			return r
		}, true},
		{"l-shape without section b", func() Record {
			r := New()
			r.SelectShape(ShapeL)
			r.Length, r.Width = 3, 4
			return r
		}, false},
		{"c-shape complete", func() Record {
			r := New()
			r.SelectShape(ShapeC)
			r.Length, r.Width, r.LengthB, r.WidthB = 3, 4, 1, 1
			return r
		}, true},
		{"h-shape without section c", func() Record {
			r := New()
			r.SelectShape(ShapeH)
			r.Length, r.Width, r.LengthB, r.WidthB = 3, 4, 1, 1
			r.LengthC = 2
			return r
		}, false},
		{"h-shape complete", func() Record {
			r := New()
			r.SelectShape(ShapeH)
			r.Length, r.Width, r.LengthB, r.WidthB, r.LengthC, r.WidthC = 3, 4, 1, 1, 2, 2
			return r
		}, true},
		{"rectangle ignores stale section b", func() Record {
			r := New()
			r.Length, r.Width = 3, 4
			return r
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec().MeasurementsComplete())
		})
	}
}

func TestContactComplete_TrimsWhitespace(t *testing.T) {
	r := New()
	r.Name, r.Email, r.Phone, r.Address = "Jock Thompson", "jock@email.scot", "07123456789", "1 High Street"
	assert.True(t, r.ContactComplete())

	r.Phone = "   "
	assert.False(t, r.ContactComplete())
}

func TestSetAddress_ClearsDistance(t *testing.T) {
	r := New()
	lat, lon, miles := 55.8, -4.2, 24.0
	r.DistanceToKA56PT = &miles

	r.SetAddress("Glasgow", &lat, &lon)

	require.True(t, r.HasCoordinates())
	assert.Nil(t, r.DistanceToKA56PT)

	lat = 0
	assert.Equal(t, 55.8, *r.Latitude, "record must not alias caller values")

	r.SetAddress("Glasg", nil, nil)
	assert.False(t, r.HasCoordinates())
}

func TestRecord_JSONFieldNames(t *testing.T) {
	r := New()
	r.LengthB = 2
	miles := 72.5
	r.DistanceToKA56PT = &miles

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"shape", "length", "width", "lengthB", "widthB", "lengthC", "widthC", "complexity", "material", "unit", "name", "email", "phone", "address", "distanceToKA56PT"} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "latitude")
}

func TestNormalize_RepairsUnknownValues(t *testing.T) {
	r := Record{Shape: "star", Unit: "ft", Complexity: ComplexityComplex}

	r.Normalize()

	assert.Equal(t, ShapeRectangle, r.Shape)
	assert.Equal(t, units.Meter, r.Unit)
	assert.Equal(t, DefaultMaterial, r.Material)
	assert.Equal(t, ComplexitySimple, r.Complexity)
}

func TestShapeLabel(t *testing.T) {
	assert.Equal(t, "l shape", ShapeL.Label())
	assert.Equal(t, "rectangle", ShapeRectangle.Label())
}
