package main

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/roofquote/internal/quote"
)

func TestParseDimensionForm_Success(t *testing.T) {
	form := url.Values{}
	form.Set("length", "10")
	form.Set("width", "5.5")
	form.Set("lengthB", "")
	form.Set("ignored", "3")

	values, err := parseDimensionForm(form)
	require.NoError(t, err)
	assert.Equal(t, map[quote.Dimension]float64{
		quote.Length:  10,
		quote.Width:   5.5,
		quote.LengthB: 0,
	}, values)
}

func TestParseDimensionForm_InvalidNumbers(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"text", "abc"},
		{"negative", "-2"},
		{"nan", "NaN"},
		{"infinite", "Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDimensionForm(url.Values{"width": {tt.value}})
			assert.ErrorContains(t, err, "width")
		})
	}
}

func TestParseDimensionForm_RequiresAField(t *testing.T) {
	_, err := parseDimensionForm(url.Values{})
	assert.Error(t, err)
}

func TestParseCoordinates(t *testing.T) {
	lat, lon, err := parseCoordinates("", "")
	require.NoError(t, err)
	assert.Nil(t, lat)
	assert.Nil(t, lon)

	lat, lon, err = parseCoordinates("55.61", " -4.49 ")
	require.NoError(t, err)
	require.NotNil(t, lat)
	require.NotNil(t, lon)
	assert.Equal(t, 55.61, *lat)
	assert.Equal(t, -4.49, *lon)

	for _, pair := range [][2]string{{"55", ""}, {"x", "1"}, {"91", "0"}, {"0", "181"}} {
		_, _, err := parseCoordinates(pair[0], pair[1])
		assert.Error(t, err, "pair %v", pair)
	}
}
