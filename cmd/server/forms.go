package main

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/Simplici0/roofquote/internal/quote"
)

// parseDimensionForm reads the measurement fields present in form. An empty
// field clears the measurement.
func parseDimensionForm(form url.Values) (map[quote.Dimension]float64, error) {
	values := make(map[quote.Dimension]float64)
	for _, d := range quote.Dimensions {
		if _, ok := form[string(d)]; !ok {
			continue
		}
		v, err := parseNonNegativeFloat(form.Get(string(d)), string(d))
		if err != nil {
			return nil, err
		}
		values[d] = v
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no measurement given")
	}
	return values, nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}

// parseCoordinates returns nil pointers when both values are empty.
func parseCoordinates(latRaw, lonRaw string) (*float64, *float64, error) {
	latRaw, lonRaw = strings.TrimSpace(latRaw), strings.TrimSpace(lonRaw)
	if latRaw == "" && lonRaw == "" {
		return nil, nil, nil
	}
	if latRaw == "" || lonRaw == "" {
		return nil, nil, fmt.Errorf("latitude and longitude must be given together")
	}

	lat, err := parseBoundedFloat(latRaw, "latitude", 90)
	if err != nil {
		return nil, nil, err
	}
	lon, err := parseBoundedFloat(lonRaw, "longitude", 180)
	if err != nil {
		return nil, nil, err
	}
	return &lat, &lon, nil
}

func parseBoundedFloat(raw, field string, limit float64) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	if value < -limit || value > limit {
		return 0, fmt.Errorf("%s must be between -%g and %g", field, limit, limit)
	}
	return value, nil
}
