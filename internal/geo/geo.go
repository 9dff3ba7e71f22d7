package geo

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// MetersPerMile converts routing distances to UK road miles.
const MetersPerMile = 1609.34

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Origin is the KA5 6PT yard every job is priced from.
var Origin = Coordinate{Latitude: 55.5141, Longitude: -4.3857}

// Suggestion is one address candidate returned by a lookup.
type Suggestion struct {
	DisplayName string  `json:"displayName"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// DistanceService returns the driving distance between two points in miles.
type DistanceService interface {
	RoadDistanceMiles(ctx context.Context, from, to Coordinate) (float64, error)
}

// AddressLookup returns ranked address candidates for free text.
type AddressLookup interface {
	Search(ctx context.Context, query string) ([]Suggestion, error)
}

var ErrNoRoute = errors.New("no route found")

const defaultHTTPTimeout = 10 * time.Second

func newHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}
