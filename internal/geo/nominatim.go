package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	defaultUserAgent        = "roofquote/1.0"
	suggestionLimit         = 5
)

// NominatimClient searches UK addresses with a Nominatim server.
type NominatimClient struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewNominatimClient returns a client for baseURL.
func NewNominatimClient(baseURL, userAgent string, httpClient *http.Client) *NominatimClient {
	if baseURL == "" {
		baseURL = DefaultNominatimBaseURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &NominatimClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UserAgent:  userAgent,
		HTTPClient: newHTTPClient(httpClient),
	}
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search implements AddressLookup. Places with unparseable coordinates are
// skipped.
func (c *NominatimClient) Search(ctx context.Context, query string) ([]Suggestion, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query+",UK")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(suggestionLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search address: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search address: unexpected status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(places))
	for _, p := range places {
		lat, err := strconv.ParseFloat(p.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(p.Lon, 64)
		if err != nil {
			continue
		}
		suggestions = append(suggestions, Suggestion{DisplayName: p.DisplayName, Latitude: lat, Longitude: lon})
	}

	return suggestions, nil
}
