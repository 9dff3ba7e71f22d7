package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const DefaultOSRMBaseURL = "https://router.project-osrm.org"

// OSRMClient resolves driving distances with an OSRM routing server.
type OSRMClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewOSRMClient returns a client for baseURL. A nil httpClient gets a
// client with a default timeout.
func NewOSRMClient(baseURL string, httpClient *http.Client) *OSRMClient {
	if baseURL == "" {
		baseURL = DefaultOSRMBaseURL
	}
	return &OSRMClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: newHTTPClient(httpClient),
	}
}

type osrmRouteResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
	} `json:"routes"`
}

// RoadDistanceMiles implements DistanceService.
func (c *OSRMClient) RoadDistanceMiles(ctx context.Context, from, to Coordinate) (float64, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?overview=false",
		c.BaseURL,
		formatDegrees(from.Longitude), formatDegrees(from.Latitude),
		formatDegrees(to.Longitude), formatDegrees(to.Latitude),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build route request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request route: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("request route: unexpected status %d", resp.StatusCode)
	}

	var body osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode route response: %w", err)
	}
	if len(body.Routes) == 0 {
		return 0, ErrNoRoute
	}

	return body.Routes[0].Distance / MetersPerMile, nil
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
