// Package directions proxies driving-route lookups to a public OSRM router so
// the mobile client never talks to the router directly.
package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin OSRM route client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type osrmResponse struct {
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// GetRoute fetches the driving route between two "lat,lng" points and returns
// the polyline as [lat,lng] pairs, flipped from OSRM's [lng,lat] order for
// map rendering.
func (c *Client) GetRoute(ctx context.Context, origin, destination string) ([][2]float64, error) {
	oLat, oLng, err := splitLatLng(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin: %w", err)
	}
	dLat, dLng, err := splitLatLng(destination)
	if err != nil {
		return nil, fmt.Errorf("invalid destination: %w", err)
	}

	routeURL := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?%s",
		c.baseURL, oLng, oLat, dLng, dLat,
		url.Values{"overview": {"full"}, "geometries": {"geojson"}}.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", routeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch route: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("router returned status %d", resp.StatusCode)
	}

	var data osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode route response: %w", err)
	}

	if len(data.Routes) == 0 {
		return [][2]float64{}, nil
	}

	coords := data.Routes[0].Geometry.Coordinates
	points := make([][2]float64, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		points = append(points, [2]float64{c[1], c[0]})
	}
	return points, nil
}

func splitLatLng(s string) (lat, lng string, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected \"lat,lng\", got %q", s)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
