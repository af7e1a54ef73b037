// Package mapbox implements the directions and geocoding collaborators on
// top of the Mapbox HTTP APIs. Provider failures never carry Mapbox error
// shapes upward; they all surface as the provider-unavailable domain error.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/domain/navigation"
	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
	"github.com/Harishhackz/seeing-helper/pkg/config"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// Client talks to the Mapbox directions and geocoding APIs
type Client struct {
	httpClient    *http.Client
	accessToken   string
	directionsURL string
	geocodingURL  string
	logger        *logger.Logger
}

// NewClient creates a Mapbox client from provider configuration
func NewClient(cfg config.MapboxConfig, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		accessToken:   cfg.AccessToken,
		directionsURL: cfg.DirectionsURL,
		geocodingURL:  cfg.GeocodingURL,
		logger:        log.WithComponent("mapbox-client"),
	}
}

// directionsResponse mirrors the subset of the Mapbox directions payload we
// consume. Coordinates are [lon, lat] in Mapbox order.
type directionsResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Legs     []struct {
			Steps []struct {
				Distance float64 `json:"distance"`
				Maneuver struct {
					Location    [2]float64 `json:"location"`
					Instruction string     `json:"instruction"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// geocodingResponse mirrors the subset of the forward-geocoding payload we consume
type geocodingResponse struct {
	Features []struct {
		Center    [2]float64 `json:"center"`
		PlaceName string     `json:"place_name"`
	} `json:"features"`
}

// Route computes a walking route between two points and maps it onto the
// navigation domain shape.
func (c *Client) Route(ctx context.Context, from, to shared.GeoPoint, destination string) (*navigation.Route, error) {
	endpoint := fmt.Sprintf("%s/%f,%f;%f,%f", c.directionsURL, from.Lon, from.Lat, to.Lon, to.Lat)

	query := url.Values{}
	query.Set("access_token", c.accessToken)
	query.Set("steps", "true")
	query.Set("geometries", "geojson")

	var payload directionsResponse
	if err := c.getJSON(ctx, endpoint, query, &payload); err != nil {
		return nil, shared.ErrProviderUnavailable("directions", err)
	}

	if payload.Code != "Ok" || len(payload.Routes) == 0 || len(payload.Routes[0].Legs) == 0 {
		return nil, shared.ErrNotFound("route to " + destination)
	}

	best := payload.Routes[0]
	var steps []navigation.RouteStep
	for _, leg := range best.Legs {
		for _, step := range leg.Steps {
			steps = append(steps, navigation.RouteStep{
				Instruction:    step.Maneuver.Instruction,
				Trigger:        shared.NewGeoPoint(step.Maneuver.Location[1], step.Maneuver.Location[0]),
				DistanceMeters: step.Distance,
			})
		}
	}

	route, err := navigation.NewRoute(destination, to, best.Distance, best.Duration, steps)
	if err != nil {
		return nil, shared.ErrProviderUnavailable("directions", err)
	}

	c.logger.Debug("Route computed",
		zap.String("destination", destination),
		zap.Float64("distance_meters", best.Distance),
		zap.Int("steps", len(steps)))

	return route, nil
}

// Forward resolves a free-text destination to coordinates and a place name
func (c *Client) Forward(ctx context.Context, queryText string) (shared.GeoPoint, string, error) {
	endpoint := fmt.Sprintf("%s/%s.json", c.geocodingURL, url.PathEscape(queryText))

	query := url.Values{}
	query.Set("access_token", c.accessToken)
	query.Set("limit", "1")

	var payload geocodingResponse
	if err := c.getJSON(ctx, endpoint, query, &payload); err != nil {
		return shared.GeoPoint{}, "", shared.ErrProviderUnavailable("geocoding", err)
	}

	if len(payload.Features) == 0 {
		return shared.GeoPoint{}, "", shared.ErrNotFound(queryText)
	}

	feature := payload.Features[0]
	point := shared.NewGeoPoint(feature.Center[1], feature.Center[0])
	if !point.IsValid() {
		return shared.GeoPoint{}, "", shared.ErrProviderUnavailable("geocoding", fmt.Errorf("coordinates out of range: %v", feature.Center))
	}

	c.logger.Debug("Destination geocoded",
		zap.String("query", queryText),
		zap.String("place_name", feature.PlaceName))

	return point, feature.PlaceName, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
