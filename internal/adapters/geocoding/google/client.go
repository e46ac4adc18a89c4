package google

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cat-tnr-registry/internal/platform/httpclient"
	"cat-tnr-registry/internal/ports/geocoding"
)

const geocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

var ErrNotConfigured = errors.New("google geocoder not configured")

type Config struct {
	APIKey string

	// Timeout HTTP del cliente. Los callers igual ponen su propio
	// context timeout; esto es la red de seguridad de transporte.
	Timeout time.Duration
}

// Client implementa geocoding.Geocoder contra la Geocoding API de Google.
type Client struct {
	apiKey string
	http   *httpclient.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		apiKey: strings.TrimSpace(cfg.APIKey),
		http:   httpclient.New(timeout),
	}
}

// NewClientWithHTTP permite inyectar el httpclient (para tests).
func NewClientWithHTTP(apiKey string, hc *httpclient.Client) *Client {
	return &Client{
		apiKey: strings.TrimSpace(apiKey),
		http:   hc,
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

// respuesta de la Geocoding API; solo los campos que usamos
type geocodeResponse struct {
	Status  string `json:"status"` // OK | ZERO_RESULTS | ...
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// ReverseGeocode devuelve la formatted_address del primer resultado,
// o "" si no hay resultados.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	resp, err := c.query(ctx, url.Values{
		"latlng": []string{fmt.Sprintf("%f,%f", lat, lng)},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return resp.Results[0].FormattedAddress, nil
}

func (c *Client) ForwardGeocode(ctx context.Context, address string) (*geocoding.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}

	resp, err := c.query(ctx, url.Values{
		"address": []string{address},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	first := resp.Results[0]
	return &geocoding.Location{
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
		Address:   first.FormattedAddress,
	}, nil
}

func (c *Client) query(ctx context.Context, params url.Values) (*geocodeResponse, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	params.Set("key", c.apiKey)

	var resp geocodeResponse
	if err := c.http.GetJSON(ctx, geocodeURL, params, &resp); err != nil {
		return nil, fmt.Errorf("google geocode: %w", err)
	}

	switch resp.Status {
	case "OK", "ZERO_RESULTS":
		return &resp, nil
	default:
		return nil, fmt.Errorf("google geocode: status %s", resp.Status)
	}
}
