// Package geo resolves device coordinates into addresses and nearby hospitals
// using the Google Maps web services.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Coordinates are device-reported latitude/longitude.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LatLng formats the coordinates as "lat,lng".
func (c Coordinates) LatLng() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// Valid reports whether the coordinates are within range.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Enricher turns coordinates into a human-readable address.
type Enricher struct {
	geocodeURL string
	apiKey     string
	httpClient *http.Client
}

// NewEnricher creates a reverse geocoder.
func NewEnricher(geocodeURL, apiKey string, timeout time.Duration) *Enricher {
	if geocodeURL == "" {
		geocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Enricher{
		geocodeURL: geocodeURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// Resolve returns the address for coords. Missing coordinates, lookup errors
// and empty results all report ok=false; errors are only logged.
func (e *Enricher) Resolve(ctx context.Context, coords *Coordinates) (address string, ok bool) {
	if coords == nil {
		return "", false
	}
	address, err := e.reverseGeocode(ctx, *coords)
	if err != nil {
		log.Printf("⚠️  Location lookup failed: %v", err)
		return "", false
	}
	return address, true
}

func (e *Enricher) reverseGeocode(ctx context.Context, coords Coordinates) (string, error) {
	if !coords.Valid() {
		return "", fmt.Errorf("coordinates out of range: %s", coords.LatLng())
	}

	query := url.Values{}
	query.Set("latlng", coords.LatLng())
	query.Set("key", e.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.geocodeURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling geocoding API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoding API returned status %d", resp.StatusCode)
	}

	var data geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(data.Results) == 0 || data.Results[0].FormattedAddress == "" {
		return "", fmt.Errorf("no results found from geocoding (status %q)", data.Status)
	}
	return data.Results[0].FormattedAddress, nil
}
