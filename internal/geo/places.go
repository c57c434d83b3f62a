package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// hospitalKeyword narrows results to hospitals that can handle pregnancy emergencies.
const hospitalKeyword = "nearby reputed hospitals with emergency provision"

// Hospital is one nearby search result.
type Hospital struct {
	PlaceID  string  `json:"placeId"`
	Name     string  `json:"name"`
	Vicinity string  `json:"vicinity"`
	Rating   float64 `json:"rating,omitempty"`
	MapURL   string  `json:"mapUrl"`
}

// Places finds hospitals near a location.
type Places struct {
	placesURL  string
	apiKey     string
	httpClient *http.Client
}

// NewPlaces creates a Places nearby-search client.
func NewPlaces(placesURL, apiKey string, timeout time.Duration) *Places {
	if placesURL == "" {
		placesURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Places{
		placesURL:  placesURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type nearbyResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID  string  `json:"place_id"`
		Name     string  `json:"name"`
		Vicinity string  `json:"vicinity"`
		Rating   float64 `json:"rating"`
	} `json:"results"`
}

// MapLink returns the Google Maps link for a place id.
func MapLink(placeID string) string {
	return "https://www.google.com/maps/search/?api=1&query_place_id=" + url.QueryEscape(placeID)
}

// NearbyHospitals returns up to limit hospitals ranked by distance.
func (p *Places) NearbyHospitals(ctx context.Context, coords Coordinates, limit int) ([]Hospital, error) {
	if !coords.Valid() {
		return nil, fmt.Errorf("coordinates out of range: %s", coords.LatLng())
	}

	query := url.Values{}
	query.Set("location", coords.LatLng())
	query.Set("rankby", "distance")
	query.Set("type", "hospital")
	query.Set("keyword", hospitalKeyword)
	query.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.placesURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling places API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places API returned status %d", resp.StatusCode)
	}

	var data nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if data.Status != "" && data.Status != "OK" && data.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places API status %s", data.Status)
	}

	hospitals := make([]Hospital, 0, len(data.Results))
	for _, r := range data.Results {
		if limit > 0 && len(hospitals) >= limit {
			break
		}
		hospitals = append(hospitals, Hospital{
			PlaceID:  r.PlaceID,
			Name:     r.Name,
			Vicinity: r.Vicinity,
			Rating:   r.Rating,
			MapURL:   MapLink(r.PlaceID),
		})
	}
	return hospitals, nil
}
