package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResolve_FormattedAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("latlng"); got != "12.97,77.59" {
			t.Errorf("latlng = %q", got)
		}
		if r.URL.Query().Get("key") != "maps-key" {
			t.Error("missing key")
		}
		w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"MG Road, Bengaluru"},{"formatted_address":"Karnataka"}]}`))
	}))
	defer server.Close()

	e := NewEnricher(server.URL, "maps-key", time.Second)
	addr, ok := e.Resolve(context.Background(), &Coordinates{Latitude: 12.97, Longitude: 77.59})
	if !ok || addr != "MG Road, Bengaluru" {
		t.Errorf("Resolve() = %q, %v", addr, ok)
	}
}

func TestResolve_Unavailable(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer server.Close()

	e := NewEnricher(server.URL, "k", time.Second)

	if _, ok := e.Resolve(context.Background(), nil); ok {
		t.Error("nil coordinates should be unavailable")
	}
	if calls != 0 {
		t.Error("nil coordinates must not call the API")
	}
	if _, ok := e.Resolve(context.Background(), &Coordinates{Latitude: 1, Longitude: 2}); ok {
		t.Error("zero results should be unavailable")
	}
	if _, ok := e.Resolve(context.Background(), &Coordinates{Latitude: 100, Longitude: 2}); ok {
		t.Error("invalid coordinates should be unavailable")
	}
}

func TestResolve_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, ok := NewEnricher(server.URL, "k", time.Second).Resolve(context.Background(), &Coordinates{}); ok {
		t.Error("server error should be unavailable")
	}
}

func TestNearbyHospitals_Limit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("rankby") != "distance" || q.Get("type") != "hospital" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Write([]byte(`{"status":"OK","results":[`))
		for i := 0; i < 8; i++ {
			if i > 0 {
				w.Write([]byte(","))
			}
			fmt.Fprintf(w, `{"place_id":"p%d","name":"Hospital %d","vicinity":"Street %d"}`, i, i, i)
		}
		w.Write([]byte(`]}`))
	}))
	defer server.Close()

	hospitals, err := NewPlaces(server.URL, "k", time.Second).NearbyHospitals(context.Background(), Coordinates{Latitude: 1, Longitude: 1}, 6)
	if err != nil {
		t.Fatalf("NearbyHospitals failed: %v", err)
	}
	if len(hospitals) != 6 {
		t.Fatalf("expected 6 hospitals, got %d", len(hospitals))
	}
	if hospitals[0].MapURL != "https://www.google.com/maps/search/?api=1&query_place_id=p0" {
		t.Errorf("MapURL = %q", hospitals[0].MapURL)
	}
}

func TestNearbyHospitals_DeniedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_DENIED","results":[]}`))
	}))
	defer server.Close()

	if _, err := NewPlaces(server.URL, "k", time.Second).NearbyHospitals(context.Background(), Coordinates{}, 6); err == nil {
		t.Error("REQUEST_DENIED should be an error")
	}
}
