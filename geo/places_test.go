package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"meepleserver/apperr"
)

func TestFindVenuesFiltersNonOperational(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key")
		}
		w.Write([]byte(`{"results":[
			{"name":"Open Store","formatted_address":"1 Open St","rating":4.5,"place_id":"p1","business_status":"OPERATIONAL"},
			{"name":"Closed Store","formatted_address":"2 Closed St","rating":3.0,"place_id":"p2","business_status":"CLOSED_PERMANENTLY"},
			{"name":"Another Open","formatted_address":"3 Open Ave","rating":4.0,"place_id":"p3","business_status":"OPERATIONAL"}
		]}`))
	}))
	defer server.Close()

	ps := NewHTTPPlaceSearch(server.URL, "test-key")
	venues, err := ps.FindVenues(context.Background(), "board game store", Point{Lat: 40, Lng: -75}, 10)
	if err != nil {
		t.Fatalf("FindVenues failed: %v", err)
	}
	if len(venues) != 2 {
		t.Fatalf("Venues = %d, want 2 (non-operational filtered)", len(venues))
	}
	for _, v := range venues {
		if v.OperationalStatus != "OPERATIONAL" {
			t.Errorf("Venue %s has status %s", v.Name, v.OperationalStatus)
		}
	}
	if venues[0].ExternalID != "p1" || venues[1].ExternalID != "p3" {
		t.Errorf("Unexpected venue ids: %s, %s", venues[0].ExternalID, venues[1].ExternalID)
	}
}

func TestFindVenuesProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ps := NewHTTPPlaceSearch(server.URL, "test-key")
	_, err := ps.FindVenues(context.Background(), "board game store", Point{Lat: 40, Lng: -75}, 10)
	if !errors.Is(err, apperr.ErrProviderFailure) {
		t.Errorf("Expected ErrProviderFailure, got %v", err)
	}
}
