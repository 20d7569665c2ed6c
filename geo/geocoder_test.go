package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"meepleserver/apperr"

	"go.uber.org/zap"
)

func testGeocoder(t *testing.T, handler http.HandlerFunc) *HTTPGeocoder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPGeocoder(server.URL, nil, zap.NewNop())
}

func TestGeocodeSuccess(t *testing.T) {
	gc := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "123 Main St, Springfield" {
			t.Errorf("query = %q", q)
		}
		w.Write([]byte(`[{"lat":"39.7817","lon":"-89.6501"}]`))
	})

	p, err := gc.Geocode(context.Background(), "123 Main St, Springfield")
	if err != nil {
		t.Fatalf("Geocode failed: %v", err)
	}
	if p.Lat != 39.7817 || p.Lng != -89.6501 {
		t.Errorf("Point = %+v", p)
	}
}

func TestGeocodeNoResults(t *testing.T) {
	gc := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := gc.Geocode(context.Background(), "nowhere at all")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGeocodeProviderError(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		gc := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := gc.Geocode(context.Background(), "123 Main St")
		if !errors.Is(err, apperr.ErrProviderFailure) {
			t.Errorf("Expected ErrProviderFailure, got %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		gc := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		})
		_, err := gc.Geocode(context.Background(), "123 Main St")
		if !errors.Is(err, apperr.ErrProviderFailure) {
			t.Errorf("Expected ErrProviderFailure, got %v", err)
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		gc := NewHTTPGeocoder("http://127.0.0.1:1", nil, zap.NewNop())
		_, err := gc.Geocode(context.Background(), "123 Main St")
		if !errors.Is(err, apperr.ErrProviderFailure) {
			t.Errorf("Expected ErrProviderFailure, got %v", err)
		}
	})
}

func TestGeocodeEmptyAddress(t *testing.T) {
	gc := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called for an empty address")
	})
	_, err := gc.Geocode(context.Background(), "   ")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
