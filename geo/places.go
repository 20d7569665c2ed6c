package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Venue is one result from the external place-search provider, used for
// friendly-local-game-store lookup. This never touches the internal stores.
type Venue struct {
	Name              string  `json:"name"`
	Address           string  `json:"address"`
	Rating            float64 `json:"rating"`
	ExternalID        string  `json:"externalId"`
	OperationalStatus string  `json:"operationalStatus"`
}

type PlaceSearcher interface {
	FindVenues(ctx context.Context, query string, center Point, radiusMiles float64) ([]Venue, error)
}

// HTTPPlaceSearch calls a Places-style text-search endpoint.
type HTTPPlaceSearch struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewHTTPPlaceSearch(baseURL, apiKey string) *HTTPPlaceSearch {
	return &HTTPPlaceSearch{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPPlaceSearch) FindVenues(ctx context.Context, query string, center Point, radiusMiles float64) ([]Venue, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
	params.Set("radius", fmt.Sprintf("%d", int(radiusMiles*MetersPerMile)))
	params.Set("key", s.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, providerErr(err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, providerErr(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, providerErrf("place search status %d", resp.StatusCode)
	}

	var parsed struct {
		Results []struct {
			Name             string  `json:"name"`
			FormattedAddress string  `json:"formatted_address"`
			Rating           float64 `json:"rating"`
			PlaceID          string  `json:"place_id"`
			BusinessStatus   string  `json:"business_status"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, providerErr(err)
	}

	venues := make([]Venue, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.BusinessStatus != "OPERATIONAL" {
			continue
		}
		venues = append(venues, Venue{
			Name:              r.Name,
			Address:           r.FormattedAddress,
			Rating:            r.Rating,
			ExternalID:        r.PlaceID,
			OperationalStatus: r.BusinessStatus,
		})
	}
	return venues, nil
}
