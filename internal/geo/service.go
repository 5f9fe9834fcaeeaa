// Package geo resolves zip codes to coordinates via the public
// Nominatim API. Callers treat failures as soft; a dealer without
// coordinates is still usable.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"carforsales_backend/platform/config"
	"carforsales_backend/platform/logger"
)

const nominatimURL = "https://nominatim.openstreetmap.org/search"

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type Service struct {
	client      *http.Client
	userAgent   string
	countryCode string
	log         *logger.Logger
}

func NewService(cfg config.GeoConfig, log *logger.Logger) *Service {
	return &Service{
		client:      &http.Client{Timeout: 5 * time.Second},
		userAgent:   cfg.GetGeoUserAgent(),
		countryCode: cfg.GetGeoCountryCode(),
		log:         log,
	}
}

// GeocodeZip resolves a postal code to a lat/lon pair.
func (s *Service) GeocodeZip(ctx context.Context, zip string) (float64, float64, error) {
	params := url.Values{}
	params.Add("postalcode", zip)
	params.Add("format", "json")
	params.Add("limit", "1")
	if s.countryCode != "" {
		params.Add("countrycodes", s.countryCode)
	}

	reqURL := fmt.Sprintf("%s?%s", nominatimURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("nominatim request failed", "error", err)
		return 0, 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		s.log.Error("nominatim upstream error", "status", resp.StatusCode)
		return 0, 0, fmt.Errorf("upstream api error: %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		s.log.Error("failed to decode nominatim payload", "error", err)
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no match for zip %q", zip)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad latitude in response: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad longitude in response: %w", err)
	}
	return lat, lon, nil
}
