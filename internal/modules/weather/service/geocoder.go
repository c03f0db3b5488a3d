package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"cloudpico-weather/internal/geo"
)

const DefaultGeocodeURL = "https://api.bigdatacloud.net/data/reverse-geocode-client"

type geocodeResponse struct {
	City     string `json:"city"`
	Locality string `json:"locality"`
}

// Geocoder resolves coordinates to a place name. It never fails: any
// problem yields the coordinates formatted to two decimals.
type Geocoder struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewGeocoder(baseURL string, client *http.Client, logger *slog.Logger) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodeURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Geocoder{baseURL: baseURL, client: client, logger: logger.With("component", "geocoder")}
}

func (g *Geocoder) LocationName(ctx context.Context, lat, lon float64) string {
	q := url.Values{}
	q.Set("latitude", formatCoord(lat))
	q.Set("longitude", formatCoord(lon))
	q.Set("localityLanguage", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fallbackName(lat, lon)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("reverse geocode failed", "error", err)
		return fallbackName(lat, lon)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Debug("reverse geocode non-success status", "status", resp.StatusCode)
		return fallbackName(lat, lon)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		g.logger.Debug("reverse geocode decode failed", "error", err)
		return fallbackName(lat, lon)
	}
	if body.City != "" {
		return body.City
	}
	if body.Locality != "" {
		return body.Locality
	}
	return fallbackName(lat, lon)
}

func fallbackName(lat, lon float64) string {
	return geo.Position{Latitude: lat, Longitude: lon}.String()
}
