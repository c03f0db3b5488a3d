package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"cloudpico-weather/internal/modules/weather/types"
)

const (
	DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"
	currentFields       = "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m"
)

var (
	ErrFetchFailed       = errors.New("failed to fetch weather data")
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrFetchFailed)
)

type hourlyResponse struct {
	Hourly *struct {
		Time          []string  `json:"time"`
		Temperature2m []float64 `json:"temperature_2m"`
	} `json:"hourly"`
}

type currentResponse struct {
	Current *struct {
		Time               string   `json:"time"`
		Temperature2m      *float64 `json:"temperature_2m"`
		RelativeHumidity2m *float64 `json:"relative_humidity_2m,omitempty"`
		WeatherCode        *int     `json:"weather_code,omitempty"`
		WindSpeed10m       *float64 `json:"wind_speed_10m,omitempty"`
	} `json:"current"`
}

// Forecast reads the Open-Meteo forecast endpoint.
type Forecast struct {
	baseURL    string
	client     *http.Client
	geocoder   *Geocoder
	defaultLat float64
	defaultLon float64
	logger     *slog.Logger
}

func NewForecast(baseURL string, client *http.Client, geocoder *Geocoder, defaultLat, defaultLon float64, logger *slog.Logger) *Forecast {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Forecast{
		baseURL:    baseURL,
		client:     client,
		geocoder:   geocoder,
		defaultLat: defaultLat,
		defaultLon: defaultLon,
		logger:     logger.With("component", "forecast"),
	}
}

// FetchDefaultWeatherData fetches the hourly series for the configured
// reference point.
func (f *Forecast) FetchDefaultWeatherData(ctx context.Context) ([]types.WeatherData, error) {
	return f.FetchWeatherData(ctx, f.defaultLat, f.defaultLon)
}

// FetchWeatherData fetches the hourly temperature series and pairs the
// time and temperature arrays by index.
func (f *Forecast) FetchWeatherData(ctx context.Context, lat, lon float64) ([]types.WeatherData, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(lat))
	q.Set("longitude", formatCoord(lon))
	q.Set("hourly", "temperature_2m")

	var body hourlyResponse
	if err := f.get(ctx, q, &body); err != nil {
		return nil, err
	}
	if body.Hourly == nil {
		return nil, fmt.Errorf("%w: missing hourly block", ErrMalformedResponse)
	}
	if len(body.Hourly.Time) != len(body.Hourly.Temperature2m) {
		return nil, fmt.Errorf("%w: %d times but %d temperatures",
			ErrMalformedResponse, len(body.Hourly.Time), len(body.Hourly.Temperature2m))
	}

	out := make([]types.WeatherData, len(body.Hourly.Time))
	for i, t := range body.Hourly.Time {
		out[i] = types.WeatherData{Time: t, Temperature: body.Hourly.Temperature2m[i]}
	}
	return out, nil
}

// FetchCurrentWeather fetches current conditions, keeps time and
// temperature, and resolves a place name for the coordinates.
func (f *Forecast) FetchCurrentWeather(ctx context.Context, lat, lon float64) (types.CurrentWeather, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(lat))
	q.Set("longitude", formatCoord(lon))
	q.Set("current", currentFields)
	q.Set("timezone", "auto")

	var body currentResponse
	if err := f.get(ctx, q, &body); err != nil {
		return types.CurrentWeather{}, err
	}
	if body.Current == nil || body.Current.Temperature2m == nil {
		return types.CurrentWeather{}, fmt.Errorf("%w: missing current block", ErrMalformedResponse)
	}

	out := types.CurrentWeather{
		Current: types.WeatherData{Time: body.Current.Time, Temperature: *body.Current.Temperature2m},
	}
	if f.geocoder != nil {
		out.Location = f.geocoder.LocationName(ctx, lat, lon)
	} else {
		out.Location = fallbackName(lat, lon)
	}
	return out, nil
}

func (f *Forecast) get(ctx context.Context, q url.Values, dst any) error {
	endpoint := f.baseURL + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("forecast request failed", "error", err)
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Debug("close forecast body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		f.logger.Warn("forecast returned non-success status", "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}
	return nil
}
