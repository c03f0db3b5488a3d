package controller

import (
	"context"
	"log/slog"
	"net/http"

	"cloudpico-weather/internal/geo"
	"cloudpico-weather/internal/i18n"
	"cloudpico-weather/internal/modules/weather/types"
)

// WeatherService is the part of service.Service the handlers use.
type WeatherService interface {
	Current(ctx context.Context) (types.CurrentWeather, error)
	CurrentAt(ctx context.Context, pos geo.Position) (types.CurrentWeather, error)
	Hourly(ctx context.Context, pos *geo.Position) ([]types.WeatherData, error)
	LocationName(ctx context.Context, lat, lon float64) string
	Runtime() string
}

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type weatherControllerImpl struct {
	service  WeatherService
	fallback i18n.Lang
	logger   *slog.Logger
}

func NewWeatherController(service WeatherService, fallback i18n.Lang, logger *slog.Logger) WeatherController {
	if logger == nil {
		logger = slog.Default()
	}
	return &weatherControllerImpl{service: service, fallback: fallback, logger: logger.With("component", "weather-controller")}
}

func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /partials/loading", c.handleLoadingPartial)
	mux.HandleFunc("GET /partials/current", c.handleCurrentPartial)
	mux.HandleFunc("GET /partials/hourly", c.handleHourlyPartial)

	mux.HandleFunc("GET /api/v1/weather/current", c.handleCurrent)
	mux.HandleFunc("GET /api/v1/weather/hourly", c.handleHourly)
	mux.HandleFunc("GET /api/v1/location/name", c.handleLocationName)
}
