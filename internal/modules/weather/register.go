package weather

import (
	"database/sql"
	"log/slog"
	"net/http"

	"cloudpico-weather/internal/config"
	"cloudpico-weather/internal/geo"
	"cloudpico-weather/internal/i18n"
	"cloudpico-weather/internal/modules/weather/controller"
	"cloudpico-weather/internal/modules/weather/repository"
	"cloudpico-weather/internal/modules/weather/service"
)

// RegisterFeature wires the weather module onto mux. link is nil when no
// device is reachable; with GEO_RUNTIME=auto that selects the browser runtime.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, cfg config.Config, link geo.DeviceLink, logger *slog.Logger) error {
	permissionRepository := repository.NewRepository(db)

	locator, err := geo.Select(geo.Options{
		Runtime:    cfg.GeoRuntime,
		DeviceID:   cfg.DeviceID,
		Store:      permissionRepository,
		Link:       link,
		FixTimeout: cfg.GeoTimeout,
		StaticLat:  cfg.DefaultLatitude,
		StaticLon:  cfg.DefaultLongitude,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	logger.Info("geolocation runtime selected", "runtime", locator.Runtime(), "device_id", cfg.DeviceID)

	client := service.NewHTTPClient(cfg.HTTPClientTimeout)
	geocoder := service.NewGeocoder(cfg.GeocodeURL, client, logger)
	forecast := service.NewForecast(cfg.OpenMeteoURL, client, geocoder, cfg.DefaultLatitude, cfg.DefaultLongitude, logger)
	weatherService := service.NewService(locator, forecast, geocoder, logger)

	weatherController := controller.NewWeatherController(weatherService, i18n.Parse(cfg.UILang), logger)
	weatherController.RegisterRoutes(mux)
	return nil
}
