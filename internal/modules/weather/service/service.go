package service

import (
	"context"
	"log/slog"
	"time"

	"cloudpico-weather/internal/geo"
	"cloudpico-weather/internal/modules/weather/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "cloudpico-weather/weather"

// Service runs one fetch cycle per call: locate, then fetch. Nothing is
// cached between cycles.
type Service struct {
	locator  geo.Locator
	forecast *Forecast
	geocoder *Geocoder
	tracer   trace.Tracer
	logger   *slog.Logger
}

func NewService(locator geo.Locator, forecast *Forecast, geocoder *Geocoder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		locator:  locator,
		forecast: forecast,
		geocoder: geocoder,
		tracer:   otel.Tracer(tracerName),
		logger:   logger.With("component", "weather"),
	}
}

func (s *Service) Runtime() string { return s.locator.Runtime() }

// Current resolves the position and returns the current conditions there.
// Locator failures come back as *geo.Error, fetch failures wrap
// ErrFetchFailed.
func (s *Service) Current(ctx context.Context) (types.CurrentWeather, error) {
	ctx, span, logger, done := s.startCycle(ctx, "weather.current")
	defer span.End()

	pos, err := s.locate(ctx)
	if err != nil {
		done(err)
		return types.CurrentWeather{}, err
	}
	return s.fetchCurrent(ctx, span, logger, done, pos)
}

// CurrentAt skips the locator and returns the current conditions at pos.
func (s *Service) CurrentAt(ctx context.Context, pos geo.Position) (types.CurrentWeather, error) {
	ctx, span, logger, done := s.startCycle(ctx, "weather.current_at")
	defer span.End()
	return s.fetchCurrent(ctx, span, logger, done, pos)
}

func (s *Service) fetchCurrent(ctx context.Context, span trace.Span, logger *slog.Logger, done func(error), pos geo.Position) (types.CurrentWeather, error) {
	span.SetAttributes(attribute.Float64("geo.latitude", pos.Latitude), attribute.Float64("geo.longitude", pos.Longitude))

	cw, err := s.forecast.FetchCurrentWeather(ctx, pos.Latitude, pos.Longitude)
	if err != nil {
		done(err)
		return types.CurrentWeather{}, err
	}
	logger.Debug("current weather fetched", "location", cw.Location, "temperature", cw.Current.Temperature)
	done(nil)
	return cw, nil
}

// Hourly returns the hourly series for pos, or for the reference point when
// pos is nil.
func (s *Service) Hourly(ctx context.Context, pos *geo.Position) ([]types.WeatherData, error) {
	ctx, span, logger, done := s.startCycle(ctx, "weather.hourly")
	defer span.End()

	var (
		data []types.WeatherData
		err  error
	)
	if pos == nil {
		data, err = s.forecast.FetchDefaultWeatherData(ctx)
	} else {
		span.SetAttributes(attribute.Float64("geo.latitude", pos.Latitude), attribute.Float64("geo.longitude", pos.Longitude))
		data, err = s.forecast.FetchWeatherData(ctx, pos.Latitude, pos.Longitude)
	}
	if err != nil {
		done(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("weather.samples", len(data)))
	logger.Debug("hourly weather fetched", "samples", len(data))
	done(nil)
	return data, nil
}

func (s *Service) LocationName(ctx context.Context, lat, lon float64) string {
	ctx, span := s.tracer.Start(ctx, "weather.location_name")
	defer span.End()
	return s.geocoder.LocationName(ctx, lat, lon)
}

func (s *Service) locate(ctx context.Context) (geo.Position, error) {
	ctx, span := s.tracer.Start(ctx, "geo.current_position",
		trace.WithAttributes(attribute.String("geo.runtime", s.locator.Runtime())))
	defer span.End()

	pos, err := s.locator.CurrentPosition(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "locate failed")
	}
	return pos, err
}

// startCycle opens the span and logger for one fetch cycle. done logs the
// outcome and marks the span.
func (s *Service) startCycle(ctx context.Context, name string) (context.Context, trace.Span, *slog.Logger, func(error)) {
	cycleID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("cycle_id", cycleID)))
	logger := s.logger.With("cycle_id", cycleID, "op", name)
	start := time.Now()

	done := func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Warn("fetch cycle failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
			return
		}
		logger.Info("fetch cycle done", "duration_ms", time.Since(start).Milliseconds())
	}
	return ctx, span, logger, done
}
