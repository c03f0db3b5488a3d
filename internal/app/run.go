package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cloudpico-weather/internal/config"
	db "cloudpico-weather/internal/db"
	"cloudpico-weather/internal/db/migrate"
	"cloudpico-weather/internal/geo"
	httpapi "cloudpico-weather/internal/httpapi"
	weather "cloudpico-weather/internal/modules/weather"
	weatherviews "cloudpico-weather/internal/modules/weather/views"
	"cloudpico-weather/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"uiLang", cfg.UILang,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"openMeteoURL", cfg.OpenMeteoURL,
		"geocodeURL", cfg.GeocodeURL,
		"geoRuntime", cfg.GeoRuntime,
		"geoTimeout", cfg.GeoTimeout,
		"deviceID", cfg.DeviceID,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"zipkinURL", cfg.ZipkinURL,
	)
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(ctx, dbConn); err != nil {
		return err
	}
	slog.Info("database ready")

	if err := weatherviews.LoadTemplates(); err != nil {
		return err
	}

	mqttClient, link := connectDevice(ctx, cfg)
	if mqttClient != nil {
		defer func() {
			slog.Info("mqtt disconnecting")
			mqttClient.Disconnect()
		}()
	}

	mux := httpapi.NewMux(dbConn)
	if err := weather.RegisterFeature(mux, dbConn, cfg, link, slog.Default()); err != nil {
		return err
	}

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// connectDevice returns a device link when the runtime may use one and the
// broker answers. A failed connect in auto mode falls back to the browser.
func connectDevice(ctx context.Context, cfg config.Config) (*mqtt.Client, geo.DeviceLink) {
	switch cfg.GeoRuntime {
	case config.GeoRuntimeBrowser, config.GeoRuntimeStatic:
		return nil, nil
	}
	if cfg.MQTTBroker == "" {
		return nil, nil
	}

	client := mqtt.NewClient(cfg, slog.Default())

	// Short timeout so startup does not block when the broker is down.
	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	err := client.Connect(connectCtx)
	connectCancel()
	if err != nil {
		slog.Warn("mqtt connection failed (continuing without device)", "error", err)
		client.Disconnect()
		return nil, nil
	}
	return client, client
}
