package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string
	// UILang is the fallback locale when the request carries no usable Accept-Language.
	UILang string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
	SQLiteLogSQL          bool

	OpenMeteoURL      string
	GeocodeURL        string
	HTTPClientTimeout time.Duration

	DefaultLatitude  float64
	DefaultLongitude float64

	GeoRuntime string
	GeoTimeout time.Duration
	DeviceID   string

	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string

	ZipkinURL string
}

const (
	GeoRuntimeAuto    = "auto"
	GeoRuntimeDevice  = "device"
	GeoRuntimeBrowser = "browser"
	GeoRuntimeStatic  = "static"
)

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	uiLang := strings.ToLower(strings.TrimSpace(os.Getenv("UI_LANG")))
	if uiLang == "" {
		uiLang = "id"
	}
	switch uiLang {
	case "id", "en":
	default:
		return Config{}, fmt.Errorf("invalid UI_LANG %q (allowed: id, en)", uiLang)
	}

	sqlitePath := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if sqlitePath == "" {
		sqlitePath = "../dev/sqlite/weather.db"
	}

	maxOpenConns, err := intFromEnv("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := intFromEnv("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := durationFromEnv("DB_CONN_MAX_LIFETIME", 0)
	if err != nil {
		return Config{}, err
	}
	logSQL, err := boolFromEnv("DB_LOG_SQL", false)
	if err != nil {
		return Config{}, err
	}

	openMeteoURL := strings.TrimSpace(os.Getenv("OPEN_METEO_URL"))
	if openMeteoURL == "" {
		openMeteoURL = "https://api.open-meteo.com/v1/forecast"
	}
	geocodeURL := strings.TrimSpace(os.Getenv("GEOCODE_URL"))
	if geocodeURL == "" {
		geocodeURL = "https://api.bigdatacloud.net/data/reverse-geocode-client"
	}
	clientTimeout, err := durationFromEnv("HTTP_CLIENT_TIMEOUT", 0)
	if err != nil {
		return Config{}, err
	}

	defaultLat, err := floatFromEnv("DEFAULT_LATITUDE", -6.2)
	if err != nil {
		return Config{}, err
	}
	if defaultLat < -90 || defaultLat > 90 {
		return Config{}, fmt.Errorf("DEFAULT_LATITUDE out of range: %v (must be -90..90)", defaultLat)
	}
	defaultLon, err := floatFromEnv("DEFAULT_LONGITUDE", 106.8)
	if err != nil {
		return Config{}, err
	}
	if defaultLon < -180 || defaultLon > 180 {
		return Config{}, fmt.Errorf("DEFAULT_LONGITUDE out of range: %v (must be -180..180)", defaultLon)
	}

	geoRuntime := strings.ToLower(strings.TrimSpace(os.Getenv("GEO_RUNTIME")))
	if geoRuntime == "" {
		geoRuntime = GeoRuntimeAuto
	}
	switch geoRuntime {
	case GeoRuntimeAuto, GeoRuntimeDevice, GeoRuntimeBrowser, GeoRuntimeStatic:
	default:
		return Config{}, fmt.Errorf("invalid GEO_RUNTIME %q (allowed: auto, device, browser, static)", geoRuntime)
	}
	geoTimeout, err := durationFromEnv("GEO_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	if geoTimeout <= 0 {
		return Config{}, fmt.Errorf("GEO_TIMEOUT must be positive, got %v", geoTimeout)
	}

	deviceID := strings.TrimSpace(os.Getenv("DEVICE_ID"))
	if deviceID == "" {
		deviceID = "home"
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	mqttPort, err := intFromEnv("MQTT_PORT", 1883)
	if err != nil {
		return Config{}, err
	}
	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "cloudpico-weather"
	}
	if geoRuntime == GeoRuntimeDevice && mqttBroker == "" {
		return Config{}, fmt.Errorf("GEO_RUNTIME=device requires MQTT_BROKER")
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              httpAddr,
		UILang:                uiLang,
		SQLiteDriver:          "sqlite3",
		SQLiteDSN:             strings.TrimSpace(os.Getenv("SQLITE_DSN")),
		SQLitePath:            sqlitePath,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		SQLiteLogSQL:          logSQL,
		OpenMeteoURL:          openMeteoURL,
		GeocodeURL:            geocodeURL,
		HTTPClientTimeout:     clientTimeout,
		DefaultLatitude:       defaultLat,
		DefaultLongitude:      defaultLon,
		GeoRuntime:            geoRuntime,
		GeoTimeout:            geoTimeout,
		DeviceID:              deviceID,
		MQTTBroker:            mqttBroker,
		MQTTPort:              mqttPort,
		MQTTClientID:          mqttClientID,
		ZipkinURL:             strings.TrimSpace(os.Getenv("ZIPKIN_URL")),
	}, nil
}

func intFromEnv(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func floatFromEnv(key string, def float64) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return f, nil
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func boolFromEnv(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
