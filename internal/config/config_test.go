package config

import (
	"log/slog"
	"testing"
	"time"
)

var envKeys = []string{
	"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "UI_LANG",
	"SQLITE_PATH", "SQLITE_DSN", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_LOG_SQL",
	"OPEN_METEO_URL", "GEOCODE_URL", "HTTP_CLIENT_TIMEOUT",
	"DEFAULT_LATITUDE", "DEFAULT_LONGITUDE",
	"GEO_RUNTIME", "GEO_TIMEOUT", "DEVICE_ID",
	"MQTT_BROKER", "MQTT_PORT", "MQTT_CLIENT_ID",
	"ZIPKIN_URL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8080")
	}
	if got.UILang != "id" {
		t.Errorf("UILang = %q, want %q", got.UILang, "id")
	}
	if got.OpenMeteoURL != "https://api.open-meteo.com/v1/forecast" {
		t.Errorf("OpenMeteoURL = %q", got.OpenMeteoURL)
	}
	if got.GeocodeURL != "https://api.bigdatacloud.net/data/reverse-geocode-client" {
		t.Errorf("GeocodeURL = %q", got.GeocodeURL)
	}
	if got.DefaultLatitude != -6.2 || got.DefaultLongitude != 106.8 {
		t.Errorf("default coords = (%v, %v), want (-6.2, 106.8)", got.DefaultLatitude, got.DefaultLongitude)
	}
	if got.GeoRuntime != GeoRuntimeAuto {
		t.Errorf("GeoRuntime = %q, want %q", got.GeoRuntime, GeoRuntimeAuto)
	}
	if got.GeoTimeout != 10*time.Second {
		t.Errorf("GeoTimeout = %v, want 10s", got.GeoTimeout)
	}
	if got.HTTPClientTimeout != 0 {
		t.Errorf("HTTPClientTimeout = %v, want 0", got.HTTPClientTimeout)
	}
	if got.MQTTPort != 1883 {
		t.Errorf("MQTTPort = %d, want 1883", got.MQTTPort)
	}
	if got.SQLiteDriver != "sqlite3" {
		t.Errorf("SQLiteDriver = %q, want sqlite3", got.SQLiteDriver)
	}
	if got.ZipkinURL != "" {
		t.Errorf("ZipkinURL = %q, want empty", got.ZipkinURL)
	}
}

func TestLoadFromEnv_AppEnv_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		appEnv string
	}{
		{name: "staging", appEnv: "staging"},
		{name: "uppercase", appEnv: "DEV"},
		{name: "random", appEnv: "whatever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", tt.appEnv)

			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() error = nil, want non-nil")
			}
		})
	}
}

func TestLoadFromEnv_Coordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     string
		lon     string
		wantErr bool
	}{
		{name: "valid", lat: "52.52", lon: "13.41"},
		{name: "trims whitespace", lat: " 1.5 ", lon: "\t2.5\n"},
		{name: "latitude too large", lat: "91", lon: "0", wantErr: true},
		{name: "longitude too small", lat: "0", lon: "-181", wantErr: true},
		{name: "not a number", lat: "north", lon: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DEFAULT_LATITUDE", tt.lat)
			t.Setenv("DEFAULT_LONGITUDE", tt.lon)

			_, err := LoadFromEnv()
			if tt.wantErr && err == nil {
				t.Fatalf("LoadFromEnv() error = nil, want non-nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
		})
	}
}

func TestLoadFromEnv_GeoRuntime(t *testing.T) {
	tests := []struct {
		name    string
		runtime string
		broker  string
		want    string
		wantErr bool
	}{
		{name: "browser", runtime: "browser", want: GeoRuntimeBrowser},
		{name: "static", runtime: "static", want: GeoRuntimeStatic},
		{name: "case insensitive", runtime: "Browser", want: GeoRuntimeBrowser},
		{name: "device with broker", runtime: "device", broker: "localhost", want: GeoRuntimeDevice},
		{name: "device without broker", runtime: "device", wantErr: true},
		{name: "unknown", runtime: "satellite", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GEO_RUNTIME", tt.runtime)
			t.Setenv("MQTT_BROKER", tt.broker)

			got, err := LoadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadFromEnv() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.GeoRuntime != tt.want {
				t.Errorf("GeoRuntime = %q, want %q", got.GeoRuntime, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_Durations(t *testing.T) {
	t.Run("geo timeout must be positive", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEO_TIMEOUT", "0s")
		if _, err := LoadFromEnv(); err == nil {
			t.Fatal("LoadFromEnv() error = nil, want non-nil")
		}
	})

	t.Run("invalid client timeout", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HTTP_CLIENT_TIMEOUT", "soon")
		if _, err := LoadFromEnv(); err == nil {
			t.Fatal("LoadFromEnv() error = nil, want non-nil")
		}
	})

	t.Run("client timeout propagates", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HTTP_CLIENT_TIMEOUT", "3s")
		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
		if got.HTTPClientTimeout != 3*time.Second {
			t.Errorf("HTTPClientTimeout = %v, want 3s", got.HTTPClientTimeout)
		}
	})
}

func TestLoadFromEnv_UILang(t *testing.T) {
	clearEnv(t)
	t.Setenv("UI_LANG", "EN")
	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.UILang != "en" {
		t.Errorf("UILang = %q, want en", got.UILang)
	}

	t.Setenv("UI_LANG", "fr")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() error = nil, want non-nil for fr")
	}
}

func TestParseLogLevel_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want slog.Level
	}{
		{name: "debug", in: "debug", want: slog.LevelDebug},
		{name: "info", in: "info", want: slog.LevelInfo},
		{name: "warn", in: "warn", want: slog.LevelWarn},
		{name: "warning", in: "warning", want: slog.LevelWarn},
		{name: "error", in: "error", want: slog.LevelError},
		{name: "case insensitive", in: "DeBuG", want: slog.LevelDebug},
		{name: "trims whitespace", in: "  warn \n", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if err != nil {
				t.Fatalf("parseLogLevel(%q) error = %v, want nil", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel_Invalid(t *testing.T) {
	for _, in := range []string{"", "nope", "warns", "1"} {
		got, err := parseLogLevel(in)
		if err == nil {
			t.Fatalf("parseLogLevel(%q) error = nil, want non-nil", in)
		}
		if got != slog.LevelInfo {
			t.Errorf("parseLogLevel(%q) = %v, want %v on error", in, got, slog.LevelInfo)
		}
	}
}
