package httpapi

import (
	"net/http"
	"time"

	"cloudpico-weather/internal/config"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewServer wraps mux with request ids, real client IPs, panic recovery,
// request logging and server spans.
func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func Handler(mux *http.ServeMux) http.Handler {
	var h http.Handler = otelhttp.NewHandler(mux, "http.server")
	h = requestLogger(h)
	h = middleware.Recoverer(h)
	h = middleware.RealIP(h)
	h = middleware.RequestID(h)
	return h
}
