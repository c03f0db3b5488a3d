package geo

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// BrowserReport is what the page's navigator.geolocation call produced,
// forwarded with the fragment request.
type BrowserReport struct {
	Position Position
	// Code is empty on success, otherwise "1", "2", "3" or "unsupported".
	Code string
}

type browserReportKey struct{}

func WithBrowserReport(ctx context.Context, r BrowserReport) context.Context {
	return context.WithValue(ctx, browserReportKey{}, r)
}

func browserReportFrom(ctx context.Context) (BrowserReport, bool) {
	r, ok := ctx.Value(browserReportKey{}).(BrowserReport)
	return r, ok
}

// ParseBrowserReport reads lat/lon or geo_error from query values. ok is
// false when the request carries neither.
func ParseBrowserReport(q url.Values) (BrowserReport, bool) {
	if code := strings.TrimSpace(q.Get("geo_error")); code != "" {
		return BrowserReport{Code: code}, true
	}
	latRaw, lonRaw := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lon"))
	if latRaw == "" || lonRaw == "" {
		return BrowserReport{}, false
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return BrowserReport{Code: "2"}, true
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return BrowserReport{Code: "2"}, true
	}
	pos := Position{Latitude: lat, Longitude: lon}
	if !pos.Valid() {
		return BrowserReport{Code: "2"}, true
	}
	return BrowserReport{Position: pos}, true
}

// BrowserLocator answers with the report attached to the request context.
type BrowserLocator struct{}

func NewBrowserLocator() *BrowserLocator { return &BrowserLocator{} }

func (b *BrowserLocator) Runtime() string { return RuntimeBrowser }

func (b *BrowserLocator) CurrentPosition(ctx context.Context) (Position, error) {
	r, ok := browserReportFrom(ctx)
	if !ok {
		return Position{}, &Error{Kind: ErrNotSupported, Runtime: RuntimeBrowser}
	}
	switch r.Code {
	case "":
		return r.Position, nil
	case "1":
		return Position{}, &Error{Kind: ErrPermissionDenied, Runtime: RuntimeBrowser}
	case "2":
		return Position{}, &Error{Kind: ErrPositionUnavailable, Runtime: RuntimeBrowser}
	case "3":
		return Position{}, &Error{Kind: ErrTimeout, Runtime: RuntimeBrowser}
	case "unsupported":
		return Position{}, &Error{Kind: ErrNotSupported, Runtime: RuntimeBrowser}
	default:
		return Position{}, &Error{Kind: ErrUnknown, Runtime: RuntimeBrowser}
	}
}
