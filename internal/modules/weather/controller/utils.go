package controller

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cloudpico-weather/internal/geo"
	"cloudpico-weather/internal/i18n"
	"cloudpico-weather/internal/utils"
)

const (
	currentPartialPath = "/partials/current"
	hourlyPartialPath  = "/partials/hourly"
	loadingPartialPath = "/partials/loading"
)

// parseCoords reads optional lat/lon. Both absent yields nil; one without
// the other, or a value out of range, is an error.
func parseCoords(q url.Values) (*geo.Position, error) {
	latRaw, lonRaw := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lon"))
	if latRaw == "" && lonRaw == "" {
		return nil, nil
	}
	if latRaw == "" || lonRaw == "" {
		return nil, errors.New("'lat' and 'lon' must be given together")
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil, errors.New("invalid 'lat' (expected number)")
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return nil, errors.New("invalid 'lon' (expected number)")
	}
	pos := geo.Position{Latitude: lat, Longitude: lon}
	if !pos.Valid() {
		return nil, errors.New("'lat' must be within [-90, 90] and 'lon' within [-180, 180]")
	}
	return &pos, nil
}

func (c *weatherControllerImpl) lang(r *http.Request) i18n.Lang {
	return i18n.Match(r.Header.Get("Accept-Language"), c.fallback)
}

// withBrowserReport attaches the position or error code the page forwarded.
func withBrowserReport(r *http.Request) *http.Request {
	report, ok := geo.ParseBrowserReport(r.URL.Query())
	if !ok {
		return r
	}
	return r.WithContext(geo.WithBrowserReport(r.Context(), report))
}

// hourlySrc keeps the caller's coordinates on reload links.
func hourlySrc(pos *geo.Position) string {
	if pos == nil {
		return hourlyPartialPath
	}
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(pos.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(pos.Longitude, 'f', -1, 64))
	return hourlyPartialPath + "?" + q.Encode()
}

func loadingURL(component string, pos *geo.Position) string {
	q := url.Values{}
	q.Set("component", component)
	if pos != nil {
		q.Set("lat", strconv.FormatFloat(pos.Latitude, 'f', -1, 64))
		q.Set("lon", strconv.FormatFloat(pos.Longitude, 'f', -1, 64))
	}
	return loadingPartialPath + "?" + q.Encode()
}

// writeHTML renders into a buffer; nothing reaches w when rendering fails.
func (c *weatherControllerImpl) writeHTML(w http.ResponseWriter, name string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		c.logger.Error("template render failed", "template", name, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}
