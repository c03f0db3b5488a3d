package controller

import (
	"bytes"
	"errors"
	"net/http"

	"cloudpico-weather/internal/geo"
	"cloudpico-weather/internal/modules/weather/service"
	"cloudpico-weather/internal/modules/weather/types"
	"cloudpico-weather/internal/modules/weather/views"
	"cloudpico-weather/internal/utils"
)

func (c *weatherControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	labels := views.LabelsFor(c.lang(r))
	data := &views.PageData{
		Labels:  labels,
		Current: c.currentLoading(labels),
		Hourly:  views.LoadingData{Labels: labels, Component: views.ComponentHourly, Src: hourlyPartialPath},
	}
	c.writeHTML(w, "index", func(buf *bytes.Buffer) error { return views.RenderIndex(buf, data) })
}

func (c *weatherControllerImpl) currentLoading(labels views.Labels) views.LoadingData {
	return views.LoadingData{
		Labels:    labels,
		Component: views.ComponentCurrent,
		Src:       currentPartialPath,
		Locate:    c.service.Runtime() == geo.RuntimeBrowser,
	}
}

// handleLoadingPartial puts a component back into its loading phase. Retry
// and refresh controls target this; the returned markup starts the fetch.
func (c *weatherControllerImpl) handleLoadingPartial(w http.ResponseWriter, r *http.Request) {
	labels := views.LabelsFor(c.lang(r))

	var data views.LoadingData
	switch r.URL.Query().Get("component") {
	case views.ComponentCurrent:
		data = c.currentLoading(labels)
	case views.ComponentHourly:
		pos, err := parseCoords(r.URL.Query())
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		data = views.LoadingData{Labels: labels, Component: views.ComponentHourly, Src: hourlySrc(pos)}
	default:
		utils.WriteError(w, http.StatusBadRequest, "invalid 'component' (allowed: current, hourly)")
		return
	}
	c.writeHTML(w, "loading", func(buf *bytes.Buffer) error { return views.RenderLoadingPartial(buf, &data) })
}

func (c *weatherControllerImpl) handleCurrentPartial(w http.ResponseWriter, r *http.Request) {
	lang := c.lang(r)
	r = withBrowserReport(r)

	cw, err := c.service.Current(r.Context())
	data := &views.CurrentData{
		Labels:    views.LabelsFor(lang),
		Phase:     views.Settle(err),
		Weather:   cw,
		ReloadURL: loadingURL(views.ComponentCurrent, nil),
	}
	if err != nil {
		data.Message = views.FailureMessage(err, lang)
	}
	c.writeHTML(w, "current", func(buf *bytes.Buffer) error { return views.RenderCurrentPartial(buf, data) })
}

func (c *weatherControllerImpl) handleHourlyPartial(w http.ResponseWriter, r *http.Request) {
	lang := c.lang(r)
	pos, err := parseCoords(r.URL.Query())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := c.service.Hourly(r.Context(), pos)
	data := &views.HourlyData{
		Labels:    views.LabelsFor(lang),
		Phase:     views.Settle(err),
		Items:     items,
		ReloadURL: loadingURL(views.ComponentHourly, pos),
	}
	if err != nil {
		data.Message = views.FailureMessage(err, lang)
	}
	c.writeHTML(w, "hourly", func(buf *bytes.Buffer) error { return views.RenderHourlyPartial(buf, data) })
}

func (c *weatherControllerImpl) handleCurrent(w http.ResponseWriter, r *http.Request) {
	pos, err := parseCoords(r.URL.Query())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	lang := c.lang(r)

	var cw types.CurrentWeather
	if pos != nil {
		cw, err = c.service.CurrentAt(r.Context(), *pos)
	} else {
		cw, err = c.service.Current(withBrowserReport(r).Context())
	}
	if err != nil {
		utils.WriteError(w, statusFor(err), views.FailureMessage(err, lang))
		return
	}
	utils.WriteJSON(w, http.StatusOK, cw)
}

func (c *weatherControllerImpl) handleHourly(w http.ResponseWriter, r *http.Request) {
	pos, err := parseCoords(r.URL.Query())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := c.service.Hourly(r.Context(), pos)
	if err != nil {
		utils.WriteError(w, statusFor(err), views.FailureMessage(err, c.lang(r)))
		return
	}
	if items == nil {
		items = []types.WeatherData{}
	}
	utils.WriteJSON(w, http.StatusOK, items)
}

func (c *weatherControllerImpl) handleLocationName(w http.ResponseWriter, r *http.Request) {
	pos, err := parseCoords(r.URL.Query())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if pos == nil {
		utils.WriteError(w, http.StatusBadRequest, "missing 'lat' and 'lon'")
		return
	}
	name := c.service.LocationName(r.Context(), pos.Latitude, pos.Longitude)
	utils.WriteJSON(w, http.StatusOK, types.LocationName{Name: name})
}

func statusFor(err error) int {
	var ge *geo.Error
	switch {
	case errors.As(err, &ge):
		if errors.Is(err, geo.ErrTimeout) {
			return http.StatusGatewayTimeout
		}
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
