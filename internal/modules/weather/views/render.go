package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"

	"cloudpico-weather/internal/modules/weather/types"
)

//go:embed templates
var viewsFS embed.FS

var weatherTmpl *template.Template

var funcs = template.FuncMap{
	"round":      RoundTemperature,
	"formatTime": FormatTime,
}

// loadTemplatesFromFS loads the page and partial templates from the given fs
// and dir. Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("weather").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	weatherTmpl = tmpl
	return nil
}

// LoadTemplates loads embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

var errNotLoaded = errors.New("weather templates not loaded: call views.LoadTemplates during startup")

// Component names used in data-component attributes and loading URLs.
const (
	ComponentCurrent = "current"
	ComponentHourly  = "hourly"
)

type PageData struct {
	Labels Labels
	// Current and Hourly are the initial loading states of both components.
	Current LoadingData
	Hourly  LoadingData
}

// LoadingData renders a component in PhaseLoading. Src is the fragment that
// replaces it. With Locate set the page resolves the browser position first
// and appends it to Src.
type LoadingData struct {
	Labels    Labels
	Component string
	Src       string
	Locate    bool
}

type CurrentData struct {
	Labels    Labels
	Phase     Phase
	Weather   types.CurrentWeather
	Message   string
	ReloadURL string
}

type HourlyData struct {
	Labels    Labels
	Phase     Phase
	Items     []types.WeatherData
	Message   string
	ReloadURL string
}

func RenderIndex(w io.Writer, data *PageData) error {
	if weatherTmpl == nil {
		return errNotLoaded
	}
	return weatherTmpl.ExecuteTemplate(w, "index.html", data)
}

// RenderLoadingPartial executes only the loading partial into w.
// Retry and refresh controls swap this in before the fetch runs again.
func RenderLoadingPartial(w io.Writer, data *LoadingData) error {
	if weatherTmpl == nil {
		return errNotLoaded
	}
	return weatherTmpl.ExecuteTemplate(w, "partials/loading.html", data)
}

// RenderCurrentPartial executes the current conditions card in its data or
// error phase.
func RenderCurrentPartial(w io.Writer, data *CurrentData) error {
	if weatherTmpl == nil {
		return errNotLoaded
	}
	return weatherTmpl.ExecuteTemplate(w, "partials/current.html", data)
}

// RenderHourlyPartial executes the hourly list in its data or error phase.
func RenderHourlyPartial(w io.Writer, data *HourlyData) error {
	if weatherTmpl == nil {
		return errNotLoaded
	}
	return weatherTmpl.ExecuteTemplate(w, "partials/hourly.html", data)
}
