package types

// WeatherData is one hourly sample. Time is the local ISO-8601 string
// Open-Meteo returns, e.g. "2024-01-01T00:00".
type WeatherData struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature_2m"`
}

type CurrentWeather struct {
	Current  WeatherData `json:"current"`
	Location string      `json:"location"`
}

type LocationName struct {
	Name string `json:"name"`
}
