package views

import (
	"errors"
	"math"
	"strconv"
	"time"

	"cloudpico-weather/internal/geo"
	"cloudpico-weather/internal/i18n"
)

type Labels struct {
	Lang         string
	Title        string
	CurrentTitle string
	HourlyTitle  string
	Loading      string
	FetchFailed  string
	Retry        string
	Updated      string
	Refresh      string
	Empty        string
}

var labels = map[i18n.Lang]Labels{
	i18n.Indonesian: {
		Lang:         "id",
		Title:        "Prakiraan Cuaca Jakarta",
		CurrentTitle: "Cuaca Saat Ini",
		HourlyTitle:  "Prakiraan Per Jam",
		Loading:      "Memuat data cuaca...",
		FetchFailed:  "Gagal memuat data cuaca",
		Retry:        "Coba Lagi",
		Updated:      "Diperbarui:",
		Refresh:      "Refresh",
		Empty:        "Tidak ada data",
	},
	i18n.English: {
		Lang:         "en",
		Title:        "Jakarta Weather Forecast",
		CurrentTitle: "Current Weather",
		HourlyTitle:  "Hourly Forecast",
		Loading:      "Loading weather data...",
		FetchFailed:  "Failed to load weather data",
		Retry:        "Try Again",
		Updated:      "Updated:",
		Refresh:      "Refresh",
		Empty:        "No data",
	},
}

func LabelsFor(lang i18n.Lang) Labels {
	if l, ok := labels[lang]; ok {
		return l
	}
	return labels[i18n.Indonesian]
}

// FailureMessage tells a location failure apart from a fetch failure.
func FailureMessage(err error, lang i18n.Lang) string {
	var ge *geo.Error
	if errors.As(err, &ge) {
		return geo.Message(err, lang)
	}
	return LabelsFor(lang).FetchFailed
}

// RoundTemperature rounds half up, so 28.5 shows as 29 and -2.5 as -2.
func RoundTemperature(v float64) int {
	return int(math.Floor(v + 0.5))
}

var months = map[string][12]string{
	"id": {"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"},
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// FormatTime renders an Open-Meteo local time ("2024-01-01T12:00") as
// "1 Jan 2024 12:00". Unparseable input is returned unchanged.
func FormatTime(raw string, lang string) string {
	t, err := time.Parse("2006-01-02T15:04", raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return raw
		}
	}
	names, ok := months[lang]
	if !ok {
		names = months["id"]
	}
	return strconv.Itoa(t.Day()) + " " + names[t.Month()-1] + " " + strconv.Itoa(t.Year()) + " " + t.Format("15:04")
}
