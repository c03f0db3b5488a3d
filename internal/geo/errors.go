package geo

import (
	"errors"

	"cloudpico-weather/internal/i18n"
)

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTimeout             = errors.New("location request timed out")
	ErrNotSupported        = errors.New("geolocation not supported")
	ErrUnknown             = errors.New("location lookup failed")
)

// Error is returned by every Locator. Kind is one of the sentinels above, so
// callers can use errors.Is. Detail carries a message reported by the device
// itself and is shown verbatim when present.
type Error struct {
	Kind    error
	Runtime string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Kind.Error() + ": " + e.Detail
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

// DeviceError is a failure reported by the device in its answer.
type DeviceError struct {
	Message string
}

func (e *DeviceError) Error() string { return "device: " + e.Message }

type messageKey struct {
	kind    error
	runtime string
}

var messages = map[i18n.Lang]map[messageKey]string{
	i18n.Indonesian: {
		{ErrPermissionDenied, RuntimeDevice}:     "Akses lokasi ditolak. Silakan izinkan akses lokasi di pengaturan aplikasi.",
		{ErrUnknown, RuntimeDevice}:              "Gagal mendapatkan lokasi. Pastikan GPS aktif dan akses lokasi diizinkan.",
		{ErrTimeout, RuntimeDevice}:              "Waktu permintaan lokasi habis.",
		{ErrPositionUnavailable, RuntimeDevice}:  "Informasi lokasi tidak tersedia.",
		{ErrNotSupported, RuntimeBrowser}:        "Geolocation tidak didukung oleh browser Anda",
		{ErrPermissionDenied, RuntimeBrowser}:    "Akses lokasi ditolak. Silakan izinkan akses lokasi di pengaturan browser.",
		{ErrPositionUnavailable, RuntimeBrowser}: "Informasi lokasi tidak tersedia.",
		{ErrTimeout, RuntimeBrowser}:             "Waktu permintaan lokasi habis.",
		{ErrUnknown, RuntimeBrowser}:             "Gagal mendapatkan lokasi.",
	},
	i18n.English: {
		{ErrPermissionDenied, RuntimeDevice}:     "Location access denied. Please allow location access in the app settings.",
		{ErrUnknown, RuntimeDevice}:              "Could not get your location. Make sure GPS is on and location access is allowed.",
		{ErrTimeout, RuntimeDevice}:              "The location request timed out.",
		{ErrPositionUnavailable, RuntimeDevice}:  "Location information is unavailable.",
		{ErrNotSupported, RuntimeBrowser}:        "Geolocation is not supported by your browser",
		{ErrPermissionDenied, RuntimeBrowser}:    "Location access denied. Please allow location access in the browser settings.",
		{ErrPositionUnavailable, RuntimeBrowser}: "Location information is unavailable.",
		{ErrTimeout, RuntimeBrowser}:             "The location request timed out.",
		{ErrUnknown, RuntimeBrowser}:             "Could not get your location.",
	},
}

// Message returns the text to show the user for err. Errors that did not
// come from a Locator get the generic message of the browser runtime.
func Message(err error, lang i18n.Lang) string {
	catalog, ok := messages[lang]
	if !ok {
		catalog = messages[i18n.Indonesian]
	}
	var ge *Error
	if !errors.As(err, &ge) {
		return catalog[messageKey{ErrUnknown, RuntimeBrowser}]
	}
	if ge.Detail != "" {
		return ge.Detail
	}
	if msg, ok := catalog[messageKey{ge.Kind, ge.Runtime}]; ok {
		return msg
	}
	if msg, ok := catalog[messageKey{ErrUnknown, ge.Runtime}]; ok {
		return msg
	}
	return catalog[messageKey{ErrUnknown, RuntimeBrowser}]
}
