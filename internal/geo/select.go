package geo

import (
	"fmt"
	"log/slog"
	"time"
)

type Options struct {
	// Runtime is one of auto, device, browser, static.
	Runtime    string
	DeviceID   string
	Store      PermissionStore
	Link       DeviceLink
	FixTimeout time.Duration
	StaticLat  float64
	StaticLon  float64
	Logger     *slog.Logger
}

// Select picks the Locator for the whole process. "auto" uses the device
// when a link is available and falls back to the browser otherwise.
func Select(opts Options) (Locator, error) {
	switch opts.Runtime {
	case "", "auto":
		if opts.Link != nil && opts.Store != nil {
			return NewDeviceLocator(opts.DeviceID, opts.Store, opts.Link, opts.FixTimeout, opts.Logger), nil
		}
		return NewBrowserLocator(), nil
	case RuntimeDevice:
		if opts.Link == nil || opts.Store == nil {
			return nil, fmt.Errorf("device runtime needs a device link and a permission store")
		}
		return NewDeviceLocator(opts.DeviceID, opts.Store, opts.Link, opts.FixTimeout, opts.Logger), nil
	case RuntimeBrowser:
		return NewBrowserLocator(), nil
	case RuntimeStatic:
		return NewStaticLocator(opts.StaticLat, opts.StaticLon), nil
	default:
		return nil, fmt.Errorf("unknown geolocation runtime %q", opts.Runtime)
	}
}
