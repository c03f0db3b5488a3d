package geo

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionPrompt  Permission = "prompt"
)

func (p Permission) Valid() bool {
	switch p {
	case PermissionGranted, PermissionDenied, PermissionPrompt:
		return true
	}
	return false
}

// PermissionStore persists the user's answer per device so the prompt is
// shown once per installation. A device with no stored answer reports
// PermissionPrompt.
type PermissionStore interface {
	Permission(ctx context.Context, deviceID string) (Permission, error)
	SavePermission(ctx context.Context, deviceID string, p Permission) error
}

// DeviceLink talks to the device that owns the GPS receiver.
type DeviceLink interface {
	RequestPermission(ctx context.Context, deviceID string) (Permission, error)
	RequestFix(ctx context.Context, deviceID string) (Position, error)
}

const (
	DefaultFixTimeout    = 10 * time.Second
	DefaultPromptTimeout = time.Minute
)

type DeviceLocator struct {
	deviceID      string
	store         PermissionStore
	link          DeviceLink
	fixTimeout    time.Duration
	promptTimeout time.Duration
	logger        *slog.Logger
}

func NewDeviceLocator(deviceID string, store PermissionStore, link DeviceLink, fixTimeout time.Duration, logger *slog.Logger) *DeviceLocator {
	if fixTimeout <= 0 {
		fixTimeout = DefaultFixTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeviceLocator{
		deviceID:      deviceID,
		store:         store,
		link:          link,
		fixTimeout:    fixTimeout,
		promptTimeout: DefaultPromptTimeout,
		logger:        logger.With("component", "geo", "runtime", RuntimeDevice, "device_id", deviceID),
	}
}

func (d *DeviceLocator) Runtime() string { return RuntimeDevice }

func (d *DeviceLocator) CurrentPosition(ctx context.Context) (Position, error) {
	if err := d.ensurePermission(ctx); err != nil {
		return Position{}, err
	}

	fixCtx, cancel := context.WithTimeout(ctx, d.fixTimeout)
	defer cancel()

	pos, err := d.link.RequestFix(fixCtx, d.deviceID)
	if err != nil {
		d.logger.Warn("location fix failed", "error", err)
		return Position{}, d.wrap(err, ErrUnknown)
	}
	if !pos.Valid() {
		d.logger.Warn("device reported invalid position", "latitude", pos.Latitude, "longitude", pos.Longitude)
		return Position{}, &Error{Kind: ErrPositionUnavailable, Runtime: RuntimeDevice}
	}
	return pos, nil
}

func (d *DeviceLocator) ensurePermission(ctx context.Context) error {
	perm, err := d.store.Permission(ctx, d.deviceID)
	if err != nil {
		d.logger.Warn("read stored permission failed", "error", err)
		perm = PermissionPrompt
	}
	if perm == PermissionGranted {
		return nil
	}

	promptCtx, cancel := context.WithTimeout(ctx, d.promptTimeout)
	defer cancel()

	perm, err = d.link.RequestPermission(promptCtx, d.deviceID)
	if err != nil {
		d.logger.Warn("permission request failed", "error", err)
		return d.wrap(err, ErrUnknown)
	}
	if perm.Valid() && perm != PermissionPrompt {
		if err := d.store.SavePermission(ctx, d.deviceID, perm); err != nil {
			d.logger.Warn("save permission failed", "error", err)
		}
	}
	if perm != PermissionGranted {
		d.logger.Info("location permission not granted", "permission", string(perm))
		return &Error{Kind: ErrPermissionDenied, Runtime: RuntimeDevice}
	}
	return nil
}

func (d *DeviceLocator) wrap(err error, fallback error) error {
	var de *DeviceError
	switch {
	case errors.As(err, &de):
		return &Error{Kind: fallback, Runtime: RuntimeDevice, Detail: de.Message}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: ErrTimeout, Runtime: RuntimeDevice}
	default:
		return &Error{Kind: fallback, Runtime: RuntimeDevice}
	}
}
