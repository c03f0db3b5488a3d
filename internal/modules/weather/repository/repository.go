package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"cloudpico-weather/internal/geo"
)

//go:embed sql/get-permission.sql
var getPermissionSQL string

//go:embed sql/upsert-permission.sql
var upsertPermissionSQL string

// PermissionRepository stores the location permission answer per device.
type PermissionRepository interface {
	Permission(ctx context.Context, deviceID string) (geo.Permission, error)
	SavePermission(ctx context.Context, deviceID string, p geo.Permission) error
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) PermissionRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Permission(ctx context.Context, deviceID string) (geo.Permission, error) {
	var state string
	err := r.db.QueryRowContext(ctx, getPermissionSQL, deviceID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return geo.PermissionPrompt, nil
	}
	if err != nil {
		return "", fmt.Errorf("get permission %q: %w", deviceID, err)
	}
	p := geo.Permission(state)
	if !p.Valid() {
		return "", fmt.Errorf("stored permission for %q is invalid: %q", deviceID, state)
	}
	return p, nil
}

func (r *repositoryImpl) SavePermission(ctx context.Context, deviceID string, p geo.Permission) error {
	if deviceID == "" {
		return fmt.Errorf("device id is required")
	}
	if !p.Valid() {
		return fmt.Errorf("invalid permission state %q", p)
	}
	if _, err := r.db.ExecContext(ctx, upsertPermissionSQL, deviceID, string(p)); err != nil {
		return fmt.Errorf("save permission %q: %w", deviceID, err)
	}
	return nil
}
