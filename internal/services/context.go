package services

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	vehicleKey     contextKey = "vehicle"
	operationIDKey contextKey = "operation_id"
)

// NewOperationID returns a fresh correlation identifier for one user-visible
// operation (a conversion run, a deploy batch).
func NewOperationID() string {
	return uuid.NewString()
}

// WithVehicle annotates context with the vehicle being worked on.
func WithVehicle(ctx context.Context, vehicle string) context.Context {
	if vehicle == "" {
		return ctx
	}
	return context.WithValue(ctx, vehicleKey, vehicle)
}

// VehicleFromContext extracts the vehicle name if present.
func VehicleFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(vehicleKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithOperationID annotates context with a correlation identifier.
func WithOperationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, operationIDKey, id)
}

// OperationIDFromContext extracts the correlation identifier if present.
func OperationIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(operationIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
