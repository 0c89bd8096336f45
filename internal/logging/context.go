package logging

import (
	"context"
	"log/slog"

	"gearbox/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldVehicle is the standardized structured logging key for vehicle names.
	FieldVehicle = "vehicle"
	// FieldOperationID is the standardized structured logging key for correlation identifiers.
	FieldOperationID = "operation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if vehicle, ok := services.VehicleFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldVehicle, vehicle))
	}
	if id, ok := services.OperationIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperationID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
