package logging

import (
	"context"
	"log/slog"

	"gavel/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldRunID is the standardized structured logging key for pipeline run identifiers.
	FieldRunID = "run_id"
	// FieldEpisodeGUID is the standardized structured logging key for episode identifiers.
	FieldEpisodeGUID = "episode_guid"
	// FieldDocket is the standardized structured logging key for case docket numbers.
	FieldDocket = "docket"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if guid, ok := services.EpisodeGUIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldEpisodeGUID, guid))
	}
	if docket, ok := services.DocketFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldDocket, docket))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
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
