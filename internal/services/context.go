package services

import "context"

type contextKey string

const (
	stageKey   contextKey = "stage"
	runIDKey   contextKey = "run_id"
	episodeKey contextKey = "episode_guid"
	docketKey  contextKey = "docket"
)

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the pipeline run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithEpisodeGUID annotates context with the episode being processed.
func WithEpisodeGUID(ctx context.Context, guid string) context.Context {
	if guid == "" {
		return ctx
	}
	return context.WithValue(ctx, episodeKey, guid)
}

// EpisodeGUIDFromContext returns the episode GUID if present.
func EpisodeGUIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(episodeKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDocket annotates context with the case docket number being processed.
func WithDocket(ctx context.Context, docket string) context.Context {
	if docket == "" {
		return ctx
	}
	return context.WithValue(ctx, docketKey, docket)
}

// DocketFromContext returns the docket number if present.
func DocketFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(docketKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
