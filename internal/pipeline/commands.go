package pipeline

import (
	"context"

	"github.com/google/uuid"

	"gavel/internal/corpus"
	"gavel/internal/export"
	"gavel/internal/ingest"
	"gavel/internal/logging"
	"gavel/internal/services"
)

// The methods below run one stage in isolation for the per-stage CLI
// commands. They share the helpers the full run uses, so a stage behaves
// identically whether invoked alone or as part of `gavel run`.

func (p *Pipeline) stageContext(ctx context.Context) context.Context {
	if _, ok := services.RunIDFromContext(ctx); !ok {
		ctx = services.WithRunID(ctx, uuid.NewString())
	}
	return ctx
}

// IngestFeed refreshes the episode catalog from the feed.
func (p *Pipeline) IngestFeed(ctx context.Context) (*ingest.FeedResult, error) {
	return p.deps.Ingest.IngestFeed(p.stageContext(ctx))
}

// FetchAudio downloads audio for every episode missing it. Returns the
// number of files fetched.
func (p *Pipeline) FetchAudio(ctx context.Context) (int, error) {
	ctx = p.stageContext(ctx)
	episodes, err := p.store.ListEpisodes(ctx)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "fetch-audio", "lookup", "list episodes", err)
	}
	fetched := 0
	for _, episode := range episodes {
		if err := ctx.Err(); err != nil {
			return fetched, err
		}
		_, didFetch, err := p.deps.Ingest.FetchAudio(ctx, episode)
		if err != nil {
			p.logger.Error("audio fetch failed",
				logging.String(logging.FieldEpisodeGUID, episode.GUID),
				logging.Error(err))
			continue
		}
		if didFetch {
			fetched++
		}
	}
	return fetched, nil
}

// LocateSegments detects the court segment for episodes that have none.
// Returns the number of segments located.
func (p *Pipeline) LocateSegments(ctx context.Context) (int, error) {
	ctx = p.stageContext(ctx)
	episodes, err := p.store.ListEpisodes(ctx)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "locate-segment", "lookup", "list episodes", err)
	}
	located := 0
	for _, episode := range episodes {
		if err := ctx.Err(); err != nil {
			return located, err
		}
		existing, err := p.store.SegmentForEpisode(ctx, episode.ID)
		if err != nil {
			return located, services.Wrap(services.ErrTransient, "locate-segment", "lookup", "segment query", err)
		}
		if existing != nil {
			continue
		}
		segment, err := p.locateSegment(ctx, episode)
		if err != nil {
			p.logger.Error("segment detection failed",
				logging.String(logging.FieldEpisodeGUID, episode.GUID),
				logging.Error(err))
			continue
		}
		if segment != nil {
			located++
		}
	}
	return located, nil
}

// Transcribe produces transcripts for located segments that lack one.
// Returns the number of transcripts created.
func (p *Pipeline) Transcribe(ctx context.Context) (int, error) {
	ctx = p.stageContext(ctx)
	episodes, err := p.store.ListEpisodes(ctx)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "transcribe", "lookup", "list episodes", err)
	}
	created := 0
	for _, episode := range episodes {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		segment, err := p.store.SegmentForEpisode(ctx, episode.ID)
		if err != nil {
			return created, services.Wrap(services.ErrTransient, "transcribe", "lookup", "segment query", err)
		}
		if segment == nil {
			continue
		}
		record, err := p.store.TranscriptForSegment(ctx, segment.ID)
		if err != nil {
			return created, services.Wrap(services.ErrTransient, "transcribe", "lookup", "transcript query", err)
		}
		if record != nil {
			continue
		}
		if _, err := p.transcribeSegment(ctx, episode, segment); err != nil {
			p.logger.Error("transcription failed",
				logging.String(logging.FieldEpisodeGUID, episode.GUID),
				logging.Error(err))
			continue
		}
		created++
	}
	return created, nil
}

// ExtractCases extracts cases for transcribed episodes that have none.
// Returns the number of cases created.
func (p *Pipeline) ExtractCases(ctx context.Context) (int, error) {
	ctx = p.stageContext(ctx)
	episodes, err := p.store.ListEpisodes(ctx)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "extract-cases", "lookup", "list episodes", err)
	}
	created := 0
	for _, episode := range episodes {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		segment, err := p.store.SegmentForEpisode(ctx, episode.ID)
		if err != nil {
			return created, services.Wrap(services.ErrTransient, "extract-cases", "lookup", "segment query", err)
		}
		if segment == nil {
			continue
		}
		record, err := p.store.TranscriptForSegment(ctx, segment.ID)
		if err != nil {
			return created, services.Wrap(services.ErrTransient, "extract-cases", "lookup", "transcript query", err)
		}
		if record == nil {
			continue
		}
		existing, err := p.store.CasesForEpisode(ctx, episode.ID)
		if err != nil {
			return created, services.Wrap(services.ErrTransient, "extract-cases", "lookup", "case query", err)
		}
		if len(existing) > 0 {
			continue
		}
		count, err := p.extractCases(ctx, episode, segment, record)
		if err != nil {
			p.logger.Error("case extraction failed",
				logging.String(logging.FieldEpisodeGUID, episode.GUID),
				logging.Error(err))
			continue
		}
		created += count
	}
	return created, nil
}

// DraftOpinions runs the agent over every pending case in chronological
// order.
func (p *Pipeline) DraftOpinions(ctx context.Context) (*RunSummary, error) {
	ctx = p.stageContext(ctx)
	summary := &RunSummary{RunID: runID(ctx)}
	if err := p.draftPending(ctx, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// ExtractCitations recomputes citation edges for every decided case.
// Returns total edges created.
func (p *Pipeline) ExtractCitations(ctx context.Context) (int, error) {
	ctx = p.stageContext(ctx)
	decided, err := p.store.CasesWithStatus(ctx, corpus.StatusDecided)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "extract-citations", "lookup", "list decided cases", err)
	}
	total := 0
	for _, kase := range decided {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		result, err := p.deps.Citations.ExtractForCase(ctx, kase)
		if err != nil {
			return total, err
		}
		total += result.Created
	}
	return total, nil
}

// Export projects the decided corpus to static JSON.
func (p *Pipeline) Export(ctx context.Context) (export.Summary, error) {
	return p.deps.Projector.Export(p.stageContext(ctx))
}
