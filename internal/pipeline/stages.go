package pipeline

import (
	"context"
	"fmt"

	"gavel/internal/caseextract"
	"gavel/internal/citations"
	"gavel/internal/corpus"
	"gavel/internal/logging"
	"gavel/internal/opinions"
	"gavel/internal/services"
	"gavel/internal/transcript"
)

func runID(ctx context.Context) string {
	id, _ := services.RunIDFromContext(ctx)
	return id
}

// processEpisode runs the episode-scoped stages for one episode, skipping
// every stage whose output already exists.
func (p *Pipeline) processEpisode(ctx context.Context, episode *corpus.Episode, summary *RunSummary) error {
	path, fetched, err := p.deps.Ingest.FetchAudio(ctx, episode)
	if err != nil {
		return err
	}
	episode.AudioPath = path
	if fetched {
		summary.AudioFetched++
	}

	segment, err := p.store.SegmentForEpisode(ctx, episode.ID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "locate-segment", "lookup", "segment query", err)
	}
	if segment == nil {
		segment, err = p.locateSegment(ctx, episode)
		if err != nil {
			return err
		}
		if segment == nil {
			// No court segment in this episode; nothing further to do.
			return nil
		}
		summary.SegmentsLocated++
	}

	record, err := p.store.TranscriptForSegment(ctx, segment.ID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "transcribe", "lookup", "transcript query", err)
	}
	if record == nil {
		record, err = p.transcribeSegment(ctx, episode, segment)
		if err != nil {
			return err
		}
		summary.Transcripts++
	}

	existing, err := p.store.CasesForEpisode(ctx, episode.ID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "extract-cases", "lookup", "case query", err)
	}
	if len(existing) == 0 {
		created, err := p.extractCases(ctx, episode, segment, record)
		if err != nil {
			return err
		}
		summary.CasesExtracted += created
	}
	return nil
}

func (p *Pipeline) locateSegment(ctx context.Context, episode *corpus.Episode) (*corpus.Segment, error) {
	ctx = services.WithStage(ctx, "locate-segment")
	segment, err := p.deps.Locator.Locate(ctx, episode)
	if err != nil {
		return nil, err
	}
	if segment == nil {
		return nil, nil
	}
	prov, err := p.store.EnsureProvenance(ctx, runID(ctx), "locate-segment", p.cfg.Segments.Model, "segments")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "locate-segment", "provenance", "ensure provenance", err)
	}
	segment.ProvenanceID = prov.ID
	stored, err := p.store.InsertSegment(ctx, segment)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "locate-segment", "persist", "insert segment", err)
	}
	return stored, nil
}

func (p *Pipeline) transcribeSegment(ctx context.Context, episode *corpus.Episode, segment *corpus.Segment) (*corpus.TranscriptRecord, error) {
	ctx = services.WithStage(ctx, "transcribe")
	result, err := p.deps.Transcriber.TranscribeSegment(ctx, episode, segment)
	if err != nil {
		return nil, err
	}
	payload, err := transcript.Marshal(*result)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "transcribe", "persist", "marshal transcript", err)
	}
	prov, err := p.store.EnsureProvenance(ctx, runID(ctx), "transcribe", p.cfg.Transcriber.SpeechModel, "transcripts")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "transcribe", "provenance", "ensure provenance", err)
	}
	record := &corpus.TranscriptRecord{
		EpisodeID:      episode.ID,
		SegmentID:      segment.ID,
		TranscriptJSON: payload,
		StartTimeS:     result.ActualStart,
		EndTimeS:       result.ActualEnd,
		ProvenanceID:   prov.ID,
	}
	stored, err := p.store.ReplaceTranscript(ctx, record)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "transcribe", "persist", "replace transcript", err)
	}
	return stored, nil
}

func (p *Pipeline) extractCases(ctx context.Context, episode *corpus.Episode, segment *corpus.Segment, record *corpus.TranscriptRecord) (int, error) {
	ctx = services.WithStage(ctx, "extract-cases")
	parsed, err := transcript.Unmarshal(record.TranscriptJSON)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "extract-cases", "load", "unmarshal transcript", err)
	}
	ordinal, err := p.store.EpisodeOrdinalInYear(ctx, episode.ID)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "extract-cases", "load", "episode ordinal", err)
	}

	drafts, err := p.deps.Extractor.Extract(ctx, caseextract.Input{
		Episode:    episode,
		Segment:    segment,
		Transcript: &parsed,
		EpisodeSeq: ordinal,
	})
	if err != nil {
		return 0, err
	}
	if len(drafts) == 0 {
		return 0, nil
	}

	prov, err := p.store.EnsureProvenance(ctx, runID(ctx), "extract-cases", p.cfg.Extraction.Model, "cases")
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "extract-cases", "provenance", "ensure provenance", err)
	}
	for _, draft := range drafts {
		draft.ProvenanceID = prov.ID
		if _, err := p.store.InsertCase(ctx, draft); err != nil {
			return 0, services.Wrap(services.ErrTransient, "extract-cases", "persist",
				fmt.Sprintf("insert case %s", draft.DocketNumber), err)
		}
	}
	return len(drafts), nil
}

// draftPending runs the case-scoped stages over every undecided case in
// strict chronological order. Each case is fully committed, citations
// included, before the next case is briefed; a failed case is marked and
// skipped so later cases simply do not see it as precedent.
func (p *Pipeline) draftPending(ctx context.Context, summary *RunSummary) error {
	pending, err := p.pendingCases(ctx)
	if err != nil {
		return err
	}
	for _, kase := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		created, err := p.draftCase(ctx, kase)
		if err != nil {
			summary.CasesFailed++
			status := corpus.StatusFailed
			if !services.Retryable(err) {
				status = corpus.StatusReview
			}
			p.logger.Error("case drafting failed",
				logging.String(logging.FieldDocket, kase.DocketNumber),
				logging.String("status", string(status)),
				logging.Error(err))
			if statusErr := p.store.UpdateCaseStatus(ctx, kase.ID, status, err.Error()); statusErr != nil {
				return services.Wrap(services.ErrTransient, "draft-opinion", "persist", "record failure status", statusErr)
			}
			continue
		}
		summary.OpinionsDrafted++
		summary.CitationsCreated += created
	}
	return nil
}

// pendingCases lists undecided cases in chronological order. Previously
// failed cases are re-eligible; cases flagged for review are not.
func (p *Pipeline) pendingCases(ctx context.Context) ([]*corpus.Case, error) {
	all, err := p.store.ListCasesChrono(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "draft-opinion", "lookup", "list cases", err)
	}
	var pending []*corpus.Case
	for _, kase := range all {
		if kase.Status == corpus.StatusExtracted || kase.Status == corpus.StatusFailed {
			pending = append(pending, kase)
		}
	}
	return pending, nil
}

// draftCase runs the agent for one case and commits the opinion and its
// citation edges. Returns the number of citation edges created.
func (p *Pipeline) draftCase(ctx context.Context, kase *corpus.Case) (int, error) {
	ctx = services.WithDocket(services.WithStage(ctx, "draft-opinion"), kase.DocketNumber)
	episode, err := p.store.EpisodeByID(ctx, kase.EpisodeID)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "draft-opinion", "load", "episode lookup", err)
	}
	if episode == nil {
		return 0, services.Wrap(services.ErrNotFound, "draft-opinion", "load",
			fmt.Sprintf("case references missing episode %d", kase.EpisodeID), nil)
	}
	record, err := p.store.TranscriptForSegment(ctx, kase.SegmentID)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "draft-opinion", "load", "transcript lookup", err)
	}
	if record == nil {
		return 0, services.Wrap(services.ErrValidation, "draft-opinion", "load", "case has no transcript", nil)
	}
	parsed, err := transcript.Unmarshal(record.TranscriptJSON)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "draft-opinion", "load", "unmarshal transcript", err)
	}

	if err := p.store.UpdateCaseStatus(ctx, kase.ID, corpus.StatusDrafting, ""); err != nil {
		return 0, services.Wrap(services.ErrTransient, "draft-opinion", "persist", "mark drafting", err)
	}

	draft, err := p.deps.Drafter.Draft(ctx, opinions.Input{
		Episode:    episode,
		Case:       kase,
		Transcript: &parsed,
	})
	if err != nil {
		return 0, err
	}

	prov, err := p.store.EnsureProvenance(ctx, runID(ctx), "draft-opinions", p.cfg.Drafting.Model, "opinions")
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "draft-opinion", "provenance", "ensure provenance", err)
	}
	if _, err := p.store.CommitOpinion(ctx, &corpus.Opinion{
		CaseID:               kase.ID,
		AuthorshipHTML:       citations.Sanitize(draft.AuthorshipHTML),
		HoldingStatementHTML: citations.Sanitize(draft.HoldingStatementHTML),
		ReasoningSummaryHTML: citations.Sanitize(draft.ReasoningSummaryHTML),
		OpinionBodyHTML:      citations.Sanitize(draft.OpinionBodyHTML),
		AgentLogJSON:         draft.AgentLogJSON,
		ProvenanceID:         prov.ID,
	}); err != nil {
		return 0, services.Wrap(services.ErrTransient, "draft-opinion", "persist", "commit opinion", err)
	}
	kase.Status = corpus.StatusDecided

	result, err := p.deps.Citations.ExtractForCase(ctx, kase)
	if err != nil {
		return 0, err
	}
	return result.Created, nil
}
