package pipeline

import (
	"context"
	"log/slog"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"gavel/internal/caseextract"
	"gavel/internal/citations"
	"gavel/internal/config"
	"gavel/internal/corpus"
	"gavel/internal/export"
	"gavel/internal/ingest"
	"gavel/internal/logging"
	"gavel/internal/opinions"
	"gavel/internal/segmentid"
	"gavel/internal/services"
	"gavel/internal/services/anthropic"
	"gavel/internal/services/assemblyai"
	"gavel/internal/transcribe"
	"gavel/internal/transcript"
)

// IngestService feeds episodes and audio into the corpus.
type IngestService interface {
	IngestFeed(ctx context.Context) (*ingest.FeedResult, error)
	FetchAudio(ctx context.Context, episode *corpus.Episode) (string, bool, error)
}

// SegmentLocator finds the court segment within an episode.
type SegmentLocator interface {
	Locate(ctx context.Context, episode *corpus.Episode) (*corpus.Segment, error)
}

// TranscriptService produces diarized transcripts for located segments.
type TranscriptService interface {
	TranscribeSegment(ctx context.Context, episode *corpus.Episode, segment *corpus.Segment) (*transcript.Transcript, error)
}

// CaseExtractor extracts structured cases from a segment transcript.
type CaseExtractor interface {
	Extract(ctx context.Context, input caseextract.Input) ([]*corpus.Case, error)
}

// OpinionDrafter runs the drafting agent for one case.
type OpinionDrafter interface {
	Draft(ctx context.Context, input opinions.Input) (*opinions.Draft, error)
}

// CitationService recomputes the citation edges for a decided case.
type CitationService interface {
	ExtractForCase(ctx context.Context, kase *corpus.Case) (citations.Result, error)
}

// Exporter projects the decided corpus to static JSON.
type Exporter interface {
	Export(ctx context.Context) (export.Summary, error)
}

// Deps are the stage implementations the executor drives. Tests substitute
// fakes; production wiring comes from NewDefault.
type Deps struct {
	Ingest      IngestService
	Locator     SegmentLocator
	Transcriber TranscriptService
	Extractor   CaseExtractor
	Drafter     OpinionDrafter
	Citations   CitationService
	Projector   Exporter
}

// Pipeline executes the corpus stages in order: episode-scoped stages first,
// then case-scoped stages strictly chronologically, then export. Every stage
// skips units whose output already exists, so a re-run against an unchanged
// corpus converges without writes.
type Pipeline struct {
	cfg    *config.Config
	store  *corpus.Store
	deps   Deps
	logger *slog.Logger
}

// New constructs a pipeline over explicit stage implementations.
func New(cfg *config.Config, store *corpus.Store, deps Deps, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		store:  store,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// NewDefault wires the production stage implementations: live service
// clients for Anthropic and AssemblyAI plus the corpus-backed services.
func NewDefault(cfg *config.Config, store *corpus.Store, logger *slog.Logger) *Pipeline {
	messages := anthropic.NewClient(anthropic.Config{
		APIKey:         cfg.Anthropic.APIKey,
		BaseURL:        cfg.Anthropic.BaseURL,
		TimeoutSeconds: cfg.Anthropic.TimeoutSeconds,
	})
	transcriber := assemblyai.NewClient(assemblyai.Config{
		APIKey:              cfg.Transcriber.APIKey,
		BaseURL:             cfg.Transcriber.BaseURL,
		SpeechModel:         cfg.Transcriber.SpeechModel,
		ExpectedSpeakers:    cfg.Transcriber.ExpectedSpeakers,
		PollIntervalSeconds: cfg.Transcriber.PollIntervalSeconds,
		TimeoutSeconds:      cfg.Transcriber.TimeoutSeconds,
	})
	deps := Deps{
		Ingest:      ingest.NewService(cfg, store, logger),
		Locator:     segmentid.NewLocator(cfg, messages, logger),
		Transcriber: transcribe.NewService(cfg, transcriber, messages, logger),
		Extractor:   caseextract.NewExtractor(cfg, messages, logger),
		Drafter:     opinions.NewAgent(cfg, messages, store, logger),
		Citations:   citations.NewService(store, logger),
		Projector:   export.NewProjector(cfg, store, logger),
	}
	return New(cfg, store, deps, logger)
}

// RunSummary aggregates what a pipeline run did.
type RunSummary struct {
	RunID             string
	Feed              *ingest.FeedResult
	AudioFetched      int
	SegmentsLocated   int
	Transcripts       int
	CasesExtracted    int
	OpinionsDrafted   int
	CasesFailed       int
	CitationsCreated  int
	EpisodesFailed    int
	Export            export.Summary
}

// Run executes every stage in order under the exclusive run lock. Unit
// failures are isolated: a failing episode or case is recorded and the run
// continues with independent units.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	lock := flock.New(p.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "run", "acquire run lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "run", "another pipeline run holds the lock", nil)
	}
	defer lock.Unlock()

	id := uuid.NewString()
	ctx = services.WithRunID(ctx, id)
	summary := &RunSummary{RunID: id}
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("pipeline run starting")

	feed, err := p.deps.Ingest.IngestFeed(ctx)
	if err != nil {
		return nil, err
	}
	summary.Feed = feed

	episodes, err := p.store.ListEpisodes(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "run", "list episodes", err)
	}
	for _, episode := range episodes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		epCtx := services.WithEpisodeGUID(ctx, episode.GUID)
		if err := p.processEpisode(epCtx, episode, summary); err != nil {
			summary.EpisodesFailed++
			logging.WithContext(epCtx, p.logger).Error("episode stage failed", logging.Error(err))
		}
	}

	if err := p.draftPending(ctx, summary); err != nil {
		return summary, err
	}

	exported, err := p.deps.Projector.Export(ctx)
	if err != nil {
		return summary, err
	}
	summary.Export = exported

	logger.Info("pipeline run complete",
		logging.Int("opinions_drafted", summary.OpinionsDrafted),
		logging.Int("cases_failed", summary.CasesFailed),
		logging.Int("episodes_failed", summary.EpisodesFailed))
	return summary, nil
}
