package citations

import (
	"context"
	"log/slog"

	"gavel/internal/corpus"
	"gavel/internal/logging"
	"gavel/internal/services"
)

// Service validates citation markers against the corpus and materializes
// the surviving edges.
type Service struct {
	store  *corpus.Store
	logger *slog.Logger
}

// NewService constructs a citation validator over the given store.
func NewService(store *corpus.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logging.NewComponentLogger(logger, "extract-citations"),
	}
}

// Result summarizes one case's citation pass.
type Result struct {
	Markers int
	Created int
	Dropped int
}

// ExtractForCase recomputes the citation edges for one decided case. A
// marker survives only when its docket resolves to an existing case that
// strictly precedes the citing case in the chronological order. Everything
// else is dropped with a warning; a hallucinated citation never fails the
// case. The surviving edge set replaces any previous edges atomically.
func (s *Service) ExtractForCase(ctx context.Context, kase *corpus.Case) (Result, error) {
	if kase == nil {
		return Result{}, services.Wrap(services.ErrValidation, "extract-citations", "extract", "case required", nil)
	}
	opinion, err := s.store.OpinionForCase(ctx, kase.ID)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "extract-citations", "extract", "load opinion", err)
	}
	if opinion == nil {
		return Result{}, services.Wrap(services.ErrValidation, "extract-citations", "extract", "case has no opinion", nil)
	}
	citingKey, err := s.store.ChronoKeyForCase(ctx, kase.ID)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "extract-citations", "extract", "resolve chronological key", err)
	}

	markers := Extract(opinion.OpinionBodyHTML)
	result := Result{Markers: len(markers)}
	var edges []*corpus.Citation

	for _, marker := range markers {
		cited, err := s.store.CaseByDocket(ctx, marker.Docket)
		if err != nil {
			return Result{}, services.Wrap(services.ErrTransient, "extract-citations", "extract", "resolve docket", err)
		}
		if cited == nil {
			result.Dropped++
			s.logger.Warn("dropping citation of unknown docket",
				logging.String(logging.FieldDocket, kase.DocketNumber),
				logging.String("cited_docket", marker.Docket))
			continue
		}
		if cited.ID == kase.ID {
			result.Dropped++
			s.logger.Warn("dropping self-citation",
				logging.String(logging.FieldDocket, kase.DocketNumber))
			continue
		}
		citedKey, err := s.store.ChronoKeyForCase(ctx, cited.ID)
		if err != nil {
			return Result{}, services.Wrap(services.ErrTransient, "extract-citations", "extract", "resolve cited key", err)
		}
		if !citedKey.Before(citingKey) {
			result.Dropped++
			s.logger.Warn("dropping citation of a case that does not precede the citing case",
				logging.String(logging.FieldDocket, kase.DocketNumber),
				logging.String("cited_docket", marker.Docket))
			continue
		}
		edges = append(edges, &corpus.Citation{
			CitingCaseID: kase.ID,
			CitedCaseID:  cited.ID,
			Signal:       marker.Signal,
		})
	}

	if err := s.store.ReplaceCitations(ctx, kase.ID, edges); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "extract-citations", "extract", "replace citations", err)
	}
	result.Created = len(edges)
	s.logger.Info("citations extracted",
		logging.String(logging.FieldDocket, kase.DocketNumber),
		logging.Int("markers", result.Markers),
		logging.Int("created", result.Created),
		logging.Int("dropped", result.Dropped))
	return result, nil
}
