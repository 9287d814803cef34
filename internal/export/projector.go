package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gavel/internal/config"
	"gavel/internal/corpus"
	"gavel/internal/docket"
	"gavel/internal/logging"
	"gavel/internal/services"
)

// IndexEntry is one row of index.json.
type IndexEntry struct {
	DocketNumber         string   `json:"docket_number"`
	CaseCaption          string   `json:"case_caption"`
	HoldingStatementHTML string   `json:"holding_statement_html"`
	AuthorshipHTML       string   `json:"authorship_html"`
	EpisodeTitle         string   `json:"episode_title"`
	EpisodePubDate       string   `json:"episode_pub_date"`
	CaseTopics           []string `json:"case_topics"`
}

// CitationRef is a resolved citation edge embedded in an opinion document.
type CitationRef struct {
	DocketNumber         string `json:"docket_number"`
	CaseCaption          string `json:"case_caption"`
	HoldingStatementHTML string `json:"holding_statement_html"`
	Signal               string `json:"signal"`
}

// EpisodeRef is the episode metadata embedded in an opinion document.
type EpisodeRef struct {
	GUID    string `json:"guid"`
	Title   string `json:"title"`
	PubDate string `json:"pub_date"`
}

// Document is one opinions/<docket>.json file: everything a renderer needs
// with no further lookups.
type Document struct {
	DocketNumber           string        `json:"docket_number"`
	CaseCaption            string        `json:"case_caption"`
	FactSummary            string        `json:"fact_summary"`
	QuestionsPresentedHTML string        `json:"questions_presented_html"`
	ProceduralPosture      string        `json:"procedural_posture,omitempty"`
	CaseTopics             []string      `json:"case_topics"`
	Episode                EpisodeRef    `json:"episode"`
	AuthorshipHTML         string        `json:"authorship_html"`
	HoldingStatementHTML   string        `json:"holding_statement_html"`
	ReasoningSummaryHTML   string        `json:"reasoning_summary_html"`
	OpinionBodyHTML        string        `json:"opinion_body_html"`
	Cites                  []CitationRef `json:"cites"`
	CitedBy                []CitationRef `json:"cited_by"`
}

// Summary reports what an export pass did.
type Summary struct {
	Opinions int
	Written  int
}

// Projector materializes the decided corpus as static JSON under the
// configured export directory.
type Projector struct {
	cfg    *config.Config
	store  *corpus.Store
	logger *slog.Logger
}

// NewProjector constructs an export projector.
func NewProjector(cfg *config.Config, store *corpus.Store, logger *slog.Logger) *Projector {
	return &Projector{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "export"),
	}
}

// Export writes index.json plus one document per decided case. Output is a
// pure function of corpus state: files are rewritten only when their bytes
// change, so an unchanged corpus exports with zero writes.
func (p *Projector) Export(ctx context.Context) (Summary, error) {
	exportDir := p.cfg.Paths.ExportDir
	opinionsDir := filepath.Join(exportDir, "opinions")
	if err := os.MkdirAll(opinionsDir, 0o755); err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "export", "export", "create export directory", err)
	}

	decided, err := p.store.CasesWithStatus(ctx, corpus.StatusDecided)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrTransient, "export", "export", "list decided cases", err)
	}
	sort.Slice(decided, func(i, j int) bool {
		return docket.Less(decided[i].DocketNumber, decided[j].DocketNumber)
	})

	summary := Summary{Opinions: len(decided)}
	index := make([]IndexEntry, 0, len(decided))

	for _, kase := range decided {
		doc, entry, err := p.buildDocument(ctx, kase)
		if err != nil {
			return Summary{}, err
		}
		index = append(index, *entry)

		written, err := writeJSON(filepath.Join(opinionsDir, kase.DocketNumber+".json"), doc)
		if err != nil {
			return Summary{}, services.Wrap(services.ErrTransient, "export", "export",
				fmt.Sprintf("write document %s", kase.DocketNumber), err)
		}
		if written {
			summary.Written++
		}
	}

	written, err := writeJSON(filepath.Join(exportDir, "index.json"), index)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrTransient, "export", "export", "write index", err)
	}
	if written {
		summary.Written++
	}

	p.logger.Info("export complete",
		logging.Int("opinions", summary.Opinions),
		logging.Int("files_written", summary.Written),
		logging.String("dir", exportDir))
	return summary, nil
}

func (p *Projector) buildDocument(ctx context.Context, kase *corpus.Case) (*Document, *IndexEntry, error) {
	opinion, err := p.store.OpinionForCase(ctx, kase.ID)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrTransient, "export", "export", "load opinion", err)
	}
	if opinion == nil {
		return nil, nil, services.Wrap(services.ErrTransient, "export", "export",
			fmt.Sprintf("case %s is decided but has no opinion", kase.DocketNumber), nil)
	}
	episode, err := p.store.EpisodeByID(ctx, kase.EpisodeID)
	if err != nil || episode == nil {
		return nil, nil, services.Wrap(services.ErrTransient, "export", "export", "load episode", err)
	}

	cites, err := p.citationRefs(ctx, kase.ID, true)
	if err != nil {
		return nil, nil, err
	}
	citedBy, err := p.citationRefs(ctx, kase.ID, false)
	if err != nil {
		return nil, nil, err
	}

	doc := &Document{
		DocketNumber:           kase.DocketNumber,
		CaseCaption:            Smarten(kase.CaseCaption),
		FactSummary:            kase.FactSummary,
		QuestionsPresentedHTML: kase.QuestionsPresentedHTML,
		ProceduralPosture:      kase.ProceduralPosture,
		CaseTopics:             decodeTopics(kase.TopicsJSON),
		Episode: EpisodeRef{
			GUID:    episode.GUID,
			Title:   episode.Title,
			PubDate: episode.PubDate.Format("2006-01-02"),
		},
		AuthorshipHTML:       Smarten(opinion.AuthorshipHTML),
		HoldingStatementHTML: Smarten(opinion.HoldingStatementHTML),
		ReasoningSummaryHTML: Smarten(opinion.ReasoningSummaryHTML),
		OpinionBodyHTML:      Smarten(opinion.OpinionBodyHTML),
		Cites:                cites,
		CitedBy:              citedBy,
	}
	entry := &IndexEntry{
		DocketNumber:         kase.DocketNumber,
		CaseCaption:          doc.CaseCaption,
		HoldingStatementHTML: doc.HoldingStatementHTML,
		AuthorshipHTML:       doc.AuthorshipHTML,
		EpisodeTitle:         episode.Title,
		EpisodePubDate:       doc.Episode.PubDate,
		CaseTopics:           doc.CaseTopics,
	}
	return doc, entry, nil
}

// citationRefs resolves one direction of a case's citation edges.
func (p *Projector) citationRefs(ctx context.Context, caseID int64, outbound bool) ([]CitationRef, error) {
	var (
		edges []*corpus.Citation
		err   error
	)
	if outbound {
		edges, err = p.store.CitationsFrom(ctx, caseID)
	} else {
		edges, err = p.store.CitationsTo(ctx, caseID)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "export", "export", "list citations", err)
	}

	refs := make([]CitationRef, 0, len(edges))
	for _, edge := range edges {
		otherID := edge.CitedCaseID
		if !outbound {
			otherID = edge.CitingCaseID
		}
		other, err := p.store.CaseByID(ctx, otherID)
		if err != nil || other == nil {
			return nil, services.Wrap(services.ErrTransient, "export", "export", "resolve cited case", err)
		}
		opinion, err := p.store.OpinionForCase(ctx, other.ID)
		if err != nil || opinion == nil {
			return nil, services.Wrap(services.ErrTransient, "export", "export", "resolve cited opinion", err)
		}
		refs = append(refs, CitationRef{
			DocketNumber:         other.DocketNumber,
			CaseCaption:          Smarten(other.CaseCaption),
			HoldingStatementHTML: Smarten(opinion.HoldingStatementHTML),
			Signal:               string(edge.Signal),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return docket.Less(refs[i].DocketNumber, refs[j].DocketNumber) })
	return refs, nil
}

func decodeTopics(topicsJSON string) []string {
	var topics []string
	if err := json.Unmarshal([]byte(topicsJSON), &topics); err != nil || topics == nil {
		return []string{}
	}
	return topics
}

// writeJSON marshals v with stable two-space indentation and a trailing
// newline, writing the file only when its bytes differ from what is already
// on disk. Reports whether a write happened.
func writeJSON(path string, v any) (bool, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return false, err
	}
	data := buf.Bytes()

	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
