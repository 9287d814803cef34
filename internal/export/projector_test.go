package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gavel/internal/config"
	"gavel/internal/corpus"
	"gavel/internal/logging"
)

func newTestProjector(t *testing.T) (*Projector, *corpus.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := corpus.OpenPath(filepath.Join(dir, "corpus.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	exportDir := filepath.Join(dir, "export")
	cfg.Paths.ExportDir = exportDir
	return NewProjector(&cfg, store, logging.NewNop()), store, exportDir
}

func seedDecided(t *testing.T, store *corpus.Store, guid, pubDate, docket, caption, body string) *corpus.Case {
	t.Helper()
	ctx := context.Background()
	when, err := time.Parse(time.RFC3339, pubDate)
	if err != nil {
		t.Fatalf("parse %s: %v", pubDate, err)
	}
	episode, _, err := store.UpsertEpisode(ctx, &corpus.Episode{
		GUID:    guid,
		Title:   "Episode " + guid,
		PubDate: when,
	})
	if err != nil {
		t.Fatalf("seed episode %s: %v", guid, err)
	}
	prov, err := store.EnsureProvenance(ctx, "run-test", "extract-cases", "test", "cases")
	if err != nil {
		t.Fatalf("seed provenance: %v", err)
	}
	segment, err := store.InsertSegment(ctx, &corpus.Segment{
		EpisodeID: episode.ID, StartTimeS: 10, EndTimeS: 600, ProvenanceID: prov.ID,
	})
	if err != nil {
		t.Fatalf("seed segment: %v", err)
	}
	kase, err := store.InsertCase(ctx, &corpus.Case{
		EpisodeID:              episode.ID,
		SegmentID:              segment.ID,
		DocketNumber:           docket,
		CaseSeq:                1,
		CaseCaption:            caption,
		FactSummary:            "Facts.",
		QuestionsPresentedHTML: "<p>Whether relief is warranted.</p>",
		TopicsJSON:             `["trades"]`,
		StartTimeS:             10,
		EndTimeS:               120,
		ProvenanceID:           prov.ID,
	})
	if err != nil {
		t.Fatalf("seed case %s: %v", docket, err)
	}
	if _, err := store.CommitOpinion(ctx, &corpus.Opinion{
		CaseID:               kase.ID,
		AuthorshipHTML:       `<span class="small-caps">Per Curiam</span>.`,
		HoldingStatementHTML: `<em>Held:</em> the "trade" stands.`,
		ReasoningSummaryHTML: "Summary.",
		OpinionBodyHTML:      body,
		ProvenanceID:         prov.ID,
	}); err != nil {
		t.Fatalf("commit opinion for %s: %v", docket, err)
	}
	return kase
}

func TestExportWritesIndexAndDocuments(t *testing.T) {
	ctx := context.Background()
	projector, store, exportDir := newTestProjector(t)

	caseA := seedDecided(t, store, "guid-a", "2024-09-05T10:00:00Z", "24-0001-1",
		"Alec v. Nick", "<p>First principles.</p>")
	caseC := seedDecided(t, store, "guid-c", "2024-09-19T10:00:00Z", "24-0003-1",
		"In re Waiver Order", `<p>See <span data-cite-docket="24-0001-1">Alec</span>.</p>`)
	if err := store.ReplaceCitations(ctx, caseC.ID, []*corpus.Citation{
		{CitingCaseID: caseC.ID, CitedCaseID: caseA.ID, Signal: corpus.SignalSee},
	}); err != nil {
		t.Fatalf("seed citation: %v", err)
	}

	summary, err := projector.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if summary.Opinions != 2 || summary.Written != 3 {
		t.Errorf("summary = %+v, want 2 opinions and 3 files", summary)
	}

	indexData, err := os.ReadFile(filepath.Join(exportDir, "index.json"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	var index []IndexEntry
	if err := json.Unmarshal(indexData, &index); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	if len(index) != 2 || index[0].DocketNumber != "24-0001-1" || index[1].DocketNumber != "24-0003-1" {
		t.Fatalf("index order = %+v", index)
	}
	if index[0].HoldingStatementHTML != "<em>Held:</em> the “trade” stands." {
		t.Errorf("smart quotes not applied: %q", index[0].HoldingStatementHTML)
	}

	docData, err := os.ReadFile(filepath.Join(exportDir, "opinions", "24-0003-1.json"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(docData, &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if len(doc.Cites) != 1 || doc.Cites[0].DocketNumber != "24-0001-1" || doc.Cites[0].Signal != "see" {
		t.Errorf("cites = %+v", doc.Cites)
	}
	if len(doc.CitedBy) != 0 {
		t.Errorf("cited_by = %+v, want none", doc.CitedBy)
	}
	if doc.Episode.PubDate != "2024-09-19" {
		t.Errorf("episode pub date = %q", doc.Episode.PubDate)
	}

	var docA Document
	dataA, err := os.ReadFile(filepath.Join(exportDir, "opinions", "24-0001-1.json"))
	if err != nil {
		t.Fatalf("read document A: %v", err)
	}
	if err := json.Unmarshal(dataA, &docA); err != nil {
		t.Fatalf("decode document A: %v", err)
	}
	if len(docA.CitedBy) != 1 || docA.CitedBy[0].DocketNumber != "24-0003-1" {
		t.Errorf("cited_by for A = %+v", docA.CitedBy)
	}
}

func TestExportOrdersDocketsNumerically(t *testing.T) {
	ctx := context.Background()
	projector, store, exportDir := newTestProjector(t)

	// Lexical order would put -10 before -2.
	seedDecided(t, store, "guid-j", "2024-09-05T10:00:00Z", "24-0001-10",
		"In re Tenth Case", "<p>Body.</p>")
	seedDecided(t, store, "guid-b", "2024-09-05T11:00:00Z", "24-0001-2",
		"In re Second Case", "<p>Body.</p>")

	if _, err := projector.Export(ctx); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(exportDir, "index.json"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	var index []IndexEntry
	if err := json.Unmarshal(data, &index); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	if len(index) != 2 || index[0].DocketNumber != "24-0001-2" || index[1].DocketNumber != "24-0001-10" {
		t.Errorf("index order = %+v, want 24-0001-2 before 24-0001-10", index)
	}
}

func TestExportIsByteIdenticalAcrossRuns(t *testing.T) {
	ctx := context.Background()
	projector, store, exportDir := newTestProjector(t)
	seedDecided(t, store, "guid-a", "2024-09-05T10:00:00Z", "24-0001-1",
		"Alec v. Nick", "<p>Body.</p>")

	if _, err := projector.Export(ctx); err != nil {
		t.Fatalf("first export: %v", err)
	}
	firstIndex, err := os.ReadFile(filepath.Join(exportDir, "index.json"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}

	summary, err := projector.Export(ctx)
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if summary.Written != 0 {
		t.Errorf("second export wrote %d files, want 0", summary.Written)
	}
	secondIndex, err := os.ReadFile(filepath.Join(exportDir, "index.json"))
	if err != nil {
		t.Fatalf("reread index: %v", err)
	}
	if string(firstIndex) != string(secondIndex) {
		t.Error("index.json changed across runs with unchanged corpus")
	}
}

func TestExportSkipsUndecidedCases(t *testing.T) {
	ctx := context.Background()
	projector, store, exportDir := newTestProjector(t)

	when, _ := time.Parse(time.RFC3339, "2024-09-05T10:00:00Z")
	episode, _, err := store.UpsertEpisode(ctx, &corpus.Episode{GUID: "guid-a", Title: "Ep", PubDate: when})
	if err != nil {
		t.Fatalf("seed episode: %v", err)
	}
	prov, err := store.EnsureProvenance(ctx, "run-test", "extract-cases", "test", "cases")
	if err != nil {
		t.Fatalf("seed provenance: %v", err)
	}
	segment, err := store.InsertSegment(ctx, &corpus.Segment{EpisodeID: episode.ID, EndTimeS: 600, ProvenanceID: prov.ID})
	if err != nil {
		t.Fatalf("seed segment: %v", err)
	}
	if _, err := store.InsertCase(ctx, &corpus.Case{
		EpisodeID: episode.ID, SegmentID: segment.ID, DocketNumber: "24-0001-1",
		CaseSeq: 1, FactSummary: "Facts.", EndTimeS: 120, ProvenanceID: prov.ID,
	}); err != nil {
		t.Fatalf("seed case: %v", err)
	}

	summary, err := projector.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if summary.Opinions != 0 {
		t.Errorf("summary = %+v, want no opinions", summary)
	}
	var index []IndexEntry
	data, err := os.ReadFile(filepath.Join(exportDir, "index.json"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if err := json.Unmarshal(data, &index); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	if len(index) != 0 {
		t.Errorf("index = %+v, want empty", index)
	}
}
