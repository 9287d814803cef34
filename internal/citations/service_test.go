package citations

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gavel/internal/corpus"
	"gavel/internal/logging"
)

func newTestStore(t *testing.T) *corpus.Store {
	t.Helper()
	store, err := corpus.OpenPath(filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// seedDecided creates an episode, a case, and a committed opinion with the
// given body.
func seedDecided(t *testing.T, store *corpus.Store, guid, pubDate, docket, body string) *corpus.Case {
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
		EpisodeID:    episode.ID,
		StartTimeS:   10,
		EndTimeS:     600,
		ProvenanceID: prov.ID,
	})
	if err != nil {
		t.Fatalf("seed segment: %v", err)
	}
	kase, err := store.InsertCase(ctx, &corpus.Case{
		EpisodeID:    episode.ID,
		SegmentID:    segment.ID,
		DocketNumber: docket,
		CaseSeq:      1,
		CaseCaption:  "Caption " + docket,
		FactSummary:  "Facts.",
		StartTimeS:   10,
		EndTimeS:     120,
		ProvenanceID: prov.ID,
	})
	if err != nil {
		t.Fatalf("seed case %s: %v", docket, err)
	}
	if _, err := store.CommitOpinion(ctx, &corpus.Opinion{
		CaseID:               kase.ID,
		AuthorshipHTML:       `<span class="small-caps">Per Curiam</span>.`,
		HoldingStatementHTML: "<em>Held:</em> resolved.",
		ReasoningSummaryHTML: "Summary.",
		OpinionBodyHTML:      body,
		ProvenanceID:         prov.ID,
	}); err != nil {
		t.Fatalf("commit opinion for %s: %v", docket, err)
	}
	return kase
}

func TestCitationEdgesRespectChronologicalOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewService(store, logging.NewNop())

	caseA := seedDecided(t, store, "guid-a", "2024-09-05T10:00:00Z", "24-0001-1",
		"<p>First principles.</p>")
	seedDecided(t, store, "guid-b", "2024-09-12T10:00:00Z", "24-0002-1",
		"<p>Unrelated.</p>")
	caseC := seedDecided(t, store, "guid-c", "2024-09-19T10:00:00Z", "24-0003-1",
		`<p>See <span data-cite-docket="24-0001-1"><em>Alec v. Nick</em></span>.</p>`)

	result, err := svc.ExtractForCase(ctx, caseC)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if result.Created != 1 || result.Dropped != 0 {
		t.Fatalf("result = %+v", result)
	}

	edges, err := store.CitationsFrom(ctx, caseC.ID)
	if err != nil {
		t.Fatalf("citations from: %v", err)
	}
	if len(edges) != 1 || edges[0].CitedCaseID != caseA.ID {
		t.Fatalf("edges = %+v, want single edge to case A", edges)
	}
	if edges[0].Signal != corpus.SignalSee {
		t.Errorf("signal = %q", edges[0].Signal)
	}

	inbound, err := store.CitationsTo(ctx, caseA.ID)
	if err != nil {
		t.Fatalf("citations to: %v", err)
	}
	if len(inbound) != 1 || inbound[0].CitingCaseID != caseC.ID {
		t.Errorf("inbound = %+v", inbound)
	}
}

func TestCitationOfLaterCaseIsDropped(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewService(store, logging.NewNop())

	// The earlier opinion names the later docket, which cannot happen in a
	// well-ordered corpus but can in a hallucinated one.
	caseA := seedDecided(t, store, "guid-a", "2024-09-05T10:00:00Z", "24-0001-1",
		`<p>See <span data-cite-docket="24-0002-1">the future</span>.</p>`)
	seedDecided(t, store, "guid-b", "2024-09-12T10:00:00Z", "24-0002-1",
		"<p>Later case.</p>")

	result, err := svc.ExtractForCase(ctx, caseA)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if result.Created != 0 || result.Dropped != 1 {
		t.Errorf("result = %+v", result)
	}
	edges, err := store.CitationsFrom(ctx, caseA.ID)
	if err != nil {
		t.Fatalf("citations from: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("edges = %+v, want none", edges)
	}
}

func TestHallucinatedAndSelfCitationsCreateNoEdges(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewService(store, logging.NewNop())

	kase := seedDecided(t, store, "guid-a", "2024-09-05T10:00:00Z", "24-0001-1",
		`<p>See <span data-cite-docket="19-9999-9">nothing</span> and `+
			`<span data-cite-docket="24-0001-1">ourselves</span>.</p>`)

	result, err := svc.ExtractForCase(ctx, kase)
	if err != nil {
		t.Fatalf("extract should not fail on hallucinated citations: %v", err)
	}
	if result.Created != 0 || result.Dropped != 2 {
		t.Errorf("result = %+v", result)
	}

	// The opinion itself survives.
	opinion, err := store.OpinionForCase(ctx, kase.ID)
	if err != nil || opinion == nil {
		t.Fatalf("opinion lookup: %v, %v", opinion, err)
	}
}

func TestExtractForCaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewService(store, logging.NewNop())

	seedDecided(t, store, "guid-a", "2024-09-05T10:00:00Z", "24-0001-1",
		"<p>First.</p>")
	caseB := seedDecided(t, store, "guid-b", "2024-09-12T10:00:00Z", "24-0002-1",
		`<p>Cf. <span data-cite-docket="24-0001-1">the first case</span>.</p>`)

	first, err := svc.ExtractForCase(ctx, caseB)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := svc.ExtractForCase(ctx, caseB)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if first.Created != second.Created {
		t.Errorf("passes disagree: %+v vs %+v", first, second)
	}
	edges, err := store.CitationsFrom(ctx, caseB.ID)
	if err != nil {
		t.Fatalf("citations from: %v", err)
	}
	if len(edges) != 1 || edges[0].Signal != corpus.SignalCf {
		t.Errorf("edges = %+v", edges)
	}
}

func TestExtractForCaseRequiresOpinion(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewService(store, logging.NewNop())

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
	kase, err := store.InsertCase(ctx, &corpus.Case{
		EpisodeID: episode.ID, SegmentID: segment.ID, DocketNumber: "24-0001-1",
		CaseSeq: 1, FactSummary: "Facts.", EndTimeS: 120, ProvenanceID: prov.ID,
	})
	if err != nil {
		t.Fatalf("seed case: %v", err)
	}

	if _, err := svc.ExtractForCase(ctx, kase); err == nil {
		t.Fatal("expected error for undecided case")
	}
}
