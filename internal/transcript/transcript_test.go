package transcript_test

import (
	"strings"
	"testing"

	"gavel/internal/transcript"
)

func sample() transcript.Transcript {
	return transcript.Transcript{
		Segments: []transcript.Segment{
			{ID: 0, Start: 100, End: 104, Speaker: "Danny Heifetz", Text: "Welcome back to court."},
			{ID: 1, Start: 104, End: 109, Speaker: "Danny Heifetz", Text: "First case."},
			{ID: 2, Start: 109, End: 115, Speaker: "Craig Horlbeck", Text: "This one is wild."},
			{ID: 3, Start: 115, End: 121, Speaker: "Danny Heifetz", Text: "Read the email."},
		},
	}
}

func TestUtterancesMergeConsecutiveSpeakers(t *testing.T) {
	utterances := sample().Utterances()
	if len(utterances) != 3 {
		t.Fatalf("expected 3 utterances, got %d", len(utterances))
	}
	first := utterances[0]
	if first.Speaker != "Danny Heifetz" || first.Start != 100 || first.End != 109 {
		t.Fatalf("unexpected first utterance: %+v", first)
	}
	if first.Text != "Welcome back to court. First case." {
		t.Fatalf("unexpected merged text: %q", first.Text)
	}
}

func TestSliceKeepsOverlappingSegments(t *testing.T) {
	sliced := sample().Slice(105, 112)
	if len(sliced.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(sliced.Segments))
	}
	if sliced.Segments[0].ID != 1 || sliced.Segments[1].ID != 2 {
		t.Fatalf("unexpected segment ids: %+v", sliced.Segments)
	}
	if sliced.ActualStart != 105 || sliced.ActualEnd != 112 {
		t.Fatalf("expected slice bounds recorded, got %+v", sliced)
	}
}

func TestRenderWithTimestamps(t *testing.T) {
	rendered := sample().Render(true)
	if !strings.Contains(rendered, "Craig Horlbeck [109.0s - 115.0s]: This one is wild.") {
		t.Fatalf("unexpected rendering:\n%s", rendered)
	}
}

func TestRenderWithoutTimestamps(t *testing.T) {
	rendered := sample().Render(false)
	if strings.Contains(rendered, "[") {
		t.Fatalf("expected no timestamps, got:\n%s", rendered)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	encoded, err := transcript.Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	decoded, err := transcript.Unmarshal(encoded)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(decoded.Segments) != 4 {
		t.Fatalf("expected 4 segments after round trip, got %d", len(decoded.Segments))
	}
}

func TestEmpty(t *testing.T) {
	if !(transcript.Transcript{}).Empty() {
		t.Fatal("zero transcript should be empty")
	}
	if sample().Empty() {
		t.Fatal("sample transcript should not be empty")
	}
}
