package corpus

import (
	"strings"
	"time"
)

// CaseStatus tracks how far a case has progressed through the pipeline.
type CaseStatus string

const (
	// StatusExtracted marks a case that exists but has no opinion yet.
	StatusExtracted CaseStatus = "extracted"
	// StatusDrafting marks a case whose opinion agent is currently running.
	StatusDrafting CaseStatus = "drafting"
	// StatusDecided marks a case with a committed opinion.
	StatusDecided CaseStatus = "decided"
	// StatusFailed marks a case whose drafting attempt failed; it remains
	// eligible on the next run.
	StatusFailed CaseStatus = "failed"
	// StatusReview marks a case flagged for manual attention.
	StatusReview CaseStatus = "review"
)

// Signal is the citation signal attached to a citation edge.
type Signal string

const (
	SignalNone    Signal = "none"
	SignalSee     Signal = "see"
	SignalSeeAlso Signal = "see_also"
	SignalCf      Signal = "cf"
	SignalButSee  Signal = "but_see"
	SignalButCf   Signal = "but_cf"
)

// ParseSignal maps introductory signal text to a Signal. Unrecognized text
// maps to SignalNone.
func ParseSignal(text string) Signal {
	normalized := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ",")))
	normalized = strings.TrimSuffix(normalized, ".")
	switch normalized {
	case "see":
		return SignalSee
	case "see also":
		return SignalSeeAlso
	case "cf":
		return SignalCf
	case "but see":
		return SignalButSee
	case "but cf":
		return SignalButCf
	default:
		return SignalNone
	}
}

// Episode is one podcast episode from the feed.
type Episode struct {
	ID              int64
	GUID            string
	Title           string
	Description     string
	DescriptionHTML string
	PubDate         time.Time
	DurationSeconds int64
	FeedURL         string
	AudioURL        string
	AudioPath       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Segment is the located court segment within an episode.
type Segment struct {
	ID           int64
	EpisodeID    int64
	StartTimeS   float64
	EndTimeS     float64
	ProvenanceID int64
	CreatedAt    time.Time
}

// TranscriptRecord stores a diarized transcript for a segment.
type TranscriptRecord struct {
	ID             int64
	EpisodeID      int64
	SegmentID      int64
	TranscriptJSON string
	StartTimeS     float64
	EndTimeS       float64
	ProvenanceID   int64
	CreatedAt      time.Time
}

// Case is a single dispute extracted from a court segment.
type Case struct {
	ID                     int64
	EpisodeID              int64
	SegmentID              int64
	DocketNumber           string
	CaseSeq                int
	CaseCaption            string
	FactSummary            string
	QuestionsPresentedHTML string
	ProceduralPosture      string
	TopicsJSON             string
	StartTimeS             float64
	EndTimeS               float64
	Status                 CaseStatus
	StatusMessage          string
	ProvenanceID           int64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Opinion is the court's decided opinion for a case.
type Opinion struct {
	ID                   int64
	CaseID               int64
	AuthorshipHTML       string
	HoldingStatementHTML string
	ReasoningSummaryHTML string
	OpinionBodyHTML      string
	AgentLogJSON         string
	ProvenanceID         int64
	CreatedAt            time.Time
}

// Citation is a directed edge from a citing case to a strictly earlier
// cited case.
type Citation struct {
	ID           int64
	CitingCaseID int64
	CitedCaseID  int64
	Signal       Signal
	CreatedAt    time.Time
}

// Provenance records which run and model produced a derived record.
type Provenance struct {
	ID          int64
	RunID       string
	TaskName    string
	CreatorName string
	RecordType  string
	CreatedAt   time.Time
}

// ChronoKey is the total chronological order over cases. A case may cite
// another only when the cited key is strictly less than the citing key.
type ChronoKey struct {
	PubDate time.Time
	CaseSeq int
	CaseID  int64
}

// Before reports whether k is strictly earlier than other.
func (k ChronoKey) Before(other ChronoKey) bool {
	if !k.PubDate.Equal(other.PubDate) {
		return k.PubDate.Before(other.PubDate)
	}
	if k.CaseSeq != other.CaseSeq {
		return k.CaseSeq < other.CaseSeq
	}
	return k.CaseID < other.CaseID
}
