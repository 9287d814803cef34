package caseextract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"gavel/internal/config"
	"gavel/internal/corpus"
	"gavel/internal/docket"
	"gavel/internal/logging"
	"gavel/internal/services"
	"gavel/internal/services/anthropic"
	"gavel/internal/transcript"
)

const toolName = "extract_cases"

var extractToolSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "cases": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "start_time_s": {"type": "number", "description": "Start time in seconds relative to episode start"},
          "end_time_s": {"type": "number", "description": "End time in seconds relative to episode start"},
          "case_caption": {"type": "string", "description": "Formal case title, e.g. \"Alec v. Nick\""},
          "fact_summary": {"type": "string", "description": "Formal summary of the facts giving rise to the dispute"},
          "questions_presented_html": {"type": "string", "description": "The legal question(s) before the court, as HTML"},
          "procedural_posture": {"type": "string", "description": "How the case arrived at court"},
          "case_topics": {"type": "array", "items": {"type": "string"}, "description": "Categorical tags"}
        },
        "required": ["start_time_s", "end_time_s", "case_caption", "fact_summary", "questions_presented_html"]
      }
    }
  },
  "required": ["cases"]
}`)

type extractedCase struct {
	StartTimeS             float64  `json:"start_time_s"`
	EndTimeS               float64  `json:"end_time_s"`
	CaseCaption            string   `json:"case_caption"`
	FactSummary            string   `json:"fact_summary"`
	QuestionsPresentedHTML string   `json:"questions_presented_html"`
	ProceduralPosture      string   `json:"procedural_posture"`
	CaseTopics             []string `json:"case_topics"`
}

type extractionResponse struct {
	Cases []extractedCase `json:"cases"`
}

// MessageService is the slice of the Anthropic client the extractor needs.
type MessageService interface {
	CreateMessage(ctx context.Context, request anthropic.MessageRequest) (*anthropic.MessageResponse, error)
}

// Extractor turns a segment transcript into structured case drafts. It does
// not persist anything; committing drafts is the pipeline's job.
type Extractor struct {
	cfg      *config.Config
	messages MessageService
	logger   *slog.Logger
}

// NewExtractor constructs a case extractor.
func NewExtractor(cfg *config.Config, messages MessageService, logger *slog.Logger) *Extractor {
	return &Extractor{
		cfg:      cfg,
		messages: messages,
		logger:   logging.NewComponentLogger(logger, "extract-cases"),
	}
}

// Input bundles everything extraction needs about one segment.
type Input struct {
	Episode    *corpus.Episode
	Segment    *corpus.Segment
	Transcript *transcript.Transcript
	// EpisodeSeq is the episode's ordinal within its publication year; it is
	// the middle component of the assigned docket numbers.
	EpisodeSeq int
}

// Extract runs the model over the segment transcript and returns validated
// case drafts with docket numbers assigned. Drafts the model returned without
// the required fields are dropped and logged.
func (e *Extractor) Extract(ctx context.Context, input Input) ([]*corpus.Case, error) {
	if input.Episode == nil || input.Segment == nil {
		return nil, services.Wrap(services.ErrValidation, "extract-cases", "extract", "episode and segment required", nil)
	}
	if input.Transcript == nil || input.Transcript.Empty() {
		return nil, services.Wrap(services.ErrValidation, "extract-cases", "extract", "transcript is empty", nil)
	}
	if input.EpisodeSeq <= 0 {
		return nil, services.Wrap(services.ErrValidation, "extract-cases", "extract", "episode ordinal must be positive", nil)
	}
	if limit := e.cfg.Extraction.MaxUtterances; limit > 0 && len(input.Transcript.Utterances()) > limit {
		return nil, services.Wrap(services.ErrValidation, "extract-cases", "extract",
			fmt.Sprintf("transcript has %d utterances, above the %d limit", len(input.Transcript.Utterances()), limit), nil)
	}

	response, err := e.messages.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.cfg.Extraction.Model,
		MaxTokens: 8192,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			anthropic.TextMessage(anthropic.RoleUser, buildUserMessage(input)),
		},
		Tools: []anthropic.Tool{{
			Name:        toolName,
			Description: "Extract all Fantasy Court cases from the segment",
			InputSchema: extractToolSchema,
		}},
	})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "extract-cases", "extract", "messages call", err)
	}

	uses := response.ToolUses()
	if len(uses) == 0 {
		return nil, services.Wrap(services.ErrExternalService, "extract-cases", "extract", "model returned no tool call", nil)
	}
	var extraction extractionResponse
	if err := json.Unmarshal(uses[0].Input, &extraction); err != nil {
		return nil, services.Wrap(services.ErrExternalService, "extract-cases", "extract", "decode tool input", err)
	}

	var drafts []*corpus.Case
	seq := 0
	for index, candidate := range extraction.Cases {
		if problem := validateDraft(candidate, input.Segment); problem != "" {
			e.logger.Warn("dropping invalid case draft",
				logging.String(logging.FieldEpisodeGUID, input.Episode.GUID),
				logging.Int("draft_index", index),
				logging.String("problem", problem))
			continue
		}
		seq++
		drafts = append(drafts, &corpus.Case{
			EpisodeID:              input.Episode.ID,
			SegmentID:              input.Segment.ID,
			DocketNumber:           docket.Format(input.Episode.PubDate, input.EpisodeSeq, seq),
			CaseSeq:                seq,
			CaseCaption:            strings.TrimSpace(candidate.CaseCaption),
			FactSummary:            strings.TrimSpace(candidate.FactSummary),
			QuestionsPresentedHTML: strings.TrimSpace(candidate.QuestionsPresentedHTML),
			ProceduralPosture:      strings.TrimSpace(candidate.ProceduralPosture),
			TopicsJSON:             marshalTopics(candidate.CaseTopics),
			StartTimeS:             candidate.StartTimeS,
			EndTimeS:               candidate.EndTimeS,
			Status:                 corpus.StatusExtracted,
		})
	}

	e.logger.Info("cases extracted",
		logging.String(logging.FieldEpisodeGUID, input.Episode.GUID),
		logging.Int("returned", len(extraction.Cases)),
		logging.Int("accepted", len(drafts)))
	return drafts, nil
}

func validateDraft(candidate extractedCase, segment *corpus.Segment) string {
	if strings.TrimSpace(candidate.CaseCaption) == "" {
		return "missing case caption"
	}
	if strings.TrimSpace(candidate.FactSummary) == "" {
		return "missing fact summary"
	}
	if strings.TrimSpace(candidate.QuestionsPresentedHTML) == "" {
		return "missing questions presented"
	}
	if candidate.EndTimeS <= candidate.StartTimeS {
		return fmt.Sprintf("inverted time range %.1fs..%.1fs", candidate.StartTimeS, candidate.EndTimeS)
	}
	if candidate.StartTimeS < 0 {
		return "negative start time"
	}
	return ""
}

func marshalTopics(topics []string) string {
	cleaned := make([]string, 0, len(topics))
	for _, topic := range topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	encoded, err := json.Marshal(cleaned)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

func buildUserMessage(input Input) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Episode: %s\n", input.Episode.Title)
	fmt.Fprintf(&builder, "Published: %s\n", input.Episode.PubDate.UTC().Format("January 2, 2006"))
	if input.Episode.DurationSeconds > 0 {
		fmt.Fprintf(&builder, "Episode Duration: %ds\n", input.Episode.DurationSeconds)
	}
	fmt.Fprintf(&builder, "\nFantasy Court Segment:\n  Start: %.1fs\n  End: %.1fs\n",
		input.Segment.StartTimeS, input.Segment.EndTimeS)
	fmt.Fprintf(&builder, "\nTranscript:\n%s\n", input.Transcript.Render(true))
	fmt.Fprintf(&builder,
		"\nPlease extract all distinct Fantasy Court cases from this segment. Remember that timestamps should be relative to the episode start (not segment start), so they should fall between %.1fs and %.1fs.",
		input.Segment.StartTimeS, input.Segment.EndTimeS)
	return builder.String()
}
