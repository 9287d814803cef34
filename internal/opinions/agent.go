package opinions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"gavel/internal/config"
	"gavel/internal/corpus"
	"gavel/internal/logging"
	"gavel/internal/services"
	"gavel/internal/services/anthropic"
	"gavel/internal/transcript"
)

const (
	toolListPastOpinions = "list_past_opinions"
	toolReadPastOpinion  = "read_past_opinion"
	toolSubmitOpinion    = "submit_opinion"

	// One malformed submit_opinion call gets a corrective tool_result; a
	// second malformed call fails the case.
	maxSubmitRetries = 1
)

var listToolSchema = json.RawMessage(`{"type": "object", "properties": {}}`)

var readToolSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "docket_number": {"type": "string", "description": "The docket number of the opinion to read"}
  },
  "required": ["docket_number"]
}`)

var submitToolSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "authorship_html": {"type": "string", "description": "Who delivered the opinion and how the justices aligned"},
    "holding_statement_html": {"type": "string", "description": "1-2 sentence holding, prefixed with <em>Held:</em>"},
    "reasoning_summary_html": {"type": "string", "description": "2-3 sentence summary of the framework applied"},
    "opinion_body_html": {"type": "string", "description": "The full opinion body, 750-1000 words"}
  },
  "required": ["authorship_html", "holding_statement_html", "reasoning_summary_html", "opinion_body_html"]
}`)

// MessageService is the slice of the Anthropic client the agent uses.
type MessageService interface {
	CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error)
}

// PrecedentStore supplies the agent's view of the decided corpus.
type PrecedentStore interface {
	ChronoKeyForCase(ctx context.Context, caseID int64) (corpus.ChronoKey, error)
	DecidedCasesBefore(ctx context.Context, key corpus.ChronoKey) ([]*corpus.Case, error)
	OpinionForCase(ctx context.Context, caseID int64) (*corpus.Opinion, error)
	EpisodeByID(ctx context.Context, id int64) (*corpus.Episode, error)
}

// Agent drafts one opinion per case by running a tool-using model loop over
// the case transcript and the decided precedent that predates the case.
type Agent struct {
	cfg      *config.Config
	messages MessageService
	store    PrecedentStore
	logger   *slog.Logger
}

// NewAgent constructs an opinion drafting agent.
func NewAgent(cfg *config.Config, messages MessageService, store PrecedentStore, logger *slog.Logger) *Agent {
	return &Agent{
		cfg:      cfg,
		messages: messages,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "draft-opinion"),
	}
}

// Input carries everything the agent needs for one case.
type Input struct {
	Episode    *corpus.Episode
	Case       *corpus.Case
	Transcript *transcript.Transcript
}

// Draft is a completed opinion ready to commit, together with the serialized
// agent conversation that produced it.
type Draft struct {
	AuthorshipHTML       string
	HoldingStatementHTML string
	ReasoningSummaryHTML string
	OpinionBodyHTML      string
	AgentLogJSON         string
}

type submission struct {
	AuthorshipHTML       string `json:"authorship_html"`
	HoldingStatementHTML string `json:"holding_statement_html"`
	ReasoningSummaryHTML string `json:"reasoning_summary_html"`
	OpinionBodyHTML      string `json:"opinion_body_html"`
}

// Draft runs the agent loop for one case. The model may only read opinions
// of cases strictly earlier in the chronological order than the case being
// drafted; every other docket number resolves to not-found.
func (a *Agent) Draft(ctx context.Context, input Input) (*Draft, error) {
	if input.Episode == nil || input.Case == nil {
		return nil, services.Wrap(services.ErrValidation, "draft-opinion", "draft", "episode and case required", nil)
	}
	if input.Transcript == nil || input.Transcript.Empty() {
		return nil, services.Wrap(services.ErrValidation, "draft-opinion", "draft", "transcript is empty", nil)
	}

	key, err := a.store.ChronoKeyForCase(ctx, input.Case.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "draft-opinion", "draft", "resolve chronological key", err)
	}
	precedents, err := a.store.DecidedCasesBefore(ctx, key)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "draft-opinion", "draft", "load precedent", err)
	}

	history := []anthropic.Message{
		anthropic.TextMessage(anthropic.RoleUser, buildUserMessage(input)),
	}
	tools := []anthropic.Tool{
		{Name: toolListPastOpinions, Description: "List every previously decided Fantasy Court opinion with its key metadata.", InputSchema: listToolSchema},
		{Name: toolReadPastOpinion, Description: "Read the full text of one past opinion, including the complete opinion body.", InputSchema: readToolSchema},
		{Name: toolSubmitOpinion, Description: "Submit the completed opinion.", InputSchema: submitToolSchema},
	}

	maxTurns := a.cfg.Drafting.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 20
	}
	submitRetries := 0

	for turn := 1; turn <= maxTurns; turn++ {
		response, err := a.messages.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     a.cfg.Drafting.Model,
			MaxTokens: a.cfg.Drafting.MaxTokens,
			System:    systemPrompt(a.cfg.Podcast.ShowName, a.cfg.Podcast.SegmentName, a.cfg.Podcast.Hosts),
			Messages:  history,
			Tools:     tools,
			Thinking:  anthropic.EnableThinking(a.cfg.Drafting.ThinkingBudget),
		})
		if err != nil {
			return nil, services.Wrap(services.ErrExternalService, "draft-opinion", "draft", "messages call", err)
		}

		history = append(history, anthropic.Message{Role: anthropic.RoleAssistant, Content: response.Content})

		uses := response.ToolUses()
		if len(uses) == 0 {
			return nil, services.Wrap(services.ErrExternalService, "draft-opinion", "draft",
				fmt.Sprintf("model stopped without submitting an opinion (stop reason %q)", response.StopReason), nil)
		}

		var results []anthropic.ContentBlock
		for _, use := range uses {
			switch use.Name {
			case toolListPastOpinions:
				text, err := a.renderOpinionList(ctx, precedents)
				if err != nil {
					return nil, err
				}
				results = append(results, toolResult(use.ID, text, false))

			case toolReadPastOpinion:
				var params struct {
					DocketNumber string `json:"docket_number"`
				}
				if err := json.Unmarshal(use.Input, &params); err != nil || strings.TrimSpace(params.DocketNumber) == "" {
					results = append(results, toolResult(use.ID, "Invalid parameters: docket_number must be a string.", true))
					continue
				}
				text, err := a.renderOpinion(ctx, precedents, params.DocketNumber)
				if err != nil {
					return nil, err
				}
				results = append(results, toolResult(use.ID, text, false))

			case toolSubmitOpinion:
				var body submission
				problem := ""
				if err := json.Unmarshal(use.Input, &body); err != nil {
					problem = "submission was not valid JSON"
				} else {
					problem = validateSubmission(body)
				}
				if problem == "" {
					logJSON, err := serializeLog(history)
					if err != nil {
						return nil, services.Wrap(services.ErrTransient, "draft-opinion", "draft", "serialize agent log", err)
					}
					a.logger.Info("opinion submitted",
						logging.String(logging.FieldDocket, input.Case.DocketNumber),
						logging.Int("turns", turn),
						logging.Int("precedents_available", len(precedents)))
					return &Draft{
						AuthorshipHTML:       strings.TrimSpace(body.AuthorshipHTML),
						HoldingStatementHTML: strings.TrimSpace(body.HoldingStatementHTML),
						ReasoningSummaryHTML: strings.TrimSpace(body.ReasoningSummaryHTML),
						OpinionBodyHTML:      strings.TrimSpace(body.OpinionBodyHTML),
						AgentLogJSON:         logJSON,
					}, nil
				}
				if submitRetries >= maxSubmitRetries {
					return nil, services.Wrap(services.ErrExternalService, "draft-opinion", "draft",
						fmt.Sprintf("submission rejected after retry: %s", problem), nil)
				}
				submitRetries++
				a.logger.Warn("rejecting malformed submission",
					logging.String(logging.FieldDocket, input.Case.DocketNumber),
					logging.String("problem", problem))
				results = append(results, toolResult(use.ID,
					fmt.Sprintf("Submission rejected: %s. Correct the problem and call submit_opinion again with all four fields.", problem), true))

			default:
				results = append(results, toolResult(use.ID, fmt.Sprintf("Unknown tool %q.", use.Name), true))
			}
		}
		history = append(history, anthropic.Message{Role: anthropic.RoleUser, Content: results})
	}

	return nil, services.Wrap(services.ErrExternalService, "draft-opinion", "draft",
		fmt.Sprintf("agent did not submit an opinion within %d turns", maxTurns), nil)
}

func toolResult(toolUseID, content string, isError bool) anthropic.ContentBlock {
	return anthropic.ContentBlock{
		Type:      anthropic.BlockToolResult,
		ToolUseID: toolUseID,
		Content:   content,
		IsError:   isError,
	}
}

func validateSubmission(body submission) string {
	switch {
	case strings.TrimSpace(body.AuthorshipHTML) == "":
		return "authorship_html is empty"
	case strings.TrimSpace(body.HoldingStatementHTML) == "":
		return "holding_statement_html is empty"
	case strings.TrimSpace(body.ReasoningSummaryHTML) == "":
		return "reasoning_summary_html is empty"
	case strings.TrimSpace(body.OpinionBodyHTML) == "":
		return "opinion_body_html is empty"
	}
	return ""
}

func serializeLog(history []anthropic.Message) (string, error) {
	data, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func buildUserMessage(input Input) string {
	var b strings.Builder
	b.WriteString("Draft the opinion for the following case.\n\n")

	b.WriteString("=== EPISODE ===\n")
	fmt.Fprintf(&b, "Title: %s\n", input.Episode.Title)
	fmt.Fprintf(&b, "Published: %s\n\n", input.Episode.PubDate.Format("January 2, 2006"))

	b.WriteString("=== CASE ===\n")
	fmt.Fprintf(&b, "Docket Number: %s\n", input.Case.DocketNumber)
	fmt.Fprintf(&b, "Caption: %s\n", input.Case.CaseCaption)
	fmt.Fprintf(&b, "Fact Summary: %s\n", input.Case.FactSummary)
	fmt.Fprintf(&b, "Questions Presented: %s\n", input.Case.QuestionsPresentedHTML)
	if input.Case.ProceduralPosture != "" {
		fmt.Fprintf(&b, "Procedural Posture: %s\n", input.Case.ProceduralPosture)
	}
	if topics := renderTopics(input.Case.TopicsJSON); topics != "" {
		fmt.Fprintf(&b, "Topics: %s\n", topics)
	}
	b.WriteString("\n=== TRANSCRIPT EXCERPT ===\n")
	excerpt := input.Transcript.Slice(input.Case.StartTimeS, input.Case.EndTimeS)
	b.WriteString(excerpt.Render(true))

	b.WriteString("\n\nSteps:\n")
	b.WriteString("1. Read the transcript and identify the hosts' conclusion and reasoning.\n")
	b.WriteString("2. Call list_past_opinions to survey precedent.\n")
	b.WriteString("3. Call read_past_opinion on the most relevant cases.\n")
	b.WriteString("4. Draft all four fields in formal legal prose.\n")
	b.WriteString("5. Call submit_opinion.\n")
	return b.String()
}

func renderTopics(topicsJSON string) string {
	var topics []string
	if err := json.Unmarshal([]byte(topicsJSON), &topics); err != nil {
		return ""
	}
	return strings.Join(topics, ", ")
}
