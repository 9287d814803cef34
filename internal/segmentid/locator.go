package segmentid

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gavel/internal/config"
	"gavel/internal/corpus"
	"gavel/internal/logging"
	"gavel/internal/services"
	"gavel/internal/services/anthropic"
)

const systemPrompt = `You are analyzing episodes of "The Ringer Fantasy Football Show", a fantasy football podcast.

"Fantasy Court" is a recurring segment where the hosts (Danny Heifetz, Danny Kelly, Craig Horlbeck)
adjudicate fantasy football disputes and controversies. In this segment:
- Listeners submit grievances about their fantasy leagues (trades, rule disputes, commissioner decisions, etc.)
- The hosts debate and render judgments on these disputes
- It's typically one of the final segments in an episode
- The segment is usually explicitly labeled as "Fantasy Court" in the episode description

Your task is to:
1. Determine if the episode contains a Fantasy Court segment
2. If yes, extract the start timestamp from the description
3. Extract the end timestamp (usually the start of the next segment, or end of show if Fantasy Court is last)

Episode descriptions typically contain timestamps in formats like:
- "32:45" (mm:ss)
- "1:23:45" (hh:mm:ss)

Be precise and only identify segments explicitly labeled as "Fantasy Court" or very clear variations.

Respond with a JSON object only:
{"has_court_segment": bool, "start_timestamp": "(hh:)mm:ss" or null, "end_timestamp": "(hh:)mm:ss" or null}`

// Detection is the model's verdict for one episode.
type Detection struct {
	HasCourtSegment bool   `json:"has_court_segment"`
	StartTimestamp  string `json:"start_timestamp"`
	EndTimestamp    string `json:"end_timestamp"`
}

// MessageService is the slice of the Anthropic client the locator needs.
type MessageService interface {
	CreateMessage(ctx context.Context, request anthropic.MessageRequest) (*anthropic.MessageResponse, error)
}

// Locator finds the court segment inside an episode from its description.
type Locator struct {
	cfg      *config.Config
	messages MessageService
	logger   *slog.Logger
}

// NewLocator constructs a segment locator.
func NewLocator(cfg *config.Config, messages MessageService, logger *slog.Logger) *Locator {
	return &Locator{
		cfg:      cfg,
		messages: messages,
		logger:   logging.NewComponentLogger(logger, "locate-segment"),
	}
}

// Locate asks the model whether the episode has a court segment and resolves
// its time range. Episodes without a segment return (nil, nil).
func (l *Locator) Locate(ctx context.Context, episode *corpus.Episode) (*corpus.Segment, error) {
	if episode == nil {
		return nil, services.Wrap(services.ErrValidation, "locate-segment", "detect", "episode is nil", nil)
	}

	response, err := l.messages.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     l.cfg.Segments.Model,
		MaxTokens: 1024,
		System:    systemPrompt,
		Messages:  []anthropic.Message{anthropic.TextMessage(anthropic.RoleUser, buildUserMessage(episode))},
	})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "locate-segment", "detect", "messages call", err)
	}

	var detection Detection
	if err := anthropic.DecodeModelJSON(response.TextContent(), &detection); err != nil {
		return nil, services.Wrap(services.ErrExternalService, "locate-segment", "detect", "parse detection", err)
	}
	if !detection.HasCourtSegment {
		l.logger.Info("no court segment",
			logging.String(logging.FieldEpisodeGUID, episode.GUID))
		return nil, nil
	}

	segment, err := resolveRange(episode, detection)
	if err != nil {
		return nil, err
	}
	l.logger.Info("segment located",
		logging.String(logging.FieldEpisodeGUID, episode.GUID),
		logging.Float64("start_s", segment.StartTimeS),
		logging.Float64("end_s", segment.EndTimeS))
	return segment, nil
}

func resolveRange(episode *corpus.Episode, detection Detection) (*corpus.Segment, error) {
	if strings.TrimSpace(detection.StartTimestamp) == "" {
		return nil, services.Wrap(services.ErrValidation, "locate-segment", "resolve",
			"detection has no start timestamp", nil)
	}
	start, err := ParseTimestamp(detection.StartTimestamp)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "locate-segment", "resolve", "parse start", err)
	}

	var end float64
	switch {
	case strings.TrimSpace(detection.EndTimestamp) != "":
		end, err = ParseTimestamp(detection.EndTimestamp)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "locate-segment", "resolve", "parse end", err)
		}
	case episode.DurationSeconds > 0:
		// No end marker means the segment runs to the end of the show.
		end = float64(episode.DurationSeconds)
	default:
		return nil, services.Wrap(services.ErrValidation, "locate-segment", "resolve",
			"no end timestamp and unknown episode duration", nil)
	}

	if episode.DurationSeconds > 0 && end > float64(episode.DurationSeconds) {
		end = float64(episode.DurationSeconds)
	}
	if end <= start {
		return nil, services.Wrap(services.ErrValidation, "locate-segment", "resolve",
			fmt.Sprintf("segment range inverted: %.1fs..%.1fs", start, end), nil)
	}

	return &corpus.Segment{
		EpisodeID:  episode.ID,
		StartTimeS: start,
		EndTimeS:   end,
	}, nil
}

func buildUserMessage(episode *corpus.Episode) string {
	duration := "unknown"
	if episode.DurationSeconds > 0 {
		duration = FormatTimestamp(float64(episode.DurationSeconds))
	}
	description := episode.Description
	if description == "" {
		description = episode.DescriptionHTML
	}
	if description == "" {
		description = "No description available"
	}
	return fmt.Sprintf(`Episode: %s
Published: %s
Duration: %s

Description:
%s

Does this episode contain a Fantasy Court segment? If yes, extract the start and end timestamps.`,
		episode.Title,
		episode.PubDate.UTC().Format("January 2, 2006"),
		duration,
		description,
	)
}
