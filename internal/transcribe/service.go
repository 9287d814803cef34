package transcribe

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
	"gavel/internal/services/assemblyai"
	"gavel/internal/transcript"
)

// Transcriber is the slice of the AssemblyAI client the service uses.
type Transcriber interface {
	UploadFile(ctx context.Context, path string) (string, error)
	Transcribe(ctx context.Context, req assemblyai.TranscribeRequest) (*assemblyai.Result, error)
}

// MessageService names diarized speakers from transcript text.
type MessageService interface {
	CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error)
}

// Service produces diarized, speaker-named transcripts for located court
// segments.
type Service struct {
	cfg         *config.Config
	transcriber Transcriber
	messages    MessageService
	logger      *slog.Logger
}

// NewService constructs a transcription service.
func NewService(cfg *config.Config, transcriber Transcriber, messages MessageService, logger *slog.Logger) *Service {
	return &Service{
		cfg:         cfg,
		transcriber: transcriber,
		messages:    messages,
		logger:      logging.NewComponentLogger(logger, "transcribe"),
	}
}

// TranscribeSegment uploads the episode audio, transcribes the segment range
// plus a buffer on each side (clamped to episode bounds), and maps diarized
// speaker labels to host names. Speaker naming failures degrade to the raw
// labels rather than failing the transcript.
func (s *Service) TranscribeSegment(ctx context.Context, episode *corpus.Episode, segment *corpus.Segment) (*transcript.Transcript, error) {
	if episode == nil || segment == nil {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "segment", "episode and segment required", nil)
	}
	if episode.AudioPath == "" {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "segment", "episode has no audio on disk", nil)
	}
	if segment.EndTimeS <= segment.StartTimeS {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "segment", "segment range is empty", nil)
	}

	buffer := float64(s.cfg.Transcriber.BufferSeconds)
	actualStart := segment.StartTimeS - buffer
	if actualStart < 0 {
		actualStart = 0
	}
	actualEnd := segment.EndTimeS + buffer
	if episode.DurationSeconds > 0 && actualEnd > float64(episode.DurationSeconds) {
		actualEnd = float64(episode.DurationSeconds)
	}

	audioURL, err := s.transcriber.UploadFile(ctx, episode.AudioPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "transcribe", "segment", "upload audio", err)
	}

	s.logger.Info("transcribing segment",
		logging.String(logging.FieldEpisodeGUID, episode.GUID),
		logging.Float64("start_s", actualStart),
		logging.Float64("end_s", actualEnd))

	result, err := s.transcriber.Transcribe(ctx, assemblyai.TranscribeRequest{
		AudioURL:         audioURL,
		AudioStartFromMS: int64(actualStart * 1000),
		AudioEndAtMS:     int64(actualEnd * 1000),
	})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "transcribe", "segment", "transcription job", err)
	}
	if len(result.Utterances) == 0 {
		return nil, services.Wrap(services.ErrExternalService, "transcribe", "segment", "transcription returned no utterances", nil)
	}

	names := s.identifySpeakers(ctx, episode, result.Utterances)

	out := &transcript.Transcript{
		ActualStart: actualStart,
		ActualEnd:   actualEnd,
	}
	for i, utt := range result.Utterances {
		speaker := names[utt.Speaker]
		if speaker == "" {
			speaker = "Speaker " + utt.Speaker
		}
		out.Segments = append(out.Segments, transcript.Segment{
			ID:      i,
			Start:   float64(utt.StartMS) / 1000.0,
			End:     float64(utt.EndMS) / 1000.0,
			Speaker: speaker,
			Text:    utt.Text,
		})
	}
	return out, nil
}

// identifySpeakers asks the model to map diarization labels to host names.
// A failed or malformed mapping returns nil and the caller falls back to the
// raw labels.
func (s *Service) identifySpeakers(ctx context.Context, episode *corpus.Episode, utterances []assemblyai.Utterance) map[string]string {
	response, err := s.messages.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.cfg.Segments.Model,
		MaxTokens: 1024,
		System:    speakerSystemPrompt(s.cfg.Podcast.Hosts),
		Messages: []anthropic.Message{
			anthropic.TextMessage(anthropic.RoleUser, speakerUserMessage(utterances)),
		},
	})
	if err != nil {
		s.logger.Warn("speaker identification failed, keeping diarization labels",
			logging.String(logging.FieldEpisodeGUID, episode.GUID),
			logging.Error(err))
		return nil
	}
	var mapping map[string]string
	if err := anthropic.DecodeModelJSON(response.TextContent(), &mapping); err != nil {
		s.logger.Warn("speaker mapping was not valid JSON, keeping diarization labels",
			logging.String(logging.FieldEpisodeGUID, episode.GUID),
			logging.Error(err))
		return nil
	}
	return mapping
}

func speakerSystemPrompt(hosts []string) string {
	hostList := strings.Join(hosts, ", ")
	if hostList == "" {
		hostList = "unknown"
	}
	return fmt.Sprintf(`You identify the speakers in a diarized podcast transcript. The regular hosts are %s. Respond with only a JSON object mapping each speaker label (e.g. "A") to the speaker's name. If a speaker is a guest rather than a regular host, use their name if it is mentioned, otherwise keep the label.`, hostList)
}

func speakerUserMessage(utterances []assemblyai.Utterance) string {
	var b strings.Builder
	labels := make(map[string]bool)
	for _, utt := range utterances {
		labels[utt.Speaker] = true
		fmt.Fprintf(&b, "Speaker %s:\n%s\n", utt.Speaker, utt.Text)
	}
	fmt.Fprintf(&b, "\nIdentify all %d speakers and return the JSON mapping.\n", len(labels))
	return b.String()
}
