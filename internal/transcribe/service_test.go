package transcribe

import (
	"context"
	"strings"
	"testing"

	"gavel/internal/config"
	"gavel/internal/corpus"
	"gavel/internal/logging"
	"gavel/internal/services/anthropic"
	"gavel/internal/services/assemblyai"
)

type fakeTranscriber struct {
	uploadedPath string
	request      assemblyai.TranscribeRequest
	result       *assemblyai.Result
	err          error
}

func (f *fakeTranscriber) UploadFile(_ context.Context, path string) (string, error) {
	f.uploadedPath = path
	return "https://cdn.example/upload/abc", nil
}

func (f *fakeTranscriber) Transcribe(_ context.Context, req assemblyai.TranscribeRequest) (*assemblyai.Result, error) {
	f.request = req
	return f.result, f.err
}

type fakeMessages struct {
	response *anthropic.MessageResponse
	err      error
}

func (f *fakeMessages) CreateMessage(context.Context, anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	return f.response, f.err
}

func textOnly(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Role:       anthropic.RoleAssistant,
		StopReason: anthropic.StopEndTurn,
		Content:    []anthropic.ContentBlock{{Type: anthropic.BlockText, Text: text}},
	}
}

func testEpisodeAndSegment() (*corpus.Episode, *corpus.Segment) {
	episode := &corpus.Episode{
		ID:              1,
		GUID:            "guid-1",
		AudioPath:       "/audio/guid-1.mp3",
		DurationSeconds: 3600,
	}
	segment := &corpus.Segment{ID: 1, EpisodeID: 1, StartTimeS: 1200, EndTimeS: 2400}
	return episode, segment
}

func TestTranscribeSegmentAppliesBufferAndNames(t *testing.T) {
	cfg := config.Default()
	cfg.Transcriber.BufferSeconds = 300
	cfg.Podcast.Hosts = []string{"Danny Heifetz", "Danny Kelly", "Craig Horlbeck"}

	transcriber := &fakeTranscriber{result: &assemblyai.Result{
		ID: "job-1",
		Utterances: []assemblyai.Utterance{
			{Speaker: "A", StartMS: 905_000, EndMS: 910_000, Text: "Welcome back to Fantasy Court."},
			{Speaker: "B", StartMS: 910_000, EndMS: 920_000, Text: "Our first case today."},
		},
	}}
	messages := &fakeMessages{response: textOnly(`{"A": "Danny Heifetz", "B": "Craig Horlbeck"}`)}
	svc := NewService(&cfg, transcriber, messages, logging.NewNop())

	episode, segment := testEpisodeAndSegment()
	result, err := svc.TranscribeSegment(context.Background(), episode, segment)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}

	if transcriber.uploadedPath != "/audio/guid-1.mp3" {
		t.Errorf("uploaded %q", transcriber.uploadedPath)
	}
	if transcriber.request.AudioStartFromMS != 900_000 || transcriber.request.AudioEndAtMS != 2_700_000 {
		t.Errorf("request range = %d..%d ms", transcriber.request.AudioStartFromMS, transcriber.request.AudioEndAtMS)
	}
	if result.ActualStart != 900 || result.ActualEnd != 2700 {
		t.Errorf("actual range = %f..%f", result.ActualStart, result.ActualEnd)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("got %d segments", len(result.Segments))
	}
	if result.Segments[0].Speaker != "Danny Heifetz" || result.Segments[1].Speaker != "Craig Horlbeck" {
		t.Errorf("speakers = %q, %q", result.Segments[0].Speaker, result.Segments[1].Speaker)
	}
	if result.Segments[0].Start != 905 {
		t.Errorf("start = %f", result.Segments[0].Start)
	}
}

func TestTranscribeSegmentClampsToEpisodeBounds(t *testing.T) {
	cfg := config.Default()
	cfg.Transcriber.BufferSeconds = 300

	transcriber := &fakeTranscriber{result: &assemblyai.Result{
		Utterances: []assemblyai.Utterance{{Speaker: "A", StartMS: 0, EndMS: 1000, Text: "Hi."}},
	}}
	messages := &fakeMessages{response: textOnly(`{"A": "Danny Kelly"}`)}
	svc := NewService(&cfg, transcriber, messages, logging.NewNop())

	episode := &corpus.Episode{GUID: "g", AudioPath: "/audio/g.mp3", DurationSeconds: 600}
	segment := &corpus.Segment{StartTimeS: 100, EndTimeS: 550}

	result, err := svc.TranscribeSegment(context.Background(), episode, segment)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if result.ActualStart != 0 || result.ActualEnd != 600 {
		t.Errorf("actual range = %f..%f, want clamped to 0..600", result.ActualStart, result.ActualEnd)
	}
}

func TestTranscribeSegmentFallsBackToLabels(t *testing.T) {
	cfg := config.Default()
	transcriber := &fakeTranscriber{result: &assemblyai.Result{
		Utterances: []assemblyai.Utterance{{Speaker: "A", StartMS: 0, EndMS: 1000, Text: "Hi."}},
	}}
	messages := &fakeMessages{response: textOnly("I cannot tell who is speaking.")}
	svc := NewService(&cfg, transcriber, messages, logging.NewNop())

	episode, segment := testEpisodeAndSegment()
	result, err := svc.TranscribeSegment(context.Background(), episode, segment)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if result.Segments[0].Speaker != "Speaker A" {
		t.Errorf("speaker = %q, want raw label fallback", result.Segments[0].Speaker)
	}
}

func TestTranscribeSegmentValidation(t *testing.T) {
	cfg := config.Default()
	svc := NewService(&cfg, &fakeTranscriber{}, &fakeMessages{}, logging.NewNop())
	ctx := context.Background()

	if _, err := svc.TranscribeSegment(ctx, nil, nil); err == nil {
		t.Error("expected error for nil inputs")
	}

	episode, segment := testEpisodeAndSegment()
	episode.AudioPath = ""
	if _, err := svc.TranscribeSegment(ctx, episode, segment); err == nil {
		t.Error("expected error for missing audio")
	}

	episode.AudioPath = "/audio/x.mp3"
	segment.EndTimeS = segment.StartTimeS
	if _, err := svc.TranscribeSegment(ctx, episode, segment); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestTranscribeSegmentEmptyResultFails(t *testing.T) {
	cfg := config.Default()
	transcriber := &fakeTranscriber{result: &assemblyai.Result{}}
	svc := NewService(&cfg, transcriber, &fakeMessages{response: textOnly("{}")}, logging.NewNop())

	episode, segment := testEpisodeAndSegment()
	_, err := svc.TranscribeSegment(context.Background(), episode, segment)
	if err == nil || !strings.Contains(err.Error(), "no utterances") {
		t.Errorf("err = %v", err)
	}
}
