package assemblyai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gavel/internal/services"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL, ExpectedSpeakers: 3},
		WithPollInterval(time.Millisecond),
	)
}

func TestTranscribeSubmitsAndPolls(t *testing.T) {
	var submitted map[string]any
	var polls int
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			t.Error("missing authorization header")
		}
		if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
			t.Errorf("decode submit: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-1", "status": "queued"})
	})
	mux.HandleFunc("GET /v2/transcript/job-1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 3 {
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-1", "status": "processing"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "job-1",
			"status": "completed",
			"utterances": []map[string]any{
				{"speaker": "A", "start": 330000, "end": 335000, "text": "Order in the court."},
			},
		})
	})

	client := newTestClient(t, mux)
	result, err := client.Transcribe(context.Background(), TranscribeRequest{
		AudioURL:         "https://cdn.example.com/audio.mp3",
		AudioStartFromMS: 300000,
		AudioEndAtMS:     1500000,
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if polls != 3 {
		t.Fatalf("polls = %d, want 3", polls)
	}
	if len(result.Utterances) != 1 || result.Utterances[0].Speaker != "A" {
		t.Fatalf("unexpected utterances: %+v", result.Utterances)
	}

	if submitted["speech_model"] != "slam-1" {
		t.Errorf("speech_model = %v", submitted["speech_model"])
	}
	if submitted["speaker_labels"] != true {
		t.Error("speaker_labels not set")
	}
	if submitted["speakers_expected"] != float64(3) {
		t.Errorf("speakers_expected = %v", submitted["speakers_expected"])
	}
	if submitted["audio_start_from"] != float64(300000) || submitted["audio_end_at"] != float64(1500000) {
		t.Errorf("audio range = %v..%v", submitted["audio_start_from"], submitted["audio_end_at"])
	}
}

func TestTranscribeReportsJobError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-2", "status": "queued"})
	})
	mux.HandleFunc("GET /v2/transcript/job-2", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "job-2", "status": "error", "error": "audio unreadable",
		})
	})

	client := newTestClient(t, mux)
	_, err := client.Transcribe(context.Background(), TranscribeRequest{AudioURL: "https://x/audio.mp3"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestTranscribeRespectsContextCancellation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-3", "status": "queued"})
	})
	mux.HandleFunc("GET /v2/transcript/job-3", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-3", "status": "processing"})
	})

	client := newTestClient(t, mux)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Transcribe(ctx, TranscribeRequest{AudioURL: "https://x/audio.mp3"})
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestTranscribeTimesOutStalledJob(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-4", "status": "queued"})
	})
	mux.HandleFunc("GET /v2/transcript/job-4", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-4", "status": "processing"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL},
		WithPollInterval(time.Millisecond),
		WithJobTimeout(10*time.Millisecond),
	)

	_, err := client.Transcribe(context.Background(), TranscribeRequest{AudioURL: "https://x/audio.mp3"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("err = %v, want timeout marker", err)
	}
}

func TestUploadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(path, []byte("mp3-bytes"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/upload", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"upload_url": "https://cdn.assemblyai.com/upload/abc"})
	})

	client := newTestClient(t, mux)
	uploadURL, err := client.UploadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if uploadURL != "https://cdn.assemblyai.com/upload/abc" {
		t.Fatalf("upload url = %q", uploadURL)
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.Transcribe(context.Background(), TranscribeRequest{AudioURL: "x"}); err == nil {
		t.Fatal("expected api key error")
	}
}
