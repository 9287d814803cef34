package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"gavel/internal/services"
)

const (
	defaultBaseURL      = "https://api.assemblyai.com"
	defaultSpeechModel  = "slam-1"
	defaultPollInterval = 5 * time.Second
	defaultJobTimeout   = 30 * time.Minute
	defaultHTTPTimeout  = 2 * time.Minute
)

// Config captures the runtime settings for the transcription service.
type Config struct {
	APIKey              string
	BaseURL             string
	SpeechModel         string
	ExpectedSpeakers    int
	PollIntervalSeconds int
	TimeoutSeconds      int
}

// Client wraps the AssemblyAI transcription API.
type Client struct {
	cfg          Config
	httpClient   *http.Client
	pollInterval time.Duration
	jobTimeout   time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithPollInterval overrides how often job status is polled (useful for tests).
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithJobTimeout overrides how long a job may poll before giving up.
func WithJobTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.jobTimeout = timeout
		}
	}
}

// NewClient constructs an AssemblyAI client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			APIKey:           strings.TrimSpace(cfg.APIKey),
			BaseURL:          strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			SpeechModel:      strings.TrimSpace(cfg.SpeechModel),
			ExpectedSpeakers: cfg.ExpectedSpeakers,
		},
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		pollInterval: defaultPollInterval,
		jobTimeout:   defaultJobTimeout,
	}
	if cfg.PollIntervalSeconds > 0 {
		client.pollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second
	}
	if cfg.TimeoutSeconds > 0 {
		client.jobTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.SpeechModel == "" {
		client.cfg.SpeechModel = defaultSpeechModel
	}
	return client
}

// TranscribeRequest describes one transcription job over a slice of an
// uploaded audio file. Offsets are in milliseconds from the start of the file.
type TranscribeRequest struct {
	AudioURL         string
	AudioStartFromMS int64
	AudioEndAtMS     int64
}

// Utterance is one diarized speaker turn, with millisecond offsets.
type Utterance struct {
	Speaker string `json:"speaker"`
	StartMS int64  `json:"start"`
	EndMS   int64  `json:"end"`
	Text    string `json:"text"`
}

// Result is a completed transcription.
type Result struct {
	ID         string
	Utterances []Utterance
}

// UploadFile uploads a local audio file and returns the URL usable in a
// transcription job.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", errors.New("assemblyai: api key required")
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("assemblyai: open audio: %w", err)
	}
	defer file.Close()

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "/v2/upload")
	if err != nil {
		return "", fmt.Errorf("assemblyai: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, file)
	if err != nil {
		return "", fmt.Errorf("assemblyai: new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assemblyai: upload: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("assemblyai: read upload response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("assemblyai: upload http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		UploadURL string `json:"upload_url"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("assemblyai: decode upload response: %w", err)
	}
	if parsed.UploadURL == "" {
		return "", errors.New("assemblyai: empty upload url")
	}
	return parsed.UploadURL, nil
}

// Transcribe submits a diarized transcription job and polls it to completion.
func (c *Client) Transcribe(ctx context.Context, request TranscribeRequest) (*Result, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("assemblyai: api key required")
	}
	if strings.TrimSpace(request.AudioURL) == "" {
		return nil, errors.New("assemblyai: audio url required")
	}

	jobID, err := c.submit(ctx, request)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, jobID)
}

type transcriptJob struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	Error      string      `json:"error"`
	Utterances []Utterance `json:"utterances"`
}

func (c *Client) submit(ctx context.Context, request TranscribeRequest) (string, error) {
	payload := map[string]any{
		"audio_url":      request.AudioURL,
		"speech_model":   c.cfg.SpeechModel,
		"speaker_labels": true,
	}
	if c.cfg.ExpectedSpeakers > 0 {
		payload["speakers_expected"] = c.cfg.ExpectedSpeakers
	}
	if request.AudioStartFromMS > 0 {
		payload["audio_start_from"] = request.AudioStartFromMS
	}
	if request.AudioEndAtMS > 0 {
		payload["audio_end_at"] = request.AudioEndAtMS
	}

	job, err := c.callAPI(ctx, http.MethodPost, "/v2/transcript", payload)
	if err != nil {
		return "", err
	}
	if job.ID == "" {
		return "", errors.New("assemblyai: submit returned no job id")
	}
	return job.ID, nil
}

func (c *Client) poll(ctx context.Context, jobID string) (*Result, error) {
	deadline := time.Now().Add(c.jobTimeout)
	for {
		job, err := c.callAPI(ctx, http.MethodGet, "/v2/transcript/"+jobID, nil)
		if err != nil {
			return nil, err
		}
		switch job.Status {
		case "completed":
			return &Result{ID: job.ID, Utterances: job.Utterances}, nil
		case "error":
			return nil, fmt.Errorf("assemblyai: transcription failed: %s", job.Error)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: assemblyai: job %s timed out after %s", services.ErrTimeout, jobID, c.jobTimeout)
		}
		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) callAPI(ctx context.Context, method, path string, payload any) (*transcriptJob, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, path)
	if err != nil {
		return nil, fmt.Errorf("assemblyai: build url: %w", err)
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("assemblyai: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("assemblyai: new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assemblyai: request failed: %w", err)
	}
	defer resp.Body.Close()
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("assemblyai: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("assemblyai: http %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var job transcriptJob
	if err := json.Unmarshal(responseBody, &job); err != nil {
		return nil, fmt.Errorf("assemblyai: decode response: %w", err)
	}
	return &job, nil
}
