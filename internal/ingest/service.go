package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gavel/internal/config"
	"gavel/internal/corpus"
	"gavel/internal/logging"
	"gavel/internal/services"
)

// Service ingests feed metadata and fetches episode audio.
type Service struct {
	cfg        *config.Config
	store      *corpus.Store
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the service.
type Option func(*Service)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewService constructs an ingest service.
func NewService(cfg *config.Config, store *corpus.Store, logger *slog.Logger, opts ...Option) *Service {
	timeout := 60 * time.Second
	if cfg != nil && cfg.Feed.RequestTimeout > 0 {
		timeout = time.Duration(cfg.Feed.RequestTimeout) * time.Second
	}
	service := &Service{
		cfg:        cfg,
		store:      store,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "ingest"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// FeedResult summarizes one feed ingestion pass.
type FeedResult struct {
	Seen    int
	Created int
	Updated int
	Skipped int
}

// IngestFeed fetches the configured RSS feed and upserts every episode.
// Re-running over an unchanged feed writes nothing.
func (s *Service) IngestFeed(ctx context.Context) (*FeedResult, error) {
	feedURL := strings.TrimSpace(s.cfg.Feed.URL)
	if feedURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ingest", "feed", "feed url is not configured", nil)
	}

	data, err := s.fetch(ctx, feedURL)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "ingest", "feed", "fetch feed", err)
	}

	episodes, problems := ParseFeed(data, feedURL)
	for _, problem := range problems {
		s.logger.Warn("skipping malformed feed item", logging.Error(problem))
	}
	if len(episodes) == 0 && len(problems) > 0 {
		return nil, services.Wrap(services.ErrValidation, "ingest", "feed", "feed contained no usable items", problems[0])
	}

	result := &FeedResult{Seen: len(episodes), Skipped: len(problems)}
	for _, episode := range episodes {
		existing, err := s.store.EpisodeByGUID(ctx, episode.GUID)
		if err != nil {
			return nil, services.Wrap(nil, "ingest", "feed", "look up episode", err)
		}
		_, changed, err := s.store.UpsertEpisode(ctx, episode)
		if err != nil {
			return nil, services.Wrap(nil, "ingest", "feed", "upsert episode", err)
		}
		switch {
		case existing == nil:
			result.Created++
			s.logger.Info("episode ingested",
				logging.String(logging.FieldEpisodeGUID, episode.GUID),
				logging.String("title", episode.Title))
		case changed:
			result.Updated++
		}
	}

	s.logger.Info("feed ingested",
		logging.Int("seen", result.Seen),
		logging.Int("created", result.Created),
		logging.Int("updated", result.Updated),
		logging.Int("skipped", result.Skipped))
	return result, nil
}

// FetchAudio downloads the episode's audio into the audio directory and
// records the local path. Episodes whose audio already exists are skipped.
func (s *Service) FetchAudio(ctx context.Context, episode *corpus.Episode) (string, bool, error) {
	if episode == nil {
		return "", false, services.Wrap(services.ErrValidation, "fetch-audio", "download", "episode is nil", nil)
	}
	if episode.AudioURL == "" {
		return "", false, services.Wrap(services.ErrValidation, "fetch-audio", "download", "episode has no audio url", nil)
	}

	target := filepath.Join(s.cfg.Paths.AudioDir, audioFileName(episode.GUID))
	if info, err := os.Stat(target); err == nil && info.Size() > 0 {
		if episode.AudioPath != target {
			if err := s.store.SetEpisodeAudioPath(ctx, episode.ID, target); err != nil {
				return "", false, services.Wrap(nil, "fetch-audio", "download", "record audio path", err)
			}
		}
		return target, false, nil
	}

	if err := os.MkdirAll(s.cfg.Paths.AudioDir, 0o755); err != nil {
		return "", false, services.Wrap(nil, "fetch-audio", "download", "ensure audio directory", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, episode.AudioURL, nil)
	if err != nil {
		return "", false, services.Wrap(nil, "fetch-audio", "download", "build request", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", false, services.Wrap(services.ErrExternalService, "fetch-audio", "download", "fetch audio", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", false, services.Wrap(services.ErrExternalService, "fetch-audio", "download",
			fmt.Sprintf("audio fetch returned http %d", resp.StatusCode), nil)
	}

	// Download to a temp file first so a partial fetch never looks complete.
	temp, err := os.CreateTemp(s.cfg.Paths.AudioDir, ".download-*")
	if err != nil {
		return "", false, services.Wrap(nil, "fetch-audio", "download", "create temp file", err)
	}
	tempPath := temp.Name()
	if _, err := io.Copy(temp, resp.Body); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return "", false, services.Wrap(services.ErrExternalService, "fetch-audio", "download", "stream audio", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", false, services.Wrap(nil, "fetch-audio", "download", "close temp file", err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		_ = os.Remove(tempPath)
		return "", false, services.Wrap(nil, "fetch-audio", "download", "finalize audio file", err)
	}

	if err := s.store.SetEpisodeAudioPath(ctx, episode.ID, target); err != nil {
		return "", false, services.Wrap(nil, "fetch-audio", "download", "record audio path", err)
	}
	s.logger.Info("audio fetched",
		logging.String(logging.FieldEpisodeGUID, episode.GUID),
		logging.String("path", target))
	return target, true, nil
}

func (s *Service) fetch(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("feed fetch returned http %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func audioFileName(guid string) string {
	cleaned := unsafeFileChars.ReplaceAllString(guid, "-")
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "episode"
	}
	return cleaned + ".mp3"
}
