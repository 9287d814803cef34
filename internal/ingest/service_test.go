package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gavel/internal/config"
	"gavel/internal/corpus"
	"gavel/internal/logging"
)

func newTestService(t *testing.T, feedBody string, audioBody string) (*Service, *corpus.Store) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedBody))
	})
	mux.HandleFunc("/audio/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(audioBody))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.AudioDir = filepath.Join(dir, "audio")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.ExportDir = filepath.Join(dir, "export")
	cfg.Feed.URL = server.URL + "/feed"

	store, err := corpus.Open(&cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	// Rewrite enclosure URLs in fixtures to point at the test server.
	service := NewService(&cfg, store, logging.NewNop())
	return service, store
}

func feedWithAudioHost(host string) string {
	return `<?xml version="1.0"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <item>
      <guid>guid-one</guid>
      <title>The Court Convenes</title>
      <pubDate>Thu, 05 Sep 2024 10:00:00 -0400</pubDate>
      <itunes:duration>3600</itunes:duration>
      <enclosure url="` + host + `/audio/one.mp3" type="audio/mpeg" length="1"/>
    </item>
  </channel>
</rss>`
}

func TestIngestFeedIsIdempotent(t *testing.T) {
	service, _ := newTestService(t, feedWithAudioHost("https://cdn.example.com"), "")
	ctx := context.Background()

	first, err := service.IngestFeed(ctx)
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if first.Created != 1 || first.Updated != 0 {
		t.Fatalf("first pass: %+v", first)
	}

	second, err := service.IngestFeed(ctx)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if second.Created != 0 || second.Updated != 0 {
		t.Fatalf("second pass should write nothing: %+v", second)
	}
}

func TestFetchAudioDownloadsOnce(t *testing.T) {
	service, store := newTestService(t, "", "mp3-bytes")
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	episode, _, err := store.UpsertEpisode(ctx, &corpus.Episode{
		GUID:     "guid-one",
		Title:    "The Court Convenes",
		PubDate:  mustTime(t, "2024-09-05T14:00:00Z"),
		AudioURL: server.URL + "/one.mp3",
	})
	if err != nil {
		t.Fatalf("seed episode: %v", err)
	}

	path, fetched, err := service.FetchAudio(ctx, episode)
	if err != nil {
		t.Fatalf("fetch audio: %v", err)
	}
	if !fetched {
		t.Fatal("first fetch should download")
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "mp3-bytes" {
		t.Fatalf("audio content = %q, err %v", data, err)
	}

	reloaded, err := store.EpisodeByID(ctx, episode.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.AudioPath != path {
		t.Fatalf("audio path not recorded: %q", reloaded.AudioPath)
	}

	_, fetched, err = service.FetchAudio(ctx, reloaded)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if fetched {
		t.Fatal("second fetch should be skipped")
	}
}

func TestFetchAudioRequiresURL(t *testing.T) {
	service, store := newTestService(t, "", "")
	ctx := context.Background()
	episode, _, err := store.UpsertEpisode(ctx, &corpus.Episode{
		GUID:    "guid-silent",
		Title:   "No Audio",
		PubDate: mustTime(t, "2024-09-05T14:00:00Z"),
	})
	if err != nil {
		t.Fatalf("seed episode: %v", err)
	}
	if _, _, err := service.FetchAudio(ctx, episode); err == nil {
		t.Fatal("expected validation error")
	}
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return parsed
}
