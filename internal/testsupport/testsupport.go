// Package testsupport provides per-test constructors for configuration and
// the corpus store, each rooted in a throwaway temp directory.
package testsupport

import (
	"path/filepath"
	"testing"

	"gavel/internal/config"
	"gavel/internal/corpus"
)

// NewConfig returns a validated config rooted in t.TempDir, with API keys
// stubbed so Validate passes.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.AudioDir = filepath.Join(dir, "audio")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.ExportDir = filepath.Join(dir, "export")
	cfg.Feed.URL = "https://feeds.example/test.rss"
	cfg.Anthropic.APIKey = "test-anthropic-key"
	cfg.Transcriber.APIKey = "test-assemblyai-key"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config does not validate: %v", err)
	}
	return &cfg
}

// MustOpenStore opens the corpus store for a test config and closes it when
// the test ends.
func MustOpenStore(t *testing.T, cfg *config.Config) *corpus.Store {
	t.Helper()
	store, err := corpus.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
