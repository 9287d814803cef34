package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	AudioDir  string `toml:"audio_dir"`
	LogDir    string `toml:"log_dir"`
	ExportDir string `toml:"export_dir"`
}

// Feed contains configuration for the podcast RSS feed.
type Feed struct {
	URL            string `toml:"url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Podcast describes the show whose court segment is processed. The host
// names seed speaker identification and the drafting prompts.
type Podcast struct {
	ShowName    string   `toml:"show_name"`
	SegmentName string   `toml:"segment_name"`
	Hosts       []string `toml:"hosts"`
}

// Anthropic contains shared connection settings for the reasoning service.
type Anthropic struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transcriber contains configuration for the transcription service.
type Transcriber struct {
	APIKey              string `toml:"api_key"`
	BaseURL             string `toml:"base_url"`
	SpeechModel         string `toml:"speech_model"`
	BufferSeconds       int    `toml:"buffer_seconds"`
	ExpectedSpeakers    int    `toml:"expected_speakers"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
}

// Segments contains configuration for court-segment detection.
type Segments struct {
	Model string `toml:"model"`
}

// Extraction contains configuration for case extraction.
type Extraction struct {
	Model         string `toml:"model"`
	MaxUtterances int    `toml:"max_utterances"`
}

// Drafting contains configuration for the opinion drafting agent.
type Drafting struct {
	Model          string `toml:"model"`
	MaxTurns       int    `toml:"max_turns"`
	MaxTokens      int    `toml:"max_tokens"`
	ThinkingBudget int    `toml:"thinking_budget"`
}

// Workflow contains configuration for pipeline timing.
type Workflow struct {
	WatchIntervalSeconds int `toml:"watch_interval_seconds"`
	ErrorRetrySeconds    int `toml:"error_retry_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Feed        Feed        `toml:"feed"`
	Podcast     Podcast     `toml:"podcast"`
	Anthropic   Anthropic   `toml:"anthropic"`
	Transcriber Transcriber `toml:"transcriber"`
	Segments    Segments    `toml:"segments"`
	Extraction  Extraction  `toml:"extraction"`
	Drafting    Drafting    `toml:"drafting"`
	Workflow    Workflow    `toml:"workflow"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/gavel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates every configured directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.AudioDir, c.Paths.LogDir, c.Paths.ExportDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the corpus database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "corpus.db")
}

// LockPath returns the pipeline run-lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "gavel.lock")
}

// ExpandPath resolves a leading ~ against the user home directory and
// returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	candidate := strings.TrimSpace(path)
	if candidate == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		candidate = defaultPath
	} else {
		expanded, err := ExpandPath(candidate)
		if err != nil {
			return "", false, err
		}
		candidate = expanded
	}

	info, err := os.Stat(candidate)
	switch {
	case err == nil && info.IsDir():
		return "", false, fmt.Errorf("config path %s is a directory", candidate)
	case err == nil:
		return candidate, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return candidate, false, nil
	default:
		return "", false, fmt.Errorf("stat config: %w", err)
	}
}
