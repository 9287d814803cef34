package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for inconsistencies that would break the
// pipeline at runtime. API keys are deliberately not required here; stages
// that need them fail with a configuration error when they run, so read-only
// commands keep working on an unconfigured install.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Feed.URL) == "" {
		problems = append(problems, "feed.url must be set")
	}
	if c.Feed.RequestTimeout <= 0 {
		problems = append(problems, "feed.request_timeout must be positive")
	}
	if len(c.Podcast.Hosts) == 0 {
		problems = append(problems, "podcast.hosts must list at least one host")
	}
	if c.Transcriber.BufferSeconds < 0 {
		problems = append(problems, "transcriber.buffer_seconds must not be negative")
	}
	if c.Transcriber.ExpectedSpeakers <= 0 {
		problems = append(problems, "transcriber.expected_speakers must be positive")
	}
	if c.Transcriber.PollIntervalSeconds <= 0 {
		problems = append(problems, "transcriber.poll_interval_seconds must be positive")
	}
	if c.Extraction.MaxUtterances <= 0 {
		problems = append(problems, "extraction.max_utterances must be positive")
	}
	if c.Drafting.MaxTurns <= 0 {
		problems = append(problems, "drafting.max_turns must be positive")
	}
	if c.Drafting.MaxTokens <= 0 {
		problems = append(problems, "drafting.max_tokens must be positive")
	}
	if c.Drafting.ThinkingBudget < 0 || c.Drafting.ThinkingBudget >= c.Drafting.MaxTokens {
		problems = append(problems, "drafting.thinking_budget must be non-negative and below drafting.max_tokens")
	}
	if c.Workflow.WatchIntervalSeconds <= 0 {
		problems = append(problems, "workflow.watch_interval_seconds must be positive")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console, json)", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
