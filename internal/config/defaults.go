package config

const (
	defaultDataDir   = "~/.local/share/gavel/data"
	defaultAudioDir  = "~/.local/share/gavel/audio"
	defaultLogDir    = "~/.local/share/gavel/logs"
	defaultExportDir = "~/.local/share/gavel/export"

	defaultFeedURL            = "https://feeds.megaphone.fm/ringer-fantasy-football-show"
	defaultFeedRequestTimeout = 30

	defaultShowName    = "The Ringer Fantasy Football Show"
	defaultSegmentName = "Fantasy Court"

	defaultAnthropicBaseURL        = "https://api.anthropic.com"
	defaultAnthropicTimeoutSeconds = 600

	defaultTranscriberBaseURL      = "https://api.assemblyai.com"
	defaultTranscriberSpeechModel  = "slam-1"
	defaultTranscriberBuffer       = 30
	defaultTranscriberSpeakers     = 3
	defaultTranscriberPollInterval = 5
	defaultTranscriberTimeout      = 1800

	defaultSegmentsModel = "claude-haiku-4-5"

	defaultExtractionModel         = "claude-sonnet-4-5"
	defaultExtractionMaxUtterances = 400

	defaultDraftingModel          = "claude-sonnet-4-5"
	defaultDraftingMaxTurns       = 20
	defaultDraftingMaxTokens      = 24000
	defaultDraftingThinkingBudget = 16000

	defaultWatchIntervalSeconds = 1800
	defaultErrorRetrySeconds    = 60

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			AudioDir:  defaultAudioDir,
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
		},
		Feed: Feed{
			URL:            defaultFeedURL,
			RequestTimeout: defaultFeedRequestTimeout,
		},
		Podcast: Podcast{
			ShowName:    defaultShowName,
			SegmentName: defaultSegmentName,
			Hosts:       []string{"Danny Heifetz", "Danny Kelly", "Craig Horlbeck"},
		},
		Anthropic: Anthropic{
			BaseURL:        defaultAnthropicBaseURL,
			TimeoutSeconds: defaultAnthropicTimeoutSeconds,
		},
		Transcriber: Transcriber{
			BaseURL:             defaultTranscriberBaseURL,
			SpeechModel:         defaultTranscriberSpeechModel,
			BufferSeconds:       defaultTranscriberBuffer,
			ExpectedSpeakers:    defaultTranscriberSpeakers,
			PollIntervalSeconds: defaultTranscriberPollInterval,
			TimeoutSeconds:      defaultTranscriberTimeout,
		},
		Segments: Segments{
			Model: defaultSegmentsModel,
		},
		Extraction: Extraction{
			Model:         defaultExtractionModel,
			MaxUtterances: defaultExtractionMaxUtterances,
		},
		Drafting: Drafting{
			Model:          defaultDraftingModel,
			MaxTurns:       defaultDraftingMaxTurns,
			MaxTokens:      defaultDraftingMaxTokens,
			ThinkingBudget: defaultDraftingThinkingBudget,
		},
		Workflow: Workflow{
			WatchIntervalSeconds: defaultWatchIntervalSeconds,
			ErrorRetrySeconds:    defaultErrorRetrySeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
