package config

const (
	defaultStateFile          = "~/.local/share/macrowatch/state.json"
	defaultSnapshotDir        = "~/.local/share/macrowatch/runs"
	defaultLogDir             = "~/.local/share/macrowatch/logs"
	defaultCountry            = "united states"
	defaultCurrency           = "USD"
	defaultImportance         = "high"
	defaultCalendarBaseURL    = "https://calendar-api.macrowatch.dev/v1"
	defaultReportsBaseURL     = "https://www.bls.gov"
	defaultSearchURL          = "https://www.reuters.com/site-search/?query="
	defaultProviderTimeout    = 30
	defaultMaxCandidates      = 20
	minCandidateCount         = 5
	defaultBatchSize          = 4
	defaultPreviewChars       = 500
	defaultBodyCapChars       = 12000
	defaultMinBodyChars       = 800
	defaultScoreThreshold     = 6
	defaultMediaTimeout       = 20
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "google/gemini-3-flash-preview"
	defaultLLMTimeoutSeconds  = 60
	defaultNotifyTimeout      = 10
	defaultTickInterval       = 300
	defaultMaxRetries         = 8
	defaultRetryBaseSeconds   = 30
	defaultRetryMaxSeconds    = 3600
	defaultDiscoveryPastDays  = 1
	defaultDiscoveryAheadDays = 1
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

func defaultNameVariants() []string {
	return []string{
		"cpi",
		"consumer price index",
		"inflation rate",
		"core cpi",
		"core inflation",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateFile:   defaultStateFile,
			SnapshotDir: defaultSnapshotDir,
			LogDir:      defaultLogDir,
		},
		Indicator: Indicator{
			Country:      defaultCountry,
			Currency:     defaultCurrency,
			NameVariants: defaultNameVariants(),
			Importance:   defaultImportance,
		},
		Calendar: Calendar{
			BaseURL:        defaultCalendarBaseURL,
			RequestTimeout: defaultProviderTimeout,
		},
		Reports: Reports{
			BaseURL:        defaultReportsBaseURL,
			RequestTimeout: defaultProviderTimeout,
		},
		Media: Media{
			SearchURL:        defaultSearchURL,
			MaxCandidates:    defaultMaxCandidates,
			BatchSize:        defaultBatchSize,
			PreviewChars:     defaultPreviewChars,
			BodyCapChars:     defaultBodyCapChars,
			MinBodyChars:     defaultMinBodyChars,
			ScoreThreshold:   defaultScoreThreshold,
			RequestTimeout:   defaultMediaTimeout,
			FullFetchEnabled: true,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Notify: Notify{
			RequestTimeout: defaultNotifyTimeout,
		},
		Workflow: Workflow{
			TickInterval:       defaultTickInterval,
			MaxRetries:         defaultMaxRetries,
			RetryBaseSeconds:   defaultRetryBaseSeconds,
			RetryMaxSeconds:    defaultRetryMaxSeconds,
			DiscoveryPastDays:  defaultDiscoveryPastDays,
			DiscoveryAheadDays: defaultDiscoveryAheadDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
