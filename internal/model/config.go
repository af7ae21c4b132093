package model

// ValidationPolicy holds the fixed decision thresholds for the lexical
// validation path. They are deployment-level settings, never tuned per
// call.
type ValidationPolicy struct {
	// MinConfidence is the minimum confidence score for a valid verdict
	MinConfidence float64 `yaml:"min_confidence" json:"min_confidence"`

	// MaxHallucinations is the maximum tolerated hallucination count
	MaxHallucinations int `yaml:"max_hallucinations" json:"max_hallucinations"`

	// MaxCitationErrors is the maximum tolerated citation error count
	MaxCitationErrors int `yaml:"max_citation_errors" json:"max_citation_errors"`

	// SupportThreshold is the minimum word-overlap ratio for a claim
	// to count as textually supported
	SupportThreshold float64 `yaml:"support_threshold" json:"support_threshold"`

	// StrictMode enables statistic verification against the source corpus
	StrictMode bool `yaml:"strict_mode" json:"strict_mode"`
}

// DefaultValidationPolicy returns the standard policy constants
func DefaultValidationPolicy() ValidationPolicy {
	return ValidationPolicy{
		MinConfidence:     0.6,
		MaxHallucinations: 2,
		MaxCitationErrors: 1,
		SupportThreshold:  0.3,
		StrictMode:        true,
	}
}

// LLMConfig holds text-generation service configuration
type LLMConfig struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string `yaml:"provider" json:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model" json:"model"`

	// APIKey for OpenAI/Anthropic
	APIKey string `yaml:"api_key,omitempty" json:"-"`

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// Timeout for API requests, in seconds
	Timeout int `yaml:"timeout" json:"timeout"`

	// MaxTokens for response generation
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`
}

// RetrievalConfig holds the retrieval service endpoint configuration
type RetrievalConfig struct {
	BaseURL  string `yaml:"base_url" json:"base_url"`
	TopK     int    `yaml:"top_k" json:"top_k"`
	Timeout  int    `yaml:"timeout" json:"timeout"` // seconds
	CacheDir string `yaml:"cache_dir,omitempty" json:"cache_dir,omitempty"`
	NoCache  bool   `yaml:"no_cache" json:"no_cache"`
}

// ConcurrencyConfig holds worker settings
type ConcurrencyConfig struct {
	// BatchWorkers is the number of concurrent validation workers
	BatchWorkers int `yaml:"batch_workers" json:"batch_workers"`

	// RequestsPerSecond throttles calls per external service host
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`

	// Burst is the limiter burst size
	Burst int `yaml:"burst" json:"burst"`
}

// Config is the top-level OncoGuard configuration
type Config struct {
	// Strategy selects the validation path: "lexical" or "audit"
	Strategy string `yaml:"strategy" json:"strategy"`

	// Mode is the default sanitization mode for the lexical path
	Mode string `yaml:"mode" json:"mode"`

	Policy      ValidationPolicy  `yaml:"policy" json:"policy"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" json:"retrieval"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Strategy: "lexical",
		Mode:     string(ModeFlag),
		Policy:   DefaultValidationPolicy(),
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   30,
			MaxTokens: 1500,
		},
		Retrieval: RetrievalConfig{
			BaseURL: "http://localhost:8900",
			TopK:    5,
			Timeout: 15,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers:      4,
			RequestsPerSecond: 2,
			Burst:             5,
		},
	}
}
