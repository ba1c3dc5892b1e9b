package config

// Config is the full application configuration.
type Config struct {
	LLM        LLMConfig        `mapstructure:"llm" yaml:"llm"`
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`
	Corpus     CorpusConfig     `mapstructure:"corpus" yaml:"corpus"`
	Logs       LogsConfig       `mapstructure:"logs" yaml:"logs"`
	Workers    int              `mapstructure:"workers" yaml:"workers"`
	LogLevel   string           `mapstructure:"log_level" yaml:"log_level"`
}

// LLMConfig configures the completion endpoint.
type LLMConfig struct {
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	Model          string `mapstructure:"model" yaml:"model"`
	RateLimit      int    `mapstructure:"rate_limit" yaml:"rate_limit"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// TaskConfig holds per-task extraction budgets. Zero values fall back to
// the task's built-in defaults.
type TaskConfig struct {
	ChunkStep  int `mapstructure:"chunk_step" yaml:"chunk_step"`
	MaxChunks  int `mapstructure:"max_chunks" yaml:"max_chunks"`
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// ExtractionConfig groups the budgets for both extraction tasks.
type ExtractionConfig struct {
	Summary TaskConfig `mapstructure:"summary" yaml:"summary"`
	Dates   TaskConfig `mapstructure:"dates" yaml:"dates"`
}

// CorpusConfig locates the document collection on disk.
type CorpusConfig struct {
	Root string `mapstructure:"root" yaml:"root"`
}

// LogsConfig locates the outcome logs. Empty paths fall back to the
// paperdex home directory.
type LogsConfig struct {
	Success string `mapstructure:"success" yaml:"success"`
	Failure string `mapstructure:"failure" yaml:"failure"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			APIKey:         "${OPENAI_API_KEY}",
			Model:          "gpt-4o-mini",
			RateLimit:      60,
			TimeoutSeconds: 120,
		},
		Extraction: ExtractionConfig{
			Summary: TaskConfig{ChunkStep: 300, MaxChunks: 20, MaxRetries: 10},
			Dates:   TaskConfig{ChunkStep: 30, MaxChunks: 20, MaxRetries: 10},
		},
		Corpus:   CorpusConfig{Root: "journals"},
		Logs:     LogsConfig{},
		Workers:  4,
		LogLevel: "info",
	}
}
