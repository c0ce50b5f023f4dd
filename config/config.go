package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"webrag/internal/domain"
)

// Config holds all configuration for webrag.
type Config struct {
	Chunk    ChunkConfig    `yaml:"chunk"`
	Index    IndexConfig    `yaml:"index"`
	Retrieve RetrieveConfig `yaml:"retrieve"`
	Fetch    FetchConfig    `yaml:"fetch"`
	LLM      LLMConfig      `yaml:"llm"`
	Chain    ChainConfig    `yaml:"chain"`
	Eval     EvalConfig     `yaml:"eval"`
	Server   ServerConfig   `yaml:"server"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ChunkConfig sizes are in characters.
type ChunkConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

type IndexConfig struct {
	MaxFeatures int `yaml:"max_features"`
}

type RetrieveConfig struct {
	TopK              int     `yaml:"top_k"`
	MinScoreThreshold float64 `yaml:"min_score_threshold"` // Filter results below this score (0 = disabled)
	CacheSize         int     `yaml:"cache_size"`          // 0 disables the query cache
	CacheTTLSecs      int     `yaml:"cache_ttl_secs"`
}

type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs"`
	UserAgent   string `yaml:"user_agent"`
	MaxBytes    int64  `yaml:"max_bytes"`
}

type LLMConfig struct {
	Provider          string  `yaml:"provider"` // "groq", "openai", "ollama"
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	APIKeyEnv         string  `yaml:"api_key_env"` // Environment variable for API key
	Temperature       float64 `yaml:"temperature"`
	MaxTokens         int     `yaml:"max_tokens"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
}

type ChainConfig struct {
	SummarizeOnIndex bool `yaml:"summarize_on_index"`
}

type EvalConfig struct {
	Datasets         []string `yaml:"datasets"`
	MaxConcurrency   int      `yaml:"max_concurrency"`
	JudgeTemperature float64  `yaml:"judge_temperature"`
	ExperimentPrefix string   `yaml:"experiment_prefix"`
}

type ServerConfig struct {
	Addr               string `yaml:"addr"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

// SearchConfig selects local files for the search command.
type SearchConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunk: ChunkConfig{
			Size:    1000,
			Overlap: 200,
		},
		Index: IndexConfig{
			MaxFeatures: 1000,
		},
		Retrieve: RetrieveConfig{
			TopK:         3,
			CacheSize:    128,
			CacheTTLSecs: 300,
		},
		Fetch: FetchConfig{
			TimeoutSecs: 10,
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			MaxBytes:    10 << 20,
		},
		LLM: LLMConfig{
			Provider:          "groq",
			BaseURL:           "https://api.groq.com/openai/v1",
			Model:             "llama-3.1-8b-instant",
			APIKeyEnv:         "GROQ_API_KEY",
			Temperature:       0.7,
			MaxTokens:         1024,
			TimeoutSecs:       60,
			MaxRetries:        2,
			RequestsPerMinute: 30,
		},
		Chain: ChainConfig{
			SummarizeOnIndex: false,
		},
		Eval: EvalConfig{
			Datasets:         []string{"evals/**/*.yaml"},
			MaxConcurrency:   1,
			JudgeTemperature: 0,
			ExperimentPrefix: "relevance-eval",
		},
		Server: ServerConfig{
			Addr:               "127.0.0.1:8080",
			RequestTimeoutSecs: 120,
		},
		Search: SearchConfig{
			Includes: []string{"**/*.{txt,md,markdown,html,htm}"},
			Excludes: []string{"**/node_modules/", "**/vendor/", "**/.git/"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir looks for webrag.yaml, then .webrag/config.yaml.
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "webrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".webrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Validate rejects settings that would make the pipeline unusable. Errors
// wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Chunk.Size <= 0:
		return fmt.Errorf("%w: chunk.size must be positive, got %d", domain.ErrInvalidConfig, c.Chunk.Size)
	case c.Chunk.Overlap < 0 || c.Chunk.Overlap >= c.Chunk.Size:
		return fmt.Errorf("%w: chunk.overlap must be in [0, %d), got %d", domain.ErrInvalidConfig, c.Chunk.Size, c.Chunk.Overlap)
	case c.Index.MaxFeatures < 1:
		return fmt.Errorf("%w: index.max_features must be at least 1, got %d", domain.ErrInvalidConfig, c.Index.MaxFeatures)
	case c.Retrieve.TopK < 1:
		return fmt.Errorf("%w: retrieve.top_k must be at least 1, got %d", domain.ErrInvalidConfig, c.Retrieve.TopK)
	case c.Retrieve.CacheSize < 0:
		return fmt.Errorf("%w: retrieve.cache_size must not be negative", domain.ErrInvalidConfig)
	case c.Eval.MaxConcurrency < 1:
		return fmt.Errorf("%w: eval.max_concurrency must be at least 1, got %d", domain.ErrInvalidConfig, c.Eval.MaxConcurrency)
	case c.LLM.RequestsPerMinute < 0:
		return fmt.Errorf("%w: llm.requests_per_minute must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func (c RetrieveConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSecs) * time.Second
}

func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// EvalDBPath returns the path to the evaluation run database.
func EvalDBPath(dir string) string {
	return filepath.Join(dir, ".webrag", "evals.db")
}

// EnsureDataDir ensures the .webrag directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".webrag"), 0755)
}
