// Package config loads and persists arborist's TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	appName        = "arborist"
	configFileName = "config.toml"

	// APIKeyEnv overrides the vector store API key from the environment.
	APIKeyEnv = "QDRANT_API_KEY"
	// DBURLEnv overrides the vector store URL from the environment.
	DBURLEnv = "ARBORIST_DB_URL"
	// LLMAPIKeyEnv supplies the key for hosted OpenAI-compatible services.
	LLMAPIKeyEnv = "OPENAI_API_KEY"
)

var (
	// ErrInvalidConfig indicates a configuration value failed validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the on-disk configuration.
type Config struct {
	DBURL          string      `toml:"db_url"`
	APIKey         string      `toml:"api_key,omitempty"`
	CollectionName string      `toml:"collection_name"`
	CacheDir       string      `toml:"cache_dir,omitempty"`
	LLM            LLMConfig   `toml:"llm"`
	Scan           ScanConfig  `toml:"scan"`
	Query          QueryConfig `toml:"query"`
}

// LLMConfig selects the language-model service used for summaries and embeddings.
type LLMConfig struct {
	Provider           string `toml:"provider"`
	Host               string `toml:"host"`
	APIKey             string `toml:"api_key,omitempty"`
	EmbeddingModel     string `toml:"embedding_model"`
	RequestTimeoutSecs int    `toml:"request_timeout_secs"`
}

// ScanConfig controls the scan command.
type ScanConfig struct {
	MaxTokens       []int    `toml:"max_tokens"`
	ModelName       string   `toml:"model_name"`
	Tokenizer       string   `toml:"tokenizer"`
	MaxDepth        int      `toml:"max_depth"`
	SkipHidden      bool     `toml:"skip_hidden"`
	ExcludeDirs     []string `toml:"exclude_dirs"`
	MaxContentChars int      `toml:"max_content_chars"`
	MaxRetries      int      `toml:"max_retries"`
	FileTimeoutSecs int      `toml:"file_timeout_secs"`
	PandocPath      string   `toml:"pandoc_path"`
}

// QueryConfig controls the query command.
type QueryConfig struct {
	TopKResults  int    `toml:"top_k_results"`
	SearchEffort uint64 `toml:"hnsw_ef"`
	Mode         string `toml:"mode"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		DBURL:          "http://localhost:6334",
		CollectionName: "file_data",
		LLM: LLMConfig{
			Provider:           "ollama",
			Host:               "http://localhost:11434",
			EmbeddingModel:     "nomic-embed-text",
			RequestTimeoutSecs: 120,
		},
		Scan: ScanConfig{
			MaxTokens:       []int{20, 40},
			ModelName:       "gemma2:2b",
			Tokenizer:       "cl100k_base",
			MaxDepth:        10,
			SkipHidden:      true,
			ExcludeDirs:     []string{"node_modules", "downloaded-torrents", "target", "build", "dist", ".git"},
			MaxContentChars: 32000,
			MaxRetries:      3,
			FileTimeoutSecs: 300,
			PandocPath:      "pandoc",
		},
		Query: QueryConfig{
			TopKResults:  5,
			SearchEffort: 128,
			Mode:         "dense",
		},
	}
}

// DefaultPath returns <user config dir>/arborist/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// DefaultCacheDir returns <user cache dir>/arborist.
func DefaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache directory: %w", err)
	}
	return filepath.Join(dir, appName), nil
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		slog.Warn("ignoring unknown config keys", "path", path, "keys", undecoded)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrCreate loads the file at path, writing the defaults there first if it does not exist.
// An empty path means DefaultPath.
func LoadOrCreate(path string) (*Config, string, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, "", err
		}
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, path, err
		}
		if err := Default().Save(path); err != nil {
			return nil, path, err
		}
		slog.Info("default config file created", "path", path)
	}

	cfg, err := Load(path)
	return cfg, path, err
}

// Save writes the configuration as TOML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return f.Close()
}

func (c *Config) applyEnv() {
	if v := os.Getenv(APIKeyEnv); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(DBURLEnv); v != "" {
		c.DBURL = v
	}
	if v := os.Getenv(LLMAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
}

// Validate reports the first invalid value.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBURL) == "" {
		return fmt.Errorf("%w: db_url is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.CollectionName) == "" {
		return fmt.Errorf("%w: collection_name is required", ErrInvalidConfig)
	}
	if _, _, err := c.Scan.TokenWindow(); err != nil {
		return err
	}
	if c.Scan.ModelName == "" {
		return fmt.Errorf("%w: scan.model_name is required", ErrInvalidConfig)
	}
	if c.Scan.MaxDepth < 0 {
		return fmt.Errorf("%w: scan.max_depth must not be negative", ErrInvalidConfig)
	}
	if c.Scan.MaxRetries < 1 {
		return fmt.Errorf("%w: scan.max_retries must be at least 1", ErrInvalidConfig)
	}
	if c.Query.TopKResults < 1 {
		return fmt.Errorf("%w: query.top_k_results must be at least 1", ErrInvalidConfig)
	}
	switch c.Query.Mode {
	case "dense", "sparse", "hybrid":
	default:
		return fmt.Errorf("%w: query.mode must be one of dense, sparse, hybrid (got %q)", ErrInvalidConfig, c.Query.Mode)
	}
	switch c.LLM.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("%w: llm.provider must be ollama or openai (got %q)", ErrInvalidConfig, c.LLM.Provider)
	}
	if c.LLM.Host == "" {
		return fmt.Errorf("%w: llm.host is required", ErrInvalidConfig)
	}
	if c.LLM.EmbeddingModel == "" {
		return fmt.Errorf("%w: llm.embedding_model is required", ErrInvalidConfig)
	}
	return nil
}

// TokenWindow returns the chunk token window as (min, max).
func (s ScanConfig) TokenWindow() (int, int, error) {
	if len(s.MaxTokens) != 2 {
		return 0, 0, fmt.Errorf("%w: scan.max_tokens must be [min, max]", ErrInvalidConfig)
	}
	lo, hi := s.MaxTokens[0], s.MaxTokens[1]
	if lo < 1 || hi < lo {
		return 0, 0, fmt.Errorf("%w: scan.max_tokens requires 0 < min <= max (got [%d, %d])", ErrInvalidConfig, lo, hi)
	}
	return lo, hi, nil
}

// RequestTimeout returns the per-request timeout for language-model calls.
func (l LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(l.RequestTimeoutSecs) * time.Second
}

// FileTimeout returns the time budget for processing one file.
func (s ScanConfig) FileTimeout() time.Duration {
	return time.Duration(s.FileTimeoutSecs) * time.Second
}

// ResolvedCacheDir returns CacheDir, or DefaultCacheDir when unset.
func (c *Config) ResolvedCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	return DefaultCacheDir()
}
