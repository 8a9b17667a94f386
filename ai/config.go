// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

type Config struct {
	// Provider selects the service backend: ProviderOllama or ProviderOpenAI.
	Provider string

	// Host is the base URL of the language-model service.
	// Example: "http://localhost:11434" for a local Ollama server
	Host string

	// APIKey authenticates against hosted OpenAI-compatible services.
	// Local servers ignore it.
	APIKey string

	// EmbeddingModel is the model identifier used for dense embeddings.
	// It must produce core.DenseDimension-sized vectors.
	// Example: "nomic-embed-text"
	EmbeddingModel string

	// GenerationModel is the model identifier used for summaries and captions.
	// Example: "gemma2:2b", "llava"
	GenerationModel string

	// RequestTimeout bounds a single model call. Zero disables the bound.
	// Default: 2 minutes
	RequestTimeout time.Duration
}

type ConfigOption func(*Config)

func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

func WithRequestTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderOllama,
		Host:            "http://localhost:11434",
		EmbeddingModel:  "nomic-embed-text",
		GenerationModel: "gemma2:2b",
		RequestTimeout:  2 * time.Minute,
	}
}

func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *Config) Normalize() {
	c.Host = strings.TrimSuffix(c.Host, "/")
	switch c.Provider {
	case ProviderOpenAI:
		// OpenAI-compatible APIs live under /v1
		if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
			c.Host = c.Host + "/v1"
		}
	case ProviderOllama:
		// The native Ollama API is rooted at the host
		c.Host = strings.TrimSuffix(c.Host, "/v1")
	}
}

func (c *Config) Validate() error {
	// Normalize first to ensure the host is in the correct format
	c.Normalize()

	if c.Provider != ProviderOllama && c.Provider != ProviderOpenAI {
		return errors.New("ai config: Provider must be ollama or openai")
	}
	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.GenerationModel == "" {
		return errors.New("ai config: GenerationModel is required")
	}
	if c.RequestTimeout < 0 {
		return errors.New("ai config: RequestTimeout must not be negative")
	}
	return nil
}
