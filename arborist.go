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


// Package arborist indexes directory trees for natural-language search.
//
// Open wires the configured collaborators: the summary cache, the language
// model provider and the vector store. Scan walks a directory, summarizes and
// embeds each file, and writes one point per file. Query ranks indexed files
// against a question.
//
//	cfg, _, err := config.LoadOrCreate("")
//	a, err := arborist.Open(ctx, cfg)
//	defer a.Close()
//
//	result, report, err := a.Scan(ctx, "/home/me/Documents", false)
//	results, err := a.Query(ctx, "quarterly report")
package arborist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/arborist/ai"
	"github.com/poiesic/arborist/ai/ollama"
	"github.com/poiesic/arborist/ai/openai"
	"github.com/poiesic/arborist/chunk"
	"github.com/poiesic/arborist/config"
	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/extract"
	"github.com/poiesic/arborist/ingestion"
	"github.com/poiesic/arborist/scan"
	"github.com/poiesic/arborist/search"
	"github.com/poiesic/arborist/storage"
	"github.com/poiesic/arborist/storage/badger"
	"github.com/poiesic/arborist/storage/qdrant"
	"github.com/poiesic/arborist/summary"
)

// ErrEmbeddingModelChanged is returned by Open when the collection was built
// with a different embedding model than the one configured.
var ErrEmbeddingModelChanged = errors.New("embedding model changed since the collection was built")

type Arborist struct {
	cfg       *config.Config
	store     storage.IndexStore
	cache     storage.SummaryRepository
	provider  ai.AIProvider
	extractor summary.Extractor
	tokenizer chunk.Tokenizer
	logger    *slog.Logger
}

type Option func(*openOptions)

type openOptions struct {
	store     storage.IndexStore
	cache     storage.SummaryRepository
	provider  ai.AIProvider
	extractor summary.Extractor
	logger    *slog.Logger
}

// WithIndexStore uses store instead of connecting to Qdrant.
func WithIndexStore(store storage.IndexStore) Option {
	return func(o *openOptions) {
		o.store = store
	}
}

// WithAIProvider uses provider instead of the configured language-model service.
func WithAIProvider(provider ai.AIProvider) Option {
	return func(o *openOptions) {
		o.provider = provider
	}
}

// WithSummaryRepository uses repo instead of the on-disk summary cache.
func WithSummaryRepository(repo storage.SummaryRepository) Option {
	return func(o *openOptions) {
		o.cache = repo
	}
}

// WithExtractor replaces the content extractor.
func WithExtractor(extractor summary.Extractor) Option {
	return func(o *openOptions) {
		o.extractor = extractor
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *openOptions) {
		o.logger = logger
	}
}

// Open validates cfg and connects every collaborator. It ensures the
// collection exists and that it was built with the configured embedding model.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Arborist, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &openOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	a := &Arborist{
		cfg:       cfg,
		store:     o.store,
		cache:     o.cache,
		provider:  o.provider,
		extractor: o.extractor,
		logger:    o.logger,
	}

	if err := a.connect(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Arborist) connect(ctx context.Context) error {
	var err error

	if a.cache == nil {
		dir, err := a.cfg.ResolvedCacheDir()
		if err != nil {
			return err
		}
		if a.cache, err = badger.OpenSummaryRepository(dir); err != nil {
			return fmt.Errorf("opening summary cache at %s: %w", dir, err)
		}
	}

	if a.provider == nil {
		if a.provider, err = newProvider(a.cfg); err != nil {
			return err
		}
	}

	if a.store == nil {
		a.store, err = qdrant.NewStore(
			qdrant.WithURL(a.cfg.DBURL),
			qdrant.WithAPIKey(a.cfg.APIKey),
			qdrant.WithCollection(a.cfg.CollectionName),
			qdrant.WithSearchEffort(a.cfg.Query.SearchEffort),
			qdrant.WithLogger(a.logger),
		)
		if err != nil {
			return err
		}
	}

	if a.extractor == nil {
		a.extractor = extract.New(
			extract.WithPandocPath(a.cfg.Scan.PandocPath),
			extract.WithLogger(a.logger),
		)
	}

	a.tokenizer = a.newTokenizer()

	if err := a.store.EnsureCollection(ctx); err != nil {
		return err
	}
	return a.checkEmbeddingModel(ctx)
}

// checkEmbeddingModel records the embedding model on first use and refuses
// to continue if a different one is configured later.
func (a *Arborist) checkEmbeddingModel(ctx context.Context) error {
	key := storage.MetaEmbeddingModel + ":" + a.cfg.CollectionName
	want := a.cfg.LLM.EmbeddingModel

	got, err := a.cache.GetMeta(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return a.cache.SetMeta(ctx, key, want)
	case err != nil:
		return fmt.Errorf("reading collection metadata: %w", err)
	case got != want:
		return fmt.Errorf("%w: collection %q uses %q, config has %q", ErrEmbeddingModelChanged, a.cfg.CollectionName, got, want)
	}
	return nil
}

func (a *Arborist) newTokenizer() chunk.Tokenizer {
	name := a.cfg.Scan.Tokenizer
	if name == chunk.WhitespaceTokenizerName {
		return chunk.WhitespaceTokenizer{}
	}
	tokenizer, err := chunk.NewTokenizer(name)
	if err != nil {
		a.logger.Warn("tokenizer unavailable, counting whitespace-separated words", "tokenizer", name, "err", err)
		return chunk.WhitespaceTokenizer{}
	}
	return tokenizer
}

func newProvider(cfg *config.Config) (ai.AIProvider, error) {
	aiConfig := ai.NewConfig(
		ai.WithProvider(cfg.LLM.Provider),
		ai.WithHost(cfg.LLM.Host),
		ai.WithAPIKey(cfg.LLM.APIKey),
		ai.WithEmbeddingModel(cfg.LLM.EmbeddingModel),
		ai.WithGenerationModel(cfg.Scan.ModelName),
		ai.WithRequestTimeout(cfg.LLM.RequestTimeout()),
	)
	if cfg.LLM.Provider == ai.ProviderOpenAI {
		return openai.NewProvider(aiConfig)
	}
	return ollama.NewProvider(aiConfig)
}

func (a *Arborist) NewScanner() *scan.Scanner {
	return scan.NewScanner(
		scan.WithMaxDepth(a.cfg.Scan.MaxDepth),
		scan.WithSkipHidden(a.cfg.Scan.SkipHidden),
		scan.WithExcludeDirs(a.cfg.Scan.ExcludeDirs),
		scan.WithLogger(a.logger),
	)
}

func (a *Arborist) NewSummarizer() *summary.Summarizer {
	return summary.New(a.provider.Generator(), a.extractor,
		summary.WithCache(a.cache),
		summary.WithModel(a.cfg.Scan.ModelName),
		summary.WithMaxContentChars(a.cfg.Scan.MaxContentChars),
		summary.WithLogger(a.logger),
	)
}

func (a *Arborist) NewChunker() (*chunk.Chunker, error) {
	lo, hi, err := a.cfg.Scan.TokenWindow()
	if err != nil {
		return nil, err
	}
	return chunk.New(a.tokenizer, lo, hi)
}

// NewPipeline creates an indexing pipeline. opts are applied after the
// configured defaults. The caller must Release it.
func (a *Arborist) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	chunker, err := a.NewChunker()
	if err != nil {
		return nil, err
	}
	defaults := []ingestion.Option{
		ingestion.WithLogger(a.logger),
		ingestion.WithMaxRetries(a.cfg.Scan.MaxRetries),
		ingestion.WithFileTimeout(a.cfg.Scan.FileTimeout()),
	}
	return ingestion.NewPipeline(a.store, a.NewSummarizer(), chunker, a.provider, append(defaults, opts...)...)
}

// NewQueryEngine creates a query engine. opts are applied after the
// configured defaults.
func (a *Arborist) NewQueryEngine(opts ...search.Option) (*search.Engine, error) {
	mode, err := search.ParseMode(a.cfg.Query.Mode)
	if err != nil {
		return nil, err
	}
	defaults := []search.Option{
		search.WithLimit(a.cfg.Query.TopKResults),
		search.WithMode(mode),
		search.WithSearchEffort(a.cfg.Query.SearchEffort),
		search.WithLogger(a.logger),
	}
	return search.NewEngine(a.store, a.provider, append(defaults, opts...)...)
}

// Scan walks root and indexes every file found.
func (a *Arborist) Scan(ctx context.Context, root string, force bool, opts ...ingestion.Option) (*scan.Result, *ingestion.Report, error) {
	result, err := a.NewScanner().Scan(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Info("scan complete", "root", result.Root, "files", result.FileCount(), "folders", result.FolderCount())

	pipeline, err := a.NewPipeline(append([]ingestion.Option{ingestion.WithForce(force)}, opts...)...)
	if err != nil {
		return result, nil, err
	}
	defer pipeline.Release()

	report, err := pipeline.Run(ctx, result)
	if err != nil {
		return result, nil, err
	}
	return result, report, nil
}

// Query ranks indexed files against text using the configured mode and limit.
func (a *Arborist) Query(ctx context.Context, text string, opts ...search.Option) ([]*core.SearchResult, error) {
	engine, err := a.NewQueryEngine(opts...)
	if err != nil {
		return nil, err
	}
	return engine.Query(ctx, text)
}

// Close releases every collaborator, including ones passed in as options.
func (a *Arborist) Close() error {
	var errs []error
	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("error closing index store", "err", err)
			errs = append(errs, err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("error closing summary cache", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
