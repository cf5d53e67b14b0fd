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

// Package filingqa wires segmentation, the query interpreter, the vector
// index, hybrid ranking and answer generation into one Engine.
package filingqa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/poiesic/filingqa/ai"
	"github.com/poiesic/filingqa/ai/openai"
	"github.com/poiesic/filingqa/answer"
	"github.com/poiesic/filingqa/config"
	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/index"
	"github.com/poiesic/filingqa/ingestion"
	"github.com/poiesic/filingqa/query"
	"github.com/poiesic/filingqa/search"
	"github.com/poiesic/filingqa/segment"
	"github.com/poiesic/filingqa/storage"
	"github.com/poiesic/filingqa/taxonomy"
)

// ErrConfigRequired is returned by Open without a configuration.
var ErrConfigRequired = errors.New("config required")

// Engine is the filing retrieval system. The current index is swapped
// atomically on rebuild; searches never block on a build.
type Engine struct {
	cfg         *config.Config
	taxonomy    *taxonomy.Taxonomy
	segmenter   *segment.Segmenter
	interpreter *query.Interpreter
	provider    ai.AIProvider
	builder     *index.Builder
	searcher    *search.Searcher
	answerer    *answer.Answerer
	current     atomic.Pointer[index.Index]
	buildMu     sync.Mutex
	base        *slog.Logger
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	provider ai.AIProvider
	progress io.Writer
	logger   *slog.Logger
}

// WithProvider supplies the AI services.
// Default is an OpenAI-compatible provider built from the config's [ai] section.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithProgress reports index build progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *engineOptions) {
		o.progress = w
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// Open assembles an Engine from cfg. No index is loaded; call LoadIndex or
// EnsureReady before searching.
func Open(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	options := &engineOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger

	tax := taxonomy.Default()
	if cfg.Paths.Taxonomy != "" {
		loaded, err := taxonomy.Load(cfg.Paths.Taxonomy)
		if err != nil {
			return nil, err
		}
		tax = loaded
	}

	provider := options.provider
	if provider == nil {
		var err error
		if provider, err = openai.NewProvider(&cfg.AI); err != nil {
			return nil, err
		}
	}

	builderOpts := []index.Option{
		index.WithBatchSize(cfg.Index.BatchSize),
		index.WithRetry(cfg.Index.MaxAttempts, cfg.Index.RetryDelay.Std()),
		index.WithModel(cfg.AI.EmbeddingModel),
		index.WithLogger(logger),
	}
	if options.progress != nil {
		builderOpts = append(builderOpts, index.WithProgress(options.progress))
	}
	builder, err := index.NewBuilder(provider.Embedder(), builderOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		taxonomy: tax,
		segmenter: segment.New(
			segment.WithTaxonomy(tax),
			segment.WithMaxChunkSize(cfg.Segment.MaxChunkSize),
			segment.WithMinLength(cfg.Segment.MinLength),
			segment.WithLogger(logger),
		),
		interpreter: query.New(tax, cfg.Companies),
		provider:    provider,
		builder:     builder,
		base:        logger,
		logger:      logger.With("component", "engine"),
	}

	e.searcher, err = search.NewSearcher(currentIndex{e}, e.interpreter, search.WithLogger(logger))
	if err != nil {
		provider.Close()
		return nil, err
	}
	e.answerer, err = answer.NewAnswerer(e.searcher, provider.Generator(),
		answer.WithCompanies(cfg.Companies), answer.WithLogger(logger))
	if err != nil {
		provider.Close()
		return nil, err
	}
	return e, nil
}

// currentIndex resolves the published index at call time.
type currentIndex struct {
	e *Engine
}

func (c currentIndex) Search(ctx context.Context, q string, topK int) ([]index.Candidate, error) {
	return c.e.current.Load().Search(ctx, q, topK)
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Taxonomy returns the concept taxonomy in use.
func (e *Engine) Taxonomy() *taxonomy.Taxonomy {
	return e.taxonomy
}

// Searcher returns the engine's searcher, for monitored searches.
func (e *Engine) Searcher() *search.Searcher {
	return e.searcher
}

// SegmentDocument splits one filing into chunks.
func (e *Engine) SegmentDocument(doc segment.Document) ([]core.Chunk, error) {
	return e.segmenter.Segment(doc)
}

// ParseQuery interprets a question.
func (e *Engine) ParseQuery(question string) core.QueryIntent {
	return e.interpreter.Parse(question)
}

// Process segments the raw filings of tickers into the processed snapshot.
// With no tickers every configured company is processed.
func (e *Engine) Process(ctx context.Context, tickers ...string) (*ingestion.Result, error) {
	if len(tickers) == 0 {
		tickers = core.Tickers(e.cfg.Companies)
	}
	opts := []ingestion.Option{ingestion.WithLogger(e.base)}
	if e.cfg.Ingestion.Workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(e.cfg.Ingestion.Workers))
	}
	pipeline, err := ingestion.NewPipeline(e.segmenter, e.cfg.Paths.Raw, e.cfg.Paths.Processed, opts...)
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()
	return pipeline.Run(ctx, tickers)
}

// Snapshot reads the processed corpus in file name order. Chunk IDs that
// repeat, as in snapshots written before ingestion renumbered shared
// prefixes, are given fresh ordinals.
func (e *Engine) Snapshot() ([]core.Chunk, error) {
	chunks, err := storage.LoadSnapshot(e.cfg.Paths.Processed, nil)
	if err != nil {
		return nil, err
	}
	chunks, renumbered := core.RenumberDuplicateIDs(chunks)
	if renumbered > 0 {
		e.logger.Warn("renumbered duplicate chunk ids", "chunks", renumbered)
	}
	return chunks, nil
}

// BuildIndex embeds chunks, persists the index and publishes it. The
// previous index keeps serving searches until the new one is persisted;
// on failure it stays in place.
func (e *Engine) BuildIndex(ctx context.Context, chunks []core.Chunk) error {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	if err := core.ValidateCorpus(chunks); err != nil {
		return err
	}
	idx, err := e.builder.Build(ctx, chunks)
	if err != nil {
		return err
	}
	if err := idx.Persist(ctx, e.cfg.Paths.Index); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}
	e.current.Store(idx)
	e.logger.Info("index published", "chunks", idx.Len(), "build", idx.Manifest().BuildID)
	return nil
}

// LoadIndex loads and publishes the persisted index.
func (e *Engine) LoadIndex(ctx context.Context) error {
	idx, err := e.builder.Load(ctx, e.cfg.Paths.Index)
	if err != nil {
		return err
	}
	e.current.Store(idx)
	e.logger.Info("index loaded", "chunks", idx.Len(), "model", idx.Manifest().Model)
	return nil
}

// EnsureReady makes an index available. It loads the persisted index and
// rebuilds from the snapshot when none exists, when the persisted index no
// longer matches the snapshot, or when force is set.
func (e *Engine) EnsureReady(ctx context.Context, force bool) error {
	if !force {
		err := e.LoadIndex(ctx)
		switch {
		case err == nil:
			return e.refreshIfStale(ctx)
		case !errors.Is(err, index.ErrIndexNotFound):
			return err
		}
		e.logger.Info("no usable index, building", "dir", e.cfg.Paths.Index)
	}

	chunks, err := e.Snapshot()
	if err != nil {
		return fmt.Errorf("reading corpus snapshot: %w", err)
	}
	return e.BuildIndex(ctx, chunks)
}

func (e *Engine) refreshIfStale(ctx context.Context) error {
	chunks, err := e.Snapshot()
	if errors.Is(err, storage.ErrNoSnapshot) {
		// Serve the persisted index when the snapshot is gone.
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading corpus snapshot: %w", err)
	}
	if core.Fingerprint(chunks) == e.current.Load().Manifest().Fingerprint {
		return nil
	}
	e.logger.Info("index is stale, rebuilding", "chunks", len(chunks))
	return e.BuildIndex(ctx, chunks)
}

// Ready reports whether an index is published.
func (e *Engine) Ready() bool {
	return e.current.Load().Len() > 0
}

// Search returns the topK ranked results for question.
func (e *Engine) Search(ctx context.Context, question string, topK int) ([]core.SearchResult, error) {
	return e.searcher.Search(ctx, question, topK)
}

// Query is Search returning the parsed intent alongside the results.
func (e *Engine) Query(ctx context.Context, question string, topK int) (*search.Response, error) {
	return e.searcher.Query(ctx, question, topK)
}

// Answer generates a grounded answer to question.
func (e *Engine) Answer(ctx context.Context, question string) (*answer.Result, error) {
	return e.answerer.Answer(ctx, question)
}

// Evaluate answers a batch of questions and summarizes confidence and time.
func (e *Engine) Evaluate(ctx context.Context, questions []string) (*answer.Evaluation, error) {
	return e.answerer.Evaluate(ctx, questions)
}

// Stats describes the published index.
func (e *Engine) Stats() index.Stats {
	return e.current.Load().Stats()
}

// Close releases the AI provider. The engine should not be used afterwards.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
		return err
	}
	return nil
}
