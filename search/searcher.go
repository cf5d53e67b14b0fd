package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/index"
	"github.com/poiesic/filingqa/rank"
)

// DefaultTopK is the number of results returned when the caller has no preference.
const DefaultTopK = 10

// Retriever returns similarity candidates for a question.
// *index.Index satisfies it.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]index.Candidate, error)
}

// Parser turns a question into a structured intent.
// *query.Interpreter satisfies it.
type Parser interface {
	Parse(question string) core.QueryIntent
}

// Response is a ranked answer to one question together with its intent.
type Response struct {
	Intent  core.QueryIntent    `json:"query_intent"`
	Results []core.SearchResult `json:"results"`
	Elapsed time.Duration       `json:"-"`
}

// Searcher runs questions through the interpreter, the vector index and
// the hybrid ranker.
type Searcher struct {
	retriever Retriever
	parser    Parser
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(retriever Retriever, parser Parser, opts ...Option) (*Searcher, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if parser == nil {
		return nil, ErrParserRequired
	}

	s := &Searcher{
		retriever: retriever,
		parser:    parser,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Search returns up to topK ranked results for question.
func (s *Searcher) Search(ctx context.Context, question string, topK int) ([]core.SearchResult, error) {
	resp, err := s.SearchWithMonitor(ctx, question, topK, nil)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Query is Search returning the parsed intent alongside the results.
func (s *Searcher) Query(ctx context.Context, question string, topK int) (*Response, error) {
	return s.SearchWithMonitor(ctx, question, topK, nil)
}

// SearchWithMonitor searches with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, question string, topK int, monitor SearchMonitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	start := time.Now()

	monitor.Start(question)

	// 1. Interpret the question
	intent := s.parser.Parse(question)
	monitor.AfterIntent(intent)

	// 2. Retrieve the candidate pool
	candidates, err := s.retriever.Search(ctx, question, topK)
	if err != nil {
		s.logger.Error("error querying vector index", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(candidates)

	// 3. Re-rank against the intent
	results := rank.Rank(candidates, intent, topK)
	monitor.Finish(results)

	resp := &Response{
		Intent:  intent,
		Results: results,
		Elapsed: time.Since(start),
	}
	s.logger.Debug("search complete",
		"tickers", intent.Tickers,
		"concepts", intent.Concepts,
		"candidates", len(candidates),
		"results", len(results),
		"elapsed", resp.Elapsed)
	return resp, nil
}
