package answer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/poiesic/filingqa/ai"
	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/search"
)

const (
	// DefaultTopK is the number of results retrieved per question.
	DefaultTopK = 12

	// NoInformationAnswer is returned when retrieval finds nothing.
	NoInformationAnswer = "No relevant SEC filing information found."
)

// Retriever runs a question through search and returns the intent with the results.
// *search.Searcher satisfies it.
type Retriever interface {
	Query(ctx context.Context, question string, topK int) (*search.Response, error)
}

// Source describes one retrieved result cited by an answer.
type Source struct {
	ID      int     `json:"id"`
	Company string  `json:"company"`
	Filing  string  `json:"filing"`
	Section string  `json:"section"`
	Score   float64 `json:"score"`
}

// Result is a generated answer with its provenance.
type Result struct {
	Question   string        `json:"question"`
	Answer     string        `json:"answer"`
	Sources    []Source      `json:"sources"`
	Confidence float64       `json:"confidence"`
	Elapsed    time.Duration `json:"-"`
	Companies  []string      `json:"companies"`
}

// Answerer grounds generated answers in retrieved filing passages.
type Answerer struct {
	retriever Retriever
	generator ai.Generator
	names     map[string]string
	topK      int
	logger    *slog.Logger
}

// Option configures an Answerer.
type Option func(*Answerer) error

// WithCompanies sets the display names used in prompts and sources.
// Default is core.DefaultCompanies().
func WithCompanies(companies []core.Company) Option {
	return func(a *Answerer) error {
		if len(companies) > 0 {
			a.names = core.CompanyNames(companies)
		}
		return nil
	}
}

// WithTopK sets the number of results retrieved per question.
func WithTopK(k int) Option {
	return func(a *Answerer) error {
		if k < 1 {
			return fmt.Errorf("top k must be positive, got %d", k)
		}
		a.topK = k
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnswerer creates an Answerer.
func NewAnswerer(retriever Retriever, generator ai.Generator, opts ...Option) (*Answerer, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	a := &Answerer{
		retriever: retriever,
		generator: generator,
		names:     core.CompanyNames(core.DefaultCompanies()),
		topK:      DefaultTopK,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.logger = a.logger.With("component", "answerer")
	return a, nil
}

// Answer retrieves context for question and asks the generator for an answer.
// When nothing is retrieved the generator is not called and the fixed
// NoInformationAnswer is returned with zero confidence.
func (a *Answerer) Answer(ctx context.Context, question string) (*Result, error) {
	start := time.Now()

	resp, err := a.retriever.Query(ctx, question, a.topK)
	if err != nil {
		return nil, err
	}

	if len(resp.Results) == 0 {
		a.logger.Info("no results for question", "question", question)
		return &Result{
			Question:  question,
			Answer:    NoInformationAnswer,
			Sources:   []Source{},
			Elapsed:   time.Since(start),
			Companies: []string{},
		}, nil
	}

	prompt := BuildPrompt(question, resp.Results, a.names)
	text, err := a.generator.Generate(ctx, SystemPrompt, prompt)
	if err != nil {
		a.logger.Error("error generating answer", "err", err)
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	sources := make([]Source, len(resp.Results))
	for i, r := range resp.Results {
		sources[i] = Source{
			ID:      i + 1,
			Company: fmt.Sprintf("%s (%s)", companyName(a.names, r.Ticker), r.Ticker),
			Filing:  r.FilingType,
			Section: r.Section,
			Score:   math.Round(r.FinalScore*1000) / 1000,
		}
	}

	result := &Result{
		Question:   question,
		Answer:     text,
		Sources:    sources,
		Confidence: Confidence(resp.Results, resp.Intent),
		Elapsed:    time.Since(start),
		Companies:  Companies(resp.Results),
	}
	a.logger.Debug("answered question",
		"sources", len(sources),
		"confidence", result.Confidence,
		"elapsed", result.Elapsed)
	return result, nil
}
