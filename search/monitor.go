package search

import (
	"log/slog"

	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/index"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(question string)
	AfterIntent(intent core.QueryIntent)
	AfterVectorSearch(candidates []index.Candidate)
	Finish(results []core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                       {}
func (n *noopMonitor) AfterIntent(_ core.QueryIntent)       {}
func (n *noopMonitor) AfterVectorSearch(_ []index.Candidate) {}
func (n *noopMonitor) Finish(_ []core.SearchResult)         {}

// LogMonitor reports each search stage at debug level.
type LogMonitor struct {
	Logger   *slog.Logger
	question string
}

var _ SearchMonitor = (*LogMonitor)(nil)

func (m *LogMonitor) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *LogMonitor) Start(question string) {
	m.question = question
	m.logger().Debug("search started", "question", question)
}

func (m *LogMonitor) AfterIntent(intent core.QueryIntent) {
	m.logger().Debug("parsed intent",
		"tickers", intent.Tickers,
		"years", intent.Temporal.Years,
		"quarters", intent.Temporal.Quarters,
		"concepts", intent.Concepts,
		"sections", intent.RelevantSections,
		"filingTypes", intent.FilingTypes,
		"strategy", intent.Strategy.SearchType)
}

func (m *LogMonitor) AfterVectorSearch(candidates []index.Candidate) {
	m.logger().Debug("vector candidates", "count", len(candidates))
}

func (m *LogMonitor) Finish(results []core.SearchResult) {
	for i, r := range results {
		m.logger().Debug("result",
			"rank", i+1,
			"chunk", r.ChunkID,
			"similarity", r.SimilarityScore,
			"final", r.FinalScore,
			"matched", MatchedTerms(r.Content, m.question))
	}
}
