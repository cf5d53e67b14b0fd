package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/filingqa/ai/mock"
	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/index"
	"github.com/poiesic/filingqa/query"
)

type fakeRetriever struct {
	candidates []index.Candidate
	err        error
	lastQuery  string
	lastTopK   int
}

func (f *fakeRetriever) Search(ctx context.Context, q string, topK int) ([]index.Candidate, error) {
	f.lastQuery = q
	f.lastTopK = topK
	return f.candidates, f.err
}

type recordingMonitor struct {
	stages []string
	intent core.QueryIntent
	pool   int
	final  int
}

func (m *recordingMonitor) Start(string) { m.stages = append(m.stages, "start") }
func (m *recordingMonitor) AfterIntent(intent core.QueryIntent) {
	m.stages = append(m.stages, "intent")
	m.intent = intent
}
func (m *recordingMonitor) AfterVectorSearch(c []index.Candidate) {
	m.stages = append(m.stages, "vector")
	m.pool = len(c)
}
func (m *recordingMonitor) Finish(r []core.SearchResult) {
	m.stages = append(m.stages, "finish")
	m.final = len(r)
}

func candidate(ticker, section string, similarity float64, concepts ...string) index.Candidate {
	if concepts == nil {
		concepts = []string{}
	}
	return index.Candidate{
		Chunk: core.Chunk{
			Content:    ticker + " " + section + " text",
			Ticker:     ticker,
			FilingType: core.FilingType10K,
			Section:    section,
			ChunkID:    core.MakeChunkID(ticker, core.FilingType10K, core.Year(2023), 0),
			Concepts:   concepts,
		},
		Similarity: similarity,
	}
}

func TestNewSearcher(t *testing.T) {
	retriever := &fakeRetriever{}
	parser := query.New(nil, nil)

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(retriever, parser)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(retriever, parser, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil retriever", func(t *testing.T) {
		_, err := NewSearcher(nil, parser)
		assert.Equal(t, ErrRetrieverRequired, err)
	})

	t.Run("nil parser", func(t *testing.T) {
		_, err := NewSearcher(retriever, nil)
		assert.Equal(t, ErrParserRequired, err)
	})
}

func TestSearch_RanksByIntent(t *testing.T) {
	retriever := &fakeRetriever{candidates: []index.Candidate{
		candidate("MSFT", "Business", 0.80),
		candidate("AAPL", "Risk Factors", 0.75, "risk_factors"),
		candidate("NVDA", "Business", 0.70),
	}}
	searcher, err := NewSearcher(retriever, query.New(nil, nil), WithLogger(slog.Default()))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "Apple risk factors", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "AAPL", results[0].Ticker, "metadata agreement lifts the Apple chunk")
	assert.Equal(t, "MSFT", results[1].Ticker)
	assert.Equal(t, "Apple risk factors", retriever.lastQuery)
	assert.Equal(t, 2, retriever.lastTopK)
	assert.GreaterOrEqual(t, results[0].FinalScore, results[1].FinalScore)
}

func TestSearchWithMonitor(t *testing.T) {
	retriever := &fakeRetriever{candidates: []index.Candidate{
		candidate("AAPL", "Business", 0.9),
		candidate("MSFT", "Business", 0.8),
		candidate("NVDA", "Business", 0.7),
	}}
	searcher, err := NewSearcher(retriever, query.New(nil, nil))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	resp, err := searcher.SearchWithMonitor(context.Background(), "Microsoft revenue in 2023", 2, monitor)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "intent", "vector", "finish"}, monitor.stages)
	assert.Equal(t, []string{"MSFT"}, monitor.intent.Tickers)
	assert.Equal(t, 3, monitor.pool)
	assert.Equal(t, 2, monitor.final)
	assert.Equal(t, monitor.intent.Tickers, resp.Intent.Tickers)
	assert.Equal(t, core.SearchTypeHybrid, resp.Intent.Strategy.SearchType)
	assert.Len(t, resp.Results, 2)
}

func TestSearchWithMonitor_LogMonitor(t *testing.T) {
	retriever := &fakeRetriever{candidates: []index.Candidate{candidate("AAPL", "Business", 0.9)}}
	searcher, err := NewSearcher(retriever, query.New(nil, nil))
	require.NoError(t, err)

	resp, err := searcher.SearchWithMonitor(context.Background(), "Apple business", 5, &LogMonitor{})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}

func TestSearch_RetrieverError(t *testing.T) {
	retriever := &fakeRetriever{err: index.ErrIndexNotReady}
	searcher, err := NewSearcher(retriever, query.New(nil, nil))
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "anything", 5)
	assert.True(t, errors.Is(err, index.ErrIndexNotReady))
}

func TestSearch_EmptyPool(t *testing.T) {
	searcher, err := NewSearcher(&fakeRetriever{}, query.New(nil, nil))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_WithIndex(t *testing.T) {
	chunks := []core.Chunk{
		candidate("AAPL", "Risk Factors", 0, "risk_factors").Chunk,
		candidate("MSFT", "Business", 0).Chunk,
	}
	chunks[0].Content = "supply chain risk disruption"
	chunks[1].Content = "cloud services revenue growth"
	chunks[1].ChunkID = core.MakeChunkID("MSFT", core.FilingType10K, core.Year(2023), 1)

	builder, err := index.NewBuilder(mock.NewMockEmbedder())
	require.NoError(t, err)
	idx, err := builder.Build(context.Background(), chunks)
	require.NoError(t, err)

	searcher, err := NewSearcher(idx, query.New(nil, nil))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "cloud revenue growth", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "MSFT", results[0].Ticker)
}
