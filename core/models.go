package core

import (
	"strconv"
	"strings"
)

// Filing types produced by the acquisition service.
const (
	FilingType10K   = "10-K"
	FilingType10Q   = "10-Q"
	FilingType8K    = "8-K"
	FilingTypeProxy = "DEF 14A"
	FilingTypeForm3 = "3"
	FilingTypeForm4 = "4"
	FilingTypeForm5 = "5"
)

// GeneralSection names the single section used when no item header matches.
const GeneralSection = "General Content"

// NoYear is rendered into chunk IDs for documents without an estimated year.
const NoYear = "None"

// Chunk is the atomic retrievable unit of filing text.
// Chunks are immutable once produced by the segmenter.
type Chunk struct {
	Content       string   `json:"content"`
	Ticker        string   `json:"ticker"`
	FilingType    string   `json:"filing_type"`
	Section       string   `json:"section"`
	EstimatedYear *int     `json:"estimated_year"`
	ChunkID       string   `json:"chunk_id"`
	Concepts      []string `json:"financial_concepts"`
	WordCount     int      `json:"word_count"`
}

// MakeChunkID builds the corpus-unique chunk identifier
// {ticker}_{filing_type}_{year}_{ordinal}.
func MakeChunkID(ticker, filingType string, year *int, ordinal int) string {
	y := NoYear
	if year != nil {
		y = strconv.Itoa(*year)
	}
	var sb strings.Builder
	sb.Grow(len(ticker) + len(filingType) + len(y) + 8)
	sb.WriteString(ticker)
	sb.WriteByte('_')
	sb.WriteString(filingType)
	sb.WriteByte('_')
	sb.WriteString(y)
	sb.WriteByte('_')
	sb.WriteString(strconv.Itoa(ordinal))
	return sb.String()
}

// Year returns a pointer to y, for populating nullable year fields.
func Year(y int) *int {
	return &y
}

// Period types recognised in questions.
const (
	PeriodAnnual     = "annual"
	PeriodQuarterly  = "quarterly"
	PeriodRecent     = "recent"
	PeriodHistorical = "historical"
)

// Search modes.
const (
	SearchTypeSemantic = "semantic"
	SearchTypeHybrid   = "hybrid"
)

// TemporalInfo captures the time scope mentioned in a question.
type TemporalInfo struct {
	Years      []int    `json:"years"`
	Quarters   []string `json:"quarters"`
	PeriodType *string  `json:"period_type"`
}

// SearchStrategy describes how a query should be searched.
type SearchStrategy struct {
	SearchType     string         `json:"search_type"`
	Filters        map[string]any `json:"filters"`
	RankingFactors []string       `json:"ranking_factors"`
}

// QueryIntent is the structured interpretation of a free-text question.
// It is created once per query and never persisted.
type QueryIntent struct {
	OriginalQuery    string         `json:"original_query"`
	Tickers          []string       `json:"tickers"`
	Temporal         TemporalInfo   `json:"temporal_info"`
	Concepts         []string       `json:"financial_concepts"`
	RelevantSections []string       `json:"relevant_sections"`
	FilingTypes      []string       `json:"filing_types"`
	Strategy         SearchStrategy `json:"search_strategy"`
}

// SearchResult is a ranked retrieval result.
type SearchResult struct {
	Content         string   `json:"content"`
	Ticker          string   `json:"ticker"`
	FilingType      string   `json:"filing_type"`
	Section         string   `json:"section"`
	ChunkID         string   `json:"chunk_id"`
	Concepts        []string `json:"financial_concepts"`
	SimilarityScore float64  `json:"similarity_score"`
	FinalScore      float64  `json:"final_score"`
}
