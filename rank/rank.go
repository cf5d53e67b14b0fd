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

// Package rank fuses vector similarity with metadata relevance.
//
//	metadata = min(1, 0.1 + 0.3 ticker + 0.2 filing type + 0.2 section + 0.1 per shared concept)
//	final    = 0.7 similarity + 0.3 metadata
package rank

import (
	"cmp"
	"slices"
	"strings"

	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/index"
)

// Metadata score components.
const (
	Baseline         = 0.1
	TickerBonus      = 0.3
	FilingTypeBonus  = 0.2
	SectionBonus     = 0.2
	ConceptBonus     = 0.1
	MaxMetadataScore = 1.0
)

// Fusion weights.
const (
	SimilarityWeight = 0.7
	MetadataWeight   = 0.3
)

// MetadataScore scores how well chunk matches intent, in [0.1, 1.0].
// The concept term adds ConceptBonus per shared concept with no cap of
// its own; only the total is clamped.
func MetadataScore(chunk core.Chunk, intent core.QueryIntent) float64 {
	score := Baseline

	if slices.Contains(intent.Tickers, chunk.Ticker) {
		score += TickerBonus
	}
	if slices.Contains(intent.FilingTypes, chunk.FilingType) {
		score += FilingTypeBonus
	}

	section := strings.ToLower(chunk.Section)
	for _, s := range intent.RelevantSections {
		if strings.Contains(section, strings.ToLower(s)) {
			score += SectionBonus
			break
		}
	}

	score += float64(sharedConcepts(chunk.Concepts, intent.Concepts)) * ConceptBonus

	return min(score, MaxMetadataScore)
}

// sharedConcepts counts distinct concepts present in both lists.
func sharedConcepts(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	want := make(map[string]struct{}, len(b))
	for _, c := range b {
		want[c] = struct{}{}
	}
	n := 0
	for _, c := range a {
		if _, ok := want[c]; ok {
			n++
			delete(want, c)
		}
	}
	return n
}

// FinalScore fuses similarity and metadata relevance.
func FinalScore(similarity, metadata float64) float64 {
	return SimilarityWeight*similarity + MetadataWeight*metadata
}

// Rank scores candidates against intent, sorts them by final score
// descending and returns at most topK results. Equal final scores keep the
// candidates' incoming order.
func Rank(candidates []index.Candidate, intent core.QueryIntent, topK int) []core.SearchResult {
	results := make([]core.SearchResult, len(candidates))
	for i, c := range candidates {
		concepts := c.Chunk.Concepts
		if concepts == nil {
			concepts = []string{}
		}
		results[i] = core.SearchResult{
			Content:         c.Chunk.Content,
			Ticker:          c.Chunk.Ticker,
			FilingType:      c.Chunk.FilingType,
			Section:         c.Chunk.Section,
			ChunkID:         c.Chunk.ChunkID,
			Concepts:        concepts,
			SimilarityScore: c.Similarity,
			FinalScore:      FinalScore(c.Similarity, MetadataScore(c.Chunk, intent)),
		}
	}

	slices.SortStableFunc(results, func(a, b core.SearchResult) int {
		return cmp.Compare(b.FinalScore, a.FinalScore)
	})

	if topK >= 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}
