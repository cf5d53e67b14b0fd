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

package answer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/filingqa/core"
)

const (
	// MaxSources is the number of results quoted in a prompt.
	MaxSources = 8

	// SourceChars is the number of characters quoted from each source.
	SourceChars = 600
)

// SystemPrompt is the instruction given to the answer generator.
const SystemPrompt = "You are a financial analyst expert. Provide accurate answers based only on SEC filing context. Always cite sources [Source X]."

var instructions = []string{
	"Instructions:",
	"1. Answer based only on the SEC filing content above",
	"2. Reference sources using [Source X] notation",
	"3. Compare companies when multiple are mentioned",
	"4. Be specific about metrics, dates, filing types",
	"5. Acknowledge limitations if information is insufficient",
	"\nAnswer:",
}

// BuildPrompt renders the generator prompt for question from the first
// MaxSources results. names maps tickers to display names; unknown tickers
// are shown as themselves.
func BuildPrompt(question string, results []core.SearchResult, names map[string]string) string {
	lines := []string{fmt.Sprintf("Question: %s\n\nSEC Filing Context:", question)}

	for i, r := range results[:min(len(results), MaxSources)] {
		lines = append(lines,
			fmt.Sprintf("[Source %d] %s (%s) - %s - %s", i+1, companyName(names, r.Ticker), r.Ticker, r.FilingType, r.Section),
			truncate(r.Content, SourceChars)+"...",
			"")
	}

	lines = append(lines, instructions...)
	return strings.Join(lines, "\n")
}

// Confidence scores how well results cover the intent, in [0, 1].
//
//	mean final score
//	+ ticker boost: 0.2 * share of results on a requested ticker, or 0.1 when none was requested
//	+ 0.02 per result sharing a concept with the intent
//	+ 0.03 per distinct company
func Confidence(results []core.SearchResult, intent core.QueryIntent) float64 {
	if len(results) == 0 {
		return 0
	}

	var sum float64
	for _, r := range results {
		sum += r.FinalScore
	}
	base := sum / float64(len(results))

	tickerBoost := 0.1
	if len(intent.Tickers) > 0 {
		matches := 0
		for _, r := range results {
			if slices.Contains(intent.Tickers, r.Ticker) {
				matches++
			}
		}
		tickerBoost = float64(matches) / float64(len(results)) * 0.2
	}

	var conceptBoost float64
	for _, r := range results {
		if slices.ContainsFunc(intent.Concepts, func(c string) bool { return slices.Contains(r.Concepts, c) }) {
			conceptBoost += 0.02
		}
	}

	diversity := float64(len(Companies(results))) * 0.03

	return min(base+tickerBoost+conceptBoost+diversity, 1.0)
}

// Companies lists the distinct tickers of results in order of first appearance.
func Companies(results []core.SearchResult) []string {
	var out []string
	for _, r := range results {
		if !slices.Contains(out, r.Ticker) {
			out = append(out, r.Ticker)
		}
	}
	return out
}

func companyName(names map[string]string, ticker string) string {
	if name, ok := names[ticker]; ok && name != "" {
		return name
	}
	return ticker
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
