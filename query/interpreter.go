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

package query

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/taxonomy"
)

// Ranking factors reported in every search strategy.
const (
	FactorSemanticSimilarity = "semantic_similarity"
	FactorSectionRelevance   = "section_relevance"
	FactorTemporalRelevance  = "temporal_relevance"
)

// FilterYears is the strategy filter key holding the years named in a question.
const FilterYears = "years"

var (
	tickerToken  = regexp.MustCompile(`\b[A-Z]{1,5}\b`)
	yearPattern  = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	quarterToken = regexp.MustCompile(`(?i)\b(?:q([1-4])|(first|second|third|fourth)\s+(?:quarter|q))\b`)
)

var ordinalQuarters = map[string]string{
	"first":  "Q1",
	"second": "Q2",
	"third":  "Q3",
	"fourth": "Q4",
}

// periodCue pairs a period type with the phrases that signal it.
type periodCue struct {
	period  string
	pattern *regexp.Regexp
}

// periodCues are checked in order; the first match wins.
var periodCues = []periodCue{
	{core.PeriodAnnual, regexp.MustCompile(`(?i)\b(?:annual|yearly|year-over-year|yoy)\b`)},
	{core.PeriodQuarterly, regexp.MustCompile(`(?i)\b(?:quarterly|quarter|qoq)\b`)},
	{core.PeriodRecent, regexp.MustCompile(`(?i)\b(?:recent|latest|current|last|past)\b`)},
	{core.PeriodHistorical, regexp.MustCompile(`(?i)\b(?:historical|over\s+time|trend|evolution)\b`)},
}

type companyName struct {
	ticker  string
	pattern *regexp.Regexp
}

// Interpreter turns free-text questions into a structured intent.
// It holds no mutable state and is safe for concurrent use.
type Interpreter struct {
	taxonomy *taxonomy.Taxonomy
	tickers  map[string]struct{}
	names    []companyName
}

// New creates an Interpreter. A nil taxonomy selects taxonomy.Default and
// nil companies select core.DefaultCompanies.
func New(tax *taxonomy.Taxonomy, companies []core.Company) *Interpreter {
	if tax == nil {
		tax = taxonomy.Default()
	}
	if companies == nil {
		companies = core.DefaultCompanies()
	}

	in := &Interpreter{
		taxonomy: tax,
		tickers:  make(map[string]struct{}, len(companies)),
	}
	for _, c := range companies {
		ticker := strings.ToUpper(c.Ticker)
		in.tickers[ticker] = struct{}{}
		for _, name := range append([]string{c.Name}, c.Aliases...) {
			if strings.TrimSpace(name) == "" {
				continue
			}
			in.names = append(in.names, companyName{
				ticker:  ticker,
				pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`),
			})
		}
	}
	return in
}

// Parse interprets question. The same question always yields the same intent.
func (in *Interpreter) Parse(question string) core.QueryIntent {
	temporal := ExtractTemporal(question)
	concepts := in.taxonomy.Match(question)
	if concepts == nil {
		concepts = []string{}
	}

	filingTypes := in.taxonomy.FilingTypesFor(concepts)
	if temporal.PeriodType != nil {
		switch *temporal.PeriodType {
		case core.PeriodAnnual:
			filingTypes = addSorted(filingTypes, core.FilingType10K)
		case core.PeriodQuarterly:
			filingTypes = addSorted(filingTypes, core.FilingType10Q)
		}
	}

	return core.QueryIntent{
		OriginalQuery:    question,
		Tickers:          in.ExtractTickers(question),
		Temporal:         temporal,
		Concepts:         concepts,
		RelevantSections: in.taxonomy.SectionsFor(concepts),
		FilingTypes:      filingTypes,
		Strategy:         strategyFor(temporal),
	}
}

// ExtractTickers returns the sorted tickers referenced in question, either as
// an uppercase symbol or by company name or alias in any case.
func (in *Interpreter) ExtractTickers(question string) []string {
	found := make(map[string]struct{})
	for _, tok := range tickerToken.FindAllString(question, -1) {
		if _, ok := in.tickers[tok]; ok {
			found[tok] = struct{}{}
		}
	}
	for _, n := range in.names {
		if n.pattern.MatchString(question) {
			found[n.ticker] = struct{}{}
		}
	}

	tickers := make([]string, 0, len(found))
	for t := range found {
		tickers = append(tickers, t)
	}
	slices.Sort(tickers)
	return tickers
}

// ExtractTemporal finds years, quarters and the period type of question.
// Years and quarters are deduplicated and kept in order of appearance.
func ExtractTemporal(question string) core.TemporalInfo {
	info := core.TemporalInfo{
		Years:    []int{},
		Quarters: []string{},
	}

	for _, y := range yearPattern.FindAllString(question, -1) {
		year, _ := strconv.Atoi(y)
		if !slices.Contains(info.Years, year) {
			info.Years = append(info.Years, year)
		}
	}

	for _, m := range quarterToken.FindAllStringSubmatch(question, -1) {
		q := "Q" + m[1]
		if m[1] == "" {
			q = ordinalQuarters[strings.ToLower(m[2])]
		}
		if !slices.Contains(info.Quarters, q) {
			info.Quarters = append(info.Quarters, q)
		}
	}

	for _, cue := range periodCues {
		if cue.pattern.MatchString(question) {
			period := cue.period
			info.PeriodType = &period
			break
		}
	}
	return info
}

func strategyFor(temporal core.TemporalInfo) core.SearchStrategy {
	strategy := core.SearchStrategy{
		SearchType: core.SearchTypeSemantic,
		Filters:    map[string]any{},
		RankingFactors: []string{
			FactorSemanticSimilarity,
			FactorSectionRelevance,
			FactorTemporalRelevance,
		},
	}
	if len(temporal.Years) > 0 || len(temporal.Quarters) > 0 {
		strategy.SearchType = core.SearchTypeHybrid
	}
	if len(temporal.Years) > 0 {
		strategy.Filters[FilterYears] = slices.Clone(temporal.Years)
	}
	return strategy
}

func addSorted(values []string, v string) []string {
	i, found := slices.BinarySearch(values, v)
	if found {
		return values
	}
	return slices.Insert(values, i, v)
}
