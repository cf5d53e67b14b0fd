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

package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/filingqa/core"
)

// SectionPattern names a section and the header that introduces it.
type SectionPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// Section is a named slice of a document.
type Section struct {
	Name    string
	Content string
}

// DefaultSectionPatterns returns the item-header patterns for annual and
// proxy filings, in extraction order.
func DefaultSectionPatterns() []SectionPattern {
	return []SectionPattern{
		{Name: "Risk Factors", Pattern: regexp.MustCompile(`(?i)item\s*1a[\.\s]*risk\s*factors`)},
		{Name: "Business", Pattern: regexp.MustCompile(`(?i)item\s*1[\.\s]*business`)},
		{Name: "MD&A", Pattern: regexp.MustCompile(`(?i)item\s*7[\.\s]*management'?s\s*discussion`)},
		{Name: "Financial Statements", Pattern: regexp.MustCompile(`(?i)item\s*8[\.\s]*financial\s*statements`)},
		{Name: "Compensation", Pattern: regexp.MustCompile(`(?i)compensation\s*discussion`)},
		{Name: "Executive Compensation", Pattern: regexp.MustCompile(`(?i)executive\s*compensation`)},
	}
}

// ExtractSections splits text into named sections.
//
// A section starts right after the first match of its header and ends where
// the nearest header of any other section begins, or at the end of text.
// Sections no longer than the minimum length are dropped. When no section
// survives and text itself is long enough, the whole text is returned as a
// single core.GeneralSection.
func (s *Segmenter) ExtractSections(text string) []Section {
	return extractSections(text, s.patterns, s.minLength)
}

func extractSections(text string, patterns []SectionPattern, minLength int) []Section {
	locs := make([][][]int, len(patterns))
	for i, p := range patterns {
		locs[i] = p.Pattern.FindAllStringIndex(text, -1)
	}

	var sections []Section
	for i, p := range patterns {
		if len(locs[i]) == 0 {
			continue
		}
		start := locs[i][0][1]
		end := len(text)
		for j := range patterns {
			if j == i {
				continue
			}
			for _, loc := range locs[j] {
				if loc[0] > start {
					end = min(end, loc[0])
					break
				}
			}
		}

		content := strings.TrimSpace(text[start:end])
		if utf8.RuneCountInString(content) > minLength {
			sections = append(sections, Section{Name: p.Name, Content: content})
		}
	}

	if len(sections) == 0 && utf8.RuneCountInString(text) > minLength {
		sections = append(sections, Section{Name: core.GeneralSection, Content: text})
	}
	return sections
}
