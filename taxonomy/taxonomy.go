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

package taxonomy

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Concept is a named financial topic with the keywords that identify it
// and the sections and filing types where it is usually discussed.
type Concept struct {
	ID          string   `json:"-" toml:"-"`
	Keywords    []string `json:"keywords" toml:"keywords"`
	Sections    []string `json:"sec_sections" toml:"sec_sections"`
	FilingTypes []string `json:"filing_types" toml:"filing_types"`
	XBRLTags    []string `json:"xbrl_tags" toml:"xbrl_tags"`
}

func (c Concept) clone() Concept {
	return Concept{
		ID:          c.ID,
		Keywords:    slices.Clone(c.Keywords),
		Sections:    slices.Clone(c.Sections),
		FilingTypes: slices.Clone(c.FilingTypes),
		XBRLTags:    slices.Clone(c.XBRLTags),
	}
}

// Taxonomy is an immutable set of concepts, unique by identifier.
// It is safe for concurrent use.
type Taxonomy struct {
	concepts []Concept
	byID     map[string]int
	// lowered holds the lower-cased keywords of concepts[i].
	lowered [][]string
}

// New builds a Taxonomy from concepts. The input is copied.
func New(concepts []Concept) (*Taxonomy, error) {
	t := &Taxonomy{
		concepts: make([]Concept, 0, len(concepts)),
		byID:     make(map[string]int, len(concepts)),
	}
	for _, c := range concepts {
		if strings.TrimSpace(c.ID) == "" {
			return nil, ErrEmptyConceptID
		}
		if len(c.Keywords) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoKeywords, c.ID)
		}
		if _, ok := t.byID[c.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateConcept, c.ID)
		}
		t.byID[c.ID] = -1
		t.concepts = append(t.concepts, c.clone())
	}

	slices.SortFunc(t.concepts, func(a, b Concept) int {
		return cmp.Compare(a.ID, b.ID)
	})
	t.lowered = make([][]string, len(t.concepts))
	for i, c := range t.concepts {
		t.byID[c.ID] = i
		kws := make([]string, len(c.Keywords))
		for j, kw := range c.Keywords {
			kws[j] = strings.ToLower(kw)
		}
		t.lowered[i] = kws
	}
	return t, nil
}

// Len returns the number of concepts.
func (t *Taxonomy) Len() int {
	return len(t.concepts)
}

// IDs returns the concept identifiers in sorted order.
func (t *Taxonomy) IDs() []string {
	ids := make([]string, len(t.concepts))
	for i, c := range t.concepts {
		ids[i] = c.ID
	}
	return ids
}

// Concept returns a copy of the concept with the given identifier.
func (t *Taxonomy) Concept(id string) (Concept, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Concept{}, false
	}
	return t.concepts[i].clone(), true
}

// Concepts returns copies of all concepts, sorted by identifier.
func (t *Taxonomy) Concepts() []Concept {
	out := make([]Concept, len(t.concepts))
	for i, c := range t.concepts {
		out[i] = c.clone()
	}
	return out
}

// Match returns the identifiers of every concept with at least one keyword
// contained in text, ignoring case. The result is sorted.
func (t *Taxonomy) Match(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for i, kws := range t.lowered {
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				out = append(out, t.concepts[i].ID)
				break
			}
		}
	}
	return out
}

// Matches reports whether the concept id matches text.
func (t *Taxonomy) Matches(id, text string) bool {
	i, ok := t.byID[id]
	if !ok {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range t.lowered[i] {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// SectionKeywords returns the union of keywords of all concepts that declare
// section. Keywords keep concept order and are not repeated.
func (t *Taxonomy) SectionKeywords(section string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range t.concepts {
		if !slices.Contains(c.Sections, section) {
			continue
		}
		for _, kw := range c.Keywords {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

// SectionsFor returns the sorted union of sections declared by the given concepts.
// Unknown identifiers are ignored.
func (t *Taxonomy) SectionsFor(ids []string) []string {
	return t.union(ids, func(c Concept) []string { return c.Sections })
}

// FilingTypesFor returns the sorted union of filing types declared by the given concepts.
// Unknown identifiers are ignored.
func (t *Taxonomy) FilingTypesFor(ids []string) []string {
	return t.union(ids, func(c Concept) []string { return c.FilingTypes })
}

func (t *Taxonomy) union(ids []string, field func(Concept) []string) []string {
	set := make(map[string]struct{})
	for _, id := range ids {
		i, ok := t.byID[id]
		if !ok {
			continue
		}
		for _, v := range field(t.concepts[i]) {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
