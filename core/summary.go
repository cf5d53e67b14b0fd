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

package core

import (
	"cmp"
	"encoding/binary"
	"encoding/hex"
	"slices"

	"golang.org/x/crypto/blake2b"
)

// Summary aggregates counts over a chunk corpus.
type Summary struct {
	TotalChunks  int            `json:"total_chunks"`
	Companies    int            `json:"companies"`
	FilingTypes  map[string]int `json:"filing_types"`
	Sections     map[string]int `json:"sections"`
	Concepts     map[string]int `json:"financial_concepts"`
	YearsCovered []int          `json:"years_covered"`
	TotalWords   int            `json:"total_words"`
}

// Summarize computes a Summary of chunks.
func Summarize(chunks []Chunk) Summary {
	s := Summary{
		TotalChunks:  len(chunks),
		FilingTypes:  make(map[string]int),
		Sections:     make(map[string]int),
		Concepts:     make(map[string]int),
		YearsCovered: []int{},
	}
	tickers := make(map[string]struct{})
	years := make(map[int]struct{})
	for _, c := range chunks {
		tickers[c.Ticker] = struct{}{}
		s.FilingTypes[c.FilingType]++
		s.Sections[c.Section]++
		for _, concept := range c.Concepts {
			s.Concepts[concept]++
		}
		if c.EstimatedYear != nil {
			years[*c.EstimatedYear] = struct{}{}
		}
		s.TotalWords += c.WordCount
	}
	s.Companies = len(tickers)
	for y := range years {
		s.YearsCovered = append(s.YearsCovered, y)
	}
	slices.Sort(s.YearsCovered)
	return s
}

// Count is a named tally.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopN returns the n largest counts, highest first; ties sort by name.
func TopN(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for name, c := range counts {
		out = append(out, Count{Name: name, Count: c})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Fingerprint hashes the ordered chunk IDs and contents of a corpus.
// Two corpora with the same fingerprint produce the same index.
func Fingerprint(chunks []Chunk) string {
	h, _ := blake2b.New256(nil)
	var lenBuf [8]byte
	for _, c := range chunks {
		for _, part := range []string{c.ChunkID, c.Section, c.Content} {
			binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(part)))
			h.Write(lenBuf[:])
			h.Write([]byte(part))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
