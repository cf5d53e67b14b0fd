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
	"fmt"
	"slices"
)

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Ticker must not be empty
//   - FilingType must not be empty
//   - ChunkID must not be empty
//
// NOT validated:
//   - EstimatedYear (nil when the file name carries no year)
//   - Concepts (a chunk may match no concept)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.Ticker == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyTicker)
	}

	if chunk.FilingType == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyFilingType)
	}

	if chunk.ChunkID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkID)
	}

	return nil
}

// ValidateCorpus validates every chunk and checks that chunk IDs are unique.
func ValidateCorpus(chunks []Chunk) error {
	seen := make(map[string]struct{}, len(chunks))
	for i := range chunks {
		if err := ValidateChunk(&chunks[i]); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		if _, ok := seen[chunks[i].ChunkID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateChunkID, chunks[i].ChunkID)
		}
		seen[chunks[i].ChunkID] = struct{}{}
	}
	return nil
}

// RenumberDuplicateIDs gives every repeated chunk ID the next ordinal not
// already used by its ticker, filing type and year. The first occurrence of
// an ID keeps it. It returns the corpus and the number of chunks renumbered;
// chunks itself is never modified.
func RenumberDuplicateIDs(chunks []Chunk) ([]Chunk, int) {
	taken := make(map[string]struct{}, len(chunks))
	for i := range chunks {
		taken[chunks[i].ChunkID] = struct{}{}
	}

	out := chunks
	seen := make(map[string]struct{}, len(chunks))
	next := make(map[string]int)
	renumbered := 0
	for i := range chunks {
		c := &chunks[i]
		if _, dup := seen[c.ChunkID]; !dup {
			seen[c.ChunkID] = struct{}{}
			continue
		}
		if renumbered == 0 {
			out = slices.Clone(chunks)
		}
		renumbered++

		prefix := MakeChunkID(c.Ticker, c.FilingType, c.EstimatedYear, 0)
		ordinal := next[prefix]
		id := MakeChunkID(c.Ticker, c.FilingType, c.EstimatedYear, ordinal)
		for {
			if _, ok := taken[id]; !ok {
				break
			}
			ordinal++
			id = MakeChunkID(c.Ticker, c.FilingType, c.EstimatedYear, ordinal)
		}
		next[prefix] = ordinal + 1
		taken[id] = struct{}{}
		seen[id] = struct{}{}
		out[i].ChunkID = id
	}
	return out, renumbered
}
