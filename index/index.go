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

package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/filingqa/ai"
	"github.com/poiesic/filingqa/core"
)

const (
	// PoolMultiplier widens the candidate pool handed to the ranker.
	PoolMultiplier = 5

	// SimilarityFloor drops candidates below this inner product as noise.
	SimilarityFloor = 0.1
)

// Index pairs chunk metadata with unit-length embeddings by position.
// An Index is immutable once built or loaded; concurrent searches are safe.
type Index struct {
	flat     *FlatIndex
	chunks   []core.Chunk
	manifest Manifest
	embedder ai.Embedder
	logger   *slog.Logger
}

// Candidate is a chunk retrieved by similarity search.
type Candidate struct {
	Chunk      core.Chunk
	Position   int
	Similarity float64
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.chunks)
}

// Manifest describes the build that produced this index.
func (idx *Index) Manifest() Manifest {
	return idx.manifest
}

// Chunk returns the chunk at position.
func (idx *Index) Chunk(position int) core.Chunk {
	return idx.chunks[position]
}

// Chunks returns the indexed chunks in position order.
// The slice is shared and must not be modified.
func (idx *Index) Chunks() []core.Chunk {
	return idx.chunks
}

// Search embeds query, normalizes it and returns up to min(topK*5, Len())
// nearest chunks by inner product, dropping those below SimilarityFloor.
// Candidates are ordered by similarity; equal scores keep position order.
func (idx *Index) Search(ctx context.Context, query string, topK int) ([]Candidate, error) {
	if idx == nil || idx.flat == nil || len(idx.chunks) == 0 {
		return nil, ErrIndexNotReady
	}
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}

	vector, err := idx.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	pool := min(topK*PoolMultiplier, len(idx.chunks))
	hits, err := idx.flat.Search(NormalizeVector(vector), pool)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		if h.Score < SimilarityFloor {
			continue
		}
		candidates = append(candidates, Candidate{
			Chunk:      idx.chunks[h.Position],
			Position:   h.Position,
			Similarity: float64(h.Score),
		})
	}

	idx.logger.Debug("vector search", "pool", pool, "kept", len(candidates))
	return candidates, nil
}
