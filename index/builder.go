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
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/filingqa/ai"
	"github.com/poiesic/filingqa/core"
)

const (
	// DefaultBatchSize is the number of chunks sent to the embedder per call.
	DefaultBatchSize = 64

	// DefaultMaxAttempts bounds retries of one embedding batch.
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the first backoff delay; it doubles per retry.
	DefaultRetryDelay = 500 * time.Millisecond

	// MaxEmbeddingChars truncates the text embedded for each chunk.
	MaxEmbeddingChars = 512
)

// Builder embeds chunk corpora into indexes and loads persisted indexes.
// Both paths attach the builder's embedder so the resulting Index can
// embed queries the same way.
type Builder struct {
	embedder    ai.Embedder
	model       string
	batchSize   int
	maxAttempts int
	retryDelay  time.Duration
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithBatchSize sets how many chunks are embedded per call.
func WithBatchSize(size int) Option {
	return func(b *Builder) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		b.batchSize = size
		return nil
	}
}

// WithRetry sets the attempts per batch and the first backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(b *Builder) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		b.maxAttempts = maxAttempts
		b.retryDelay = baseDelay
		return nil
	}
}

// WithModel records the embedding model name in built manifests.
func WithModel(model string) Option {
	return func(b *Builder) error {
		b.model = model
		return nil
	}
}

// WithProgress reports embedding progress to w.
func WithProgress(w io.Writer) Option {
	return func(b *Builder) error {
		b.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a Builder that embeds with embedder.
func NewBuilder(embedder ai.Embedder, opts ...Option) (*Builder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	b := &Builder{
		embedder:    embedder,
		batchSize:   DefaultBatchSize,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.logger = b.logger.With("component", "index")
	return b, nil
}

// EmbeddingText is the text embedded for a chunk: its concepts, section
// and content separated by spaces, truncated to MaxEmbeddingChars characters.
func EmbeddingText(chunk core.Chunk) string {
	text := strings.Join(chunk.Concepts, " ") + " " + chunk.Section + " " + chunk.Content
	return truncateRunes(text, MaxEmbeddingChars)
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Build embeds every chunk and returns a complete in-memory index.
// Any embedding failure aborts the build; no partial index is returned.
func (b *Builder) Build(ctx context.Context, chunks []core.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}

	start := time.Now()
	b.logger.Info("building index", "chunks", len(chunks), "batchSize", b.batchSize)

	var tracker *ProgressTracker
	if b.progress != nil {
		tracker = NewProgressTracker(b.progress, len(chunks), b.batchSize)
		tracker.Start()
	}

	var flat *FlatIndex
	for lo := 0; lo < len(chunks); lo += b.batchSize {
		hi := min(lo+b.batchSize, len(chunks))
		texts := make([]string, 0, hi-lo)
		for _, c := range chunks[lo:hi] {
			texts = append(texts, EmbeddingText(c))
		}

		var embeddings [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var err error
			embeddings, err = b.embedder.EmbedTexts(ctx, texts)
			return err
		}, b.maxAttempts, b.retryDelay)
		if err != nil {
			return nil, fmt.Errorf("embedding chunks %d-%d: %w", lo, hi-1, err)
		}
		if len(embeddings) != len(texts) {
			return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(embeddings))
		}

		if flat == nil {
			flat = NewFlatIndex(len(embeddings[0]))
			if flat.Dim() == 0 {
				return nil, fmt.Errorf("%w: embedder returned empty vectors", ErrDimensionMismatch)
			}
		}
		for i := range embeddings {
			embeddings[i] = NormalizeVector(embeddings[i])
		}
		if err := flat.Add(embeddings...); err != nil {
			return nil, err
		}

		if tracker != nil {
			tracker.BatchDone(len(texts), flat.Dim())
		}
	}
	if tracker != nil {
		tracker.Finish()
	}

	idx := &Index{
		flat:     flat,
		chunks:   slices.Clone(chunks),
		embedder: b.embedder,
		logger:   b.logger,
		manifest: Manifest{
			Version:     ManifestVersion,
			BuildID:     uuid.NewString(),
			CreatedAt:   time.Now().UTC().Truncate(time.Second),
			Model:       b.model,
			Dimension:   flat.Dim(),
			Count:       flat.Len(),
			Fingerprint: core.Fingerprint(chunks),
		},
	}
	b.logger.Info("index built", "chunks", idx.Len(), "dimension", flat.Dim(), "elapsed", time.Since(start))
	return idx, nil
}
