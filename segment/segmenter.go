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
	"log/slog"
	"slices"

	"github.com/poiesic/filingqa/taxonomy"
)

const (
	// DefaultMaxChunkSize is the default chunk size in characters.
	DefaultMaxChunkSize = 1000

	// DefaultMinLength is the minimum length in characters of a document
	// and of an extracted section.
	DefaultMinLength = 200
)

// Segmenter turns filings into tagged chunks.
// A Segmenter is immutable after construction and safe for concurrent use.
type Segmenter struct {
	taxonomy     *taxonomy.Taxonomy
	patterns     []SectionPattern
	maxChunkSize int
	minLength    int
	logger       *slog.Logger
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithTaxonomy sets the taxonomy used to tag chunks.
// Default is taxonomy.Default().
func WithTaxonomy(t *taxonomy.Taxonomy) Option {
	return func(s *Segmenter) {
		if t != nil {
			s.taxonomy = t
		}
	}
}

// WithSectionPatterns replaces the section header patterns.
// Patterns are tried in the given order.
func WithSectionPatterns(patterns []SectionPattern) Option {
	return func(s *Segmenter) {
		s.patterns = slices.Clone(patterns)
	}
}

// WithMaxChunkSize sets the maximum chunk size in characters.
// Values below 1 are ignored.
func WithMaxChunkSize(size int) Option {
	return func(s *Segmenter) {
		if size > 0 {
			s.maxChunkSize = size
		}
	}
}

// WithMinLength sets the minimum document and section length.
func WithMinLength(length int) Option {
	return func(s *Segmenter) {
		if length >= 0 {
			s.minLength = length
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Segmenter) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// New creates a Segmenter.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		taxonomy:     taxonomy.Default(),
		patterns:     DefaultSectionPatterns(),
		maxChunkSize: DefaultMaxChunkSize,
		minLength:    DefaultMinLength,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "segmenter")
	return s
}

// MaxChunkSize returns the configured maximum chunk size.
func (s *Segmenter) MaxChunkSize() int {
	return s.maxChunkSize
}
