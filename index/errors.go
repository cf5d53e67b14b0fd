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

import "errors"

var (
	// ErrIndexNotReady is returned when searching an index that was never built or loaded.
	ErrIndexNotReady = errors.New("index not built or loaded")

	// ErrIndexNotFound is returned by Load when the artifact set is missing or inconsistent.
	ErrIndexNotFound = errors.New("index not available")

	// ErrInvalidTopK is returned when a search asks for zero or fewer results.
	ErrInvalidTopK = errors.New("topK must be greater than 0")

	// ErrDimensionMismatch is returned when vectors disagree on dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmptyCorpus is returned when building an index without chunks.
	ErrEmptyCorpus = errors.New("no chunks to index")

	// ErrEmbedderRequired is returned when no embedder is supplied.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidBatchSize is returned for a batch size of zero or less.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrCorruptArtifact is returned when an index file cannot be decoded.
	ErrCorruptArtifact = errors.New("corrupt index artifact")
)
