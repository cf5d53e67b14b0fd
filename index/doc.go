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

// Package index implements the persistent vector index over filing chunks.
//
// A Builder embeds chunks in batches through an ai.Embedder, retrying each
// batch with exponential backoff, and produces an immutable Index holding
// unit-length vectors in a flat inner-product structure alongside the chunk
// metadata, aligned by position.
//
// # Artifact Set
//
// Persist writes one directory:
//
//	index/
//	    embeddings.npy   NumPy float32 matrix, one row per chunk
//	    index.bin        serialized flat index
//	    metadata/        BadgerDB of chunks keyed by position
//	    manifest.toml    build id, model, dimension, count, corpus fingerprint
//
// The set is written to a sibling staging directory and renamed into place,
// so readers see either the previous build or the new one. Load refuses a
// set with a missing artifact or with artifacts that disagree on count or
// dimension, returning ErrIndexNotFound.
//
// # Search
//
// Search embeds the question without any chunk prefix, takes the
// min(topK*5, Len()) nearest chunks as a candidate pool and drops
// candidates whose similarity is below 0.1. Re-ranking is left to the
// rank package.
package index
