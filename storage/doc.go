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


// Package storage provides the storage abstraction layer for filingqa.
//
// It defines the ChunkRepository interface that decouples chunk storage from
// the index and search code, plus the processed corpus files shared with the
// ingestion pipeline.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the interface:
//
//	repo, err := badger.NewChunkRepository(backend)  // returns storage.ChunkRepository
//
// Internal helpers may return concrete types since they're only used within
// the implementation package.
//
// # Corpus Snapshot
//
// The segmented corpus lives in a processed directory as one JSON array per
// ticker plus a summary:
//
//	processed/
//	    AAPL_processed.json
//	    MSFT_processed.json
//	    summary.json
//
// SaveSnapshot, LoadSnapshot and SaveSummary read and write this layout.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryChunkRepository()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
