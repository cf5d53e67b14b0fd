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

// Package search answers free-text questions with ranked filing chunks.
//
// The Searcher runs three stages:
//   - the query interpreter turns the question into a QueryIntent
//   - the vector index returns a similarity candidate pool
//   - the hybrid ranker blends similarity with metadata agreement
//
// A SearchMonitor can observe each stage. MatchedTerms and Snippet help
// callers present results.
package search
