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

// Package ai provides abstractions for the model services used by filingqa.
//
// The retrieval core needs two services:
//
//   - Embedder: turns chunk and question text into vectors
//   - Generator: writes an answer from a prompt built out of ranked chunks
//
// AIProvider aggregates both so they can share configuration.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors in ai/openai return INTERFACE types:
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test constructors in ai/mock return CONCRETE types so tests can inject
// behavior and check call counts:
//
//	embedder := mock.NewMockEmbedder()  // returns *mock.MockEmbedder
//	embedder.EmbedTextsFunc = ...
//	count := embedder.CallCount()
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "net sales increased")
//	answer, err := provider.Generator().Generate(ctx, system, prompt)
package ai
