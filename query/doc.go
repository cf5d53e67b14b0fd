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

// Package query interprets free-text questions about filings.
//
// Interpretation is a fixed rule cascade over the question text: company
// references, years, quarters and period cues, taxonomy concepts, and the
// sections and filing types those concepts point at. There is no model in
// the loop, so the same question always produces the same core.QueryIntent.
package query
