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

// Package segment splits raw filings into labeled, size-bounded chunks.
//
// Processing a document runs four steps:
//
//   - text extraction (HTML and XML through goquery, anything else as text)
//   - section extraction by item-header patterns
//   - greedy chunk packing over whitespace-delimited tokens
//   - concept tagging against a taxonomy
//
// Section boundaries use the nearest following header of another section.
// Legal filings repeat item headers in their table of contents and cross
// references, so sections shorter than the minimum length are dropped.
//
// Segment returns errors; ProcessDocument and ProcessFile log them and
// return no chunks so one bad filing never stops a corpus build.
package segment
