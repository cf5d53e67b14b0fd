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
	"regexp"
	"strings"
	"unicode/utf8"
)

var markupTag = regexp.MustCompile(`<[^>]+>`)

// CleanAndChunk strips markup tags, collapses whitespace and packs the
// remaining tokens, in order, into chunks of at most maxSize characters.
//
// A token joins the current chunk when the chunk plus one separator plus the
// token still fits; otherwise the chunk is closed and the token starts the
// next one. A token longer than maxSize becomes a chunk of its own.
func CleanAndChunk(text string, maxSize int) []string {
	tokens := strings.Fields(markupTag.ReplaceAllString(text, ""))

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	for _, tok := range tokens {
		n := utf8.RuneCountInString(tok)
		if curLen > 0 && curLen+1+n > maxSize {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(tok)
		curLen += n
	}
	if curLen > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// CleanAndChunk packs text using the segmenter's maximum chunk size.
func (s *Segmenter) CleanAndChunk(text string) []string {
	return CleanAndChunk(text, s.maxChunkSize)
}

// TagConcepts returns the sorted identifiers of the concepts whose keywords
// occur in text. The result is never nil.
func (s *Segmenter) TagConcepts(text string) []string {
	concepts := s.taxonomy.Match(text)
	if concepts == nil {
		return []string{}
	}
	return concepts
}
