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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/poiesic/filingqa/core"
)

// Document is a raw filing handed to the segmenter.
type Document struct {
	// Name is the file name. Its extension selects the text extractor and
	// it is searched for a year when Year is nil.
	Name       string
	Content    []byte
	Ticker     string
	FilingType string
	Year       *int
}

// markupExtensions lists file types whose text is extracted with an HTML parser.
var markupExtensions = map[string]bool{
	".html": true,
	".htm":  true,
	".xml":  true,
}

const blockElements = "p, div, br, tr, li, table, section, article, h1, h2, h3, h4, h5, h6"

// ExtractText returns the plain text of a filing. Markup files are parsed and
// their visible text is returned with block elements on separate lines; any
// other file is returned as is. Invalid UTF-8 is dropped.
func ExtractText(name string, raw []byte) (string, error) {
	if !markupExtensions[strings.ToLower(filepath.Ext(name))] {
		return strings.ToValidUTF8(string(raw), ""), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find(blockElements).AfterHtml("\n")
	return strings.ToValidUTF8(doc.Text(), ""), nil
}

var (
	accessionPattern = regexp.MustCompile(`\d{10}-(\d{2})-\d{6}`)
	yearToken        = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)
)

// EstimateYear derives a filing year from a file name.
//
// An EDGAR accession number (0000320193-22-000108) gives its two-digit year;
// otherwise the first standalone 19xx or 20xx token is used. Nil when the
// name carries neither.
func EstimateYear(name string) *int {
	if m := accessionPattern.FindStringSubmatch(name); m != nil {
		yy, _ := strconv.Atoi(m[1])
		if yy >= 90 {
			return core.Year(1900 + yy)
		}
		return core.Year(2000 + yy)
	}
	if m := yearToken.FindStringSubmatch(name); m != nil {
		y, _ := strconv.Atoi(m[1])
		return core.Year(y)
	}
	return nil
}

// Segment splits a document into chunks. Chunk ordinals are zero-based and
// run across all sections of the document in section order.
func (s *Segmenter) Segment(doc Document) ([]core.Chunk, error) {
	if doc.Ticker == "" {
		return nil, ErrEmptyTicker
	}
	if doc.FilingType == "" {
		return nil, ErrEmptyFilingType
	}

	text, err := ExtractText(doc.Name, doc.Content)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(text) < s.minLength {
		return nil, fmt.Errorf("%w: %d characters", ErrDocumentTooShort, utf8.RuneCountInString(text))
	}

	year := doc.Year
	if year == nil {
		year = EstimateYear(doc.Name)
	}

	var chunks []core.Chunk
	for _, section := range s.ExtractSections(text) {
		for _, content := range s.CleanAndChunk(section.Content) {
			chunks = append(chunks, core.Chunk{
				Content:       content,
				Ticker:        doc.Ticker,
				FilingType:    doc.FilingType,
				Section:       section.Name,
				EstimatedYear: year,
				ChunkID:       core.MakeChunkID(doc.Ticker, doc.FilingType, year, len(chunks)),
				Concepts:      s.TagConcepts(content),
				WordCount:     len(strings.Fields(content)),
			})
		}
	}
	return chunks, nil
}

// ProcessDocument segments doc and never fails: errors are logged and yield
// no chunks.
func (s *Segmenter) ProcessDocument(doc Document) []core.Chunk {
	chunks, err := s.Segment(doc)
	if err != nil {
		s.logger.Warn("skipping document", "name", doc.Name, "ticker", doc.Ticker,
			"filing_type", doc.FilingType, "err", err)
		return nil
	}
	s.logger.Debug("segmented document", "name", doc.Name, "chunks", len(chunks))
	return chunks
}

// ProcessFile reads and segments a filing on disk. A nil year is estimated
// from the file name. Read failures are logged and yield no chunks.
func (s *Segmenter) ProcessFile(path, ticker, filingType string, year *int) []core.Chunk {
	raw, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("failed to read filing", "path", path, "err", err)
		return nil
	}
	return s.ProcessDocument(Document{
		Name:       filepath.Base(path),
		Content:    raw,
		Ticker:     ticker,
		FilingType: filingType,
		Year:       year,
	})
}
