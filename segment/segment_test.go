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
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/filingqa/core"
)

var (
	riskBody = strings.Repeat("Cybersecurity threats could harm our operations. ", 8)
	mdaBody  = strings.Repeat("Net sales increased due to strong demand. ", 8)
	filler   = strings.Repeat("The company reported steady results this period. ", 10)
)

func newTestSegmenter(opts ...Option) *Segmenter {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(opts...)
}

func TestExtractSections_BoundaryAtNextMarker(t *testing.T) {
	s := newTestSegmenter()
	text := "Item 1A. Risk Factors\n" + filler + "\nItem 7. Management's Discussion and Analysis\n" + riskBody

	sections := s.ExtractSections(text)
	require.Len(t, sections, 2)

	assert.Equal(t, "Risk Factors", sections[0].Name)
	assert.Equal(t, strings.TrimSpace(filler), sections[0].Content)
	assert.NotContains(t, sections[0].Content, "Item 7")

	assert.Equal(t, "MD&A", sections[1].Name)
	assert.True(t, strings.HasPrefix(sections[1].Content, "and Analysis"))
	assert.True(t, strings.HasSuffix(sections[1].Content, strings.TrimSpace(riskBody)))
}

func TestExtractSections_MarkersOutOfOrder(t *testing.T) {
	s := newTestSegmenter()
	text := "ITEM 7 MANAGEMENTS DISCUSSION\n" + mdaBody + "\nitem 1a risk factors\n" + riskBody

	sections := s.ExtractSections(text)
	require.Len(t, sections, 2)

	// Pattern order is kept, regardless of position in the document.
	assert.Equal(t, "Risk Factors", sections[0].Name)
	assert.Equal(t, strings.TrimSpace(riskBody), sections[0].Content)
	assert.Equal(t, "MD&A", sections[1].Name)
	assert.Equal(t, strings.TrimSpace(mdaBody), sections[1].Content)
}

func TestExtractSections_ShortSectionDropped(t *testing.T) {
	s := newTestSegmenter()
	text := "Item 1A Risk Factors see below. Item 7 Management's Discussion\n" + filler

	sections := s.ExtractSections(text)
	require.Len(t, sections, 1)
	assert.Equal(t, "MD&A", sections[0].Name)
}

func TestExtractSections_GeneralFallback(t *testing.T) {
	s := newTestSegmenter()

	sections := s.ExtractSections(filler)
	require.Len(t, sections, 1)
	assert.Equal(t, core.GeneralSection, sections[0].Name)
	assert.Equal(t, filler, sections[0].Content)

	assert.Empty(t, s.ExtractSections("too short to matter"))
}

func TestCleanAndChunk(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		maxSize int
		want    []string
	}{
		{
			name:    "strips tags and collapses whitespace",
			text:    "<p>Hello</p>   world\n\tagain",
			maxSize: 1000,
			want:    []string{"Hello world again"},
		},
		{
			name:    "oversized token stands alone",
			text:    "short " + strings.Repeat("x", 20) + " tail",
			maxSize: 10,
			want:    []string{"short", strings.Repeat("x", 20), "tail"},
		},
		{
			name:    "exact fit stays in one chunk",
			text:    "aaaa bbbbb",
			maxSize: 10,
			want:    []string{"aaaa bbbbb"},
		},
		{
			name:    "one over splits",
			text:    "aaaaa bbbbb",
			maxSize: 10,
			want:    []string{"aaaaa", "bbbbb"},
		},
		{
			name:    "empty",
			text:    "  \n ",
			maxSize: 10,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanAndChunk(tt.text, tt.maxSize))
		})
	}
}

func TestCleanAndChunk_ThousandAndOneCharacters(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("a ", 501))
	require.Equal(t, 1001, len(text))

	chunks := CleanAndChunk(text, 1000)
	require.Len(t, chunks, 2)
	assert.Equal(t, 999, len(chunks[0]))
	assert.Equal(t, "a", chunks[1])
}

func TestCleanAndChunk_Properties(t *testing.T) {
	var tokens []string
	for i := 0; i < 300; i++ {
		tokens = append(tokens, strings.Repeat("w", i%17+1))
	}
	tokens = append(tokens, strings.Repeat("é", 80))
	text := strings.Join(tokens, "  ")

	const maxSize = 50
	chunks := CleanAndChunk(text, maxSize)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		require.NotEmpty(t, c)
		if strings.Contains(c, " ") {
			assert.LessOrEqual(t, utf8.RuneCountInString(c), maxSize)
		}
	}
	assert.Equal(t, strings.Join(tokens, " "), strings.Join(chunks, " "))
}

func TestTagConcepts(t *testing.T) {
	s := newTestSegmenter()

	got := s.TagConcepts("Liquidity and WORKING CAPITAL were adequate")
	assert.Contains(t, got, "working_capital")
	assert.Equal(t, got, s.TagConcepts("Liquidity and WORKING CAPITAL were adequate"))

	empty := s.TagConcepts("")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func filingHTML() []byte {
	return []byte("<html><head><style>.risk{color:red}</style><script>var risk = 1;</script></head><body>" +
		"<p>Item 1A. Risk Factors</p><p>" + riskBody + "</p>" +
		"<p>Item 7. Management's Discussion and Analysis</p><p>" + mdaBody + "</p>" +
		"</body></html>")
}

func TestSegment_HTMLFiling(t *testing.T) {
	s := newTestSegmenter()

	chunks, err := s.Segment(Document{
		Name:       "0000320193-22-000108_aapl-20220924.htm",
		Content:    filingHTML(),
		Ticker:     "AAPL",
		FilingType: core.FilingType10K,
	})
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	risk := chunks[0]
	assert.Equal(t, "Risk Factors", risk.Section)
	assert.Equal(t, "AAPL_10-K_2022_0", risk.ChunkID)
	require.NotNil(t, risk.EstimatedYear)
	assert.Equal(t, 2022, *risk.EstimatedYear)
	assert.Contains(t, risk.Concepts, "risk_factors")
	assert.Equal(t, len(strings.Fields(risk.Content)), risk.WordCount)

	mda := chunks[1]
	assert.Equal(t, "MD&A", mda.Section)
	assert.Equal(t, "AAPL_10-K_2022_1", mda.ChunkID)
	assert.Contains(t, mda.Concepts, "revenue_performance")

	for _, c := range chunks {
		assert.NotContains(t, c.Content, "var risk")
		assert.NotContains(t, c.Content, "color:red")
		require.NoError(t, core.ValidateChunk(&c))
	}
}

func TestSegment_YearHandling(t *testing.T) {
	s := newTestSegmenter()

	chunks, err := s.Segment(Document{
		Name:       "report.txt",
		Content:    []byte(filler),
		Ticker:     "MSFT",
		FilingType: core.FilingType10Q,
	})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Nil(t, chunks[0].EstimatedYear)
	assert.Equal(t, "MSFT_10-Q_None_0", chunks[0].ChunkID)
	assert.Equal(t, core.GeneralSection, chunks[0].Section)

	chunks, err = s.Segment(Document{
		Name:       "report-2020.txt",
		Content:    []byte(filler),
		Ticker:     "MSFT",
		FilingType: core.FilingType10Q,
		Year:       core.Year(2019),
	})
	require.NoError(t, err)
	assert.Equal(t, "MSFT_10-Q_2019_0", chunks[0].ChunkID)
}

func TestSegment_Errors(t *testing.T) {
	s := newTestSegmenter()

	_, err := s.Segment(Document{Name: "a.txt", Content: []byte("short"), Ticker: "AAPL", FilingType: "10-K"})
	assert.ErrorIs(t, err, ErrDocumentTooShort)

	_, err = s.Segment(Document{Name: "a.txt", Content: []byte(filler), FilingType: "10-K"})
	assert.ErrorIs(t, err, ErrEmptyTicker)

	_, err = s.Segment(Document{Name: "a.txt", Content: []byte(filler), Ticker: "AAPL"})
	assert.ErrorIs(t, err, ErrEmptyFilingType)

	assert.Nil(t, s.ProcessDocument(Document{Name: "a.txt", Content: []byte("short"), Ticker: "AAPL", FilingType: "10-K"}))
}

func TestSegment_MaxChunkSize(t *testing.T) {
	s := newTestSegmenter(WithMaxChunkSize(100))
	assert.Equal(t, 100, s.MaxChunkSize())

	chunks, err := s.Segment(Document{Name: "a.txt", Content: []byte(filler), Ticker: "AAPL", FilingType: "10-K"})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 100)
		assert.Equal(t, core.MakeChunkID("AAPL", "10-K", nil, i), c.ChunkID)
	}
}

func TestProcessFile(t *testing.T) {
	s := newTestSegmenter()
	dir := t.TempDir()
	path := filepath.Join(dir, "aapl-2021-annual.html")
	require.NoError(t, os.WriteFile(path, filingHTML(), 0o644))

	chunks := s.ProcessFile(path, "AAPL", core.FilingType10K, nil)
	require.Len(t, chunks, 2)
	assert.Equal(t, "AAPL_10-K_2021_0", chunks[0].ChunkID)

	assert.Nil(t, s.ProcessFile(filepath.Join(dir, "missing.html"), "AAPL", core.FilingType10K, nil))
}

func TestEstimateYear(t *testing.T) {
	tests := []struct {
		name string
		want *int
	}{
		{name: "0000320193-22-000108_aapl-20220924.htm", want: core.Year(2022)},
		{name: "0000019617-99-000012.txt", want: core.Year(1999)},
		{name: "aapl-2021-annual.html", want: core.Year(2021)},
		{name: "form2023x.html", want: core.Year(2023)},
		{name: "report_12345.html", want: nil},
		{name: "filing-3020.html", want: nil},
		{name: "document.html", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateYear(tt.name))
		})
	}
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText("filing.html", []byte("<div>Alpha</div><div>Beta</div><script>x()</script>"))
	require.NoError(t, err)
	assert.Contains(t, text, "Alpha\n")
	assert.Contains(t, text, "Beta")
	assert.NotContains(t, text, "x()")

	text, err = ExtractText("filing.txt", []byte("<b>kept</b> as is"))
	require.NoError(t, err)
	assert.Equal(t, "<b>kept</b> as is", text)
}

func TestReadFilingMetadata(t *testing.T) {
	dir := t.TempDir()

	years, err := ReadFilingMetadata(dir)
	require.NoError(t, err)
	assert.Empty(t, years)

	meta := `[
  {"ticker": "AAPL", "filing_type": "10-K", "file_path": "AAPL/10-K/abc.html", "estimated_year": 2021},
  {"ticker": "AAPL", "filing_type": "10-K", "file_path": "AAPL/10-K/def.html", "estimated_year": null}
]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FilingMetadataFile), []byte(meta), 0o644))

	years, err = ReadFilingMetadata(dir)
	require.NoError(t, err)
	assert.Equal(t, core.Year(2021), years.Year("abc.html"))
	assert.Nil(t, years.Year("def.html"))
	assert.Nil(t, years.Year("ghi.html"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, FilingMetadataFile), []byte("{not json"), 0o644))
	_, err = ReadFilingMetadata(dir)
	assert.Error(t, err)
}
