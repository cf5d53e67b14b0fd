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

package ingestion

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/segment"
)

// Processor turns one filing on disk into chunks.
// *segment.Segmenter satisfies it.
type Processor interface {
	// ProcessFile never fails: unreadable or rejected files yield no chunks.
	ProcessFile(path, ticker, filingType string, year *int) []core.Chunk
}

var _ Processor = (*segment.Segmenter)(nil)

// DefaultExtensions are the filing file types picked up from the raw tree.
var DefaultExtensions = []string{".html", ".htm", ".xml", ".txt"}

// job is one filing queued for processing.
type job struct {
	path       string
	ticker     string
	filingType string
	year       *int
}

// collectJobs lists the filings of one ticker directory in deterministic
// order: filing type directory name, then file name.
func collectJobs(tickerDir, ticker string, years segment.FilingYears, extensions []string) ([]job, error) {
	entries, err := os.ReadDir(tickerDir)
	if err != nil {
		return nil, err
	}

	var jobs []job
	for _, typeDir := range entries {
		if !typeDir.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(tickerDir, typeDir.Name()))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.IsDir() || !slices.Contains(extensions, strings.ToLower(filepath.Ext(f.Name()))) {
				continue
			}
			jobs = append(jobs, job{
				path:       filepath.Join(tickerDir, typeDir.Name(), f.Name()),
				ticker:     ticker,
				filingType: typeDir.Name(),
				year:       years.Year(f.Name()),
			})
		}
	}
	return jobs, nil
}

// uniqueIDs renumbers chunk ordinals so that documents sharing a ticker,
// filing type and year continue each other's numbering. The first document
// of each prefix keeps the ordinals it was segmented with.
func uniqueIDs(documents [][]core.Chunk) []core.Chunk {
	next := make(map[string]int)
	var out []core.Chunk
	for _, doc := range documents {
		if len(doc) == 0 {
			continue
		}
		// Every chunk of a document shares ticker, filing type and year.
		first := doc[0]
		prefix := core.MakeChunkID(first.Ticker, first.FilingType, first.EstimatedYear, 0)
		offset := next[prefix]
		for i, c := range doc {
			if offset > 0 {
				c.ChunkID = core.MakeChunkID(c.Ticker, c.FilingType, c.EstimatedYear, i+offset)
			}
			out = append(out, c)
		}
		next[prefix] += len(doc)
	}
	return out
}
