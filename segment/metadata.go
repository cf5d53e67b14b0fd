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
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FilingMetadataFile is the per-ticker metadata file written by the
// acquisition service next to the filing-type directories.
const FilingMetadataFile = "filing_metadata.json"

// FilingMetadata describes one acquired filing.
type FilingMetadata struct {
	Ticker          string  `json:"ticker"`
	CompanyName     string  `json:"company_name"`
	FilingType      string  `json:"filing_type"`
	FilePath        string  `json:"file_path"`
	AccessionNumber *string `json:"accession_number"`
	EstimatedYear   *int    `json:"estimated_year"`
	FileSize        int64   `json:"file_size"`
	FileExtension   string  `json:"file_extension"`
}

// FilingYears maps file base names to the years recorded by the acquisition
// service.
type FilingYears map[string]int

// Year returns the recorded year for a file name, or nil.
func (y FilingYears) Year(name string) *int {
	if v, ok := y[filepath.Base(name)]; ok {
		return &v
	}
	return nil
}

// ReadFilingMetadata loads tickerDir/filing_metadata.json. A missing file is
// not an error and yields an empty result.
func ReadFilingMetadata(tickerDir string) (FilingYears, error) {
	raw, err := os.ReadFile(filepath.Join(tickerDir, FilingMetadataFile))
	if errors.Is(err, fs.ErrNotExist) {
		return FilingYears{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read filing metadata: %w", err)
	}

	var entries []FilingMetadata
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode filing metadata: %w", err)
	}

	years := make(FilingYears, len(entries))
	for _, e := range entries {
		if e.EstimatedYear == nil || e.FilePath == "" {
			continue
		}
		years[filepath.Base(filepath.FromSlash(e.FilePath))] = *e.EstimatedYear
	}
	return years, nil
}
