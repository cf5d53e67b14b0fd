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

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/poiesic/filingqa/core"
)

const (
	// ProcessedSuffix ends the name of every per-ticker corpus file.
	ProcessedSuffix = "_processed.json"

	// SummaryFile is the corpus summary written next to the ticker files.
	SummaryFile = "summary.json"
)

// ProcessedFileName returns the corpus file name for ticker.
func ProcessedFileName(ticker string) string {
	return ticker + ProcessedSuffix
}

// SaveSnapshot writes chunks to dir as one <TICKER>_processed.json file per
// ticker, preserving chunk order within each ticker. Tickers without chunks
// get no file. Each file is replaced atomically.
func SaveSnapshot(dir string, chunks []core.Chunk) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	byTicker := make(map[string][]core.Chunk)
	var order []string
	for _, c := range chunks {
		if _, ok := byTicker[c.Ticker]; !ok {
			order = append(order, c.Ticker)
		}
		byTicker[c.Ticker] = append(byTicker[c.Ticker], c)
	}

	for _, ticker := range order {
		path := filepath.Join(dir, ProcessedFileName(ticker))
		if err := writeJSON(path, byTicker[ticker]); err != nil {
			return fmt.Errorf("writing %s: %w", ticker, err)
		}
	}
	return nil
}

// LoadSnapshot reads the processed chunk files in dir.
// With tickers given, files are read in that order and missing ones are
// skipped. Otherwise every *_processed.json file is read in name order.
// Returns ErrNoSnapshot when no chunk was read.
func LoadSnapshot(dir string, tickers []string) ([]core.Chunk, error) {
	var paths []string
	if len(tickers) > 0 {
		for _, t := range tickers {
			paths = append(paths, filepath.Join(dir, ProcessedFileName(t)))
		}
	} else {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ProcessedSuffix))
		if err != nil {
			return nil, err
		}
		slices.Sort(matches)
		paths = matches
	}

	var all []core.Chunk
	for _, path := range paths {
		chunks, err := ReadChunkFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSnapshot, dir)
	}
	return all, nil
}

// ReadChunkFile reads one processed chunk file.
func ReadChunkFile(path string) ([]core.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var chunks []core.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", filepath.Base(path), ErrSerializationFailed, err)
	}
	return chunks, nil
}

// SnapshotTickers lists the tickers that have a processed file in dir, sorted.
func SnapshotTickers(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+ProcessedSuffix))
	if err != nil {
		return nil, err
	}
	tickers := make([]string, 0, len(matches))
	for _, m := range matches {
		tickers = append(tickers, strings.TrimSuffix(filepath.Base(m), ProcessedSuffix))
	}
	slices.Sort(tickers)
	return tickers, nil
}

// SaveSummary writes summary to dir/summary.json.
func SaveSummary(dir string, summary core.Summary) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, SummaryFile), summary)
}

// LoadSummary reads dir/summary.json.
func LoadSummary(dir string) (core.Summary, error) {
	var summary core.Summary
	data, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	if err != nil {
		return summary, err
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return summary, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return summary, nil
}

// writeJSON writes v as indented JSON to a temporary file and renames it
// over path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
