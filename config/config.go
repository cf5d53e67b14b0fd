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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/poiesic/filingqa/ai"
	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/index"
	"github.com/poiesic/filingqa/search"
	"github.com/poiesic/filingqa/segment"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "filingqa.toml"

// Config is the complete application configuration.
type Config struct {
	Paths     PathsConfig     `toml:"paths"`
	AI        ai.Config       `toml:"ai"`
	Segment   SegmentConfig   `toml:"segment"`
	Index     IndexConfig     `toml:"index"`
	Search    SearchConfig    `toml:"search"`
	Ingestion IngestionConfig `toml:"ingestion"`
	Companies []core.Company  `toml:"companies"`
}

// PathsConfig locates the data directories.
type PathsConfig struct {
	// Raw holds raw/<TICKER>/<FILING_TYPE>/ filings.
	Raw string `toml:"raw"`
	// Processed holds the corpus snapshot.
	Processed string `toml:"processed"`
	// Index holds the persisted vector index.
	Index string `toml:"index"`
	// Taxonomy optionally replaces the built-in concept taxonomy.
	Taxonomy string `toml:"taxonomy,omitempty"`
}

// SegmentConfig tunes document segmentation.
type SegmentConfig struct {
	MaxChunkSize int `toml:"max_chunk_size"`
	MinLength    int `toml:"min_length"`
}

// IndexConfig tunes index builds.
type IndexConfig struct {
	BatchSize   int      `toml:"batch_size"`
	MaxAttempts int      `toml:"max_attempts"`
	RetryDelay  Duration `toml:"retry_delay"`
}

// SearchConfig tunes query-time behaviour.
type SearchConfig struct {
	TopK    int      `toml:"top_k"`
	Timeout Duration `toml:"timeout"`
}

// IngestionConfig tunes corpus processing.
type IngestionConfig struct {
	// Workers is the pool size; 0 selects runtime.NumCPU() / 2.
	Workers int `toml:"workers"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Raw:       filepath.Join("data", "raw"),
			Processed: filepath.Join("data", "processed"),
			Index:     filepath.Join("data", "index"),
		},
		AI: *ai.DefaultConfig(),
		Segment: SegmentConfig{
			MaxChunkSize: segment.DefaultMaxChunkSize,
			MinLength:    segment.DefaultMinLength,
		},
		Index: IndexConfig{
			BatchSize:   index.DefaultBatchSize,
			MaxAttempts: index.DefaultMaxAttempts,
			RetryDelay:  Duration(index.DefaultRetryDelay),
		},
		Search: SearchConfig{
			TopK:    search.DefaultTopK,
			Timeout: Duration(30 * time.Second),
		},
		Companies: core.DefaultCompanies(),
	}
}

// Load reads a TOML configuration file over the defaults. Keys absent from
// the file keep their default values. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	// A [[companies]] list in the file replaces the default list.
	cfg.Companies = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Companies) == 0 {
		cfg.Companies = core.DefaultCompanies()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks that the configuration is usable.
// The AI section is normalized in place.
func (c *Config) Validate() error {
	if c.Paths.Raw == "" || c.Paths.Processed == "" || c.Paths.Index == "" {
		return ErrPathRequired
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	if c.Segment.MaxChunkSize < 1 {
		return fmt.Errorf("%w: segment.max_chunk_size %d", ErrInvalidValue, c.Segment.MaxChunkSize)
	}
	if c.Segment.MinLength < 0 {
		return fmt.Errorf("%w: segment.min_length %d", ErrInvalidValue, c.Segment.MinLength)
	}
	if c.Index.BatchSize < 1 {
		return fmt.Errorf("%w: index.batch_size %d", ErrInvalidValue, c.Index.BatchSize)
	}
	if c.Index.MaxAttempts < 1 {
		return fmt.Errorf("%w: index.max_attempts %d", ErrInvalidValue, c.Index.MaxAttempts)
	}
	if c.Search.TopK < 1 {
		return fmt.Errorf("%w: search.top_k %d", ErrInvalidValue, c.Search.TopK)
	}
	if c.Search.Timeout < 0 {
		return fmt.Errorf("%w: search.timeout %s", ErrInvalidValue, c.Search.Timeout.Std())
	}
	if c.Ingestion.Workers < 0 {
		return fmt.Errorf("%w: ingestion.workers %d", ErrInvalidValue, c.Ingestion.Workers)
	}
	seen := make(map[string]bool)
	for _, company := range c.Companies {
		if company.Ticker == "" {
			return fmt.Errorf("%w: company without ticker", ErrInvalidValue)
		}
		if seen[company.Ticker] {
			return fmt.Errorf("%w: duplicate company %s", ErrInvalidValue, company.Ticker)
		}
		seen[company.Ticker] = true
	}
	return nil
}
