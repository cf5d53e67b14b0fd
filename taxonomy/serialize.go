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

package taxonomy

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Format is a serialized taxonomy encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// document is the on-disk shape: concepts keyed by identifier.
type document map[string]Concept

func (t *Taxonomy) document() document {
	doc := make(document, len(t.concepts))
	for _, c := range t.concepts {
		doc[c.ID] = c.clone()
	}
	return doc
}

// Encode writes the taxonomy to w.
func (t *Taxonomy) Encode(w io.Writer, format Format) error {
	doc := t.document()
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Decode reads a taxonomy from r.
func Decode(r io.Reader, format Format) (*Taxonomy, error) {
	var doc document
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode taxonomy json: %w", err)
		}
	case FormatTOML:
		if err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode taxonomy toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	concepts := make([]Concept, 0, len(doc))
	for id, c := range doc {
		c.ID = id
		concepts = append(concepts, c)
	}
	return New(concepts)
}

// Load reads a taxonomy file. The format follows the extension.
func Load(path string) (*Taxonomy, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy: %w", err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Save writes the taxonomy to path. The format follows the extension.
func (t *Taxonomy) Save(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create taxonomy file: %w", err)
	}
	if err := t.Encode(f, format); err != nil {
		f.Close()
		return fmt.Errorf("encode taxonomy: %w", err)
	}
	return f.Close()
}
