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

package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/storage"
	"github.com/poiesic/filingqa/storage/badger"
)

// Artifact names inside an index directory.
const (
	EmbeddingsFile = "embeddings.npy"
	IndexFile      = "index.bin"
	MetadataDir    = "metadata"
	ManifestFile   = "manifest.toml"
)

// ManifestVersion is the artifact layout version written by this package.
const ManifestVersion = 1

// Manifest describes a persisted index build.
type Manifest struct {
	Version     int       `toml:"version"`
	BuildID     string    `toml:"build_id"`
	CreatedAt   time.Time `toml:"created_at"`
	Model       string    `toml:"model"`
	Dimension   int       `toml:"dimension"`
	Count       int       `toml:"count"`
	Fingerprint string    `toml:"fingerprint"`
}

// Exists reports whether dir holds a complete artifact set.
// It checks presence only; Load also checks consistency.
func Exists(dir string) bool {
	for _, name := range []string{EmbeddingsFile, IndexFile, MetadataDir, ManifestFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// Persist writes the artifact set to a staging directory next to dir and
// swaps it into place by rename. A failure at any point leaves the previous
// contents of dir untouched.
func (idx *Index) Persist(ctx context.Context, dir string) error {
	if idx == nil || idx.flat == nil {
		return ErrIndexNotReady
	}

	dir = filepath.Clean(dir)
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return err
	}

	staging := dir + ".staging-" + uuid.NewString()
	if err := os.Mkdir(staging, 0755); err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	if err := idx.writeArtifacts(ctx, staging); err != nil {
		return fmt.Errorf("writing index artifacts: %w", err)
	}

	if err := swapDir(staging, dir); err != nil {
		return fmt.Errorf("installing index: %w", err)
	}
	idx.logger.Info("index persisted", "dir", dir, "chunks", idx.Len(), "build", idx.manifest.BuildID)
	return nil
}

func (idx *Index) writeArtifacts(ctx context.Context, dir string) error {
	err := writeFile(filepath.Join(dir, EmbeddingsFile), func(f *os.File) error {
		return WriteNPY(f, idx.flat.Len(), idx.flat.Dim(), idx.flat.data)
	})
	if err != nil {
		return err
	}

	err = writeFile(filepath.Join(dir, IndexFile), func(f *os.File) error {
		_, err := idx.flat.WriteTo(f)
		return err
	})
	if err != nil {
		return err
	}

	backend, err := badger.OpenBackend(filepath.Join(dir, MetadataDir), false, badger.WithLogger(idx.logger))
	if err != nil {
		return err
	}
	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return err
	}
	if _, err := repo.AddChunks(ctx, idx.chunks...); err != nil {
		backend.Close()
		return err
	}
	if err := backend.Close(); err != nil {
		return err
	}

	return writeFile(filepath.Join(dir, ManifestFile), func(f *os.File) error {
		return toml.NewEncoder(f).Encode(idx.manifest)
	})
}

func writeFile(path string, fn func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// swapDir renames staging to dir. An existing dir is moved aside first and
// removed only after staging is in place; if the second rename fails the
// old directory is restored.
func swapDir(staging, dir string) error {
	_, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return os.Rename(staging, dir)
	}
	if err != nil {
		return err
	}

	old := dir + ".old-" + uuid.NewString()
	if err := os.Rename(dir, old); err != nil {
		return err
	}
	if err := os.Rename(staging, dir); err != nil {
		if restoreErr := os.Rename(old, dir); restoreErr != nil {
			return errors.Join(err, restoreErr)
		}
		return err
	}
	return os.RemoveAll(old)
}

// Load reads the artifact set in dir. It returns ErrIndexNotFound when an
// artifact is missing, cannot be decoded, or disagrees with the others on
// count or dimension. Other failures, such as a metadata store locked by a
// writer, are returned as they are.
func (b *Builder) Load(ctx context.Context, dir string) (*Index, error) {
	if !Exists(dir) {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, dir)
	}

	var manifest Manifest
	if err := readFile(filepath.Join(dir, ManifestFile), func(f *os.File) error {
		if err := toml.NewDecoder(f).Decode(&manifest); err != nil {
			return fmt.Errorf("%w: manifest: %w", ErrCorruptArtifact, err)
		}
		return nil
	}); err != nil {
		return nil, unavailable(err)
	}

	var rows, cols int
	if err := readFile(filepath.Join(dir, EmbeddingsFile), func(f *os.File) error {
		var err error
		rows, cols, err = ReadNPYHeader(f)
		return err
	}); err != nil {
		return nil, unavailable(err)
	}

	var flat *FlatIndex
	if err := readFile(filepath.Join(dir, IndexFile), func(f *os.File) error {
		info, err := f.Stat()
		if err != nil {
			return err
		}
		flat, err = readFlatIndex(f, info.Size())
		return err
	}); err != nil {
		return nil, unavailable(err)
	}

	chunks, err := readMetadata(ctx, filepath.Join(dir, MetadataDir), b)
	if err != nil {
		return nil, unavailable(fmt.Errorf("metadata: %w", err))
	}

	n := flat.Len()
	if rows != n || len(chunks) != n || manifest.Count != n {
		return nil, fmt.Errorf("%w: artifact counts disagree (embeddings %d, index %d, metadata %d, manifest %d)",
			ErrIndexNotFound, rows, n, len(chunks), manifest.Count)
	}
	if cols != flat.Dim() || manifest.Dimension != flat.Dim() {
		return nil, fmt.Errorf("%w: artifact dimensions disagree (embeddings %d, index %d, manifest %d)",
			ErrIndexNotFound, cols, flat.Dim(), manifest.Dimension)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty index", ErrIndexNotFound)
	}

	b.logger.Info("index loaded", "dir", dir, "chunks", n, "dimension", flat.Dim(), "build", manifest.BuildID)
	return &Index{
		flat:     flat,
		chunks:   chunks,
		manifest: manifest,
		embedder: b.embedder,
		logger:   b.logger,
	}, nil
}

// unavailable maps missing and undecodable artifacts to ErrIndexNotFound.
func unavailable(err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrCorruptArtifact) {
		return fmt.Errorf("%w: %w", ErrIndexNotFound, err)
	}
	return fmt.Errorf("loading index: %w", err)
}

func readFile(path string, fn func(f *os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

// readMetadata reads the chunk store without taking its write lock, so
// concurrent loads of the same index do not conflict.
func readMetadata(ctx context.Context, dir string, b *Builder) ([]core.Chunk, error) {
	backend, err := badger.OpenBackend(dir, false, badger.WithReadOnly(), badger.WithLogger(b.logger))
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return nil, err
	}
	chunks, err := repo.GetChunks(ctx)
	if errors.Is(err, storage.ErrSerializationFailed) || errors.Is(err, storage.ErrTruncatedData) {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
	}
	return chunks, err
}
