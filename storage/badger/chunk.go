package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	// writeMu serializes AddChunks so positions are assigned without gaps.
	writeMu sync.Mutex
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (storage.ChunkRepository, error) {
	return newChunkRepository(backend), nil
}

func newChunkRepository(backend *Backend) *ChunkRepository {
	return &ChunkRepository{
		backend: backend,
	}
}

// Close releases resources. ChunkRepository has no resources to release;
// the backend is closed by its owner.
func (r *ChunkRepository) Close() error {
	return nil
}

// AddChunks appends chunks after the last stored position.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...core.Chunk) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var start int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		if start, err = readCount(tx); err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(chunks))
		for _, c := range chunks {
			if _, ok := seen[c.ChunkID]; ok {
				return fmt.Errorf("%w: chunk %s", storage.ErrDuplicateKey, c.ChunkID)
			}
			seen[c.ChunkID] = struct{}{}

			_, err := tx.Get(makeChunkIDKey(c.ChunkID))
			if err == nil {
				return fmt.Errorf("%w: chunk %s", storage.ErrDuplicateKey, c.ChunkID)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	err = r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for i := range chunks {
			if err := ctx.Err(); err != nil {
				return err
			}
			value, err := storage.MarshalChunk(&chunks[i])
			if err != nil {
				return err
			}
			position := start + i
			if err := wb.Set(makeChunkKey(position), value); err != nil {
				return err
			}
			if err := wb.Set(makeChunkIDKey(chunks[i].ChunkID), storage.MarshalPosition(position)); err != nil {
				return err
			}
		}
		return wb.Set([]byte(chunkCountKey), storage.MarshalPosition(start+len(chunks)))
	})
	if err != nil {
		return 0, err
	}
	return start, nil
}

// GetChunk retrieves the chunk stored at position.
func (r *ChunkRepository) GetChunk(ctx context.Context, position int) (core.Chunk, error) {
	if r.backend.IsClosed() {
		return core.Chunk{}, storage.ErrStorageClosed
	}

	var chunk *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		chunk, err = readChunk(tx, makeChunkKey(position))
		return err
	}, false)
	if err != nil {
		return core.Chunk{}, err
	}
	if chunk == nil {
		return core.Chunk{}, storage.ErrNotFound
	}
	return *chunk, nil
}

// GetChunkByID retrieves a chunk and its position by chunk ID.
func (r *ChunkRepository) GetChunkByID(ctx context.Context, chunkID string) (core.Chunk, int, error) {
	if r.backend.IsClosed() {
		return core.Chunk{}, 0, storage.ErrStorageClosed
	}

	var chunk *core.Chunk
	var position int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeChunkIDKey(chunkID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		err = item.Value(func(val []byte) error {
			var err error
			position, err = storage.UnmarshalPosition(val)
			return err
		})
		if err != nil {
			return err
		}
		chunk, err = readChunk(tx, makeChunkKey(position))
		return err
	}, false)
	if err != nil {
		return core.Chunk{}, 0, err
	}
	if chunk == nil {
		return core.Chunk{}, 0, storage.ErrNotFound
	}
	return *chunk, position, nil
}

// GetChunks returns every stored chunk in position order.
func (r *ChunkRepository) GetChunks(ctx context.Context) ([]core.Chunk, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var chunks []core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				chunks = append(chunks, *chunk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// Count returns the number of stored chunks.
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		count, err = readCount(tx)
		return err
	}, false)
	return count, err
}

// readChunk reads a chunk by key. Returns nil, nil when the key is absent.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}

func readCount(tx *badger.Txn) (int, error) {
	item, err := tx.Get([]byte(chunkCountKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var count int
	err = item.Value(func(val []byte) error {
		var err error
		count, err = storage.UnmarshalPosition(val)
		return err
	})
	return count, err
}
