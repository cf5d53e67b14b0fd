package storage

import (
	"context"

	"github.com/poiesic/filingqa/core"
)

// ChunkRepository stores filing chunks by position.
// Position is the order in which chunks were added, starting at zero,
// and is the same position the chunk occupies in a vector index.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// AddChunks appends chunks after the last stored position.
	// Returns the position assigned to the first chunk.
	// Returns ErrDuplicateKey if a chunk ID is already stored; nothing is
	// written in that case.
	AddChunks(ctx context.Context, chunks ...core.Chunk) (int, error)

	// GetChunk retrieves the chunk stored at position.
	// Returns ErrNotFound if the position is empty.
	GetChunk(ctx context.Context, position int) (core.Chunk, error)

	// GetChunkByID retrieves a chunk and its position by chunk ID.
	// Returns ErrNotFound if no chunk has the ID.
	GetChunkByID(ctx context.Context, chunkID string) (core.Chunk, int, error)

	// GetChunks returns every stored chunk in position order.
	GetChunks(ctx context.Context) ([]core.Chunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
