package badger

import (
	"encoding/binary"
)

// Key prefixes for different data types
const (
	chunkPrefix   = "chunk:"
	chunkIDPrefix = "chunkid:"
	chunkCountKey = "chunkcount"
)

// makeChunkKey generates a key for a chunk by position.
// Format: prefix + 8 byte big-endian position, so keys sort by position.
func makeChunkKey(position int) []byte {
	buf := make([]byte, len(chunkPrefix)+8)
	offset := copy(buf, chunkPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(position))
	return buf
}

// makeChunkIDKey generates a key for the chunk ID index.
// Format: prefix + chunk ID
func makeChunkIDKey(chunkID string) []byte {
	buf := make([]byte, len(chunkIDPrefix)+len(chunkID))
	offset := copy(buf, chunkIDPrefix)
	copy(buf[offset:], chunkID)
	return buf
}
