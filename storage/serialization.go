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
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/poiesic/filingqa/core"
)

// MarshalPosition serializes a chunk position to bytes.
// Big-endian encoding keeps positions in key order.
func MarshalPosition(position int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(position))
	return buf
}

// UnmarshalPosition deserializes a chunk position from bytes.
func UnmarshalPosition(data []byte) (int, error) {
	if len(data) < 8 {
		return 0, ErrTruncatedData
	}
	return int(binary.BigEndian.Uint64(data)), nil
}

// MarshalChunk serializes a Chunk to bytes.
// Chunks use the same JSON shape as the processed corpus files.
func MarshalChunk(chunk *core.Chunk) ([]byte, error) {
	data, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}
	var chunk core.Chunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &chunk, nil
}
