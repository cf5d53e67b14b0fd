package index

import (
	"bufio"
	"cmp"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
)

// flatMagic opens a serialized FlatIndex.
const (
	flatMagic     = "FQFLATIP"
	flatVersion   = uint32(1)
	flatHeaderLen = len(flatMagic) + 16
)

// FlatIndex is an exact inner-product index over contiguous vectors.
// Vector i occupies data[i*dim : (i+1)*dim] and is addressed by position i.
// A FlatIndex is append-only while it is built and read-only afterwards.
type FlatIndex struct {
	dim  int
	data []float32
}

// Hit is one search result from a FlatIndex.
type Hit struct {
	Position int
	Score    float32
}

// NewFlatIndex creates an empty index of the given dimension.
func NewFlatIndex(dim int) *FlatIndex {
	return &FlatIndex{dim: dim}
}

// Dim returns the vector dimension.
func (f *FlatIndex) Dim() int {
	return f.dim
}

// Len returns the number of stored vectors.
func (f *FlatIndex) Len() int {
	if f.dim == 0 {
		return 0
	}
	return len(f.data) / f.dim
}

// Add appends vectors; each must have the index dimension.
func (f *FlatIndex) Add(vectors ...[]float32) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, index has %d", ErrDimensionMismatch, i, len(v), f.dim)
		}
	}
	for _, v := range vectors {
		f.data = append(f.data, v...)
	}
	return nil
}

// Vector returns the stored vector at position. The slice aliases index memory.
func (f *FlatIndex) Vector(position int) []float32 {
	return f.data[position*f.dim : (position+1)*f.dim]
}

// Search returns the k vectors with the largest inner product with query,
// highest first. Equal scores keep position order.
func (f *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ErrDimensionMismatch, len(query), f.dim)
	}

	n := f.Len()
	hits := make([]Hit, n)
	for i := range n {
		hits[i] = Hit{Position: i, Score: dotProduct(query, f.Vector(i))}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// WriteTo serializes the index: magic, version, dimension, count and the
// vectors as little-endian float32.
func (f *FlatIndex) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64

	header := make([]byte, 0, flatHeaderLen)
	header = append(header, flatMagic...)
	header = binary.LittleEndian.AppendUint32(header, flatVersion)
	header = binary.LittleEndian.AppendUint32(header, uint32(f.dim))
	header = binary.LittleEndian.AppendUint64(header, uint64(f.Len()))
	n, err := bw.Write(header)
	written += int64(n)
	if err != nil {
		return written, err
	}

	var buf [4]byte
	for _, v := range f.data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		n, err := bw.Write(buf[:])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

// ReadFlatIndex deserializes an index written by WriteTo.
func ReadFlatIndex(r io.Reader) (*FlatIndex, error) {
	return readFlatIndex(r, -1)
}

// readFlatIndex deserializes an index whose encoded length is size, or
// unknown when size is negative. A header that promises more vectors than
// size holds is rejected before any vector memory is allocated.
func readFlatIndex(r io.Reader, size int64) (*FlatIndex, error) {
	br := bufio.NewReader(r)

	header := make([]byte, flatHeaderLen)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: index header: %w", ErrCorruptArtifact, err)
	}
	if string(header[:len(flatMagic)]) != flatMagic {
		return nil, fmt.Errorf("%w: bad index magic", ErrCorruptArtifact)
	}
	rest := header[len(flatMagic):]
	if v := binary.LittleEndian.Uint32(rest); v != flatVersion {
		return nil, fmt.Errorf("%w: unsupported index version %d", ErrCorruptArtifact, v)
	}
	dim := uint64(binary.LittleEndian.Uint32(rest[4:]))
	count := binary.LittleEndian.Uint64(rest[8:])

	if count > 0 && dim == 0 {
		return nil, fmt.Errorf("%w: %d vectors of dimension 0", ErrCorruptArtifact, count)
	}
	if count > 0 && count > uint64(math.MaxInt64/4)/dim {
		return nil, fmt.Errorf("%w: %d vectors of dimension %d overflow", ErrCorruptArtifact, count, dim)
	}
	values := count * dim
	if size >= 0 && uint64(size) != uint64(flatHeaderLen)+values*4 {
		return nil, fmt.Errorf("%w: header promises %d vectors of dimension %d, file holds %d bytes",
			ErrCorruptArtifact, count, dim, size)
	}

	data, err := readFloat32s(br, int(values))
	if err != nil {
		return nil, err
	}
	return &FlatIndex{dim: int(dim), data: data}, nil
}

// readChunkValues bounds the up-front allocation of readFloat32s; larger
// reads grow as data actually arrives.
const readChunkValues = 1 << 16

// readFloat32s reads n little-endian float32 values.
func readFloat32s(r io.Reader, n int) ([]float32, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative vector length %d", ErrCorruptArtifact, n)
	}
	data := make([]float32, 0, min(n, readChunkValues))
	var buf [4]byte
	for range n {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("%w: vector data: %w", ErrCorruptArtifact, err)
		}
		data = append(data, math.Float32frombits(binary.LittleEndian.Uint32(buf[:])))
	}
	return data, nil
}
