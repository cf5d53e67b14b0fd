package index

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNPY_RoundTrip(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}

	var buf bytes.Buffer
	require.NoError(t, WriteNPY(&buf, 2, 3, data))

	raw := buf.Bytes()
	assert.Equal(t, npyMagic, string(raw[:6]))
	headerLen := int(binary.LittleEndian.Uint16(raw[8:10]))
	assert.Zero(t, (10+headerLen)%npyAlignment, "data starts on an aligned offset")
	assert.Equal(t, byte('\n'), raw[10+headerLen-1])
	assert.Len(t, raw, 10+headerLen+len(data)*4)

	rows, cols, decoded, err := ReadNPY(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, data, decoded)
}

func TestNPY_ShapeMismatch(t *testing.T) {
	err := WriteNPY(&bytes.Buffer{}, 2, 2, []float32{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func npyWithHeader(dict string) []byte {
	var buf bytes.Buffer
	buf.WriteString(npyMagic)
	buf.Write([]byte{1, 0})
	var l [2]byte
	binary.LittleEndian.PutUint16(l[:], uint16(len(dict)))
	buf.Write(l[:])
	buf.WriteString(dict)
	return buf.Bytes()
}

func TestReadNPYHeader(t *testing.T) {
	tests := []struct {
		name     string
		dict     string
		rows     int
		cols     int
		wantFail bool
	}{
		{"numpy layout", "{'descr': '<f4', 'fortran_order': False, 'shape': (1200, 384), }\n", 1200, 384, false},
		{"no trailing comma", "{'descr': '<f4', 'fortran_order': False, 'shape': (7, 2)}\n", 7, 2, false},
		{"float64", "{'descr': '<f8', 'fortran_order': False, 'shape': (1, 2), }\n", 0, 0, true},
		{"fortran order", "{'descr': '<f4', 'fortran_order': True, 'shape': (1, 2), }\n", 0, 0, true},
		{"one dimensional", "{'descr': '<f4', 'fortran_order': False, 'shape': (4,), }\n", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, cols, err := ReadNPYHeader(bytes.NewReader(npyWithHeader(tt.dict)))
			if tt.wantFail {
				assert.ErrorIs(t, err, ErrCorruptArtifact)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rows, rows)
			assert.Equal(t, tt.cols, cols)
		})
	}
}

func TestReadNPYHeader_BadMagic(t *testing.T) {
	_, _, err := ReadNPYHeader(bytes.NewReader([]byte("PK\x03\x04 not numpy")))
	assert.ErrorIs(t, err, ErrCorruptArtifact)
}
