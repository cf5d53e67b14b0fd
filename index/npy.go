package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NumPy .npy format, version 1.0, for a C-ordered little-endian float32 matrix.
const (
	npyMagic     = "\x93NUMPY"
	npyAlignment = 64
)

var (
	npyDescrPattern = regexp.MustCompile(`'descr':\s*'([^']*)'`)
	npyOrderPattern = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	npyShapePattern = regexp.MustCompile(`'shape':\s*\((\d+),\s*(\d+)\s*,?\s*\)`)
)

// WriteNPY writes a rows x cols float32 matrix in NumPy .npy format.
func WriteNPY(w io.Writer, rows, cols int, data []float32) error {
	if len(data) != rows*cols {
		return fmt.Errorf("%w: %d values for a %dx%d matrix", ErrDimensionMismatch, len(data), rows, cols)
	}

	dict := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", rows, cols)
	// magic(6) + version(2) + header length(2) + dict + padding + '\n'
	preamble := len(npyMagic) + 4
	total := preamble + len(dict) + 1
	if rem := total % npyAlignment; rem != 0 {
		dict += strings.Repeat(" ", npyAlignment-rem)
	}
	dict += "\n"

	bw := bufio.NewWriter(w)
	bw.WriteString(npyMagic)
	bw.Write([]byte{1, 0})
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(dict)))
	bw.Write(lenBuf[:])
	bw.WriteString(dict)

	var buf [4]byte
	for _, v := range data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadNPYHeader reads the header of a .npy file and returns the matrix shape.
// Only version 1.0 little-endian float32 C-ordered matrices are accepted.
func ReadNPYHeader(r io.Reader) (rows, cols int, err error) {
	pre := make([]byte, len(npyMagic)+4)
	if _, err := io.ReadFull(r, pre); err != nil {
		return 0, 0, fmt.Errorf("%w: npy header: %w", ErrCorruptArtifact, err)
	}
	if string(pre[:len(npyMagic)]) != npyMagic {
		return 0, 0, fmt.Errorf("%w: bad npy magic", ErrCorruptArtifact)
	}
	if pre[len(npyMagic)] != 1 {
		return 0, 0, fmt.Errorf("%w: unsupported npy version %d", ErrCorruptArtifact, pre[len(npyMagic)])
	}
	headerLen := int(binary.LittleEndian.Uint16(pre[len(npyMagic)+2:]))
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, 0, fmt.Errorf("%w: npy header: %w", ErrCorruptArtifact, err)
	}

	dict := string(header)
	if m := npyDescrPattern.FindStringSubmatch(dict); m == nil || m[1] != "<f4" {
		return 0, 0, fmt.Errorf("%w: npy dtype must be <f4", ErrCorruptArtifact)
	}
	if m := npyOrderPattern.FindStringSubmatch(dict); m == nil || m[1] != "False" {
		return 0, 0, fmt.Errorf("%w: npy data must be C-ordered", ErrCorruptArtifact)
	}
	m := npyShapePattern.FindStringSubmatch(dict)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: npy shape must be two-dimensional", ErrCorruptArtifact)
	}
	rows, _ = strconv.Atoi(m[1])
	cols, _ = strconv.Atoi(m[2])
	return rows, cols, nil
}

// ReadNPY reads a float32 matrix written by WriteNPY or numpy.save.
func ReadNPY(r io.Reader) (rows, cols int, data []float32, err error) {
	br := bufio.NewReader(r)
	rows, cols, err = ReadNPYHeader(br)
	if err != nil {
		return 0, 0, nil, err
	}
	data, err = readFloat32s(br, rows*cols)
	if err != nil {
		return 0, 0, nil, err
	}
	return rows, cols, data, nil
}
