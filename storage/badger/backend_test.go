package badger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	_, err := OpenBackend(tmpFile, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestOpenBackend_ReadOnly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	writer, err := OpenBackend(dir, false)
	require.NoError(t, err)
	require.NoError(t, writer.WithBatch(func(wb *badger.WriteBatch) error {
		return wb.Set([]byte("k"), []byte("v"))
	}))

	// A writer holds the directory lock exclusively.
	_, err = OpenBackend(dir, false, WithReadOnly())
	require.Error(t, err)
	require.NoError(t, writer.Close())

	// Readers share it.
	first, err := OpenBackend(dir, false, WithReadOnly())
	require.NoError(t, err)
	defer first.Close()
	second, err := OpenBackend(dir, false, WithReadOnly())
	require.NoError(t, err)
	defer second.Close()

	for _, reader := range []*Backend{first, second} {
		err := reader.WithTx(func(tx *badger.Txn) error {
			item, err := tx.Get([]byte("k"))
			if err != nil {
				return err
			}
			val, err := item.ValueCopy(nil)
			assert.Equal(t, "v", string(val))
			return err
		}, false)
		require.NoError(t, err)
	}
}

func TestOpenBackend_ReadOnlyMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")
	_, err := OpenBackend(dir, false, WithReadOnly())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoDirExists(t, dir)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestWithBatch(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithBatch(func(wb *badger.WriteBatch) error {
		return wb.Set([]byte("k"), []byte("v"))
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = backend.WithBatch(func(wb *badger.WriteBatch) error {
		if err := wb.Set([]byte("never"), []byte("v")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte("k"))
		require.NoError(t, err)
		val, err := item.ValueCopy(nil)
		require.NoError(t, err)
		assert.Equal(t, "v", string(val))

		_, err = tx.Get([]byte("never"))
		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
		return nil
	}, false)
	require.NoError(t, err)
}

func TestMakeChunkKey_Ordering(t *testing.T) {
	a := makeChunkKey(9)
	b := makeChunkKey(10)
	c := makeChunkKey(256)
	assert.Less(t, string(a), string(b))
	assert.Less(t, string(b), string(c))
	assert.Equal(t, "chunkid:AAPL_10-K_2022_0", string(makeChunkIDKey("AAPL_10-K_2022_0")))
}
