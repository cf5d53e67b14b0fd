package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/filingqa/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChunks() []core.Chunk {
	return []core.Chunk{
		{
			Content: "Net sales increased 8% driven by iPhone.", Ticker: "AAPL", FilingType: "10-K",
			Section: "Management Discussion and Analysis", EstimatedYear: core.Year(2022),
			ChunkID: "AAPL_10-K_2022_0", Concepts: []string{"revenue"}, WordCount: 7,
		},
		{
			Content: "Azure revenue grew.", Ticker: "MSFT", FilingType: "10-Q",
			Section: "General Content", EstimatedYear: nil,
			ChunkID: "MSFT_10-Q_None_0", Concepts: []string{}, WordCount: 3,
		},
		{
			Content: "Supply chain risk.", Ticker: "AAPL", FilingType: "10-K",
			Section: "Risk Factors", EstimatedYear: core.Year(2022),
			ChunkID: "AAPL_10-K_2022_1", Concepts: []string{"risk"}, WordCount: 3,
		},
	}
}

func TestMarshalUnmarshalPosition(t *testing.T) {
	for _, pos := range []int{0, 1, 255, 1 << 40} {
		decoded, err := UnmarshalPosition(MarshalPosition(pos))
		require.NoError(t, err)
		assert.Equal(t, pos, decoded)
	}

	_, err := UnmarshalPosition([]byte{1, 2})
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestMarshalChunk(t *testing.T) {
	chunk := sampleChunks()[1]
	data, err := MarshalChunk(&chunk)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"estimated_year":null`)

	decoded, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, chunk, *decoded)
}

func TestUnmarshalChunk_Invalid(t *testing.T) {
	_, err := UnmarshalChunk(nil)
	assert.ErrorIs(t, err, ErrTruncatedData)

	_, err = UnmarshalChunk([]byte("{not json"))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	chunks := sampleChunks()

	require.NoError(t, SaveSnapshot(dir, chunks))
	assert.FileExists(t, filepath.Join(dir, "AAPL_processed.json"))
	assert.FileExists(t, filepath.Join(dir, "MSFT_processed.json"))

	tickers, err := SnapshotTickers(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)

	t.Run("all files in name order", func(t *testing.T) {
		loaded, err := LoadSnapshot(dir, nil)
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		assert.Equal(t, chunks[0], loaded[0])
		assert.Equal(t, chunks[2], loaded[1])
		assert.Equal(t, chunks[1], loaded[2])
	})

	t.Run("ticker order with missing ticker", func(t *testing.T) {
		loaded, err := LoadSnapshot(dir, []string{"MSFT", "TSLA", "AAPL"})
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		assert.Equal(t, "MSFT", loaded[0].Ticker)
		assert.Equal(t, "AAPL_10-K_2022_0", loaded[1].ChunkID)
	})
}

func TestLoadSnapshot_Empty(t *testing.T) {
	_, err := LoadSnapshot(t.TempDir(), nil)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestLoadSnapshot_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL_processed.json"), []byte("[{"), 0644))

	_, err := LoadSnapshot(dir, nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestSummary_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "processed")
	summary := core.Summarize(sampleChunks())

	require.NoError(t, SaveSummary(dir, summary))
	loaded, err := LoadSummary(dir)
	require.NoError(t, err)
	assert.Equal(t, summary, loaded)
	assert.Equal(t, []int{2022}, loaded.YearsCovered)
	assert.Equal(t, 2, loaded.Companies)
}
