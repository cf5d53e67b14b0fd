package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/filingqa/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join("data", "raw"), cfg.Paths.Raw)
	assert.Equal(t, 10, cfg.Search.TopK)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout.Std())
	assert.Equal(t, 1000, cfg.Segment.MaxChunkSize)
	assert.Len(t, cfg.Companies, 11)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFile(t *testing.T) {
	path := writeConfig(t, `
[paths]
index = "/var/lib/filingqa/index"

[ai]
embedding_host = "http://embed:8080"
generator_model = "gpt-4o-mini"

[search]
top_k = 5
timeout = "2m"

[ingestion]
workers = 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/filingqa/index", cfg.Paths.Index)
	assert.Equal(t, filepath.Join("data", "raw"), cfg.Paths.Raw, "unset keys keep defaults")
	assert.Equal(t, "http://embed:8080/v1", cfg.AI.EmbeddingHost, "hosts are normalized")
	assert.Equal(t, "gpt-4o-mini", cfg.AI.GeneratorModel)
	assert.Equal(t, "all-minilm", cfg.AI.EmbeddingModel)
	assert.Equal(t, 5, cfg.Search.TopK)
	assert.Equal(t, 2*time.Minute, cfg.Search.Timeout.Std())
	assert.Equal(t, 3, cfg.Ingestion.Workers)
	assert.Equal(t, core.DefaultCompanies(), cfg.Companies)
}

func TestLoad_CompaniesReplaceDefaults(t *testing.T) {
	path := writeConfig(t, `
[[companies]]
ticker = "IBM"
name = "International Business Machines"
aliases = ["Big Blue"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []core.Company{{Ticker: "IBM", Name: "International Business Machines", Aliases: []string{"Big Blue"}}}, cfg.Companies)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[paths\nraw = 1"},
		{"bad duration", "[search]\ntimeout = \"soon\""},
		{"zero top k", "[search]\ntop_k = 0"},
		{"negative workers", "[ingestion]\nworkers = -1"},
		{"empty path", "[paths]\nraw = \"\""},
		{"duplicate company", "[[companies]]\nticker = \"A\"\n[[companies]]\nticker = \"A\""},
		{"bad temperature", "[ai]\ntemperature = 5.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Search.Timeout = Duration(90 * time.Second)
	cfg.Paths.Taxonomy = "taxonomy.toml"

	path := filepath.Join(t.TempDir(), "nested", DefaultFile)
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
