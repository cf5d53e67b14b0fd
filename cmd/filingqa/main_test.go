package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/filingqa/ai"
	"github.com/poiesic/filingqa/ai/mock"
	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/index"
	"github.com/poiesic/filingqa/taxonomy"
)

func useMockProvider(t *testing.T) {
	t.Helper()
	prev := newProvider
	newProvider = func(*ai.Config) (ai.AIProvider, error) {
		return mock.NewMockProvider(), nil
	}
	t.Cleanup(func() { newProvider = prev })
}

// run executes the CLI against a data root and returns stdout.
func run(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	base := []string{"filingqa",
		"--log-level", "error",
		"--config", filepath.Join(root, "filingqa.toml"),
		"--raw", filepath.Join(root, "raw"),
		"--processed", filepath.Join(root, "processed"),
		"--index", filepath.Join(root, "index"),
	}
	err := newApp(&out).Run(append(base, args...))
	return out.String(), err
}

func findFlag[T cli.Flag](flags []cli.Flag, name string) T {
	var zero T
	for _, f := range flags {
		if typed, ok := f.(T); ok && f.Names()[0] == name {
			return typed
		}
	}
	return zero
}

func findCommand(app *cli.App, name string) *cli.Command {
	for _, c := range app.Commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestFlagDefaults(t *testing.T) {
	app := newApp(&bytes.Buffer{})

	logLevel := findFlag[*cli.StringFlag](app.Flags, "log-level")
	require.NotNil(t, logLevel)
	assert.Equal(t, "info", logLevel.Value)

	cfgFlag := findFlag[*cli.StringFlag](app.Flags, "config")
	require.NotNil(t, cfgFlag)
	assert.Equal(t, "filingqa.toml", cfgFlag.Value)

	token := findFlag[*cli.StringFlag](app.Flags, "token")
	require.NotNil(t, token)
	assert.Contains(t, token.EnvVars, "FIREWORKS_API_KEY")

	for _, name := range []string{"process", "index", "search", "parse", "answer", "evaluate", "stats", "taxonomy"} {
		assert.NotNil(t, findCommand(app, name), "command %s", name)
	}

	search := findCommand(app, "search")
	topK := findFlag[*cli.IntFlag](search.Flags, "top-k")
	require.NotNil(t, topK)
	assert.Equal(t, 0, topK.Value)
}

func TestInvalidLogLevel(t *testing.T) {
	err := newApp(&bytes.Buffer{}).Run([]string{"filingqa", "--log-level", "loud", "stats"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestParseCommand(t *testing.T) {
	useMockProvider(t)
	root := t.TempDir()

	out, err := run(t, root, "parse", "Compare", "Apple", "and", "Microsoft", "revenue", "in", "2023")
	require.NoError(t, err)

	var intent core.QueryIntent
	require.NoError(t, json.Unmarshal([]byte(out), &intent))
	assert.Equal(t, []string{"AAPL", "MSFT"}, intent.Tickers)
	assert.Equal(t, []int{2023}, intent.Temporal.Years)

	_, err = run(t, root, "parse")
	assert.Error(t, err)
}

func TestTaxonomyExport(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "taxonomy.toml")

	out, err := run(t, root, "taxonomy", "export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	loaded, err := taxonomy.Load(path)
	require.NoError(t, err)
	assert.Equal(t, taxonomy.Default().IDs(), loaded.IDs())
}

func TestStats_NoIndex(t *testing.T) {
	useMockProvider(t)
	out, err := run(t, t.TempDir(), "stats")
	require.NoError(t, err)

	var stats index.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, index.StatusNotInitialized, stats.Status)
}

func TestProcessIndexSearchAnswer(t *testing.T) {
	useMockProvider(t)
	root := t.TempDir()

	body := strings.Repeat("Cloud services revenue growth was driven by Azure demand. ", 6)
	path := filepath.Join(root, "raw", "MSFT", "10-K", "msft-2023.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("<p>"+body+"</p>"), 0o644))

	out, err := run(t, root, "process", "msft")
	require.NoError(t, err)
	assert.Contains(t, out, "Companies: 1")
	assert.FileExists(t, filepath.Join(root, "processed", "MSFT_processed.json"))

	out, err = run(t, root, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "Index ready")

	out, err = run(t, root, "search", "--top-k", "3", "Azure cloud revenue")
	require.NoError(t, err)
	assert.Contains(t, out, "MSFT 10-K")

	out, err = run(t, root, "search", "--json", "Azure cloud revenue")
	require.NoError(t, err)
	var resp struct {
		Intent  core.QueryIntent    `json:"query_intent"`
		Results []core.SearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "MSFT", resp.Results[0].Ticker)

	out, err = run(t, root, "answer", "How is Microsoft cloud revenue growing?")
	require.NoError(t, err)
	assert.Contains(t, out, "A: mock answer to Question: How is Microsoft cloud revenue growing?")
	assert.Contains(t, out, "[Source 1] Microsoft (MSFT)")

	questions := filepath.Join(root, "questions.txt")
	require.NoError(t, os.WriteFile(questions, []byte("How is Microsoft cloud revenue growing?\n\nAzure cloud revenue\n"), 0o644))
	results := filepath.Join(root, "qa_results.json")
	out, err = run(t, root, "evaluate", "--questions", questions, "--output", results)
	require.NoError(t, err)
	assert.Contains(t, out, "Average Confidence:")
	assert.Contains(t, out, "High Confidence (>0.6):")
	assert.Contains(t, out, "/2")

	data, err := os.ReadFile(results)
	require.NoError(t, err)
	var records []struct {
		Q    string  `json:"q"`
		A    string  `json:"a"`
		Conf float64 `json:"conf"`
	}
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Azure cloud revenue", records[1].Q)
	assert.Equal(t, "mock answer to Question: Azure cloud revenue", records[1].A)
	assert.Positive(t, records[0].Conf)
}

func TestInitConfig(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "out.toml")

	_, err := run(t, root, "init-config", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = run(t, root, "init-config", path)
	assert.Error(t, err, "existing files are not overwritten")
}
