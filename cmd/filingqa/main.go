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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/filingqa"
	"github.com/poiesic/filingqa/ai/openai"
	"github.com/poiesic/filingqa/answer"
	"github.com/poiesic/filingqa/config"
	"github.com/poiesic/filingqa/index"
	"github.com/poiesic/filingqa/search"
	"github.com/poiesic/filingqa/taxonomy"
)

// newProvider builds the AI services; tests replace it.
var newProvider = openai.NewProvider

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "filingqa",
		Usage:  "Question answering over SEC filings",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to TOML configuration file",
				Value:   config.DefaultFile,
			},
			&cli.StringFlag{
				Name:  "raw",
				Usage: "Raw filings directory (overrides paths.raw)",
			},
			&cli.StringFlag{
				Name:  "processed",
				Usage: "Processed corpus directory (overrides paths.processed)",
			},
			&cli.StringFlag{
				Name:  "index",
				Usage: "Index directory (overrides paths.index)",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL (overrides ai.embedding_host)",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name (overrides ai.embedding_model)",
			},
			&cli.StringFlag{
				Name:  "generator-host",
				Usage: "Answer generation service host URL (overrides ai.generator_host)",
			},
			&cli.StringFlag{
				Name:  "generator-model",
				Usage: "Answer generation model name (overrides ai.generator_model)",
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "API token for the AI services",
				EnvVars: []string{"FILINGQA_TOKEN", "FIREWORKS_API_KEY"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "process",
				Usage:     "Segment raw filings into the processed corpus",
				ArgsUsage: "[TICKER...]",
				Action:    processCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size (0 uses the configured value)",
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Build the vector index from the processed corpus",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Rebuild even when the persisted index is current",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the index",
				ArgsUsage: "QUESTION",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results (0 uses search.top_k)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the intent and results as JSON",
					},
				},
			},
			{
				Name:      "parse",
				Usage:     "Print the structured intent of a question",
				ArgsUsage: "QUESTION",
				Action:    parseCommand,
			},
			{
				Name:      "answer",
				Usage:     "Answer a question from the filings",
				ArgsUsage: "QUESTION",
				Action:    answerCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the answer as JSON",
					},
				},
			},
			{
				Name:      "evaluate",
				Usage:     "Answer a batch of questions and summarize confidence",
				ArgsUsage: "[QUESTION...]",
				Action:    evaluateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "questions",
						Usage: "Read questions from `FILE`, one per line",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write per-question results to `FILE`",
						Value:   "qa_results.json",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print index statistics",
				Action: statsCommand,
			},
			{
				Name:  "taxonomy",
				Usage: "Concept taxonomy tools",
				Subcommands: []*cli.Command{
					{
						Name:      "export",
						Usage:     "Write the taxonomy as JSON or TOML",
						ArgsUsage: "FILE",
						Action:    taxonomyExportCommand,
					},
				},
			},
			{
				Name:      "init-config",
				Usage:     "Write the default configuration",
				ArgsUsage: "[FILE]",
				Action:    initConfigCommand,
			},
		},
	}
}

// loadConfig reads the configuration file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	override := func(flag string, dst *string) {
		if v := c.String(flag); v != "" {
			*dst = v
		}
	}
	override("raw", &cfg.Paths.Raw)
	override("processed", &cfg.Paths.Processed)
	override("index", &cfg.Paths.Index)
	override("embedding-host", &cfg.AI.EmbeddingHost)
	override("embedding-model", &cfg.AI.EmbeddingModel)
	override("generator-host", &cfg.AI.GeneratorHost)
	override("generator-model", &cfg.AI.GeneratorModel)
	override("token", &cfg.AI.Token)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openEngine(c *cli.Context) (*filingqa.Engine, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	provider, err := newProvider(&cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}
	return filingqa.Open(cfg,
		filingqa.WithProvider(provider),
		filingqa.WithProgress(os.Stderr),
		filingqa.WithLogger(slog.Default()))
}

// queryContext bounds a query by search.timeout.
func queryContext(c *cli.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if timeout := cfg.Search.Timeout.Std(); timeout > 0 {
		return context.WithTimeout(c.Context, timeout)
	}
	return context.WithCancel(c.Context)
}

func question(c *cli.Context) (string, error) {
	q := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if q == "" {
		return "", errors.New("a question is required")
	}
	return q, nil
}

func processCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if w := c.Int("workers"); w > 0 {
		engine.Config().Ingestion.Workers = w
	}

	tickers := make([]string, 0, c.NArg())
	for _, t := range c.Args().Slice() {
		tickers = append(tickers, strings.ToUpper(t))
	}

	result, err := engine.Process(c.Context, tickers...)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	s := result.Summary
	fmt.Fprintf(c.App.Writer, "Files: %d\n", result.Files)
	fmt.Fprintf(c.App.Writer, "Total chunks: %d\n", s.TotalChunks)
	fmt.Fprintf(c.App.Writer, "Total words: %d\n", s.TotalWords)
	fmt.Fprintf(c.App.Writer, "Companies: %d\n", s.Companies)
	if n := len(s.YearsCovered); n > 0 {
		fmt.Fprintf(c.App.Writer, "Years: %d - %d\n", s.YearsCovered[0], s.YearsCovered[n-1])
	}
	fmt.Fprintf(c.App.Writer, "Time: %.1fs\n", result.Elapsed.Seconds())
	return nil
}

func indexCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.EnsureReady(c.Context, c.Bool("force")); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	stats := engine.Stats()
	fmt.Fprintf(c.App.Writer, "Index ready: %d chunks, %d companies, dimension %d\n",
		stats.TotalChunks, stats.Companies, stats.Dimension)
	return nil
}

func searchCommand(c *cli.Context) error {
	q, err := question(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.EnsureReady(c.Context, false); err != nil {
		return err
	}
	cfg := engine.Config()
	ctx, cancel := queryContext(c, cfg)
	defer cancel()

	topK := c.Int("top-k")
	if topK == 0 {
		topK = cfg.Search.TopK
	}
	resp, err := engine.Searcher().SearchWithMonitor(ctx, q, topK, &search.LogMonitor{Logger: slog.Default()})
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, resp)
	}

	fmt.Fprintf(c.App.Writer, "Found %d results in %s\n", len(resp.Results), resp.Elapsed)
	for i, r := range resp.Results {
		fmt.Fprintf(c.App.Writer, "%d. [%0.3f] %s %s - %s (%s)\n", i+1, r.FinalScore, r.Ticker, r.FilingType, r.Section, r.ChunkID)
		fmt.Fprintf(c.App.Writer, "   %s\n", search.Snippet(r.Content, q, 200))
	}
	return nil
}

func parseCommand(c *cli.Context) error {
	q, err := question(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	return writeJSON(c.App.Writer, engine.ParseQuery(q))
}

func answerCommand(c *cli.Context) error {
	q, err := question(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.EnsureReady(c.Context, false); err != nil {
		return err
	}
	ctx, cancel := queryContext(c, engine.Config())
	defer cancel()

	res, err := engine.Answer(ctx, q)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, res)
	}

	fmt.Fprintf(c.App.Writer, "Q: %s\n\nA: %s\n\n", res.Question, res.Answer)
	fmt.Fprintf(c.App.Writer, "Metadata: Confidence %.3f, %.1fs, %d companies\n",
		res.Confidence, res.Elapsed.Seconds(), len(res.Companies))
	for _, s := range res.Sources {
		fmt.Fprintf(c.App.Writer, "[Source %d] %s - %s - %s (%.3f)\n", s.ID, s.Company, s.Filing, s.Section, s.Score)
	}
	return nil
}

func evaluateCommand(c *cli.Context) error {
	questions, err := evaluationQuestions(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.EnsureReady(c.Context, false); err != nil {
		return err
	}

	eval, err := engine.Evaluate(c.Context, questions)
	if err != nil {
		return err
	}

	w := c.App.Writer
	for _, res := range eval.Results {
		fmt.Fprintln(w, strings.Repeat("=", 60))
		fmt.Fprintf(w, "Q: %s\n\nA: %s\n\n", res.Question, res.Answer)
		fmt.Fprintf(w, "Metadata: Confidence %.3f, %.1fs, %d companies\n\n",
			res.Confidence, res.Elapsed.Seconds(), len(res.Companies))
	}
	sum := eval.Summary
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Average Confidence: %.3f\n", sum.AverageConfidence)
	fmt.Fprintf(w, "Average Time: %.1fs\n", sum.AverageTime.Seconds())
	fmt.Fprintf(w, "High Confidence (>%.1f): %d/%d\n", answer.HighConfidence, sum.HighConfidence, sum.Questions)

	output := c.String("output")
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := writeJSON(f, eval.Records()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Results saved: %s\n", output)
	return nil
}

// evaluationQuestions takes questions from the arguments, then the
// --questions file, then the built-in set.
func evaluationQuestions(c *cli.Context) ([]string, error) {
	if c.Args().Present() {
		return c.Args().Slice(), nil
	}
	path := c.String("questions")
	if path == "" {
		return answer.EvaluationQuestions, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var questions []string
	for _, line := range strings.Split(string(data), "\n") {
		if q := strings.TrimSpace(line); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions in %s", path)
	}
	return questions, nil
}

func statsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.LoadIndex(c.Context); err != nil && !errors.Is(err, index.ErrIndexNotFound) {
		return err
	}
	return writeJSON(c.App.Writer, engine.Stats())
}

func taxonomyExportCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("an output file is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	tax := taxonomy.Default()
	if cfg.Paths.Taxonomy != "" {
		if tax, err = taxonomy.Load(cfg.Paths.Taxonomy); err != nil {
			return err
		}
	}
	if err := tax.Save(path); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Wrote %d concepts to %s\n", tax.Len(), path)
	return nil
}

func initConfigCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = config.DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Default().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
