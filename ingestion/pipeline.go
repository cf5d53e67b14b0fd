package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/filingqa/core"
	"github.com/poiesic/filingqa/segment"
	"github.com/poiesic/filingqa/storage"
)

// Pipeline orchestrates processing of the raw filing tree.
// Filings are segmented concurrently on a worker pool; output order is
// independent of scheduling.
type Pipeline struct {
	processor    Processor
	rawDir       string
	processedDir string
	extensions   []string
	pool         *ants.Pool
	logger       *slog.Logger
}

// Result describes one completed run.
type Result struct {
	Chunks  []core.Chunk
	Summary core.Summary
	// Tickers lists the tickers that produced chunks, in run order.
	Tickers []string
	Files   int
	Elapsed time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithExtensions restricts the file extensions processed.
// Extensions are matched case-insensitively and include the leading dot.
func WithExtensions(extensions ...string) Option {
	return func(p *Pipeline) error {
		if len(extensions) > 0 {
			p.extensions = slices.Clone(extensions)
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline reading rawDir and writing
// processedDir.
func NewPipeline(processor Processor, rawDir, processedDir string, opts ...Option) (*Pipeline, error) {
	if processor == nil {
		return nil, ErrProcessorRequired
	}
	if rawDir == "" {
		return nil, ErrRawDirRequired
	}
	if processedDir == "" {
		return nil, ErrProcessedDirRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		processor:    processor,
		rawDir:       rawDir,
		processedDir: processedDir,
		extensions:   DefaultExtensions,
		pool:         pool,
		logger:       slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// Run processes the given tickers and writes the corpus snapshot and summary.
// Tickers without a raw directory are skipped. Chunk order is ticker order,
// then filing type, then file name.
func (p *Pipeline) Run(ctx context.Context, tickers []string) (*Result, error) {
	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}
	start := time.Now()
	p.logger.Info("processing companies", "count", len(tickers), "raw", p.rawDir)

	var jobs []job
	for _, ticker := range tickers {
		tickerJobs, err := p.tickerJobs(ticker)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, tickerJobs...)
	}

	documents, err := p.process(ctx, jobs)
	if err != nil {
		return nil, err
	}

	chunks := uniqueIDs(documents)
	if err := storage.SaveSnapshot(p.processedDir, chunks); err != nil {
		return nil, err
	}
	summary := core.Summarize(chunks)
	if err := storage.SaveSummary(p.processedDir, summary); err != nil {
		return nil, err
	}

	result := &Result{
		Chunks:  chunks,
		Summary: summary,
		Tickers: producingTickers(tickers, chunks),
		Files:   len(jobs),
		Elapsed: time.Since(start),
	}
	p.logger.Info("processing complete",
		"files", result.Files,
		"chunks", summary.TotalChunks,
		"words", summary.TotalWords,
		"companies", summary.Companies,
		"elapsed", result.Elapsed)
	return result, nil
}

func (p *Pipeline) tickerJobs(ticker string) ([]job, error) {
	dir := filepath.Join(p.rawDir, ticker)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		p.logger.Warn("no raw filings for ticker", "ticker", ticker)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	years, err := segment.ReadFilingMetadata(dir)
	if err != nil {
		p.logger.Warn("ignoring unreadable filing metadata", "ticker", ticker, "err", err)
		years = segment.FilingYears{}
	}

	jobs, err := collectJobs(dir, ticker, years, p.extensions)
	if err != nil {
		return nil, fmt.Errorf("listing filings for %s: %w", ticker, err)
	}
	p.logger.Debug("queued filings", "ticker", ticker, "files", len(jobs))
	return jobs, nil
}

// process runs jobs on the pool and returns their chunks in job order.
func (p *Pipeline) process(ctx context.Context, jobs []job) ([][]core.Chunk, error) {
	documents := make([][]core.Chunk, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			documents[i] = p.processor.ProcessFile(j.path, j.ticker, j.filingType, j.year)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submitting %s: %w", j.path, err)
		}
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return documents, nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func producingTickers(tickers []string, chunks []core.Chunk) []string {
	seen := make(map[string]bool)
	for _, c := range chunks {
		seen[c.Ticker] = true
	}
	var out []string
	for _, t := range tickers {
		if seen[t] {
			out = append(out, t)
			seen[t] = false
		}
	}
	return out
}
