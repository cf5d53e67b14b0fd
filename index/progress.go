package index

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports embedding progress of an index build, one line
// per batch, rewritten in place.
type ProgressTracker struct {
	writer    io.Writer
	total     int
	batches   int
	done      int
	batch     int
	dimension int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

// NewProgressTracker creates a tracker for total chunks embedded in batches
// of batchSize.
func NewProgressTracker(writer io.Writer, total, batchSize int) *ProgressTracker {
	batches := 0
	if batchSize > 0 {
		batches = (total + batchSize - 1) / batchSize
	}
	return &ProgressTracker{
		writer:  writer,
		total:   total,
		batches: batches,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.done = 0
	p.batch = 0
	p.dimension = 0
}

// BatchDone records a finished batch of size chunks embedded at dimension.
func (p *ProgressTracker) BatchDone(size, dimension int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.batch = min(p.batch+1, p.batches)
	p.done = min(p.done+size, p.total)
	p.dimension = dimension
	p.report()
}

// Finish prints the build summary.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	elapsed := time.Since(p.startTime)
	fmt.Fprintf(p.writer, "\nEmbedded %d chunks in %d batches (dimension %d) in %s\n",
		p.done, p.batch, p.dimension, elapsed.Round(time.Millisecond))
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report prints the current batch line. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.done) / float64(p.total) * 100.0
	}

	eta := "-"
	if p.done > 0 && p.done < p.total {
		perChunk := elapsed / time.Duration(p.done)
		eta = (perChunk * time.Duration(p.total-p.done)).Round(time.Second).String()
	}

	fmt.Fprintf(p.writer, "\rEmbedding batch %d/%d: %d/%d chunks (%.1f%%), dim %d, eta %s",
		p.batch, p.batches, p.done, p.total, percentage, p.dimension, eta)
}
