package pipeline

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports batch run progress to a writer, typically
// os.Stderr. Reports are emitted every reportInterval items and once
// more on Finish. Safe for concurrent use.
type ProgressTracker struct {
	mu         sync.Mutex
	writer     io.Writer
	total      int
	done       int
	interval   int
	nextReport int
	startedAt  time.Time
	running    bool
}

// NewProgressTracker creates a tracker for total items that reports
// every reportInterval items.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:   writer,
		total:    total,
		interval: reportInterval,
	}
}

// Start resets the tracker and begins timing.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = time.Now()
	p.running = true
	p.done = 0
	p.nextReport = p.interval
}

// Increment adds delta completed items, capped at the total. Calls
// before Start are ignored.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.done = min(p.done+delta, p.total)
	if p.done >= p.nextReport {
		p.report()
		p.nextReport = p.done + p.interval
	}
}

// Finish forces a final report and a trailing newline.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.done = p.total
	p.report()
	fmt.Fprintln(p.writer)
	p.running = false
}

// Elapsed returns the time since Start, or zero before Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startedAt.IsZero() {
		return 0
	}
	return time.Since(p.startedAt)
}

// report writes one progress line. Caller holds the lock.
func (p *ProgressTracker) report() {
	percent := 100.0
	if p.total > 0 {
		percent = float64(p.done) / float64(p.total) * 100.0
	}
	rate := float64(p.done) / time.Since(p.startedAt).Seconds()

	fmt.Fprintf(p.writer, "\r%d/%d (%.1f%%) %.1f calls/s", p.done, p.total, percent, rate)
}
