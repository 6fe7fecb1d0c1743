package scanner

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"stereo2spatial/logging"
)

// ProgressTracker reports per-file outcomes as results arrive and keeps the
// running totals
type ProgressTracker struct {
	processed int
	converted int
	skipped   int
	errors    int
	total     int

	stdout io.Writer
	stderr io.Writer

	mu       sync.Mutex
	finished chan struct{}
}

// NewProgressTracker starts consuming results from resultsChan
func NewProgressTracker(total int, stdout, stderr io.Writer, resultsChan <-chan ConvertResult) *ProgressTracker {
	tracker := &ProgressTracker{
		total:    total,
		stdout:   stdout,
		stderr:   stderr,
		finished: make(chan struct{}),
	}

	go tracker.processResults(resultsChan)

	return tracker
}

// processResults updates the tracker state based on conversion results
func (p *ProgressTracker) processResults(resultsChan <-chan ConvertResult) {
	defer close(p.finished)
	for result := range resultsChan {
		p.mu.Lock()
		p.processed++
		switch {
		case result.Skipped:
			p.skipped++
		case result.Success:
			p.converted++
		default:
			p.errors++
		}
		prefix := p.prefix()
		p.mu.Unlock()

		p.report(prefix, result)
	}
}

func (p *ProgressTracker) prefix() string {
	if p.total <= 1 {
		return ""
	}
	return fmt.Sprintf("[%d/%d] ", p.processed, p.total)
}

func (p *ProgressTracker) report(prefix string, result ConvertResult) {
	label := result.Label
	if label == "" {
		label = filepath.Base(result.Path)
	}

	for _, line := range result.Details {
		fmt.Fprintf(p.stderr, "  %s\n", line)
	}

	switch {
	case result.Skipped:
		fmt.Fprintf(p.stdout, "%s%s: unchanged, skipped\n", prefix, label)
	case result.Success:
		fmt.Fprintf(p.stdout, "%s%s -> %s\n", prefix, label, filepath.Base(result.Output))
		logging.LogConversion(result.Path, result.Output, nil)
	default:
		fmt.Fprintf(p.stderr, "%sError converting %s: %v\n", prefix, label, result.Error)
		logging.LogConversion(result.Path, "", result.Error)
	}
}

// Wait blocks until the results channel is closed and drained
func (p *ProgressTracker) Wait() {
	<-p.finished
}

// Totals returns converted, skipped and failed counts
func (p *ProgressTracker) Totals() (converted, skipped, errors int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.converted, p.skipped, p.errors
}

// PrintCompletionStats prints the run summary
func PrintCompletionStats(w io.Writer, result BatchResult) {
	if result.Converted > 0 {
		fmt.Fprintf(w, "\nConverted %d file(s).\n", result.Converted)
	}
	if result.Skipped > 0 {
		fmt.Fprintf(w, "Skipped %d unchanged file(s).\n", result.Skipped)
	}
	if result.Interrupted {
		fmt.Fprintln(w, "Interrupted before all files were converted.")
	}
	if result.Errors > 0 {
		fmt.Fprintf(w, "%d error(s).\n", result.Errors)
	}
}
