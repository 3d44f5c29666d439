package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// TotalTiles is the number of tiles expected at the selected level.
	TotalTiles int

	// Workers is the number of parallel fetch workers.
	Workers int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration

	// Source is the tile-set base URL being downloaded (for display).
	Source string
}

// Reporter outputs human-readable progress information for a tile run.
type Reporter struct {
	opts Options

	mu             sync.Mutex
	completedBytes atomic.Int64
	completedTiles atomic.Int32
	failedTiles    atomic.Int32
	inProgress     atomic.Int32
	joinedTiles    atomic.Int32
	startTime      time.Time
	stopCh         chan struct{}
	stopped        bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.startTime = time.Now()

	fmt.Fprintf(r.opts.Output, "[dezoomify] Downloading: %s\n", r.opts.Source)
	fmt.Fprintf(r.opts.Output, "[dezoomify] Tiles: %d | Workers: %d\n",
		r.opts.TotalTiles, r.opts.Workers)

	go r.updateLoop()
}

// Stop stops the progress reporter.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
}

// TileStarted marks a tile fetch as in progress.
func (r *Reporter) TileStarted() {
	r.inProgress.Add(1)
}

// TileCompleted marks a tile fetch as completed.
func (r *Reporter) TileCompleted(size int64) {
	r.completedBytes.Add(size)
	r.completedTiles.Add(1)
	r.inProgress.Add(-1)
}

// TileFailed marks a tile fetch as failed.
func (r *Reporter) TileFailed() {
	r.failedTiles.Add(1)
	r.inProgress.Add(-1)
}

// TileJoined marks a tile as merged into the composite.
func (r *Reporter) TileJoined() {
	r.joinedTiles.Add(1)
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// printProgress outputs the current progress.
func (r *Reporter) printProgress() {
	completed := int(r.completedTiles.Load())
	failed := int(r.failedTiles.Load())
	inProgress := int(r.inProgress.Load())
	joined := int(r.joinedTiles.Load())

	var percent float64
	if r.opts.TotalTiles > 0 {
		percent = float64(completed+failed) / float64(r.opts.TotalTiles) * 100
	}

	pending := r.opts.TotalTiles - completed - failed - inProgress
	if pending < 0 {
		pending = 0
	}

	fmt.Fprintf(r.opts.Output,
		"\r[dezoomify] Progress: %.1f%% | %d fetched | %d joined | %d failed | %d in-flight | %d pending    ",
		percent, completed, joined, failed, inProgress, pending)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	completed := int(r.completedTiles.Load())
	failed := int(r.failedTiles.Load())
	joined := int(r.joinedTiles.Load())
	duration := time.Since(r.startTime)

	fmt.Fprintf(r.opts.Output,
		"\r[dezoomify] Tiles: %d fetched | %d joined | %d failed | %s downloaded    \n",
		completed, joined, failed, FormatBytes(r.completedBytes.Load()))
	fmt.Fprintf(r.opts.Output, "[dezoomify] Total time: %s\n", formatDuration(duration))
}

// FormatBytes formats bytes as a human-readable string.
func FormatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
