package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/freundm/dezoomify/internal/fetch"
	"github.com/freundm/dezoomify/internal/progress"
	"github.com/freundm/dezoomify/internal/staging"
)

// Tile identifies one tile cell of the selected level.
type Tile struct {
	Col int
	Row int
}

// Options configures the acquisition pool.
type Options struct {
	// Workers is the number of parallel fetch workers. Default: 16
	Workers int

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// Log is the logger. Default: logrus standard logger.
	Log *logrus.Logger
}

// Pool fetches tiles in parallel into a staging area.
type Pool struct {
	client *fetch.Client
	area   *staging.Area
	opts   Options
}

// New creates an acquisition pool.
func New(client *fetch.Client, area *staging.Area, opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 16
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Pool{client: client, area: area, opts: opts}
}

// Run fetches every task's tile, with up to opts.Workers tiles in flight.
// Each successfully staged tile is sent on completions; the channel is closed
// once all workers have exited, so a consumer draining it sees exactly the
// successful fetches and then termination.
//
// Failures never abort the run. A tile missing on the server is logged at
// warn level, any other fetch or staging error at error level; either way the
// task is dropped without retry. Cancelling ctx stops workers from claiming
// new tasks; in-flight fetches finish or fail naturally.
//
// Run blocks until completions is closed and returns the fetched tile count.
func (p *Pool) Run(ctx context.Context, tasks []Tile, urlFor func(col, row int) string, completions chan<- Tile) int {
	jobs := make(chan Tile)
	var fetched atomic.Int64
	var wg sync.WaitGroup

	log := p.opts.Log

	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tile := range jobs {
				if p.fetchTile(ctx, tile, urlFor(tile.Col, tile.Row)) {
					fetched.Add(1)
					completions <- tile
				}
			}
		}()
	}

	feed := func() {
		defer close(jobs)
		for i, tile := range tasks {
			select {
			case jobs <- tile:
			case <-ctx.Done():
				log.Infof("download cancelled, %d tasks dropped", len(tasks)-i)
				return
			}
		}
	}
	feed()

	wg.Wait()
	close(completions)
	return int(fetched.Load())
}

// fetchTile performs one fetch into staging. Returns true on success.
func (p *Pool) fetchTile(ctx context.Context, tile Tile, url string) bool {
	log := p.opts.Log
	if p.opts.Progress != nil {
		p.opts.Progress.TileStarted()
	}

	log.Infof("downloading tile (row %3d, col %3d)", tile.Row, tile.Col)

	body, err := p.client.Get(ctx, url)
	if err != nil {
		if p.opts.Progress != nil {
			p.opts.Progress.TileFailed()
		}
		if errors.Is(err, fetch.ErrNotFound) {
			log.Warnf("tile %s (row %d, col %d) does not exist on the server", url, tile.Row, tile.Col)
		} else {
			log.Errorf("fetch tile %s (row %d, col %d): %v", url, tile.Row, tile.Col, err)
		}
		return false
	}
	defer body.Close()

	n, err := p.area.Put(ctx, tile.Col, tile.Row, body)
	if err != nil {
		if p.opts.Progress != nil {
			p.opts.Progress.TileFailed()
		}
		log.Errorf("stage tile (row %d, col %d): %v", tile.Row, tile.Col, err)
		return false
	}

	if p.opts.Progress != nil {
		p.opts.Progress.TileCompleted(n)
	}
	log.Debugf("tile (row %3d, col %3d), %s, %s", tile.Row, tile.Col, progress.FormatBytes(n), url)
	return true
}
