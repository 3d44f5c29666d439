package untiler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/freundm/dezoomify/internal/compose"
	"github.com/freundm/dezoomify/internal/fetch"
	"github.com/freundm/dezoomify/internal/pool"
	"github.com/freundm/dezoomify/internal/progress"
	"github.com/freundm/dezoomify/internal/staging"
	"github.com/freundm/dezoomify/pkg/zoomify"
)

// RunContext is the immutable description of one image run. A fresh value is
// built per image, so batch entries cannot leak state into each other.
type RunContext struct {
	// BaseURL is the tile-set base directory (the parent of the
	// TileGroup folders and ImageProperties.xml).
	BaseURL string

	// Output is the destination file for the reassembled image.
	Output string

	// ZoomLevel is the requested level; negative means the finest.
	ZoomLevel int

	// Workers is the fetch parallelism. Zero selects the default.
	Workers int

	// PersistTiles keeps the staged tiles next to the output instead of
	// a temporary directory that is erased at the end of the run.
	PersistTiles bool

	// SkipDownload recomposes from previously persisted tiles without
	// any network I/O. Implies PersistTiles.
	SkipDownload bool
}

// Outcome is the tile-coverage result of one run.
type Outcome struct {
	Level    int
	Expected int
	Joined   int
}

// Missing returns the number of expected tiles that were not merged.
func (o Outcome) Missing() int {
	return o.Expected - o.Joined
}

// Runner wires the pyramid geometry, acquisition pool and compositor
// together for one or more images.
type Runner struct {
	// Client performs all HTTP fetches.
	Client *fetch.Client

	// Tool is the lossless compositor.
	Tool compose.Tool

	// Log is the logger. Default: logrus standard logger.
	Log *logrus.Logger

	// ShowProgress enables the per-run progress reporter.
	ShowProgress bool
}

// ResolveSource turns a user-supplied URL into a tile-set base directory.
// When isBase is set the URL is already the base directory; otherwise the
// page is fetched and scanned for a Zoomify embedding.
func (r *Runner) ResolveSource(ctx context.Context, url string, isBase bool) (string, error) {
	if isBase {
		return url, nil
	}

	page, err := r.Client.GetBytes(ctx, url)
	if err != nil {
		return "", fmt.Errorf("untiler: fetch page %s: %w", url, err)
	}

	found, err := zoomify.LocateBase(string(page))
	if err != nil {
		return "", err
	}
	r.log().Infof("found zoomifyImagePath: %s", found)

	base, err := zoomify.ResolveBase(url, found)
	if err != nil {
		return "", err
	}
	r.log().Infof("found image directory: %s", base)
	return base, nil
}

// Run reconstructs one image. Geometry errors and compositor tool failures
// are fatal for the image and returned; individual tile failures only reduce
// the outcome's Joined count, which is reported as a warning.
func (r *Runner) Run(ctx context.Context, rc RunContext) (Outcome, error) {
	log := r.log()

	props, err := r.fetchProperties(ctx, rc.BaseURL)
	if err != nil {
		return Outcome{}, err
	}

	pyramid, err := props.Pyramid()
	if err != nil {
		return Outcome{}, err
	}

	level, fellBack := pyramid.ResolveLevel(rc.ZoomLevel)
	if fellBack {
		log.Warnf("the requested zoom level %d is not available, defaulting to maximum (%d)", rc.ZoomLevel, level)
	}

	grid := pyramid.Grid(level)
	width, height := pyramid.Dimensions(level)
	log.Infof("zoom level %d of %d: %dx%d px, %dx%d tiles (%d total)",
		level, pyramid.MaxZoom()-1, width, height, grid.Cols, grid.Rows, grid.Area())

	area, err := r.openStaging(rc)
	if err != nil {
		return Outcome{}, err
	}
	defer func() {
		if derr := area.Destroy(); derr != nil {
			log.Warnf("clean up staging area: %v", derr)
		}
	}()

	workers := rc.Workers
	if workers <= 0 {
		workers = 16
	}

	var reporter *progress.Reporter
	if r.ShowProgress {
		reporter = progress.NewReporter(progress.Options{
			TotalTiles: grid.Area(),
			Workers:    workers,
			Source:     rc.BaseURL,
		})
		reporter.Start()
		defer reporter.Stop()
	}

	tasks := make([]pool.Tile, 0, grid.Area())
	for col := 0; col < grid.Cols; col++ {
		for row := 0; row < grid.Rows; row++ {
			tasks = append(tasks, pool.Tile{Col: col, Row: row})
		}
	}

	// The pool gets its own cancellable context so that a fatal compositor
	// error can stop the feeder mid-run.
	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	completions := make(chan pool.Tile)
	poolDone := make(chan struct{})
	if rc.SkipDownload {
		// Recompose-only: synthesize completions from the expected grid;
		// tiles missing from the staging area are skipped by the
		// compositor like any other gap.
		go func() {
			defer close(poolDone)
			defer close(completions)
			for _, tile := range tasks {
				select {
				case completions <- tile:
				case <-poolCtx.Done():
					return
				}
			}
		}()
	} else {
		p := pool.New(r.Client, area, pool.Options{
			Workers:  workers,
			Progress: reporter,
			Log:      log,
		})
		urlFor := func(col, row int) string {
			return pyramid.TileURL(rc.BaseURL, level, col, row)
		}
		go func() {
			defer close(poolDone)
			p.Run(poolCtx, tasks, urlFor, completions)
		}()
	}

	compositor := compose.New(r.Tool, area, compose.Options{
		Width:    width,
		Height:   height,
		TileSize: pyramid.TileSize,
		Progress: reporter,
		Log:      log,
	})

	joined, err := compositor.Run(ctx, completions, rc.Output)
	if err != nil {
		// Stop the feeder, unblock any workers still sending completions,
		// and wait for the pool to exit before staging is torn down.
		cancel()
		go func() {
			for range completions {
			}
		}()
		<-poolDone
		return Outcome{Level: level, Expected: grid.Area(), Joined: joined}, err
	}

	outcome := Outcome{Level: level, Expected: grid.Area(), Joined: joined}
	if missing := outcome.Missing(); missing > 0 {
		plural := "s"
		if missing == 1 {
			plural = ""
		}
		log.Warnf("image is missing %d tile%s; downloading at a different zoom level (currently %d) may fill the gap%s",
			missing, plural, level, plural)
	}

	return outcome, nil
}

// fetchProperties retrieves and parses ImageProperties.xml from the base
// directory. Any failure here is fatal for the image: without exact geometry
// every tile URL would be wrong.
func (r *Runner) fetchProperties(ctx context.Context, baseURL string) (zoomify.Properties, error) {
	url := zoomify.JoinURL(baseURL, zoomify.PropertiesFile)
	r.log().Infof("fetching %s", url)

	data, err := r.Client.GetBytes(ctx, url)
	if err != nil {
		return zoomify.Properties{}, fmt.Errorf("untiler: fetch %s: %w", url, err)
	}
	return zoomify.ParseProperties(data)
}

// openStaging opens the tile staging area for a run: a directory derived
// from the output name when tiles are persisted, a temporary one otherwise.
func (r *Runner) openStaging(rc RunContext) (*staging.Area, error) {
	if rc.PersistTiles || rc.SkipDownload {
		return staging.Open(TileDir(rc.Output), true)
	}
	return staging.OpenTemp()
}

// TileDir returns the persisted-tile directory for an output path: the
// output filename with its extension stripped.
func TileDir(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output))
}

func (r *Runner) log() *logrus.Logger {
	if r.Log != nil {
		return r.Log
	}
	return logrus.StandardLogger()
}
