package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/freundm/dezoomify/internal/pool"
	"github.com/freundm/dezoomify/internal/progress"
	"github.com/freundm/dezoomify/internal/staging"
)

// Tool is the narrow capability interface over the external lossless
// compositor. Every call is all-or-nothing: on error the destination file
// must be considered garbage.
type Tool interface {
	// AllocateCanvas creates a blank canvas of the target dimensions at
	// dest, seeding structural metadata from one source tile.
	AllocateCanvas(ctx context.Context, width, height int, seedTile, dest string) error

	// PlaceTile writes canvas plus one tile placed at the given pixel
	// offset to dest.
	PlaceTile(ctx context.Context, canvas, tile string, offsetX, offsetY int, dest string) error

	// OptimizeAndEmit runs a final optimization pass over canvas and
	// writes the result to outputPath.
	OptimizeAndEmit(ctx context.Context, canvas, outputPath string) error
}

// Compositor state machine.
type state int

const (
	stateEmpty state = iota
	stateSeeded
	stateAccumulating
	stateFinalized
)

// Options configures a Compositor.
type Options struct {
	// Width and Height are the pixel dimensions of the selected level;
	// the canvas is allocated at exactly this size.
	Width  int
	Height int

	// TileSize is the tile edge length; tile (col, row) lands at pixel
	// offset (col*TileSize, row*TileSize).
	TileSize int

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// Log is the logger. Default: logrus standard logger.
	Log *logrus.Logger
}

// Compositor is the single sequential consumer of completed tiles. It builds
// the output image incrementally over two scratch buffers: at any time one
// buffer is active (the current best composite) and the other is the target
// of the next merge. The buffers swap after every successful merge; the
// inactive one always holds stale content and is never read.
type Compositor struct {
	tool Tool
	area *staging.Area
	opts Options
}

// New creates a Compositor reading tiles from area and merging with tool.
func New(tool Tool, area *staging.Area, opts Options) *Compositor {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Compositor{tool: tool, area: area, opts: opts}
}

// Run consumes completions until the channel is closed, merging tiles in
// arrival order, then finalizes the composite into outputPath. Tile arrival
// order is irrelevant: each tile occupies a disjoint pixel region.
//
// It returns the number of tiles merged. A failing tool call aborts the
// composition and is returned as an error; a tile that cannot be read back
// from staging is skipped with a log entry. If no tile was ever merged the
// finalize step is still attempted best-effort but its failure is only a
// warning, and (0, nil) is returned.
func (c *Compositor) Run(ctx context.Context, completions <-chan pool.Tile, outputPath string) (joined int, err error) {
	log := c.opts.Log

	scratch, err := os.MkdirTemp("", "dezoomify_scratch_")
	if err != nil {
		return 0, fmt.Errorf("compose: create scratch dir: %w", err)
	}
	defer func() {
		os.RemoveAll(scratch)
		log.Debug("erased scratch buffers")
	}()

	buffers := [2]string{
		filepath.Join(scratch, "canvas_a.jpg"),
		filepath.Join(scratch, "canvas_b.jpg"),
	}
	active := 0
	st := stateEmpty

	for tile := range completions {
		tilePath, merr := c.area.Materialize(ctx, tile.Col, tile.Row, scratch)
		if merr != nil {
			log.Errorf("read back tile (row %d, col %d): %v", tile.Row, tile.Col, merr)
			continue
		}

		if st == stateEmpty {
			// The canvas takes only structural metadata from the seed
			// tile; its pixels land via the PlaceTile below like any
			// other tile's.
			if err := c.tool.AllocateCanvas(ctx, c.opts.Width, c.opts.Height, tilePath, buffers[active]); err != nil {
				return joined, fmt.Errorf("compose: allocate %dx%d canvas: %w", c.opts.Width, c.opts.Height, err)
			}
			st = stateSeeded
		}

		log.Infof("adding tile (row %3d, col %3d) to the image", tile.Row, tile.Col)
		offX := tile.Col * c.opts.TileSize
		offY := tile.Row * c.opts.TileSize
		if err := c.tool.PlaceTile(ctx, buffers[active], tilePath, offX, offY, buffers[1-active]); err != nil {
			return joined, fmt.Errorf("compose: place tile (row %d, col %d): %w", tile.Row, tile.Col, err)
		}
		active = 1 - active
		st = stateAccumulating
		joined++
		if c.opts.Progress != nil {
			c.opts.Progress.TileJoined()
		}
		os.Remove(tilePath)
	}

	if st == stateEmpty {
		log.Warn("no tiles were merged, attempting to emit an empty canvas")
		if err := c.tool.OptimizeAndEmit(ctx, buffers[active], outputPath); err != nil {
			log.Warnf("emit empty canvas: %v", err)
		}
		return 0, nil
	}

	if err := c.tool.OptimizeAndEmit(ctx, buffers[active], outputPath); err != nil {
		return joined, fmt.Errorf("compose: optimize and emit %s: %w", outputPath, err)
	}
	st = stateFinalized

	return joined, nil
}
