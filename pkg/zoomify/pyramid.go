package zoomify

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors.
var (
	ErrBadGeometry = errors.New("zoomify: geometry values must be positive")
)

// Grid is the tile grid of one pyramid level.
type Grid struct {
	Cols int
	Rows int
}

// Area returns the number of tiles in the grid.
func (g Grid) Area() int {
	return g.Cols * g.Rows
}

// Pyramid describes the complete level structure of a Zoomify tile set.
//
// Level 0 is the coarsest level (a single tile); level MaxZoom()-1 is the
// finest level at the full image resolution.
type Pyramid struct {
	Width    int // full-resolution width in pixels
	Height   int // full-resolution height in pixels
	TileSize int // edge length of a square tile

	levels []Grid
}

// New derives the pyramid for the given full-resolution dimensions and tile
// size. The level list is built top-down: starting from the full dimensions,
// each step records the tile grid and halves the pixel dimensions by integer
// division, stopping once the current grid is a single tile. The list is then
// reversed so that level 0 is the coarsest.
func New(width, height, tileSize int) (*Pyramid, error) {
	if width <= 0 || height <= 0 || tileSize <= 0 {
		return nil, ErrBadGeometry
	}

	var levels []Grid
	w, h := width, height
	for {
		g := Grid{
			Cols: ceilDiv(w, tileSize),
			Rows: ceilDiv(h, tileSize),
		}
		levels = append(levels, g)
		if g.Cols == 1 && g.Rows == 1 {
			break
		}
		w /= 2
		h /= 2
	}

	// Reverse so index 0 is the coarsest level.
	for i, j := 0, len(levels)-1; i < j; i, j = i+1, j-1 {
		levels[i], levels[j] = levels[j], levels[i]
	}

	return &Pyramid{
		Width:    width,
		Height:   height,
		TileSize: tileSize,
		levels:   levels,
	}, nil
}

// MaxZoom returns the number of levels in the pyramid.
func (p *Pyramid) MaxZoom() int {
	return len(p.levels)
}

// Grid returns the tile grid of the given level.
func (p *Pyramid) Grid(level int) Grid {
	return p.levels[level]
}

// Dimensions returns the pixel dimensions of the given level. The server
// protocol truncates, so integer division is deliberate here.
func (p *Pyramid) Dimensions(level int) (width, height int) {
	shift := uint(p.MaxZoom() - level - 1)
	return p.Width >> shift, p.Height >> shift
}

// ResolveLevel maps a requested zoom level to an effective one. A negative
// request means "unset" and selects the finest level. An out-of-range request
// also falls back to the finest level; fellBack reports that this happened so
// the caller can warn. Resolving an already-valid level returns it unchanged.
func (p *Pyramid) ResolveLevel(requested int) (level int, fellBack bool) {
	finest := p.MaxZoom() - 1
	if requested < 0 {
		return finest, false
	}
	if requested >= p.MaxZoom() {
		return finest, true
	}
	return requested, false
}

// GlobalIndex returns the linear index of a tile across the whole pyramid:
// the count of all tiles in every level coarser than the given one, plus the
// row-major offset within the level.
func (p *Pyramid) GlobalIndex(level, col, row int) int {
	index := col + row*p.levels[level].Cols
	for i := 0; i < level; i++ {
		index += p.levels[i].Area()
	}
	return index
}

// TileGroup returns the server-side storage group of a tile. The protocol
// reuses the tile edge length as the group bucket capacity; this is a fixed
// constant of the addressing scheme, not a tunable.
func (p *Pyramid) TileGroup(level, col, row int) int {
	return p.GlobalIndex(level, col, row) / p.TileSize
}

// TileURL returns the full URL of a tile within the given base directory.
func (p *Pyramid) TileURL(base string, level, col, row int) string {
	group := p.TileGroup(level, col, row)
	return JoinURL(base, fmt.Sprintf("TileGroup%d", group), fmt.Sprintf("%d-%d-%d.%s", level, col, row, TileExt))
}

// TileExt is the file extension of Zoomify tiles.
const TileExt = "jpg"

// JoinURL joins path segments with forward slashes, stripping a leading slash
// from every segment but the first and collapsing nothing else.
func JoinURL(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	work := make([]string, 0, len(parts))
	work = append(work, strings.ReplaceAll(parts[0], "\\", "/"))
	for _, part := range parts[1:] {
		part = strings.ReplaceAll(part, "\\", "/")
		work = append(work, strings.TrimPrefix(part, "/"))
	}
	return strings.Join(work, "/")
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
