// Package zoomify models the Zoomify tiling scheme: a quadratic pyramid of
// JPEG tiles, addressed by (level, column, row) and stored server-side in
// fixed-capacity TileGroup folders.
//
// The package is pure computation plus parsing: no network I/O and no
// concurrency. Callers fetch documents themselves and hand the bytes in.
//
// # Geometry
//
//	p, err := zoomify.New(2679, 4000, 256)
//	level, _ := p.ResolveLevel(-1)   // finest
//	grid := p.Grid(level)            // 11 x 16 tiles
//	url := p.TileURL(base, level, col, row)
//
// # Base directory discovery
//
// Pages embed a Zoomify object in one of several historical conventions.
// LocateBase tries an ordered list of matchers and returns the first hit:
//
//	found, err := zoomify.LocateBase(pageHTML)
//	base, err := zoomify.ResolveBase(pageURL, found)
package zoomify
