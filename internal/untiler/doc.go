// Package untiler coordinates one image reconstruction end to end.
//
// A Runner resolves the tile-set base directory, fetches the pyramid
// geometry, enqueues one task per tile cell at the selected level, and runs
// the acquisition pool and the compositor concurrently: workers fetch tiles
// in parallel while the compositor merges completions in arrival order. The
// run finishes with a tile-coverage Outcome; gaps are warnings, not errors.
package untiler
