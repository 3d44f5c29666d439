// Package compose assembles staged tiles into the output image.
//
// The Compositor is the single sequential consumer of the acquisition pool's
// completion channel. It drives an external lossless compositor through the
// narrow Tool interface (allocate canvas, place tile, optimize and emit), so
// the concrete binary (jpegtran by default) is swappable without touching
// the state machine.
//
// Composition proceeds over two scratch buffers. Each merge reads the active
// buffer and one tile and writes the next composite into the spare buffer,
// which then becomes active. The first arriving tile seeds the canvas
// allocation; after that, arrival order does not matter because every tile
// writes a disjoint pixel region.
package compose
