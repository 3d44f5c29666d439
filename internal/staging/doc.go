// Package staging stores downloaded tiles between acquisition and
// composition.
//
// The storage is a gocloud.dev blob bucket: fileblob over a per-image
// directory in normal runs (so persisted tiles can be inspected and reused
// with the recompose-only mode), memblob in tests. Tiles are keyed
// "{col}_{row}.jpg".
package staging
