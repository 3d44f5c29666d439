// Package pool implements the parallel tile acquisition stage.
//
// A bounded set of workers drains a task channel, fetches each tile over
// HTTP, writes the bytes verbatim into the staging area, and forwards the
// coordinate to the compositor's completion channel. The channel is closed
// exactly when all workers have exited, so the consumer terminates by
// draining it, with no liveness polling and no lost completions.
//
// Per-tile failures are logged and dropped, never retried: a missing or
// unreachable tile just leaves a gap in the composite.
package pool
