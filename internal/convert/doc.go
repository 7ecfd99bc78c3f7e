// Package convert orchestrates a full run over a discovered work set: the
// conversion gate, the per-file transcode loop with failure isolation, the
// deletion gate, and the deletion pass over the successful subset.
package convert
