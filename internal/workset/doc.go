// Package workset discovers the fixed set of FLAC source files under an
// input root and derives each file's MP3 target path. The set is
// materialized once before conversion begins; nothing rescans mid-run.
package workset
