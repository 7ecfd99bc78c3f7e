// Command flacpress converts a FLAC directory tree to MP3 in place and
// optionally deletes the sources that converted successfully. Both phases
// are guarded by interactive confirmation.
package main
