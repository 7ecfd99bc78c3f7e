// Package transcode wraps the external ffmpeg binary behind a small client.
// One call converts one FLAC file to MP3 at a constant bitrate, copying all
// metadata tags. The command executor is injectable for tests.
package transcode
