// Package ffprobe wraps ffprobe JSON output for the video properties the
// frame extractor needs.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: per-stream properties (dimensions, frame counts, rates)
//
// Inspect runs ffprobe; Result.FirstVideo selects the stream frames are
// decoded from.
package ffprobe
