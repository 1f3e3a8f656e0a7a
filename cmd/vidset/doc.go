// Command vidset converts video-level drone annotations into a per-frame
// detector dataset.
//
//	vidset build      sample, decode and write images/labels plus the descriptor
//	vidset inspect    summarize the annotation file without decoding video
//	vidset deps       check ffmpeg and ffprobe
//	vidset config     create or validate the TOML configuration
package main
