// Package video opens source videos and decodes individual frames by index.
//
// The pipeline consumes the Opener and Handle interfaces; FFmpegOpener is
// the production implementation backed by the ffprobe and ffmpeg binaries.
// Locator maps annotation video ids onto files under the source root.
package video
