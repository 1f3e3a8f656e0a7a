package video

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrNotFound indicates the video file does not exist.
	ErrNotFound = errors.New("video not found")
	// ErrOpen indicates the file exists but could not be opened as video.
	ErrOpen = errors.New("video open failed")
	// ErrDecode indicates a single frame could not be decoded.
	ErrDecode = errors.New("frame decode failed")
	// ErrClosed is returned by Frame after Close.
	ErrClosed = errors.New("video handle closed")
)

// Opener opens videos for random frame access.
type Opener interface {
	Open(ctx context.Context, path string) (Handle, error)
}

// Handle is an open video. Width and Height are the native frame dimensions
// in pixels and stay fixed for the life of the handle.
type Handle interface {
	Width() int
	Height() int
	// Frame decodes the frame at the zero-based index. Each call seeks
	// independently of previous calls.
	Frame(ctx context.Context, index int) (image.Image, error)
	Close() error
}
