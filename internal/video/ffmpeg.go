package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"

	"vidset/internal/logging"
	"vidset/internal/media/ffprobe"
)

const (
	defaultDecodeTimeout = 60 * time.Second
	waitDelay            = 2 * time.Second
)

var commandContext = exec.CommandContext

// FFmpegOpener opens videos with ffprobe and decodes frames with ffmpeg.
type FFmpegOpener struct {
	FFmpegBinary  string
	FFprobeBinary string
	// DecodeTimeout bounds each ffprobe and ffmpeg invocation; zero uses 60s.
	DecodeTimeout time.Duration
	Logger        *slog.Logger
}

// NewFFmpegOpener returns an opener for the given binaries.
func NewFFmpegOpener(ffmpegBinary, ffprobeBinary string, timeout time.Duration, logger *slog.Logger) *FFmpegOpener {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FFmpegOpener{
		FFmpegBinary:  ffmpegBinary,
		FFprobeBinary: ffprobeBinary,
		DecodeTimeout: timeout,
		Logger:        logger,
	}
}

// Open probes path and returns a handle for the first video stream.
func (o *FFmpegOpener) Open(ctx context.Context, path string) (Handle, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrOpen, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrOpen, path)
	}

	probeCtx, cancel := context.WithTimeout(ctx, o.timeout())
	defer cancel()
	result, err := ffprobe.Inspect(probeCtx, o.FFprobeBinary, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s: probe timed out after %s", ErrOpen, path, o.timeout())
		}
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	stream, err := result.FirstVideo()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("%w: %s: invalid dimensions %dx%d", ErrOpen, path, stream.Width, stream.Height)
	}

	rate, constant := stream.ConstantFrameRate()
	if !constant {
		rate = 0
	}

	logger := o.logger()
	logger.Debug("video opened",
		slog.String("path", path),
		slog.Int("width", stream.Width),
		slog.Int("height", stream.Height),
		slog.Int("frames", stream.FrameCount()),
		slog.String("codec", stream.CodecName),
		slog.Float64("seek_rate", rate),
	)
	return &ffmpegHandle{
		opener: o,
		path:   path,
		stream: stream.Index,
		width:  stream.Width,
		height: stream.Height,
		frames: stream.FrameCount(),
		rate:   rate,
	}, nil
}

func (o *FFmpegOpener) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}

func (o *FFmpegOpener) timeout() time.Duration {
	if o.DecodeTimeout <= 0 {
		return defaultDecodeTimeout
	}
	return o.DecodeTimeout
}

func (o *FFmpegOpener) binary() string {
	if bin := strings.TrimSpace(o.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}

type ffmpegHandle struct {
	opener *FFmpegOpener
	path   string
	stream int
	width  int
	height int
	// frames is the declared frame count, 0 when unknown.
	frames int
	// rate is the constant frame rate used for input seeking, 0 to decode
	// from the start.
	rate   float64
	closed atomic.Bool
}

func (h *ffmpegHandle) Width() int  { return h.width }
func (h *ffmpegHandle) Height() int { return h.height }

func (h *ffmpegHandle) Frame(ctx context.Context, index int) (image.Image, error) {
	if h.closed.Load() {
		return nil, ErrClosed
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: negative frame index %d", ErrDecode, index)
	}
	if h.frames > 0 && index >= h.frames {
		return nil, fmt.Errorf("%w: frame %d beyond last frame %d", ErrDecode, index, h.frames-1)
	}

	frameCtx, cancel := context.WithTimeout(ctx, h.opener.timeout())
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := commandContext(frameCtx, h.opener.binary(), h.frameArgs(index)...) //nolint:gosec
	cmd.WaitDelay = waitDelay
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(frameCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: frame %d: timed out after %s", ErrDecode, index, h.opener.timeout())
		}
		return nil, fmt.Errorf("%w: frame %d: %v: %s", ErrDecode, index, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: frame %d: no output", ErrDecode, index)
	}
	img, err := imaging.Decode(bytes.NewReader(stdout.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %v", ErrDecode, index, err)
	}
	return img, nil
}

// frameArgs builds the ffmpeg arguments for one frame. With a known constant
// rate the input is seeked to half a frame before the target, so the first
// decoded frame is the target and select picks n=0. Otherwise every frame up
// to index is decoded and counted.
func (h *ffmpegHandle) frameArgs(index int) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	selected := index
	if h.rate > 0 && index > 0 {
		seek := (float64(index) - 0.5) / h.rate
		args = append(args, "-ss", strconv.FormatFloat(seek, 'f', 6, 64))
		selected = 0
	}
	return append(args,
		"-i", h.path,
		"-map", "0:"+strconv.Itoa(h.stream),
		"-vf", fmt.Sprintf(`select=eq(n\,%d)`, selected),
		"-vsync", "0",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
}

func (h *ffmpegHandle) Close() error {
	h.closed.Store(true)
	return nil
}
