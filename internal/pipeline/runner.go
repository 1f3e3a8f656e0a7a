package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"vidset/internal/annotations"
	"vidset/internal/labels"
	"vidset/internal/logging"
	"vidset/internal/sampling"
	"vidset/internal/video"
)

// Locator resolves a video id to a file path.
type Locator interface {
	Path(videoID string) (string, error)
}

// SampleWriter stores one sample and returns its split-local identifier.
type SampleWriter interface {
	Write(split string, img image.Image, label labels.Label) (int, error)
}

// Options configures a Runner.
type Options struct {
	Opener      video.Opener
	Locator     Locator
	Writer      SampleWriter
	Stride      int
	SplitRatio  float64
	Seed        int64
	Accumulator *Accumulator
	Observer    Observer
	Logger      *slog.Logger
}

// Runner converts annotation entries into dataset samples.
type Runner struct {
	opener   video.Opener
	locator  Locator
	writer   SampleWriter
	stride   int
	ratio    float64
	seed     int64
	acc      *Accumulator
	observer Observer
	logger   *slog.Logger
}

// New validates opts and returns a runner.
func New(opts Options) (*Runner, error) {
	if opts.Opener == nil {
		return nil, errors.New("pipeline: opener is required")
	}
	if opts.Locator == nil {
		return nil, errors.New("pipeline: locator is required")
	}
	if opts.Writer == nil {
		return nil, errors.New("pipeline: writer is required")
	}
	if opts.SplitRatio <= 0 || opts.SplitRatio >= 1 {
		return nil, fmt.Errorf("pipeline: split ratio %v must be within (0,1)", opts.SplitRatio)
	}
	r := &Runner{
		opener:   opts.Opener,
		locator:  opts.Locator,
		writer:   opts.Writer,
		stride:   max(opts.Stride, 1),
		ratio:    opts.SplitRatio,
		seed:     opts.Seed,
		acc:      opts.Accumulator,
		observer: opts.Observer,
		logger:   logging.NewComponentLogger(opts.Logger, "pipeline"),
	}
	if r.acc == nil {
		r.acc = NewAccumulator()
	}
	if r.observer == nil {
		r.observer = NopObserver{}
	}
	return r, nil
}

// Accumulator returns the runner's counters.
func (r *Runner) Accumulator() *Accumulator {
	return r.acc
}

// Run processes entries in order and returns the final counters. Video and
// frame failures are counted and skipped. A write failure or cancellation
// stops the run and is returned along with the counters reached so far;
// samples already written stay on disk.
func (r *Runner) Run(ctx context.Context, entries []annotations.Entry) (Counters, error) {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return r.acc.Snapshot(), err
		}
		if err := r.runVideo(ctx, entry); err != nil {
			return r.acc.Snapshot(), err
		}
	}
	return r.acc.Snapshot(), nil
}

func (r *Runner) runVideo(ctx context.Context, entry annotations.Entry) error {
	videoID := entry.VideoID
	if videoID == "" {
		videoID = fmt.Sprintf("#%d", entry.Index)
	}
	r.observer.VideoStarted(videoID)
	defer func() {
		r.observer.VideoDone(videoID, r.acc.Snapshot())
	}()

	if !entry.Valid() {
		r.failVideo(videoID, entry.Err)
		return nil
	}
	path, err := r.locator.Path(entry.VideoID)
	if err != nil {
		r.failVideo(videoID, err)
		return nil
	}
	handle, err := r.opener.Open(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.failVideo(videoID, err)
		return nil
	}
	defer func() {
		if cerr := handle.Close(); cerr != nil {
			r.logger.Debug("close video failed", slog.String(logging.FieldVideoID, videoID), logging.Error(cerr))
		}
	}()

	split := sampling.Partition(sampling.Collect(entry.Record, r.stride), r.ratio, r.seed)
	for _, part := range []struct {
		name   string
		frames []annotations.FrameBox
	}{
		{sampling.Train, split.Train},
		{sampling.Val, split.Val},
	} {
		for _, box := range part.frames {
			if err := r.runFrame(ctx, handle, videoID, part.name, box); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) runFrame(ctx context.Context, handle video.Handle, videoID, split string, box annotations.FrameBox) error {
	img, err := handle.Frame(ctx, box.Frame)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.acc.RecordFrameError()
		r.observer.FrameFailed(videoID, box.Frame, err)
		return nil
	}
	label := labels.Normalize(box, handle.Width(), handle.Height())
	id, err := r.writer.Write(split, img, label)
	if err != nil {
		return fmt.Errorf("video %s frame %d: %w", videoID, box.Frame, err)
	}
	r.acc.RecordSuccess(split)
	r.observer.SampleWritten(Sample{
		VideoID: videoID,
		Frame:   box.Frame,
		Split:   split,
		ID:      id,
		Label:   label,
	})
	return nil
}

func (r *Runner) failVideo(videoID string, err error) {
	r.acc.RecordVideoError()
	r.observer.VideoFailed(videoID, err)
}
