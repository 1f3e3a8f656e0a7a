package pipeline

import (
	"log/slog"

	"vidset/internal/labels"
	"vidset/internal/logging"
)

// Sample describes one written dataset sample.
type Sample struct {
	VideoID string
	Frame   int
	Split   string
	ID      int
	Label   labels.Label
}

// Observer receives pipeline events. Implementations must not block for long;
// they run inline on the pipeline goroutine.
type Observer interface {
	VideoStarted(videoID string)
	SampleWritten(sample Sample)
	FrameFailed(videoID string, frame int, err error)
	VideoFailed(videoID string, err error)
	VideoDone(videoID string, counters Counters)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) VideoStarted(string)            {}
func (NopObserver) SampleWritten(Sample)           {}
func (NopObserver) FrameFailed(string, int, error) {}
func (NopObserver) VideoFailed(string, error)      {}
func (NopObserver) VideoDone(string, Counters)     {}

// Observers fans events out to each observer in order.
type Observers []Observer

func (o Observers) VideoStarted(videoID string) {
	for _, obs := range o {
		obs.VideoStarted(videoID)
	}
}

func (o Observers) SampleWritten(sample Sample) {
	for _, obs := range o {
		obs.SampleWritten(sample)
	}
}

func (o Observers) FrameFailed(videoID string, frame int, err error) {
	for _, obs := range o {
		obs.FrameFailed(videoID, frame, err)
	}
}

func (o Observers) VideoFailed(videoID string, err error) {
	for _, obs := range o {
		obs.VideoFailed(videoID, err)
	}
}

func (o Observers) VideoDone(videoID string, counters Counters) {
	for _, obs := range o {
		obs.VideoDone(videoID, counters)
	}
}

// LogObserver writes pipeline events to a structured logger. Failures are
// logged at WARN, completions and samples at DEBUG.
type LogObserver struct {
	NopObserver
	Logger *slog.Logger
}

// NewLogObserver returns an observer logging through logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{Logger: logging.NewComponentLogger(logger, "pipeline")}
}

func (l *LogObserver) SampleWritten(sample Sample) {
	l.Logger.Debug("sample written",
		slog.String(logging.FieldVideoID, sample.VideoID),
		slog.Int(logging.FieldFrame, sample.Frame),
		slog.String(logging.FieldSplit, sample.Split),
		slog.Int(logging.FieldSampleID, sample.ID),
	)
}

func (l *LogObserver) FrameFailed(videoID string, frame int, err error) {
	logging.WarnWithContext(l.Logger, "frame skipped", "frame_error", "frame omitted from dataset",
		slog.String(logging.FieldVideoID, videoID),
		slog.Int(logging.FieldFrame, frame),
		logging.Error(err),
	)
}

func (l *LogObserver) VideoFailed(videoID string, err error) {
	logging.WarnWithContext(l.Logger, "video skipped", "video_error", "all frames of video omitted from dataset",
		slog.String(logging.FieldVideoID, videoID),
		logging.Error(err),
	)
}

func (l *LogObserver) VideoDone(videoID string, counters Counters) {
	l.Logger.Debug("video done",
		slog.String(logging.FieldVideoID, videoID),
		slog.Int("train", counters.Train),
		slog.Int("val", counters.Val),
		slog.Int("video_errors", counters.VideoErrors),
		slog.Int("frame_errors", counters.FrameErrors),
	)
}
