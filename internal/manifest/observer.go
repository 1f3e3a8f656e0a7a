package manifest

import (
	"context"
	"log/slog"

	"vidset/internal/logging"
	"vidset/internal/pipeline"
)

type runObserver struct {
	pipeline.NopObserver
	ctx    context.Context
	store  *Store
	runID  string
	logger *slog.Logger
	errors int
}

// Observer returns a pipeline observer that records samples and failures of
// runID. Write errors are logged, the first at WARN and the rest at DEBUG,
// and never reach the pipeline.
func (s *Store) Observer(ctx context.Context, runID string, logger *slog.Logger) pipeline.Observer {
	return &runObserver{
		ctx:    ctx,
		store:  s,
		runID:  runID,
		logger: logging.NewComponentLogger(logger, "manifest"),
	}
}

func (o *runObserver) SampleWritten(sample pipeline.Sample) {
	o.report(o.store.RecordSample(o.ctx, o.runID, sample), sample.VideoID)
}

func (o *runObserver) FrameFailed(videoID string, frame int, err error) {
	o.report(o.store.RecordFailure(o.ctx, o.runID, FailureRecord{
		Kind:    KindFrame,
		VideoID: videoID,
		Frame:   frame,
		Message: errorText(err),
	}), videoID)
}

func (o *runObserver) VideoFailed(videoID string, err error) {
	o.report(o.store.RecordFailure(o.ctx, o.runID, FailureRecord{
		Kind:    KindVideo,
		VideoID: videoID,
		Frame:   -1,
		Message: errorText(err),
	}), videoID)
}

func (o *runObserver) report(err error, videoID string) {
	if err == nil {
		return
	}
	o.errors++
	attrs := []slog.Attr{
		slog.String(logging.FieldRunID, o.runID),
		slog.String(logging.FieldVideoID, videoID),
		logging.Error(err),
	}
	if o.errors == 1 {
		logging.WarnWithContext(o.logger, "manifest write failed", "manifest_error", "manifest incomplete; dataset unaffected", attrs...)
		return
	}
	o.logger.LogAttrs(o.ctx, slog.LevelDebug, "manifest write failed", attrs...)
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
