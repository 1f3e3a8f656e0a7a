package manifest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"vidset/internal/labels"
	"vidset/internal/pipeline"
	"vidset/internal/sampling"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "manifest.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testRun(id string) RunInfo {
	return RunInfo{
		ID:              id,
		AnnotationsPath: "/data/annotations.json",
		SourceRoot:      "/data/train",
		DatasetRoot:     "/data/drone",
		Stride:          7,
		Seed:            42,
		SplitRatio:      0.8,
	}
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if err := store.BeginRun(ctx, testRun("run-1")); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	run, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != StatusRunning || run.Stride != 7 || run.Seed != 42 || run.StartedAt.IsZero() {
		t.Fatalf("unexpected run %+v", run)
	}

	counters := pipeline.Counters{Train: 11, Val: 3, VideoErrors: 1, FrameErrors: 1}
	if err := store.FinishRun(ctx, "run-1", counters, nil); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	run, err = store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != StatusCompleted || run.Train != 11 || run.Val != 3 || run.VideoErrors != 1 || run.FrameErrors != 1 {
		t.Fatalf("unexpected finished run %+v", run)
	}
	if run.FinishedAt.IsZero() {
		t.Fatal("expected finished_at to be set")
	}
}

func TestFinishRunFailure(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if err := store.BeginRun(ctx, testRun("run-f")); err != nil {
		t.Fatal(err)
	}
	if err := store.FinishRun(ctx, "run-f", pipeline.Counters{Train: 2}, errors.New("disk full")); err != nil {
		t.Fatal(err)
	}
	run, err := store.GetRun(ctx, "run-f")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != StatusFailed || run.ErrorMessage != "disk full" {
		t.Fatalf("unexpected run %+v", run)
	}
	if err := store.FinishRun(ctx, "missing", pipeline.Counters{}, nil); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := store.GetRun(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestObserverRecordsSamplesAndFailures(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if err := store.BeginRun(ctx, testRun("run-2")); err != nil {
		t.Fatal(err)
	}
	obs := store.Observer(ctx, "run-2", nil)

	obs.VideoStarted("A")
	obs.VideoFailed("A", errors.New("video not found"))
	obs.VideoStarted("B")
	obs.SampleWritten(pipeline.Sample{VideoID: "B", Frame: 7, Split: sampling.Train, ID: 0, Label: labels.Label{XCenter: 0.5, YCenter: 0.5, Width: 0.1, Height: 0.1}})
	obs.SampleWritten(pipeline.Sample{VideoID: "B", Frame: 0, Split: sampling.Val, ID: 0})
	obs.FrameFailed("B", 14, errors.New("frame decode failed"))
	obs.VideoDone("B", pipeline.Counters{})

	samples, err := store.Samples(ctx, "run-2")
	if err != nil {
		t.Fatalf("Samples: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Split != sampling.Train || samples[0].Frame != 7 || samples[0].Label != "0 0.500000 0.500000 0.100000 0.100000\n" {
		t.Fatalf("unexpected first sample %+v", samples[0])
	}

	failures, err := store.Failures(ctx, "run-2")
	if err != nil {
		t.Fatalf("Failures: %v", err)
	}
	want := []FailureRecord{
		{Kind: KindVideo, VideoID: "A", Frame: -1, Message: "video not found"},
		{Kind: KindFrame, VideoID: "B", Frame: 14, Message: "frame decode failed"},
	}
	if len(failures) != len(want) {
		t.Fatalf("expected %d failures, got %+v", len(want), failures)
	}
	for i := range want {
		if failures[i] != want[i] {
			t.Fatalf("failure %d = %+v, want %+v", i, failures[i], want[i])
		}
	}

	leaks, err := store.SplitLeaks(ctx, "run-2")
	if err != nil {
		t.Fatalf("SplitLeaks: %v", err)
	}
	if len(leaks) != 0 {
		t.Fatalf("unexpected leaks %+v", leaks)
	}
}

func TestSplitLeaksDetectsDuplicateFrames(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if err := store.BeginRun(ctx, testRun("run-3")); err != nil {
		t.Fatal(err)
	}
	for _, s := range []pipeline.Sample{
		{VideoID: "A", Frame: 21, Split: sampling.Train, ID: 0},
		{VideoID: "A", Frame: 21, Split: sampling.Val, ID: 0},
		{VideoID: "A", Frame: 28, Split: sampling.Train, ID: 1},
	} {
		if err := store.RecordSample(ctx, "run-3", s); err != nil {
			t.Fatalf("RecordSample: %v", err)
		}
	}
	leaks, err := store.SplitLeaks(ctx, "run-3")
	if err != nil {
		t.Fatal(err)
	}
	if len(leaks) != 1 || leaks[0] != (FrameRef{VideoID: "A", Frame: 21}) {
		t.Fatalf("unexpected leaks %+v", leaks)
	}
}

func TestObserverSwallowsWriteErrors(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	// No BeginRun, so the foreign key on samples rejects every insert.
	obs := store.Observer(ctx, "unknown-run", nil)
	obs.SampleWritten(pipeline.Sample{VideoID: "A", Split: sampling.Train})
	obs.SampleWritten(pipeline.Sample{VideoID: "A", Split: sampling.Train, ID: 1})

	samples, err := store.Samples(ctx, "unknown-run")
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 0 {
		t.Fatalf("expected no samples, got %d", len(samples))
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "manifest.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.BeginRun(ctx, testRun("run-4")); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetRun(ctx, "run-4"); err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
}
