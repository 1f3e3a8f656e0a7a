package main

import (
	"os"
	"strings"
	"testing"

	"vidset/internal/testsupport"
)

func TestInspectCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteAnnotations(t, env.cfg.Paths.AnnotationsFile,
		testsupport.Video{ID: "A", Tracks: [][]testsupport.Box{testsupport.Boxes(15), testsupport.Boxes(7)}},
		testsupport.Video{ID: "B", Tracks: [][]testsupport.Box{testsupport.Boxes(35)}},
	)
	env.addVideo(t, "A")

	stdout, _, err := runCLI(t, []string{"inspect", "--check-videos"}, env.configPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	// A: 3 + 1 sampled (train 3, val 1); B: 5 sampled (train 4, val 1).
	for _, want := range []string{"Sampled boxes (stride 7)", " 57 │", " 9 │", "Expected train", "1 video skipped", "missing "} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("inspect output missing %q:\n%s", want, stdout)
		}
	}
}

func TestInspectCommandReportsMalformedEntries(t *testing.T) {
	env := setupCLITestEnv(t)
	data := `[{"video_id": "ok", "annotations": [{"bboxes": [{"frame": 0, "x1": 1, "y1": 1, "x2": 2, "y2": 2}]}]}, {"annotations": []}]`
	if err := os.MkdirAll(env.cfg.Paths.SourceRoot+"/annotations", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(env.cfg.Paths.AnnotationsFile, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCLI(t, []string{"inspect"}, env.configPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(stdout, "video_id") {
		t.Fatalf("expected malformed reason in output:\n%s", stdout)
	}
}

func TestInspectCommandRejectsNonArray(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, env.cfg.Paths.AnnotationsFile, 4)
	if _, _, err := runCLI(t, []string{"inspect"}, env.configPath); err == nil {
		t.Fatal("expected error for non-JSON annotation file")
	}
}
