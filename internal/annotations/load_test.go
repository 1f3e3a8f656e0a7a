package annotations

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleDoc = `[
  {"video_id": "a", "annotations": [
    {"bboxes": [
      {"frame": 3, "x1": 10, "y1": 20, "x2": 30, "y2": 40},
      {"frame": 1, "x1": 0, "y1": 0, "x2": 5, "y2": 5}
    ]},
    {"bboxes": []}
  ]},
  {"video_id": "b"},
  {"annotations": []},
  {"video_id": "c", "annotations": [{"bboxes": [{"frame": 0, "x1": 1, "y1": 2, "x2": 3}]}]},
  {"video_id": "d", "annotations": [{"bboxes": [{"frame": -2, "x1": 1, "y1": 2, "x2": 3, "y2": 4}]}]},
  {"video_id": "e", "annotations": [{"bboxes": [{"frame": 9, "x1": 50, "y1": 50, "x2": 10, "y2": 10}]}]},
  {"video_id": "f", "annotations": [{}]},
  "not an object"
]`

func TestParseIsolatesMalformedEntries(t *testing.T) {
	entries, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 8 {
		t.Fatalf("expected 8 entries, got %d", len(entries))
	}

	valid := map[int]bool{0: true, 5: true}
	for i, entry := range entries {
		if entry.Index != i {
			t.Fatalf("entry %d has index %d", i, entry.Index)
		}
		if valid[i] {
			if entry.Err != nil {
				t.Fatalf("entry %d: unexpected error %v", i, entry.Err)
			}
			continue
		}
		if !errors.Is(entry.Err, ErrMalformed) {
			t.Fatalf("entry %d: expected ErrMalformed, got %v", i, entry.Err)
		}
	}

	a := entries[0].Record
	if a.VideoID != "a" || len(a.Tracks) != 2 || a.BoxCount() != 2 {
		t.Fatalf("unexpected record a: %+v", a)
	}
	// native order is preserved, not sorted by frame.
	if a.Tracks[0].Boxes[0].Frame != 3 || a.Tracks[0].Boxes[1].Frame != 1 {
		t.Fatalf("box order changed: %+v", a.Tracks[0].Boxes)
	}
	if entries[1].VideoID != "b" {
		t.Fatalf("expected malformed entry to keep its video id, got %q", entries[1].VideoID)
	}
	// degenerate boxes are accepted.
	if entries[5].Record.Tracks[0].Boxes[0].X1 != 50 {
		t.Fatalf("unexpected degenerate box: %+v", entries[5].Record)
	}
}

func TestParseRejectsNonArray(t *testing.T) {
	if _, err := Parse([]byte(`{"video_id": "a"}`)); err == nil {
		t.Fatal("expected error for non-array document")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 8 {
		t.Fatalf("expected 8 entries, got %d", len(entries))
	}
}

func TestSummarize(t *testing.T) {
	entries, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stats := Summarize(entries, 7)
	want := Stats{Videos: 2, Malformed: 6, Tracks: 3, Boxes: 3, SampledBoxes: 2, DegenerateBox: 1}
	if stats != want {
		t.Fatalf("Summarize = %+v, want %+v", stats, want)
	}
}
