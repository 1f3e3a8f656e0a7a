package dataset

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"vidset/internal/labels"
	"vidset/internal/sampling"
	"vidset/internal/testsupport"
)

func TestPrepareIsIdempotent(t *testing.T) {
	layout := Layout{Root: filepath.Join(t.TempDir(), "drone")}
	if err := Prepare(layout); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	marker := filepath.Join(layout.ImagesDir(sampling.Train), "keep.jpg")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Prepare(layout); err != nil {
		t.Fatalf("second Prepare: %v", err)
	}
	for _, split := range Splits {
		for _, dir := range []string{layout.ImagesDir(split), layout.LabelsDir(split)} {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				t.Fatalf("expected directory %s: %v", dir, err)
			}
		}
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("existing file removed: %v", err)
	}
}

func TestPrepareFailsWhenRootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Prepare(Layout{Root: root}); err == nil {
		t.Fatal("expected Prepare to fail")
	}
}

func TestWriteDescriptor(t *testing.T) {
	root := t.TempDir()
	path, err := WriteDescriptor(Layout{Root: root}, "drone.yaml", "object")
	if err != nil {
		t.Fatalf("WriteDescriptor: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "path: " + root + "\ntrain: images/train\nval: images/val\nnc: 1\nnames:\n  0: object\n"
	if string(data) != want {
		t.Fatalf("descriptor mismatch:\n got: %q\nwant: %q", data, want)
	}

	parsed, err := ReadDescriptor(data)
	if err != nil {
		t.Fatalf("ReadDescriptor: %v", err)
	}
	if parsed.NC != 1 || parsed.Names[0] != "object" {
		t.Fatalf("unexpected parsed descriptor %+v", parsed)
	}
}

func TestWriterAssignsDenseIdentifiers(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	if err := Prepare(layout); err != nil {
		t.Fatal(err)
	}
	writer, err := NewWriter(layout, WriterOptions{Format: "jpeg", JPEGQuality: 90})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	img := testsupport.NewImage(40, 30)
	label := labels.Label{XCenter: 0.5, YCenter: 0.5, Width: 0.25, Height: 0.25}

	splits := []string{sampling.Train, sampling.Train, sampling.Val, sampling.Train, sampling.Val}
	wantIDs := []int{0, 1, 0, 2, 1}
	for i, split := range splits {
		id, err := writer.Write(split, img, label)
		if err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
		if id != wantIDs[i] {
			t.Fatalf("write %d: id %d, want %d", i, id, wantIDs[i])
		}
	}
	if writer.Next(sampling.Train) != 3 || writer.Next(sampling.Val) != 2 {
		t.Fatalf("unexpected next ids train=%d val=%d", writer.Next(sampling.Train), writer.Next(sampling.Val))
	}

	line, err := os.ReadFile(layout.LabelPath(sampling.Val, 1))
	if err != nil {
		t.Fatal(err)
	}
	if string(line) != "0 0.500000 0.500000 0.250000 0.250000\n" {
		t.Fatalf("unexpected label %q", line)
	}
	decoded, err := imaging.Open(layout.ImagePath(sampling.Train, 2, "jpg"))
	if err != nil {
		t.Fatalf("open written image: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("unexpected image bounds %v", b)
	}
}

func TestWriterPNG(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	if err := Prepare(layout); err != nil {
		t.Fatal(err)
	}
	writer, err := NewWriter(layout, WriterOptions{Format: FormatPNG})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := writer.Write(sampling.Train, testsupport.NewImage(8, 8), labels.Label{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(layout.ImagePath(sampling.Train, 0, "png")); err != nil {
		t.Fatalf("expected png output: %v", err)
	}
}

func TestWriterFailureDoesNotAdvance(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	writer, err := NewWriter(layout, WriterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	// Directories were never prepared, so the image write fails.
	if _, err := writer.Write(sampling.Train, testsupport.NewImage(4, 4), labels.Label{}); err == nil {
		t.Fatal("expected write failure")
	}
	if writer.Next(sampling.Train) != 0 {
		t.Fatalf("identifier advanced after failure: %d", writer.Next(sampling.Train))
	}
	if _, err := writer.Write("test", image.NewGray(image.Rect(0, 0, 1, 1)), labels.Label{}); err == nil {
		t.Fatal("expected unknown split error")
	}
}

func TestWriterLabelFailureRemovesImage(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	if err := Prepare(layout); err != nil {
		t.Fatal(err)
	}
	writer, err := NewWriter(layout, WriterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	// A directory in place of the label file makes the final rename fail.
	if err := os.Mkdir(layout.LabelPath(sampling.Train, 0), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := writer.Write(sampling.Train, testsupport.NewImage(4, 4), labels.Label{}); err == nil {
		t.Fatal("expected label write failure")
	}
	if _, err := os.Stat(layout.ImagePath(sampling.Train, 0, FormatJPEG)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("image left behind after label failure: %v", err)
	}
	if writer.Next(sampling.Train) != 0 {
		t.Fatalf("identifier advanced after failure: %d", writer.Next(sampling.Train))
	}
}

func TestCheckEmptyAndClean(t *testing.T) {
	layout := Layout{Root: filepath.Join(t.TempDir(), "drone")}
	if err := CheckEmpty(layout); err != nil {
		t.Fatalf("missing root should count as empty: %v", err)
	}
	if err := Prepare(layout); err != nil {
		t.Fatal(err)
	}
	if err := CheckEmpty(layout); err != nil {
		t.Fatalf("fresh layout should be empty: %v", err)
	}

	writer, err := NewWriter(layout, WriterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if _, err := writer.Write(sampling.Train, testsupport.NewImage(4, 4), labels.Label{}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	descriptor, err := WriteDescriptor(layout, "drone.yaml", "object")
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckEmpty(layout); !errors.Is(err, ErrNotEmpty) {
		t.Fatalf("expected ErrNotEmpty, got %v", err)
	}

	if err := Clean(layout); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if err := Prepare(layout); err != nil {
		t.Fatal(err)
	}
	if err := CheckEmpty(layout); err != nil {
		t.Fatalf("cleaned layout should be empty: %v", err)
	}
	if _, err := os.Stat(descriptor); err != nil {
		t.Fatalf("descriptor removed by Clean: %v", err)
	}

	// A writer with a different format after Clean leaves exactly its own pairs.
	png, err := NewWriter(layout, WriterOptions{Format: FormatPNG})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Write(sampling.Train, testsupport.NewImage(4, 4), labels.Label{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	images, _ := os.ReadDir(layout.ImagesDir(sampling.Train))
	labelFiles, _ := os.ReadDir(layout.LabelsDir(sampling.Train))
	if len(images) != 1 || images[0].Name() != "0.png" || len(labelFiles) != 1 {
		t.Fatalf("unexpected files after clean rebuild: images=%v labels=%v", images, labelFiles)
	}
}

func TestNewWriterRejectsUnknownFormat(t *testing.T) {
	if _, err := NewWriter(Layout{Root: t.TempDir()}, WriterOptions{Format: "gif"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestLockIsExclusive(t *testing.T) {
	root := filepath.Join(t.TempDir(), "drone")
	first, err := Lock(root)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := Lock(root); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	second, err := Lock(root)
	if err != nil {
		t.Fatalf("Lock after unlock: %v", err)
	}
	_ = second.Unlock()
}
