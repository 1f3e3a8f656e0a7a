package testsupport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteScript writes an executable /bin/sh script into dir and returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// NewImage returns a width x height image filled with a horizontal gradient.
func NewImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / max(width, 1)), G: 64, B: 128, A: 255})
		}
	}
	return img
}

// WritePNG writes a width x height PNG fixture to path.
func WritePNG(t testing.TB, path string, width, height int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := imaging.Save(NewImage(width, height), path); err != nil {
		t.Fatalf("write png %s: %v", path, err)
	}
}

// MediaStubs writes ffprobe and ffmpeg stubs into dir. ffprobe reports one
// width x height h264 stream; ffmpeg writes a PNG of that size to stdout and
// exits non-zero for any frame listed in failingFrames.
func MediaStubs(t testing.TB, dir string, width, height int, failingFrames ...int) (ffmpegPath, ffprobePath string) {
	t.Helper()
	fixture := filepath.Join(dir, "frame.png")
	WritePNG(t, fixture, width, height)

	probe := fmt.Sprintf(`{"streams":[{"index":0,"codec_name":"h264","codec_type":"video","width":%d,"height":%d}],"format":{"format_name":"mov,mp4"}}`, width, height)
	ffprobePath = WriteScript(t, dir, "ffprobe", fmt.Sprintf("cat <<'JSON'\n%s\nJSON\n", probe))

	var body strings.Builder
	body.WriteString("case \"$*\" in\n")
	for _, frame := range failingFrames {
		fmt.Fprintf(&body, "  *'eq(n\\,%d)'*) echo \"decode error\" >&2; exit 1 ;;\n", frame)
	}
	body.WriteString("esac\n")
	fmt.Fprintf(&body, "cat '%s'\n", fixture)
	ffmpegPath = WriteScript(t, dir, "ffmpeg", body.String())
	return ffmpegPath, ffprobePath
}

// Box is a single annotation box used by WriteAnnotations.
type Box struct {
	Frame int     `json:"frame"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
}

// Video is a single annotation record used by WriteAnnotations. Each inner
// slice of Tracks is one track.
type Video struct {
	ID     string
	Tracks [][]Box
}

// WriteAnnotations serializes videos in the annotation file format.
func WriteAnnotations(t testing.TB, path string, videos ...Video) {
	t.Helper()
	type track struct {
		Bboxes []Box `json:"bboxes"`
	}
	type record struct {
		VideoID     string  `json:"video_id"`
		Annotations []track `json:"annotations"`
	}
	records := make([]record, 0, len(videos))
	for _, v := range videos {
		r := record{VideoID: v.ID, Annotations: []track{}}
		for _, boxes := range v.Tracks {
			r.Annotations = append(r.Annotations, track{Bboxes: boxes})
		}
		records = append(records, r)
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal annotations: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Boxes returns n boxes on consecutive frames starting at frame 0.
func Boxes(n int) []Box {
	boxes := make([]Box, n)
	for i := range boxes {
		boxes[i] = Box{Frame: i, X1: 10, Y1: 10, X2: 30, Y2: 20}
	}
	return boxes
}
