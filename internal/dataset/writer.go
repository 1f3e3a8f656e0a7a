package dataset

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"

	"vidset/internal/fileutil"
	"vidset/internal/labels"
	"vidset/internal/sampling"
)

// Image formats accepted by Writer.
const (
	FormatJPEG = "jpg"
	FormatPNG  = "png"
)

// WriterOptions controls image encoding.
type WriterOptions struct {
	Format      string
	JPEGQuality int
}

// Writer stores samples under a layout. Identifiers are dense per split,
// start at 0, and persist across every video written through the same
// Writer. A Writer is not safe for concurrent use.
type Writer struct {
	layout  Layout
	format  imaging.Format
	ext     string
	quality int
	next    map[string]int
}

// NewWriter returns a writer for layout.
func NewWriter(layout Layout, opts WriterOptions) (*Writer, error) {
	w := &Writer{
		layout:  layout,
		quality: opts.JPEGQuality,
		next:    map[string]int{sampling.Train: 0, sampling.Val: 0},
	}
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", FormatJPEG, "jpeg":
		w.format = imaging.JPEG
		w.ext = FormatJPEG
	case FormatPNG:
		w.format = imaging.PNG
		w.ext = FormatPNG
	default:
		return nil, fmt.Errorf("unsupported image format %q", opts.Format)
	}
	if w.quality <= 0 || w.quality > 100 {
		w.quality = 95
	}
	return w, nil
}

// Layout returns the layout the writer stores into.
func (w *Writer) Layout() Layout {
	return w.layout
}

// Ext returns the image file extension without the dot.
func (w *Writer) Ext() string {
	return w.ext
}

// Next returns the identifier the next sample in split will receive.
func (w *Writer) Next(split string) int {
	return w.next[split]
}

// Write stores img and label as sample Next(split) and returns its
// identifier. The image is written before the label and removed again if the
// label cannot be written, so a failed write leaves neither file behind. The
// identifier only advances once both files exist.
func (w *Writer) Write(split string, img image.Image, label labels.Label) (int, error) {
	if _, ok := w.next[split]; !ok {
		return 0, fmt.Errorf("unknown split %q", split)
	}
	if img == nil {
		return 0, fmt.Errorf("write %s sample: nil image", split)
	}
	id := w.next[split]

	imagePath := w.layout.ImagePath(split, id, w.ext)
	err := fileutil.WriteAtomic(imagePath, 0o644, func(out io.Writer) error {
		return imaging.Encode(out, img, w.format, imaging.JPEGQuality(w.quality))
	})
	if err != nil {
		return 0, fmt.Errorf("write image %q: %w", imagePath, err)
	}

	labelPath := w.layout.LabelPath(split, id)
	if err := fileutil.WriteFileAtomic(labelPath, []byte(label.Line()), 0o644); err != nil {
		if rmErr := os.Remove(imagePath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("remove image %q: %w", imagePath, rmErr))
		}
		return 0, fmt.Errorf("write label %q: %w", labelPath, err)
	}

	w.next[split] = id + 1
	return id, nil
}
