package annotations

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMalformed marks an annotation entry that is missing required fields.
var ErrMalformed = errors.New("malformed annotation record")

// Load reads the annotation file at path. It fails only when the file cannot
// be read or is not a JSON array; per-record problems are reported on the
// returned entries.
func Load(path string) ([]Entry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("annotations: empty path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read annotations: %w", err)
	}
	return Parse(data)
}

// Parse decodes an in-memory annotation document.
func Parse(data []byte) ([]Entry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse annotations: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for i, msg := range raw {
		entries = append(entries, decodeEntry(i, msg))
	}
	return entries, nil
}

func decodeEntry(index int, msg json.RawMessage) Entry {
	entry := Entry{Index: index}

	var wire wireRecord
	if err := json.Unmarshal(msg, &wire); err != nil {
		entry.Err = fmt.Errorf("%w: entry %d: %v", ErrMalformed, index, err)
		return entry
	}
	if wire.VideoID != nil {
		entry.VideoID = strings.TrimSpace(*wire.VideoID)
	}
	record, err := wire.toRecord()
	if err != nil {
		entry.Err = fmt.Errorf("%w: entry %d: %v", ErrMalformed, index, err)
		return entry
	}
	entry.Record = record
	return entry
}

func (w wireRecord) toRecord() (VideoRecord, error) {
	if w.VideoID == nil || strings.TrimSpace(*w.VideoID) == "" {
		return VideoRecord{}, errors.New("missing video_id")
	}
	if w.Annotations == nil {
		return VideoRecord{}, errors.New("missing annotations")
	}
	record := VideoRecord{
		VideoID: strings.TrimSpace(*w.VideoID),
		Tracks:  make([]Track, 0, len(*w.Annotations)),
	}
	for ti, track := range *w.Annotations {
		if track.BBoxes == nil {
			return VideoRecord{}, fmt.Errorf("annotation %d: missing bboxes", ti)
		}
		boxes := make([]FrameBox, 0, len(*track.BBoxes))
		for bi, box := range *track.BBoxes {
			fb, err := box.toFrameBox()
			if err != nil {
				return VideoRecord{}, fmt.Errorf("annotation %d bbox %d: %w", ti, bi, err)
			}
			boxes = append(boxes, fb)
		}
		record.Tracks = append(record.Tracks, Track{Boxes: boxes})
	}
	return record, nil
}

func (b wireBox) toFrameBox() (FrameBox, error) {
	var missing []string
	if b.Frame == nil {
		missing = append(missing, "frame")
	}
	if b.X1 == nil {
		missing = append(missing, "x1")
	}
	if b.Y1 == nil {
		missing = append(missing, "y1")
	}
	if b.X2 == nil {
		missing = append(missing, "x2")
	}
	if b.Y2 == nil {
		missing = append(missing, "y2")
	}
	if len(missing) > 0 {
		return FrameBox{}, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	if *b.Frame < 0 {
		return FrameBox{}, fmt.Errorf("negative frame index %d", *b.Frame)
	}
	return FrameBox{Frame: *b.Frame, X1: *b.X1, Y1: *b.Y1, X2: *b.X2, Y2: *b.Y2}, nil
}
