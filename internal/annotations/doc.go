// Package annotations loads the per-video bounding-box annotation file.
//
// The file is a JSON array with one object per video:
//
//	[{"video_id": "...", "annotations": [{"bboxes": [{"frame": 0, "x1": 1, "y1": 2, "x2": 3, "y2": 4}]}]}]
//
// Entries are decoded one at a time so a single malformed record surfaces as
// an Entry error (wrapping ErrMalformed) instead of failing the whole load.
package annotations
