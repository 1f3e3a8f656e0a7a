package annotations

// FrameBox is one annotated bounding box in pixel coordinates. X1<X2 and
// Y1<Y2 are expected but not enforced.
type FrameBox struct {
	Frame int
	X1    float64
	Y1    float64
	X2    float64
	Y2    float64
}

// Track is one continuous annotation sequence for a tracked object, in the
// file's native order.
type Track struct {
	Boxes []FrameBox
}

// VideoRecord holds every track annotated for one video.
type VideoRecord struct {
	VideoID string
	Tracks  []Track
}

// BoxCount returns the number of boxes across all tracks.
func (r VideoRecord) BoxCount() int {
	total := 0
	for _, track := range r.Tracks {
		total += len(track.Boxes)
	}
	return total
}

// Entry is one element of the annotation array. Exactly one of Record or Err
// is meaningful; VideoID is filled whenever the element carried one.
type Entry struct {
	Index   int
	VideoID string
	Record  VideoRecord
	Err     error
}

// Valid reports whether the entry decoded cleanly.
func (e Entry) Valid() bool {
	return e.Err == nil
}

// wire types use pointers so missing fields can be told apart from zeros.
type wireRecord struct {
	VideoID     *string      `json:"video_id"`
	Annotations *[]wireTrack `json:"annotations"`
}

type wireTrack struct {
	BBoxes *[]wireBox `json:"bboxes"`
}

type wireBox struct {
	Frame *int     `json:"frame"`
	X1    *float64 `json:"x1"`
	Y1    *float64 `json:"y1"`
	X2    *float64 `json:"x2"`
	Y2    *float64 `json:"y2"`
}
