// Package labels converts pixel bounding boxes into normalized
// center/width/height labels and renders them as detector label lines.
package labels

import (
	"fmt"
	"math"

	"vidset/internal/annotations"
)

// ClassID is the only class this dataset carries.
const ClassID = 0

// Label is a normalized box. Every coordinate lies in [0,1].
type Label struct {
	Class   int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// Normalize converts a pixel box to a label against a width x height frame.
// Each value is clamped to [0,1] on its own, so boxes that leave the frame or
// have inverted corners still produce a label. Non-positive dimensions yield
// a zero label.
func Normalize(box annotations.FrameBox, width, height int) Label {
	if width <= 0 || height <= 0 {
		return Label{Class: ClassID}
	}
	w := float64(width)
	h := float64(height)
	return Label{
		Class:   ClassID,
		XCenter: clamp01((box.X1 + box.X2) / 2 / w),
		YCenter: clamp01((box.Y1 + box.Y2) / 2 / h),
		Width:   clamp01((box.X2 - box.X1) / w),
		Height:  clamp01((box.Y2 - box.Y1) / h),
	}
}

// Line renders the label as a single newline-terminated line with six
// decimal places per coordinate.
func (l Label) Line() string {
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f\n", l.Class, l.XCenter, l.YCenter, l.Width, l.Height)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
