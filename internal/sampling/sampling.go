// Package sampling selects annotated frames from each video and assigns them
// to the train or val split.
package sampling

import (
	"math/rand"

	"vidset/internal/annotations"
)

// Split names double as the dataset directory names.
const (
	Train = "train"
	Val   = "val"
)

// Stride returns the boxes at positions 0, k, 2k, ... in input order. The
// selection is by list position, not by frame index. A stride below 2 keeps
// every box.
func Stride(boxes []annotations.FrameBox, k int) []annotations.FrameBox {
	if k < 1 {
		k = 1
	}
	out := make([]annotations.FrameBox, 0, (len(boxes)+k-1)/k)
	for i := 0; i < len(boxes); i += k {
		out = append(out, boxes[i])
	}
	return out
}

// Collect concatenates the stride samples of every track of a record, track
// by track.
func Collect(record annotations.VideoRecord, k int) []annotations.FrameBox {
	var out []annotations.FrameBox
	for _, track := range record.Tracks {
		out = append(out, Stride(track.Boxes, k)...)
	}
	return out
}

// Split is one video's partition of sampled frames.
type Split struct {
	Train []annotations.FrameBox
	Val   []annotations.FrameBox
}

// Partition shuffles a copy of frames with a generator freshly seeded with
// seed, then cuts it at floor(len*ratio): the prefix is train, the rest val.
// Because the generator is reseeded on every call, the permutation depends
// only on len(frames) and seed.
func Partition(frames []annotations.FrameBox, ratio float64, seed int64) Split {
	shuffled := append([]annotations.FrameBox(nil), frames...)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := TrainCount(len(shuffled), ratio)
	return Split{
		Train: shuffled[:cut:cut],
		Val:   shuffled[cut:],
	}
}

// TrainCount returns floor(n*ratio) clamped to [0, n].
func TrainCount(n int, ratio float64) int {
	if n <= 0 || !(ratio > 0) {
		return 0
	}
	cut := int(float64(n) * ratio)
	if cut > n {
		return n
	}
	return cut
}
