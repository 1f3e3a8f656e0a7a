package sampling

import (
	"reflect"
	"testing"

	"vidset/internal/annotations"
)

func makeBoxes(n int) []annotations.FrameBox {
	boxes := make([]annotations.FrameBox, n)
	for i := range boxes {
		boxes[i] = annotations.FrameBox{Frame: 100 - i, X1: float64(i), Y1: 0, X2: float64(i) + 1, Y2: 1}
	}
	return boxes
}

func TestStrideSelectsByPosition(t *testing.T) {
	boxes := makeBoxes(21)
	got := Stride(boxes, 7)
	want := []annotations.FrameBox{boxes[0], boxes[7], boxes[14]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Stride = %+v, want %+v", got, want)
	}
}

func TestStrideEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		n    int
		k    int
		want int
	}{
		{"empty", 0, 7, 0},
		{"shorter than stride", 3, 7, 1},
		{"exact multiple plus one", 15, 7, 3},
		{"stride one", 5, 1, 5},
		{"stride zero keeps all", 5, 0, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(Stride(makeBoxes(tc.n), tc.k)); got != tc.want {
				t.Fatalf("len(Stride(%d, %d)) = %d, want %d", tc.n, tc.k, got, tc.want)
			}
		})
	}
}

func TestCollectConcatenatesTracks(t *testing.T) {
	a := makeBoxes(8)
	b := makeBoxes(3)
	record := annotations.VideoRecord{VideoID: "v", Tracks: []annotations.Track{{Boxes: a}, {Boxes: nil}, {Boxes: b}}}
	got := Collect(record, 7)
	want := []annotations.FrameBox{a[0], a[7], b[0]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Collect = %+v, want %+v", got, want)
	}
}

func TestPartitionRatioAndLocality(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, 14, 99} {
		frames := makeBoxes(n)
		split := Partition(frames, 0.8, 42)
		if got, want := len(split.Train), int(float64(n)*0.8); got != want {
			t.Fatalf("n=%d: train=%d want %d", n, got, want)
		}
		if len(split.Train)+len(split.Val) != n {
			t.Fatalf("n=%d: lost frames (%d+%d)", n, len(split.Train), len(split.Val))
		}
		seen := map[float64]int{}
		for _, box := range append(append([]annotations.FrameBox(nil), split.Train...), split.Val...) {
			seen[box.X1]++
		}
		for key, count := range seen {
			if count != 1 {
				t.Fatalf("n=%d: box %v appears %d times", n, key, count)
			}
		}
	}
}

func TestPartitionDeterministicPerCall(t *testing.T) {
	frames := makeBoxes(30)
	first := Partition(frames, 0.8, 42)
	// an unrelated partition in between must not change the next result.
	_ = Partition(makeBoxes(11), 0.5, 42)
	second := Partition(frames, 0.8, 42)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical partitions for identical input and seed")
	}

	other := Partition(frames, 0.8, 7)
	if reflect.DeepEqual(first.Train, other.Train) {
		t.Fatal("expected a different seed to produce a different permutation")
	}
}

func TestPartitionDoesNotMutateInput(t *testing.T) {
	frames := makeBoxes(10)
	original := append([]annotations.FrameBox(nil), frames...)
	_ = Partition(frames, 0.8, 42)
	if !reflect.DeepEqual(frames, original) {
		t.Fatal("Partition reordered its input")
	}
}

func TestTrainCount(t *testing.T) {
	if got := TrainCount(14, 0.8); got != 11 {
		t.Fatalf("TrainCount(14, 0.8) = %d, want 11", got)
	}
	if got := TrainCount(3, 0); got != 0 {
		t.Fatalf("TrainCount with zero ratio = %d", got)
	}
	if got := TrainCount(3, 2); got != 3 {
		t.Fatalf("TrainCount clamps to n, got %d", got)
	}
}
