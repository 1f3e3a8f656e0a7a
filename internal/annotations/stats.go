package annotations

// Stats summarizes an annotation document.
type Stats struct {
	Videos        int
	Malformed     int
	Tracks        int
	Boxes         int
	SampledBoxes  int
	DegenerateBox int
}

// Summarize counts entries, tracks and boxes. SampledBoxes is the number of
// boxes a stride of k would keep, counted per track by position.
func Summarize(entries []Entry, k int) Stats {
	if k < 1 {
		k = 1
	}
	var stats Stats
	for _, entry := range entries {
		if !entry.Valid() {
			stats.Malformed++
			continue
		}
		stats.Videos++
		stats.Tracks += len(entry.Record.Tracks)
		for _, track := range entry.Record.Tracks {
			n := len(track.Boxes)
			stats.Boxes += n
			stats.SampledBoxes += (n + k - 1) / k
			for _, box := range track.Boxes {
				if box.X2 <= box.X1 || box.Y2 <= box.Y1 {
					stats.DegenerateBox++
				}
			}
		}
	}
	return stats
}
