package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"vidset/internal/pipeline"
)

// progressObserver drives a terminal progress bar over videos. The
// description mirrors the running counters.
type progressObserver struct {
	pipeline.NopObserver
	bar *progressbar.ProgressBar
	acc *pipeline.Accumulator
}

func newProgressObserver(w io.Writer, videos int, acc *pipeline.Accumulator) *progressObserver {
	bar := progressbar.NewOptions(videos,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(progressDescription(acc.Snapshot())),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("videos"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
	return &progressObserver{bar: bar, acc: acc}
}

func (p *progressObserver) SampleWritten(pipeline.Sample) {
	p.bar.Describe(progressDescription(p.acc.Snapshot()))
}

func (p *progressObserver) FrameFailed(string, int, error) {
	p.bar.Describe(progressDescription(p.acc.Snapshot()))
}

func (p *progressObserver) VideoDone(_ string, counters pipeline.Counters) {
	p.bar.Describe(progressDescription(counters))
	_ = p.bar.Add(1)
}

func (p *progressObserver) finish() {
	_ = p.bar.Finish()
}
