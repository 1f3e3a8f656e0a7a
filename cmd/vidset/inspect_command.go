package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidset/internal/annotations"
	"vidset/internal/sampling"
	"vidset/internal/video"
)

// maxListedProblems caps the per-entry problem table.
const maxListedProblems = 20

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var annotationsPath string
	var checkVideos bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the annotation file without decoding video",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.Paths.AnnotationsFile
			if strings.TrimSpace(annotationsPath) != "" {
				path = annotationsPath
			}
			entries, err := annotations.Load(path)
			if err != nil {
				return err
			}

			stride := cfg.Sampling.Stride
			stats := annotations.Summarize(entries, stride)
			expectedTrain, expectedVal := expectedSplit(entries, stride, cfg.Sampling.SplitRatio)

			type problem struct{ entry, video, reason string }
			var problems []problem
			for _, entry := range entries {
				if !entry.Valid() {
					problems = append(problems, problem{strconv.Itoa(entry.Index), entry.VideoID, entry.Err.Error()})
				}
			}
			missingVideos := 0
			if checkVideos {
				locator := video.NewLocator(cfg.Paths.SourceRoot, cfg.Video.PathTemplate)
				for _, entry := range entries {
					if !entry.Valid() {
						continue
					}
					if reason := videoProblem(locator, entry.VideoID); reason != "" {
						missingVideos++
						problems = append(problems, problem{strconv.Itoa(entry.Index), entry.VideoID, reason})
					}
				}
			}

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			for _, line := range renderSectionHeader("Annotations", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("File", statusInfo, path, colorize))
			fmt.Fprintln(out, renderTable(tableSpec{
				headers: []string{"Metric", "Value"},
				rows: [][]string{
					{"Videos", numberPrinter.Sprintf("%d", stats.Videos)},
					{"Malformed entries", numberPrinter.Sprintf("%d", stats.Malformed)},
					{"Tracks", numberPrinter.Sprintf("%d", stats.Tracks)},
					{"Boxes", numberPrinter.Sprintf("%d", stats.Boxes)},
					{"Degenerate boxes", numberPrinter.Sprintf("%d", stats.DegenerateBox)},
					{fmt.Sprintf("Sampled boxes (stride %d)", stride), numberPrinter.Sprintf("%d", stats.SampledBoxes)},
					{"Expected train", numberPrinter.Sprintf("%d", expectedTrain)},
					{"Expected val", numberPrinter.Sprintf("%d", expectedVal)},
				},
				aligns: []columnAlignment{alignLeft, alignRight},
			}))
			if checkVideos {
				kind, msg := errorCountStatus(missingVideos, "video")
				fmt.Fprintln(out, renderStatusLine("Video files", kind, msg, colorize))
			}

			if len(problems) > 0 {
				rows := make([][]string, 0, min(len(problems), maxListedProblems))
				for i, p := range problems {
					if i == maxListedProblems {
						break
					}
					rows = append(rows, []string{p.entry, p.video, p.reason})
				}
				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Problems", colorize) {
					fmt.Fprintln(out, line)
				}
				spec := tableSpec{
					headers: []string{"Entry", "Video", "Reason"},
					rows:    rows,
					aligns:  []columnAlignment{alignRight, alignLeft, alignLeft},
				}
				if len(problems) > maxListedProblems {
					spec.footer = []string{"", fmt.Sprintf("%d more", len(problems)-maxListedProblems), ""}
				}
				fmt.Fprintln(out, renderTable(spec))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&annotationsPath, "annotations", "", "Annotation JSON file (overrides paths.annotations_file)")
	cmd.Flags().BoolVar(&checkVideos, "check-videos", false, "Verify every referenced video file exists")
	return cmd
}

// expectedSplit is the train/val sample count a build would reach if every
// video opened and every frame decoded.
func expectedSplit(entries []annotations.Entry, stride int, ratio float64) (train, val int) {
	for _, entry := range entries {
		if !entry.Valid() {
			continue
		}
		n := len(sampling.Collect(entry.Record, stride))
		t := sampling.TrainCount(n, ratio)
		train += t
		val += n - t
	}
	return train, val
}

func videoProblem(locator video.Locator, videoID string) string {
	path, err := locator.Path(videoID)
	if err != nil {
		return err.Error()
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "missing " + path
	case err != nil:
		return err.Error()
	case info.IsDir():
		return path + " is a directory"
	}
	return ""
}
