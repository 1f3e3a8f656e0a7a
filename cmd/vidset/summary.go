package main

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"vidset/internal/pipeline"
	"vidset/internal/sampling"
)

const notAvailable = "n/a"

var (
	numberPrinter = message.NewPrinter(language.English)
	splitTitle    = cases.Title(language.English)
)

type buildReport struct {
	runID          string
	datasetRoot    string
	descriptorPath string
	manifestPath   string
	counters       pipeline.Counters
}

// renderBuildSummary formats the end-of-run report. Percentages read n/a
// when nothing was written.
func renderBuildSummary(report buildReport, colorize bool) string {
	c := report.counters
	trainPct, valPct, ok := c.Percentages()
	share := func(pct float64) string {
		if !ok {
			return notAvailable
		}
		return numberPrinter.Sprintf("%.1f%%", pct)
	}

	var b strings.Builder
	b.WriteString(renderTable(tableSpec{
		title:   "Dataset summary",
		headers: []string{"Split", "Samples", "Share"},
		rows: [][]string{
			{splitTitle.String(sampling.Train), numberPrinter.Sprintf("%d", c.Train), share(trainPct)},
			{splitTitle.String(sampling.Val), numberPrinter.Sprintf("%d", c.Val), share(valPct)},
		},
		footer: []string{"Total", numberPrinter.Sprintf("%d", c.Total()), ""},
		aligns: []columnAlignment{alignLeft, alignRight, alignRight},
	}))
	b.WriteString("\n")

	kind, msg := errorCountStatus(c.VideoErrors, "video")
	b.WriteString(renderStatusLine("Video errors", kind, msg, colorize) + "\n")
	kind, msg = errorCountStatus(c.FrameErrors, "frame")
	b.WriteString(renderStatusLine("Frame errors", kind, msg, colorize) + "\n")
	b.WriteString(renderStatusLine("Dataset", statusInfo, report.datasetRoot, colorize) + "\n")
	b.WriteString(renderStatusLine("Descriptor", statusInfo, report.descriptorPath, colorize) + "\n")
	if report.manifestPath != "" {
		b.WriteString(renderStatusLine("Manifest", statusInfo, fmt.Sprintf("%s (run %s)", report.manifestPath, report.runID), colorize) + "\n")
	}
	return b.String()
}

func progressDescription(c pipeline.Counters) string {
	return numberPrinter.Sprintf("Train %d | Val %d | Err_vid %d | Err_frm %d", c.Train, c.Val, c.VideoErrors, c.FrameErrors)
}
