// Package pipeline drives annotated videos through sampling, decoding,
// normalization and dataset writes.
//
// Runner processes entries sequentially and reports through Observer
// implementations (logging, progress, manifest). Accumulator owns the run
// counters; a video or frame failure is counted and skipped, while a sample
// write failure ends the run.
package pipeline
