// Package manifest records dataset provenance in SQLite.
//
// Every build run gets a row in runs; every written sample records the video
// and source frame it came from, and every skipped video or frame is kept in
// failures. The database lives next to the dataset by default so split
// locality can be audited after the fact.
//
// The manifest is advisory: Observer logs write errors instead of failing the
// pipeline.
package manifest
