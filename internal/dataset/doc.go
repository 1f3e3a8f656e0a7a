// Package dataset materializes the per-frame image and label tree.
//
// Layout fixes where files live under the dataset root, Prepare creates the
// split directories, WriteDescriptor emits the YAML file detector trainers
// read, and Writer stores samples with dense per-split identifiers. Lock
// guards a root against concurrent runs.
package dataset
