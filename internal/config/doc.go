// Package config loads, normalizes, and validates vidset configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VIDSET_DATASET_ROOT. The Config type centralizes every knob the build
// pipeline and CLI need: where annotations and videos live, how frames are
// sampled and split, and how the output dataset is laid out.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
