package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"vidset/internal/sampling"
)

// ErrNotEmpty indicates a split directory already holds files from an earlier
// build.
var ErrNotEmpty = errors.New("dataset split directories are not empty")

// Splits lists the dataset splits in write order.
var Splits = []string{sampling.Train, sampling.Val}

// Layout describes the directory tree under a dataset root.
type Layout struct {
	Root string
}

// ImagesDir returns images/<split>.
func (l Layout) ImagesDir(split string) string {
	return filepath.Join(l.Root, "images", split)
}

// LabelsDir returns labels/<split>.
func (l Layout) LabelsDir(split string) string {
	return filepath.Join(l.Root, "labels", split)
}

// ImagePath returns images/<split>/<id>.<ext>.
func (l Layout) ImagePath(split string, id int, ext string) string {
	return filepath.Join(l.ImagesDir(split), strconv.Itoa(id)+"."+ext)
}

// LabelPath returns labels/<split>/<id>.txt.
func (l Layout) LabelPath(split string, id int) string {
	return filepath.Join(l.LabelsDir(split), strconv.Itoa(id)+".txt")
}

// Prepare creates the image and label directories for every split. Existing
// directories and their contents are left alone.
func Prepare(layout Layout) error {
	for _, dir := range layout.splitDirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dataset directory %q: %w", dir, err)
		}
	}
	return nil
}

func (l Layout) splitDirs() []string {
	dirs := make([]string, 0, 2*len(Splits))
	for _, split := range Splits {
		dirs = append(dirs, l.ImagesDir(split), l.LabelsDir(split))
	}
	return dirs
}

// CheckEmpty returns ErrNotEmpty when any image or label split directory
// holds an entry. Missing directories count as empty.
func CheckEmpty(layout Layout) error {
	for _, dir := range layout.splitDirs() {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read dataset directory %q: %w", dir, err)
		}
		if len(entries) > 0 {
			return fmt.Errorf("%w: %s holds %d entries", ErrNotEmpty, dir, len(entries))
		}
	}
	return nil
}

// Clean removes the image and label split directories with their contents.
// The descriptor, manifest and lock file under the root are kept. Call
// Prepare afterwards to recreate the tree.
func Clean(layout Layout) error {
	for _, dir := range layout.splitDirs() {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clean dataset directory %q: %w", dir, err)
		}
	}
	return nil
}
